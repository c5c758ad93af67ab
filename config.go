package ouroboros

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Config configures a Records instance. Only Paths[0] holds the identity key,
// all paths are handed to the key value store.
type Config struct {
	// Paths contains data directories.
	Paths []string
	// MinimumFreeGB is a free-space threshold for on-disk operation.
	MinimumFreeGB int
	// GarbageCollectionInterval is the pause between value log collections.
	// 0 disables the collector.
	GarbageCollectionInterval time.Duration
	// InMemory keeps everything in memory; nothing is written to Paths.
	InMemory   bool
	SyncWrites bool
	// IdentityKeyFile holds the seed of the writer identity. Defaults to
	// Paths[0]/identity.key. In memory instances without a file get a fresh
	// identity on every start.
	IdentityKeyFile string
	// MaxHops bounds update chain walks. 0 uses versionchain.DefaultMaxHops.
	MaxHops int
	// Logger is optional. If nil, a stderr logger at Info level is used.
	Logger logrus.FieldLogger
}

func defaultLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.InfoLevel)
	return logger
}
