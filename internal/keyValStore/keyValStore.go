package keyValStore

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// ErrKeyNotFound is returned by Read when the key is absent.
var ErrKeyNotFound = errors.New("key not found")

// sequenceBandwidth is how many sequence numbers badger leases at once.
const sequenceBandwidth = 1000

type StoreConfig struct {
	Paths            []string // absolute path at the moment only first path is supported
	MinimumFreeSpace int      // in GB
	InMemory         bool     // no disk persistence, Paths and MinimumFreeSpace are ignored
	SyncWrites       bool
	Logger           logrus.FieldLogger
}

type KeyValStore struct {
	config       StoreConfig
	badgerDB     *badger.DB
	log          logrus.FieldLogger
	readCounter  uint64
	writeCounter uint64

	seqMu     sync.Mutex
	sequences map[string]*badger.Sequence
}

func NewKeyValStore(config StoreConfig) (*KeyValStore, error) {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	log := config.Logger.WithField("component", "keyValStore")

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		err := config.checkConfig()
		if err != nil {
			return nil, fmt.Errorf("error checking config for KeyValStore: %w", err)
		}
		opts = badger.DefaultOptions(config.Paths[0])
		opts.ValueLogFileSize = 1024 * 1024 * 100 // Set max size of each value log file to 100MB
	}
	opts.Logger = nil
	opts.SyncWrites = config.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	if !config.InMemory {
		logDiskUsage(log, config.Paths)
	}

	return &KeyValStore{
		config:    config,
		badgerDB:  db,
		log:       log,
		sequences: map[string]*badger.Sequence{},
	}, nil
}

func (k *KeyValStore) Write(key []byte, content []byte) error {
	atomic.AddUint64(&k.writeCounter, 1)

	err := k.badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Set(key, content)
	})
	if err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}
	return nil
}

// WriteBatch writes all pairs in a single transaction, either all become
// visible or none.
func (k *KeyValStore) WriteBatch(batch [][2][]byte) error {
	err := k.badgerDB.Update(func(txn *badger.Txn) error {
		for _, kv := range batch {
			atomic.AddUint64(&k.writeCounter, 1)
			if err := txn.Set(kv[0], kv[1]); err != nil {
				return fmt.Errorf("set %q: %w", kv[0], err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}

// BatchWriteNonExisting writes only the pairs whose key is not stored yet.
// Used for content addressed data where an existing key already holds the
// same value.
func (k *KeyValStore) BatchWriteNonExisting(batch [][2][]byte) error {
	keys := make([][]byte, 0, len(batch))
	for _, kv := range batch {
		keys = append(keys, kv[0])
	}

	present, err := k.existing(keys)
	if err != nil {
		return fmt.Errorf("check existing keys: %w", err)
	}

	wb := k.badgerDB.NewWriteBatch()
	defer wb.Cancel()

	for _, kv := range batch {
		if _, ok := present[string(kv[0])]; ok {
			continue
		}
		present[string(kv[0])] = struct{}{}
		atomic.AddUint64(&k.writeCounter, 1)
		if err := wb.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("queue %q: %w", kv[0], err)
		}
	}
	return wb.Flush()
}

// existing returns the subset of keys that are stored.
func (k *KeyValStore) existing(keys [][]byte) (map[string]struct{}, error) {
	present := make(map[string]struct{}, len(keys))
	err := k.badgerDB.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			atomic.AddUint64(&k.readCounter, 1)
			_, err := txn.Get(key)
			switch {
			case err == nil:
				present[string(key)] = struct{}{}
			case !errors.Is(err, badger.ErrKeyNotFound):
				return fmt.Errorf("get %q: %w", key, err)
			}
		}
		return nil
	})
	return present, err
}

func (k *KeyValStore) Exists(key []byte) (bool, error) {
	present, err := k.existing([][]byte{key})
	if err != nil {
		return false, err
	}
	_, ok := present[string(key)]
	return ok, nil
}

func (k *KeyValStore) Read(key []byte) ([]byte, error) {
	atomic.AddUint64(&k.readCounter, 1)
	var value []byte
	err := k.badgerDB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("read key %q: %w", key, ErrKeyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read key %q: %w", key, err)
	}
	return value, nil
}

// will return all keys and values with the given prefix, in key order
func (k *KeyValStore) GetItemsWithPrefix(prefix []byte) ([][][]byte, error) {
	var keysAndValues [][][]byte
	atomic.AddUint64(&k.readCounter, 1)
	err := k.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			k := item.KeyCopy(nil)
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			keysAndValues = append(keysAndValues, [][]byte{k, v})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan prefix %q: %w", prefix, err)
	}
	return keysAndValues, nil
}

// GetKeysWithPrefix is GetItemsWithPrefix without fetching values.
func (k *KeyValStore) GetKeysWithPrefix(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	atomic.AddUint64(&k.readCounter, 1)
	err := k.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan keys %q: %w", prefix, err)
	}
	return keys, nil
}

// NextSequence returns the next number of the named monotonic sequence.
// Numbers survive restarts; leased but unused numbers are skipped.
func (k *KeyValStore) NextSequence(name string) (uint64, error) {
	k.seqMu.Lock()
	defer k.seqMu.Unlock()

	seq, ok := k.sequences[name]
	if !ok {
		var err error
		seq, err = k.badgerDB.GetSequence([]byte("Sequence:"+name), sequenceBandwidth)
		if err != nil {
			return 0, fmt.Errorf("get sequence %s: %w", name, err)
		}
		k.sequences[name] = seq
	}

	n, err := seq.Next()
	if err != nil {
		return 0, fmt.Errorf("next in sequence %s: %w", name, err)
	}
	return n, nil
}

// Counters returns the number of read and write operations since start.
func (k *KeyValStore) Counters() (reads, writes uint64) {
	return atomic.LoadUint64(&k.readCounter), atomic.LoadUint64(&k.writeCounter)
}

func (k *KeyValStore) Close() error {
	var errs []error

	k.seqMu.Lock()
	for name, seq := range k.sequences {
		if err := seq.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release sequence %s: %w", name, err))
		}
	}
	k.sequences = map[string]*badger.Sequence{}
	k.seqMu.Unlock()

	if err := k.badgerDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close badger: %w", err))
	}
	return errors.Join(errs...)
}

func (k *KeyValStore) Clean() error {
	if k.config.InMemory {
		return nil
	}

	if err := k.badgerDB.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := k.badgerDB.Flatten(runtime.NumCPU()); err != nil {
		return fmt.Errorf("flatten: %w", err)
	}

	// ledger entries are never deleted, so a rewrite is rare
	err := k.badgerDB.RunValueLogGC(0.1)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return fmt.Errorf("value log gc: %w", err)
	}
	k.log.Debug("value log cleaned")
	return nil
}
