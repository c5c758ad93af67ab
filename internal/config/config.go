package config

import (
	"fmt"
	"os"
	"time"

	ouroboros "github.com/i5heu/ouroboros-records"
	"gopkg.in/yaml.v2"
)

// File is the YAML form of ouroboros.Config.
type File struct {
	Paths             []string `yaml:"paths"`
	MinimumFreeGB     int      `yaml:"minimumFreeGB"`
	GarbageCollection string   `yaml:"garbageCollectionInterval"`
	InMemory          bool     `yaml:"inMemory"`
	SyncWrites        bool     `yaml:"syncWrites"`
	IdentityKeyFile   string   `yaml:"identityKeyFile"`
	MaxHops           int      `yaml:"maxHops"`
	LogLevel          string   `yaml:"logLevel"`
}

func Default() File {
	return File{
		Paths:             []string{"./data"},
		MinimumFreeGB:     1,
		GarbageCollection: "10m",
		LogLevel:          "info",
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (File, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return config, nil
}

// Records converts the file into a ouroboros.Config. The logger is left to
// the caller.
func (f File) Records() (ouroboros.Config, error) {
	var interval time.Duration
	if f.GarbageCollection != "" {
		var err error
		interval, err = time.ParseDuration(f.GarbageCollection)
		if err != nil {
			return ouroboros.Config{}, fmt.Errorf("garbageCollectionInterval: %w", err)
		}
	}

	return ouroboros.Config{
		Paths:                     f.Paths,
		MinimumFreeGB:             f.MinimumFreeGB,
		GarbageCollectionInterval: interval,
		InMemory:                  f.InMemory,
		SyncWrites:                f.SyncWrites,
		IdentityKeyFile:           f.IdentityKeyFile,
		MaxHops:                   f.MaxHops,
	}, nil
}

func (f File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
