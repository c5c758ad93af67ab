package keyValStore

import (
	"errors"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/disk"
)

var ErrNotEnoughSpace = errors.New("not enough free disk space")

const gigabyte = 1 << 30

// checkConfig validates the on-disk location. Only Paths[0] is used.
func (sc *StoreConfig) checkConfig() error {
	if len(sc.Paths) == 0 {
		return errors.New("no storage path configured")
	}

	dir := sc.Paths[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("storage path %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", dir)
	}

	usage, err := disk.Usage(dir)
	if err != nil {
		return fmt.Errorf("disk usage of %s: %w", dir, err)
	}
	if free := usage.Free / gigabyte; free < uint64(max(sc.MinimumFreeSpace, 0)) {
		return fmt.Errorf("%s has %d GB free, want %d: %w", dir, free, sc.MinimumFreeSpace, ErrNotEnoughSpace)
	}
	return nil
}
