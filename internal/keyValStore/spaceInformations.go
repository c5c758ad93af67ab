package keyValStore

import (
	"io/fs"
	"path/filepath"

	"github.com/shirou/gopsutil/disk"
	"github.com/sirupsen/logrus"
)

func dirSize(root string) (int64, error) {
	var size int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		return nil
	})
	return size, err
}

// logDiskUsage reports the filesystem and ledger footprint of each path.
func logDiskUsage(log logrus.FieldLogger, paths []string) {
	for _, path := range paths {
		usage, err := disk.Usage(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("could not read disk usage")
			continue
		}
		fields := logrus.Fields{
			"path":        path,
			"filesystem":  usage.Fstype,
			"freeGB":      float64(usage.Free) / gigabyte,
			"usedPercent": usage.UsedPercent,
		}

		if size, err := dirSize(path); err == nil {
			fields["ledgerMB"] = float64(size) / (1 << 20)
		}
		log.WithFields(fields).Info("disk usage")
	}
}
