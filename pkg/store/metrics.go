package store

import (
	"io/fs"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "burrow_store_ops_total",
		Help: "Store operations by kind.",
	}, []string{"op"})

	opErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "burrow_store_errors_total",
		Help: "Failed store operations by kind.",
	}, []string{"op"})

	_ = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "burrow_store_disk_bytes",
		Help: "On-disk size of the database directory.",
	}, func() float64 { return float64(DiskUsageBytes()) })
)

// DiskUsageBytes returns the best-effort on-disk size of the database
// directory. Zero when the store is not open.
func DiskUsageBytes() uint64 {
	if db == nil || dbPath == "" {
		return 0
	}
	var total uint64
	_ = filepath.WalkDir(dbPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += uint64(fi.Size())
		}
		return nil
	})
	return total
}
