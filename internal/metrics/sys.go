package metrics

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"time"
)

// SysHealth is a snapshot of the process and its data directory.
type SysHealth struct {
	HeapMB     uint64 `json:"heap_mb"`
	SysMB      uint64 `json:"sys_mb"`
	GCRuns     uint32 `json:"gc_runs"`
	Goroutines int    `json:"goroutines"`
	DataSize   string `json:"data_size"`
	Uptime     string `json:"uptime"`
}

var processStart = time.Now()

const mb = 1 << 20

// GetSysHealth reports memory, goroutines, uptime and the size of the
// files under dataDir.
func GetSysHealth(dataDir string) SysHealth {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return SysHealth{
		HeapMB:     mem.HeapAlloc / mb,
		SysMB:      mem.Sys / mb,
		GCRuns:     mem.NumGC,
		Goroutines: runtime.NumGoroutine(),
		DataSize:   humanSize(filesSize(dataDir)),
		Uptime:     time.Since(processStart).Round(time.Second).String(),
	}
}

// filesSize sums regular files below root. Unreadable entries count as
// zero.
func filesSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

func humanSize(n int64) string {
	const step = 1024
	if n < step {
		return fmt.Sprintf("%d B", n)
	}
	value := float64(n)
	suffixes := []string{"KB", "MB", "GB", "TB"}
	i := -1
	for value >= step && i < len(suffixes)-1 {
		value /= step
		i++
	}
	return fmt.Sprintf("%.1f %s", value, suffixes[i])
}
