package support

import (
	"os"
	"runtime"
)

// CountOpenFDs returns the number of open file descriptors. Linux
// only; returns 0 elsewhere.
func CountOpenFDs() int {
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		return 0
	}
	return len(entries)
}

// GoroutineCount returns the current number of goroutines.
func GoroutineCount() int {
	return runtime.NumGoroutine()
}

// RuntimeSnapshot is a point-in-time read of process health,
// surfaced on the diagnostics endpoint.
type RuntimeSnapshot struct {
	Goroutines      int   `json:"goroutines"`
	FileDescriptors int   `json:"file_descriptors"`
	MemAllocBytes   int64 `json:"mem_alloc_bytes"`
	MemSysBytes     int64 `json:"mem_sys_bytes"`
	GCRuns          int64 `json:"gc_runs"`
}

// ReadRuntimeSnapshot gathers the current RuntimeSnapshot.
func ReadRuntimeSnapshot() RuntimeSnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeSnapshot{
		Goroutines:      GoroutineCount(),
		FileDescriptors: CountOpenFDs(),
		MemAllocBytes:   int64(m.Alloc),
		MemSysBytes:     int64(m.Sys),
		GCRuns:          int64(m.NumGC),
	}
}
