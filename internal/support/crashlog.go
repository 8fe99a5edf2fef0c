// Package support carries the ambient operational concerns every
// command in this module shares: panic recovery with a crash log, and
// runtime metrics used by the diagnostics endpoint.
package support

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"
)

// DefaultCrashLogPath is where WriteCrashLog appends reports when the
// caller doesn't override the path.
const DefaultCrashLogPath = "/tmp/filehub-crash.log"

// WriteCrashLog appends a detailed crash report to path: the
// recovered value, the crashing goroutine's stack, a full goroutine
// dump, and basic memory/FD stats. A nil recovered value is a no-op.
func WriteCrashLog(path string, r interface{}, goroutineName string) {
	if r == nil {
		return
	}
	if path == "" {
		path = DefaultCrashLogPath
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open crash log: %v\n", err)
		f = os.Stderr
	}
	defer f.Close()

	fmt.Fprintf(f, "\n\n")
	fmt.Fprintf(f, "================================================================\n")
	fmt.Fprintf(f, "CRASH REPORT - %s\n", time.Now().Format("2006-01-02 15:04:05.000"))
	fmt.Fprintf(f, "================================================================\n\n")

	if goroutineName != "" {
		fmt.Fprintf(f, "Goroutine: %s\n\n", goroutineName)
	} else {
		fmt.Fprintf(f, "Goroutine: main\n\n")
	}

	fmt.Fprintf(f, "Error: %v\n\n", r)

	fmt.Fprintf(f, "Crashing Goroutine Stack Trace:\n")
	fmt.Fprintf(f, "----------------------------------------------------------------\n")
	f.Write(debug.Stack())
	fmt.Fprintf(f, "\n")

	fmt.Fprintf(f, "All Goroutines Stack Dump:\n")
	fmt.Fprintf(f, "----------------------------------------------------------------\n")
	buf := make([]byte, 1024*1024)
	n := runtime.Stack(buf, true)
	f.Write(buf[:n])
	fmt.Fprintf(f, "\n")

	fmt.Fprintf(f, "System Information:\n")
	fmt.Fprintf(f, "----------------------------------------------------------------\n")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Fprintf(f, "Goroutines:        %d\n", runtime.NumGoroutine())
	fmt.Fprintf(f, "Memory Allocated:  %d MB\n", m.Alloc/1024/1024)
	fmt.Fprintf(f, "Memory Total:      %d MB\n", m.TotalAlloc/1024/1024)
	fmt.Fprintf(f, "Memory Sys:        %d MB\n", m.Sys/1024/1024)
	fmt.Fprintf(f, "GC Runs:           %d\n", m.NumGC)
	fmt.Fprintf(f, "File Descriptors:  %d\n", CountOpenFDs())
	fmt.Fprintf(f, "\n================================================================\n\n")

	if f != os.Stderr {
		fmt.Fprintf(os.Stderr, "\nfatal error, crash log saved to: %s\n", path)
		fmt.Fprintf(os.Stderr, "error: %v\n\n", r)
	}
}

// SafeGo launches fn in its own goroutine with panic recovery that
// writes a crash log instead of bringing the whole process down. name
// identifies the goroutine in the report.
func SafeGo(crashLogPath, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				WriteCrashLog(crashLogPath, r, name)
			}
		}()
		fn()
	}()
}
