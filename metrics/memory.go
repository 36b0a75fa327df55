package metrics

import (
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// DefaultMemoryReportInterval is how often the memory reporter samples
// the process RSS unless told otherwise.
const DefaultMemoryReportInterval = 60 * time.Second

// StartMemoryReporter launches a goroutine that periodically samples the
// process resident memory, logs it, and updates the ResidentMemory gauge.
// It is an operational aid only and has no effect on admission decisions.
// Call the returned function to stop it.
func StartMemoryReporter(interval time.Duration, logger *log.Logger) func() {
	if interval <= 0 {
		interval = DefaultMemoryReportInterval
	}
	if logger == nil {
		logger = log.Default()
	}

	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				kb := residentMemoryKB()
				ResidentMemory.Set(float64(kb))
				logger.Printf("[stats] using %dKB of RSS memory", kb)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}

// residentMemoryKB reads VmRSS from /proc/self/status. On platforms
// without procfs it falls back to the Go runtime's view of memory
// obtained from the OS, which overstates RSS but tracks the same trend.
func residentMemoryKB() int64 {
	if kb, ok := procSelfRSSKB(); ok {
		return kb
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(ms.Sys / 1024)
}

func procSelfRSSKB() (int64, bool) {
	data, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return 0, false
	}

	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		// Format: "VmRSS:     1234 kB"
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, false
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0, false
		}
		return kb, true
	}
	return 0, false
}
