package profiler

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"time"
)

// passTotal accumulates the time spent in one render pass since the last report.
type passTotal struct {
	name  string
	total time.Duration
	count int
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	passes         []passTotal
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		frameCount:     0,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
}

// RecordPass adds one frame's time for a render pass. Passes are reported in first-seen order.
//
// Parameters:
//   - name: the pass name
//   - d: the time spent in the pass this frame
func (p *Profiler) RecordPass(name string, d time.Duration) {
	for i := range p.passes {
		if p.passes[i].name == name {
			p.passes[i].total += d
			p.passes[i].count++
			return
		}
	}
	p.passes = append(p.passes, passTotal{name: name, total: d, count: 1})
}

// PassAverages returns the mean time per recorded pass since the last report, formatted as
// "name=duration" pairs.
func (p *Profiler) PassAverages() string {
	if len(p.passes) == 0 {
		return ""
	}
	parts := make([]string, len(p.passes))
	for i, pt := range p.passes {
		parts[i] = fmt.Sprintf("%s=%s", pt.name, (pt.total / time.Duration(pt.count)).Round(time.Microsecond))
	}
	return strings.Join(parts, " ")
}

// SetInterval changes how often Tick logs. Non-positive intervals are ignored.
func (p *Profiler) SetInterval(interval time.Duration) {
	if interval > 0 {
		p.updateInterval = interval
	}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed >= p.updateInterval {
		fps := float64(p.frameCount) / elapsed.Seconds()

		runtime.ReadMemStats(&p.memStats)
		// Alloc: Bytes of allocated heap objects (live memory)
		// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
		// Sys: Total bytes of memory obtained from the OS (actual process footprint)
		allocMB := float64(p.memStats.Alloc) / 1024 / 1024
		sysMB := float64(p.memStats.Sys) / 1024 / 1024

		// Calculate allocation rate (MB/sec)
		allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
		allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

		// Calculate GC pause stats (last pause and max recent pause)
		gcCount := p.memStats.NumGC
		var lastPauseUs, maxPauseUs uint64
		if gcCount > 0 {
			// PauseNs is a circular buffer of last 256 GC pauses
			lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

			// Find max pause since last tick
			startIdx := p.lastGCCount
			if gcCount-startIdx > 256 {
				startIdx = gcCount - 256
			}
			for i := startIdx; i < gcCount; i++ {
				pause := p.memStats.PauseNs[i%256] / 1000
				if pause > maxPauseUs {
					maxPauseUs = pause
				}
			}
		}

		log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			fps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)
		if passes := p.PassAverages(); passes != "" {
			log.Printf("[Profiler] Passes: %s", passes)
		}
		p.passes = p.passes[:0]

		p.frameCount = 0
		p.lastTime = currentTime
		p.lastGCCount = gcCount
		p.lastTotalAlloc = p.memStats.TotalAlloc
		return true
	}

	return false
}
