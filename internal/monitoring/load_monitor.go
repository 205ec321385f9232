package monitoring

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// LoadMonitor tracks bitmap loading work. All counters are safe for
// concurrent use by parallel loaders.
type LoadMonitor struct {
	// Decode metrics
	decodes      atomic.Uint64
	decodeTime   atomic.Uint64 // nanoseconds, summed over all decodes
	decodedBytes atomic.Uint64

	// Cache metrics
	cacheHits atomic.Uint64
	failures  atomic.Uint64

	mutex     sync.RWMutex
	startTime time.Time
}

// NewLoadMonitor creates a new load monitor
func NewLoadMonitor() *LoadMonitor {
	return &LoadMonitor{
		startTime: time.Now(),
	}
}

// DecodeTimer measures a single decode
type DecodeTimer struct {
	monitor   *LoadMonitor
	startTime time.Time
}

// StartDecode begins decode timing
func (lm *LoadMonitor) StartDecode() *DecodeTimer {
	return &DecodeTimer{
		monitor:   lm,
		startTime: time.Now(),
	}
}

// EndDecode records a successful decode of n bytes
func (dt *DecodeTimer) EndDecode(n int) {
	dt.monitor.decodeTime.Add(uint64(time.Since(dt.startTime).Nanoseconds()))
	dt.monitor.decodes.Add(1)
	dt.monitor.decodedBytes.Add(uint64(n))
}

// Fail records a decode or lookup that did not produce a bitmap
func (dt *DecodeTimer) Fail() {
	dt.monitor.failures.Add(1)
}

// CacheHit records a template skipped because its bitmap was already cached
func (lm *LoadMonitor) CacheHit() {
	lm.cacheHits.Add(1)
}

// LoadMetrics is a point-in-time copy of the counters
type LoadMetrics struct {
	Decodes       uint64
	CacheHits     uint64
	Failures      uint64
	DecodedBytes  uint64
	DecodeTime    time.Duration
	AverageDecode time.Duration
}

// Snapshot returns the current counters
func (lm *LoadMonitor) Snapshot() LoadMetrics {
	m := LoadMetrics{
		Decodes:      lm.decodes.Load(),
		CacheHits:    lm.cacheHits.Load(),
		Failures:     lm.failures.Load(),
		DecodedBytes: lm.decodedBytes.Load(),
		DecodeTime:   time.Duration(lm.decodeTime.Load()),
	}
	if m.Decodes > 0 {
		m.AverageDecode = m.DecodeTime / time.Duration(m.Decodes)
	}
	return m
}

// GetDetailedStats returns the counters plus process information, keyed for printing
func (lm *LoadMonitor) GetDetailedStats() map[string]interface{} {
	lm.mutex.RLock()
	uptime := time.Since(lm.startTime)
	lm.mutex.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m := lm.Snapshot()
	return map[string]interface{}{
		"uptime_seconds":  uptime.Seconds(),
		"decodes":         m.Decodes,
		"cache_hits":      m.CacheHits,
		"failures":        m.Failures,
		"decoded_kb":      m.DecodedBytes / 1024,
		"avg_decode_ms":   float64(m.AverageDecode) / float64(time.Millisecond),
		"memory_alloc_mb": memStats.Alloc / 1024 / 1024,
		"goroutines":      runtime.NumGoroutine(),
	}
}

// Reset zeroes all counters
func (lm *LoadMonitor) Reset() {
	lm.decodes.Store(0)
	lm.decodeTime.Store(0)
	lm.decodedBytes.Store(0)
	lm.cacheHits.Store(0)
	lm.failures.Store(0)

	lm.mutex.Lock()
	lm.startTime = time.Now()
	lm.mutex.Unlock()
}
