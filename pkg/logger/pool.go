package logger

import "sync/atomic"

// entryMemoryTracker counts the byte cost and pool-reuse rate of
// LogAggregator's per-stage LogEntry pool, so a long-running `foundry
// build --progress=progress` session can report whether pooling is
// actually paying for itself.
type entryMemoryTracker struct {
	allocatedBytes int64
	reuseCount     int64
}

var logMemory entryMemoryTracker

// TrackAllocation records n bytes charged against a stage's message
// buffer (string content plus slice-header overhead).
func (t *entryMemoryTracker) TrackAllocation(n int64) {
	atomic.AddInt64(&t.allocatedBytes, n)
}

// TrackReuse records one LogEntry pulled from entryPool instead of
// freshly allocated.
func (t *entryMemoryTracker) TrackReuse() {
	atomic.AddInt64(&t.reuseCount, 1)
}

// EntryPoolMetrics reports logMemory's counters as of this call.
type EntryPoolMetrics struct {
	AllocatedBytes int64
	ReuseCount     int64
}

// LogEntryPoolMetrics returns the current LogEntry pooling metrics for
// the process-wide log aggregator.
func LogEntryPoolMetrics() EntryPoolMetrics {
	return EntryPoolMetrics{
		AllocatedBytes: atomic.LoadInt64(&logMemory.allocatedBytes),
		ReuseCount:     atomic.LoadInt64(&logMemory.reuseCount),
	}
}
