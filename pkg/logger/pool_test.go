package logger

import "testing"

func TestLogEntryPoolMetricsTracksAllocationAndReuse(t *testing.T) {
	before := LogEntryPoolMetrics()

	logMemory.TrackAllocation(42)
	logMemory.TrackReuse()

	after := LogEntryPoolMetrics()
	if after.AllocatedBytes != before.AllocatedBytes+42 {
		t.Fatalf("got AllocatedBytes=%d, want %d", after.AllocatedBytes, before.AllocatedBytes+42)
	}
	if after.ReuseCount != before.ReuseCount+1 {
		t.Fatalf("got ReuseCount=%d, want %d", after.ReuseCount, before.ReuseCount+1)
	}
}
