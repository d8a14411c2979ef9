package logger

import "io"

// stageWriter adapts a stage name into an io.Writer that forwards
// whole writes to the LogAggregator as one log line, letting build
// stage stdout interleave cleanly with slog lines when multiple async
// stages run concurrently.
type stageWriter struct {
	aggregator *LogAggregator
	stageName  string
}

// StageWriter returns a writer that feeds every Write call into the
// aggregator's per-stage log buffer, keyed by stageName instead of by
// a build-routine id.
func StageWriter(format, stageName string) io.Writer {
	return &stageWriter{aggregator: NewLogAggregator(format), stageName: stageName}
}

func (w *stageWriter) Write(p []byte) (int, error) {
	w.aggregator.LogMessage(w.stageName, string(p))
	return len(p), nil
}

// StageDone reports a stage's terminal state to the aggregator so its
// entry renders as completed (or failed) rather than in-progress.
func StageDone(format, stageName string, failed bool) {
	agg := NewLogAggregator(format)
	if failed {
		agg.FailedMessage(stageName, "")
		return
	}
	agg.SuccessMessage(stageName, "")
}
