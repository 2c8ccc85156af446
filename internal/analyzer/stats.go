package analyzer

import (
	"sync/atomic"
	"time"
)

// stats tracks analysis counters with atomics so concurrent requests never
// serialize on a lock just to bump a counter.
type stats struct {
	total           atomic.Int64
	successful      atomic.Int64
	failed          atomic.Int64
	processingNanos atomic.Int64
}

func (s *stats) begin() {
	s.total.Add(1)
}

func (s *stats) succeed(elapsed time.Duration) {
	s.successful.Add(1)
	s.processingNanos.Add(int64(elapsed))
}

func (s *stats) fail() {
	s.failed.Add(1)
}

// Stats returns a snapshot of the analysis counters plus the derived
// average processing time and success rate.
func (a *Analyzer) Stats() map[string]any {
	total := a.stats.total.Load()
	successful := a.stats.successful.Load()
	failed := a.stats.failed.Load()
	totalTime := time.Duration(a.stats.processingNanos.Load()).Seconds()

	averageTime := 0.0
	if successful > 0 {
		averageTime = totalTime / float64(successful)
	}

	successRate := 0.0
	if total > 0 {
		successRate = float64(successful) / float64(total)
	}

	return map[string]any{
		"total_analyses":          total,
		"successful_analyses":     successful,
		"failed_analyses":         failed,
		"total_processing_time":   totalTime,
		"average_processing_time": averageTime,
		"success_rate":            successRate,
	}
}
