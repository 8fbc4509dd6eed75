package bulksink

import (
	"log/slog"
	"sync/atomic"
)

// Stats provides sink run counters with thread-safe access. Counter fields
// use atomic operations for safe concurrent access from worker goroutines
// and completion watchers.
type Stats struct {
	received   atomic.Int64
	dispatched atomic.Int64
	failed     atomic.Int64
	batches    atomic.Int64
	flushes    atomic.Int64
}

// Received returns the number of records taken from the source stream.
func (s *Stats) Received() int64 { return s.received.Load() }

// Dispatched returns the number of records handed to a writer. This counts
// dispatches, not confirmed successes.
func (s *Stats) Dispatched() int64 { return s.dispatched.Load() }

// Failed returns the number of writes that completed with an error.
func (s *Stats) Failed() int64 { return s.failed.Load() }

// Batches returns the number of fired batches processed.
func (s *Stats) Batches() int64 { return s.batches.Load() }

// Flushes returns the number of completed flush barriers.
func (s *Stats) Flushes() int64 { return s.flushes.Load() }

// LogValue implements slog.LogValuer for structured logging.
func (s *Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("received", s.Received()),
		slog.Int64("dispatched", s.Dispatched()),
		slog.Int64("failed", s.Failed()),
		slog.Int64("batches", s.Batches()),
		slog.Int64("flushes", s.Flushes()),
	)
}

func (s *Stats) incReceived(n int64) int64   { return s.received.Add(n) }
func (s *Stats) incDispatched(n int64) int64 { return s.dispatched.Add(n) }
func (s *Stats) incFailed(n int64) int64     { return s.failed.Add(n) }
func (s *Stats) incBatches(n int64) int64    { return s.batches.Add(n) }
func (s *Stats) incFlushes(n int64) int64    { return s.flushes.Add(n) }
