package bulksink

import (
	"log/slog"
	"time"
)

// Default configuration values.
const (
	DefaultShards        = 4
	DefaultFlushInterval = time.Second
	DefaultWorkers       = 1
	DefaultBundleSize    = 8
)

// WithShards overrides the number of shards records are spread across.
// More shards means more concurrent batch/flush cycles and smaller batches.
// Values less than 1 are ignored.
func (s *Sink) WithShards(n int) *Sink {
	if n >= 1 {
		s.shards = &n
	}
	return s
}

// WithFlushInterval overrides how long a shard's batch accumulates before it
// fires, measured from the first record buffered in the current batch.
// Values of zero or less are ignored.
func (s *Sink) WithFlushInterval(d time.Duration) *Sink {
	if d > 0 {
		s.flushInterval = &d
	}
	return s
}

// WithWorkers overrides the number of writer workers. Each worker owns one
// writer for its lifetime and processes fired batches independently.
// Values less than 1 are ignored.
func (s *Sink) WithWorkers(n int) *Sink {
	if n >= 1 {
		s.workers = &n
	}
	return s
}

// WithBundleSize overrides how many batches a worker processes between flush
// barriers. A flush blocks until all outstanding writes settle and surfaces
// any accumulated failures, so smaller bundles detect failures sooner at the
// cost of more frequent stalls. Values less than 1 are ignored.
func (s *Sink) WithBundleSize(n int) *Sink {
	if n >= 1 {
		s.bundleSize = &n
	}
	return s
}

// WithLogger sets the diagnostic sink for the run. Defaults to
// slog.Default().
func (s *Sink) WithLogger(logger *slog.Logger) *Sink {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Sink) resolveShards() int {
	if s.shards != nil {
		return *s.shards
	}
	return DefaultShards
}

func (s *Sink) resolveFlushInterval() time.Duration {
	if s.flushInterval != nil {
		return *s.flushInterval
	}
	return DefaultFlushInterval
}

func (s *Sink) resolveWorkers() int {
	if s.workers != nil {
		return *s.workers
	}
	return DefaultWorkers
}

func (s *Sink) resolveBundleSize() int {
	if s.bundleSize != nil {
		return *s.bundleSize
	}
	return DefaultBundleSize
}

func (s *Sink) resolveLogger() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
