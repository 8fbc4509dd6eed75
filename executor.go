package bulksink

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// executor is one writer worker. It lazily opens a single writer on first
// use, dispatches each record of a fired batch asynchronously, funnels
// failed completions into its failure tracker, and flushes at bundle
// boundaries. The writer is closed exactly once when the worker exits,
// success or failure.
type executor struct {
	client     Client
	table      string
	bundleSize int
	logger     *slog.Logger
	stats      *Stats

	writer   Writer
	written  int64
	failures failureTracker
	watchers sync.WaitGroup
}

func newExecutor(client Client, table string, bundleSize int, logger *slog.Logger, stats *Stats) *executor {
	return &executor{
		client:     client,
		table:      table,
		bundleSize: bundleSize,
		logger:     logger,
		stats:      stats,
	}
}

// run drains fired batches until the channel closes or the context is
// cancelled. Batches are processed in bundles of bundleSize; each bundle
// ends with a flush barrier, and a partial bundle is flushed when the
// channel closes.
func (e *executor) run(ctx context.Context, batches <-chan []Record) (err error) {
	defer func() {
		if cerr := e.teardown(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	processed := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-batches:
			if !ok {
				if processed > 0 {
					return e.finishBundle(ctx)
				}
				return nil
			}

			if processed == 0 {
				if err := e.startBundle(ctx); err != nil {
					return err
				}
			}
			if err := e.processBatch(ctx, batch); err != nil {
				return err
			}

			processed++
			if processed >= e.bundleSize {
				if err := e.finishBundle(ctx); err != nil {
					return err
				}
				processed = 0
			}
		}
	}
}

// startBundle opens the writer if this worker has none yet and resets the
// bundle's dispatch counter. The writer, once open, is reused by every
// bundle this worker processes.
func (e *executor) startBundle(ctx context.Context) error {
	if e.writer == nil {
		w, err := e.client.Open(ctx, e.table)
		if err != nil {
			return fmt.Errorf("bulksink: open writer for table %q: %w", e.table, err)
		}
		e.writer = w
	}
	e.written = 0
	return nil
}

// processBatch dispatches every record of the batch asynchronously. Before
// dispatching it checks for failures left over from earlier batches in the
// bundle: no new writes are issued while unacknowledged failures are
// pending. Each dispatch gets a watcher that appends failed completions to
// the tracker; the watcher only ever touches the tracker, so it is safe
// alongside the worker's own control flow.
func (e *executor) processBatch(ctx context.Context, batch []Record) error {
	if err := e.checkForFailures(); err != nil {
		return err
	}

	for _, rec := range batch {
		done := e.writer.WriteAsync(ctx, rec)

		e.watchers.Add(1)
		go func(rec Record) {
			defer e.watchers.Done()
			if err := <-done; err != nil {
				e.failures.append(&WriteError{Key: rec.Key, Err: err})
				e.stats.incFailed(1)
			}
		}(rec)

		// Dispatch count, not confirmed-success count; confirmation is
		// asynchronous.
		e.written++
		e.stats.incDispatched(1)
	}

	e.stats.incBatches(1)
	return nil
}

// finishBundle is the bundle's synchronization barrier: flush the writer,
// wait for every completion watcher, then surface any accumulated failures.
func (e *executor) finishBundle(ctx context.Context) error {
	if err := e.writer.Flush(ctx); err != nil {
		return fmt.Errorf("bulksink: flush table %q: %w", e.table, err)
	}
	e.watchers.Wait()

	if err := e.checkForFailures(); err != nil {
		return err
	}

	e.stats.incFlushes(1)
	e.logger.Debug("wrote records", "table", e.table, "records", e.written)
	return nil
}

// checkForFailures drains the tracker and raises one aggregate error if any
// failures are outstanding. Only the worker goroutine calls this, so the
// drain never races with itself; insertion from watchers is the tracker's
// problem.
func (e *executor) checkForFailures() error {
	detailed, remaining := e.failures.drain()
	if len(detailed) == 0 {
		return nil
	}

	err := newFlushError(detailed, remaining)
	e.logger.Error("bulk write failed", "table", e.table, "failures", err.Total, "error", err)
	return err
}

// teardown closes the writer if one was opened. Runs exactly once per
// worker, whether the worker succeeded or failed.
func (e *executor) teardown() error {
	if e.writer == nil {
		return nil
	}
	w := e.writer
	e.writer = nil
	if err := w.Close(); err != nil {
		return fmt.Errorf("bulksink: close writer for table %q: %w", e.table, err)
	}
	return nil
}
