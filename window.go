package bulksink

import (
	"context"
	"sync"
	"time"
)

// windowPane is one shard's accumulation state. A pane is empty until its
// first record arrives, which starts the flush timer; when the timer fires
// the buffered records are emitted as one batch and the pane resets. Panes
// discard on fire: nothing accumulates across firings.
type windowPane struct {
	records []Record
	timer   *time.Timer
}

// windower groups records by shard on a processing-time trigger: each
// shard's batch fires a fixed interval after the first record buffered in
// the current pane, repeating for as long as records keep arriving. Records
// that arrive while a pane is open always join it, however late they are by
// stream time.
//
// add is called from a single feed goroutine; fire runs on timer goroutines.
// Pane state is guarded by mu.
type windower struct {
	interval time.Duration
	out      chan<- []Record
	ctx      context.Context

	mu      sync.Mutex
	closed  bool
	sending sync.WaitGroup
	panes   []windowPane
}

func newWindower(ctx context.Context, shards int, interval time.Duration, out chan<- []Record) *windower {
	return &windower{
		interval: interval,
		out:      out,
		ctx:      ctx,
		panes:    make([]windowPane, shards),
	}
}

// add buffers rec into the given shard's pane, starting the pane's flush
// timer if this is its first record. Never blocks: batch size is bounded by
// the flush interval, not by backpressure here.
func (w *windower) add(shard int, rec Record) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	pane := &w.panes[shard]
	pane.records = append(pane.records, rec)
	if pane.timer == nil {
		pane.timer = time.AfterFunc(w.interval, func() {
			w.fire(shard)
		})
	}
}

// fire emits the shard's buffered records as one batch and resets the pane.
// Runs on the timer goroutine. If close won the race, the pane's records are
// left in place for close to collect.
func (w *windower) fire(shard int) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}

	pane := &w.panes[shard]
	batch := pane.records
	pane.records = nil
	pane.timer = nil

	if len(batch) == 0 {
		w.mu.Unlock()
		return
	}

	w.sending.Add(1)
	w.mu.Unlock()
	defer w.sending.Done()

	select {
	case w.out <- batch:
	case <-w.ctx.Done():
	}
}

// close ends the collection window: stops all timers, emits every non-empty
// pane one final time (the stream is over, so final panes fire early rather
// than waiting out the interval), waits for in-flight timer emissions, and
// closes the output channel.
func (w *windower) close() {
	w.mu.Lock()
	w.closed = true

	var final [][]Record
	for i := range w.panes {
		pane := &w.panes[i]
		if pane.timer != nil {
			pane.timer.Stop()
			pane.timer = nil
		}
		if len(pane.records) > 0 {
			final = append(final, pane.records)
			pane.records = nil
		}
	}
	w.mu.Unlock()

	for _, batch := range final {
		select {
		case w.out <- batch:
		case <-w.ctx.Done():
		}
	}

	w.sending.Wait()
	close(w.out)
}
