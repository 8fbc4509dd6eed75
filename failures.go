package bulksink

import "sync"

// maxDetailedFailures caps how many failures a single drain removes and
// details in the aggregate error. Failures beyond the cap stay queued and
// are counted, not lost.
const maxDetailedFailures = 10

// failureTracker collects write failures reported by completion callbacks.
// Many goroutines may append concurrently; only the owning worker goroutine
// may drain, so removal never races with itself.
type failureTracker struct {
	mu   sync.Mutex
	errs []*WriteError
}

// append records one failure. Cheap and non-blocking; safe to call from
// writer-internal goroutines.
func (t *failureTracker) append(err *WriteError) {
	t.mu.Lock()
	t.errs = append(t.errs, err)
	t.mu.Unlock()
}

// drain removes up to maxDetailedFailures entries in arrival order and
// reports how many remain queued. Returns (nil, 0) when the tracker is
// empty.
func (t *failureTracker) drain() ([]*WriteError, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.errs) == 0 {
		return nil, 0
	}

	n := min(len(t.errs), maxDetailedFailures)
	detailed := make([]*WriteError, n)
	copy(detailed, t.errs[:n])
	t.errs = append(t.errs[:0:0], t.errs[n:]...)

	return detailed, len(t.errs)
}
