package bulksink

import (
	"fmt"
	"strings"
)

// WriteError is a single failed write: the offending row key plus the cause
// reported by the writer. It never surfaces alone; failed writes are
// collected and raised together as a [FlushError].
type WriteError struct {
	Key []byte
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("error mutating row %q", e.Key)
}

func (e *WriteError) Unwrap() error { return e.Err }

// FlushError aggregates the write failures outstanding when a worker checked
// its failure tracker. Total is the true failure count; at most
// maxDetailedFailures causes are detailed in the message and carried as
// wrapped errors, reachable through errors.Is and errors.As.
type FlushError struct {
	Total    int
	Detailed int

	causes []*WriteError
	msg    string
}

func newFlushError(detailed []*WriteError, remaining int) *FlushError {
	var b strings.Builder
	for _, e := range detailed {
		b.WriteString("\n")
		b.WriteString(e.Error())
		if e.Err != nil {
			b.WriteString(": ")
			b.WriteString(e.Err.Error())
		}
	}

	total := len(detailed) + remaining
	return &FlushError{
		Total:    total,
		Detailed: len(detailed),
		causes:   detailed,
		msg: fmt.Sprintf("bulksink: at least %d errors occurred writing to table, first %d errors:%s",
			total, len(detailed), b.String()),
	}
}

func (e *FlushError) Error() string { return e.msg }

// Causes returns the detailed failures, in arrival order.
func (e *FlushError) Causes() []*WriteError { return e.causes }

// Unwrap exposes the detailed failures to the errors package.
func (e *FlushError) Unwrap() []error {
	errs := make([]error, len(e.causes))
	for i, c := range e.causes {
		errs[i] = c
	}
	return errs
}
