package bulksink

import (
	"context"
	"sync"

	"cloud.google.com/go/bigtable"
)

// DefaultBigtableConcurrency caps in-flight Apply calls per writer.
const DefaultBigtableConcurrency = 64

// BigtableClient adapts a Cloud Bigtable client to the [Client] capability.
// Writers opened through it dispatch each record as its own Apply with
// bounded concurrency; the underlying client is shared across writers and
// stays open until [BigtableClient.Close].
type BigtableClient struct {
	client      *bigtable.Client
	concurrency int
}

// NewBigtableClient wraps an existing Bigtable client. The caller keeps
// ownership of authentication and connection setup.
func NewBigtableClient(client *bigtable.Client) *BigtableClient {
	return &BigtableClient{
		client:      client,
		concurrency: DefaultBigtableConcurrency,
	}
}

// WithConcurrency overrides the per-writer cap on in-flight Apply calls.
// Values less than 1 are ignored.
func (c *BigtableClient) WithConcurrency(n int) *BigtableClient {
	if n >= 1 {
		c.concurrency = n
	}
	return c
}

// Open implements [Client].
func (c *BigtableClient) Open(_ context.Context, table string) (Writer, error) {
	return &bigtableWriter{
		tbl: c.client.Open(table),
		sem: make(chan struct{}, c.concurrency),
	}, nil
}

// Close releases the underlying Bigtable client. Call after every sink using
// this client has finished.
func (c *BigtableClient) Close() error {
	return c.client.Close()
}

// bigtableWriter issues one Apply per record on its own goroutine, gated by
// a semaphore. WriteAsync and Flush are called from a single sink worker, so
// the wait group's Add always happens before Wait.
type bigtableWriter struct {
	tbl *bigtable.Table
	sem chan struct{}
	wg  sync.WaitGroup
}

func (w *bigtableWriter) WriteAsync(ctx context.Context, rec Record) <-chan error {
	done := make(chan error, 1)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		select {
		case w.sem <- struct{}{}:
		case <-ctx.Done():
			done <- ctx.Err()
			return
		}
		defer func() { <-w.sem }()

		done <- w.tbl.Apply(ctx, string(rec.Key), recordMutation(rec))
	}()

	return done
}

// Flush blocks until every Apply issued so far has settled.
func (w *bigtableWriter) Flush(_ context.Context) error {
	w.wg.Wait()
	return nil
}

// Close waits out any stragglers. The shared Bigtable client is not closed
// here; that belongs to [BigtableClient.Close].
func (w *bigtableWriter) Close() error {
	w.wg.Wait()
	return nil
}

// recordMutation translates a record's mutations to one Bigtable mutation.
// A zero record timestamp means server-assigned time.
func recordMutation(rec Record) *bigtable.Mutation {
	ts := bigtable.Now()
	if !rec.Timestamp.IsZero() {
		ts = bigtable.Time(rec.Timestamp)
	}

	mut := bigtable.NewMutation()
	for _, m := range rec.Mutations {
		mut.Set(m.Family, m.Column, ts, m.Value)
	}
	return mut
}
