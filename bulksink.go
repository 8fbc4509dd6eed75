package bulksink

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Mutation is a single set-cell operation applied to a row. The sink treats
// mutations as opaque payload; adapters translate them to the backend's wire
// format.
type Mutation struct {
	Family string
	Column string
	Value  []byte
}

// Record is one row key with its ordered mutations. Timestamp is the source
// stream's event time; it is carried through for adapters but plays no part
// in batching or dispatch, which run on processing time only.
//
// Records are treated as immutable once handed to the sink.
type Record struct {
	Key       []byte
	Mutations []Mutation
	Timestamp time.Time
}

// Client opens writers against a named table. Implementations wrap a storage
// backend's client; see [NewBigtableClient] for the Cloud Bigtable adapter or
// implement the interface directly for other backends.
type Client interface {
	// Open returns a writer for the given table. Called lazily, once per
	// sink worker.
	Open(ctx context.Context, table string) (Writer, error)
}

// Writer is an open connection to the target table, owned by exactly one sink
// worker. WriteAsync must not block; the returned channel delivers the
// write's outcome once, possibly from a writer-internal goroutine. Flush
// blocks until every write issued so far has settled. Close releases the
// writer and is called exactly once.
//
// The sink calls WriteAsync and Flush from a single goroutine per writer, so
// implementations need not make those two safe against each other.
type Writer interface {
	WriteAsync(ctx context.Context, rec Record) <-chan error
	Flush(ctx context.Context) error
	Close() error
}

// Sink writes a stream of keyed mutation records into a table in time-bounded
// batches. Records are spread across shards at random, each shard's batch
// fires a fixed interval after its first buffered record, and fired batches
// are dispatched asynchronously through per-worker writers. Construct with
// [New], configure with the With* methods, then call [Sink.Run].
type Sink struct {
	client Client
	table  string

	// Configuration overrides (nil means use the default)
	shards        *int
	flushInterval *time.Duration
	workers       *int
	bundleSize    *int
	logger        *slog.Logger

	stats *Stats
}

// New creates a Sink that writes to the named table through the given client.
func New(client Client, table string) *Sink {
	return &Sink{
		client: client,
		table:  table,
		stats:  &Stats{},
	}
}

// Stats returns the sink's run counters. Safe to read concurrently while the
// sink is running.
func (s *Sink) Stats() *Stats { return s.stats }

// Run consumes the record stream until it is exhausted or fails. Each record
// is assigned a random shard, buffered until that shard's flush interval
// elapses, and then dispatched asynchronously. Run blocks until every
// buffered record has been flushed and every outstanding write acknowledged,
// or until the first failure.
//
// A non-nil error means the run must be treated as failed as a whole: some
// writes may already have been applied, and Run keeps no record of which.
// Callers retry by re-running the stream, relying on the idempotence of
// per-cell mutations.
func (s *Sink) Run(ctx context.Context, records iter.Seq2[Record, error]) error {
	if s.client == nil {
		return errors.New("bulksink: nil client")
	}
	if s.table == "" {
		return errors.New("bulksink: empty table name")
	}

	group, groupCtx := errgroup.WithContext(ctx)

	workerCount := s.resolveWorkers()
	batchCh := make(chan []Record, workerCount)

	assigner := newShardAssigner(s.resolveShards())
	windower := newWindower(groupCtx, s.resolveShards(), s.resolveFlushInterval(), batchCh)

	group.Go(func() error {
		return s.runFeed(groupCtx, records, windower, assigner)
	})

	for range workerCount {
		group.Go(func() error {
			ex := newExecutor(s.client, s.table, s.resolveBundleSize(), s.resolveLogger(), s.stats)
			return ex.run(groupCtx, batchCh)
		})
	}

	return group.Wait()
}

// runFeed drives records from the source into the windower. Closing the
// windower on exit flushes every open pane and closes the batch channel so
// workers can drain and finish.
func (s *Sink) runFeed(ctx context.Context, records iter.Seq2[Record, error], w *windower, assigner shardAssigner) error {
	defer w.close()

	for rec, err := range records {
		if err != nil {
			return fmt.Errorf("bulksink: source: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.stats.incReceived(1)
		w.add(assigner.assign(), rec)
	}

	return nil
}
