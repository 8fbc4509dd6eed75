// Package bulksink writes an unbounded stream of keyed mutation records into
// a remote storage table, batching for throughput while bounding load spikes.
//
// The backend charges far more per call than per record, so the sink's job is
// the discipline between the stream and the table: spread records across
// shards for write concurrency, accumulate each shard's records into a
// time-bounded batch, dispatch fired batches asynchronously without blocking
// the stream, and surface every write failure even though dispatch itself is
// fire-and-forget.
//
// # Quick Start
//
// Wrap your storage client in the [Client] interface (or use the Cloud
// Bigtable adapter) and run the sink over a record stream:
//
//	client := bulksink.NewBigtableClient(btClient)
//
//	records := func(yield func(bulksink.Record, error) bool) {
//	    for msg := range consumer.Messages() {
//	        rec, err := toRecord(msg)
//	        if !yield(rec, err) {
//	            return
//	        }
//	    }
//	}
//
//	err := bulksink.New(client, "events").
//	    WithShards(8).
//	    WithFlushInterval(time.Second).
//	    Run(ctx, records)
//
// Run consumes the stream until it ends or a write fails, then blocks until
// every buffered record has been flushed and acknowledged.
//
// # Sharding and Batching
//
// Each record is assigned to one of N shards uniformly at random. Sharding is
// stateless — a key has no shard affinity — and exists only to bound how many
// records can be co-batched and to spread write concurrency across N
// independent batch cycles.
//
// Batches form on processing time: a shard's batch fires a fixed interval
// after its first buffered record, then the shard starts empty again. Panes
// discard on fire, never accumulate across firings, and the trigger repeats
// for as long as records arrive. A record that shows up late by stream time
// still joins whatever pane is open when it lands; lateness never rejects a
// record. When the stream ends, every non-empty pane fires one final time, so
// each input record reaches a writer exactly once.
//
// # Workers, Bundles, and Failures
//
// Fired batches are drained by writer workers (one by default; see
// [Sink.WithWorkers]). Each worker opens one [Writer] lazily on first use,
// reuses it for every batch it processes, and closes it exactly once on exit
// — including when the run fails.
//
// Records are dispatched with [Writer.WriteAsync], which must not block. A
// failed completion is recorded, not thrown: it lands in the worker's failure
// tracker, which many completion goroutines may append to but only the worker
// itself drains. The worker checks the tracker before each batch and at every
// flush barrier (every bundle of batches, and at stream end). An outstanding
// failure fails the run with a single [FlushError] reporting the true total
// count and detailing up to ten causes, reachable via errors.As:
//
//	var flushErr *bulksink.FlushError
//	if errors.As(err, &flushErr) {
//	    log.Printf("%d writes failed", flushErr.Total)
//	}
//
// A failed run keeps no record of which writes already landed. Retry by
// re-running the stream and rely on per-cell mutations being idempotent.
//
// # Observability
//
// Diagnostics go to an injected *slog.Logger ([Sink.WithLogger]; defaults to
// slog.Default()). Run counters are available as [Stats], which implements
// slog.LogValuer, and can be exported to Prometheus:
//
//	prometheus.MustRegister(bulksink.NewStatsCollector(sink.Stats(), "events"))
//
// Dispatched counts records handed to the writer, not confirmed successes —
// confirmation is asynchronous, and failures show up in Failed.
package bulksink
