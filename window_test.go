package bulksink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testRecord(key string) Record {
	return Record{
		Key:       []byte(key),
		Mutations: []Mutation{{Family: "cf", Column: "col", Value: []byte("v")}},
	}
}

func receiveBatch(t *testing.T, out <-chan []Record) []Record {
	t.Helper()
	select {
	case batch := <-out:
		return batch
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for batch")
		return nil
	}
}

func batchKeys(batch []Record) []string {
	keys := make([]string, 0, len(batch))
	for _, rec := range batch {
		keys = append(keys, string(rec.Key))
	}
	return keys
}

func TestWindower_FiresAfterInterval(t *testing.T) {
	out := make(chan []Record, 16)
	w := newWindower(context.Background(), 1, 50*time.Millisecond, out)

	start := time.Now()
	w.add(0, testRecord("a"))
	w.add(0, testRecord("b"))

	// Nothing fires before the interval elapses.
	select {
	case batch := <-out:
		t.Fatalf("batch fired early: %v", batchKeys(batch))
	case <-time.After(20 * time.Millisecond):
	}

	batch := receiveBatch(t, out)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	require.ElementsMatch(t, []string{"a", "b"}, batchKeys(batch))

	w.close()
}

func TestWindower_DiscardsFiredPanes(t *testing.T) {
	out := make(chan []Record, 16)
	w := newWindower(context.Background(), 1, 30*time.Millisecond, out)

	w.add(0, testRecord("a"))
	first := receiveBatch(t, out)
	require.Equal(t, []string{"a"}, batchKeys(first))

	// A record after the firing starts a fresh pane; the fired record does
	// not re-accumulate.
	w.add(0, testRecord("b"))
	second := receiveBatch(t, out)
	require.Equal(t, []string{"b"}, batchKeys(second))

	w.close()
}

func TestWindower_LateRecordJoinsOpenPane(t *testing.T) {
	out := make(chan []Record, 16)
	w := newWindower(context.Background(), 1, 80*time.Millisecond, out)

	w.add(0, testRecord("a"))
	time.Sleep(20 * time.Millisecond)
	w.add(0, testRecord("late"))

	batch := receiveBatch(t, out)
	require.ElementsMatch(t, []string{"a", "late"}, batchKeys(batch))

	w.close()
}

func TestWindower_ShardsBatchIndependently(t *testing.T) {
	out := make(chan []Record, 16)
	w := newWindower(context.Background(), 2, 40*time.Millisecond, out)

	w.add(0, testRecord("a"))
	w.add(1, testRecord("b"))
	w.add(0, testRecord("c"))

	first := receiveBatch(t, out)
	second := receiveBatch(t, out)

	var all []string
	all = append(all, batchKeys(first)...)
	all = append(all, batchKeys(second)...)
	require.ElementsMatch(t, []string{"a", "b", "c"}, all)

	// Each batch holds records of exactly one shard.
	require.True(t, len(first) == 1 || len(first) == 2)
	require.Len(t, all, 3)

	w.close()
}

func TestWindower_CloseFlushesPendingPanes(t *testing.T) {
	out := make(chan []Record, 16)
	w := newWindower(context.Background(), 4, time.Hour, out)

	w.add(0, testRecord("a"))
	w.add(2, testRecord("b"))
	w.add(2, testRecord("c"))

	w.close()

	var all []string
	for batch := range out {
		all = append(all, batchKeys(batch)...)
	}
	require.ElementsMatch(t, []string{"a", "b", "c"}, all)
}

func TestWindower_CloseWithEmptyPanes(t *testing.T) {
	out := make(chan []Record, 16)
	w := newWindower(context.Background(), 4, time.Hour, out)

	w.close()

	_, open := <-out
	require.False(t, open)
}

func TestWindower_RepeatsForever(t *testing.T) {
	out := make(chan []Record, 16)
	w := newWindower(context.Background(), 1, 25*time.Millisecond, out)

	var all []string
	for _, key := range []string{"a", "b", "c"} {
		w.add(0, testRecord(key))
		all = append(all, batchKeys(receiveBatch(t, out))...)
	}
	require.Equal(t, []string{"a", "b", "c"}, all)

	w.close()
}

func TestWindower_NoLossAcrossShardCounts(t *testing.T) {
	for _, shards := range []int{1, 3, 8} {
		out := make(chan []Record, 256)
		w := newWindower(context.Background(), shards, 20*time.Millisecond, out)
		assigner := newShardAssigner(shards)

		var want []string
		for i := range 200 {
			key := string(rune('a'+i%26)) + string(rune('0'+i%10))
			want = append(want, key)
			w.add(assigner.assign(), testRecord(key))
			if i%50 == 49 {
				time.Sleep(25 * time.Millisecond)
			}
		}
		w.close()

		var got []string
		for batch := range out {
			got = append(got, batchKeys(batch)...)
		}
		require.ElementsMatchf(t, want, got, "shards=%d", shards)
	}
}
