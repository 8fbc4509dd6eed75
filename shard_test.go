package bulksink

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShardAssigner_Range(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{name: "single shard", n: 1},
		{name: "two shards", n: 2},
		{name: "many shards", n: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assigner := newShardAssigner(tt.n)
			for range 1000 {
				shard := assigner.assign()
				require.GreaterOrEqual(t, shard, 0)
				require.Less(t, shard, tt.n)
			}
		})
	}
}

func TestShardAssigner_SingleShardAlwaysZero(t *testing.T) {
	assigner := newShardAssigner(1)
	for range 100 {
		require.Equal(t, 0, assigner.assign())
	}
}

func TestShardAssigner_SpreadsAcrossShards(t *testing.T) {
	const n = 4
	assigner := newShardAssigner(n)

	hits := make([]int, n)
	for range 4000 {
		hits[assigner.assign()]++
	}

	// Uniform randomness over 4000 draws makes an empty shard vanishingly
	// unlikely.
	for shard, count := range hits {
		require.Positivef(t, count, "shard %d never assigned", shard)
	}
}

func TestShardAssigner_ConcurrentAssign(t *testing.T) {
	const n = 8
	assigner := newShardAssigner(n)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				shard := assigner.assign()
				if shard < 0 || shard >= n {
					t.Errorf("shard out of range: %d", shard)
					return
				}
			}
		}()
	}
	wg.Wait()
}
