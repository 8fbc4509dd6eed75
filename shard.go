package bulksink

import "math/rand/v2"

// shardAssigner maps each record to a shard chosen uniformly at random.
// Assignment is stateless: no affinity between a record's key and its shard,
// across records or across calls. The top-level rand functions are safe for
// concurrent use, so one assigner can serve multiple goroutines.
type shardAssigner struct {
	n int
}

func newShardAssigner(n int) shardAssigner {
	return shardAssigner{n: n}
}

// assign returns a shard in [0, n).
func (a shardAssigner) assign() int {
	return rand.IntN(a.n)
}
