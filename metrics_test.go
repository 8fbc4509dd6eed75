package bulksink

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestStatsCollector_Describe_EmitsAllDescriptors(t *testing.T) {
	collector := NewStatsCollector(&Stats{}, "tbl")

	ch := make(chan *prometheus.Desc, 10)
	collector.Describe(ch)
	close(ch)

	count := 0
	for range ch {
		count++
	}
	require.Equal(t, 5, count)
}

func TestStatsCollector_Collect_ReadsCounters(t *testing.T) {
	stats := &Stats{}
	stats.incReceived(7)
	stats.incDispatched(6)
	stats.incFailed(1)

	collector := NewStatsCollector(stats, "tbl")

	ch := make(chan prometheus.Metric, 10)
	collector.Collect(ch)
	close(ch)

	count := 0
	for range ch {
		count++
	}
	require.Equal(t, 5, count)
}

func TestStatsCollector_Collect_NilStats(t *testing.T) {
	collector := NewStatsCollector(nil, "tbl")

	ch := make(chan prometheus.Metric, 10)
	collector.Collect(ch)
	close(ch)

	count := 0
	for range ch {
		count++
	}
	require.Zero(t, count)
}

func TestStatsCollector_RegistersCleanly(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewStatsCollector(&Stats{}, "tbl")))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 5)
}
