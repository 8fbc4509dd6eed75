package bulksink

import "github.com/prometheus/client_golang/prometheus"

// StatsCollector implements prometheus.Collector for a sink's Stats.
// Counters are read on-demand during each Prometheus scrape — no polling
// goroutine.
type StatsCollector struct {
	stats *Stats

	received   *prometheus.Desc
	dispatched *prometheus.Desc
	failed     *prometheus.Desc
	batches    *prometheus.Desc
	flushes    *prometheus.Desc
}

// NewStatsCollector creates a collector that exports the sink's run counters
// labelled by table.
func NewStatsCollector(stats *Stats, table string) *StatsCollector {
	labels := prometheus.Labels{"table": table}
	return &StatsCollector{
		stats: stats,
		received: prometheus.NewDesc(
			"bulksink_records_received_total",
			"Records taken from the source stream.",
			nil, labels,
		),
		dispatched: prometheus.NewDesc(
			"bulksink_records_dispatched_total",
			"Records handed to a writer (dispatches, not confirmed successes).",
			nil, labels,
		),
		failed: prometheus.NewDesc(
			"bulksink_writes_failed_total",
			"Writes that completed with an error.",
			nil, labels,
		),
		batches: prometheus.NewDesc(
			"bulksink_batches_total",
			"Fired batches processed.",
			nil, labels,
		),
		flushes: prometheus.NewDesc(
			"bulksink_flushes_total",
			"Completed flush barriers.",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.received
	ch <- c.dispatched
	ch <- c.failed
	ch <- c.batches
	ch <- c.flushes
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	if c.stats == nil {
		return
	}

	ch <- prometheus.MustNewConstMetric(c.received, prometheus.CounterValue, float64(c.stats.Received()))
	ch <- prometheus.MustNewConstMetric(c.dispatched, prometheus.CounterValue, float64(c.stats.Dispatched()))
	ch <- prometheus.MustNewConstMetric(c.failed, prometheus.CounterValue, float64(c.stats.Failed()))
	ch <- prometheus.MustNewConstMetric(c.batches, prometheus.CounterValue, float64(c.stats.Batches()))
	ch <- prometheus.MustNewConstMetric(c.flushes, prometheus.CounterValue, float64(c.stats.Flushes()))
}
