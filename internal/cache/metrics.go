package cache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	descHits = prometheus.NewDesc(
		"promptcache_hits_total",
		"Resolve calls satisfied from cache.",
		nil, nil)
	descMisses = prometheus.NewDesc(
		"promptcache_misses_total",
		"Resolve calls that invoked the provider.",
		nil, nil)
	descBytesSaved = prometheus.NewDesc(
		"promptcache_bytes_saved_total",
		"Payload bytes served from cache instead of the provider.",
		nil, nil)
	descCostSaved = prometheus.NewDesc(
		"promptcache_cost_saved_total",
		"Provider cost avoided by cache hits, priced from the price table.",
		nil, nil)
	descHitRate = prometheus.NewDesc(
		"promptcache_hit_ratio",
		"hits / (hits + misses); 0 when nothing has been observed.",
		nil, nil)
)

// StatsCollector exposes a Recorder's snapshot as Prometheus metrics.
type StatsCollector struct {
	recorder Recorder
}

// NewStatsCollector wraps a recorder for registration with a Prometheus
// registry.
func NewStatsCollector(recorder Recorder) *StatsCollector {
	return &StatsCollector{recorder: recorder}
}

func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descHits
	ch <- descMisses
	ch <- descBytesSaved
	ch <- descCostSaved
	ch <- descHitRate
}

func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	snap, err := c.recorder.Snapshot(context.Background())
	if err != nil {
		ch <- prometheus.NewInvalidMetric(descHits, err)
		return
	}
	ch <- prometheus.MustNewConstMetric(descHits, prometheus.CounterValue, float64(snap.Hits))
	ch <- prometheus.MustNewConstMetric(descMisses, prometheus.CounterValue, float64(snap.Misses))
	ch <- prometheus.MustNewConstMetric(descBytesSaved, prometheus.CounterValue, float64(snap.BytesSaved))
	ch <- prometheus.MustNewConstMetric(descCostSaved, prometheus.CounterValue, snap.CostSaved)
	ch <- prometheus.MustNewConstMetric(descHitRate, prometheus.GaugeValue, snap.HitRate)
}
