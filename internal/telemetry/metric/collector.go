package metric

import "github.com/prometheus/client_golang/prometheus"

// SessionStats is a point-in-time view of hosted tracking sessions.
type SessionStats struct {
	Sessions  int
	Screens   int
	Samples   int
	Snapshots int
}

// Collector reports live session totals, read from source at scrape time.
type Collector struct {
	source func() SessionStats

	sessions  *prometheus.Desc
	screens   *prometheus.Desc
	samples   *prometheus.Desc
	snapshots *prometheus.Desc
}

// NewCollector creates a collector backed by source.
func NewCollector(source func() SessionStats) *Collector {
	return &Collector{
		source:    source,
		sessions:  prometheus.NewDesc(namespace+"_sessions_active", "Tracking sessions currently hosted", nil, nil),
		screens:   prometheus.NewDesc(namespace+"_screens_tracked", "Screens tracked across active sessions", nil, nil),
		samples:   prometheus.NewDesc(namespace+"_samples_buffered", "Touch samples held in memory awaiting flush", nil, nil),
		snapshots: prometheus.NewDesc(namespace+"_snapshots_held", "Snapshots held in memory awaiting flush", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.sessions
	ch <- c.screens
	ch <- c.samples
	ch <- c.snapshots
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.source()
	ch <- prometheus.MustNewConstMetric(c.sessions, prometheus.GaugeValue, float64(st.Sessions))
	ch <- prometheus.MustNewConstMetric(c.screens, prometheus.GaugeValue, float64(st.Screens))
	ch <- prometheus.MustNewConstMetric(c.samples, prometheus.GaugeValue, float64(st.Samples))
	ch <- prometheus.MustNewConstMetric(c.snapshots, prometheus.GaugeValue, float64(st.Snapshots))
}
