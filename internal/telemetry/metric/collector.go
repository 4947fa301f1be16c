package metric

import "github.com/prometheus/client_golang/prometheus"

// storeCollector reports the store size at scrape time.
type storeCollector struct {
	size func() int
	desc *prometheus.Desc
}

func newStoreCollector(size func() int) *storeCollector {
	return &storeCollector{
		size: size,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "store", "keys"),
			"Number of keys currently held by the store.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.size()))
}
