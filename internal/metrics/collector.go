package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegistryStats provides the collector access to live job registry state.
type RegistryStats interface {
	Len() int
}

// ScratchStats provides the collector access to live artifact store state.
type ScratchStats interface {
	Usage() (files int, bytes int64)
}

// Collector implements prometheus.Collector to read live gauges at scrape time.
type Collector struct {
	registry RegistryStats
	scratch  ScratchStats

	jobsInRegistry *prometheus.Desc
	artifactFiles  *prometheus.Desc
	artifactBytes  *prometheus.Desc
}

// NewCollector creates a collector that reads live state at scrape time.
// Either source may be nil; its gauges then report 0.
func NewCollector(registry RegistryStats, scratch ScratchStats) *Collector {
	return &Collector{
		registry: registry,
		scratch:  scratch,
		jobsInRegistry: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "jobs_in_registry"),
			"Current number of job records in the registry.",
			nil, nil,
		),
		artifactFiles: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "artifact_files"),
			"Current number of cached audio artifacts.",
			nil, nil,
		),
		artifactBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "artifact_bytes"),
			"Total size of cached audio artifacts in bytes.",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.jobsInRegistry
	ch <- c.artifactFiles
	ch <- c.artifactBytes
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.registry != nil {
		ch <- prometheus.MustNewConstMetric(c.jobsInRegistry, prometheus.GaugeValue, float64(c.registry.Len()))
	}
	if c.scratch != nil {
		files, bytes := c.scratch.Usage()
		ch <- prometheus.MustNewConstMetric(c.artifactFiles, prometheus.GaugeValue, float64(files))
		ch <- prometheus.MustNewConstMetric(c.artifactBytes, prometheus.GaugeValue, float64(bytes))
	}
}
