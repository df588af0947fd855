package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "lumina_layout_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "layout"},
		},
		[]string{"date", "sha", "version"},
	)

	parseRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumina_layout_parse_requests_total",
			Help: "Number of parse requests",
		},
		[]string{"engine", "outcome"},
	)

	pagesParsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumina_layout_pages_total",
			Help: "Pages analysed per engine",
		},
		[]string{"engine"},
	)

	blocksDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumina_layout_blocks_total",
			Help: "Layout blocks emitted by type",
		},
		[]string{"engine", "type"},
	)

	parseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lumina_layout_parse_duration_seconds",
			Help:    "Wall time of a full parse request",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"engine"},
	)

	pageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lumina_layout_page_duration_seconds",
			Help:    "Inference time per page",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumina_layout_cache_lookups_total",
			Help: "Parse result cache lookups",
		},
		[]string{"result"},
	)

	inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lumina_layout_parses_in_flight",
			Help: "Parse requests currently running",
		},
	)
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, parseRequests, pagesParsed, blocksDetected, parseDuration, pageDuration, cacheLookups, inFlight)
}

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordParse increments the parse request counter and observes its duration.
func RecordParse(engine string, success bool, d time.Duration) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	parseRequests.WithLabelValues(engine, outcome).Inc()
	parseDuration.WithLabelValues(engine).Observe(d.Seconds())
}

// RecordPage counts one analysed page and its inference time.
func RecordPage(engine string, d time.Duration) {
	pagesParsed.WithLabelValues(engine).Inc()
	pageDuration.WithLabelValues(engine).Observe(d.Seconds())
}

// RecordBlocks adds n blocks of the given type.
func RecordBlocks(engine, blockType string, n int) {
	blocksDetected.WithLabelValues(engine, blockType).Add(float64(n))
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

// ParseStarted and ParseFinished track the in-flight gauge.
func ParseStarted()  { inFlight.Inc() }
func ParseFinished() { inFlight.Dec() }
