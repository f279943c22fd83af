package observability

import (
	"os"
	"path/filepath"
	"time"

	"github.com/klyr/tidylist/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	filesTotal        *prometheus.CounterVec
	rulesTotal        *prometheus.CounterVec
	blocksTotal       *prometheus.CounterVec
	lintFindingsTotal *prometheus.CounterVec
	fileDuration      *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "tidylist_files_total", Help: "Total handled files"},
			[]string{"scope", "status"},
		),
		rulesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "tidylist_rules_total", Help: "Total rule lines before and after processing"},
			[]string{"scope", "stage"},
		),
		blocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "tidylist_blocks_total", Help: "Total blocks seen by the block strategy"},
			[]string{"result"},
		),
		lintFindingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "tidylist_lint_findings_total", Help: "Total lint findings"},
			[]string{"kind"},
		),
		fileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tidylist_file_duration_seconds",
				Help:    "Per file handling duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"scope"},
		),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.filesTotal,
		m.rulesTotal,
		m.blocksTotal,
		m.lintFindingsTotal,
		m.fileDuration,
	)

	return m
}

func (m *Metrics) Observe(event logging.Event) {
	if m == nil {
		return
	}

	m.filesTotal.WithLabelValues(event.Scope, event.Status).Inc()
	m.fileDuration.WithLabelValues(event.Scope).Observe((time.Duration(event.DurationMS) * time.Millisecond).Seconds())

	if event.Status != logging.StatusProcessed {
		return
	}
	m.rulesTotal.WithLabelValues(event.Scope, "in").Add(float64(event.RulesIn))
	m.rulesTotal.WithLabelValues(event.Scope, "out").Add(float64(event.RulesOut))

	if event.Blocks > 0 {
		m.blocksTotal.WithLabelValues("changed").Add(float64(event.BlocksChanged))
		m.blocksTotal.WithLabelValues("unchanged").Add(float64(event.Blocks - event.BlocksChanged))
	}
}

func (m *Metrics) ObserveLint(kind string) {
	if m == nil {
		return
	}
	m.lintFindingsTotal.WithLabelValues(kind).Inc()
}

// WriteTextfile dumps the gathered metrics in the node exporter textfile format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, g)
}
