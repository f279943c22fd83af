package main

import (
	"fmt"
	"io"

	"github.com/klyr/tidylist/internal/config"
	"github.com/klyr/tidylist/internal/logging"
	"github.com/klyr/tidylist/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// runEnv holds the run log and metrics shared by fix and build.
type runEnv struct {
	logger   *logging.RunLogger
	metrics  *observability.Metrics
	registry *prometheus.Registry
	textfile string
	closer   func() error
}

func openRunEnv(cfg *config.Config) (*runEnv, error) {
	env := &runEnv{closer: func() error { return nil }}

	if cfg.Logging.RunLog != "" {
		logger, closer, err := logging.OpenRunLog(cfg.ResolvePath(cfg.Logging.RunLog))
		if err != nil {
			return nil, fmt.Errorf("open run log: %w", err)
		}
		env.logger = logger
		env.closer = closer
	}

	if cfg.Metrics.Textfile != "" {
		env.registry = prometheus.NewRegistry()
		env.metrics = observability.NewMetrics(env.registry)
		env.textfile = cfg.ResolvePath(cfg.Metrics.Textfile)
	}

	return env, nil
}

// Close flushes metrics and closes the run log.
func (e *runEnv) Close(w io.Writer) {
	if e.registry != nil {
		if err := observability.WriteTextfile(e.textfile, e.registry); err != nil {
			_, _ = fmt.Fprintf(w, "write metrics: %v\n", err)
		}
	}
	if err := e.closer(); err != nil {
		_, _ = fmt.Fprintf(w, "close run log: %v\n", err)
	}
}
