package main

import (
	"fmt"
	"time"

	"github.com/klyr/tidylist/internal/cache"
	"github.com/klyr/tidylist/internal/config"
	"github.com/klyr/tidylist/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var configPath string
	var runLog string
	var since string
	var scope string
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize fix and build runs from the run log",
		Long: "Summarize the JSONL run log written by fix and build. The log path\n" +
			"comes from logging.runLog in the config unless --in is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if scope != "" && scope != cache.ScopeFixer && scope != cache.ScopeBuilder {
				return fmt.Errorf("unknown scope %q (want %s or %s)", scope, cache.ScopeFixer, cache.ScopeBuilder)
			}

			if runLog == "" {
				cfg, err := config.LoadOrDefault(configPath)
				if err != nil {
					return err
				}
				if cfg.Logging.RunLog == "" {
					return fmt.Errorf("no run log: pass --in or set logging.runLog in %s", configPath)
				}
				runLog = cfg.ResolvePath(cfg.Logging.RunLog)
			}

			cutoff, err := parseSince(since, time.Now())
			if err != nil {
				return err
			}
			reader := report.Reader{Since: cutoff, Scope: scope}
			events, err := reader.Read(runLog)
			if err != nil {
				return fmt.Errorf("read run log: %w", err)
			}

			content, err := renderSummary(format, report.Summarize(events))
			if err != nil {
				return err
			}
			return report.WriteOutput(cmd.OutOrStdout(), outPath, content)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "Config file naming the run log")
	cmd.Flags().StringVar(&runLog, "in", "", "Run log to read instead of logging.runLog")
	cmd.Flags().StringVar(&since, "since", "", "Skip runs older than a duration (24h) or an RFC 3339 time")
	cmd.Flags().StringVar(&scope, "scope", "", "Limit to fixer or builder runs")
	cmd.Flags().StringVar(&format, "format", "text", "text, md or json")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the summary to a file")

	return cmd
}

// parseSince accepts a lookback duration or an absolute timestamp.
func parseSince(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if dur, err := time.ParseDuration(value); err == nil {
		return now.Add(-dur), nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: want a duration or RFC 3339 time", value)
	}
	return ts, nil
}

func renderSummary(format string, summary report.Summary) ([]byte, error) {
	switch format {
	case "", "text":
		return []byte(report.RenderText(summary)), nil
	case "md":
		return []byte(report.RenderMarkdown(summary)), nil
	case "json":
		return report.RenderJSON(summary)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}
