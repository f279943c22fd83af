package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/klyr/tidylist/internal/logging"
)

type Summary struct {
	Total        int            `json:"total"`
	Processed    int            `json:"processed"`
	Skipped      int            `json:"skipped"`
	Errored      int            `json:"errored"`
	RulesIn      int            `json:"rules_in"`
	RulesOut     int            `json:"rules_out"`
	LintFindings int            `json:"lint_findings"`
	Start        time.Time      `json:"start"`
	End          time.Time      `json:"end"`
	Scopes       []CountItem    `json:"scopes"`
	Modes        []CountItem    `json:"modes"`
	TopErrors    []CountItem    `json:"top_errors"`
	TopReduced   []CountItem    `json:"top_reduced"`
	Duration     LatencySummary `json:"duration"`
}

type CountItem struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type LatencySummary struct {
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// Reduction is the share of processed rule lines removed by normalization.
func (s Summary) Reduction() float64 {
	if s.RulesIn == 0 {
		return 0
	}
	return float64(s.RulesIn-s.RulesOut) / float64(s.RulesIn) * 100
}

type Reader struct {
	Since time.Time
	Scope string
}

func (r *Reader) Read(path string) ([]logging.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var events []logging.Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev logging.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return nil, err
		}
		if !r.Since.IsZero() && ev.Timestamp.Before(r.Since) {
			continue
		}
		if r.Scope != "" && ev.Scope != r.Scope {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func Summarize(events []logging.Event) Summary {
	var summary Summary
	if len(events) == 0 {
		return summary
	}

	summary.Start = events[0].Timestamp
	summary.End = events[0].Timestamp

	scopeCounts := map[string]int{}
	modeCounts := map[string]int{}
	errorCounts := map[string]int{}
	reduced := map[string]int{}
	durations := make([]int64, 0, len(events))

	for _, ev := range events {
		summary.Total++
		if ev.Timestamp.Before(summary.Start) {
			summary.Start = ev.Timestamp
		}
		if ev.Timestamp.After(summary.End) {
			summary.End = ev.Timestamp
		}

		switch ev.Status {
		case logging.StatusProcessed:
			summary.Processed++
			summary.RulesIn += ev.RulesIn
			summary.RulesOut += ev.RulesOut
			if d := ev.RulesIn - ev.RulesOut; d > 0 {
				reduced[ev.Path] += d
			}
		case logging.StatusSkipped:
			summary.Skipped++
		case logging.StatusError:
			summary.Errored++
			errorCounts[ev.Path]++
		}

		summary.LintFindings += ev.LintFindings
		scopeCounts[ev.Scope]++
		if ev.Mode != "" {
			modeCounts[ev.Mode]++
		}
		durations = append(durations, ev.DurationMS)
	}

	summary.Scopes = topCounts(scopeCounts, len(scopeCounts))
	summary.Modes = topCounts(modeCounts, len(modeCounts))
	summary.TopErrors = topCounts(errorCounts, 5)
	summary.TopReduced = topCounts(reduced, 5)
	summary.Duration = latencySummary(durations)

	return summary
}

func topCounts(counts map[string]int, n int) []CountItem {
	items := make([]CountItem, 0, len(counts))
	for key, count := range counts {
		items = append(items, CountItem{Key: key, Count: count})
	}
	if len(items) == 0 {
		return nil
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Key < items[j].Key
		}
		return items[i].Count > items[j].Count
	})

	if len(items) > n {
		items = items[:n]
	}
	return items
}

func latencySummary(values []int64) LatencySummary {
	if len(values) == 0 {
		return LatencySummary{}
	}
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return LatencySummary{
		P50: percentile(sorted, 0.50),
		P95: percentile(sorted, 0.95),
		P99: percentile(sorted, 0.99),
	}
}

func percentile(values []int64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	idx := int(float64(len(values)-1) * p)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return float64(values[idx])
}

func RenderText(summary Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total: %d\n", summary.Total)
	fmt.Fprintf(&b, "Processed: %d\n", summary.Processed)
	fmt.Fprintf(&b, "Skipped: %d\n", summary.Skipped)
	fmt.Fprintf(&b, "Errors: %d\n", summary.Errored)
	fmt.Fprintf(&b, "Rules in/out: %d/%d (%.1f%% reduced)\n", summary.RulesIn, summary.RulesOut, summary.Reduction())
	fmt.Fprintf(&b, "Lint findings: %d\n", summary.LintFindings)
	fmt.Fprintf(&b, "Duration p50/p95/p99 (ms): %.0f/%.0f/%.0f\n", summary.Duration.P50, summary.Duration.P95, summary.Duration.P99)

	writeCounts(&b, "Scopes", summary.Scopes)
	writeCounts(&b, "Modes", summary.Modes)
	writeCounts(&b, "Most reduced files", summary.TopReduced)
	writeCounts(&b, "Failing files", summary.TopErrors)

	return b.String()
}

func RenderMarkdown(summary Summary) string {
	var b strings.Builder
	b.WriteString("# tidylist Report\n\n")
	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- Total: %d\n", summary.Total)
	fmt.Fprintf(&b, "- Processed: %d\n", summary.Processed)
	fmt.Fprintf(&b, "- Skipped: %d\n", summary.Skipped)
	fmt.Fprintf(&b, "- Errors: %d\n", summary.Errored)
	fmt.Fprintf(&b, "- Rules in/out: %d/%d (%.1f%% reduced)\n", summary.RulesIn, summary.RulesOut, summary.Reduction())
	fmt.Fprintf(&b, "- Lint findings: %d\n", summary.LintFindings)
	fmt.Fprintf(&b, "- Duration p50/p95/p99 (ms): %.0f/%.0f/%.0f\n\n", summary.Duration.P50, summary.Duration.P95, summary.Duration.P99)

	writeCountsMarkdown(&b, "Scopes", summary.Scopes)
	writeCountsMarkdown(&b, "Modes", summary.Modes)
	writeCountsMarkdown(&b, "Most reduced files", summary.TopReduced)
	writeCountsMarkdown(&b, "Failing files", summary.TopErrors)

	return b.String()
}

func RenderJSON(summary Summary) ([]byte, error) {
	return json.MarshalIndent(summary, "", "  ")
}

func writeCounts(b *strings.Builder, title string, items []CountItem) {
	if len(items) == 0 {
		fmt.Fprintf(b, "%s: none\n", title)
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s: %d\n", item.Key, item.Count)
	}
}

func writeCountsMarkdown(b *strings.Builder, title string, items []CountItem) {
	b.WriteString("## ")
	b.WriteString(title)
	b.WriteString("\n\n")
	if len(items) == 0 {
		b.WriteString("- none\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s: %d\n", item.Key, item.Count)
	}
	b.WriteString("\n")
}

func WriteOutput(w io.Writer, path string, content []byte) error {
	if path == "" {
		_, err := io.Copy(w, bytes.NewReader(content))
		return err
	}
	return os.WriteFile(path, content, 0o600)
}
