package stats

import (
	"testing"

	"github.com/klyr/tidylist/internal/logging"
)

func TestStats(t *testing.T) {
	var s Stats
	for _, status := range []string{logging.StatusProcessed, logging.StatusSkipped, logging.StatusSkipped, logging.StatusError, "unknown"} {
		s.Record(status)
	}

	if s.Total() != 4 {
		t.Fatalf("expected total 4, got %d", s.Total())
	}
	if got := s.String(); got != "Total: 4, Processed: 1, Skipped: 2, Error: 1" {
		t.Fatalf("unexpected summary %q", got)
	}
	if s.AllSkipped() {
		t.Fatalf("expected AllSkipped false")
	}

	skipped := Stats{Skipped: 3}
	if !skipped.AllSkipped() {
		t.Fatalf("expected AllSkipped true")
	}
	if (Stats{}).AllSkipped() {
		t.Fatalf("expected empty stats not to count as all skipped")
	}
}
