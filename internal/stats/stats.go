package stats

import (
	"fmt"

	"github.com/klyr/tidylist/internal/logging"
)

type Stats struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Errored   int `json:"errored"`
}

// Record counts one file by its run log status.
func (s *Stats) Record(status string) {
	switch status {
	case logging.StatusProcessed:
		s.Processed++
	case logging.StatusSkipped:
		s.Skipped++
	case logging.StatusError:
		s.Errored++
	}
}

func (s Stats) Total() int {
	return s.Processed + s.Skipped + s.Errored
}

// AllSkipped is true when there was work and none of it had to be done.
func (s Stats) AllSkipped() bool {
	return s.Total() > 0 && s.Skipped == s.Total()
}

func (s Stats) String() string {
	return fmt.Sprintf("Total: %d, Processed: %d, Skipped: %d, Error: %d", s.Total(), s.Processed, s.Skipped, s.Errored)
}
