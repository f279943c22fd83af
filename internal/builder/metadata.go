package builder

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/klyr/tidylist/internal/config"
)

// Header expands %timestamp% in the list header template.
func Header(template string, now time.Time) string {
	return strings.TrimRight(strings.ReplaceAll(template, "%timestamp%", now.UTC().Format(http.TimeFormat)), " \t\r\n")
}

// Metadata renders the metadata block of a built list.
func Metadata(m *config.Metadata, now time.Time) []string {
	if m == nil {
		return nil
	}

	var out []string
	if m.Header != "" {
		out = append(out, "["+m.Header+"]")
	}
	if m.Title != "" {
		out = append(out, "! Title: "+m.Title)
	}
	if m.ShowDateModified() {
		out = append(out, "! Last modified: "+now.UTC().Format(http.TimeFormat))
	}
	if m.Version {
		out = append(out, "! Version: "+Version(now))
	}
	if m.Custom != "" {
		for _, line := range strings.Split(strings.TrimRight(m.Custom, "\n"), "\n") {
			if line != "" {
				out = append(out, "! "+line)
			}
		}
	}
	return out
}

// Version is yy.mm followed by the minutes since midnight and the seconds.
func Version(now time.Time) string {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	minutes := int(now.Sub(midnight).Minutes())
	return fmt.Sprintf("%s.%d%d", now.Format("06.01"), minutes, now.Second())
}
