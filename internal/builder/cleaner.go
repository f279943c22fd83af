package builder

import (
	"regexp"
	"strings"
)

var (
	agentPattern     = regexp.MustCompile(`^\[(Ad[Bb]lock|[Aa]d[Gg]uard|u[Bb](?:lock|[Oo]))([a-zA-Z0-9\.\s]+)?\]$`)
	directivePattern = regexp.MustCompile(`^!#\s?(?:include\s|if|endif|else)`)
)

// Clean strips agent headers, comments and blank lines from source content,
// keeping preprocessor directives.
func Clean(lines []string, unique bool) []string {
	out := make([]string, 0, len(lines))
	seen := map[string]struct{}{}
	for _, line := range lines {
		line = strings.TrimRight(line, "\r\n")
		if agentPattern.MatchString(line) {
			continue
		}
		if strings.HasPrefix(line, "!") && !directivePattern.MatchString(line) {
			continue
		}
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		if unique {
			if _, ok := seen[line]; ok {
				continue
			}
			seen[line] = struct{}{}
		}
		out = append(out, line)
	}
	return out
}
