package rules

import (
	"regexp"
	"sort"
	"strings"
)

var (
	optionListPattern = regexp.MustCompile(`^~?[\w-]+(?:=.+)?(?:,~?[\w-]+(?:=.+)?)*$`)
	partyPattern      = regexp.MustCompile(`^~?(?:[13]p|first-party|third-party)`)
	valueOptionPrefix = regexp.MustCompile(`^(?:csp|header|method|permissions|redirect(?:-rule)?|removeparam|replace|urlskip|urltransform)=`)
	domainLikePrefix  = regexp.MustCompile(`^(?:denyallow|domain|from|ipaddress|to)=`)
)

var multiValueOptions = map[string]bool{
	"denyallow": true,
	"domain":    true,
	"from":      true,
	"method":    true,
	"to":        true,
}

var caseSensitiveOptions = map[string]bool{
	"app":          true,
	"cookie":       true,
	"csp":          true,
	"dnsrewrite":   true,
	"dnstype":      true,
	"extension":    true,
	"header":       true,
	"hls":          true,
	"jsonprune":    true,
	"reason":       true,
	"removeparam":  true,
	"replace":      true,
	"urlskip":      true,
	"urltransform": true,
	"xmlprune":     true,
}

// SplitNetwork splits a network rule into its body and option tokens at the
// last unescaped $ that starts a well formed option list.
func SplitNetwork(line string) (string, []string, bool) {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i] != '$' || escapedAt(line, i) {
			continue
		}
		if optionListPattern.MatchString(line[i+1:]) {
			return line[:i], SplitOptions(line[i+1:]), true
		}
	}
	return line, nil, false
}

// SplitOptions splits an option list on commas that are not escaped, not inside
// a regex value and not inside brackets.
func SplitOptions(s string) []string {
	var tokens []string
	start, depth := 0, 0
	inRegex := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			i++
		case inRegex:
			if c == '/' {
				inRegex = false
			}
		case c == '/' && opensRegex(s, i):
			inRegex = true
		case c == '(' || c == '[':
			depth++
		case (c == ')' || c == ']') && depth > 0:
			depth--
		case c == ',' && depth == 0:
			tokens = append(tokens, s[start:i])
			start = i + 1
		}
	}
	return append(tokens, s[start:])
}

func opensRegex(s string, i int) bool {
	if i == 0 {
		return false
	}
	prev := s[i-1]
	if prev == '~' && i > 1 {
		prev = s[i-2]
	}
	if prev != '=' && prev != '|' {
		return false
	}
	return closingSlash(s, i) > 0
}

// NormalizeNetwork rewrites the option list of a network rule into its
// canonical form. Rules without an option list are returned unchanged.
func NormalizeNetwork(line string) string {
	body, tokens, ok := SplitNetwork(line)
	if !ok {
		return line
	}

	var options []string
	multi := map[string][]string{}
	var multiOrder []string

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		name, value, hasValue := strings.Cut(token, "=")
		lower := strings.ToLower(name)

		switch {
		case multiValueOptions[lower] && hasValue:
			if _, seen := multi[lower]; !seen {
				multiOrder = append(multiOrder, lower)
			}
			multi[lower] = append(multi[lower], SplitDomainList(value, '|')...)
		case caseSensitiveOptions[strings.TrimPrefix(lower, "~")] && hasValue:
			options = append(options, lower+"="+value)
		default:
			options = append(options, strings.ToLower(token))
		}
	}

	for _, name := range multiOrder {
		if list := NormalizeDomainList(strings.Join(multi[name], "|"), '|'); list != "" {
			options = append(options, name+"="+list)
		}
	}

	options = rewriteOptions(options)
	if len(options) == 0 {
		return body
	}
	sortOptions(options)
	return body + "$" + strings.Join(options, ",")
}

// rewriteOptions drops placeholder options, expands deprecated synonyms and
// removes duplicates.
func rewriteOptions(options []string) []string {
	seen := make(map[string]struct{}, len(options))
	out := make([]string, 0, len(options))
	add := func(opt string) {
		if _, ok := seen[opt]; ok {
			return
		}
		seen[opt] = struct{}{}
		out = append(out, opt)
	}

	for _, opt := range options {
		switch {
		case strings.HasPrefix(opt, "_"):
		case opt == "empty":
			add("redirect=nooptext")
		case opt == "mp4":
			add("media")
			add("redirect=noopmp4-1s")
		default:
			add(opt)
		}
	}
	return out
}

func sortOptions(options []string) {
	sort.SliceStable(options, func(i, j int) bool {
		ri, rj := optionRank(options[i]), optionRank(options[j])
		if ri != rj {
			return ri < rj
		}
		ki, kj := strings.TrimPrefix(options[i], "~"), strings.TrimPrefix(options[j], "~")
		if ki != kj {
			return ki < kj
		}
		return len(options[i]) < len(options[j])
	})
}

func optionRank(opt string) int {
	switch {
	case opt == "important" || opt == "badfilter":
		return 0
	case opt == "strict1p" || opt == "strict3p" || opt == "strict-first-party" || opt == "strict-third-party":
		return 1
	case partyPattern.MatchString(opt):
		return 2
	case strings.HasPrefix(opt, "reason="):
		return 6
	case domainLikePrefix.MatchString(opt):
		return 5
	case valueOptionPrefix.MatchString(opt):
		return 4
	default:
		return 3
	}
}
