package rules

import (
	"sort"
	"strings"
)

const regexMeta = `^([{$\`

// NormalizeDomainList cleans, deduplicates and sorts a domain list joined by sep.
// Regex entries are kept as written.
func NormalizeDomainList(list string, sep byte) string {
	entries := SplitDomainList(list, sep)
	if len(entries) == 0 {
		return ""
	}

	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !IsRegexEntry(entry) {
			entry = cleanDomain(entry)
		}
		if entry == "" {
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}

	SortDomainEntries(out)
	return strings.Join(out, string(sep))
}

// MergeDomainLists returns the normalized union of two lists.
func MergeDomainLists(a, b string, sep byte) string {
	return NormalizeDomainList(a+string(sep)+b, sep)
}

// SortDomainEntries orders entries by their negation-stripped text. A positive
// entry sorts before its negated twin.
func SortDomainEntries(entries []string) {
	sort.SliceStable(entries, func(i, j int) bool {
		ki, kj := strings.TrimLeft(entries[i], "~"), strings.TrimLeft(entries[j], "~")
		if ki != kj {
			return ki < kj
		}
		return len(entries[i]) < len(entries[j])
	})
}

// SplitDomainList splits on sep without breaking /regex/ entries apart. Empty
// entries are dropped.
func SplitDomainList(list string, sep byte) []string {
	if !hasRegexShape(list) {
		var out []string
		for _, part := range strings.Split(list, string(sep)) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}

	var out []string
	i := 0
	for i < len(list) {
		start := i
		j := i
		if j < len(list) && list[j] == '~' {
			j++
		}
		if j < len(list) && list[j] == '/' {
			if end := closingSlash(list, j); end > 0 {
				i = end + 1
			}
		}
		for i < len(list) && list[i] != sep {
			if list[i] == '\\' {
				i++
			}
			i++
		}
		if i > len(list) {
			i = len(list)
		}
		if part := strings.TrimSpace(list[start:i]); part != "" {
			out = append(out, part)
		}
		i++
	}
	return out
}

// IsRegexEntry reports whether a domain entry is a regular expression.
func IsRegexEntry(entry string) bool {
	entry = strings.TrimPrefix(entry, "~")
	return len(entry) >= 2 && entry[0] == '/' && entry[len(entry)-1] == '/' && strings.ContainsAny(entry, regexMeta)
}

// HasRegexEntry reports whether any entry of the list is a regular expression.
func HasRegexEntry(list string, sep byte) bool {
	if !hasRegexShape(list) {
		return false
	}
	for _, entry := range SplitDomainList(list, sep) {
		if IsRegexEntry(entry) {
			return true
		}
	}
	return false
}

// ListPolarity classifies a domain list as all inclusive, all exclusive or mixed.
func ListPolarity(list string, sep byte) Polarity {
	var negated, plain int
	for _, entry := range SplitDomainList(list, sep) {
		if strings.HasPrefix(entry, "~") {
			negated++
		} else {
			plain++
		}
	}
	switch {
	case negated == 0 && plain == 0:
		return PolarityNone
	case negated == 0:
		return PolarityInclusive
	case plain == 0:
		return PolarityExclusive
	default:
		return PolarityMixed
	}
}

func hasRegexShape(list string) bool {
	return strings.Contains(list, "/") && strings.ContainsAny(list, regexMeta)
}

func cleanDomain(entry string) string {
	negated := strings.HasPrefix(entry, "~")
	entry = strings.TrimSpace(strings.TrimPrefix(entry, "~"))
	if strings.HasPrefix(entry, "/") || strings.HasPrefix(entry, ".") {
		entry = entry[1:]
	}
	entry = strings.TrimSuffix(entry, "/")
	entry = strings.ToLower(entry)
	if entry == "" {
		return ""
	}
	if negated {
		return "~" + entry
	}
	return entry
}

// closingSlash returns the index of the unescaped slash that closes the regex
// opened at s[open], or -1.
func closingSlash(s string, open int) int {
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '/':
			return i
		}
	}
	return -1
}

func escapedAt(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
