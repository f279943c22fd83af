package rules

import (
	"strings"
)

// ParseCosmetic splits a cosmetic rule. It returns false when the line has no
// recognizable separator or when a [$...] modifier cannot be delimited.
func ParseCosmetic(line string) (Cosmetic, bool) {
	if !strings.HasPrefix(line, "[$") {
		return splitCosmetic(line)
	}

	if end := simpleModifierEnd(line); end > 2 {
		simple := line[:end+1]
		if !complexModifier(simple) {
			if c, ok := splitCosmetic(line[end+1:]); ok {
				c.Modifier = simple
				return c, true
			}
		}
	}

	for _, pos := range separatorPositions(line) {
		prefix := line[:pos]
		end, ok := FindModifierEnd(prefix)
		if !ok || !bracketsBalanced(prefix[:end+1]) {
			continue
		}
		domains := prefix[end+1:]
		if !validDomainPart(domains) {
			continue
		}
		n := separatorLen(line, pos)
		return Cosmetic{
			Modifier:  prefix[:end+1],
			Domains:   domains,
			Separator: line[pos : pos+n],
			Payload:   line[pos+n:],
		}, true
	}
	return Cosmetic{}, false
}

// simpleModifierEnd returns the index of the first unescaped ], or -1.
func simpleModifierEnd(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] == ']' && !escapedAt(line, i) {
			return i
		}
	}
	return -1
}

// FindModifierEnd scans text backward for the ] closing a [$...] modifier.
// Slashes toggle regex mode, escaped characters are skipped and bracketed IPv6
// literals in the domain list are stepped over.
func FindModifierEnd(text string) (int, bool) {
	inRegex := false
	for i := len(text) - 1; i > 0; i-- {
		if escapedAt(text, i) {
			continue
		}
		switch text[i] {
		case '/':
			inRegex = !inRegex
		case ']':
			if inRegex {
				continue
			}
			if open, ok := ipv6Open(text, i); ok {
				i = open
				continue
			}
			return i, true
		}
	}
	return 0, false
}

// NormalizeCosmetic rewrites the domain list and payload of a cosmetic rule.
// Anything it cannot parse is returned byte-identical.
func NormalizeCosmetic(line string) string {
	c, ok := ParseCosmetic(line)
	if !ok || strings.TrimSpace(c.Payload) == "" {
		return line
	}

	c.Modifier = normalizeModifier(c.Modifier)
	c.Domains = NormalizeDomainList(c.Domains, ',')
	if c.Domains != "" {
		c.Payload = strings.TrimLeft(c.Payload, " \t")
	}
	if !c.Scriptlet() {
		c.Payload = NormalizeSelector(c.Payload)
	}
	return c.String()
}

func splitCosmetic(s string) (Cosmetic, bool) {
	for _, pos := range separatorPositions(s) {
		if !validDomainPart(s[:pos]) {
			continue
		}
		n := separatorLen(s, pos)
		return Cosmetic{
			Domains:   s[:pos],
			Separator: s[pos : pos+n],
			Payload:   s[pos+n:],
		}, true
	}
	return Cosmetic{}, false
}

func separatorPositions(s string) []int {
	var out []int
	for i := 0; i < len(s); i++ {
		if (s[i] == '#' || s[i] == '$') && separatorLen(s, i) > 0 {
			out = append(out, i)
		}
	}
	return out
}

// separatorLen returns the length of the separator token starting at s[i], or 0.
func separatorLen(s string, i int) int {
	rest := s[i:]
	switch {
	case strings.HasPrefix(rest, "$$"):
		return 2
	case strings.HasPrefix(rest, "$@$"):
		return 3
	case !strings.HasPrefix(rest, "#"):
		return 0
	}

	j := 1
	if j < len(rest) && rest[j] == '@' {
		j++
	}
	if j >= len(rest) {
		return 0
	}
	switch rest[j] {
	case '%':
		if j+1 < len(rest) && rest[j+1] == '#' {
			return j + 2
		}
	case '$', '?':
		k := j + 1
		if k < len(rest) && (rest[k] == '$' || rest[k] == '?') {
			k++
		}
		if k < len(rest) && rest[k] == '#' {
			return k + 1
		}
	case '#':
		if j+1 < len(rest) && (rest[j+1] == '^' || rest[j+1] == '+') {
			return j + 2
		}
		return j + 1
	}
	return 0
}

func validDomainPart(domains string) bool {
	for _, entry := range SplitDomainList(domains, ',') {
		if IsRegexEntry(entry) {
			continue
		}
		if strings.ContainsAny(cleanDomain(entry), `/|@"!#`) {
			return false
		}
	}
	return true
}

func complexModifier(modifier string) bool {
	return strings.Contains(modifier, "/]") || strings.Count(modifier, "[") != strings.Count(modifier, "]")
}

func bracketsBalanced(s string) bool {
	open, closed := 0, 0
	for i := 0; i < len(s); i++ {
		if escapedAt(s, i) {
			continue
		}
		switch s[i] {
		case '[':
			open++
		case ']':
			closed++
		}
	}
	return open == closed
}

func ipv6Open(s string, closeIdx int) (int, bool) {
	j := closeIdx - 1
	colon := false
	for ; j >= 0; j-- {
		c := s[j]
		if c == ':' {
			colon = true
			continue
		}
		if !isHex(c) {
			break
		}
	}
	if j >= 0 && s[j] == '[' && j < closeIdx-1 && colon {
		return j, true
	}
	return 0, false
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// normalizeModifier sorts the domain= sub-option of a [$...] modifier and keeps
// the other sub-options as written.
func normalizeModifier(modifier string) string {
	if modifier == "" {
		return ""
	}
	inner := modifier[2 : len(modifier)-1]
	tokens := SplitOptions(inner)
	for i, token := range tokens {
		name, value, ok := strings.Cut(token, "=")
		if ok && strings.EqualFold(name, "domain") {
			if list := NormalizeDomainList(value, '|'); list != "" {
				tokens[i] = name + "=" + list
			}
		}
	}
	return "[$" + strings.Join(tokens, ",") + "]"
}
