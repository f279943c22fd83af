package rules

import (
	"strconv"
	"strings"
)

const placeholderMark = '\x00'

// NormalizeSelector tidies whitespace around combinators and lowercases
// pseudo-class names. Quoted strings and [attribute] blocks are left alone.
func NormalizeSelector(sel string) string {
	masked, literals := protectLiterals(sel)
	masked = normalizeCombinators(masked)
	masked = lowerPseudoClasses(masked)
	return restoreLiterals(masked, literals)
}

func protectLiterals(s string) (string, []string) {
	var b strings.Builder
	var literals []string
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteByte(c)
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
			continue
		case '"', '\'', '[':
			end := literalEnd(s, i)
			literals = append(literals, s[i:end])
			b.WriteByte(placeholderMark)
			b.WriteString(strconv.Itoa(len(literals) - 1))
			b.WriteByte(placeholderMark)
			i = end - 1
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), literals
}

// literalEnd returns the index just past the literal opened at s[start]. An
// unterminated literal runs to the end of s.
func literalEnd(s string, start int) int {
	closer := s[start]
	if closer == '[' {
		closer = ']'
	}
	var quote byte
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case closer == ']' && (c == '"' || c == '\''):
			quote = c
		case c == closer:
			return i + 1
		}
	}
	return len(s)
}

func restoreLiterals(s string, literals []string) string {
	if len(literals) == 0 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != placeholderMark {
			b.WriteByte(s[i])
			continue
		}
		end := strings.IndexByte(s[i+1:], placeholderMark)
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		n, err := strconv.Atoi(s[i+1 : i+1+end])
		if err != nil || n >= len(literals) {
			b.WriteString(s[i : i+end+2])
		} else {
			b.WriteString(literals[n])
		}
		i += end + 1
	}
	return b.String()
}

func normalizeCombinators(s string) string {
	var b strings.Builder
	var last byte
	for i := 0; i < len(s); {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteString(s[i : i+2])
			last = c
			i += 2
			continue
		}
		if !isSpace(c) && !isCombinator(c) {
			b.WriteByte(c)
			last = c
			i++
			continue
		}

		j := i
		for j < len(s) && isSpace(s[j]) {
			j++
		}
		var comb byte
		if j < len(s) && isCombinator(s[j]) {
			comb = s[j]
			j++
			for j < len(s) && isSpace(s[j]) {
				j++
			}
		}

		var run string
		switch {
		case j >= len(s) || isDigit(s[j]) || isCombinator(s[j]):
			run = s[i:j]
		case comb == 0:
			run = " "
		case last == 0 || last == '(' || isSpace(last) || isCombinator(last):
			run = string(comb) + " "
		default:
			run = " " + string(comb) + " "
		}
		b.WriteString(run)
		last = run[len(run)-1]
		i = j
	}
	return b.String()
}

func lowerPseudoClasses(s string) string {
	out := []byte(s)
	for i := 0; i < len(out); i++ {
		if out[i] != ':' || escapedAt(s, i) {
			continue
		}
		j := i + 1
		upper := false
		for j < len(out) && (isLetter(out[j]) || out[j] == '-') {
			if out[j] >= 'A' && out[j] <= 'Z' {
				upper = true
			}
			j++
		}
		if !upper {
			continue
		}
		if j < len(out) && out[j] != '(' && out[j] != ':' && !isSpace(out[j]) {
			continue
		}
		for k := i + 1; k < j; k++ {
			if out[k] >= 'A' && out[k] <= 'Z' {
				out[k] += 'a' - 'A'
			}
		}
		i = j - 1
	}
	return string(out)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isCombinator(c byte) bool {
	return c == '>' || c == '+' || c == '~'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
