package rules

import (
	"regexp"
	"strings"
)

var (
	cosmeticBasicPattern    = regexp.MustCompile(`^#@?#[^\s|#]|^#@?##[^\s|#]`)
	cosmeticAdvancedPattern = regexp.MustCompile(`^(?:#@?[$?%]|#@?\$\?)#\S`)
)

// Classify runs the classification pass over one line. It returns false for
// blank lines, which are never emitted.
func Classify(raw string) (Line, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Line{}, false
	}

	if kind := separatorKind(text); kind != SeparatorNone {
		return Line{Text: text, Kind: KindSeparator, Separator: kind}, true
	}
	if IsCosmetic(text) {
		return Line{Text: text, Kind: KindCosmetic}, true
	}
	return Line{Text: text, Kind: KindNetwork}, true
}

// ClassifySeparator reports whether the line breaks a section.
func ClassifySeparator(line string) bool {
	text := strings.TrimSpace(line)
	return text == "" || separatorKind(text) != SeparatorNone
}

// IsCosmetic reports whether a rule line goes through the cosmetic normalizer.
func IsCosmetic(line string) bool {
	if strings.HasPrefix(line, "[$") {
		return true
	}
	_, ok := splitCosmetic(line)
	return ok
}

func separatorKind(text string) SeparatorKind {
	switch {
	case strings.HasPrefix(text, "!#"), strings.HasPrefix(text, "!+"):
		return SeparatorDirective
	case strings.HasPrefix(text, "!"):
		return SeparatorComment
	case strings.HasPrefix(text, "%include ") && strings.HasSuffix(text, "%"):
		return SeparatorDirective
	case strings.HasPrefix(text, "#") && !hashPrefixedCosmetic(text):
		return SeparatorComment
	case strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") && !strings.HasPrefix(text, "[$"):
		return SeparatorHeader
	case len(text) >= 3 && strings.Trim(text, "-") == "":
		return SeparatorMarker
	}
	return SeparatorNone
}

func hashPrefixedCosmetic(text string) bool {
	return cosmeticBasicPattern.MatchString(text) || cosmeticAdvancedPattern.MatchString(text)
}

// Normalize returns the canonical form of a classified line.
func Normalize(l Line) string {
	switch l.Kind {
	case KindCosmetic:
		return NormalizeCosmetic(l.Text)
	case KindNetwork:
		return NormalizeNetwork(l.Text)
	default:
		return l.Text
	}
}
