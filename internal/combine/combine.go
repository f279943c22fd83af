package combine

import (
	"strings"

	"github.com/klyr/tidylist/internal/rules"
)

type Family int

const (
	Cosmetic Family = iota
	Network
)

// Separator is the domain list separator of the family.
func (f Family) Separator() byte {
	if f == Network {
		return '|'
	}
	return ','
}

var networkDomainOptions = map[string]bool{
	"denyallow": true,
	"domain":    true,
	"from":      true,
	"method":    true,
	"to":        true,
}

// Section is the domain scoped part of a rule. Prefix, Domains and Suffix form
// the full match; Base is the rule with the full match removed.
type Section struct {
	Prefix  string
	Domains string
	Suffix  string
	Base    string
}

func (s Section) FullMatch() string {
	return s.Prefix + s.Domains + s.Suffix
}

// ParseSection locates the domain list of a normalized rule.
func ParseSection(rule string, family Family) (Section, bool) {
	if family == Cosmetic {
		c, ok := rules.ParseCosmetic(rule)
		if !ok || c.Domains == "" {
			return Section{}, false
		}
		return Section{Prefix: c.Modifier, Domains: c.Domains, Suffix: c.Separator, Base: c.Payload}, true
	}

	_, tokens, ok := rules.SplitNetwork(rule)
	if !ok || len(tokens) == 0 {
		return Section{}, false
	}
	last := tokens[len(tokens)-1]
	name, value, ok := strings.Cut(last, "=")
	if !ok || value == "" || !networkDomainOptions[name] || strings.ContainsAny(value, " \t") {
		return Section{}, false
	}
	lead := ","
	if len(tokens) == 1 {
		lead = "$"
	}
	prefix := lead + name + "="
	if !strings.HasSuffix(rule, prefix+value) {
		return Section{}, false
	}
	return Section{
		Prefix:  prefix,
		Domains: value,
		Base:    strings.TrimSuffix(rule, prefix+value),
	}, true
}

// Combine merges runs of adjacent rules that differ only by domain list. A run
// collapses into its last element, which carries the union of the domains.
func Combine(list []string, family Family) []string {
	out := make([]string, 0, len(list))
	if len(list) == 0 {
		return out
	}

	open := list[0]
	for _, next := range list[1:] {
		if merged, ok := Merge(open, next, family); ok {
			open = merged
			continue
		}
		out = appendUnique(out, open)
		open = next
	}
	return appendUnique(out, open)
}

// Merge splices the union of both domain lists into next when the two rules
// can be combined.
func Merge(current, next string, family Family) (string, bool) {
	cur, ok := ParseSection(current, family)
	if !ok {
		return "", false
	}
	nxt, ok := ParseSection(next, family)
	if !ok || !Combinable(cur, nxt, family) {
		return "", false
	}
	nxt.Domains = rules.MergeDomainLists(cur.Domains, nxt.Domains, family.Separator())
	if family == Network {
		return nxt.Base + nxt.FullMatch(), true
	}
	return nxt.FullMatch() + nxt.Base, true
}

// Combinable reports whether two sections share structure, base rule and a
// single polarity. Lists holding regex entries never combine.
func Combinable(cur, next Section, family Family) bool {
	if cur.Domains == "" || next.Domains == "" {
		return false
	}
	if cur.Prefix+next.Domains+cur.Suffix != next.FullMatch() {
		return false
	}
	if cur.Base != next.Base {
		return false
	}

	sep := family.Separator()
	if rules.HasRegexEntry(cur.Domains, sep) || rules.HasRegexEntry(next.Domains, sep) {
		return false
	}
	polarity := rules.ListPolarity(cur.Domains, sep)
	if polarity == rules.PolarityMixed || polarity == rules.PolarityNone {
		return false
	}
	return polarity == rules.ListPolarity(next.Domains, sep)
}

func appendUnique(out []string, rule string) []string {
	if n := len(out); n > 0 && out[n-1] == rule {
		return out
	}
	return append(out, rule)
}
