package pipeline

import (
	"sort"
	"strings"

	"github.com/klyr/tidylist/internal/combine"
	"github.com/klyr/tidylist/internal/rules"
)

// Processor turns raw filter lines into their normalized, sorted and combined
// form. Separator lines split the input into independently handled sections.
type Processor struct {
	memo *Memo
}

func New(memo *Memo) *Processor {
	return &Processor{memo: memo}
}

// Process runs the pipeline without a memo.
func Process(lines []string) []string {
	return New(nil).Process(lines)
}

type entry struct {
	text string
	kind rules.Kind
}

func (p *Processor) Process(lines []string) []string {
	out := make([]string, 0, len(lines))
	var section []entry

	for _, raw := range lines {
		line, ok := rules.Classify(raw)
		if !ok {
			continue
		}
		if line.Kind == rules.KindSeparator {
			out = append(out, flush(section)...)
			section = nil
			out = append(out, line.Text)
			continue
		}
		section = append(section, entry{text: p.normalize(line), kind: line.Kind})
	}

	return append(out, flush(section)...)
}

func (p *Processor) normalize(line rules.Line) string {
	if v, ok := p.memo.Get(line.Text); ok {
		return v
	}
	v := rules.Normalize(line)
	p.memo.Set(line.Text, v)
	return v
}

func flush(section []entry) []string {
	if len(section) == 0 {
		return nil
	}

	var cosmetic, network []string
	seen := make(map[string]struct{}, len(section))
	for _, e := range section {
		if _, ok := seen[e.text]; ok {
			continue
		}
		seen[e.text] = struct{}{}
		if e.kind == rules.KindCosmetic {
			cosmetic = append(cosmetic, e.text)
		} else {
			network = append(network, e.text)
		}
	}

	out := settle(cosmetic, sortCosmetic, combine.Cosmetic)
	return append(out, settle(network, sortNetwork, combine.Network)...)
}

// settle sorts and combines until no more rules merge. A merged rule can sort
// next to a combinable rule it was kept apart from.
func settle(list []string, sortFn func([]string), family combine.Family) []string {
	for {
		sortFn(list)
		combined := combine.Combine(list, family)
		if len(combined) == len(list) {
			return combined
		}
		list = combined
	}
}

// Cosmetic groups, in output order.
const (
	groupElementHiding = iota
	groupExtended
	groupModifier
	groupScriptlet
	groupRegexDomain
)

type sortKey struct {
	group    int
	primary  string
	exact    string
	modifier string
	class    int
	domains  string
}

func (a sortKey) less(b sortKey) bool {
	switch {
	case a.group != b.group:
		return a.group < b.group
	case a.primary != b.primary:
		return a.primary < b.primary
	case a.exact != b.exact:
		return a.exact < b.exact
	case a.modifier != b.modifier:
		return a.modifier < b.modifier
	case a.class != b.class:
		return a.class < b.class
	default:
		return a.domains < b.domains
	}
}

func sortCosmetic(list []string) {
	keys := make(map[string]sortKey, len(list))
	for _, rule := range list {
		keys[rule] = cosmeticKey(rule)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return keys[list[i]].less(keys[list[j]])
	})
}

func cosmeticKey(rule string) sortKey {
	c, ok := rules.ParseCosmetic(rule)
	if !ok {
		return sortKey{group: groupModifier, primary: rule, exact: rule}
	}

	k := sortKey{
		primary:  c.Separator + c.Payload,
		exact:    c.Separator + c.Payload,
		modifier: c.Modifier,
		class:    domainClass(c.Domains, ','),
		domains:  c.Domains,
	}
	switch {
	case rules.HasRegexEntry(c.Domains, ','):
		k.group = groupRegexDomain
	case c.Scriptlet():
		k.group = groupScriptlet
	case c.Modifier != "":
		k.group = groupModifier
	case c.ElementHiding():
		k.group = groupElementHiding
	default:
		k.group = groupExtended
	}
	return k
}

func sortNetwork(list []string) {
	keys := make(map[string]sortKey, len(list))
	for _, rule := range list {
		keys[rule] = networkKey(rule)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return keys[list[i]].less(keys[list[j]])
	})
}

// networkKey orders rules by their case-folded text with allow rules after
// block rules. The exact text breaks ties between case variants.
func networkKey(rule string) sortKey {
	text := rule
	if strings.HasPrefix(text, "@@") {
		text = "}" + text
	}
	return sortKey{primary: strings.ToLower(text), exact: text}
}

func domainClass(list string, sep byte) int {
	if rules.HasRegexEntry(list, sep) {
		return 4
	}
	return int(rules.ListPolarity(list, sep))
}
