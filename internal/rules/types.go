package rules

type Kind int

const (
	KindSeparator Kind = iota
	KindCosmetic
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindSeparator:
		return "separator"
	case KindCosmetic:
		return "cosmetic"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

type SeparatorKind int

const (
	SeparatorNone SeparatorKind = iota
	SeparatorComment
	SeparatorDirective
	SeparatorHeader
	SeparatorMarker
)

// Line is the result of the single classification pass over one trimmed input line.
type Line struct {
	Text      string
	Kind      Kind
	Separator SeparatorKind
}

// Cosmetic is a cosmetic rule split into its parts. Text is the modifier, the
// domain list, the separator token and the payload concatenated.
type Cosmetic struct {
	Modifier  string
	Domains   string
	Separator string
	Payload   string
}

func (c Cosmetic) String() string {
	return c.Modifier + c.Domains + c.Separator + c.Payload
}

// Scriptlet reports whether the payload is JavaScript or a scriptlet call.
func (c Cosmetic) Scriptlet() bool {
	switch c.Separator {
	case "##+", "#@#+", "#%#", "#@%#":
		return true
	}
	return false
}

// ElementHiding reports whether the rule uses the plain element hiding separators.
func (c Cosmetic) ElementHiding() bool {
	return c.Separator == "##" || c.Separator == "#@#"
}

type Polarity int

const (
	PolarityNone Polarity = iota
	PolarityInclusive
	PolarityExclusive
	PolarityMixed
)

func (p Polarity) String() string {
	switch p {
	case PolarityInclusive:
		return "inclusive"
	case PolarityExclusive:
		return "exclusive"
	case PolarityMixed:
		return "mixed"
	default:
		return "none"
	}
}
