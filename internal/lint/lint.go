package lint

import (
	"net"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/klyr/tidylist/internal/rules"
	"github.com/miekg/dns"
)

const (
	KindSelector = "selector"
	KindDomain   = "domain"
)

type Finding struct {
	Rule   string `json:"rule"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Procedural operators are evaluated by the blocker, not by a CSS engine.
var proceduralMarkers = []string{
	":-abp-",
	":has-text(",
	":if(",
	":if-not(",
	":matches-attr(",
	":matches-css",
	":matches-media(",
	":matches-path(",
	":matches-prop(",
	":min-text-length(",
	":nth-ancestor(",
	":others(",
	":remove(",
	":remove-attr(",
	":remove-class(",
	":shadow",
	":spath(",
	":style(",
	":upward(",
	":watch-attr(",
	":xpath(",
}

var networkDomainOptions = map[string]bool{
	"denyallow": true,
	"domain":    true,
	"from":      true,
	"to":        true,
}

// Check reports selectors that do not compile and domain entries that are not
// domain names. It never rewrites a rule.
func Check(lines []string) []Finding {
	var findings []Finding
	for _, raw := range lines {
		line, ok := rules.Classify(raw)
		if !ok {
			continue
		}
		switch line.Kind {
		case rules.KindCosmetic:
			findings = append(findings, checkCosmetic(line.Text)...)
		case rules.KindNetwork:
			findings = append(findings, checkNetwork(line.Text)...)
		}
	}
	return findings
}

func checkCosmetic(rule string) []Finding {
	c, ok := rules.ParseCosmetic(rule)
	if !ok {
		return nil
	}

	var findings []Finding
	for _, entry := range rules.SplitDomainList(c.Domains, ',') {
		if detail, bad := checkDomain(entry); bad {
			findings = append(findings, Finding{Rule: rule, Kind: KindDomain, Detail: detail})
		}
	}

	if c.ElementHiding() && !procedural(c.Payload) {
		if _, err := cascadia.Compile(c.Payload); err != nil {
			findings = append(findings, Finding{Rule: rule, Kind: KindSelector, Detail: err.Error()})
		}
	}
	return findings
}

func checkNetwork(rule string) []Finding {
	_, tokens, ok := rules.SplitNetwork(rule)
	if !ok {
		return nil
	}

	var findings []Finding
	for _, token := range tokens {
		name, value, ok := strings.Cut(token, "=")
		if !ok || !networkDomainOptions[strings.TrimPrefix(name, "~")] {
			continue
		}
		for _, entry := range rules.SplitDomainList(value, '|') {
			if detail, bad := checkDomain(entry); bad {
				findings = append(findings, Finding{Rule: rule, Kind: KindDomain, Detail: detail})
			}
		}
	}
	return findings
}

func checkDomain(entry string) (string, bool) {
	name := strings.TrimPrefix(entry, "~")
	switch {
	case name == "", rules.IsRegexEntry(entry):
		return "", false
	case strings.Contains(name, "*"):
		return "", false
	case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"):
		return "", false
	case net.ParseIP(name) != nil:
		return "", false
	}

	if strings.ContainsAny(name, " \t/\\\"'") {
		return "invalid character in " + name, true
	}
	if _, ok := dns.IsDomainName(name); !ok {
		return "invalid domain name " + name, true
	}
	return "", false
}

func procedural(selector string) bool {
	for _, marker := range proceduralMarkers {
		if strings.Contains(selector, marker) {
			return true
		}
	}
	return false
}
