package rules

import "testing"

func TestNormalizeCosmeticDomains(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"c.com,b.com,~a.com##.ad", "~a.com,b.com,c.com##.ad"},
		{",a.com,,b.com,##.ads", "a.com,b.com##.ads"},
		{"/example.com/,.example.com/,Example.com##.ads", "example.com##.ads"},
		{"a.com,~a.com##.ad", "a.com,~a.com##.ad"},
		{"example.com##  .ads", "example.com##.ads"},
		{"/example\\.com/##.ads", "/example\\.com/##.ads"},
		{"b.com,a.com#%#window.__gaq = undefined;", "a.com,b.com#%#window.__gaq = undefined;"},
	}

	for _, tt := range cases {
		if got := NormalizeCosmetic(tt.in); got != tt.want {
			t.Fatalf("NormalizeCosmetic(%q) expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestNormalizeCosmeticPreserves(t *testing.T) {
	cases := []string{
		"##.hghspd + *",
		"example.com##.p__header > div.p__header-meta + div[class]:contains(/^\\s$/)",
		"example.com##.center[style^=\"min-height: 260px;\"]:has(> [id^=\"div-Billboard_\"])",
		"example.com##div > * > *:not(.comment-header)",
		"example.com###Footer\\:MainFooter\\:SocialMediaFooter\\:Text",
		"example.com##[class$=\"-ad\"]",
		"example.com##img[alt*=\"banner\" i]",
		"example.com##div[alt~=\"Ad\"]",
		"example.com##*:matches-css(position: /fixed|absolute/):has(:is(a, canvas, image, form, [onclick], [href*=\"base64\"]))",
		"tripadvisor.com##div:has(> div[class=\"ui_columns is-multiline \"])",
		"example.com#?#div:-abp-contains(TOP AD)",
		"example.com##.bg-\\[\\#f8f8f8\\]",
		"example.com##li:nth-child(2n + 1)",
		"example.com#%#(function(b){Object.defineProperty(Element.prototype,\"innerHTML\",{get:function(){return b.get.call(this)}})})();",
		"example.com#$#.ignielAdBlock { display: none !important; }",
		"example.com#$?#style[id=\"mdpDeblocker-css\"] { remove: true; }",
		"example.com##+js(no-fetch-if, /Adsbygoogle.js$/ method:/HEAD|POST/)",
		"example.com##",
		"example.com#@#",
		"example.com#?#",
		"example.com##+",
	}

	for _, in := range cases {
		if got := NormalizeCosmetic(in); got != in {
			t.Fatalf("expected %q unchanged, got %q", in, got)
		}
	}
}

func TestNormalizeCosmeticSelector(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"example.com##div>a", "example.com##div > a"},
		{"example.com##div  +  a", "example.com##div + a"},
		{"example.com##div:has(>a)", "example.com##div:has(> a)"},
		{"example.com##div:HAS(> a)", "example.com##div:has(> a)"},
		{"example.com#?#div:-ABP-Contains(Ads)", "example.com#?#div:-abp-contains(Ads)"},
		{"example.com##a:Hover", "example.com##a:hover"},
		{"example.com##div   span", "example.com##div span"},
	}

	for _, tt := range cases {
		if got := NormalizeCosmetic(tt.in); got != tt.want {
			t.Fatalf("NormalizeCosmetic(%q) expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestNormalizeCosmeticModifiers(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"[$app=org.example.app]example.org,example.com##.textad", "[$app=org.example.app]example.com,example.org##.textad"},
		{"[$path=/page.html]example.org,example.com#%#//scriptlet('abort-on-property-read', 'alert')", "[$path=/page.html]example.com,example.org#%#//scriptlet('abort-on-property-read', 'alert')"},
		{"[$app=/[a-z]/]example.org,0.0.0.0##.ads", "[$app=/[a-z]/]0.0.0.0,example.org##.ads"},
		{"[$app=/^org\\.example\\.[ab].*/]~[::],example.com##div[class=\"ads\"]", "[$app=/^org\\.example\\.[ab].*/]~[::],example.com##div[class=\"ads\"]"},
		{"[$app=/^org\\.example\\.[ab].*/,path=/page.html]example.com,~[::]##.ads", "[$app=/^org\\.example\\.[ab].*/,path=/page.html]~[::],example.com##.ads"},
		{"[$domain=b.com|a.com,app=test_app|com.apple.Safari]example.com##selector", "[$domain=a.com|b.com,app=test_app|com.apple.Safari]example.com##selector"},
		{"[$path=/id]/^[a-z0-9]{5,}\\.(cfd|sbs|shop)$/##.ad", "[$path=/id]/^[a-z0-9]{5,}\\.(cfd|sbs|shop)$/##.ad"},
	}

	for _, tt := range cases {
		if got := NormalizeCosmetic(tt.in); got != tt.want {
			t.Fatalf("NormalizeCosmetic(%q) expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestNormalizeCosmeticUnparsableModifier(t *testing.T) {
	cases := []string{
		"[$app=/[a-z/]example.org,0.0.0.0##.ads",
		"[$domain=[::]##.ads",
		"[$app=/^org\\.example\\.[ab.*/]example.com##.ads",
	}

	for _, in := range cases {
		if got := NormalizeCosmetic(in); got != in {
			t.Fatalf("expected %q unchanged, got %q", in, got)
		}
	}
}

func TestFindModifierEnd(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"[$app=/[a-z/]example.org,0.0.0.0", "[$app=/[a-z/]", true},
		{"[$path=/foo\\]/bar/]", "[$path=/foo\\]/bar/]", true},
		{"[$domain=[::]", "", false},
		{"[$path=/id]/^[a-z0-9]{5,}\\.(cfd|sbs|shop)$/", "[$path=/id]", true},
		{"[$app=/^org\\.example\\.[ab].*/]example.com,~[::]", "[$app=/^org\\.example\\.[ab].*/]", true},
	}

	for _, tt := range cases {
		end, ok := FindModifierEnd(tt.in)
		if ok != tt.wantOK {
			t.Fatalf("FindModifierEnd(%q) expected ok=%v", tt.in, tt.wantOK)
		}
		if ok && tt.in[:end+1] != tt.want {
			t.Fatalf("FindModifierEnd(%q) expected %q, got %q", tt.in, tt.want, tt.in[:end+1])
		}
	}
}

func TestParseCosmetic(t *testing.T) {
	c, ok := ParseCosmetic("[$path=/page.html]a.com,b.com#@?#div:has(> a)")
	if !ok {
		t.Fatalf("expected rule to parse")
	}
	if c.Modifier != "[$path=/page.html]" || c.Domains != "a.com,b.com" || c.Separator != "#@?#" || c.Payload != "div:has(> a)" {
		t.Fatalf("unexpected parts: %+v", c)
	}
	if c.String() != "[$path=/page.html]a.com,b.com#@?#div:has(> a)" {
		t.Fatalf("expected round trip, got %q", c.String())
	}

	if _, ok := ParseCosmetic("||example.com^$script"); ok {
		t.Fatalf("expected network rule to be rejected")
	}
}

func TestParseCosmeticEscapedModifierBracket(t *testing.T) {
	line := `[$path=/foo\]/bar/]##.ad`
	c, ok := ParseCosmetic(line)
	if !ok {
		t.Fatalf("expected rule to parse")
	}
	if c.Modifier != `[$path=/foo\]/bar/]` || c.Domains != "" || c.Separator != "##" || c.Payload != ".ad" {
		t.Fatalf("unexpected parts: %+v", c)
	}
	if got := NormalizeCosmetic(line); got != line {
		t.Fatalf("expected %q, got %q", line, got)
	}
}
