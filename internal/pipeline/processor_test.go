package pipeline

import (
	"reflect"
	"testing"
)

func TestProcess(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "domain-list-sorted",
			in:   []string{"b.com,a.com##.ads"},
			want: []string{"a.com,b.com##.ads"},
		},
		{
			name: "subset-combined",
			in:   []string{"a.com##.ad", "a.com,b.com##.ad"},
			want: []string{"a.com,b.com##.ad"},
		},
		{
			name: "polarity-mismatch",
			in:   []string{"~y.com##.ad", "x.com##.ad"},
			want: []string{"x.com##.ad", "~y.com##.ad"},
		},
		{
			name: "cosmetic-first",
			in:   []string{"||a.com^", "##.ad"},
			want: []string{"##.ad", "||a.com^"},
		},
		{
			name: "allow-after-block",
			in:   []string{"@@||a.com^", "||b.com^"},
			want: []string{"||b.com^", "@@||a.com^"},
		},
		{
			name: "duplicates",
			in:   []string{"##.ad", "  ##.ad", "##.ad  "},
			want: []string{"##.ad"},
		},
		{
			name: "scriptlets-after-hiding",
			in:   []string{"a.com##+js(x)", "a.com##.b"},
			want: []string{"a.com##.b", "a.com##+js(x)"},
		},
		{
			name: "network-combined",
			in: []string{
				"||example.com^$script,image,third-party,domain=b.com",
				"||example.com^$image,script,third-party,domain=a.com",
			},
			want: []string{"||example.com^$third-party,image,script,domain=a.com|b.com"},
		},
		{
			name: "sections",
			in: []string{
				"! Title: test",
				"  ||b.com^  ",
				"||a.com^",
				"",
				"! section",
				"##.y",
				"c.com##.x",
			},
			want: []string{
				"! Title: test",
				"||a.com^",
				"||b.com^",
				"! section",
				"c.com##.x",
				"##.y",
			},
		},
		{
			name: "network-full-text-order",
			in:   []string{"||x^$domain=z.com", "||x^$domain=a.com,to=q.com"},
			want: []string{"||x^$domain=a.com,to=q.com", "||x^$domain=z.com"},
		},
		{
			name: "case-folded-order",
			in:   []string{"||b.com^", "||A.com^", "@@||a.com^"},
			want: []string{"||A.com^", "||b.com^", "@@||a.com^"},
		},
		{
			name: "merged-rule-recombined",
			in: []string{
				"||x^$domain=b.com.z",
				"||x^$domain=b.com.y,to=q.com",
				"||x^$domain=b.com.x",
				"||x^$domain=b.com",
			},
			want: []string{
				"||x^$domain=b.com.y,to=q.com",
				"||x^$domain=b.com|b.com.x|b.com.z",
			},
		},
		{
			name: "unparsable-modifier",
			in:   []string{"[$app=/[a-z/]example.org,0.0.0.0##.ads"},
			want: []string{"[$app=/[a-z/]example.org,0.0.0.0##.ads"},
		},
	}

	for _, tt := range cases {
		got := Process(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestProcessIdempotent(t *testing.T) {
	in := []string{
		"[Adblock Plus 2.0]",
		"! Title: sample",
		"||ads.example.com^$script,domain=b.com|a.com",
		"||ads.example.com^$script,domain=c.com",
		"||ads.example.com^$script,domain=a.com|~d.com",
		"@@||cdn.example.com^$image",
		"/banner/*$image,third-party",
		"c.com,b.com##.banner",
		"a.com##.banner",
		"~e.com##.banner",
		"example.org#?#div:has(> .ad)",
		"example.org##+js(set-constant, x, 1)",
		"!#if env_firefox",
		"||tracker.example^$3p",
		"!#endif",
		"[$path=/page]example.com##.sidebar",
		"[$path=/page]example.net##.sidebar",
		"||x^$domain=b.com",
		"||x^$domain=b.com.x",
		"||x^$domain=b.com.y,to=q.com",
		"||x^$domain=b.com.z",
	}

	once := Process(in)
	twice := Process(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected stable output\nfirst:  %q\nsecond: %q", once, twice)
	}
}

func TestProcessorWithMemo(t *testing.T) {
	memo, err := NewMemo(128)
	if err != nil {
		t.Fatalf("new memo: %v", err)
	}
	defer memo.Close()

	p := New(memo)
	in := []string{"b.com,a.com##.ads", "||a.com^$image,script"}
	want := Process(in)
	for i := 0; i < 3; i++ {
		if got := p.Process(in); !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestProcessEmpty(t *testing.T) {
	if got := Process([]string{"", "   "}); len(got) != 0 {
		t.Fatalf("expected no output, got %q", got)
	}
}
