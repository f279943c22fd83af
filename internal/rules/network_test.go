package rules

import (
	"reflect"
	"testing"
)

func TestNormalizeNetworkOptionOrder(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"type-flags", "||example.com^$script,image,third-party,domain=a.com", "||example.com^$third-party,image,script,domain=a.com"},
		{"negation-adjacent", "$~image,image", "$image,~image"},
		{"party", "*$css,3p,third-party,strict3p,first-party,1p,strict1p,strict-first-party,strict-third-party", "*$strict-first-party,strict-third-party,strict1p,strict3p,1p,3p,first-party,third-party,css"},
		{"important-first", "*$important,domain=3p.com,css,badfilter", "*$badfilter,important,css,domain=3p.com"},
		{"value-options", "/ads.$domain=example.com,css,csp=script-src 'none'", "/ads.$css,csp=script-src 'none',domain=example.com"},
		{"bare-value-option", "@@/ads.$domain=example.com,xhr,urltransform", "@@/ads.$urltransform,xhr,domain=example.com"},
		{"method-before-domain", "/ads.$domain=example.com,method=~get,xhr", "/ads.$xhr,method=~get,domain=example.com"},
		{"reason-last", `/ads.$reason="Ads",domain=example.com,xhr`, `/ads.$xhr,domain=example.com,reason="Ads"`},
		{"domain-like", "||example.com^$3p,domain=a.com|b.com,denyallow=x.com|y.com,script", "||example.com^$3p,script,denyallow=x.com|y.com,domain=a.com|b.com"},
		{"ipaddress", "||example.com^$ipaddress=::,domain=a.com", "||example.com^$domain=a.com,ipaddress=::"},
	}

	for _, tt := range cases {
		if got := NormalizeNetwork(tt.in); got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestNormalizeNetworkValues(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"$domain=c.com|a.com|~b.com", "$domain=a.com|~b.com|c.com"},
		{"$method=post|~get|delete", "$method=delete|~get|post"},
		{"$DOMAIN=ExamPle.Com", "$domain=example.com"},
		{"||example.org^$Csp=Foo", "||example.org^$csp=Foo"},
		{"$Domain=/[A-Z-a-z-09]+/", "$domain=/[A-Z-a-z-09]+/"},
		{"||example.com^$domain=|a.com||b.com|", "||example.com^$domain=a.com|b.com"},
		{"||example.com^$domain=a.com|b.com,,css,", "||example.com^$css,domain=a.com|b.com"},
		{"/ads.$domain=/Example.com/|.Example.com/|Example.com", "/ads.$domain=example.com"},
		{"/ads.$domain=b.com,domain=a.com", "/ads.$domain=a.com|b.com"},
		{"||example.org^$domain=/a\\,b/,HLS=/#UPLYNK-SEGMENT:.*\\,ad/t", "||example.org^$hls=/#UPLYNK-SEGMENT:.*\\,ad/t,domain=/a\\,b/"},
		{"$permissions=storage-access=()\\, camera=(),domain=b.com|a.com,image", "$image,permissions=storage-access=()\\, camera=(),domain=a.com|b.com"},
	}

	for _, tt := range cases {
		if got := NormalizeNetwork(tt.in); got != tt.want {
			t.Fatalf("NormalizeNetwork(%q) expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestNormalizeNetworkRewrites(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"||example.com$_,removeparam=/^ss\\$/,_,image", "||example.com$image,removeparam=/^ss\\$/"},
		{"||example.com$replace=/bad/good/,___,~third-party", "||example.com$~third-party,replace=/bad/good/"},
		{"$script,empty,domain=example.org", "$script,redirect=nooptext,domain=example.org"},
		{"*.mp4$mp4,domain=example.org", "*.mp4$media,redirect=noopmp4-1s,domain=example.org"},
		{"||example.com^$css,css,CSS", "||example.com^$css"},
	}

	for _, tt := range cases {
		if got := NormalizeNetwork(tt.in); got != tt.want {
			t.Fatalf("NormalizeNetwork(%q) expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestNormalizeNetworkWithoutOptions(t *testing.T) {
	for _, in := range []string{"/Ads.", "||example.com^", "/banner$/", "@@||example.com/path?a=$b"} {
		if got := NormalizeNetwork(in); got != in {
			t.Fatalf("expected %q unchanged, got %q", in, got)
		}
	}
}

func TestSplitOptions(t *testing.T) {
	got := SplitOptions(`removeparam=/^(a|b),c/,permissions=x=()\, y=(),domain=a.com`)
	want := []string{`removeparam=/^(a|b),c/`, `permissions=x=()\, y=()`, "domain=a.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
