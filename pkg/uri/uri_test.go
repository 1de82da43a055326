package uri

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// resolveString parses the reference and resolves it against base.
func resolveString(t *testing.T, base URI, ref string) string {
	t.Helper()
	r, err := Parse(ref)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", ref, err)
	}
	return base.Resolve(r).String()
}

func TestResolve_Normal(t *testing.T) {
	// The reference resolution examples of RFC 3986 section 5.4.1.
	base := MustParse("http://a/b/c/d;p?q")

	tests := []struct {
		ref      string
		expected string
	}{
		{"g:h", "g:h"},
		{"g", "http://a/b/c/g"},
		{"./g", "http://a/b/c/g"},
		{"g/", "http://a/b/c/g/"},
		{"/g", "http://a/g"},
		{"//g", "http://g"},
		{"?y", "http://a/b/c/d;p?y"},
		{"g?y", "http://a/b/c/g?y"},
		{"#s", "http://a/b/c/d;p?q#s"},
		{"g#s", "http://a/b/c/g#s"},
		{"g?y#s", "http://a/b/c/g?y#s"},
		{";x", "http://a/b/c/;x"},
		{"g;x", "http://a/b/c/g;x"},
		{"g;x?y#s", "http://a/b/c/g;x?y#s"},
		{"", "http://a/b/c/d;p?q"},
		{".", "http://a/b/c/"},
		{"./", "http://a/b/c/"},
		{"..", "http://a/b/"},
		{"../", "http://a/b/"},
		{"../g", "http://a/b/g"},
		{"../..", "http://a/"},
		{"../../", "http://a/"},
		{"../../g", "http://a/g"},
	}
	for _, tt := range tests {
		if got := resolveString(t, base, tt.ref); got != tt.expected {
			t.Errorf("Resolve(%q): expected %q, got %q", tt.ref, tt.expected, got)
		}
	}
}

func TestResolve_Abnormal(t *testing.T) {
	// The examples of RFC 3986 section 5.4.2.
	base := MustParse("http://a/b/c/d;p?q")

	tests := []struct {
		ref      string
		expected string
	}{
		{"../../../g", "http://a/g"},
		{"../../../../g", "http://a/g"},
		{"/./g", "http://a/g"},
		{"/../g", "http://a/g"},
		{"g.", "http://a/b/c/g."},
		{".g", "http://a/b/c/.g"},
		{"g..", "http://a/b/c/g.."},
		{"..g", "http://a/b/c/..g"},
		{"./../g", "http://a/b/g"},
		{"./g/.", "http://a/b/c/g/"},
		{"g/./h", "http://a/b/c/g/h"},
		{"g/../h", "http://a/b/c/h"},
		{"g;x=1/./y", "http://a/b/c/g;x=1/y"},
		{"g;x=1/../y", "http://a/b/c/y"},
		{"g?y/./x", "http://a/b/c/g?y/./x"},
		{"g?y/../x", "http://a/b/c/g?y/../x"},
		{"g#s/./x", "http://a/b/c/g#s/./x"},
		{"g#s/../x", "http://a/b/c/g#s/../x"},
		{"http:g", "http:g"},
	}
	for _, tt := range tests {
		if got := resolveString(t, base, tt.ref); got != tt.expected {
			t.Errorf("Resolve(%q): expected %q, got %q", tt.ref, tt.expected, got)
		}
	}
}

func TestAbsolute(t *testing.T) {
	tests := []struct {
		uri      string
		expected bool
	}{
		{"g:h", true},
		{":", false},
		{"#:", false},
		{"g?y/./x", false},
		{"foo", false},
	}
	for _, tt := range tests {
		if got := Absolute(tt.uri); got != tt.expected {
			t.Errorf("Absolute(%q): expected %t, got %t", tt.uri, tt.expected, got)
		}
	}
}

// components flattens a URI for comparison; absent components stay nil.
type components struct {
	Scheme, Authority, UserInfo, Host, Port *string
	Path                                    string
	Query, Fragment                         *string
}

func str(s string) *string { return &s }

func split(u URI) components {
	var c components
	c.Path = u.Path()
	if v, ok := u.Scheme(); ok {
		c.Scheme = str(v)
	}
	if v, ok := u.Authority(); ok {
		c.Authority = str(v)
	}
	if v, ok := u.UserInfo(); ok {
		c.UserInfo = str(v)
	}
	if v, ok := u.Host(); ok {
		c.Host = str(v)
	}
	if v, ok := u.Port(); ok {
		c.Port = str(v)
	}
	if v, ok := u.Query(); ok {
		c.Query = str(v)
	}
	if v, ok := u.Fragment(); ok {
		c.Fragment = str(v)
	}
	return c
}

func TestParse_Components(t *testing.T) {
	tests := []struct {
		uri      string
		expected components
	}{
		{
			uri: "http://user@www.ics.uci.edu:8080/pub/ietf/uri/#Related",
			expected: components{
				Scheme:    str("http"),
				Authority: str("user@www.ics.uci.edu:8080"),
				UserInfo:  str("user"),
				Host:      str("www.ics.uci.edu"),
				Port:      str("8080"),
				Path:      "/pub/ietf/uri/",
				Fragment:  str("Related"),
			},
		},
		{
			uri: "http://example.org#",
			expected: components{
				Scheme:    str("http"),
				Authority: str("example.org"),
				Host:      str("example.org"),
				Path:      "",
				Fragment:  str(""),
			},
		},
		{
			uri: "http://example.org?",
			expected: components{
				Scheme:    str("http"),
				Authority: str("example.org"),
				Host:      str("example.org"),
				Path:      "",
				Query:     str(""),
			},
		},
		{
			uri: "http://[2001:db8::7]:8042/over/there",
			expected: components{
				Scheme:    str("http"),
				Authority: str("[2001:db8::7]:8042"),
				Host:      str("[2001:db8::7]"),
				Port:      str("8042"),
				Path:      "/over/there",
			},
		},
		{
			uri: "mailto:John.Doe@example.com",
			expected: components{
				Scheme: str("mailto"),
				Path:   "John.Doe@example.com",
			},
		},
		{
			uri:      "foo",
			expected: components{Path: "foo"},
		},
	}
	for _, tt := range tests {
		u, err := Parse(tt.uri)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tt.uri, err)
			continue
		}
		if diff := cmp.Diff(tt.expected, split(u)); diff != "" {
			t.Errorf("Parse(%q) components mismatch (-want +got):\n%s", tt.uri, diff)
		}
		if u.String() != tt.uri {
			t.Errorf("Parse(%q).String(): got %q", tt.uri, u.String())
		}
	}
}

func TestParse_Errors(t *testing.T) {
	invalid := []string{
		"http://@/path",       // empty host
		"http://[2001:db8::7", // unclosed bracket
		"http://[::1]x",       // junk after the bracket
		":",                   // first path segment contains ':'
	}
	for _, s := range invalid {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error", s)
		}
	}

	valid := []string{
		"http:foo//bar//",       // '//' inside the path is fine with a scheme
		"//",                    // empty authority, empty path
		"a:b/c:d",               // ':' beyond the first segment
		"./relative:not/scheme", // first segment is "."
	}
	for _, s := range valid {
		if _, err := Parse(s); err != nil {
			t.Errorf("Parse(%q): unexpected error %v", s, err)
		}
	}
}

func TestResolve_AgainstEmptyBasePath(t *testing.T) {
	base := MustParse("http://example.org")
	if got := resolveString(t, base, "g"); got != "http://example.org/g" {
		t.Errorf("expected http://example.org/g, got %q", got)
	}
}
