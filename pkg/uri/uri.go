// Package uri implements a non-validating URI parser and reference
// resolver following the generic syntax of RFC 3986. Components are kept
// as spans into a single canonical string, so accessors and resolution do
// not allocate per component.
package uri

import "strings"

// SyntaxError is returned when a string cannot be decomposed into URI
// components.
type SyntaxError struct {
	Reason string
}

func (e *SyntaxError) Error() string {
	return "uri: " + e.Reason
}

// absent marks a component that does not occur in the URI. A component can
// be present and empty ("http://example.org#" has an empty fragment), so a
// zero length is not enough.
const absent = -1

// URI is an RFC 3986 URI reference, decomposed once at construction.
// Construct with Parse; a URI is immutable after that.
type URI struct {
	value string

	scheme, schemeLen       int
	authority, authorityLen int
	host, hostLen           int
	path, pathLen           int
	query, queryLen         int
	fragment                int
}

// Parse decomposes s into its URI components. The parser checks component
// form only; it does not validate characters against the RFC grammars.
func Parse(s string) (URI, error) {
	u := URI{
		value:     s,
		scheme:    absent,
		authority: absent,
		host:      absent,
		query:     absent,
		fragment:  absent,
	}
	if err := u.parseComponents(); err != nil {
		return URI{}, err
	}
	return u, nil
}

// MustParse is Parse for statically known inputs.
func MustParse(s string) URI {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Absolute reports whether s is an absolute URI reference, i.e. whether a
// scheme delimiter occurs before any of "/?#".
func Absolute(s string) bool {
	p := strings.IndexAny(s, ":/?#")
	return p > 0 && s[p] == ':'
}

func (u *URI) parseComponents() error {
	s := u.value

	p := strings.IndexAny(s, ":/?#")
	switch {
	case p < 0:
		u.path, u.pathLen = 0, len(s)
	case s[p] == ':' && p > 0:
		u.scheme, u.schemeLen = 0, p
		if err := u.parseAuthority(p + 1); err != nil {
			return err
		}
	case s[p] == ':':
		// ":" at position 0: no scheme, the colon belongs to the path.
		u.parsePath(0)
	case s[p] == '/':
		if err := u.parseAuthority(0); err != nil {
			return err
		}
	case s[p] == '?':
		u.path, u.pathLen = 0, p
		u.parseQuery(p + 1)
	default: // '#'
		u.path, u.pathLen = 0, p
		u.fragment = p + 1
	}

	return u.check()
}

// parseAuthority scans from begin, which points just after the scheme colon
// or at the start of a schemeless reference.
func (u *URI) parseAuthority(begin int) error {
	s := u.value
	if strings.HasPrefix(s[begin:], "//") {
		begin += 2
		end := begin
		for end < len(s) && s[end] != '/' && s[end] != '?' && s[end] != '#' {
			end++
		}
		u.authority, u.authorityLen = begin, end-begin
		if err := u.parseAuthorityComponents(); err != nil {
			return err
		}
		u.parsePath(end)
		return nil
	}
	u.parsePath(begin)
	return nil
}

func (u *URI) parsePath(begin int) {
	s := u.value
	end := begin
	for end < len(s) && s[end] != '?' && s[end] != '#' {
		end++
	}
	u.path, u.pathLen = begin, end-begin
	if end < len(s) {
		if s[end] == '?' {
			u.parseQuery(end + 1)
		} else {
			u.fragment = end + 1
		}
	}
}

func (u *URI) parseQuery(begin int) {
	s := u.value
	end := begin
	for end < len(s) && s[end] != '#' {
		end++
	}
	u.query, u.queryLen = begin, end-begin
	if end < len(s) {
		u.fragment = end + 1
	}
}

// parseAuthorityComponents locates the host span inside the authority:
// userinfo ends at the first '@', the port starts at the last ':' after it.
// A bracketed IPv6 host is taken verbatim up to the closing bracket.
func (u *URI) parseAuthorityComponents() error {
	if u.authorityLen == 0 {
		return nil
	}
	auth := u.value[u.authority : u.authority+u.authorityLen]

	hostBegin := 0
	if a := strings.IndexByte(auth, '@'); a >= 0 {
		hostBegin = a + 1
	}

	colon := absent
	if hostBegin < len(auth) && auth[hostBegin] == '[' {
		b := strings.IndexByte(auth[hostBegin+1:], ']')
		if b < 0 {
			return &SyntaxError{Reason: "unclosed bracket in authority"}
		}
		b += hostBegin + 2
		if b < len(auth) {
			if auth[b] != ':' {
				return &SyntaxError{Reason: "illegal authority"}
			}
			colon = b
		}
	} else {
		colon = strings.LastIndexByte(auth, ':')
		if colon < hostBegin {
			colon = absent
		}
	}

	hostEnd := len(auth)
	if colon != absent {
		hostEnd = colon
	}
	if hostEnd == hostBegin {
		return &SyntaxError{Reason: "host is empty"}
	}
	u.host, u.hostLen = u.authority+hostBegin, hostEnd-hostBegin
	return nil
}

// check enforces the RFC 3986 component combination rules.
func (u *URI) check() error {
	path := u.Path()
	if u.authority != absent {
		if path != "" && path[0] != '/' {
			return &SyntaxError{Reason: "path should be empty or start with '/'"}
		}
	} else if strings.HasPrefix(path, "//") {
		return &SyntaxError{Reason: "path starts with '//'"}
	}
	if u.scheme == absent && u.authority == absent && path != "" {
		seg := path
		if n := strings.IndexByte(seg, '/'); n >= 0 {
			seg = seg[:n]
		}
		if strings.IndexByte(seg, ':') >= 0 {
			return &SyntaxError{Reason: "relative path reference contains a ':' in the first path segment"}
		}
	}
	return nil
}

// Scheme returns the scheme component without the trailing colon.
func (u URI) Scheme() (string, bool) {
	if u.scheme == absent {
		return "", false
	}
	return u.value[u.scheme : u.scheme+u.schemeLen], true
}

// Authority returns the authority component without the leading "//".
func (u URI) Authority() (string, bool) {
	if u.authority == absent {
		return "", false
	}
	return u.value[u.authority : u.authority+u.authorityLen], true
}

// UserInfo returns the userinfo part of the authority, without the '@'.
func (u URI) UserInfo() (string, bool) {
	if u.authority == absent || u.host == absent || u.host == u.authority {
		return "", false
	}
	return u.value[u.authority : u.host-1], true
}

// Host returns the host part of the authority.
func (u URI) Host() (string, bool) {
	if u.host == absent {
		return "", false
	}
	return u.value[u.host : u.host+u.hostLen], true
}

// Port returns the port part of the authority, without the ':'.
func (u URI) Port() (string, bool) {
	if u.host == absent {
		return "", false
	}
	n := u.host + u.hostLen
	end := u.authority + u.authorityLen
	if n >= end {
		return "", false
	}
	return u.value[n+1 : end], true
}

// Path returns the path component; it is always present, possibly empty.
func (u URI) Path() string {
	return u.value[u.path : u.path+u.pathLen]
}

// Query returns the query component without the leading '?'.
func (u URI) Query() (string, bool) {
	if u.query == absent {
		return "", false
	}
	return u.value[u.query : u.query+u.queryLen], true
}

// Fragment returns the fragment component without the leading '#'.
func (u URI) Fragment() (string, bool) {
	if u.fragment == absent {
		return "", false
	}
	return u.value[u.fragment:], true
}

// IsAbsolute reports whether the URI carries a scheme.
func (u URI) IsAbsolute() bool {
	return u.scheme != absent
}

// String returns the canonical string the URI was parsed or assembled from.
func (u URI) String() string {
	return u.value
}
