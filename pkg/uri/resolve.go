package uri

import "strings"

// Resolve applies the RFC 3986 section 5.3 reference resolution algorithm,
// taking u as the base and ref as the reference.
func (u URI) Resolve(ref URI) URI {
	var (
		scheme, authority, query, fragment string
		hasScheme, hasAuth, hasQuery       bool
		path                               string
	)

	if s, ok := ref.Scheme(); ok {
		scheme, hasScheme = s, true
		authority, hasAuth = ref.Authority()
		path = removeDotSegments(ref.Path())
		query, hasQuery = ref.Query()
	} else {
		scheme, hasScheme = u.Scheme()
		if a, ok := ref.Authority(); ok {
			authority, hasAuth = a, true
			path = removeDotSegments(ref.Path())
			query, hasQuery = ref.Query()
		} else {
			authority, hasAuth = u.Authority()
			if ref.Path() == "" {
				path = u.Path()
				if q, ok := ref.Query(); ok {
					query, hasQuery = q, true
				} else {
					query, hasQuery = u.Query()
				}
			} else {
				if strings.HasPrefix(ref.Path(), "/") {
					path = removeDotSegments(ref.Path())
				} else {
					path = removeDotSegments(u.merge(ref.Path()))
				}
				query, hasQuery = ref.Query()
			}
		}
	}
	fragment, hasFrag := ref.Fragment()

	return assemble(scheme, hasScheme, authority, hasAuth, path, query, hasQuery, fragment, hasFrag)
}

// merge implements the RFC 3986 section 5.3 path merge: the base path up to
// and including its final slash, followed by the reference path.
func (u URI) merge(refPath string) string {
	if _, ok := u.Authority(); ok && u.Path() == "" {
		return "/" + refPath
	}
	base := u.Path()
	n := strings.LastIndexByte(base, '/')
	if n < 0 {
		return refPath
	}
	return base[:n+1] + refPath
}

// removeDotSegments is the RFC 3986 section 5.2.4 loop.
func removeDotSegments(input string) string {
	if input == "" {
		return input
	}

	out := make([]byte, 0, len(input))
	for len(input) > 0 {
		switch {
		case strings.HasPrefix(input, "../"):
			input = input[3:]
		case strings.HasPrefix(input, "./"):
			input = input[2:]
		case strings.HasPrefix(input, "/./"):
			input = input[2:]
		case input == "/.":
			input = "/"
		case strings.HasPrefix(input, "/../"):
			input = input[3:]
			out = trimLastSegment(out)
		case input == "/..":
			input = "/"
			out = trimLastSegment(out)
		case input == "." || input == "..":
			input = ""
		default:
			// Move one segment: the leading character plus everything up
			// to, but not including, the next '/'.
			n := strings.IndexByte(input[1:], '/')
			if n >= 0 {
				out = append(out, input[:n+1]...)
				input = input[n+1:]
			} else {
				out = append(out, input...)
				input = ""
			}
		}
	}
	return string(out)
}

func trimLastSegment(out []byte) []byte {
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] == '/' {
			return out[:i]
		}
	}
	return out[:0]
}

// assemble recomposes a URI from resolved components, recording the
// component spans while the canonical string is built. The authority has
// already been validated by the Parse that produced it.
func assemble(scheme string, hasScheme bool, authority string, hasAuth bool, path string, query string, hasQuery bool, fragment string, hasFrag bool) URI {
	var b strings.Builder
	b.Grow(len(scheme) + len(authority) + len(path) + len(query) + len(fragment) + 4)

	u := URI{
		scheme:    absent,
		authority: absent,
		host:      absent,
		query:     absent,
		fragment:  absent,
	}

	if hasScheme {
		u.scheme, u.schemeLen = 0, len(scheme)
		b.WriteString(scheme)
		b.WriteByte(':')
	}
	if hasAuth {
		b.WriteString("//")
		u.authority, u.authorityLen = b.Len(), len(authority)
		b.WriteString(authority)
	}
	u.path, u.pathLen = b.Len(), len(path)
	b.WriteString(path)
	if hasQuery {
		b.WriteByte('?')
		u.query, u.queryLen = b.Len(), len(query)
		b.WriteString(query)
	}
	if hasFrag {
		b.WriteByte('#')
		u.fragment = b.Len()
		b.WriteString(fragment)
	}

	u.value = b.String()
	_ = u.parseAuthorityComponents()
	return u
}
