package turtle

import "fmt"

// ParseError is the single error value every lexical, grammar, escape,
// prefix-reference or URI failure surfaces as. Line is 1-based; 0 means the
// position is unknown.
type ParseError struct {
	Msg  string
	Line int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}
