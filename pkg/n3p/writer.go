// Package n3p writes a triple stream as N3P, the Prolog-clause encoding
// consumed by Euler-style inference engines: a fixed prologue, one
// dynamic/multifile/pred declaration triplet per predicate, one
// '<predicate>'(subject, object) clause per triple, and a trailing
// scount/end_of_file marker.
package n3p

import (
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/gturtle/internal/utf"
	"github.com/aleksaelezovic/gturtle/pkg/rdf"
)

// DefaultSkolemPrefix is the namespace blank nodes are promoted under.
const DefaultSkolemPrefix = "http://aca.agfa.net/.well-known/genid/#"

const hexChar = "0123456789ABCDEF"

// Option configures a Writer.
type Option func(*Writer)

// WithRdivDecimals emits xsd:decimal literals as exact `N rdiv D`
// rationals instead of Prolog floats.
func WithRdivDecimals() Option {
	return func(w *Writer) { w.rdiv = true }
}

// WithCESU8 re-encodes supplementary code points as CESU-8 surrogate
// sequences in both IRIs and lexical values.
func WithCESU8() Option {
	return func(w *Writer) { w.cesu8 = true }
}

// WithSkolemPrefix overrides the skolem namespace.
func WithSkolemPrefix(prefix string) Option {
	return func(w *Writer) { w.skolem = prefix }
}

// Writer is a turtle.TripleSink emitting N3P. Not safe for concurrent
// use.
type Writer struct {
	w          io.Writer
	buf        []byte
	eol        string
	skolem     string
	rdiv       bool
	cesu8      bool
	properties map[string]struct{}
	count      uint64
	err        error
}

// NewWriter returns a writer emitting to w. The destination should be
// buffered; End flushes it when it exposes a Flush method.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	eol := "\n"
	if runtime.GOOS == "windows" {
		eol = "\r\n"
	}
	nw := &Writer{
		w:          w,
		eol:        eol,
		skolem:     DefaultSkolemPrefix,
		properties: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(nw)
	}
	return nw
}

// prologuePredicates are declared multifile up front so that concatenated
// N3P files load into one program.
var prologuePredicates = []string{
	"exopred/3",
	"implies/3",
	"pfx/2",
	"pred/1",
	"prfstep/8",
	"scope/1",
	"scount/1",
	"'<http://eulersharp.sourceforge.net/2003/03swap/fl-rules#mu>'/2",
	"'<http://eulersharp.sourceforge.net/2003/03swap/fl-rules#pi>'/2",
	"'<http://eulersharp.sourceforge.net/2003/03swap/fl-rules#sigma>'/2",
	"'<http://eulersharp.sourceforge.net/2003/03swap/log-rules#biconditional>'/2",
	"'<http://eulersharp.sourceforge.net/2003/03swap/log-rules#conditional>'/2",
	"'<http://eulersharp.sourceforge.net/2003/03swap/log-rules#reflexive>'/2",
	"'<http://eulersharp.sourceforge.net/2003/03swap/log-rules#relabel>'/2",
	"'<http://eulersharp.sourceforge.net/2003/03swap/log-rules#tactic>'/2",
	"'<http://eulersharp.sourceforge.net/2003/03swap/log-rules#transaction>'/2",
	"'<http://www.w3.org/1999/02/22-rdf-syntax-ns#first>'/2",
	"'<http://www.w3.org/1999/02/22-rdf-syntax-ns#rest>'/2",
	"'<http://www.w3.org/1999/02/22-rdf-syntax-ns#type>'/2",
	"'<http://www.w3.org/2000/10/swap/log#implies>'/2",
	"'<http://www.w3.org/2000/10/swap/log#outputString>'/2",
	"'<http://www.w3.org/2002/07/owl#sameAs>'/2",
}

// Start writes the prologue.
func (w *Writer) Start() error {
	w.literalLine(":- style_check(-discontiguous).")
	w.literalLine(":- style_check(-singleton).")
	for _, p := range prologuePredicates {
		w.literalLine(":- multifile(" + p + ").")
	}
	w.buf = w.buf[:0]
	w.buf = append(w.buf, "flag('no-skolem', '"...)
	w.appendURIEscaped(w.skolem)
	w.buf = append(w.buf, "')."...)
	w.flushLine()
	return w.err
}

// Document writes the scope clause naming the source.
func (w *Writer) Document(source string) error {
	w.buf = w.buf[:0]
	w.buf = append(w.buf, "scope('<"...)
	w.appendURIEscaped(source)
	w.buf = append(w.buf, ">')."...)
	w.flushLine()
	return w.err
}

// Prefix writes a pfx clause.
func (w *Writer) Prefix(prefix, ns string) error {
	w.buf = w.buf[:0]
	w.buf = append(w.buf, "pfx('"...)
	w.appendEscaped(prefix)
	w.buf = append(w.buf, ":','<"...)
	w.appendURIEscaped(ns)
	w.buf = append(w.buf, ">')."...)
	w.flushLine()
	return w.err
}

// End writes the epilogue and flushes a buffered destination.
func (w *Writer) End() error {
	w.literalLine("scount(" + strconv.FormatUint(w.count, 10) + ").")
	w.literalLine("end_of_file.")
	if w.err != nil {
		return w.err
	}
	if f, ok := w.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Count returns the number of triple clauses written.
func (w *Writer) Count() uint64 { return w.count }

// Triple writes the clause for one triple, declaring its predicate first
// if this is the predicate's first occurrence.
func (w *Writer) Triple(subject rdf.Term, predicate *rdf.NamedNode, object rdf.Term) error {
	if _, seen := w.properties[predicate.IRI]; !seen {
		w.properties[predicate.IRI] = struct{}{}
		w.declaration(":- dynamic('<", predicate.IRI, ">'/2).")
		w.declaration(":- multifile('<", predicate.IRI, ">'/2).")
		w.declaration("pred('<", predicate.IRI, ">').")
	}

	w.buf = w.buf[:0]
	w.appendTerm(predicate)
	w.buf = append(w.buf, '(')
	w.appendTerm(subject)
	w.buf = append(w.buf, ',')
	w.appendTerm(object)
	w.buf = append(w.buf, ")."...)
	w.flushLine()
	w.count++
	return w.err
}

func (w *Writer) declaration(before, uri, after string) {
	w.buf = w.buf[:0]
	w.buf = append(w.buf, before...)
	w.appendURIEscaped(uri)
	w.buf = append(w.buf, after...)
	w.flushLine()
}

func (w *Writer) literalLine(s string) {
	w.buf = w.buf[:0]
	w.buf = append(w.buf, s...)
	w.flushLine()
}

func (w *Writer) flushLine() {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, w.eol...)
	if _, err := w.w.Write(w.buf); err != nil {
		w.err = err
	}
}

func (w *Writer) appendTerm(t rdf.Term) {
	switch t := t.(type) {
	case *rdf.NamedNode:
		w.buf = append(w.buf, '\'', '<')
		w.appendURIEscaped(t.IRI)
		w.buf = append(w.buf, '>', '\'')
	case *rdf.BlankNode:
		// Blank nodes are promoted to IRIs under the skolem namespace.
		w.buf = append(w.buf, '\'', '<')
		w.appendURIEscaped(w.skolem)
		w.appendURIEscaped(t.ID)
		w.buf = append(w.buf, '>', '\'')
	case *rdf.List:
		w.buf = append(w.buf, '[')
		for i, e := range t.Elements {
			if i > 0 {
				w.buf = append(w.buf, ',')
			}
			w.appendTerm(e)
		}
		w.buf = append(w.buf, ']')
	case *rdf.Literal:
		w.appendLiteral(t)
	}
}

func (w *Writer) appendLiteral(l *rdf.Literal) {
	switch l.Kind() {
	case rdf.LiteralBoolean:
		if l.Value == "true" || l.Value == "1" {
			w.buf = append(w.buf, "true"...)
		} else {
			w.buf = append(w.buf, "false"...)
		}
	case rdf.LiteralInteger:
		w.buf = append(w.buf, l.Value...)
	case rdf.LiteralDouble:
		w.buf = append(w.buf, fixFloat(l.Value)...)
	case rdf.LiteralDecimal:
		if w.rdiv {
			w.buf = append(w.buf, rdivForm(l.Value)...)
		} else {
			w.buf = append(w.buf, fixFloat(l.Value)...)
		}
	case rdf.LiteralString:
		if l.Language != "" {
			w.buf = append(w.buf, "literal('"...)
			w.appendEscaped(l.Value)
			w.buf = append(w.buf, "',lang('"...)
			w.appendEscaped(l.Language)
			w.buf = append(w.buf, "'))"...)
			return
		}
		w.buf = append(w.buf, "literal('"...)
		w.appendEscaped(l.Value)
		w.buf = append(w.buf, "',type('<"...)
		w.appendURIEscaped(rdf.XSDString.IRI)
		w.buf = append(w.buf, ">'))"...)
	default:
		w.buf = append(w.buf, "literal('"...)
		w.appendEscaped(l.Value)
		w.buf = append(w.buf, "',type('<"...)
		w.appendURIEscaped(l.Datatype.IRI)
		w.buf = append(w.buf, ">'))"...)
	}
}

// appendEscaped writes a lexical value inside a quoted atom. The escape
// letters are double-backslashed so the Prolog reader reconstructs the
// single-backslash form.
func (w *Writer) appendEscaped(s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x1F {
			switch c {
			case '\n':
				w.buf = append(w.buf, `\\n`...)
			case '\r':
				w.buf = append(w.buf, `\\r`...)
			case '\t':
				w.buf = append(w.buf, `\\t`...)
			case '\f':
				w.buf = append(w.buf, `\\f`...)
			case '\b':
				w.buf = append(w.buf, `\\b`...)
			default:
				w.buf = append(w.buf, `\u00`...)
				w.buf = append(w.buf, hexChar[c>>4], hexChar[c&0x0F])
			}
			continue
		}
		switch c {
		case '"':
			w.buf = append(w.buf, `\\"`...)
		case '\'':
			w.buf = append(w.buf, `\'`...)
		case '\\':
			w.buf = append(w.buf, `\\\\`...)
		default:
			if w.cesu8 && c&0xF8 == 0xF0 {
				i += w.appendCESU8(s[i:]) - 1
			} else {
				w.buf = append(w.buf, c)
			}
		}
	}
}

// appendURIEscaped writes an IRI inside a quoted atom; only the quote
// needs escaping there.
func (w *Writer) appendURIEscaped(s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			w.buf = append(w.buf, `\'`...)
		case w.cesu8 && c&0xF8 == 0xF0:
			i += w.appendCESU8(s[i:]) - 1
		default:
			w.buf = append(w.buf, c)
		}
	}
}

// appendCESU8 re-encodes the UTF-8 sequence at the start of s as CESU-8
// and returns the number of bytes consumed.
func (w *Writer) appendCESU8(s string) int {
	cp, size, err := utf.Decode([]byte(s))
	if err != nil {
		cp = utf.RuneError
		if size == 0 { // truncated tail
			size = len(s)
		}
	}
	w.buf = utf.AppendCESU8(w.buf, cp)
	return size
}

// fixFloat adjusts a xsd:double/xsd:decimal lexical form to a float the
// Prolog reader accepts: "0" fills in a missing integer or fraction part
// next to the decimal point.
func fixFloat(v string) string {
	appendZero := false

	if p := strings.IndexByte(v, '.'); p >= 0 {
		p++
		if p == len(v) {
			appendZero = true
		} else if v[p] == 'E' || v[p] == 'e' {
			v = v[:p] + "0" + v[p:]
		}
	}

	switch {
	case v[0] == '.':
		v = "0" + v
	case len(v) > 1 && v[0] == '-' && v[1] == '.':
		v = "-0" + v[1:]
	}
	if appendZero {
		v += "0"
	}
	return v
}

// rdivForm writes a decimal as an exact rational: the lexical form minus
// its point over ten to the number of fraction digits.
func rdivForm(v string) string {
	p := strings.IndexByte(v, '.')
	if p < 0 {
		return v + " rdiv 1"
	}
	fraction := len(v) - p - 1
	n := v[:p] + v[p+1:]
	d := "1"
	for i := 0; i < fraction; i++ {
		d += "0"
	}
	return n + " rdiv " + d
}
