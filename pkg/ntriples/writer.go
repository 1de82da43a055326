// Package ntriples writes a triple stream as N-Triples: one
// "subject predicate object ." per line. Turtle collections are expanded
// into rdf:first/rdf:rest chains over freshly minted blank nodes before
// the line is written.
package ntriples

import (
	"io"
	"runtime"

	"github.com/aleksaelezovic/gturtle/pkg/rdf"
)

// Writer is a turtle.TripleSink emitting N-Triples. It owns its own blank
// node generator for collection expansion, independent of the parser's.
// Not safe for concurrent use.
type Writer struct {
	w     io.Writer
	idgen *rdf.BlankNodeIDGenerator
	line  []byte
	eol   string
	count uint64
	err   error
}

// NewWriter returns a writer emitting to w. Lines end with "\n", or
// "\r\n" on Windows. The destination should be buffered; End flushes it
// when it exposes a Flush method.
func NewWriter(w io.Writer) *Writer {
	eol := "\n"
	if runtime.GOOS == "windows" {
		eol = "\r\n"
	}
	return &Writer{
		w:     w,
		idgen: rdf.NewBlankNodeIDGenerator(),
		eol:   eol,
	}
}

func (w *Writer) Start() error             { return nil }
func (w *Writer) Document(string) error    { return nil }
func (w *Writer) Prefix(_, _ string) error { return nil }

// Count returns the number of lines written, i.e. the triple count after
// collection expansion.
func (w *Writer) Count() uint64 { return w.count }

// End flushes the destination if it is buffered.
func (w *Writer) End() error {
	if w.err != nil {
		return w.err
	}
	if f, ok := w.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Triple writes one incoming triple, first replacing any collection in
// subject or object position by the head of its expansion.
func (w *Writer) Triple(subject rdf.Term, predicate *rdf.NamedNode, object rdf.Term) error {
	if list, ok := subject.(*rdf.List); ok {
		subject = w.expand(list)
	}
	if list, ok := object.(*rdf.List); ok {
		object = w.expand(list)
	}
	w.rawTriple(subject, predicate, object)
	return w.err
}

// expand emits the rdf:first/rdf:rest chain for a collection and returns
// the term standing in for it: the head blank node, or rdf:nil for an
// empty collection.
func (w *Writer) expand(list *rdf.List) rdf.Term {
	if list.Empty() {
		return rdf.RDFNil
	}

	id := w.idgen.Generate("")
	head := rdf.NewBlankNode(id)
	cell := head
	for i, element := range list.Elements {
		if nested, ok := element.(*rdf.List); ok {
			element = w.expand(nested)
		}
		w.rawTriple(cell, rdf.RDFFirst, element)
		if i == len(list.Elements)-1 {
			w.rawTriple(cell, rdf.RDFRest, rdf.RDFNil)
		} else {
			rest := rdf.NewBlankNode(w.idgen.Generate(""))
			w.rawTriple(cell, rdf.RDFRest, rest)
			cell = rest
		}
	}
	return rdf.NewBlankNode(id)
}

func (w *Writer) rawTriple(subject rdf.Term, predicate *rdf.NamedNode, object rdf.Term) {
	if w.err != nil {
		return
	}
	w.line = w.line[:0]
	w.appendTerm(subject)
	w.line = append(w.line, ' ')
	w.appendTerm(predicate)
	w.line = append(w.line, ' ')
	w.appendTerm(object)
	w.line = append(w.line, ' ', '.')
	w.line = append(w.line, w.eol...)
	if _, err := w.w.Write(w.line); err != nil {
		w.err = err
		return
	}
	w.count++
}

func (w *Writer) appendTerm(t rdf.Term) {
	switch t := t.(type) {
	case *rdf.NamedNode:
		w.line = append(w.line, '<')
		w.line = append(w.line, t.IRI...)
		w.line = append(w.line, '>')
	case *rdf.BlankNode:
		w.line = append(w.line, "_:b"...)
		w.line = append(w.line, t.ID...)
	case *rdf.Literal:
		w.appendLiteral(t)
	case *rdf.List:
		// Collections are expanded before they reach the formatter.
	}
}

func (w *Writer) appendLiteral(l *rdf.Literal) {
	w.line = append(w.line, '"')
	w.appendEscaped(l.Value)
	w.line = append(w.line, '"')
	if l.Kind() == rdf.LiteralString {
		if l.Language != "" {
			w.line = append(w.line, '@')
			w.line = append(w.line, l.Language...)
		}
		return
	}
	w.line = append(w.line, "^^<"...)
	w.line = append(w.line, l.Datatype.IRI...)
	w.line = append(w.line, '>')
}

// appendEscaped writes a lexical value with the N-Triples escape set;
// everything else passes through as raw UTF-8.
func (w *Writer) appendEscaped(s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			w.line = append(w.line, '\\', 'n')
		case '\r':
			w.line = append(w.line, '\\', 'r')
		case '\t':
			w.line = append(w.line, '\\', 't')
		case '\f':
			w.line = append(w.line, '\\', 'f')
		case '\b':
			w.line = append(w.line, '\\', 'b')
		case '"':
			w.line = append(w.line, '\\', '"')
		case '\\':
			w.line = append(w.line, '\\', '\\')
		default:
			w.line = append(w.line, c)
		}
	}
}
