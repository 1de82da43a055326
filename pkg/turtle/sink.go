package turtle

import "github.com/aleksaelezovic/gturtle/pkg/rdf"

// TripleSink receives parse events. The parser owns the term values it
// passes to Triple for the duration of the call; a sink that needs them
// longer must copy them.
//
// Start and End are driven by the caller of the parser, not the parser
// itself, so one sink can span several input documents.
type TripleSink interface {
	Start() error
	Document(source string) error
	Prefix(prefix, ns string) error
	Triple(subject rdf.Term, predicate *rdf.NamedNode, object rdf.Term) error
	End() error
	Count() uint64
}

// CountingSink counts triples and discards everything else.
type CountingSink struct {
	count uint64
}

func (s *CountingSink) Start() error                { return nil }
func (s *CountingSink) Document(string) error       { return nil }
func (s *CountingSink) Prefix(string, string) error { return nil }
func (s *CountingSink) End() error                  { return nil }

func (s *CountingSink) Triple(rdf.Term, *rdf.NamedNode, rdf.Term) error {
	s.count++
	return nil
}

func (s *CountingSink) Count() uint64 { return s.count }
