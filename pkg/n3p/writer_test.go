package n3p

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aleksaelezovic/gturtle/pkg/rdf"
)

func subject() *rdf.NamedNode   { return rdf.NewNamedNode("http://example.org/s") }
func predicate() *rdf.NamedNode { return rdf.NewNamedNode("http://example.org/p") }

// clause returns the last line the writer produced for one triple.
func clause(t *testing.T, object rdf.Term, opts ...Option) string {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf, opts...)
	if err := w.Triple(subject(), predicate(), object); err != nil {
		t.Fatalf("Triple failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	return lines[len(lines)-1]
}

func TestWriter_Prologue(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		":- style_check(-discontiguous).\n",
		":- style_check(-singleton).\n",
		":- multifile(exopred/3).\n",
		":- multifile(pred/1).\n",
		":- multifile('<http://www.w3.org/1999/02/22-rdf-syntax-ns#first>'/2).\n",
		"flag('no-skolem', '" + DefaultSkolemPrefix + "').\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Prologue missing %q", want)
		}
	}
}

func TestWriter_SkolemPrefixOption(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithSkolemPrefix("http://example.org/.well-known/genid/#"))
	_ = w.Start()
	if !strings.Contains(buf.String(), "flag('no-skolem', 'http://example.org/.well-known/genid/#').") {
		t.Error("Configured skolem prefix missing from the flag clause")
	}
}

func TestWriter_PredicateDeclaredOnce(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	for i := 0; i < 3; i++ {
		if err := w.Triple(subject(), predicate(), rdf.NewLiteralWithDatatype("1", rdf.XSDInteger)); err != nil {
			t.Fatalf("Triple failed: %v", err)
		}
	}
	_ = w.Triple(subject(), rdf.NewNamedNode("http://example.org/q"), rdf.NewLiteralWithDatatype("1", rdf.XSDInteger))

	out := buf.String()
	for _, decl := range []string{
		":- dynamic('<http://example.org/p>'/2).",
		":- multifile('<http://example.org/p>'/2).",
		"pred('<http://example.org/p>').",
	} {
		if got := strings.Count(out, decl); got != 1 {
			t.Errorf("Expected %q exactly once, got %d", decl, got)
		}
	}
	if got := strings.Count(out, "pred('<http://example.org/q>')."); got != 1 {
		t.Errorf("Expected one declaration for the second predicate, got %d", got)
	}

	// Declarations precede the first use of the predicate.
	if idx, use := strings.Index(out, "pred('<http://example.org/p>')."), strings.Index(out, "'<http://example.org/p>'("); idx > use {
		t.Error("Declaration should precede the first clause")
	}
	if w.Count() != 4 {
		t.Errorf("Expected count 4, got %d", w.Count())
	}
}

func TestWriter_TripleClause(t *testing.T) {
	got := clause(t, rdf.NewNamedNode("http://example.org/o"))
	expected := "'<http://example.org/p>'('<http://example.org/s>','<http://example.org/o>')."
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestWriter_BlankNodeSkolemised(t *testing.T) {
	got := clause(t, rdf.NewBlankNode("X7-0"))
	expected := "'<http://example.org/p>'('<http://example.org/s>','<" + DefaultSkolemPrefix + "X7-0>')."
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestWriter_QuoteEscapedInIRI(t *testing.T) {
	got := clause(t, rdf.NewNamedNode("http://example.org/o'brien"))
	if !strings.Contains(got, `'<http://example.org/o\'brien>'`) {
		t.Errorf("Quote not escaped: %q", got)
	}
}

func TestWriter_Literals(t *testing.T) {
	tests := []struct {
		name     string
		object   rdf.Term
		expected string
	}{
		{
			name:     "boolean true",
			object:   rdf.NewLiteralWithDatatype("true", rdf.XSDBoolean),
			expected: "true",
		},
		{
			name:     "boolean 1 normalised",
			object:   rdf.NewLiteralWithDatatype("1", rdf.XSDBoolean),
			expected: "true",
		},
		{
			name:     "boolean 0 normalised",
			object:   rdf.NewLiteralWithDatatype("0", rdf.XSDBoolean),
			expected: "false",
		},
		{
			name:     "integer verbatim",
			object:   rdf.NewLiteralWithDatatype("-042", rdf.XSDInteger),
			expected: "-042",
		},
		{
			name:     "plain string",
			object:   rdf.NewLiteral("hello"),
			expected: "literal('hello',type('<http://www.w3.org/2001/XMLSchema#string>'))",
		},
		{
			name:     "language tagged",
			object:   rdf.NewLiteralWithLanguage("chat", "fr"),
			expected: "literal('chat',lang('fr'))",
		},
		{
			name:     "other datatype",
			object:   rdf.NewLiteralWithDatatype("x", rdf.NewNamedNode("http://example.org/dt")),
			expected: "literal('x',type('<http://example.org/dt>'))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clause(t, tt.object)
			expected := "'<http://example.org/p>'('<http://example.org/s>'," + tt.expected + ")."
			if got != expected {
				t.Errorf("Expected %q, got %q", expected, got)
			}
		})
	}
}

func TestWriter_DoubleFixes(t *testing.T) {
	tests := []struct {
		lexical  string
		expected string
	}{
		{".5E0", "0.5E0"},
		{"-.5E0", "-0.5E0"},
		{"5.", "5.0"},
		{"5.E0", "5.0E0"},
		{"4.2E9", "4.2E9"},
		{"1E0", "1E0"},
	}
	for _, tt := range tests {
		got := clause(t, rdf.NewLiteralWithDatatype(tt.lexical, rdf.XSDDouble))
		expected := "'<http://example.org/p>'('<http://example.org/s>'," + tt.expected + ")."
		if got != expected {
			t.Errorf("Double %q: expected %q, got %q", tt.lexical, expected, got)
		}
	}
}

func TestWriter_DecimalFixes(t *testing.T) {
	tests := []struct {
		lexical  string
		expected string
	}{
		{".5", "0.5"},
		{"-.5", "-0.5"},
		{"5.", "5.0"},
		{"4.2", "4.2"},
	}
	for _, tt := range tests {
		got := clause(t, rdf.NewLiteralWithDatatype(tt.lexical, rdf.XSDDecimal))
		expected := "'<http://example.org/p>'('<http://example.org/s>'," + tt.expected + ")."
		if got != expected {
			t.Errorf("Decimal %q: expected %q, got %q", tt.lexical, expected, got)
		}
	}
}

func TestWriter_RdivDecimals(t *testing.T) {
	tests := []struct {
		lexical  string
		expected string
	}{
		{"0.25", "025 rdiv 100"},
		{"4.2", "42 rdiv 10"},
		{"-0.5", "-05 rdiv 10"},
		{"5.", "5 rdiv 1"},
		{"5", "5 rdiv 1"},
	}
	for _, tt := range tests {
		got := clause(t, rdf.NewLiteralWithDatatype(tt.lexical, rdf.XSDDecimal), WithRdivDecimals())
		expected := "'<http://example.org/p>'('<http://example.org/s>'," + tt.expected + ")."
		if got != expected {
			t.Errorf("Decimal %q: expected %q, got %q", tt.lexical, expected, got)
		}
	}
}

func TestWriter_ListsStayInline(t *testing.T) {
	list := rdf.NewList(
		rdf.NewLiteralWithDatatype("1", rdf.XSDInteger),
		rdf.NewLiteralWithDatatype("2", rdf.XSDInteger),
		rdf.NewLiteralWithDatatype("3", rdf.XSDInteger),
	)
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Triple(subject(), predicate(), list); err != nil {
		t.Fatalf("Triple failed: %v", err)
	}
	if w.Count() != 1 {
		t.Errorf("Lists must not expand to triples; count %d", w.Count())
	}
	if !strings.Contains(buf.String(), ",[1,2,3]).") {
		t.Errorf("Expected inline [1,2,3], got %q", buf.String())
	}
}

func TestWriter_NestedList(t *testing.T) {
	inner := rdf.NewList(rdf.NewLiteral("a"))
	list := rdf.NewList(inner, rdf.NewBlankNode("B-1"))
	got := clause(t, list)
	expected := "'<http://example.org/p>'('<http://example.org/s>'," +
		"[[literal('a',type('<http://www.w3.org/2001/XMLSchema#string>'))],'<" + DefaultSkolemPrefix + "B-1>'])."
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestWriter_StringEscaping(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"newline", "a\nb", `a\\nb`},
		{"tab", "a\tb", `a\\tb`},
		{"double quote", `a"b`, `a\\"b`},
		{"single quote", "a'b", `a\'b`},
		{"backslash", `a\b`, `a\\\\b`},
		{"control", "a\x01b", `a\u0001b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clause(t, rdf.NewLiteral(tt.value))
			if !strings.Contains(got, "literal('"+tt.expected+"',") {
				t.Errorf("Expected escaped %q in %q", tt.expected, got)
			}
		})
	}
}

func TestWriter_CESU8(t *testing.T) {
	// U+29154 re-encodes as a 6-byte surrogate sequence in both IRIs and
	// lexical values.
	cesu := "\xED\xA1\xA4\xED\xB5\x94"

	got := clause(t, rdf.NewLiteral("\xF0\xA9\x85\x94"), WithCESU8())
	if !strings.Contains(got, "literal('"+cesu+"',") {
		t.Errorf("Lexical value not CESU-8 encoded: %q", got)
	}

	got = clause(t, rdf.NewNamedNode("http://example.org/\xF0\xA9\x85\x94"), WithCESU8())
	if !strings.Contains(got, "'<http://example.org/"+cesu+">'") {
		t.Errorf("IRI not CESU-8 encoded: %q", got)
	}

	// Without the option the UTF-8 passes through untouched.
	got = clause(t, rdf.NewLiteral("\xF0\xA9\x85\x94"))
	if !strings.Contains(got, "literal('\xF0\xA9\x85\x94',") {
		t.Errorf("Expected plain UTF-8, got %q", got)
	}
}

func TestWriter_DocumentPrefixEpilogue(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.Document("file:///data/input.ttl"); err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	if err := w.Prefix("ex", "http://example.org/ns#"); err != nil {
		t.Fatalf("Prefix failed: %v", err)
	}
	_ = w.Triple(subject(), predicate(), rdf.NewLiteralWithDatatype("1", rdf.XSDInteger))
	if err := w.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"scope('<file:///data/input.ttl>').\n",
		"pfx('ex:','<http://example.org/ns#>').\n",
		"scount(1).\n",
		"end_of_file.\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "scount(1).\nend_of_file.\n") {
		t.Errorf("Epilogue should close the output:\n%s", out)
	}
}
