package turtle

import (
	"fmt"
	"io"
	"strings"

	"github.com/aleksaelezovic/gturtle/pkg/rdf"
	"github.com/aleksaelezovic/gturtle/pkg/uri"
)

// Parser is an LL(1) recursive-descent parser for Turtle 1.1. It resolves
// IRIs against a mutable base, keeps the prefix map, and pushes every
// statement to its sink as a triple event. A parser parses one document and
// is not safe for concurrent use.
//
// Grammar:
//
//	turtledoc    := (directive | triples '.')*
//	directive    := '@prefix' PNAME_NS IRIREF '.'
//	              | '@base' IRIREF '.'
//	              | 'PREFIX' PNAME_NS IRIREF
//	              | 'BASE' IRIREF
//	triples      := subject predicateObjectList
//	              | blankNodePropertyList predicateObjectList?
//	subject      := iri | BLANK_NODE_LABEL | collection
//	predicateObjectList := verb objectList (';' (verb objectList)?)*
//	verb         := iri | 'a'
//	objectList   := object (',' object)*
//	object       := iri | BLANK_NODE_LABEL | collection
//	              | blankNodePropertyList | literal
//	literal      := rdfLiteral | INTEGER | DECIMAL | DOUBLE | TRUE | FALSE
//	rdfLiteral   := string (LANGTAG | '^^' iri)?
//	blankNodePropertyList := '[' predicateObjectList? ']'
//	collection   := '(' object* ')'
//	iri          := IRIREF | PNAME_LN | PNAME_NS
type Parser struct {
	lex       *Lexer
	base      uri.URI
	sink      TripleSink
	prefixes  map[string]string
	blanks    *rdf.BlankNodeIDGenerator
	lookahead Token
}

// New returns a parser reading Turtle from r, resolving relative IRIs
// against base and delivering events to sink.
func New(r io.Reader, base uri.URI, sink TripleSink) *Parser {
	return &Parser{
		lex:      NewLexer(r),
		base:     base,
		sink:     sink,
		prefixes: make(map[string]string),
		blanks:   rdf.NewBlankNodeIDGenerator(),
	}
}

// Line returns the line the parser is currently at.
func (p *Parser) Line() int {
	return p.lex.Line()
}

// Parse consumes the document, emitting a document event followed by a
// triple event per statement. Errors from the sink abort the parse and are
// returned as-is; everything else surfaces as a *ParseError.
func (p *Parser) Parse() error {
	if err := p.sink.Document(p.base.String()); err != nil {
		return err
	}
	if err := p.advance(); err != nil {
		return err
	}
	return p.turtledoc()
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.lookahead = tok
	return nil
}

// expect consumes and returns the lookahead if it has the wanted type.
func (p *Parser) expect(t TokenType) (Token, error) {
	if p.lookahead.Type != t {
		return Token{}, p.errf("expected %s, got %s", t, p.lookahead.Type)
	}
	tok := p.lookahead
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

func (p *Parser) errf(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Line: p.lex.Line()}
}

// wrap attaches the current line to errors coming from the URI layer or
// the escape expanders; sink errors and parse errors pass through.
func (p *Parser) wrap(err error) error {
	if err == nil {
		return err
	}
	switch err.(type) {
	case *ParseError:
		return err
	case *uri.SyntaxError, *escapeError:
		return &ParseError{Msg: err.Error(), Line: p.lex.Line()}
	}
	return err
}

// resolve parses s and resolves it against the current base unless it is
// already absolute.
func (p *Parser) resolve(s string) (uri.URI, error) {
	u, err := uri.Parse(s)
	if err != nil {
		return uri.URI{}, p.wrap(err)
	}
	if u.IsAbsolute() {
		return u, nil
	}
	return p.base.Resolve(u), nil
}

func (p *Parser) turtledoc() error {
	for p.lookahead.Type != TokenEOF {
		switch p.lookahead.Type {
		case TokenPNameLN, TokenIRIRef, TokenBlankNodeLabel, TokenPNameNS, TokenLBracket, TokenLParen:
			if err := p.triples(); err != nil {
				return err
			}
			if _, err := p.expect(TokenDot); err != nil {
				return err
			}
		case TokenPrefix:
			if err := p.prefixID(); err != nil {
				return err
			}
		case TokenBase:
			if err := p.baseID(); err != nil {
				return err
			}
		case TokenSparqlPrefix:
			if err := p.sparqlPrefix(); err != nil {
				return err
			}
		case TokenSparqlBase:
			if err := p.sparqlBase(); err != nil {
				return err
			}
		default:
			return p.errf("expected base, prefix or triple, got %s", p.lookahead.Type)
		}
	}
	return nil
}

func (p *Parser) baseID() error {
	if _, err := p.expect(TokenBase); err != nil {
		return err
	}
	tok, err := p.expect(TokenIRIRef)
	if err != nil {
		return err
	}
	if _, err := p.expect(TokenDot); err != nil {
		return err
	}
	return p.setBase(tok.Lexeme)
}

func (p *Parser) sparqlBase() error {
	if _, err := p.expect(TokenSparqlBase); err != nil {
		return err
	}
	tok, err := p.expect(TokenIRIRef)
	if err != nil {
		return err
	}
	return p.setBase(tok.Lexeme)
}

// setBase resolves the directive's IRIREF against the old base and
// installs the result.
func (p *Parser) setBase(lexeme string) error {
	s, err := extractIRI(lexeme)
	if err != nil {
		return p.wrap(err)
	}
	u, err := p.resolve(s)
	if err != nil {
		return err
	}
	p.base = u
	return nil
}

func (p *Parser) prefixID() error {
	if _, err := p.expect(TokenPrefix); err != nil {
		return err
	}
	return p.prefixBinding(true)
}

func (p *Parser) sparqlPrefix() error {
	if _, err := p.expect(TokenSparqlPrefix); err != nil {
		return err
	}
	return p.prefixBinding(false)
}

func (p *Parser) prefixBinding(dot bool) error {
	nsTok, err := p.expect(TokenPNameNS)
	if err != nil {
		return err
	}
	prefix := strings.TrimSuffix(nsTok.Lexeme, ":")
	iriTok, err := p.expect(TokenIRIRef)
	if err != nil {
		return err
	}
	if dot {
		if _, err := p.expect(TokenDot); err != nil {
			return err
		}
	}

	s, err := extractIRI(iriTok.Lexeme)
	if err != nil {
		return p.wrap(err)
	}
	u, err := p.resolve(s)
	if err != nil {
		return err
	}
	ns := u.String()
	if err := p.sink.Prefix(prefix, ns); err != nil {
		return err
	}
	p.prefixes[prefix] = ns
	return nil
}

func (p *Parser) triples() error {
	switch p.lookahead.Type {
	case TokenPNameLN, TokenIRIRef, TokenBlankNodeLabel, TokenPNameNS, TokenLParen:
		subject, err := p.subject()
		if err != nil {
			return err
		}
		return p.propertyList(subject)
	case TokenLBracket:
		subject, err := p.blankNodePropertyList()
		if err != nil {
			return err
		}
		return p.propertyListOpt(subject)
	default:
		return p.errf("expected blank node, IRI or collection as subject")
	}
}

func (p *Parser) subject() (rdf.Term, error) {
	switch p.lookahead.Type {
	case TokenPNameLN, TokenIRIRef, TokenPNameNS:
		s, err := p.iri()
		if err != nil {
			return nil, err
		}
		return rdf.NewNamedNode(s), nil
	case TokenBlankNodeLabel:
		tok, err := p.expect(TokenBlankNodeLabel)
		if err != nil {
			return nil, err
		}
		return rdf.NewBlankNode(p.blanks.Generate(tok.Lexeme[2:])), nil
	case TokenLParen:
		return p.collection()
	default:
		return nil, p.errf("expected blank node, IRI or collection as subject")
	}
}

func (p *Parser) propertyList(subject rdf.Term) error {
	if err := p.property(subject); err != nil {
		return err
	}
	for p.lookahead.Type == TokenSemicolon {
		if _, err := p.expect(TokenSemicolon); err != nil {
			return err
		}
		switch p.lookahead.Type {
		case TokenA, TokenPNameLN, TokenIRIRef, TokenPNameNS:
			if err := p.property(subject); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Parser) propertyListOpt(subject rdf.Term) error {
	switch p.lookahead.Type {
	case TokenA, TokenIRIRef, TokenPNameLN, TokenPNameNS:
		return p.propertyList(subject)
	}
	return nil
}

func (p *Parser) property(subject rdf.Term) error {
	switch p.lookahead.Type {
	case TokenA:
		if _, err := p.expect(TokenA); err != nil {
			return err
		}
		return p.objectList(subject, rdf.RDFType)
	case TokenPNameLN, TokenIRIRef, TokenPNameNS:
		s, err := p.iri()
		if err != nil {
			return err
		}
		return p.objectList(subject, rdf.NewNamedNode(s))
	default:
		return p.errf("expected 'a' or IRI as predicate")
	}
}

func (p *Parser) objectList(subject rdf.Term, predicate *rdf.NamedNode) error {
	object, err := p.object()
	if err != nil {
		return err
	}
	if err := p.sink.Triple(subject, predicate, object); err != nil {
		return err
	}
	for p.lookahead.Type == TokenComma {
		if _, err := p.expect(TokenComma); err != nil {
			return err
		}
		object, err := p.object()
		if err != nil {
			return err
		}
		if err := p.sink.Triple(subject, predicate, object); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) object() (rdf.Term, error) {
	switch p.lookahead.Type {
	case TokenBlankNodeLabel:
		tok, err := p.expect(TokenBlankNodeLabel)
		if err != nil {
			return nil, err
		}
		return rdf.NewBlankNode(p.blanks.Generate(tok.Lexeme[2:])), nil
	case TokenPNameLN, TokenIRIRef, TokenPNameNS:
		s, err := p.iri()
		if err != nil {
			return nil, err
		}
		return rdf.NewNamedNode(s), nil
	case TokenStringLiteralQuote, TokenStringLiteralSingleQuote,
		TokenStringLiteralLongQuote, TokenStringLiteralLongSingleQuote:
		tok, err := p.expect(p.lookahead.Type)
		if err != nil {
			return nil, err
		}
		lexical, err := extractString(tok.Lexeme)
		if err != nil {
			return nil, p.wrap(err)
		}
		return p.dtlang(lexical)
	case TokenInteger:
		tok, err := p.expect(TokenInteger)
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteralWithDatatype(tok.Lexeme, rdf.XSDInteger), nil
	case TokenDecimal:
		tok, err := p.expect(TokenDecimal)
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteralWithDatatype(tok.Lexeme, rdf.XSDDecimal), nil
	case TokenDouble:
		tok, err := p.expect(TokenDouble)
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteralWithDatatype(tok.Lexeme, rdf.XSDDouble), nil
	case TokenTrue, TokenFalse:
		tok, err := p.expect(p.lookahead.Type)
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteralWithDatatype(tok.Lexeme, rdf.XSDBoolean), nil
	case TokenLBracket:
		return p.blankNodePropertyList()
	case TokenLParen:
		return p.collection()
	default:
		return nil, p.errf("expected blank node, IRI, literal or collection, got %s", p.lookahead.Type)
	}
}

// dtlang attaches an optional language tag or datatype to a string
// literal. Recognised XSD datatypes map to their typed literal; xsd:string
// stays a plain string.
func (p *Parser) dtlang(lexical string) (rdf.Term, error) {
	switch p.lookahead.Type {
	case TokenLangTag:
		tok, err := p.expect(TokenLangTag)
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteralWithLanguage(lexical, tok.Lexeme[1:]), nil
	case TokenCaretCaret:
		if _, err := p.expect(TokenCaretCaret); err != nil {
			return nil, err
		}
		datatype, err := p.iri()
		if err != nil {
			return nil, err
		}
		switch datatype {
		case rdf.XSDInteger.IRI:
			return rdf.NewLiteralWithDatatype(lexical, rdf.XSDInteger), nil
		case rdf.XSDDecimal.IRI:
			return rdf.NewLiteralWithDatatype(lexical, rdf.XSDDecimal), nil
		case rdf.XSDBoolean.IRI:
			return rdf.NewLiteralWithDatatype(lexical, rdf.XSDBoolean), nil
		case rdf.XSDDouble.IRI:
			return rdf.NewLiteralWithDatatype(lexical, rdf.XSDDouble), nil
		case rdf.XSDString.IRI:
			return rdf.NewLiteral(lexical), nil
		}
		return rdf.NewLiteralWithDatatype(lexical, rdf.NewNamedNode(datatype)), nil
	}
	return rdf.NewLiteral(lexical), nil
}

// collection parses '(' object* ')'. The empty collection is rdf:nil.
func (p *Parser) collection() (rdf.Term, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	list := rdf.NewList()
	for p.lookahead.Type != TokenRParen {
		if p.lookahead.Type == TokenEOF {
			return nil, p.errf("unterminated collection")
		}
		object, err := p.object()
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, object)
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	if list.Empty() {
		return rdf.NewNamedNode(rdf.RDFNil.IRI), nil
	}
	return list, nil
}

func (p *Parser) blankNodePropertyList() (rdf.Term, error) {
	if _, err := p.expect(TokenLBracket); err != nil {
		return nil, err
	}
	b := rdf.NewBlankNode(p.blanks.Generate(""))
	if err := p.propertyListOpt(b); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRBracket); err != nil {
		return nil, err
	}
	return b, nil
}

// iri returns the absolute IRI string for the next IRIREF or prefixed
// name.
func (p *Parser) iri() (string, error) {
	switch p.lookahead.Type {
	case TokenIRIRef:
		tok, err := p.expect(TokenIRIRef)
		if err != nil {
			return "", err
		}
		s, err := extractIRI(tok.Lexeme)
		if err != nil {
			return "", p.wrap(err)
		}
		u, err := p.resolve(s)
		if err != nil {
			return "", err
		}
		return u.String(), nil
	case TokenPNameLN:
		tok, err := p.expect(TokenPNameLN)
		if err != nil {
			return "", err
		}
		return p.toIRI(tok.Lexeme)
	case TokenPNameNS:
		tok, err := p.expect(TokenPNameNS)
		if err != nil {
			return "", err
		}
		return p.toIRI(tok.Lexeme)
	default:
		return "", p.errf("expected IRI reference or prefixed name, got %s", p.lookahead.Type)
	}
}

// toIRI expands a prefixed name against the prefix map. Concatenating a
// local part onto a valid namespace IRI cannot make it invalid, so the
// result is not re-parsed.
func (p *Parser) toIRI(pname string) (string, error) {
	colon := strings.IndexByte(pname, ':')
	if colon < 0 {
		return "", p.errf("malformed prefixed name %q", pname)
	}
	prefix := pname[:colon]
	ns, ok := p.prefixes[prefix]
	if !ok {
		return "", p.errf("unknown prefix: %q", prefix)
	}
	local, err := unescapeLocalName(pname[colon+1:])
	if err != nil {
		return "", p.wrap(err)
	}
	return ns + local, nil
}
