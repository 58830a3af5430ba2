package ttl

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TermKind discriminates the three RDF term shapes the parser produces.
type TermKind int

const (
	TermIRI TermKind = iota
	TermBlank
	TermLiteral
)

// Term is one RDF term. Value holds the IRI, the blank node label, or the
// literal lexical form. Datatype and Lang apply to literals only.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// Triple is one parsed statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Graph is the parse result: the statement list plus the prefix table.
type Graph struct {
	Triples  []Triple
	Prefixes map[string]string
}

// ObjectsOf returns the objects of all triples matching subject IRI and
// predicate IRI, in statement order.
func (g *Graph) ObjectsOf(subject, predicate string) []Term {
	var out []Term
	for _, t := range g.Triples {
		if t.Subject.Kind == TermIRI && t.Subject.Value == subject &&
			t.Predicate.Value == predicate {
			out = append(out, t.Object)
		}
	}
	return out
}

// Parse reads a Turtle document. It covers the subset baselines actually
// use: prefix directives, IRIs, prefixed names, the "a" keyword, string and
// numeric literals with datatype or language tags, predicate-object and
// object lists, blank node labels, anonymous blank nodes and collections.
func Parse(data []byte) (*Graph, error) {
	p := &parser{
		input:    string(data),
		prefixes: map[string]string{},
	}
	if err := p.parseDocument(); err != nil {
		return nil, err
	}
	return &Graph{Triples: p.triples, Prefixes: p.prefixes}, nil
}

const rdfTypeIRI = RDFNamespace + "type"
const rdfNilIRI = RDFNamespace + "nil"

type parser struct {
	input    string
	pos      int
	line     int
	prefixes map[string]string
	base     string
	triples  []Triple
	blankSeq int
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("turtle line %d: %s", p.line+1, fmt.Sprintf(format, args...))
}

func (p *parser) parseDocument() error {
	for {
		p.skipWhitespace()
		if p.eof() {
			return nil
		}
		switch {
		case p.hasKeyword("@prefix"), p.hasKeyword("PREFIX"):
			if err := p.parsePrefix(); err != nil {
				return err
			}
		case p.hasKeyword("@base"), p.hasKeyword("BASE"):
			if err := p.parseBase(); err != nil {
				return err
			}
		default:
			if err := p.parseTriples(); err != nil {
				return err
			}
		}
	}
}

func (p *parser) parsePrefix() error {
	sparqlForm := p.hasKeyword("PREFIX")
	p.consumeKeyword()
	p.skipWhitespace()

	name, err := p.readPrefixName()
	if err != nil {
		return err
	}
	p.skipWhitespace()
	iri, err := p.readIRIRef()
	if err != nil {
		return err
	}
	p.prefixes[name] = iri

	p.skipWhitespace()
	if !sparqlForm {
		if !p.accept('.') {
			return p.errf("expected '.' after @prefix directive")
		}
	} else {
		p.accept('.')
	}
	return nil
}

func (p *parser) parseBase() error {
	sparqlForm := p.hasKeyword("BASE")
	p.consumeKeyword()
	p.skipWhitespace()
	iri, err := p.readIRIRef()
	if err != nil {
		return err
	}
	p.base = iri
	p.skipWhitespace()
	if !sparqlForm && !p.accept('.') {
		return p.errf("expected '.' after @base directive")
	}
	return nil
}

func (p *parser) parseTriples() error {
	subject, err := p.parseSubject()
	if err != nil {
		return err
	}
	p.skipWhitespace()
	// An anonymous subject with an embedded predicate list may be followed
	// directly by '.'.
	if p.accept('.') {
		return nil
	}
	if err := p.parsePredicateObjectList(subject); err != nil {
		return err
	}
	p.skipWhitespace()
	if !p.accept('.') {
		return p.errf("expected '.' at end of statement")
	}
	return nil
}

func (p *parser) parseSubject() (Term, error) {
	p.skipWhitespace()
	switch {
	case p.peek() == '<':
		iri, err := p.readIRIRef()
		return Term{Kind: TermIRI, Value: iri}, err
	case strings.HasPrefix(p.rest(), "_:"):
		return p.readBlankLabel()
	case p.peek() == '[':
		return p.parseAnonBlank()
	case p.peek() == '(':
		return p.parseCollection()
	default:
		iri, err := p.readPrefixedIRI()
		return Term{Kind: TermIRI, Value: iri}, err
	}
}

func (p *parser) parsePredicateObjectList(subject Term) error {
	for {
		p.skipWhitespace()
		predicate, err := p.parseVerb()
		if err != nil {
			return err
		}
		for {
			p.skipWhitespace()
			object, err := p.parseObject()
			if err != nil {
				return err
			}
			p.triples = append(p.triples, Triple{Subject: subject, Predicate: predicate, Object: object})
			p.skipWhitespace()
			if !p.accept(',') {
				break
			}
		}
		if !p.accept(';') {
			return nil
		}
		p.skipWhitespace()
		// Trailing ';' before '.' or ']' is legal.
		if p.eof() || p.peek() == '.' || p.peek() == ']' {
			return nil
		}
	}
}

func (p *parser) parseVerb() (Term, error) {
	if p.hasKeyword("a") {
		p.consumeKeyword()
		return Term{Kind: TermIRI, Value: rdfTypeIRI}, nil
	}
	if p.peek() == '<' {
		iri, err := p.readIRIRef()
		return Term{Kind: TermIRI, Value: iri}, err
	}
	iri, err := p.readPrefixedIRI()
	return Term{Kind: TermIRI, Value: iri}, err
}

func (p *parser) parseObject() (Term, error) {
	switch {
	case p.peek() == '<':
		iri, err := p.readIRIRef()
		return Term{Kind: TermIRI, Value: iri}, err
	case strings.HasPrefix(p.rest(), "_:"):
		return p.readBlankLabel()
	case p.peek() == '[':
		return p.parseAnonBlank()
	case p.peek() == '(':
		return p.parseCollection()
	case p.peek() == '"' || p.peek() == '\'':
		return p.readLiteral()
	case p.hasKeyword("true"):
		p.consumeKeyword()
		return Term{Kind: TermLiteral, Value: "true", Datatype: XSDNamespace + "boolean"}, nil
	case p.hasKeyword("false"):
		p.consumeKeyword()
		return Term{Kind: TermLiteral, Value: "false", Datatype: XSDNamespace + "boolean"}, nil
	case p.peek() == '+' || p.peek() == '-' || isDigit(p.peek()):
		return p.readNumber()
	default:
		iri, err := p.readPrefixedIRI()
		return Term{Kind: TermIRI, Value: iri}, err
	}
}

// parseAnonBlank reads "[ ... ]", emitting nested triples with a fresh
// blank node as their subject.
func (p *parser) parseAnonBlank() (Term, error) {
	if !p.accept('[') {
		return Term{}, p.errf("expected '['")
	}
	node := p.freshBlank()
	p.skipWhitespace()
	if p.accept(']') {
		return node, nil
	}
	if err := p.parsePredicateObjectList(node); err != nil {
		return Term{}, err
	}
	p.skipWhitespace()
	if !p.accept(']') {
		return Term{}, p.errf("expected ']' closing blank node")
	}
	return node, nil
}

// parseCollection reads "( ... )". List structure is not reconstructed;
// members are parsed and discarded, the collection becomes a blank node
// (empty collections become rdf:nil).
func (p *parser) parseCollection() (Term, error) {
	if !p.accept('(') {
		return Term{}, p.errf("expected '('")
	}
	empty := true
	for {
		p.skipWhitespace()
		if p.accept(')') {
			break
		}
		if p.eof() {
			return Term{}, p.errf("unterminated collection")
		}
		if _, err := p.parseObject(); err != nil {
			return Term{}, err
		}
		empty = false
	}
	if empty {
		return Term{Kind: TermIRI, Value: rdfNilIRI}, nil
	}
	return p.freshBlank(), nil
}

func (p *parser) freshBlank() Term {
	p.blankSeq++
	return Term{Kind: TermBlank, Value: fmt.Sprintf("gen%d", p.blankSeq)}
}

func (p *parser) readBlankLabel() (Term, error) {
	p.pos += 2 // "_:"
	start := p.pos
	for !p.eof() && isLocalNameChar(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return Term{}, p.errf("empty blank node label")
	}
	return Term{Kind: TermBlank, Value: p.input[start:p.pos]}, nil
}

func (p *parser) readIRIRef() (string, error) {
	if !p.accept('<') {
		return "", p.errf("expected '<'")
	}
	start := p.pos
	for !p.eof() && p.peek() != '>' {
		if p.peek() == '\n' {
			return "", p.errf("newline inside IRI")
		}
		p.pos++
	}
	if p.eof() {
		return "", p.errf("unterminated IRI")
	}
	iri := p.input[start:p.pos]
	p.pos++ // '>'
	if p.base != "" && !strings.Contains(iri, ":") {
		iri = p.base + iri
	}
	return iri, nil
}

// readPrefixName reads the "pfx:" of a prefix directive, returning the
// prefix without the colon.
func (p *parser) readPrefixName() (string, error) {
	start := p.pos
	for !p.eof() && p.peek() != ':' && !isWhitespace(p.peek()) {
		p.pos++
	}
	if p.eof() || p.peek() != ':' {
		return "", p.errf("expected ':' in prefix declaration")
	}
	name := p.input[start:p.pos]
	p.pos++ // ':'
	return name, nil
}

// readPrefixedIRI resolves a prefixed name like rdfs:label against the
// prefix table.
func (p *parser) readPrefixedIRI() (string, error) {
	start := p.pos
	for !p.eof() && p.peek() != ':' && isPrefixChar(p.peek()) {
		p.pos++
	}
	if p.eof() || p.peek() != ':' {
		return "", p.errf("expected prefixed name, got %q", p.tokenAround(start))
	}
	prefix := p.input[start:p.pos]
	p.pos++ // ':'

	localStart := p.pos
	for !p.eof() && isLocalNameChar(p.peek()) {
		p.pos++
	}
	// A local name cannot end with '.'; give it back as the statement
	// terminator.
	for p.pos > localStart && p.input[p.pos-1] == '.' {
		p.pos--
	}
	local := p.input[localStart:p.pos]

	ns, ok := p.prefixes[prefix]
	if !ok {
		return "", p.errf("undefined prefix %q", prefix)
	}
	return ns + local, nil
}

func (p *parser) readLiteral() (Term, error) {
	quote := p.peek()
	long := strings.HasPrefix(p.rest(), strings.Repeat(string(quote), 3))

	var value string
	var err error
	if long {
		value, err = p.readLongString(quote)
	} else {
		value, err = p.readShortString(quote)
	}
	if err != nil {
		return Term{}, err
	}

	term := Term{Kind: TermLiteral, Value: value, Datatype: XSDNamespace + "string"}
	switch {
	case p.accept('@'):
		start := p.pos
		for !p.eof() && (isAlphaNum(p.peek()) || p.peek() == '-') {
			p.pos++
		}
		term.Lang = p.input[start:p.pos]
	case strings.HasPrefix(p.rest(), "^^"):
		p.pos += 2
		var dt string
		if p.peek() == '<' {
			dt, err = p.readIRIRef()
		} else {
			dt, err = p.readPrefixedIRI()
		}
		if err != nil {
			return Term{}, err
		}
		term.Datatype = dt
	}
	return term, nil
}

func (p *parser) readShortString(quote byte) (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder
	for {
		if p.eof() {
			return "", p.errf("unterminated string literal")
		}
		c := p.peek()
		switch c {
		case quote:
			p.pos++
			return sb.String(), nil
		case '\n':
			return "", p.errf("newline in string literal")
		case '\\':
			r, err := p.readEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
}

func (p *parser) readLongString(quote byte) (string, error) {
	p.pos += 3
	closing := strings.Repeat(string(quote), 3)
	var sb strings.Builder
	for {
		if p.eof() {
			return "", p.errf("unterminated long string literal")
		}
		if strings.HasPrefix(p.rest(), closing) {
			p.pos += 3
			return sb.String(), nil
		}
		if p.peek() == '\\' {
			r, err := p.readEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
			continue
		}
		if p.peek() == '\n' {
			p.line++
		}
		sb.WriteByte(p.peek())
		p.pos++
	}
}

func (p *parser) readEscape() (rune, error) {
	p.pos++ // backslash
	if p.eof() {
		return 0, p.errf("dangling escape")
	}
	c := p.peek()
	p.pos++
	switch c {
	case 't':
		return '\t', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case '"':
		return '"', nil
	case '\'':
		return '\'', nil
	case '\\':
		return '\\', nil
	case 'u':
		return p.readHexEscape(4)
	case 'U':
		return p.readHexEscape(8)
	default:
		return 0, p.errf("invalid escape \\%c", c)
	}
}

func (p *parser) readHexEscape(n int) (rune, error) {
	if p.pos+n > len(p.input) {
		return 0, p.errf("truncated unicode escape")
	}
	v, err := strconv.ParseUint(p.input[p.pos:p.pos+n], 16, 32)
	if err != nil {
		return 0, p.errf("invalid unicode escape: %v", err)
	}
	p.pos += n
	if !utf8.ValidRune(rune(v)) {
		return 0, p.errf("invalid unicode code point %#x", v)
	}
	return rune(v), nil
}

func (p *parser) readNumber() (Term, error) {
	start := p.pos
	if p.peek() == '+' || p.peek() == '-' {
		p.pos++
	}
	decimal, exponent := false, false
	for !p.eof() {
		c := p.peek()
		switch {
		case isDigit(c):
			p.pos++
		case c == '.' && !decimal && !exponent && p.pos+1 < len(p.input) && isDigit(p.input[p.pos+1]):
			decimal = true
			p.pos++
		case (c == 'e' || c == 'E') && !exponent:
			exponent = true
			p.pos++
			if !p.eof() && (p.peek() == '+' || p.peek() == '-') {
				p.pos++
			}
		default:
			goto done
		}
	}
done:
	lexical := p.input[start:p.pos]
	dt := XSDNamespace + "integer"
	if exponent {
		dt = XSDNamespace + "double"
	} else if decimal {
		dt = XSDNamespace + "decimal"
	}
	return Term{Kind: TermLiteral, Value: lexical, Datatype: dt}, nil
}

func (p *parser) skipWhitespace() {
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '\n':
			p.line++
			p.pos++
		case isWhitespace(c):
			p.pos++
		case c == '#':
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

// hasKeyword reports whether the input at the cursor starts with kw followed
// by a token boundary.
func (p *parser) hasKeyword(kw string) bool {
	if !strings.HasPrefix(p.rest(), kw) {
		return false
	}
	if p.pos+len(kw) >= len(p.input) {
		return true
	}
	next := p.input[p.pos+len(kw)]
	return isWhitespace(next) || next == '<' || next == '\n' || next == '#'
}

// consumeKeyword skips the keyword validated by the last hasKeyword call.
func (p *parser) consumeKeyword() {
	for !p.eof() && !isWhitespace(p.peek()) && p.peek() != '<' && p.peek() != '#' {
		p.pos++
	}
}

func (p *parser) accept(c byte) bool {
	if !p.eof() && p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) rest() string { return p.input[p.pos:] }
func (p *parser) eof() bool    { return p.pos >= len(p.input) }

func (p *parser) tokenAround(start int) string {
	end := start
	for end < len(p.input) && !isWhitespace(p.input[end]) && p.input[end] != '\n' {
		end++
	}
	if end-start > 32 {
		end = start + 32
	}
	return p.input[start:end]
}

func isWhitespace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }

func isAlphaNum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || isDigit(c)
}

func isPrefixChar(c byte) bool {
	return isAlphaNum(c) || c == '-' || c == '_' || c == '.' || c >= 0x80
}

func isLocalNameChar(c byte) bool {
	return isAlphaNum(c) || c == '-' || c == '_' || c == '.' || c >= 0x80
}
