// Package ttl renders Schema Cards and instance graphs as Turtle and parses
// OWL/RDFS Turtle back into card fragments for baseline import.
package ttl

import (
	"fmt"
	"strings"

	"github.com/c360studio/ontorag/schema"
)

// Well-known namespace IRIs used in emitted ontologies.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
)

// xsdRanges maps canonical datatype range names to XSD prefixed names.
var xsdRanges = map[string]string{
	schema.RangeString:   "xsd:string",
	schema.RangeInteger:  "xsd:integer",
	schema.RangeDecimal:  "xsd:decimal",
	schema.RangeBoolean:  "xsd:boolean",
	schema.RangeDate:     "xsd:date",
	schema.RangeDateTime: "xsd:dateTime",
	schema.RangeAnyURI:   "xsd:anyURI",
}

// XSDRange returns the prefixed XSD name for a canonical datatype range,
// falling back to xsd:string.
func XSDRange(canonical string) string {
	if x, ok := xsdRanges[canonical]; ok {
		return x
	}
	return "xsd:string"
}

// XSDRangeIRI returns the full XSD datatype IRI for a canonical range.
func XSDRangeIRI(canonical string) string {
	return XSDNamespace + strings.TrimPrefix(XSDRange(canonical), "xsd:")
}

// Emit renders a Schema Card as canonical Turtle: fixed prefix block, then
// one declaration per class and property, sorted the way the card sorts.
// Importing the output reproduces the card's names and ranges.
func Emit(card *schema.Card) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("@prefix onto: <%s> .\n", card.Namespace))
	sb.WriteString(fmt.Sprintf("@prefix owl: <%s> .\n", OWLNamespace))
	sb.WriteString(fmt.Sprintf("@prefix rdfs: <%s> .\n", RDFSNamespace))
	sb.WriteString(fmt.Sprintf("@prefix xsd: <%s> .\n", XSDNamespace))
	sb.WriteString("\n")

	for _, c := range card.Classes {
		writeSubject(&sb, card.ClassIRI(c.Name), "owl:Class", []statement{
			{"rdfs:label", quoteLiteral(c.Name)},
			{"rdfs:comment", optionalLiteral(c.Description)},
		})
	}

	for _, p := range card.DatatypeProperties {
		writeSubject(&sb, card.PropertyIRI(p.Name), "owl:DatatypeProperty", []statement{
			{"rdfs:label", quoteLiteral(p.Name)},
			{"rdfs:domain", optionalIRI(card, p.Domain)},
			{"rdfs:range", XSDRange(p.Range)},
			{"rdfs:comment", optionalLiteral(p.Description)},
		})
	}

	for _, p := range card.ObjectProperties {
		writeSubject(&sb, card.PropertyIRI(p.Name), "owl:ObjectProperty", []statement{
			{"rdfs:label", quoteLiteral(p.Name)},
			{"rdfs:domain", optionalIRI(card, p.Domain)},
			{"rdfs:range", optionalIRI(card, p.Range)},
			{"rdfs:comment", optionalLiteral(p.Description)},
		})
	}

	return sb.String()
}

// statement is one predicate/object pair inside a subject block. An empty
// object drops the statement.
type statement struct {
	predicate string
	object    string
}

func writeSubject(sb *strings.Builder, iri, typeTerm string, stmts []statement) {
	kept := stmts[:0]
	for _, s := range stmts {
		if s.object != "" {
			kept = append(kept, s)
		}
	}

	sb.WriteString(fmt.Sprintf("<%s>\n", iri))
	sb.WriteString(fmt.Sprintf("    a %s", typeTerm))
	for _, s := range kept {
		sb.WriteString(" ;\n")
		sb.WriteString(fmt.Sprintf("    %s %s", s.predicate, s.object))
	}
	sb.WriteString(" .\n\n")
}

func optionalLiteral(s string) string {
	if s == "" {
		return ""
	}
	return quoteLiteral(s)
}

func optionalIRI(card *schema.Card, name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("<%s>", card.Namespace+name)
}

func quoteLiteral(s string) string {
	return fmt.Sprintf("\"%s\"", EscapeString(s))
}

// EscapeString escapes special characters for Turtle string literals.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
