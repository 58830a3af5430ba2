package ttl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontorag/schema"
)

func sampleCard() *schema.Card {
	card := schema.NewCard("https://example.com/ns/")
	card.Classes = []schema.Class{
		{Name: "Organization"},
		{Name: "Person", Description: "a person known to the system"},
	}
	card.DatatypeProperties = []schema.DatatypeProperty{
		{Name: "email", Domain: "Person", Range: "string"},
		{Name: "headcount", Domain: "Organization", Range: "integer"},
	}
	card.ObjectProperties = []schema.ObjectProperty{
		{Name: "worksFor", Domain: "Person", Range: "Organization", Description: "employment link"},
	}
	return card
}

func TestEmitPrefixes(t *testing.T) {
	out := Emit(sampleCard())

	assert.True(t, strings.HasPrefix(out, "@prefix onto: <https://example.com/ns/> .\n"))
	assert.Contains(t, out, "@prefix owl: <"+OWLNamespace+"> .")
	assert.Contains(t, out, "@prefix rdfs: <"+RDFSNamespace+"> .")
	assert.Contains(t, out, "@prefix xsd: <"+XSDNamespace+"> .")
}

func TestEmitClassDeclaration(t *testing.T) {
	out := Emit(sampleCard())

	assert.Contains(t, out, "<https://example.com/ns/Person>\n    a owl:Class ;\n    rdfs:label \"Person\" ;\n    rdfs:comment \"a person known to the system\" .")
	// No description on Organization: the comment statement is dropped.
	assert.Contains(t, out, "<https://example.com/ns/Organization>\n    a owl:Class ;\n    rdfs:label \"Organization\" .")
}

func TestEmitDatatypeProperty(t *testing.T) {
	out := Emit(sampleCard())

	assert.Contains(t, out, "<https://example.com/ns/email>\n    a owl:DatatypeProperty ;\n    rdfs:label \"email\" ;\n    rdfs:domain <https://example.com/ns/Person> ;\n    rdfs:range xsd:string .")
	assert.Contains(t, out, "rdfs:range xsd:integer")
}

func TestEmitObjectProperty(t *testing.T) {
	out := Emit(sampleCard())

	assert.Contains(t, out, "a owl:ObjectProperty")
	assert.Contains(t, out, "rdfs:domain <https://example.com/ns/Person>")
	assert.Contains(t, out, "rdfs:range <https://example.com/ns/Organization>")
}

func TestEmitEscapesLiterals(t *testing.T) {
	card := schema.NewCard("https://example.com/ns/")
	card.Classes = []schema.Class{
		{Name: "Quote", Description: "says \"hi\"\nand more\tstuff\\done"},
	}

	out := Emit(card)
	assert.Contains(t, out, `says \"hi\"\nand more\tstuff\\done`)
}

func TestEmitIsDeterministic(t *testing.T) {
	a := Emit(sampleCard())
	b := Emit(sampleCard())
	assert.Equal(t, a, b)
}

func TestEmitImportRoundTrip(t *testing.T) {
	card := sampleCard()
	frag, err := Import([]byte(Emit(card)), "roundtrip")
	require.NoError(t, err)

	require.Len(t, frag.Classes, 2)
	assert.Equal(t, "Organization", frag.Classes[0].Name)
	assert.Equal(t, "Person", frag.Classes[1].Name)
	assert.Equal(t, "a person known to the system", frag.Classes[1].Description)

	require.Len(t, frag.DatatypeProperties, 2)
	assert.Equal(t, "email", frag.DatatypeProperties[0].Name)
	assert.Equal(t, "Person", frag.DatatypeProperties[0].Domain)
	assert.Equal(t, "string", frag.DatatypeProperties[0].Range)
	assert.Equal(t, "integer", frag.DatatypeProperties[1].Range)

	require.Len(t, frag.ObjectProperties, 1)
	assert.Equal(t, "worksFor", frag.ObjectProperties[0].Name)
	assert.Equal(t, "Organization", frag.ObjectProperties[0].Range)

	assert.Equal(t, "https://example.com/ns/", frag.Namespace)
	assert.Empty(t, frag.Warnings)
}

func TestXSDRange(t *testing.T) {
	assert.Equal(t, "xsd:dateTime", XSDRange("dateTime"))
	assert.Equal(t, "xsd:string", XSDRange("unknown"))
	assert.Equal(t, XSDNamespace+"anyURI", XSDRangeIRI("anyURI"))
}
