package ttl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const foafSample = `
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
@prefix foaf: <http://xmlns.com/foaf/0.1/> .

foaf:Person a owl:Class ;
    rdfs:label "Person" ;
    rdfs:comment "A person." .

foaf:Organization a owl:Class ;
    rdfs:label "An organization such as a company." .

foaf:mbox a owl:DatatypeProperty ;
    rdfs:domain foaf:Person ;
    rdfs:range xsd:string ;
    rdfs:comment "A personal mailbox." .

foaf:member a owl:ObjectProperty ;
    rdfs:domain foaf:Organization ;
    rdfs:range foaf:Person .
`

func TestImportBaseline(t *testing.T) {
	frag, err := Import([]byte(foafSample), "foaf")
	require.NoError(t, err)

	require.Len(t, frag.Classes, 2)
	assert.Equal(t, "Organization", frag.Classes[0].Name)
	assert.Equal(t, "foaf", frag.Classes[0].Origin)
	// A label that differs from the local name is the description.
	assert.Equal(t, "An organization such as a company.", frag.Classes[0].Description)
	// A label equal to the local name falls through to the comment.
	assert.Equal(t, "A person.", frag.Classes[1].Description)

	require.Len(t, frag.DatatypeProperties, 1)
	dp := frag.DatatypeProperties[0]
	assert.Equal(t, "mbox", dp.Name)
	assert.Equal(t, "Person", dp.Domain)
	assert.Equal(t, "string", dp.Range)
	assert.Equal(t, "A personal mailbox.", dp.Description)

	require.Len(t, frag.ObjectProperties, 1)
	op := frag.ObjectProperties[0]
	assert.Equal(t, "member", op.Name)
	assert.Equal(t, "Organization", op.Domain)
	assert.Equal(t, "Person", op.Range)

	assert.Equal(t, "http://xmlns.com/foaf/0.1/", frag.Namespace)
	assert.Empty(t, frag.Warnings)
}

func TestImportSkipsNonIdentifierLocalNames(t *testing.T) {
	frag, err := Import([]byte(`
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix ex: <https://example.com/ns/> .

<https://example.com/ns/has-part> a owl:ObjectProperty .
ex:Person a owl:Class .
`), "ex")
	require.NoError(t, err)

	assert.Empty(t, frag.ObjectProperties)
	require.Len(t, frag.Classes, 1)
	assert.Contains(t, frag.Warnings,
		`skipped baseline term https://example.com/ns/has-part: local name "has-part" is not an identifier`)
}

func TestImportIgnoresBlankNodeSubjects(t *testing.T) {
	frag, err := Import([]byte(`
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix ex: <https://example.com/ns/> .

_:b0 a owl:Class .
ex:Person a owl:Class .
`), "ex")
	require.NoError(t, err)

	require.Len(t, frag.Classes, 1)
	assert.Equal(t, "Person", frag.Classes[0].Name)
}

func TestImportRdfsClass(t *testing.T) {
	frag, err := Import([]byte(`
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix ex: <https://example.com/ns/> .

ex:Thing a rdfs:Class .
`), "ex")
	require.NoError(t, err)
	require.Len(t, frag.Classes, 1)
	assert.Equal(t, "Thing", frag.Classes[0].Name)
}

func TestImportNonXSDRangeCoercesWithWarning(t *testing.T) {
	frag, err := Import([]byte(`
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
@prefix ex: <https://example.com/ns/> .

ex:score a owl:DatatypeProperty ;
    rdfs:range xsd:double .
`), "ex")
	require.NoError(t, err)
	require.Len(t, frag.DatatypeProperties, 1)
	assert.Equal(t, "string", frag.DatatypeProperties[0].Range)
	assert.Contains(t, frag.Warnings,
		`datatype property score: range "double" coerced to string`)
}

func TestImportMissingRangeDefaultsToString(t *testing.T) {
	frag, err := Import([]byte(`
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix ex: <https://example.com/ns/> .

ex:note a owl:DatatypeProperty .
`), "ex")
	require.NoError(t, err)
	require.Len(t, frag.DatatypeProperties, 1)
	assert.Equal(t, "string", frag.DatatypeProperties[0].Range)
	assert.Empty(t, frag.Warnings)
}

func TestImportDominantNamespace(t *testing.T) {
	frag, err := Import([]byte(`
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix a: <https://a.example/ns/> .
@prefix b: <https://b.example/ns/> .

a:One a owl:Class .
b:Two a owl:Class .
b:Three a owl:Class .
`), "mixed")
	require.NoError(t, err)
	assert.Equal(t, "https://b.example/ns/", frag.Namespace)
}

func TestFragmentProposalCarriesOrigin(t *testing.T) {
	frag, err := Import([]byte(foafSample), "foaf")
	require.NoError(t, err)

	prop := frag.Proposal()
	require.Len(t, prop.ProposedAdditions.Classes, 2)
	for _, c := range prop.ProposedAdditions.Classes {
		assert.Equal(t, "foaf", c.Origin)
	}
	require.Len(t, prop.ProposedAdditions.DatatypeProperties, 1)
	assert.Equal(t, "foaf", prop.ProposedAdditions.DatatypeProperties[0].Origin)
	assert.NotNil(t, prop.ProposedAdditions.Events)
}

func TestLocalName(t *testing.T) {
	tests := []struct {
		iri  string
		want string
	}{
		{"http://xmlns.com/foaf/0.1/Person", "Person"},
		{"http://www.w3.org/2002/07/owl#Class", "Class"},
		{"Plain", "Plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LocalName(tt.iri))
	}
}
