package schema

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontorag/vocabulary/onto"
)

func TestNewCardDefaults(t *testing.T) {
	card := NewCard("")
	assert.Equal(t, onto.DefaultNamespace, card.Namespace)
	assert.NotNil(t, card.Classes)
	assert.NotNil(t, card.Aliases)
	assert.NotNil(t, card.Warnings)

	custom := NewCard("https://example.com/ns/")
	assert.Equal(t, "https://example.com/ns/", custom.Namespace)
}

func TestCaseInsensitiveLookups(t *testing.T) {
	card := NewCard("")
	card.Classes = []Class{{Name: "Person"}}
	card.DatatypeProperties = []DatatypeProperty{{Name: "email", Domain: "Person", Range: "string"}}
	card.ObjectProperties = []ObjectProperty{{Name: "worksFor", Domain: "Person", Range: "Organization"}}

	cls, ok := card.Class("PERSON")
	require.True(t, ok)
	assert.Equal(t, "Person", cls.Name)

	_, ok = card.Class("nope")
	assert.False(t, ok)

	dp, ok := card.DatatypeProperty("Email")
	require.True(t, ok)
	assert.Equal(t, "email", dp.Name)

	op, ok := card.ObjectProperty("worksfor")
	require.True(t, ok)
	assert.Equal(t, "worksFor", op.Name)
}

func TestIRIs(t *testing.T) {
	card := NewCard("https://example.com/ns/")
	assert.Equal(t, "https://example.com/ns/Person", card.ClassIRI("Person"))
	assert.Equal(t, "https://example.com/ns/email", card.PropertyIRI("email"))
}

func TestMarshalCanonicalFieldOrder(t *testing.T) {
	card := NewCard("")
	card.Classes = []Class{{Name: "Zebra"}, {Name: "Ant"}}

	data, err := card.MarshalCanonical()
	require.NoError(t, err)
	text := string(data)

	// Top-level keys appear alphabetically.
	keys := []string{`"aliases"`, `"classes"`, `"datatype_properties"`, `"events"`, `"namespace"`, `"object_properties"`, `"version"`, `"warnings"`}
	last := -1
	for _, k := range keys {
		idx := strings.Index(text, k)
		require.GreaterOrEqual(t, idx, 0, "missing key %s", k)
		assert.Greater(t, idx, last, "key %s out of order", k)
		last = idx
	}

	// Collections are sorted by lowercased name.
	assert.Less(t, strings.Index(text, "Ant"), strings.Index(text, "Zebra"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards", "schema_card.json")

	card := NewCard("https://example.com/ns/")
	card.Version = "2026-03-01T12:00:00Z"
	card.Classes = []Class{{Name: "Person", Description: "a person", Origin: OriginInduced}}

	require.NoError(t, card.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, card.Namespace, loaded.Namespace)
	assert.Equal(t, card.Version, loaded.Version)
	assert.Equal(t, card.Classes, loaded.Classes)

	// Re-saving the loaded card is byte-stable.
	first, err := card.MarshalCanonical()
	require.NoError(t, err)
	second, err := loaded.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestNormalizeRange(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		coerced bool
	}{
		{"string", "string", false},
		{"integer", "integer", false},
		{"dateTime", "dateTime", false},
		{"datetime", "dateTime", false},
		{"anyURI", "anyURI", false},
		{"url", "anyURI", false},
		{"", "string", true},
		{"whatever", "string", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, coerced := NormalizeRange(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.coerced, coerced)
		})
	}
}

func TestIsCanonicalRange(t *testing.T) {
	for _, r := range []string{"string", "integer", "decimal", "boolean", "date", "dateTime", "anyURI"} {
		assert.True(t, IsCanonicalRange(r), r)
	}
	assert.False(t, IsCanonicalRange("datetime"))
	assert.False(t, IsCanonicalRange("text"))
}
