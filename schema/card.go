// Package schema defines the Schema Card — the canonical, versioned ontology
// description — and the deterministic merge that folds LLM proposals into it.
//
// The card is value-oriented: named tables joined by case-insensitive name
// keys, not pointers. That keeps serialization canonical and makes merge
// determinism achievable: two identical (prior, proposal) inputs produce
// byte-identical output, excluding the version timestamp.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/c360studio/ontorag/dto"
	"github.com/c360studio/ontorag/proposal"
	"github.com/c360studio/ontorag/vocabulary/onto"
)

// OriginInduced tags elements first introduced by an LLM proposal, as
// opposed to elements imported from a registered baseline ontology.
const OriginInduced = "induced"

// Class is a canonical ontology class.
type Class struct {
	Description string         `json:"description,omitempty"`
	Evidence    []dto.Evidence `json:"evidence,omitempty"`
	Name        string         `json:"name"`
	Origin      string         `json:"origin,omitempty"`
}

// DatatypeProperty is a canonical literal-valued property. Range is one of
// the canonical datatype names (string, integer, decimal, boolean, date,
// dateTime, anyURI).
type DatatypeProperty struct {
	Description string         `json:"description,omitempty"`
	Domain      string         `json:"domain"`
	Evidence    []dto.Evidence `json:"evidence,omitempty"`
	Name        string         `json:"name"`
	Origin      string         `json:"origin,omitempty"`
	Range       string         `json:"range"`
}

// ObjectProperty is a canonical entity-valued property. Domain and range
// name classes in the card.
type ObjectProperty struct {
	Description string         `json:"description,omitempty"`
	Domain      string         `json:"domain"`
	Evidence    []dto.Evidence `json:"evidence,omitempty"`
	Name        string         `json:"name"`
	Origin      string         `json:"origin,omitempty"`
	Range       string         `json:"range"`
}

// Event is a canonical event type.
type Event struct {
	Actors   []string       `json:"actors"`
	Effects  []string       `json:"effects"`
	Evidence []dto.Evidence `json:"evidence,omitempty"`
	Name     string         `json:"name"`
	Origin   string         `json:"origin,omitempty"`
}

// Alias records that a set of names refer to the same concept.
type Alias struct {
	Names     []string `json:"names"`
	Rationale string   `json:"rationale,omitempty"`
}

// Card is the canonical ontology artifact. Collections are kept sorted by
// lowercased name; aliases preserve insertion order.
type Card struct {
	Aliases            []Alias            `json:"aliases"`
	Classes            []Class            `json:"classes"`
	DatatypeProperties []DatatypeProperty `json:"datatype_properties"`
	Events             []Event            `json:"events"`
	Namespace          string             `json:"namespace"`
	ObjectProperties   []ObjectProperty   `json:"object_properties"`
	Version            string             `json:"version"`
	Warnings           []string           `json:"warnings"`
}

// NewCard returns an empty card for the given namespace. An empty namespace
// falls back to the OntoRAG default.
func NewCard(namespace string) *Card {
	if namespace == "" {
		namespace = onto.DefaultNamespace
	}
	c := &Card{Namespace: namespace}
	c.ensureSlices()
	return c
}

func (c *Card) ensureSlices() {
	if c.Aliases == nil {
		c.Aliases = []Alias{}
	}
	if c.Classes == nil {
		c.Classes = []Class{}
	}
	if c.DatatypeProperties == nil {
		c.DatatypeProperties = []DatatypeProperty{}
	}
	if c.Events == nil {
		c.Events = []Event{}
	}
	if c.ObjectProperties == nil {
		c.ObjectProperties = []ObjectProperty{}
	}
	if c.Warnings == nil {
		c.Warnings = []string{}
	}
	for i := range c.Events {
		if c.Events[i].Actors == nil {
			c.Events[i].Actors = []string{}
		}
		if c.Events[i].Effects == nil {
			c.Events[i].Effects = []string{}
		}
	}
}

// Class looks up a class by case-insensitive name.
func (c *Card) Class(name string) (*Class, bool) {
	k := proposal.Key(name)
	for i := range c.Classes {
		if proposal.Key(c.Classes[i].Name) == k {
			return &c.Classes[i], true
		}
	}
	return nil, false
}

// DatatypeProperty looks up a datatype property by case-insensitive name.
func (c *Card) DatatypeProperty(name string) (*DatatypeProperty, bool) {
	k := proposal.Key(name)
	for i := range c.DatatypeProperties {
		if proposal.Key(c.DatatypeProperties[i].Name) == k {
			return &c.DatatypeProperties[i], true
		}
	}
	return nil, false
}

// ObjectProperty looks up an object property by case-insensitive name.
func (c *Card) ObjectProperty(name string) (*ObjectProperty, bool) {
	k := proposal.Key(name)
	for i := range c.ObjectProperties {
		if proposal.Key(c.ObjectProperties[i].Name) == k {
			return &c.ObjectProperties[i], true
		}
	}
	return nil, false
}

// ClassIRI mints the IRI for a class name under the card namespace.
func (c *Card) ClassIRI(name string) string {
	return c.Namespace + name
}

// PropertyIRI mints the IRI for a property name under the card namespace.
func (c *Card) PropertyIRI(name string) string {
	return c.Namespace + name
}

// sortCollections establishes the canonical collection ordering: elements
// by lowercased name; aliases keep insertion order.
func (c *Card) sortCollections() {
	sort.SliceStable(c.Classes, func(i, j int) bool {
		return proposal.Key(c.Classes[i].Name) < proposal.Key(c.Classes[j].Name)
	})
	sort.SliceStable(c.DatatypeProperties, func(i, j int) bool {
		return proposal.Key(c.DatatypeProperties[i].Name) < proposal.Key(c.DatatypeProperties[j].Name)
	})
	sort.SliceStable(c.ObjectProperties, func(i, j int) bool {
		return proposal.Key(c.ObjectProperties[i].Name) < proposal.Key(c.ObjectProperties[j].Name)
	})
	sort.SliceStable(c.Events, func(i, j int) bool {
		return proposal.Key(c.Events[i].Name) < proposal.Key(c.Events[j].Name)
	})
}

// MarshalCanonical serializes the card as pretty-printed JSON with sorted
// keys and canonical collection ordering.
func (c *Card) MarshalCanonical() ([]byte, error) {
	c.ensureSlices()
	c.sortCollections()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema card: %w", err)
	}
	return append(data, '\n'), nil
}

// Load reads a schema card from a JSON file. A missing file is an error;
// use NewCard for an empty starting point.
func Load(path string) (*Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema card: %w", err)
	}

	var c Card
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode schema card: %w", err)
	}
	if c.Namespace == "" {
		c.Namespace = onto.DefaultNamespace
	}
	c.ensureSlices()
	return &c, nil
}

// Save writes the card canonically to a JSON file, creating parent
// directories as needed.
func (c *Card) Save(path string) error {
	data, err := c.MarshalCanonical()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create schema card directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write schema card: %w", err)
	}
	return nil
}
