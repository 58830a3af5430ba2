// Package prov defines IRI constants for the W3C PROV-O vocabulary.
//
// Only the terms used by instance materialization are declared here:
// mention nodes are typed prov:Entity, linked to their source chunk via
// prov:wasDerivedFrom, and carry the evidence quote as prov:value.
package prov

// Namespace is the base IRI prefix for PROV-O terms.
const Namespace = "http://www.w3.org/ns/prov#"

const (
	// Entity is the class of provenance entities. Mention nodes are
	// instances of this class.
	Entity = Namespace + "Entity"

	// WasDerivedFrom links a mention node to the chunk it was derived from.
	WasDerivedFrom = Namespace + "wasDerivedFrom"

	// Value carries the verbatim evidence quote on a mention node.
	Value = Namespace + "value"
)
