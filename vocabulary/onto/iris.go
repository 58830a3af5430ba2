// Package onto defines the OntoRAG namespace conventions.
//
// Unlike the fixed W3C vocabularies, the OntoRAG namespace is configurable:
// every Schema Card carries the namespace its class and property IRIs are
// minted under. The constants here are the defaults and the local names that
// OntoRAG itself mints.
package onto

// DefaultNamespace is the namespace used when a Schema Card does not
// declare one.
const DefaultNamespace = "http://ontorag.local/ns/"

// HasMentionLocal is the local name of the property linking an instance
// subject to its provenance mention nodes. The full IRI is minted under the
// Schema Card namespace.
const HasMentionLocal = "hasMention"

// ChunkScheme is the IRI scheme prefix for chunk identifiers. Chunk IRIs
// never resolve; they exist so mention nodes have a stable derivation target.
const ChunkScheme = "chunk:"

// ChunkIRI returns the IRI for a chunk id, e.g. "chunk:3f786850e38...".
func ChunkIRI(chunkID string) string {
	return ChunkScheme + chunkID
}
