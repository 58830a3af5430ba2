package ttl

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/c360studio/ontorag/proposal"
	"github.com/c360studio/ontorag/schema"
)

// Class-declaring and property-declaring type IRIs the importer recognizes.
const (
	owlClassIRI            = OWLNamespace + "Class"
	rdfsClassIRI           = RDFSNamespace + "Class"
	owlObjectPropertyIRI   = OWLNamespace + "ObjectProperty"
	owlDatatypePropertyIRI = OWLNamespace + "DatatypeProperty"
	rdfsLabelIRI           = RDFSNamespace + "label"
	rdfsCommentIRI         = RDFSNamespace + "comment"
	rdfsDomainIRI          = RDFSNamespace + "domain"
	rdfsRangeIRI           = RDFSNamespace + "range"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Fragment is the Schema Card contribution of one imported baseline: the
// declared elements, all tagged with the baseline's catalog key as origin,
// plus the auto-detected namespace.
type Fragment struct {
	Classes            []schema.Class
	DatatypeProperties []schema.DatatypeProperty
	ObjectProperties   []schema.ObjectProperty
	Namespace          string
	Warnings           []string
}

// Import parses an OWL/RDFS Turtle document into a card fragment. Classes
// come from `a owl:Class` / `a rdfs:Class` subjects (blank nodes excluded),
// properties from `a owl:ObjectProperty` / `a owl:DatatypeProperty`. Local
// names that are not identifiers are skipped with a warning. The origin is
// stamped on every imported element.
func Import(data []byte, origin string) (*Fragment, error) {
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse baseline turtle: %w", err)
	}

	f := &Fragment{
		Classes:            []schema.Class{},
		DatatypeProperties: []schema.DatatypeProperty{},
		ObjectProperties:   []schema.ObjectProperty{},
		Warnings:           []string{},
	}
	prefixCounts := map[string]int{}

	for _, iri := range typedSubjects(g, owlClassIRI, rdfsClassIRI) {
		local, ok := acceptLocalName(f, iri)
		if !ok {
			continue
		}
		prefixCounts[namespaceOf(iri)]++
		f.Classes = append(f.Classes, schema.Class{
			Name:        local,
			Description: description(g, iri, local),
			Origin:      origin,
		})
	}

	for _, iri := range typedSubjects(g, owlDatatypePropertyIRI) {
		local, ok := acceptLocalName(f, iri)
		if !ok {
			continue
		}
		prefixCounts[namespaceOf(iri)]++
		f.DatatypeProperties = append(f.DatatypeProperties, schema.DatatypeProperty{
			Name:        local,
			Description: description(g, iri, local),
			Domain:      firstLocalName(g, iri, rdfsDomainIRI),
			Range:       importRange(f, g, iri, local),
			Origin:      origin,
		})
	}

	for _, iri := range typedSubjects(g, owlObjectPropertyIRI) {
		local, ok := acceptLocalName(f, iri)
		if !ok {
			continue
		}
		prefixCounts[namespaceOf(iri)]++
		f.ObjectProperties = append(f.ObjectProperties, schema.ObjectProperty{
			Name:        local,
			Description: description(g, iri, local),
			Domain:      firstLocalName(g, iri, rdfsDomainIRI),
			Range:       firstLocalName(g, iri, rdfsRangeIRI),
			Origin:      origin,
		})
	}

	f.Namespace = dominantNamespace(prefixCounts)
	f.sort()
	return f, nil
}

// Proposal renders the fragment as a document proposal so the Schema Card
// merger applies its usual rules: origin immutability keeps the baseline tag
// on elements the baseline introduced.
func (f *Fragment) Proposal() *proposal.DocumentProposal {
	p := &proposal.DocumentProposal{
		ProposedAdditions: proposal.Additions{
			Classes:            []proposal.Class{},
			DatatypeProperties: []proposal.DatatypeProperty{},
			ObjectProperties:   []proposal.ObjectProperty{},
			Events:             []proposal.Event{},
		},
		AliasOrMergeSuggestions: []proposal.Alias{},
		ReuseInsteadOfCreate:    []proposal.ReuseHint{},
		Warnings:                append([]string{}, f.Warnings...),
	}
	for _, c := range f.Classes {
		p.ProposedAdditions.Classes = append(p.ProposedAdditions.Classes, proposal.Class{
			Name:        c.Name,
			Description: c.Description,
			Origin:      c.Origin,
		})
	}
	for _, dp := range f.DatatypeProperties {
		p.ProposedAdditions.DatatypeProperties = append(p.ProposedAdditions.DatatypeProperties, proposal.DatatypeProperty{
			Name:        dp.Name,
			Description: dp.Description,
			Domain:      dp.Domain,
			Range:       dp.Range,
			Origin:      dp.Origin,
		})
	}
	for _, op := range f.ObjectProperties {
		p.ProposedAdditions.ObjectProperties = append(p.ProposedAdditions.ObjectProperties, proposal.ObjectProperty{
			Name:        op.Name,
			Description: op.Description,
			Domain:      op.Domain,
			Range:       op.Range,
			Origin:      op.Origin,
		})
	}
	return p
}

// typedSubjects returns the IRI subjects declared with any of the given
// rdf:type objects, deduplicated, in first-seen order.
func typedSubjects(g *Graph, typeIRIs ...string) []string {
	wanted := map[string]struct{}{}
	for _, t := range typeIRIs {
		wanted[t] = struct{}{}
	}

	seen := map[string]struct{}{}
	var out []string
	for _, t := range g.Triples {
		if t.Subject.Kind != TermIRI || t.Predicate.Value != rdfTypeIRI || t.Object.Kind != TermIRI {
			continue
		}
		if _, ok := wanted[t.Object.Value]; !ok {
			continue
		}
		if _, ok := seen[t.Subject.Value]; ok {
			continue
		}
		seen[t.Subject.Value] = struct{}{}
		out = append(out, t.Subject.Value)
	}
	return out
}

func acceptLocalName(f *Fragment, iri string) (string, bool) {
	local := LocalName(iri)
	if !identifierRe.MatchString(local) {
		f.Warnings = append(f.Warnings, fmt.Sprintf("skipped baseline term %s: local name %q is not an identifier", iri, local))
		return "", false
	}
	return local, true
}

// LocalName extracts the IRI fragment after '#', or after the last '/'.
func LocalName(iri string) string {
	if i := strings.Index(iri, "#"); i >= 0 {
		return iri[i+1:]
	}
	if i := strings.LastIndex(iri, "/"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}

// namespaceOf is the complement of LocalName: the IRI up to and including
// the '#' or last '/'.
func namespaceOf(iri string) string {
	return strings.TrimSuffix(iri, LocalName(iri))
}

// description picks rdfs:label, falling back to rdfs:comment. A label equal
// to the local name is a display name, not a description, and falls through.
func description(g *Graph, iri, local string) string {
	if label := firstLiteral(g, iri, rdfsLabelIRI); label != "" && label != local {
		return label
	}
	return firstLiteral(g, iri, rdfsCommentIRI)
}

func firstLiteral(g *Graph, subject, predicate string) string {
	for _, o := range g.ObjectsOf(subject, predicate) {
		if o.Kind == TermLiteral {
			return o.Value
		}
	}
	return ""
}

func firstLocalName(g *Graph, subject, predicate string) string {
	for _, o := range g.ObjectsOf(subject, predicate) {
		if o.Kind == TermIRI {
			return LocalName(o.Value)
		}
	}
	return ""
}

// importRange maps a datatype property's declared XSD range to a canonical
// range name, warning when the range coerces to string.
func importRange(f *Fragment, g *Graph, iri, local string) string {
	declared := firstLocalName(g, iri, rdfsRangeIRI)
	if declared == "" {
		return schema.RangeString
	}
	rng, coerced := schema.NormalizeRange(declared)
	if coerced {
		f.Warnings = append(f.Warnings, fmt.Sprintf("datatype property %s: range %q coerced to string", local, declared))
	}
	return rng
}

// dominantNamespace picks the most frequent namespace among declared terms,
// breaking ties lexicographically.
func dominantNamespace(counts map[string]int) string {
	best, bestCount := "", 0
	for ns, n := range counts {
		if n > bestCount || (n == bestCount && (best == "" || ns < best)) {
			best, bestCount = ns, n
		}
	}
	return best
}

func (f *Fragment) sort() {
	sort.Slice(f.Classes, func(i, j int) bool {
		return proposal.Key(f.Classes[i].Name) < proposal.Key(f.Classes[j].Name)
	})
	sort.Slice(f.DatatypeProperties, func(i, j int) bool {
		return proposal.Key(f.DatatypeProperties[i].Name) < proposal.Key(f.DatatypeProperties[j].Name)
	})
	sort.Slice(f.ObjectProperties, func(i, j int) bool {
		return proposal.Key(f.ObjectProperties[i].Name) < proposal.Key(f.ObjectProperties[j].Name)
	})
}
