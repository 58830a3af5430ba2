package instance

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/c360studio/ontorag/schema"
	"github.com/c360studio/ontorag/ttl"
	"github.com/c360studio/ontorag/vocabulary/onto"
	"github.com/c360studio/ontorag/vocabulary/prov"
)

// Result is a materialized instance graph: canonical Turtle plus the
// warnings raised along the way.
type Result struct {
	Turtle   string
	Warnings []string
}

// subject is one instance's triples, accumulated before emission.
type subject struct {
	iri      string
	typeIRI  string
	triples  []renderedTriple
	mentions []mention
}

type renderedTriple struct {
	predicate string // rendered Turtle term
	object    string // rendered Turtle term
}

type mention struct {
	label   string
	chunkID string
	quote   string
}

// Materialize turns per-chunk instance proposals into a canonical Turtle
// graph governed by the card. Instances of unknown classes are skipped with
// a warning; literals are cast to the declared XSD type with string fallback;
// object facts resolve through local ids; every evidence record becomes a
// blank mention node carrying its chunk derivation and quote.
func Materialize(chunks []ChunkInstances, card *schema.Card) *Result {
	warnings := &warningList{}
	for _, ci := range chunks {
		for _, w := range ci.Warnings {
			warnings.add(w)
		}
	}

	// First pass: mint IRIs for every instance with a known class, so
	// object facts can reference instances from any chunk. Local ids are
	// unique; a repeated id is a generation fault, so only the first
	// occurrence survives.
	iriByLocalID := map[string]string{}
	type accepted struct {
		prop Proposal
		iri  string
		cls  *schema.Class
	}
	var kept []accepted

	for _, ci := range chunks {
		for _, p := range ci.Instances {
			cls, ok := card.Class(p.Class)
			if !ok {
				warnings.add(fmt.Sprintf("instance %s: unknown class %s, instance skipped", p.LocalID, p.Class))
				continue
			}
			if _, dup := iriByLocalID[p.LocalID]; dup {
				warnings.add(fmt.Sprintf("instance %s: duplicate local id, instance skipped", p.LocalID))
				continue
			}
			iri := card.Namespace + cls.Name + "/" + p.LocalID
			iriByLocalID[p.LocalID] = iri
			kept = append(kept, accepted{prop: p, iri: iri, cls: cls})
		}
	}

	// Second pass: build each subject's triples.
	mentionSeq := 0
	subjects := make([]*subject, 0, len(kept))
	for _, a := range kept {
		s := &subject{
			iri:     a.iri,
			typeIRI: card.Namespace + a.cls.Name,
		}

		for _, name := range sortedKeys(a.prop.DatatypeValues) {
			value := a.prop.DatatypeValues[name]
			predicate, object := datatypeFact(card, a.prop.LocalID, name, value, warnings)
			s.triples = append(s.triples, renderedTriple{predicate: predicate, object: object})
		}

		for _, name := range sortedKeys(a.prop.ObjectValues) {
			target := a.prop.ObjectValues[name]
			targetIRI, ok := iriByLocalID[target]
			if !ok {
				warnings.add(fmt.Sprintf("instance %s: object property %s references unresolved local id %s, triple skipped",
					a.prop.LocalID, name, target))
				continue
			}
			s.triples = append(s.triples, renderedTriple{
				predicate: iriTerm(card.Namespace + objectPropertyName(card, name)),
				object:    iriTerm(targetIRI),
			})
		}

		for _, ev := range a.prop.Evidence {
			s.mentions = append(s.mentions, mention{
				label:   fmt.Sprintf("m%d", mentionSeq),
				chunkID: ev.ChunkID,
				quote:   ev.Quote,
			})
			mentionSeq++
		}

		subjects = append(subjects, s)
	}

	sort.SliceStable(subjects, func(i, j int) bool { return subjects[i].iri < subjects[j].iri })

	return &Result{
		Turtle:   render(subjects, card.Namespace),
		Warnings: warnings.list(),
	}
}

// datatypeFact renders one literal fact. Unknown properties and uncastable
// values fall back to xsd:string with a warning; the fact is never dropped.
func datatypeFact(card *schema.Card, localID, name string, value any, warnings *warningList) (string, string) {
	lexical := lexicalForm(value)

	dp, known := card.DatatypeProperty(name)
	if !known {
		warnings.add(fmt.Sprintf("instance %s: unknown datatype property %s, emitted as xsd:string", localID, name))
		return iriTerm(card.Namespace + name), stringLiteral(lexical)
	}

	cast, ok := castLiteral(lexical, dp.Range)
	if !ok {
		warnings.add(fmt.Sprintf("instance %s: value %q is not a valid %s, emitted as xsd:string",
			localID, lexical, dp.Range))
		return iriTerm(card.Namespace + dp.Name), stringLiteral(lexical)
	}
	return iriTerm(card.Namespace + dp.Name), cast
}

// castLiteral renders a lexical value typed by a canonical range. The bool
// result reports whether the value parses as that range.
func castLiteral(lexical string, canonicalRange string) (string, bool) {
	switch canonicalRange {
	case schema.RangeString:
		return stringLiteral(lexical), true
	case schema.RangeInteger:
		if _, err := strconv.ParseInt(strings.TrimSpace(lexical), 10, 64); err != nil {
			return "", false
		}
		return typedLiteral(strings.TrimSpace(lexical), canonicalRange), true
	case schema.RangeDecimal:
		if _, err := strconv.ParseFloat(strings.TrimSpace(lexical), 64); err != nil {
			return "", false
		}
		return typedLiteral(strings.TrimSpace(lexical), canonicalRange), true
	case schema.RangeBoolean:
		switch strings.ToLower(strings.TrimSpace(lexical)) {
		case "true":
			return typedLiteral("true", canonicalRange), true
		case "false":
			return typedLiteral("false", canonicalRange), true
		}
		return "", false
	case schema.RangeDate:
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(lexical)); err != nil {
			return "", false
		}
		return typedLiteral(strings.TrimSpace(lexical), canonicalRange), true
	case schema.RangeDateTime:
		if _, err := time.Parse(time.RFC3339, strings.TrimSpace(lexical)); err != nil {
			return "", false
		}
		return typedLiteral(strings.TrimSpace(lexical), canonicalRange), true
	case schema.RangeAnyURI:
		trimmed := strings.TrimSpace(lexical)
		if trimmed == "" || strings.ContainsAny(trimmed, " \t\n") {
			return "", false
		}
		return typedLiteral(trimmed, canonicalRange), true
	default:
		return stringLiteral(lexical), true
	}
}

// lexicalForm flattens a decoded JSON value to its lexical string. Numbers
// decoded with UseNumber keep their original digits.
func lexicalForm(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// objectPropertyName returns the card's canonical casing for an object
// property, or the given name when the card has no such property.
func objectPropertyName(card *schema.Card, name string) string {
	if op, ok := card.ObjectProperty(name); ok {
		return op.Name
	}
	return name
}

// render serializes the subjects as canonical Turtle: fixed prefix block,
// subjects in sorted order, the type triple first, remaining triples sorted
// by predicate then object, mention nodes directly after their subject.
func render(subjects []*subject, namespace string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("@prefix onto: <%s> .\n", namespace))
	sb.WriteString(fmt.Sprintf("@prefix prov: <%s> .\n", prov.Namespace))
	sb.WriteString(fmt.Sprintf("@prefix xsd: <%s> .\n", ttl.XSDNamespace))
	sb.WriteString("\n")

	for _, s := range subjects {
		triples := append([]renderedTriple(nil), s.triples...)
		for _, m := range s.mentions {
			triples = append(triples, renderedTriple{
				predicate: iriTerm(namespace + onto.HasMentionLocal),
				object:    "_:" + m.label,
			})
		}
		sort.SliceStable(triples, func(i, j int) bool {
			if triples[i].predicate != triples[j].predicate {
				return triples[i].predicate < triples[j].predicate
			}
			return triples[i].object < triples[j].object
		})

		sb.WriteString(fmt.Sprintf("<%s>\n", s.iri))
		sb.WriteString(fmt.Sprintf("    a %s", iriTerm(s.typeIRI)))
		for _, t := range triples {
			sb.WriteString(" ;\n")
			sb.WriteString(fmt.Sprintf("    %s %s", t.predicate, t.object))
		}
		sb.WriteString(" .\n\n")

		for _, m := range s.mentions {
			sb.WriteString(fmt.Sprintf("_:%s\n", m.label))
			sb.WriteString("    a prov:Entity ;\n")
			sb.WriteString(fmt.Sprintf("    prov:value %s ;\n", stringLiteral(m.quote)))
			sb.WriteString(fmt.Sprintf("    prov:wasDerivedFrom <%s> .\n\n", onto.ChunkIRI(m.chunkID)))
		}
	}

	return sb.String()
}

func iriTerm(iri string) string {
	return fmt.Sprintf("<%s>", iri)
}

func stringLiteral(s string) string {
	return fmt.Sprintf("\"%s\"^^xsd:string", ttl.EscapeString(s))
}

func typedLiteral(lexical, canonicalRange string) string {
	return fmt.Sprintf("\"%s\"^^%s", ttl.EscapeString(lexical), ttl.XSDRange(canonicalRange))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type warningList struct {
	seen  map[string]struct{}
	order []string
}

func (w *warningList) add(s string) {
	if w.seen == nil {
		w.seen = map[string]struct{}{}
	}
	if _, ok := w.seen[s]; ok {
		return
	}
	w.seen[s] = struct{}{}
	w.order = append(w.order, s)
}

func (w *warningList) list() []string {
	if w.order == nil {
		return []string{}
	}
	return w.order
}
