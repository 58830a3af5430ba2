package schema

import (
	"fmt"
	"time"

	"github.com/c360studio/ontorag/dto"
	"github.com/c360studio/ontorag/proposal"
)

// Merge folds a document proposal into a prior card and returns the next
// card. The prior card is never mutated. Version is set from the wall clock;
// everything else is a pure function of the inputs.
func Merge(prior *Card, prop *proposal.DocumentProposal) *Card {
	return MergeAt(prior, prop, time.Now().UTC())
}

// MergeAt is Merge with an explicit clock, for reproducible tests.
func MergeAt(prior *Card, prop *proposal.DocumentProposal, now time.Time) *Card {
	next := prior.clone()
	next.ensureSlices()

	warnings := newWarningAccumulator(next.Warnings)
	for _, w := range prop.Warnings {
		warnings.add(w)
	}

	mergeClasses(next, prop.ProposedAdditions.Classes)
	mergeDatatypeProperties(next, prop.ProposedAdditions.DatatypeProperties, warnings)
	mergeObjectProperties(next, prop.ProposedAdditions.ObjectProperties, warnings)
	mergeEvents(next, prop.ProposedAdditions.Events, warnings)
	mergeAliases(next, prop)

	resolveReferences(next, warnings)

	next.Warnings = warnings.list()
	next.sortCollections()
	next.Version = nextVersion(prior.Version, now)
	return next
}

// nextVersion formats now as ISO-8601 UTC, advancing past the prior version
// so the version is strictly increasing across merges.
func nextVersion(priorVersion string, now time.Time) string {
	v := now.UTC().Truncate(time.Second).Format(time.RFC3339)
	if priorVersion == "" || v > priorVersion {
		return v
	}
	if prev, err := time.Parse(time.RFC3339, priorVersion); err == nil {
		return prev.UTC().Add(time.Second).Format(time.RFC3339)
	}
	return v
}

func mergeClasses(card *Card, proposed []proposal.Class) {
	for _, p := range proposed {
		existing, ok := card.Class(p.Name)
		if !ok {
			card.Classes = append(card.Classes, Class{
				Name:        p.Name,
				Description: p.Description,
				Origin:      originOrInduced(p.Origin),
				Evidence:    proposal.UnionEvidence(nil, p.Evidence),
			})
			continue
		}
		existing.Evidence = proposal.UnionEvidence(existing.Evidence, p.Evidence)
		if len(p.Description) > len(existing.Description) {
			existing.Description = p.Description
		}
		if existing.Origin == "" && p.Origin != "" {
			existing.Origin = p.Origin
		}
	}
}

func mergeDatatypeProperties(card *Card, proposed []proposal.DatatypeProperty, warnings *warningAccumulator) {
	// Prior entries from hand-edited cards may carry non-canonical ranges.
	// Normalize them first so a prior "int" and a proposed "integer" compare
	// equal instead of raising a divergence warning.
	for i := range card.DatatypeProperties {
		dp := &card.DatatypeProperties[i]
		rng, coerced := NormalizeRange(dp.Range)
		if coerced {
			warnings.add(fmt.Sprintf("datatype property %s: range %q coerced to string", dp.Name, dp.Range))
		}
		dp.Range = rng
	}

	for _, p := range proposed {
		rng, coerced := NormalizeRange(p.Range)
		if coerced {
			warnings.add(fmt.Sprintf("datatype property %s: range %q coerced to string", p.Name, p.Range))
		}

		existing, ok := card.DatatypeProperty(p.Name)
		if !ok {
			card.DatatypeProperties = append(card.DatatypeProperties, DatatypeProperty{
				Name:        p.Name,
				Domain:      p.Domain,
				Range:       rng,
				Description: p.Description,
				Origin:      originOrInduced(p.Origin),
				Evidence:    proposal.UnionEvidence(nil, p.Evidence),
			})
			continue
		}
		existing.Evidence = proposal.UnionEvidence(existing.Evidence, p.Evidence)
		if len(p.Description) > len(existing.Description) {
			existing.Description = p.Description
		}
		if existing.Origin == "" && p.Origin != "" {
			existing.Origin = p.Origin
		}
		if proposal.Key(p.Domain) != proposal.Key(existing.Domain) || rng != existing.Range {
			warnings.add(fmt.Sprintf("datatype property %s: diverging domain/range, kept %s/%s",
				existing.Name, existing.Domain, existing.Range))
		}
	}
}

func mergeObjectProperties(card *Card, proposed []proposal.ObjectProperty, warnings *warningAccumulator) {
	for _, p := range proposed {
		existing, ok := card.ObjectProperty(p.Name)
		if !ok {
			card.ObjectProperties = append(card.ObjectProperties, ObjectProperty{
				Name:        p.Name,
				Domain:      p.Domain,
				Range:       p.Range,
				Description: p.Description,
				Origin:      originOrInduced(p.Origin),
				Evidence:    proposal.UnionEvidence(nil, p.Evidence),
			})
			continue
		}
		existing.Evidence = proposal.UnionEvidence(existing.Evidence, p.Evidence)
		if len(p.Description) > len(existing.Description) {
			existing.Description = p.Description
		}
		if existing.Origin == "" && p.Origin != "" {
			existing.Origin = p.Origin
		}
		if proposal.Key(p.Domain) != proposal.Key(existing.Domain) || proposal.Key(p.Range) != proposal.Key(existing.Range) {
			warnings.add(fmt.Sprintf("object property %s: diverging domain/range, kept %s/%s",
				existing.Name, existing.Domain, existing.Range))
		}
	}
}

func mergeEvents(card *Card, proposed []proposal.Event, warnings *warningAccumulator) {
	for _, p := range proposed {
		var existing *Event
		k := proposal.Key(p.Name)
		for i := range card.Events {
			if proposal.Key(card.Events[i].Name) == k {
				existing = &card.Events[i]
				break
			}
		}

		if existing == nil {
			card.Events = append(card.Events, Event{
				Name:     p.Name,
				Actors:   unionOrdered(nil, p.Actors),
				Effects:  unionOrdered(nil, p.Effects),
				Origin:   originOrInduced(p.Origin),
				Evidence: proposal.UnionEvidence(nil, p.Evidence),
			})
			continue
		}
		existing.Actors = unionOrdered(existing.Actors, p.Actors)
		existing.Effects = unionOrdered(existing.Effects, p.Effects)
		existing.Evidence = proposal.UnionEvidence(existing.Evidence, p.Evidence)
		if existing.Origin == "" && p.Origin != "" {
			existing.Origin = p.Origin
		}
	}
}

// mergeAliases appends alias suggestions and reuse hints, deduplicated by
// sorted name tuple. Reuse hints are never auto-applied — they only surface
// as alias suggestions for human review.
func mergeAliases(card *Card, prop *proposal.DocumentProposal) {
	seen := make(map[string]struct{}, len(card.Aliases))
	for _, a := range card.Aliases {
		seen[proposal.AliasKey(a.Names)] = struct{}{}
	}

	add := func(names []string, rationale string) {
		k := proposal.AliasKey(names)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		card.Aliases = append(card.Aliases, Alias{Names: names, Rationale: rationale})
	}

	for _, a := range prop.AliasOrMergeSuggestions {
		add(a.Names, a.Rationale)
	}
	for _, h := range prop.ReuseInsteadOfCreate {
		add([]string{h.Proposed, h.Reuse}, h.Rationale)
	}
}

// resolveReferences checks every property against the merged class set.
// Unresolved references warn but never drop the property: governance is
// human, and the warning is the signal.
func resolveReferences(card *Card, warnings *warningAccumulator) {
	classKeys := make(map[string]struct{}, len(card.Classes))
	for _, c := range card.Classes {
		classKeys[proposal.Key(c.Name)] = struct{}{}
	}

	resolves := func(name string) bool {
		_, ok := classKeys[proposal.Key(name)]
		return ok
	}

	for _, dp := range card.DatatypeProperties {
		if dp.Domain != "" && !resolves(dp.Domain) {
			warnings.add(fmt.Sprintf("datatype property %s references unknown class %s", dp.Name, dp.Domain))
		}
	}
	for _, op := range card.ObjectProperties {
		if op.Domain != "" && !resolves(op.Domain) {
			warnings.add(fmt.Sprintf("object property %s references unknown class %s", op.Name, op.Domain))
		}
		if op.Range != "" && !resolves(op.Range) {
			warnings.add(fmt.Sprintf("object property %s references unknown class %s", op.Name, op.Range))
		}
	}
}

func originOrInduced(origin string) string {
	if origin != "" {
		return origin
	}
	return OriginInduced
}

func unionOrdered(existing, add []string) []string {
	if existing == nil {
		existing = []string{}
	}
	seen := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if _, ok := seen[s]; ok {
			continue
		}
		existing = append(existing, s)
		seen[s] = struct{}{}
	}
	return existing
}

// clone returns a deep copy of the card.
func (c *Card) clone() *Card {
	out := &Card{
		Version:   c.Version,
		Namespace: c.Namespace,
	}

	out.Classes = make([]Class, len(c.Classes))
	for i, cl := range c.Classes {
		cl.Evidence = append([]dto.Evidence(nil), cl.Evidence...)
		out.Classes[i] = cl
	}
	out.DatatypeProperties = make([]DatatypeProperty, len(c.DatatypeProperties))
	for i, dp := range c.DatatypeProperties {
		dp.Evidence = append([]dto.Evidence(nil), dp.Evidence...)
		out.DatatypeProperties[i] = dp
	}
	out.ObjectProperties = make([]ObjectProperty, len(c.ObjectProperties))
	for i, op := range c.ObjectProperties {
		op.Evidence = append([]dto.Evidence(nil), op.Evidence...)
		out.ObjectProperties[i] = op
	}
	out.Events = make([]Event, len(c.Events))
	for i, ev := range c.Events {
		ev.Actors = append([]string(nil), ev.Actors...)
		ev.Effects = append([]string(nil), ev.Effects...)
		ev.Evidence = append([]dto.Evidence(nil), ev.Evidence...)
		out.Events[i] = ev
	}
	out.Aliases = make([]Alias, len(c.Aliases))
	for i, a := range c.Aliases {
		a.Names = append([]string(nil), a.Names...)
		out.Aliases[i] = a
	}
	out.Warnings = append([]string{}, c.Warnings...)
	return out
}

// warningAccumulator deduplicates warnings, preserving insertion order.
type warningAccumulator struct {
	seen  map[string]struct{}
	order []string
}

func newWarningAccumulator(initial []string) *warningAccumulator {
	w := &warningAccumulator{seen: map[string]struct{}{}}
	for _, s := range initial {
		w.add(s)
	}
	return w
}

func (w *warningAccumulator) add(s string) {
	if _, ok := w.seen[s]; ok {
		return
	}
	w.seen[s] = struct{}{}
	w.order = append(w.order, s)
}

func (w *warningAccumulator) list() []string {
	if w.order == nil {
		return []string{}
	}
	return w.order
}
