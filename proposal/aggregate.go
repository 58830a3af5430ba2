package proposal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/ontorag/dto"
)

// Key returns the uniqueness key for an element name: lowercased and
// trimmed. The first-seen casing is what survives aggregation and merging.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Aggregate folds per-chunk proposals into a single document-level proposal.
//
// Elements are keyed by lowercased name. The first occurrence wins for
// domain, range and actors; diverging repeats keep the first-seen values and
// flag a conflict warning. Descriptions upgrade only when a later one is
// strictly longer. Evidence is unioned and deduplicated by (chunk_id, quote).
// The result is deterministically ordered, so aggregation commutes across
// chunk orderings up to tie-breaking on equal-length descriptions.
func Aggregate(chunkProps []ChunkProposal) *DocumentProposal {
	classes := map[string]*Class{}
	dprops := map[string]*DatatypeProperty{}
	oprops := map[string]*ObjectProperty{}
	events := map[string]*Event{}

	warnings := newWarningSet()
	aliases := newAliasSet()
	hints := newHintSet()

	for _, cp := range chunkProps {
		for _, w := range cp.Warnings {
			warnings.add(w)
		}
		aliases.addAll(cp.AliasOrMergeSuggestions)
		hints.addAll(cp.ReuseInsteadOfCreate)

		for _, c := range cp.ProposedAdditions.Classes {
			k := Key(c.Name)
			existing, ok := classes[k]
			if !ok {
				cc := c
				classes[k] = &cc
				continue
			}
			existing.Evidence = UnionEvidence(existing.Evidence, c.Evidence)
			existing.Description = longerDescription(existing.Description, c.Description)
		}

		for _, p := range cp.ProposedAdditions.DatatypeProperties {
			k := Key(p.Name)
			existing, ok := dprops[k]
			if !ok {
				pp := p
				dprops[k] = &pp
				continue
			}
			existing.Evidence = UnionEvidence(existing.Evidence, p.Evidence)
			existing.Description = longerDescription(existing.Description, p.Description)
			if Key(p.Domain) != Key(existing.Domain) || Key(p.Range) != Key(existing.Range) {
				warnings.add(fmt.Sprintf(
					"conflicting domain/range for datatype property %s: kept %s/%s",
					existing.Name, existing.Domain, existing.Range))
			}
		}

		for _, p := range cp.ProposedAdditions.ObjectProperties {
			k := Key(p.Name)
			existing, ok := oprops[k]
			if !ok {
				pp := p
				oprops[k] = &pp
				continue
			}
			existing.Evidence = UnionEvidence(existing.Evidence, p.Evidence)
			existing.Description = longerDescription(existing.Description, p.Description)
			if Key(p.Domain) != Key(existing.Domain) || Key(p.Range) != Key(existing.Range) {
				warnings.add(fmt.Sprintf(
					"conflicting domain/range for object property %s: kept %s/%s",
					existing.Name, existing.Domain, existing.Range))
			}
		}

		for _, ev := range cp.ProposedAdditions.Events {
			k := Key(ev.Name)
			existing, ok := events[k]
			if !ok {
				ee := ev
				events[k] = &ee
				continue
			}
			existing.Evidence = UnionEvidence(existing.Evidence, ev.Evidence)
			if !sameStrings(existing.Actors, ev.Actors) {
				warnings.add(fmt.Sprintf("conflicting actors for event %s: kept first-seen", existing.Name))
			}
			existing.Effects = unionStrings(existing.Effects, ev.Effects)
		}
	}

	out := &DocumentProposal{
		ProposedAdditions: Additions{
			Classes:            sortedClasses(classes),
			DatatypeProperties: sortedDatatypeProperties(dprops),
			ObjectProperties:   sortedObjectProperties(oprops),
			Events:             sortedEvents(events),
		},
		ReuseInsteadOfCreate:    hints.sorted(),
		AliasOrMergeSuggestions: aliases.sorted(),
		Warnings:                warnings.list(),
	}

	sortAdditionsEvidence(&out.ProposedAdditions)
	return out
}

// UnionEvidence appends records from add that are not already present,
// deduplicating by (chunk_id, quote).
func UnionEvidence(existing, add []dto.Evidence) []dto.Evidence {
	seen := make(map[dto.Evidence]struct{}, len(existing))
	for _, e := range existing {
		seen[e] = struct{}{}
	}
	for _, e := range add {
		if _, ok := seen[e]; ok {
			continue
		}
		existing = append(existing, e)
		seen[e] = struct{}{}
	}
	return existing
}

// SortEvidence orders evidence by (chunk_id, quote) so parallel extraction
// aggregates to the same bytes as sequential extraction.
func SortEvidence(evs []dto.Evidence) {
	sort.Slice(evs, func(i, j int) bool {
		if evs[i].ChunkID != evs[j].ChunkID {
			return evs[i].ChunkID < evs[j].ChunkID
		}
		return evs[i].Quote < evs[j].Quote
	})
}

func sortAdditionsEvidence(add *Additions) {
	for i := range add.Classes {
		SortEvidence(add.Classes[i].Evidence)
	}
	for i := range add.DatatypeProperties {
		SortEvidence(add.DatatypeProperties[i].Evidence)
	}
	for i := range add.ObjectProperties {
		SortEvidence(add.ObjectProperties[i].Evidence)
	}
	for i := range add.Events {
		SortEvidence(add.Events[i].Evidence)
	}
}

func longerDescription(current, candidate string) string {
	if len(candidate) > len(current) {
		return candidate
	}
	return current
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// unionStrings appends items from add not already in existing, preserving
// first-seen order.
func unionStrings(existing, add []string) []string {
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

func sortedClasses(m map[string]*Class) []Class {
	out := make([]Class, 0, len(m))
	for _, v := range m {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return Key(out[i].Name) < Key(out[j].Name) })
	return out
}

func sortedDatatypeProperties(m map[string]*DatatypeProperty) []DatatypeProperty {
	out := make([]DatatypeProperty, 0, len(m))
	for _, v := range m {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return Key(out[i].Name) < Key(out[j].Name) })
	return out
}

func sortedObjectProperties(m map[string]*ObjectProperty) []ObjectProperty {
	out := make([]ObjectProperty, 0, len(m))
	for _, v := range m {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return Key(out[i].Name) < Key(out[j].Name) })
	return out
}

func sortedEvents(m map[string]*Event) []Event {
	out := make([]Event, 0, len(m))
	for _, v := range m {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return Key(out[i].Name) < Key(out[j].Name) })
	return out
}

// warningSet deduplicates warnings while preserving insertion order.
type warningSet struct {
	seen  map[string]struct{}
	order []string
}

func newWarningSet() *warningSet {
	return &warningSet{seen: map[string]struct{}{}}
}

func (w *warningSet) add(s string) {
	if _, ok := w.seen[s]; ok {
		return
	}
	w.seen[s] = struct{}{}
	w.order = append(w.order, s)
}

func (w *warningSet) list() []string {
	if w.order == nil {
		return []string{}
	}
	return w.order
}

// aliasSet deduplicates alias suggestions by their sorted name tuple.
type aliasSet struct {
	seen  map[string]struct{}
	order []Alias
}

func newAliasSet() *aliasSet {
	return &aliasSet{seen: map[string]struct{}{}}
}

// AliasKey is the dedup key for an alias suggestion: the sorted, lowercased
// name tuple.
func AliasKey(names []string) string {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = Key(n)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x1f")
}

func (a *aliasSet) add(al Alias) {
	k := AliasKey(al.Names)
	if _, ok := a.seen[k]; ok {
		return
	}
	a.seen[k] = struct{}{}
	a.order = append(a.order, al)
}

func (a *aliasSet) addAll(als []Alias) {
	for _, al := range als {
		a.add(al)
	}
}

func (a *aliasSet) sorted() []Alias {
	out := make([]Alias, len(a.order))
	copy(out, a.order)
	sort.Slice(out, func(i, j int) bool {
		return strings.Join(out[i].Names, " ") < strings.Join(out[j].Names, " ")
	})
	return out
}

// hintSet deduplicates reuse hints by (proposed, reuse).
type hintSet struct {
	seen  map[[2]string]struct{}
	order []ReuseHint
}

func newHintSet() *hintSet {
	return &hintSet{seen: map[[2]string]struct{}{}}
}

func (h *hintSet) addAll(hints []ReuseHint) {
	for _, hint := range hints {
		k := [2]string{Key(hint.Proposed), Key(hint.Reuse)}
		if _, ok := h.seen[k]; ok {
			continue
		}
		h.seen[k] = struct{}{}
		h.order = append(h.order, hint)
	}
}

func (h *hintSet) sorted() []ReuseHint {
	out := make([]ReuseHint, len(h.order))
	copy(out, h.order)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Proposed != out[j].Proposed {
			return out[i].Proposed < out[j].Proposed
		}
		return out[i].Reuse < out[j].Reuse
	})
	return out
}
