package fact

import (
	"sort"
	"strings"
)

// CanonicalizeOption configures a Canonicalize call.
type CanonicalizeOption func(*canonOptions)

type canonOptions struct {
	rates     map[string]float64
	maxPasses int
}

// WithRates overrides the currency rate table used for unit normalization.
func WithRates(rates map[string]float64) CanonicalizeOption {
	return func(o *canonOptions) {
		if len(rates) > 0 {
			o.rates = rates
		}
	}
}

// WithMaxPasses overrides the resolver's fixed-point pass budget.
func WithMaxPasses(n int) CanonicalizeOption {
	return func(o *canonOptions) {
		if n > 0 {
			o.maxPasses = n
		}
	}
}

// Canonicalize rewrites g into its canonical form: aliases resolved,
// scalars unit-normalized, predicates normalized, facts deduplicated and
// sorted. The input graph is not modified. Canonicalize is total and
// idempotent; malformed atoms are the only error.
func Canonicalize(g Graph, opts ...CanonicalizeOption) (Graph, error) {
	o := canonOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	for i := range g.Facts {
		if err := g.Facts[i].IsValid(); err != nil {
			return Graph{}, err
		}
	}

	resolver := NewResolver(g.Entities, o.maxPasses)

	// Rewrite subjects and objects through the resolver; scalar objects go
	// through unit normalization instead.
	rewritten := make([]Atom, 0, len(g.Facts))
	for _, f := range g.Facts {
		atom := Atom{
			Subject:   resolver.Resolve(f.Subject),
			Predicate: NormalizeRelation(f.Predicate),
			Prov:      f.Prov,
		}
		if resolver.Known(f.Object) {
			atom.Object = resolver.Resolve(f.Object)
		} else {
			atom.Object = ResolveValue(f.Object, o.rates)
		}
		rewritten = append(rewritten, atom)
	}

	// Dedup by exact (s,p,o); the first-seen provenance wins.
	seen := make(map[string]struct{}, len(rewritten))
	deduped := make([]Atom, 0, len(rewritten))
	for _, f := range rewritten {
		key := f.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, f)
	}

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].Key() < deduped[j].Key()
	})

	// Rebuild the entity table around canonical ids so a second
	// canonicalization resolves to the same ids.
	entities := canonicalEntities(g.Entities, resolver)

	relations := make(map[string]struct{})
	for _, f := range deduped {
		relations[f.Predicate] = struct{}{}
	}
	relNames := make([]string, 0, len(relations))
	for name := range relations {
		relNames = append(relNames, name)
	}
	sort.Strings(relNames)

	out := Graph{Facts: deduped, Relations: relNames}
	if len(entities) > 0 {
		out.Entities = entities
	}
	return out, nil
}

// NormalizeRelation strips underscores and lowercases a predicate name, so
// "born_In" and "bornin" denote the same relation.
func NormalizeRelation(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// canonicalEntities regroups the entity table by canonical id, merging the
// alias sets of every member of each class.
func canonicalEntities(entities map[string]Entity, resolver *Resolver) map[string]Entity {
	if len(entities) == 0 {
		return nil
	}

	ids := make([]string, 0, len(entities))
	for id := range entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	merged := make(map[string]Entity)
	for _, id := range ids {
		root := resolver.Resolve(id)
		entry := merged[root]

		aliasSet := make(map[string]struct{}, len(entry.Aliases)+len(entities[id].Aliases)+1)
		for _, a := range entry.Aliases {
			aliasSet[a] = struct{}{}
		}
		aliasSet[id] = struct{}{}
		for _, a := range entities[id].Aliases {
			aliasSet[a] = struct{}{}
		}
		delete(aliasSet, root)

		aliases := make([]string, 0, len(aliasSet))
		for a := range aliasSet {
			aliases = append(aliases, a)
		}
		sort.Strings(aliases)
		entry.Aliases = aliases

		if entry.Type == "" {
			entry.Type = entities[id].Type
		}
		merged[root] = entry
	}
	return merged
}

// Jaccard computes |A ∩ B| / |A ∪ B| over the flattened fact keys of two
// graphs. Two empty graphs are identical by convention, so empty-vs-empty
// is 1.0.
func Jaccard(a, b Graph) float64 {
	as, bs := a.KeySet(), b.KeySet()
	if len(as) == 0 && len(bs) == 0 {
		return 1.0
	}

	inter := 0
	for k := range as {
		if _, ok := bs[k]; ok {
			inter++
		}
	}
	union := len(as) + len(bs) - inter
	return float64(inter) / float64(union)
}
