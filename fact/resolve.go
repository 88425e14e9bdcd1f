package fact

import (
	"sort"
)

// DefaultMaxPasses bounds the fixed-point iteration of the resolver. Alias
// tables seen in practice converge in one or two passes; the bound keeps
// resolution total on adversarial inputs.
const DefaultMaxPasses = 8

// Resolver maps every alias in an entity table to one canonical entity id.
// It is caller-owned and built fresh per canonicalization; there is no
// module-level registry.
type Resolver struct {
	parent map[string]string
	rep    map[string]string
}

// NewResolver builds a resolver from an entity table. Entity ids are
// processed in sorted order so resolution is deterministic, and the union
// pass is repeated until no parent pointer changes (or maxPasses is hit),
// so alias chains recorded out of order still collapse into one class.
// The canonical representative of a class is its lexicographically
// smallest entity id; plain aliases never become representatives.
// maxPasses <= 0 selects DefaultMaxPasses.
func NewResolver(entities map[string]Entity, maxPasses int) *Resolver {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}

	r := &Resolver{
		parent: make(map[string]string, len(entities)*2),
		rep:    make(map[string]string, len(entities)),
	}

	ids := make([]string, 0, len(entities))
	for id := range entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		r.add(id)
	}

	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for _, id := range ids {
			for _, alias := range entities[id].Aliases {
				if r.union(id, alias) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	// Pick class representatives: the smallest entity id in each class.
	for _, id := range ids {
		root := r.find(id)
		if _, ok := r.rep[root]; !ok {
			r.rep[root] = id
		}
	}
	return r
}

// Resolve returns the canonical id for name. Names that never appeared in
// the entity table resolve to themselves.
func (r *Resolver) Resolve(name string) string {
	if _, ok := r.parent[name]; !ok {
		return name
	}
	root := r.find(name)
	if rep, ok := r.rep[root]; ok {
		return rep
	}
	return root
}

// Known reports whether name appeared in the entity table as an id or alias.
func (r *Resolver) Known(name string) bool {
	_, ok := r.parent[name]
	return ok
}

func (r *Resolver) add(name string) {
	if _, ok := r.parent[name]; !ok {
		r.parent[name] = name
	}
}

// find walks parent pointers to the class root, compressing the path on the
// way back so later lookups are O(1).
func (r *Resolver) find(name string) string {
	root := name
	for r.parent[root] != root {
		root = r.parent[root]
	}
	for r.parent[name] != root {
		name, r.parent[name] = r.parent[name], root
	}
	return root
}

// union merges the classes of a and b. Reports whether anything changed.
func (r *Resolver) union(a, b string) bool {
	r.add(a)
	r.add(b)
	ra, rb := r.find(a), r.find(b)
	if ra == rb {
		return false
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	r.parent[rb] = ra
	return true
}
