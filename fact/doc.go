// Package fact models the semi-structured fact graph produced by bridge
// lenses and implements its canonicalization pipeline.
//
// A Graph holds subject-predicate-object atoms plus an entity table mapping
// entity ids to alias sets. Canonicalize rewrites the graph into a unique,
// hash-ready form:
//
//  1. Entity resolution merges aliases with a union-find (path compression,
//     iterated to a fixed point), so multi-hop alias chains collapse no
//     matter the order they were recorded in. The canonical id for a class
//     is its lexicographically smallest member, which keeps resolution
//     deterministic even though Go maps carry no insertion order.
//  2. Every fact's subject and object are rewritten through the resolver.
//     Objects that are plain scalars instead of entity references go
//     through unit normalization: temperatures become Kelvin with
//     two-decimal precision, currencies become USD via a static rate table.
//  3. Predicates are normalized by stripping underscores and lowercasing.
//  4. Facts are deduplicated by exact (subject, predicate, object); the
//     first-seen provenance wins.
//  5. Facts are sorted by their subject:predicate:object key.
//
// The pipeline is a pure function over an immutable input; the caller's
// graph is never modified.
package fact
