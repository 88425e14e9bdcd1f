// Package soul computes content-addressed identity hashes for canonical
// bridge representations.
//
// A soul is the SHA-256 digest of a deterministic serialization of a
// canonical IR term; a text soul is the same over a canonical fact set.
// Serialization sorts every key explicitly and renders scalars through one
// shared formatter, so the digest never depends on map iteration order or
// platform float formatting — hash stability is a correctness requirement,
// not an optimization.
//
// Digests carry the full 256-bit sum. The short display forms ("λ-" or
// "τ-" plus the first 8 hex characters) are adequate for equality checks
// inside a single bridge comparison and for logs, not for global
// deduplication.
package soul
