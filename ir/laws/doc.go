// Package laws implements the semantic law battery backing IR equivalence.
//
// Structural equality of canonical terms establishes that two terms are the
// same tree; the battery additionally checks that the two sides behave the
// same when treated as functions. Both terms are applied to a shared probe
// set (numbers, booleans, a numeric list), every application is normalized
// by the regular canonicalizer, and the collected observations become the
// inputs of five laws:
//
//   - identity: both sides produce identical outputs on every probe
//   - fusion: both sides agree under self-composition (f(f(x)))
//   - round_trip: each side's serialization survives a parse/re-serialize
//   - length_preservation: list probes yield lists of equal length
//   - monotonicity: numeric outputs preserve the same ordering of the
//     ascending numeric probes
//
// Each law is a CEL predicate compiled once per battery, so the predicate
// set can be inspected and extended declaratively. Terms that are not
// functions (no probe application reduces) make the behavioural laws
// Unverified: they pass, but the report says so and the caller can surface
// the gap instead of silently assuming correctness.
package laws
