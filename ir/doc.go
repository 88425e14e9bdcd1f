// Package ir defines the lambda-calculus intermediate representation shared
// by both bridge lenses and implements its canonicalization pipeline.
//
// A Term is an immutable tagged tree over six variants: Var, Lam, App, Num,
// Bool and List. Canonicalize reduces a well-formed term to the unique
// representative of its alpha/beta/eta equivalence class:
//
//  1. Alpha-conversion renames every bound variable to a synthetic name
//     (v0, v1, ...) assigned in pre-order binder-encounter order, so two
//     terms that differ only in bound-variable spelling become identical.
//  2. Beta-reduction rewrites App(Lam(x, body), arg) to body[x := arg],
//     innermost-first on function position. Reduction is fuel-counted:
//     non-normalizing terms surface a *DivergenceError carrying the
//     partially reduced term instead of looping forever.
//  3. Eta-reduction rewrites Lam(x, App(f, Var(x))) to f whenever x does
//     not occur free in f, bottom-up until no rewrite applies.
//
// Canonicalization is a pure function: it never mutates its input, is
// deterministic (same input, byte-identical output) and idempotent.
// Malformed terms (a Lam without a body, an App without a function) are
// rejected with a validation error rather than silently defaulted, so
// upstream lens bugs are not masked.
package ir
