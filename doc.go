// Package bridge canonicalizes dual-representation knowledge captures and
// decides whether two of them describe the same thing.
//
// A bridge pairs a computational view (a small lambda-calculus term, the
// IR) with a declarative view (a graph of subject/predicate/object facts
// with provenance). Independent lens adapters extract bridges from raw
// sources; this package reduces each capture to a canonical form and
// scores pairs of canonical bridges for isomorphism.
//
// # Core Concepts
//
//   - IR: lambda terms normalized by alpha-conversion, fuel-bounded beta
//     reduction, and eta reduction (package ir)
//   - Facts: entity-resolved, unit-normalized, deduplicated and sorted
//     fact graphs (package fact)
//   - Souls: content hashes over the canonical forms, one per
//     representation (package soul)
//   - Agreement: a weighted four-axis score — IR equality, fact overlap,
//     provenance consistency, soul equality
//
// # Getting Started
//
// The zero-configuration path uses the package-level functions:
//
//	import "github.com/lambda-foundation/bridge"
//
//	out, err := bridge.Canonicalize(ctx, bridge.Raw{IR: term, Facts: &graph})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ag := bridge.Agree(ctx, outA, outB)
//	if !bridge.IsBridgeOk(ag, 0) {
//		report := bridge.FindDifference(outA, outB)
//		// inspect report.FactsMissing, report.FactsExtra, report.IRPaths
//	}
//
// Engines built with New accept options for reduction fuel, agreement
// weights, currency rates, and telemetry:
//
//	eng, err := bridge.New(
//		bridge.WithThreshold(0.95),
//		bridge.WithFuel(50_000),
//	)
//
// Engines are stateless and safe for concurrent use. The queue, registry,
// lens, and worker packages wrap the engine for asynchronous comparison
// pipelines; none of them are required for the core API.
package bridge
