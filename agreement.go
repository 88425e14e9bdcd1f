package bridge

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lambda-foundation/bridge/fact"
	"github.com/lambda-foundation/bridge/ir"
)

// Agreement is the four-axis isomorphism verdict for a pair of bridges.
type Agreement struct {
	// IREq is true when the canonical terms are structurally identical
	// and the law battery found no behavioral divergence.
	IREq bool `json:"ir_eq"`

	// FactsJaccard is the Jaccard similarity of the flattened fact keys.
	FactsJaccard float64 `json:"facts_j"`

	// ProvOK is true when every source URL shared by both graphs carries
	// the same content hash.
	ProvOK bool `json:"prov_ok"`

	// SoulEq is true when both the IR soul and the text soul match.
	SoulEq bool `json:"soul_eq"`

	// Score is the weighted combination of the four axes.
	Score float64 `json:"score"`

	// LawsUnverified is set when the battery could not exercise the
	// behavioral laws (the terms are not functions under the probe set).
	// IREq still holds structurally; callers wanting strictness can gate
	// on this flag.
	LawsUnverified bool `json:"laws_unverified,omitempty"`
}

// Agree scores two canonical bridges. It never fails: inputs produced by
// Canonicalize are well-formed by construction, and every axis degrades
// to a boolean or a ratio.
func (e *Engine) Agree(ctx context.Context, a, b BridgeOut) Agreement {
	ctx, span := e.tel.Start(ctx, "bridge.agree")
	defer span.End()

	ag := Agreement{
		FactsJaccard: fact.Jaccard(a.Facts, b.Facts),
		ProvOK:       provenanceAgrees(a.Facts, b.Facts),
		SoulEq:       a.SoulFull == b.SoulFull && a.SoulTextFull == b.SoulTextFull,
	}

	if ir.Equal(a.IR, b.IR) {
		report, err := e.battery.Check(a.IR, b.IR)
		if err != nil {
			// Battery evaluation failing is an engine defect, not a term
			// difference; keep the structural verdict and flag the gap.
			ag.IREq = true
			ag.LawsUnverified = true
		} else {
			ag.IREq = report.AllPassed()
			ag.LawsUnverified = report.Unverified()
		}
	}

	ag.Score = e.weights.IR*boolWeight(ag.IREq) +
		e.weights.Facts*ag.FactsJaccard +
		e.weights.Prov*boolWeight(ag.ProvOK) +
		e.weights.Soul*boolWeight(ag.SoulEq)

	accepted := ag.Score >= e.threshold
	span.SetAttributes(
		attribute.Float64("bridge.score", ag.Score),
		attribute.Bool("bridge.accepted", accepted),
	)
	e.tel.RecordScore(ctx, ag.Score, accepted)
	return ag
}

// Accept reports whether an agreement clears this engine's threshold.
func (e *Engine) Accept(ag Agreement) bool {
	return ag.Score >= e.threshold
}

func boolWeight(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// provenanceAgrees checks that every source URL carries a single content
// hash across both graphs. URLs cited by only one side are fine; a single
// conflicting hash, across sides or within one graph, fails the axis.
func provenanceAgrees(a, b fact.Graph) bool {
	hashes := make(map[string]string)
	if !collectProvHashes(a, hashes) {
		return false
	}
	return collectProvHashes(b, hashes)
}

// collectProvHashes folds a graph's URL→hash claims into seen, returning
// false on the first conflict.
func collectProvHashes(g fact.Graph, seen map[string]string) bool {
	for _, f := range g.Facts {
		url := f.Prov.URL
		if url == "" {
			continue
		}
		if prev, ok := seen[url]; ok {
			if prev != f.Prov.Hash {
				return false
			}
			continue
		}
		seen[url] = f.Prov.Hash
	}
	return true
}
