package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lambda-foundation/bridge/fact"
	"github.com/lambda-foundation/bridge/ir"
	"github.com/lambda-foundation/bridge/ir/laws"
	"github.com/lambda-foundation/bridge/soul"
	"github.com/lambda-foundation/bridge/telemetry"
)

// Raw is the payload a lens hands to the engine. Every field is optional:
// a text-flavored lens may produce only facts, a code-flavored lens only
// IR, and the protein vector is supplied only by lenses that embed.
type Raw struct {
	IR      *ir.Term    `json:"ir,omitempty"`
	Facts   *fact.Graph `json:"facts,omitempty"`
	Protein []float64   `json:"protein,omitempty"`
}

// BridgeOut is the canonical, comparable form of one lens output.
type BridgeOut struct {
	IR    *ir.Term   `json:"ir"`
	Facts fact.Graph `json:"facts"`

	// Soul and SoulText are the short display digests ("λ-3fa2b911");
	// the Full fields retain all 256 bits for collision-safe storage.
	Soul         string `json:"soul"`
	SoulFull     string `json:"soul_full"`
	SoulText     string `json:"soul_text"`
	SoulTextFull string `json:"soul_text_full"`

	Protein []float64 `json:"protein"`
}

// Engine canonicalizes raw lens output and checks pairs of canonical
// bridges for isomorphism. An Engine is immutable after construction and
// safe for concurrent use; it keeps no state between calls.
type Engine struct {
	fuel       int
	maxPasses  int
	rates      map[string]float64
	proteinDim int
	weights    Weights
	threshold  float64
	battery    *laws.Battery
	tel        *telemetry.Telemetry
}

// New builds an Engine. Zero options is the defaults path.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if !cfg.weights.validate() {
		return nil, NewConfigurationError("New",
			fmt.Errorf("%w: agreement weights must be non-negative and sum to 1", ErrInvalidConfig))
	}
	if cfg.threshold < 0 || cfg.threshold > 1 {
		return nil, NewConfigurationError("New",
			fmt.Errorf("%w: threshold must be in [0, 1]", ErrInvalidConfig))
	}

	battOpts := []laws.BatteryOption{laws.WithFuel(cfg.fuel)}
	if len(cfg.probes) > 0 {
		battOpts = append(battOpts, laws.WithProbes(cfg.probes))
	}
	battery, err := laws.NewBattery(battOpts...)
	if err != nil {
		return nil, NewInternalError("New", err)
	}

	return &Engine{
		fuel:       cfg.fuel,
		maxPasses:  cfg.maxPasses,
		rates:      cfg.rates,
		proteinDim: cfg.proteinDim,
		weights:    cfg.weights,
		threshold:  cfg.threshold,
		battery:    battery,
		tel:        cfg.telemetry,
	}, nil
}

// Threshold returns the engine's acceptance gate.
func (e *Engine) Threshold() float64 { return e.threshold }

// Canonicalize assembles a full bridge from raw lens output. Missing IR
// defaults to the nil sentinel variable, missing facts to the empty
// graph; both defaults canonicalize cleanly, so partial lens output is
// never an error.
func (e *Engine) Canonicalize(ctx context.Context, raw Raw) (BridgeOut, error) {
	const op = "Engine.Canonicalize"

	ctx, span := e.tel.Start(ctx, "bridge.canonicalize")
	defer span.End()

	term := raw.IR
	if term == nil {
		term = ir.Var(ir.SentinelNil)
	}

	var stats ir.Stats
	canonical, err := ir.Canonicalize(term, ir.WithFuel(e.fuel), ir.WithStats(&stats))
	if err != nil {
		return BridgeOut{}, wrapIRError(op, err)
	}
	e.tel.AddBetaSteps(ctx, int64(stats.BetaSteps))

	graph := fact.Empty()
	if raw.Facts != nil {
		graph = *raw.Facts
	}
	canonFacts, err := fact.Canonicalize(graph,
		fact.WithRates(e.rates),
		fact.WithMaxPasses(e.maxPasses))
	if err != nil {
		return BridgeOut{}, NewValidationError(op, fmt.Errorf("%w: %v", ErrMalformedFact, err))
	}

	irDigest, err := soul.Compute(canonical, ir.WithFuel(e.fuel))
	if err != nil {
		return BridgeOut{}, NewInternalError(op, err)
	}
	textDigest, err := soul.ComputeText(canonFacts,
		fact.WithRates(e.rates),
		fact.WithMaxPasses(e.maxPasses))
	if err != nil {
		return BridgeOut{}, NewInternalError(op, err)
	}

	protein := raw.Protein
	if len(protein) == 0 {
		protein = soul.Protein(irDigest, textDigest, e.proteinDim)
	}

	return BridgeOut{
		IR:           canonical,
		Facts:        canonFacts,
		Soul:         irDigest.Short(),
		SoulFull:     irDigest.Hex(),
		SoulText:     textDigest.Short(),
		SoulTextFull: textDigest.Hex(),
		Protein:      protein,
	}, nil
}

// wrapIRError maps canonicalizer failures onto the sentinel taxonomy.
func wrapIRError(op string, err error) error {
	var verr *ir.ValidationError
	if errors.As(err, &verr) {
		return NewValidationError(op, fmt.Errorf("%w: %v", ErrMalformedTerm, verr)).
			WithContext(map[string]any{"path": verr.Path})
	}

	var derr *ir.DivergenceError
	if errors.As(err, &derr) {
		return NewExecutionError(op, fmt.Errorf("%w: %v", ErrDivergence, derr)).
			WithContext(map[string]any{"fuel": derr.Fuel})
	}

	return NewInternalError(op, err)
}

// defaultEngine backs the package-level convenience functions. The law
// battery compiles its CEL programs once, so the shared instance is
// built lazily and reused.
var defaultEngine = sync.OnceValues(func() (*Engine, error) {
	return New()
})

// Canonicalize assembles a bridge using the default engine.
func Canonicalize(ctx context.Context, raw Raw) (BridgeOut, error) {
	e, err := defaultEngine()
	if err != nil {
		return BridgeOut{}, err
	}
	return e.Canonicalize(ctx, raw)
}

// Agree scores two bridges using the default engine.
func Agree(ctx context.Context, a, b BridgeOut) Agreement {
	e, err := defaultEngine()
	if err != nil {
		return Agreement{}
	}
	return e.Agree(ctx, a, b)
}

// FindDifference diagnoses two bridges using the default engine.
func FindDifference(a, b BridgeOut) DifferenceReport {
	e, err := defaultEngine()
	if err != nil {
		return DifferenceReport{}
	}
	return e.FindDifference(a, b)
}

// IsBridgeOk reports whether an agreement clears the threshold. A
// non-positive threshold selects the default gate.
func IsBridgeOk(ag Agreement, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return ag.Score >= threshold
}
