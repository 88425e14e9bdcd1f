package bridge

import (
	"math"

	"github.com/lambda-foundation/bridge/fact"
	"github.com/lambda-foundation/bridge/ir"
	"github.com/lambda-foundation/bridge/soul"
	"github.com/lambda-foundation/bridge/telemetry"
)

// DefaultThreshold is the acceptance gate for agreement scores.
const DefaultThreshold = 0.9

// DefaultProteinDim is the default protein vector length for bridges
// assembled without a lens-provided vector.
const DefaultProteinDim = soul.DefaultProteinDim

// Weights are the per-axis coefficients of the agreement score. They must
// be non-negative and sum to 1.
type Weights struct {
	IR    float64 `json:"ir" yaml:"ir"`
	Facts float64 `json:"facts" yaml:"facts"`
	Prov  float64 `json:"prov" yaml:"prov"`
	Soul  float64 `json:"soul" yaml:"soul"`
}

// DefaultWeights returns the standard 0.4/0.3/0.2/0.1 split.
func DefaultWeights() Weights {
	return Weights{IR: 0.4, Facts: 0.3, Prov: 0.2, Soul: 0.1}
}

// validate checks the weight vector forms a convex combination.
func (w Weights) validate() bool {
	if w.IR < 0 || w.Facts < 0 || w.Prov < 0 || w.Soul < 0 {
		return false
	}
	return math.Abs(w.IR+w.Facts+w.Prov+w.Soul-1.0) < 1e-9
}

// Option configures an Engine.
type Option func(*engineConfig)

// engineConfig holds configuration for an Engine instance.
type engineConfig struct {
	fuel       int
	maxPasses  int
	rates      map[string]float64
	proteinDim int
	weights    Weights
	threshold  float64
	probes     []*ir.Term
	telemetry  *telemetry.Telemetry
}

// WithFuel sets the beta-reduction budget used for canonicalization and
// law probing.
func WithFuel(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.fuel = n
		}
	}
}

// WithMaxPasses sets the entity-resolution fixed-point pass budget.
func WithMaxPasses(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.maxPasses = n
		}
	}
}

// WithRates replaces the currency conversion table used by unit
// normalization. Rates are expressed against USD.
func WithRates(rates map[string]float64) Option {
	return func(c *engineConfig) {
		if len(rates) > 0 {
			c.rates = rates
		}
	}
}

// WithProteinDim sets the length of derived protein vectors.
func WithProteinDim(dim int) Option {
	return func(c *engineConfig) {
		if dim > 0 {
			c.proteinDim = dim
		}
	}
}

// WithWeights replaces the agreement score weights. New validates that
// the weights sum to 1.
func WithWeights(w Weights) Option {
	return func(c *engineConfig) {
		c.weights = w
	}
}

// WithThreshold sets the acceptance gate applied by Accept. New validates
// that the threshold lies in [0, 1].
func WithThreshold(threshold float64) Option {
	return func(c *engineConfig) {
		c.threshold = threshold
	}
}

// WithProbes replaces the law battery's probe terms.
func WithProbes(probes []*ir.Term) Option {
	return func(c *engineConfig) {
		if len(probes) > 0 {
			c.probes = probes
		}
	}
}

// WithTelemetry attaches tracing and metrics. The engine runs without it.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(c *engineConfig) {
		c.telemetry = tel
	}
}

// defaultEngineConfig returns the zero-option configuration.
func defaultEngineConfig() engineConfig {
	return engineConfig{
		fuel:       ir.DefaultFuel,
		maxPasses:  fact.DefaultMaxPasses,
		proteinDim: DefaultProteinDim,
		weights:    DefaultWeights(),
		threshold:  DefaultThreshold,
	}
}
