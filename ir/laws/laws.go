package laws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/lambda-foundation/bridge/ir"
)

// Law names, in evaluation order.
const (
	LawIdentity           = "identity"
	LawFusion             = "fusion"
	LawRoundTrip          = "round_trip"
	LawLengthPreservation = "length_preservation"
	LawMonotonicity       = "monotonicity"
)

// lawOrder fixes report ordering.
var lawOrder = []string{
	LawIdentity,
	LawFusion,
	LawRoundTrip,
	LawLengthPreservation,
	LawMonotonicity,
}

// lawExprs are the CEL predicates evaluated over probe observations.
var lawExprs = map[string]string{
	LawIdentity:           "lhs == rhs",
	LawFusion:             "lhs_twice == rhs_twice",
	LawRoundTrip:          "lhs_stable && rhs_stable",
	LawLengthPreservation: "lhs_lens == rhs_lens",
	LawMonotonicity:       "lhs_order == rhs_order",
}

// behavioural reports which laws require the terms to be applicable as
// functions. round_trip only needs the serialized trees.
var behavioural = map[string]bool{
	LawIdentity:           true,
	LawFusion:             true,
	LawRoundTrip:          false,
	LawLengthPreservation: true,
	LawMonotonicity:       true,
}

// Outcome is the result of one law check.
type Outcome struct {
	Law    string `json:"law"`
	Passed bool   `json:"passed"`
	// Unverified means the law could not be exercised against the terms
	// (they are not functions under the probe set). Unverified outcomes
	// pass, but the flag is preserved so the gap stays visible.
	Unverified bool   `json:"unverified,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Report collects the outcomes of a battery run.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
}

// AllPassed reports whether every law passed (unverified laws count as
// passed; see Unverified).
func (r Report) AllPassed() bool {
	for _, o := range r.Outcomes {
		if !o.Passed {
			return false
		}
	}
	return true
}

// Unverified reports whether any law could not be exercised.
func (r Report) Unverified() bool {
	for _, o := range r.Outcomes {
		if o.Unverified {
			return true
		}
	}
	return false
}

// BatteryOption configures a Battery.
type BatteryOption func(*Battery)

// WithProbes overrides the probe set.
func WithProbes(probes []*ir.Term) BatteryOption {
	return func(b *Battery) {
		if len(probes) > 0 {
			b.probes = probes
		}
	}
}

// WithFuel overrides the beta budget used when normalizing probe
// applications.
func WithFuel(fuel int) BatteryOption {
	return func(b *Battery) {
		if fuel > 0 {
			b.fuel = fuel
		}
	}
}

// DefaultProbes returns the stock probe set: ascending numerics for the
// monotonicity law, a boolean, and a numeric list for length preservation.
func DefaultProbes() []*ir.Term {
	return []*ir.Term{
		ir.Num(0),
		ir.Num(1),
		ir.Num(2),
		ir.Bool(true),
		ir.List(ir.Num(1), ir.Num(2), ir.Num(3)),
	}
}

// Battery holds the compiled law programs and the probe set. A Battery is
// immutable after construction and safe for concurrent use.
type Battery struct {
	programs map[string]cel.Program
	probes   []*ir.Term
	fuel     int
}

// NewBattery compiles the law predicates.
func NewBattery(opts ...BatteryOption) (*Battery, error) {
	env, err := cel.NewEnv(
		cel.Variable("lhs", cel.ListType(cel.StringType)),
		cel.Variable("rhs", cel.ListType(cel.StringType)),
		cel.Variable("lhs_twice", cel.ListType(cel.StringType)),
		cel.Variable("rhs_twice", cel.ListType(cel.StringType)),
		cel.Variable("lhs_stable", cel.BoolType),
		cel.Variable("rhs_stable", cel.BoolType),
		cel.Variable("lhs_lens", cel.ListType(cel.IntType)),
		cel.Variable("rhs_lens", cel.ListType(cel.IntType)),
		cel.Variable("lhs_order", cel.ListType(cel.IntType)),
		cel.Variable("rhs_order", cel.ListType(cel.IntType)),
	)
	if err != nil {
		return nil, fmt.Errorf("laws: create CEL environment: %w", err)
	}

	b := &Battery{
		programs: make(map[string]cel.Program, len(lawExprs)),
		probes:   DefaultProbes(),
		fuel:     ir.DefaultFuel,
	}
	for _, opt := range opts {
		opt(b)
	}

	for name, expr := range lawExprs {
		ast, iss := env.Compile(expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("laws: compile %s: %w", name, iss.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("laws: program %s: %w", name, err)
		}
		b.programs[name] = prg
	}
	return b, nil
}

// Check runs the battery against two canonical terms.
func (b *Battery) Check(left, right *ir.Term) (Report, error) {
	lo := b.observe(left)
	ro := b.observe(right)
	applicable := lo.applicable && ro.applicable

	vars := map[string]any{
		"lhs":        lo.results,
		"rhs":        ro.results,
		"lhs_twice":  lo.twice,
		"rhs_twice":  ro.twice,
		"lhs_stable": lo.stable,
		"rhs_stable": ro.stable,
		"lhs_lens":   lo.listLens,
		"rhs_lens":   ro.listLens,
		"lhs_order":  lo.numOrder,
		"rhs_order":  ro.numOrder,
	}

	report := Report{Outcomes: make([]Outcome, 0, len(lawOrder))}
	for _, name := range lawOrder {
		if behavioural[name] && !applicable {
			report.Outcomes = append(report.Outcomes, Outcome{
				Law:        name,
				Passed:     true,
				Unverified: true,
				Detail:     "terms are not applicable to the probe set",
			})
			continue
		}

		out, _, err := b.programs[name].Eval(vars)
		if err != nil {
			return Report{}, fmt.Errorf("laws: evaluate %s: %w", name, err)
		}
		passed := out == types.True
		outcome := Outcome{Law: name, Passed: passed}
		if !passed {
			outcome.Detail = fmt.Sprintf("lhs=%v rhs=%v", lo.results, ro.results)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report, nil
}

// observation is everything the laws can see about one term.
type observation struct {
	results    []string
	twice      []string
	stable     bool
	listLens   []int64
	numOrder   []int64
	applicable bool
}

// observe applies the term to every probe and normalizes the results.
func (b *Battery) observe(t *ir.Term) observation {
	obs := observation{
		results:  make([]string, 0, len(b.probes)),
		twice:    make([]string, 0, len(b.probes)),
		listLens: make([]int64, 0, 1),
	}

	var nums []float64
	for _, probe := range b.probes {
		res, diverged := b.apply(ir.App(t, probe))
		obs.results = append(obs.results, render(res))
		twice, _ := b.apply(ir.App(t, ir.App(t, probe)))
		obs.twice = append(obs.twice, render(twice))

		// A probe counts as consumed when the application reduced away.
		// Divergence is still an observation of function behavior, so it
		// keeps the laws verifiable instead of masking the mismatch.
		if diverged || (res != nil && res.Kind != ir.KindApp) {
			obs.applicable = true
		}

		if probe.Kind == ir.KindList {
			if res != nil && res.Kind == ir.KindList {
				obs.listLens = append(obs.listLens, int64(len(res.Items)))
			} else {
				obs.listLens = append(obs.listLens, -1)
			}
		}
		if probe.Kind == ir.KindNum {
			if res != nil && res.Kind == ir.KindNum {
				nums = append(nums, res.Num)
			} else {
				nums = nil
			}
		}
	}

	obs.numOrder = orderSigns(nums)
	obs.stable = roundTripStable(t)
	return obs
}

// apply normalizes an application, returning nil when reduction fails;
// nil renders as a distinct marker so a divergent side can never compare
// equal to a value. The second return distinguishes fuel exhaustion from
// a malformed term.
func (b *Battery) apply(t *ir.Term) (*ir.Term, bool) {
	res, err := ir.Canonicalize(t, ir.WithFuel(b.fuel))
	if err != nil {
		var div *ir.DivergenceError
		return nil, errors.As(err, &div)
	}
	return res, false
}

func render(t *ir.Term) string {
	if t == nil {
		return "⊥"
	}
	return t.String()
}

// orderSigns reduces a numeric output sequence to the signs of successive
// differences, the shape the monotonicity predicate compares.
func orderSigns(nums []float64) []int64 {
	if len(nums) < 2 {
		return []int64{}
	}
	signs := make([]int64, 0, len(nums)-1)
	for i := 1; i < len(nums); i++ {
		switch {
		case nums[i] > nums[i-1]:
			signs = append(signs, 1)
		case nums[i] < nums[i-1]:
			signs = append(signs, -1)
		default:
			signs = append(signs, 0)
		}
	}
	return signs
}

// roundTripStable checks that serialize -> parse -> serialize is the
// identity for the term's wire encoding.
func roundTripStable(t *ir.Term) bool {
	first, err := json.Marshal(t)
	if err != nil {
		return false
	}
	var back ir.Term
	if err := json.Unmarshal(first, &back); err != nil {
		return false
	}
	second, err := json.Marshal(&back)
	if err != nil {
		return false
	}
	return string(first) == string(second)
}
