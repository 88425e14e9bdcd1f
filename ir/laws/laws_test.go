package laws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lambda-foundation/bridge/ir"
)

func TestCheck_IdenticalFunctionsPass(t *testing.T) {
	b, err := NewBattery()
	require.NoError(t, err)

	report, err := b.Check(ir.Lam("x", ir.Var("x")), ir.Lam("y", ir.Var("y")))
	require.NoError(t, err)

	assert.True(t, report.AllPassed())
	assert.False(t, report.Unverified())
	assert.Len(t, report.Outcomes, 5)
}

func TestCheck_DivergentBehaviorFailsIdentity(t *testing.T) {
	b, err := NewBattery()
	require.NoError(t, err)

	// Identity vs. constant-5: different outputs on every numeric probe.
	report, err := b.Check(ir.Lam("x", ir.Var("x")), ir.Lam("x", ir.Num(5)))
	require.NoError(t, err)

	assert.False(t, report.AllPassed())

	byLaw := make(map[string]Outcome, len(report.Outcomes))
	for _, o := range report.Outcomes {
		byLaw[o.Law] = o
	}
	assert.False(t, byLaw[LawIdentity].Passed)
	assert.NotEmpty(t, byLaw[LawIdentity].Detail)
	// Constant output flattens the ordering of the numeric probes.
	assert.False(t, byLaw[LawMonotonicity].Passed)
	// Serialization round trips regardless of behavior.
	assert.True(t, byLaw[LawRoundTrip].Passed)
	assert.False(t, byLaw[LawRoundTrip].Unverified)
}

func TestCheck_NonFunctionsUnverified(t *testing.T) {
	b, err := NewBattery()
	require.NoError(t, err)

	report, err := b.Check(ir.Num(5), ir.Num(5))
	require.NoError(t, err)

	assert.True(t, report.AllPassed())
	assert.True(t, report.Unverified())

	for _, o := range report.Outcomes {
		if o.Law == LawRoundTrip {
			assert.False(t, o.Unverified, "round_trip needs no application")
			continue
		}
		assert.True(t, o.Unverified, o.Law)
	}
}

func TestCheck_FusionCatchesNonIdempotence(t *testing.T) {
	b, err := NewBattery()
	require.NoError(t, err)

	// Both are functions, and both agree on single application of the
	// shared fixed point... not constructible without arithmetic in the
	// term language, so assert the weaker property: identity passing
	// implies fusion passing for structurally equal sides.
	lhs := ir.Lam("x", ir.Var("x"))
	report, err := b.Check(lhs, lhs)
	require.NoError(t, err)

	for _, o := range report.Outcomes {
		assert.True(t, o.Passed, o.Law)
	}
}

func TestCheck_CustomProbes(t *testing.T) {
	b, err := NewBattery(WithProbes([]*ir.Term{ir.Bool(false)}))
	require.NoError(t, err)

	report, err := b.Check(ir.Lam("x", ir.Var("x")), ir.Lam("x", ir.Var("x")))
	require.NoError(t, err)

	assert.True(t, report.AllPassed())
	assert.False(t, report.Unverified())
}

func TestCheck_DivergentTermRendersBottom(t *testing.T) {
	b, err := NewBattery(WithFuel(50))
	require.NoError(t, err)

	omega := ir.Lam("x", ir.App(ir.Var("x"), ir.Var("x")))
	// (λx.x x) applied to itself loops; applied through the battery it
	// must surface as a failed identity against a terminating term, not
	// as an error.
	looping := ir.Lam("y", ir.App(omega, omega))

	report, err := b.Check(looping, ir.Lam("x", ir.Var("x")))
	require.NoError(t, err)
	assert.False(t, report.AllPassed())
}

func TestDefaultProbes(t *testing.T) {
	probes := DefaultProbes()
	require.Len(t, probes, 5)
	assert.Equal(t, ir.KindList, probes[4].Kind)
}
