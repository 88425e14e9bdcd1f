package soul

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lambda-foundation/bridge/fact"
	"github.com/lambda-foundation/bridge/ir"
)

func TestCompute_AlphaInvariant(t *testing.T) {
	a, err := Compute(ir.Lam("x", ir.Var("x")))
	require.NoError(t, err)
	b, err := Compute(ir.Lam("y", ir.Var("y")))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Short(), b.Short())
}

func TestCompute_ShortForm(t *testing.T) {
	d, err := Compute(ir.Num(5))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(d.Short(), "λ-"))
	assert.Len(t, strings.TrimPrefix(d.Short(), "λ-"), 8)
	assert.Len(t, d.Hex(), 64)
	assert.True(t, strings.HasPrefix(d.Hex(), strings.TrimPrefix(d.Short(), "λ-")))
}

func TestCompute_IdempotentOverCanonicalization(t *testing.T) {
	raw := ir.App(ir.Lam("x", ir.Var("x")), ir.Num(5))
	canonical, err := ir.Canonicalize(raw)
	require.NoError(t, err)

	fromRaw, err := Compute(raw)
	require.NoError(t, err)
	fromCanonical, err := Compute(canonical)
	require.NoError(t, err)

	assert.True(t, fromRaw.Equal(fromCanonical))
}

func TestCompute_DistinguishesTerms(t *testing.T) {
	a, err := Compute(ir.Num(5))
	require.NoError(t, err)
	b, err := Compute(ir.Num(6))
	require.NoError(t, err)

	assert.False(t, a.Equal(b))
}

func TestComputeText(t *testing.T) {
	g := fact.Graph{Facts: []fact.Atom{
		{Subject: "mars", Predicate: "orbits", Object: "sun", Prov: fact.Provenance{Hash: "h1"}},
	}}

	d, err := ComputeText(g)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(d.Short(), "τ-"))

	// Provenance does not participate in the text soul.
	g2 := fact.Graph{Facts: []fact.Atom{
		{Subject: "mars", Predicate: "orbits", Object: "sun", Prov: fact.Provenance{Hash: "other"}},
	}}
	d2, err := ComputeText(g2)
	require.NoError(t, err)
	assert.True(t, d.Equal(d2))
}

func TestComputeText_OrderInsensitive(t *testing.T) {
	p := fact.Provenance{Hash: "h"}
	a := fact.Graph{Facts: []fact.Atom{
		{Subject: "a", Predicate: "p", Object: "x", Prov: p},
		{Subject: "b", Predicate: "p", Object: "y", Prov: p},
	}}
	b := fact.Graph{Facts: []fact.Atom{
		{Subject: "b", Predicate: "p", Object: "y", Prov: p},
		{Subject: "a", Predicate: "p", Object: "x", Prov: p},
	}}

	da, err := ComputeText(a)
	require.NoError(t, err)
	db, err := ComputeText(b)
	require.NoError(t, err)
	assert.True(t, da.Equal(db))
}

func TestDigest_PrefixesDiffer(t *testing.T) {
	irDigest, err := Compute(ir.Var("nil"))
	require.NoError(t, err)
	textDigest, err := ComputeText(fact.Empty())
	require.NoError(t, err)

	assert.False(t, irDigest.Equal(textDigest))
}

func TestProtein(t *testing.T) {
	a, err := Compute(ir.Num(1))
	require.NoError(t, err)
	b, err := ComputeText(fact.Empty())
	require.NoError(t, err)

	vec := Protein(a, b, 0)
	require.Len(t, vec, DefaultProteinDim)
	for _, v := range vec {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}

	// Deterministic.
	assert.Equal(t, vec, Protein(a, b, 0))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float64{1}, []float64{1, 2}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
}
