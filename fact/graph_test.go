package fact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prov(hash string) Provenance {
	return Provenance{Hash: hash, Date: "2024-03-01"}
}

func TestCanonicalize_DedupKeepsFirstProvenance(t *testing.T) {
	g := Graph{Facts: []Atom{
		{Subject: "mars", Predicate: "orbits", Object: "sun", Prov: prov("aaa")},
		{Subject: "mars", Predicate: "orbits", Object: "sun", Prov: prov("bbb")},
	}}

	got, err := Canonicalize(g)
	require.NoError(t, err)

	require.Len(t, got.Facts, 1)
	assert.Equal(t, "aaa", got.Facts[0].Prov.Hash)
}

func TestCanonicalize_AliasResolution(t *testing.T) {
	g := Graph{
		Facts: []Atom{
			{Subject: "jupiter", Predicate: "rules", Object: "olympus", Prov: prov("h1")},
			{Subject: "zeus", Predicate: "rules", Object: "olympus", Prov: prov("h2")},
		},
		Entities: map[string]Entity{
			"zeus": {Aliases: []string{"jupiter", "jove"}},
		},
	}

	got, err := Canonicalize(g)
	require.NoError(t, err)

	// Both spellings collapse onto the entity id and dedup to one fact.
	require.Len(t, got.Facts, 1)
	assert.Equal(t, "zeus", got.Facts[0].Subject)
}

func TestCanonicalize_MultiHopAliasChains(t *testing.T) {
	// b aliases c before c aliases d; a single forward pass would miss the
	// a-d merge, the fixed-point resolver must not.
	g := Graph{
		Facts: []Atom{
			{Subject: "d", Predicate: "is", Object: "thing", Prov: prov("h1")},
			{Subject: "a", Predicate: "is", Object: "thing", Prov: prov("h2")},
		},
		Entities: map[string]Entity{
			"a": {Aliases: []string{"b"}},
			"c": {Aliases: []string{"b"}},
			"d": {Aliases: []string{"c"}},
		},
	}

	got, err := Canonicalize(g)
	require.NoError(t, err)

	require.Len(t, got.Facts, 1)
	assert.Equal(t, "a", got.Facts[0].Subject)
}

func TestCanonicalize_RelationNormalization(t *testing.T) {
	g := Graph{Facts: []Atom{
		{Subject: "x", Predicate: "born_In", Object: "y", Prov: prov("h1")},
		{Subject: "x", Predicate: "bornin", Object: "y", Prov: prov("h2")},
	}}

	got, err := Canonicalize(g)
	require.NoError(t, err)

	require.Len(t, got.Facts, 1)
	assert.Equal(t, "bornin", got.Facts[0].Predicate)
	assert.Equal(t, []string{"bornin"}, got.Relations)
}

func TestCanonicalize_SortedByKey(t *testing.T) {
	g := Graph{Facts: []Atom{
		{Subject: "c", Predicate: "p", Object: "v", Prov: prov("h1")},
		{Subject: "a", Predicate: "p", Object: "v", Prov: prov("h2")},
		{Subject: "b", Predicate: "p", Object: "v", Prov: prov("h3")},
	}}

	got, err := Canonicalize(g)
	require.NoError(t, err)

	assert.Equal(t, []string{"a:p:v", "b:p:v", "c:p:v"}, got.Keys())
}

func TestCanonicalize_Idempotent(t *testing.T) {
	g := Graph{
		Facts: []Atom{
			{Subject: "jove", Predicate: "Has_Temperature", Object: "0 C", Prov: prov("h1")},
			{Subject: "zeus", Predicate: "hastemperature", Object: "273.15K", Prov: prov("h2")},
		},
		Entities: map[string]Entity{
			"zeus": {Aliases: []string{"jove"}},
		},
	}

	once, err := Canonicalize(g)
	require.NoError(t, err)
	twice, err := Canonicalize(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	require.Len(t, once.Facts, 1)
	assert.Equal(t, "zeus:hastemperature:273.15K", once.Facts[0].Key())
}

func TestCanonicalize_RejectsMalformedAtom(t *testing.T) {
	g := Graph{Facts: []Atom{
		{Subject: "", Predicate: "p", Object: "v", Prov: prov("h")},
	}}

	_, err := Canonicalize(g)
	require.Error(t, err)
}

func TestJaccard(t *testing.T) {
	a := Graph{Facts: []Atom{
		{Subject: "s1", Predicate: "p", Object: "o", Prov: prov("h")},
		{Subject: "s2", Predicate: "p", Object: "o", Prov: prov("h")},
	}}
	b := Graph{Facts: []Atom{
		{Subject: "s2", Predicate: "p", Object: "o", Prov: prov("h")},
		{Subject: "s3", Predicate: "p", Object: "o", Prov: prov("h")},
	}}

	assert.Equal(t, 1.0, Jaccard(Empty(), Empty()))
	assert.Equal(t, 1.0, Jaccard(a, a))
	assert.Equal(t, 0.0, Jaccard(a, Empty()))
	assert.InDelta(t, 1.0/3.0, Jaccard(a, b), 1e-9)
	assert.Equal(t, Jaccard(a, b), Jaccard(b, a))
}

func TestResolveValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0 C", "273.15K"},
		{"100 C", "373.15K"},
		{"32 F", "273.15K"},
		{"300 K", "300.00K"},
		{"100 USD", "100.00USD"},
		{"100 EUR", "108.00USD"},
		{"1000 UAH", "24.00USD"},
		{"plain value", "plain value"},
		{"12 parsecs", "12 parsecs"},
		{"not a number C", "not a number C"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveValue(tt.in, nil))
		})
	}
}

func TestResolver_DeterministicRepresentative(t *testing.T) {
	entities := map[string]Entity{
		"beta":  {Aliases: []string{"shared"}},
		"alpha": {Aliases: []string{"shared"}},
	}

	for i := 0; i < 10; i++ {
		r := NewResolver(entities, 0)
		assert.Equal(t, "alpha", r.Resolve("beta"))
		assert.Equal(t, "alpha", r.Resolve("shared"))
		assert.Equal(t, "alpha", r.Resolve("alpha"))
	}
}
