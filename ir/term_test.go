package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerm_Validate(t *testing.T) {
	tests := []struct {
		name     string
		term     *Term
		wantErr  bool
		wantPath string
	}{
		{
			name: "well-formed tree",
			term: Lam("x", App(Var("x"), List(Num(1), Bool(true)))),
		},
		{
			name: "app with nil arg is permitted",
			term: &Term{Kind: KindApp, Fn: Var("f")},
		},
		{
			name:     "nested lam without body",
			term:     App(Var("f"), &Term{Kind: KindLam, Name: "x"}),
			wantErr:  true,
			wantPath: "/arg",
		},
		{
			name:     "nil list item",
			term:     List(Num(1), nil),
			wantErr:  true,
			wantPath: "/items/1",
		},
		{
			name:     "unknown kind",
			term:     &Term{Kind: Kind("focus")},
			wantErr:  true,
			wantPath: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.term.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantPath, verr.Path)
		})
	}
}

func TestTerm_JSONRoundTrip(t *testing.T) {
	term := Lam("x", App(Var("x"), List(Num(5), Num(2.5), Bool(false))))

	data, err := json.Marshal(term)
	require.NoError(t, err)

	var back Term
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, Equal(term, &back))
}

func TestTerm_UnmarshalLensWireFormat(t *testing.T) {
	// The default a lens assembler supplies for missing IR.
	var term Term
	require.NoError(t, json.Unmarshal([]byte(`{"type":"var","value":"nil"}`), &term))

	assert.Equal(t, KindVar, term.Kind)
	assert.Equal(t, SentinelNil, term.Name)

	var lam Term
	require.NoError(t, json.Unmarshal(
		[]byte(`{"type":"lam","param":"x","body":{"type":"app","fn":{"type":"var","value":"x"},"arg":{"type":"num","value":3}}}`),
		&lam,
	))
	assert.True(t, Equal(&lam, Lam("x", App(Var("x"), Num(3)))))
}

func TestTerm_UnmarshalRejectsUnknownType(t *testing.T) {
	var term Term
	err := json.Unmarshal([]byte(`{"type":"letrec"}`), &term)
	require.Error(t, err)
}

func TestTerm_String(t *testing.T) {
	assert.Equal(t, "(lam x (var x))", Lam("x", Var("x")).String())
	assert.Equal(t, "(app (var f) 5)", App(Var("f"), Num(5)).String())
	assert.Equal(t, "[1 true]", List(Num(1), Bool(true)).String())
	assert.Equal(t, "2.5", Num(2.5).String())
	assert.Equal(t, "5", Num(5).String())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(Var("x"), nil))
	assert.False(t, Equal(Var("x"), Var("y")))
	assert.False(t, Equal(Num(1), Bool(true)))
	assert.False(t, Equal(List(Num(1)), List(Num(1), Num(2))))
	assert.True(t, Equal(
		Lam("v0", App(Var("v0"), List(Num(1)))),
		Lam("v0", App(Var("v0"), List(Num(1)))),
	))
	assert.False(t, Equal(
		Lam("v0", Var("v0")),
		Lam("v1", Var("v1")),
	))
}
