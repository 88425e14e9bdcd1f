package soul

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/lambda-foundation/bridge/fact"
	"github.com/lambda-foundation/bridge/ir"
)

// Prefixes distinguish the two digest spaces in display form.
const (
	IRPrefix   = "λ"
	TextPrefix = "τ"
)

// shortHexLen is the number of hex characters in the display form.
const shortHexLen = 8

// Digest is a content hash over a canonical representation.
type Digest struct {
	prefix string
	sum    [sha256.Size]byte
}

// Short returns the display form, e.g. "λ-3fa2b911".
func (d Digest) Short() string {
	return d.prefix + "-" + hex.EncodeToString(d.sum[:])[:shortHexLen]
}

// Hex returns the full 256-bit digest as 64 hex characters.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.sum[:])
}

// Sum returns the raw digest bytes.
func (d Digest) Sum() [sha256.Size]byte { return d.sum }

// Equal reports whether two digests are identical, prefix included.
func (d Digest) Equal(other Digest) bool {
	return d.prefix == other.prefix && d.sum == other.sum
}

func (d Digest) String() string { return d.Short() }

// Compute canonicalizes t and hashes its canonical serialization. Passing
// an already-canonical term is fine: canonicalization is idempotent, so
// the digest is the same either way.
func Compute(t *ir.Term, opts ...ir.Option) (Digest, error) {
	canonical, err := ir.Canonicalize(t, opts...)
	if err != nil {
		return Digest{}, err
	}
	var b strings.Builder
	writeTerm(&b, canonical)
	return Digest{prefix: IRPrefix, sum: sha256.Sum256([]byte(b.String()))}, nil
}

// ComputeText canonicalizes g and hashes its fact keys. Provenance is
// excluded: the soul identifies what the facts say, not where they came
// from.
func ComputeText(g fact.Graph, opts ...fact.CanonicalizeOption) (Digest, error) {
	canonical, err := fact.Canonicalize(g, opts...)
	if err != nil {
		return Digest{}, err
	}
	serialized := strings.Join(canonical.Keys(), "\n")
	return Digest{prefix: TextPrefix, sum: sha256.Sum256([]byte(serialized))}, nil
}

// writeTerm emits the canonical JSON serialization of a term. Keys are
// written in a fixed alphabetical order per variant; this is an explicit
// encoder rather than encoding/json so field ordering can never drift.
func writeTerm(b *strings.Builder, t *ir.Term) {
	switch t.Kind {
	case ir.KindVar:
		b.WriteString(`{"type":"var","value":`)
		b.WriteString(strconv.Quote(t.Name))
		b.WriteByte('}')
	case ir.KindLam:
		b.WriteString(`{"body":`)
		writeTerm(b, t.Body)
		b.WriteString(`,"param":`)
		b.WriteString(strconv.Quote(t.Name))
		b.WriteString(`,"type":"lam"}`)
	case ir.KindApp:
		b.WriteString(`{"arg":`)
		if t.Arg != nil {
			writeTerm(b, t.Arg)
		} else {
			b.WriteString(`{"type":"var","value":"` + ir.SentinelNil + `"}`)
		}
		b.WriteString(`,"fn":`)
		writeTerm(b, t.Fn)
		b.WriteString(`,"type":"app"}`)
	case ir.KindNum:
		b.WriteString(`{"type":"num","value":`)
		b.WriteString(ir.FormatNum(t.Num))
		b.WriteByte('}')
	case ir.KindBool:
		b.WriteString(`{"type":"bool","value":`)
		b.WriteString(strconv.FormatBool(t.Bool))
		b.WriteByte('}')
	case ir.KindList:
		b.WriteString(`{"items":[`)
		for i, item := range t.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			writeTerm(b, item)
		}
		b.WriteString(`],"type":"list"}`)
	}
}
