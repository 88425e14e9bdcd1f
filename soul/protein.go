package soul

import "math"

// DefaultProteinDim is the default protein vector length.
const DefaultProteinDim = 16

// Protein derives a fixed-length embedding from the IR and text digests.
// Bytes of the two digest sums are interleaved and scaled into [0, 1).
// The vector is a coarse similarity pre-filter only; it carries no
// correctness signal.
func Protein(irDigest, textDigest Digest, dim int) []float64 {
	if dim <= 0 {
		dim = DefaultProteinDim
	}

	a, b := irDigest.Sum(), textDigest.Sum()
	vec := make([]float64, dim)
	for i := 0; i < dim; i++ {
		var by byte
		if i%2 == 0 {
			by = a[(i/2)%len(a)]
		} else {
			by = b[(i/2)%len(b)]
		}
		vec[i] = float64(by) / 256.0
	}
	return vec
}

// Cosine computes the cosine similarity of two protein vectors. Vectors of
// different lengths or zero magnitude score 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
