// Package vecmath holds the small numeric kernels shared by the embedders.
package vecmath

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return float32(math.Sqrt(float64(vek32.Dot(v, v))))
}

// L2Normalize scales v in place to unit length. Zero vectors are left as is.
func L2Normalize(v []float32) {
	n := Norm(v)
	if n > 0 {
		vek32.MulNumber_Inplace(v, 1/n)
	}
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Cosine returns the cosine similarity of a and b. Mismatched lengths and
// zero vectors yield 0 instead of NaN.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := vek32.Dot(a, b) / (na * nb)
	return max(-1, min(1, sim))
}
