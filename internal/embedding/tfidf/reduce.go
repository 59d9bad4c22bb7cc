package tfidf

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Strategy names a reduction algorithm.
type Strategy string

const (
	StrategySVD   Strategy = "svd"
	StrategyPower Strategy = "power"
)

// DefaultPowerIterations is enough for the dominant directions of a sparse
// term-document matrix to settle.
const DefaultPowerIterations = 10

// Reducer learns a targetDim x terms projection from a terms x documents
// TF-IDF matrix. Implementations must be deterministic.
type Reducer interface {
	Strategy() Strategy
	Reduce(x *mat.Dense, targetDim int) *mat.Dense
}

// ReducerFor returns the reducer registered under s, defaulting to SVD.
func ReducerFor(s Strategy) Reducer {
	if s == StrategyPower {
		return PowerReducer{}
	}
	return SVDReducer{}
}

// SVDReducer projects onto the leading left singular vectors, each scaled by
// the square root of its singular value.
type SVDReducer struct{}

func (SVDReducer) Strategy() Strategy { return StrategySVD }

func (SVDReducer) Reduce(x *mat.Dense, targetDim int) *mat.Dense {
	rows, _ := x.Dims()
	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return identityProjection(targetDim, rows)
	}
	var u mat.Dense
	svd.UTo(&u)
	values := svd.Values(nil)

	components := mat.NewDense(targetDim, rows, nil)
	for i := 0; i < targetDim; i++ {
		w := math.Sqrt(values[i])
		for j := 0; j < rows; j++ {
			components.Set(i, j, u.At(j, i)*w)
		}
	}
	return components
}

// PowerReducer approximates the leading eigenvectors of the term covariance
// X·Xᵀ/N by power iteration with Gram-Schmidt deflation. The covariance is
// applied as X·(Xᵀ·v)/N so it is never materialised. Rows are scaled by
// sqrt(σ) like SVDReducer, so both produce the same kind of projection.
type PowerReducer struct {
	Iterations int
}

func (PowerReducer) Strategy() Strategy { return StrategyPower }

func (p PowerReducer) Reduce(x *mat.Dense, targetDim int) *mat.Dense {
	iterations := p.Iterations
	if iterations <= 0 {
		iterations = DefaultPowerIterations
	}
	rows, cols := x.Dims()
	n := float64(cols)
	components := mat.NewDense(targetDim, rows, nil)

	var accepted []*mat.VecDense
	proj := mat.NewVecDense(cols, nil)
	for axis := 0; axis < targetDim; axis++ {
		v := mat.NewVecDense(rows, seedVector(axis, rows))
		orthogonalize(v, accepted)
		if !normalize(v) {
			continue
		}
		ok := true
		for it := 0; it < iterations; it++ {
			proj.MulVec(x.T(), v)
			next := mat.NewVecDense(rows, nil)
			next.MulVec(x, proj)
			next.ScaleVec(1/n, next)
			orthogonalize(next, accepted)
			if !normalize(next) {
				ok = false
				break
			}
			v = next
		}
		if !ok {
			continue
		}

		proj.MulVec(x.T(), v)
		lambda := mat.Dot(proj, proj) / n
		w := math.Sqrt(math.Sqrt(lambda * n))
		for j := 0; j < rows; j++ {
			components.Set(axis, j, v.AtVec(j)*w)
		}
		accepted = append(accepted, v)
	}
	return components
}

// seedVector is a low-discrepancy start vector that depends only on the
// axis and component indices, so retraining the same corpus is reproducible.
func seedVector(axis, size int) []float64 {
	const (
		a1 = 0.7548776662466927
		a2 = 0.5698402909980532
	)
	out := make([]float64, size)
	for j := range out {
		f := float64(axis+1)*a1 + float64(j+1)*a2
		out[j] = f - math.Floor(f) - 0.5
	}
	return out
}

func orthogonalize(v *mat.VecDense, basis []*mat.VecDense) {
	for _, b := range basis {
		v.AddScaledVec(v, -mat.Dot(v, b), b)
	}
}

func normalize(v *mat.VecDense) bool {
	norm := mat.Norm(v, 2)
	if norm < 1e-12 {
		return false
	}
	v.ScaleVec(1/norm, v)
	return true
}

func identityProjection(targetDim, terms int) *mat.Dense {
	components := mat.NewDense(targetDim, terms, nil)
	for i := 0; i < targetDim && i < terms; i++ {
		components.Set(i, i, 1)
	}
	return components
}
