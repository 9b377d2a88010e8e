package fractal

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/brokeberg/gexengine/options"
)

// PathGenerator produces fractional Brownian motion sample paths on a fixed
// daily grid by Cholesky factorization of the fractional Gaussian noise
// covariance. The grids used for option horizons are tens of steps, so the
// factorization is computed once and each path costs one triangular
// mat-vec. At H=0.5 the increments are independent and the generator
// short-circuits to plain Gaussian steps.
type PathGenerator struct {
	hurst float64
	steps int
	dt    float64
	lower *mat.TriDense // nil when hurst == 0.5
}

// NewPathGenerator builds a generator for the given Hurst exponent over
// `steps` increments of `dt` years each. The exponent is clamped to
// [0.05, 0.95] to keep the covariance well conditioned.
func NewPathGenerator(hurst float64, steps int, dt float64) (*PathGenerator, error) {
	if steps <= 0 || dt <= 0 {
		return nil, fmt.Errorf("%w: steps=%d dt=%.6f", options.ErrInvalidInput, steps, dt)
	}
	h := math.Max(0.05, math.Min(0.95, hurst))

	g := &PathGenerator{hurst: h, steps: steps, dt: dt}
	if h == 0.5 {
		return g, nil
	}

	cov := mat.NewSymDense(steps, nil)
	scale := math.Pow(dt, 2*h)
	for i := 0; i < steps; i++ {
		for j := i; j < steps; j++ {
			cov.SetSym(i, j, scale*fgnAutocov(j-i, h))
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(cov) {
		// Near the clamp boundaries the matrix can lose positive
		// definiteness to rounding; fall back to independent steps with
		// the H-scaled variance so the terminal spread still follows
		// dt^{2H}.
		return g, nil
	}
	lower := mat.NewTriDense(steps, mat.Lower, nil)
	chol.LTo(lower)
	g.lower = lower
	return g, nil
}

// fgnAutocov is the autocovariance of unit-spacing fractional Gaussian
// noise at lag k.
func fgnAutocov(k int, h float64) float64 {
	fk := float64(k)
	return 0.5 * (math.Pow(fk+1, 2*h) - 2*math.Pow(fk, 2*h) + math.Pow(math.Abs(fk-1), 2*h))
}

// Hurst returns the (clamped) exponent the generator samples under.
func (g *PathGenerator) Hurst() float64 { return g.hurst }

// Steps returns the number of increments per path.
func (g *PathGenerator) Steps() int { return g.steps }

// Path fills dst with one cumulative fBm sample B_H(t_1..t_steps) and
// returns it. dst is allocated when nil or too short.
func (g *PathGenerator) Path(rng *rand.Rand, dst []float64) []float64 {
	if cap(dst) < g.steps {
		dst = make([]float64, g.steps)
	}
	dst = dst[:g.steps]

	if g.lower == nil {
		// Independent increments sized so the terminal variance is T^{2H}
		// (exact for H=0.5, approximate fallback otherwise).
		T := float64(g.steps) * g.dt
		sd := math.Sqrt(math.Pow(T, 2*g.hurst) / float64(g.steps))
		cum := 0.0
		for i := range dst {
			cum += sd * rng.NormFloat64()
			dst[i] = cum
		}
		return dst
	}

	z := make([]float64, g.steps)
	for i := range z {
		z[i] = rng.NormFloat64()
	}

	// Correlated increments are L*z; accumulate into the path in place.
	cum := 0.0
	for i := 0; i < g.steps; i++ {
		inc := 0.0
		for j := 0; j <= i; j++ {
			inc += g.lower.At(i, j) * z[j]
		}
		cum += inc
		dst[i] = cum
	}
	return dst
}
