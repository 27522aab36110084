// Package isotonic implements weighted isotonic regression via the
// pool-adjacent-violators algorithm. The fitted curve is non-decreasing
// by construction; out-of-range inputs are clipped to the boundary
// values, never extrapolated.
package isotonic

import (
	"fmt"
	"sort"

	"github.com/PGryllos/scikit-learn/estimator"
)

// Regression is a fitted non-decreasing map from x to y. Between knots
// the prediction interpolates linearly; outside the fitted range it
// clips to the first or last knot value.
type Regression struct {
	xs []float64
	ys []float64
}

type block struct {
	xLo, xHi float64
	sum      float64 // weighted y sum
	weight   float64
}

func (b block) mean() float64 { return b.sum / b.weight }

// Fit estimates the monotone map from the observations (x[i], y[i]).
// A nil weights slice means equal weighting; zero-weight samples are
// dropped. Duplicate x values are pooled by weighted mean before the
// monotonicity pass.
func (r *Regression) Fit(x, y, weights []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d x values for %d y values", estimator.ErrDataShape, len(x), len(y))
	}
	if weights != nil && len(weights) != len(x) {
		return fmt.Errorf("%w: %d weights for %d samples", estimator.ErrDataShape, len(weights), len(x))
	}
	if len(x) == 0 {
		return fmt.Errorf("%w: no samples", estimator.ErrDataShape)
	}

	type obs struct{ x, y, w float64 }
	pts := make([]obs, 0, len(x))
	for i := range x {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if w <= 0 {
			continue
		}
		pts = append(pts, obs{x: x[i], y: y[i], w: w})
	}
	if len(pts) == 0 {
		return fmt.Errorf("%w: all samples have zero weight", estimator.ErrDataShape)
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].x < pts[j].x })

	// Pool ties in x first so the violator pass sees strictly
	// increasing abscissae.
	var blocks []block
	for _, p := range pts {
		if n := len(blocks); n > 0 && blocks[n-1].xHi == p.x {
			blocks[n-1].sum += p.y * p.w
			blocks[n-1].weight += p.w
			continue
		}
		blocks = append(blocks, block{xLo: p.x, xHi: p.x, sum: p.y * p.w, weight: p.w})
	}

	// Pool adjacent violators: merge any descending neighbour pair and
	// re-check against the new predecessor.
	stack := blocks[:0]
	for _, b := range blocks {
		stack = append(stack, b)
		for n := len(stack); n > 1 && stack[n-2].mean() > stack[n-1].mean(); n = len(stack) {
			stack[n-2].xHi = stack[n-1].xHi
			stack[n-2].sum += stack[n-1].sum
			stack[n-2].weight += stack[n-1].weight
			stack = stack[:n-1]
		}
	}

	r.xs = r.xs[:0]
	r.ys = r.ys[:0]
	for _, b := range stack {
		r.xs = append(r.xs, b.xLo)
		r.ys = append(r.ys, b.mean())
		if b.xHi != b.xLo {
			r.xs = append(r.xs, b.xHi)
			r.ys = append(r.ys, b.mean())
		}
	}
	return nil
}

// Predict maps each input through the fitted curve. It returns an error
// if Fit has not succeeded.
func (r *Regression) Predict(x []float64) ([]float64, error) {
	if len(r.xs) == 0 {
		return nil, estimator.ErrNotFitted
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = r.at(v)
	}
	return out, nil
}

func (r *Regression) at(v float64) float64 {
	last := len(r.xs) - 1
	if v <= r.xs[0] {
		return r.ys[0]
	}
	if v >= r.xs[last] {
		return r.ys[last]
	}
	// First knot strictly greater than v; interpolate on [j-1, j].
	j := sort.SearchFloat64s(r.xs, v)
	if r.xs[j] == v {
		return r.ys[j]
	}
	x0, x1 := r.xs[j-1], r.xs[j]
	y0, y1 := r.ys[j-1], r.ys[j]
	return y0 + (y1-y0)*(v-x0)/(x1-x0)
}

// Knots returns the fitted breakpoints as parallel x and y slices.
func (r *Regression) Knots() (xs, ys []float64) {
	xs = append(xs, r.xs...)
	ys = append(ys, r.ys...)
	return xs, ys
}
