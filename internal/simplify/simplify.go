// Package simplify reduces coordinate sequences to a vertex budget by
// searching for a Douglas-Peucker tolerance that meets it.
package simplify

import (
	"fmt"

	"github.com/paulmach/orb"
	orbsimplify "github.com/paulmach/orb/simplify"

	"github.com/beetlebugorg/annomap/internal/geo"
)

// Options controls the tolerance search.
type Options struct {
	// MinTolerance is the first tolerance tried, in degrees.
	MinTolerance float64 `mapstructure:"min_tolerance"`

	// MaxTolerance caps the tolerance. The final permitted iteration always
	// runs at this value.
	MaxTolerance float64 `mapstructure:"max_tolerance"`

	// Factor multiplies the tolerance after each attempt.
	Factor float64 `mapstructure:"factor"`

	// MaxIterations bounds the number of primitive invocations.
	MaxIterations int `mapstructure:"max_iterations"`
}

// DefaultOptions returns the search parameters used by the renderer.
func DefaultOptions() Options {
	return Options{
		MinTolerance:  1e-6,
		MaxTolerance:  1e-3,
		Factor:        2,
		MaxIterations: 10,
	}
}

// Result describes one adaptive simplification.
type Result struct {
	Coords []orb.Point

	// Tolerance is the last tolerance attempted.
	Tolerance float64

	// Iterations is the number of primitive invocations made.
	Iterations int

	// Reached reports whether len(Coords) <= target.
	Reached bool
}

// Simplify reduces coords to at most target vertices using DefaultOptions.
// The returned sequence is always usable; a non-nil error is a recovered
// *geo.ErrSimplification and means coords came back unchanged.
func Simplify(coords []orb.Point, kind geo.Kind, target int) ([]orb.Point, error) {
	res, err := Adaptive(coords, kind, target, DefaultOptions())
	return res.Coords, err
}

// Adaptive runs the tolerance search. Sequences already within target, points
// and multi-geometries (simplified per part by the caller) are returned as is.
//
// The tolerance starts at MinTolerance and grows by Factor, capped at
// MaxTolerance. The first result within target wins. Otherwise the smallest
// valid result is returned once MaxTolerance has been tried.
func Adaptive(coords []orb.Point, kind geo.Kind, target int, opts Options) (Result, error) {
	res := Result{Coords: coords, Reached: len(coords) <= target}
	if res.Reached || kind == geo.KindPoint || kind == geo.KindMultiGeometry {
		return res, nil
	}
	if target < kind.MinVertices() {
		target = kind.MinVertices()
	}
	if err := geo.ValidateSequence(coords, kind); err != nil {
		return res, &geo.ErrSimplification{Kind: kind, Reason: fmt.Sprintf("malformed input: %v", err)}
	}

	iterations := opts.MaxIterations
	if iterations < 1 {
		iterations = 1
	}
	factor := opts.Factor
	if factor <= 1 {
		factor = 2
	}

	var lastErr error
	valid := false
	tol := opts.MinTolerance
	for i := 0; i < iterations; i++ {
		if i == iterations-1 || tol > opts.MaxTolerance {
			tol = opts.MaxTolerance
		}
		res.Tolerance = tol
		res.Iterations = i + 1

		out, err := douglasPeucker(coords, kind, tol)
		if err == nil {
			err = geo.ValidateSequence(out, kind)
		}
		if err != nil {
			lastErr = err
		} else {
			valid = true
			if len(out) < len(res.Coords) {
				res.Coords = out
			}
		}

		if len(res.Coords) <= target {
			res.Reached = true
			return res, nil
		}
		if tol >= opts.MaxTolerance {
			break
		}
		tol *= factor
	}

	if !valid && lastErr != nil {
		return Result{Coords: coords, Tolerance: res.Tolerance, Iterations: res.Iterations},
			&geo.ErrSimplification{Kind: kind, Reason: lastErr.Error()}
	}
	return res, nil
}

// douglasPeucker runs the primitive on a copy of coords. Rings are simplified
// as closed line strings so both ends stay pinned to the closing vertex.
func douglasPeucker(coords []orb.Point, kind geo.Kind, tol float64) (out []orb.Point, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &geo.ErrSimplification{Kind: kind, Reason: fmt.Sprintf("primitive panicked: %v", r)}
		}
	}()

	ls := orb.LineString(coords).Clone()
	switch s := orbsimplify.DouglasPeucker(tol).Simplify(ls).(type) {
	case orb.LineString:
		return []orb.Point(s), nil
	case nil:
		return nil, &geo.ErrSimplification{Kind: kind, Reason: "primitive returned no geometry"}
	default:
		return nil, &geo.ErrSimplification{Kind: kind, Reason: fmt.Sprintf("unexpected %T", s)}
	}
}
