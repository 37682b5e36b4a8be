// Package placement finds a position for each label that avoids the labels
// already placed in the same render pass.
//
// Every attempt walks a fixed sequence of states:
//
//	INITIAL -> CHECK_DEFAULT -> SEARCH_CARDINAL -> SEARCH_SPIRAL -> FALLBACK_MIN_OVERLAP
//
// and stops at the first state that accepts a position. The fallback always
// accepts, so a label is never dropped; it is placed where it overlaps the
// least and the overlap is reported.
package placement

import (
	"math"

	"seehuhn.de/go/geom/vec"

	"github.com/beetlebugorg/annomap/internal/labels"
)

// State is a step of the placement state machine.
type State int

const (
	StateInitial State = iota
	StateCheckDefault
	StateSearchCardinal
	StateSearchSpiral
	StateFallbackMinOverlap
	StatePlaced
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateCheckDefault:
		return "default"
	case StateSearchCardinal:
		return "cardinal"
	case StateSearchSpiral:
		return "spiral"
	case StateFallbackMinOverlap:
		return "min_overlap"
	case StatePlaced:
		return "placed"
	default:
		return "unknown"
	}
}

// Options configures the candidate search.
type Options struct {
	// SearchBuffer grows a candidate's rectangle during collision tests.
	// The fallback uses half of it.
	SearchBuffer float64 `mapstructure:"search_buffer"`

	// FootprintBuffer grows the rectangle recorded for an accepted label.
	FootprintBuffer float64 `mapstructure:"footprint_buffer"`

	// CardinalOffsets are tried in order after the default position.
	CardinalOffsets []vec.Vec2 `mapstructure:"-"`

	SpiralRings  int     `mapstructure:"spiral_rings"`
	SpiralSteps  int     `mapstructure:"spiral_steps"`
	SpiralRadius float64 `mapstructure:"spiral_radius"`
}

// DefaultOptions returns the search used by the renderer.
func DefaultOptions() Options {
	return Options{
		SearchBuffer:    20,
		FootprintBuffer: 5,
		CardinalOffsets: DefaultCardinalOffsets(),
		SpiralRings:     3,
		SpiralSteps:     12,
		SpiralRadius:    60,
	}
}

// DefaultCardinalOffsets returns N, S, E, W, the four diagonals, then N, S,
// E, W again farther out. Pixel y grows downward.
func DefaultCardinalOffsets() []vec.Vec2 {
	return []vec.Vec2{
		{X: 0, Y: -30}, {X: 0, Y: 30}, {X: 30, Y: 0}, {X: -30, Y: 0},
		{X: 30, Y: -30}, {X: -30, Y: -30}, {X: 30, Y: 30}, {X: -30, Y: 30},
		{X: 0, Y: -45}, {X: 0, Y: 45}, {X: 45, Y: 0}, {X: -45, Y: 0},
	}
}

// SpiralOffsets returns the ring positions, innermost ring first, starting
// east of the anchor on each ring.
func (o Options) SpiralOffsets() []vec.Vec2 {
	if o.SpiralRings <= 0 || o.SpiralSteps <= 0 {
		return nil
	}
	out := make([]vec.Vec2, 0, o.SpiralRings*o.SpiralSteps)
	for ring := 1; ring <= o.SpiralRings; ring++ {
		r := float64(ring) * o.SpiralRadius / float64(o.SpiralRings)
		for step := 0; step < o.SpiralSteps; step++ {
			s, c := math.Sincos(2 * math.Pi * float64(step) / float64(o.SpiralSteps))
			out = append(out, vec.Vec2{X: r * c, Y: r * s})
		}
	}
	return out
}

// Result is the outcome of one placement.
type Result struct {
	Anchor        vec.Vec2
	Angle         float64
	Width, Height float64

	// State is the state that accepted the position.
	State State

	// Overlap is the area the label shares with earlier labels. It is zero
	// unless State is StateFallbackMinOverlap.
	Overlap float64
}

// Resolver places labels into a Context.
type Resolver struct {
	opts     Options
	cardinal []vec.Vec2
	spiral   []vec.Vec2
}

// NewResolver precomputes the candidate offsets.
func NewResolver(opts Options) *Resolver {
	return &Resolver{
		opts:     opts,
		cardinal: append([]vec.Vec2(nil), opts.CardinalOffsets...),
		spiral:   opts.SpiralOffsets(),
	}
}

// Resolve places a width x height label rotated by angle degrees as close to
// anchor as the placed footprints allow and records its footprint in ctx.
// It always returns a finite position.
func (r *Resolver) Resolve(ctx *Context, anchor vec.Vec2, width, height, angle float64) Result {
	anchor = finiteVec(anchor)
	width, height, angle = finiteSize(width), finiteSize(height), finite(angle)

	res := Result{Angle: angle, Width: width, Height: height}
	state := StateInitial
	for state != StatePlaced {
		switch state {
		case StateInitial:
			state = StateCheckDefault

		case StateCheckDefault:
			if r.free(ctx, anchor, width, height, angle) {
				res.Anchor, res.State, state = anchor, StateCheckDefault, StatePlaced
			} else {
				state = StateSearchCardinal
			}

		case StateSearchCardinal:
			if p, ok := r.search(ctx, anchor, r.cardinal, width, height, angle); ok {
				res.Anchor, res.State, state = p, StateSearchCardinal, StatePlaced
			} else {
				state = StateSearchSpiral
			}

		case StateSearchSpiral:
			if p, ok := r.search(ctx, anchor, r.spiral, width, height, angle); ok {
				res.Anchor, res.State, state = p, StateSearchSpiral, StatePlaced
			} else {
				state = StateFallbackMinOverlap
			}

		case StateFallbackMinOverlap:
			res.Anchor, res.Overlap = r.minOverlap(ctx, anchor, width, height, angle)
			res.State, state = StateFallbackMinOverlap, StatePlaced
		}
	}

	ctx.add(labels.BoundingQuad(res.Anchor, width, height, angle, r.opts.FootprintBuffer), res.Overlap)
	return res
}

func (r *Resolver) search(ctx *Context, anchor vec.Vec2, offsets []vec.Vec2, w, h, angle float64) (vec.Vec2, bool) {
	for _, off := range offsets {
		p := anchor.Add(off)
		if r.free(ctx, p, w, h, angle) {
			return p, true
		}
	}
	return vec.Vec2{}, false
}

func (r *Resolver) free(ctx *Context, p vec.Vec2, w, h, angle float64) bool {
	q := labels.BoundingQuad(p, w, h, angle, r.opts.SearchBuffer)
	for _, a := range ctx.Query(q.Envelope()) {
		if Intersects(q, a.Quad) {
			return false
		}
	}
	return true
}

// minOverlap evaluates the default position and every cardinal and spiral
// offset; the earliest candidate with the least total overlap wins.
func (r *Resolver) minOverlap(ctx *Context, anchor vec.Vec2, w, h, angle float64) (vec.Vec2, float64) {
	best, bestArea := anchor, math.Inf(1)

	try := func(p vec.Vec2) {
		q := labels.BoundingQuad(p, w, h, angle, r.opts.SearchBuffer/2)
		area := 0.0
		for _, a := range ctx.Query(q.Envelope()) {
			area += OverlapArea(q, a.Quad)
		}
		if area < bestArea {
			best, bestArea = p, area
		}
	}

	try(anchor)
	for _, off := range r.cardinal {
		try(anchor.Add(off))
	}
	for _, off := range r.spiral {
		try(anchor.Add(off))
	}
	return best, bestArea
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func finiteSize(v float64) float64 {
	return math.Max(finite(v), 0)
}

func finiteVec(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: finite(v.X), Y: finite(v.Y)}
}
