// Package projector maps geographic coordinates onto a pixel canvas using a
// single aspect-ratio-preserving linear scale.
package projector

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/beetlebugorg/annomap/internal/geo"
)

// ClampMargin is how far, in degrees, a coordinate may lie outside the
// bounding box before it is pulled back onto the box edge.
const ClampMargin = 0.001

// Projector converts coordinates for one bounding box and canvas.
type Projector struct {
	bounds        geo.Bounds
	width, height float64
	padding       float64
	scale         float64
	m             matrix.Matrix
}

// New validates the bounding box and canvas and precomputes the transform.
//
// padding is the fraction of each canvas dimension left empty on either side,
// so the content fits within size*(1-2*padding).
func New(bounds geo.Bounds, width, height, padding float64) (*Projector, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if !(width > 0) || !(height > 0) {
		return nil, &geo.ErrDegenerateBounds{
			Bounds: bounds,
			Reason: fmt.Sprintf("canvas %gx%g must have positive size", width, height),
		}
	}
	if !(padding >= 0 && padding < 0.5) {
		return nil, &geo.ErrDegenerateBounds{
			Bounds: bounds,
			Reason: fmt.Sprintf("padding fraction %g must be in [0, 0.5)", padding),
		}
	}

	lonRange, latRange := bounds.LonRange(), bounds.LatRange()
	effW := width * (1 - 2*padding)
	effH := height * (1 - 2*padding)
	scale := math.Min(effW/lonRange, effH/latRange)

	xOff := (width - lonRange*scale) / 2
	yOff := (height - latRange*scale) / 2

	// x = xOff + (lon-minLon)*scale, y = yOff + (maxLat-lat)*scale
	m := matrix.Matrix{
		scale, 0,
		0, -scale,
		xOff - bounds.MinLon*scale, yOff + bounds.MaxLat*scale,
	}

	return &Projector{
		bounds:  bounds,
		width:   width,
		height:  height,
		padding: padding,
		scale:   scale,
		m:       m,
	}, nil
}

// Project maps one coordinate to pixels. A non-finite coordinate yields the
// canvas center together with an *geo.ErrInvalidCoordinate; the returned
// point is always usable.
func (p *Projector) Project(c orb.Point) (vec.Vec2, error) {
	if err := geo.ValidateCoordinate(c); err != nil {
		return p.Center(), err
	}
	c = p.bounds.Clamp(c, ClampMargin)
	return apply(p.m, c.Lon(), c.Lat()), nil
}

// ProjectAll projects a sequence. Invalid coordinates are replaced by the
// canvas center and reported together in the returned error.
func (p *Projector) ProjectAll(coords []orb.Point) ([]vec.Vec2, error) {
	out := make([]vec.Vec2, len(coords))
	var errs []error
	for i, c := range coords {
		v, err := p.Project(c)
		if err != nil {
			errs = append(errs, err)
		}
		out[i] = v
	}
	return out, errors.Join(errs...)
}

// Center returns the middle of the canvas.
func (p *Projector) Center() vec.Vec2 {
	return vec.Vec2{X: p.width / 2, Y: p.height / 2}
}

// Canvas returns the full canvas rectangle in pixel space.
func (p *Projector) Canvas() rect.Rect {
	return rect.Rect{LLx: 0, LLy: 0, URx: p.width, URy: p.height}
}

// Scale returns the number of pixels per degree.
func (p *Projector) Scale() float64 { return p.scale }

// Bounds returns the bounding box the projector was built for.
func (p *Projector) Bounds() geo.Bounds { return p.bounds }

// Project is the one-shot form of New followed by Projector.Project.
// Only a degenerate box or canvas fails; an invalid coordinate maps to the
// canvas center.
func Project(c orb.Point, bounds geo.Bounds, width, height, padding float64) (float64, float64, error) {
	p, err := New(bounds, width, height, padding)
	if err != nil {
		return 0, 0, err
	}
	v, _ := p.Project(c)
	return v.X, v.Y, nil
}

func apply(m matrix.Matrix, x, y float64) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*x + m[2]*y + m[4],
		Y: m[1]*x + m[3]*y + m[5],
	}
}
