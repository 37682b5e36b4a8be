package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// BoundaryPadding is the margin, in degrees, added around a boundary polygon
// when the render bounding box is derived from it.
const BoundaryPadding = 0.001

// Bounds represents a geographic bounding box in WGS-84 coordinates.
//
// Coordinates are in decimal degrees.
type Bounds struct {
	MinLon float64 // Western edge
	MaxLon float64 // Eastern edge
	MinLat float64 // Southern edge
	MaxLat float64 // Northern edge
}

// LonRange returns the east-west extent in degrees.
func (b Bounds) LonRange() float64 { return b.MaxLon - b.MinLon }

// LatRange returns the north-south extent in degrees.
func (b Bounds) LatRange() float64 { return b.MaxLat - b.MinLat }

// Validate reports an *ErrDegenerateBounds when either extent is not
// strictly positive or an edge is not a finite number.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.MinLon, b.MaxLon, b.MinLat, b.MaxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ErrDegenerateBounds{Bounds: b, Reason: "non-finite edge"}
		}
	}
	if b.LonRange() <= 0 {
		return &ErrDegenerateBounds{Bounds: b, Reason: "longitude range must be positive"}
	}
	if b.LatRange() <= 0 {
		return &ErrDegenerateBounds{Bounds: b, Reason: "latitude range must be positive"}
	}
	return nil
}

// Contains returns true if the point is within the bounds.
func (b Bounds) Contains(p orb.Point) bool {
	return p.Lon() >= b.MinLon && p.Lon() <= b.MaxLon &&
		p.Lat() >= b.MinLat && p.Lat() <= b.MaxLat
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxLon < b.MinLon ||
		other.MinLon > b.MaxLon ||
		other.MaxLat < b.MinLat ||
		other.MinLat > b.MaxLat)
}

// Expand returns a new Bounds expanded by the given margin in all directions.
//
// Margin is in decimal degrees.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinLon: b.MinLon - margin,
		MaxLon: b.MaxLon + margin,
		MinLat: b.MinLat - margin,
		MaxLat: b.MaxLat + margin,
	}
}

// Clamp limits p to the bounds grown by margin.
func (b Bounds) Clamp(p orb.Point, margin float64) orb.Point {
	lon := math.Max(b.MinLon-margin, math.Min(b.MaxLon+margin, p.Lon()))
	lat := math.Max(b.MinLat-margin, math.Min(b.MaxLat+margin, p.Lat()))
	return orb.Point{lon, lat}
}

// Bound converts to an orb.Bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// BoundsOf returns the smallest bounds covering every coordinate. Non-finite
// coordinates are ignored. An empty result is the zero Bounds.
func BoundsOf(coords []orb.Point) Bounds {
	var bounds Bounds
	first := true
	for _, c := range coords {
		if ValidateCoordinate(c) != nil {
			continue
		}
		if first {
			bounds = Bounds{MinLon: c.Lon(), MaxLon: c.Lon(), MinLat: c.Lat(), MaxLat: c.Lat()}
			first = false
			continue
		}
		if c.Lon() < bounds.MinLon {
			bounds.MinLon = c.Lon()
		}
		if c.Lon() > bounds.MaxLon {
			bounds.MaxLon = c.Lon()
		}
		if c.Lat() < bounds.MinLat {
			bounds.MinLat = c.Lat()
		}
		if c.Lat() > bounds.MaxLat {
			bounds.MaxLat = c.Lat()
		}
	}
	return bounds
}

// FromBoundary derives the render bounding box from a boundary polygon, grown
// by padding degrees on every side.
func FromBoundary(boundary []orb.Point, padding float64) (Bounds, error) {
	if len(boundary) == 0 {
		return Bounds{}, &ErrDegenerateBounds{Reason: "boundary has no coordinates"}
	}
	raw := BoundsOf(boundary)
	if raw.LonRange() <= 0 || raw.LatRange() <= 0 {
		return Bounds{}, &ErrDegenerateBounds{Bounds: raw, Reason: "boundary has zero extent"}
	}
	b := raw.Expand(padding)
	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}
