package geo

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Boundary is the ring outlining the area of interest. Distances and buffers
// are in degrees.
type Boundary struct {
	ring    orb.Ring
	outline orb.LineString
}

// NewBoundary closes ring if needed. It returns nil for fewer than three
// coordinates.
func NewBoundary(ring []orb.Point) *Boundary {
	if len(ring) < 3 {
		return nil
	}
	r := append(orb.Ring(nil), ring...)
	if !r[0].Equal(r[len(r)-1]) {
		r = append(r, r[0])
	}
	return &Boundary{ring: r, outline: orb.LineString(r)}
}

// Near reports whether p lies inside the ring or within buffer of its
// outline.
func (b *Boundary) Near(p orb.Point, buffer float64) bool {
	if ValidateCoordinate(p) != nil {
		return false
	}
	return planar.RingContains(b.ring, p) || planar.DistanceFrom(b.outline, p) <= buffer
}

// Touches reports whether any part of line lies inside the ring or within
// buffer of its outline, including segments crossing it between nodes.
func (b *Boundary) Touches(line []orb.Point, buffer float64) bool {
	for _, p := range line {
		if b.Near(p, buffer) {
			return true
		}
	}
	for i := 0; i+1 < len(line); i++ {
		for k := 0; k+1 < len(b.ring); k++ {
			if SegmentDistance(line[i], line[i+1], b.ring[k], b.ring[k+1]) <= buffer {
				return true
			}
		}
	}
	return false
}

// Clip returns the runs of line that lie inside the ring. Each segment is cut
// where it crosses the outline; a cut piece is kept when its midpoint is
// within buffer of the ring, so pieces running just outside stay whole.
func (b *Boundary) Clip(line []orb.Point, buffer float64) [][]orb.Point {
	var out [][]orb.Point
	var cur []orb.Point
	flush := func() {
		if len(cur) >= 2 {
			out = append(out, cur)
		}
		cur = nil
	}

	for i := 0; i+1 < len(line); i++ {
		a, c := line[i], line[i+1]
		ts := []float64{0, 1}
		for k := 0; k+1 < len(b.ring); k++ {
			if t, ok := crossing(a, c, b.ring[k], b.ring[k+1]); ok {
				ts = append(ts, t)
			}
		}
		sort.Float64s(ts)

		for j := 0; j+1 < len(ts); j++ {
			if ts[j+1]-ts[j] < 1e-12 {
				continue
			}
			if !b.Near(lerp(a, c, (ts[j]+ts[j+1])/2), buffer) {
				flush()
				continue
			}
			start, end := lerp(a, c, ts[j]), lerp(a, c, ts[j+1])
			if len(cur) == 0 || !cur[len(cur)-1].Equal(start) {
				if len(cur) > 0 {
					flush()
				}
				cur = append(cur, start)
			}
			cur = append(cur, end)
		}
	}
	flush()
	return out
}

// SegmentsIntersect reports whether segments ab and cd share a point.
func SegmentsIntersect(a, b, c, d orb.Point) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(c, d, a)) ||
		(d2 == 0 && onSegment(c, d, b)) ||
		(d3 == 0 && onSegment(a, b, c)) ||
		(d4 == 0 && onSegment(a, b, d))
}

// SegmentDistance returns the closest-point distance between segments ab
// and cd.
func SegmentDistance(a, b, c, d orb.Point) float64 {
	if SegmentsIntersect(a, b, c, d) {
		return 0
	}
	return math.Min(
		math.Min(planar.DistanceFromSegment(c, d, a), planar.DistanceFromSegment(c, d, b)),
		math.Min(planar.DistanceFromSegment(a, b, c), planar.DistanceFromSegment(a, b, d)),
	)
}

func orient(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

// crossing returns the parameter along ac at which it crosses pq, for
// non-parallel segments that meet.
func crossing(a, c, p, q orb.Point) (float64, bool) {
	r := orb.Point{c[0] - a[0], c[1] - a[1]}
	s := orb.Point{q[0] - p[0], q[1] - p[1]}
	den := r[0]*s[1] - r[1]*s[0]
	if den == 0 {
		return 0, false
	}
	ap := orb.Point{p[0] - a[0], p[1] - a[1]}
	t := (ap[0]*s[1] - ap[1]*s[0]) / den
	u := (ap[0]*r[1] - ap[1]*r[0]) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

func lerp(a, c orb.Point, t float64) orb.Point {
	switch t {
	case 0:
		return a
	case 1:
		return c
	}
	return orb.Point{a[0] + (c[0]-a[0])*t, a[1] + (c[1]-a[1])*t}
}
