// Package labels computes where a label sits relative to its geometry: the
// anchor point, the text rotation and the rotated footprint rectangle.
package labels

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// PointLabelOffset is the vertical distance in pixels between a point marker
// and its label, so the text does not cover the marker.
const PointLabelOffset = 15.0

// DefaultStraightTolerance is the heading change, in degrees, still treated
// as part of the same straight run.
const DefaultStraightTolerance = 10.0

// Quad is a rotated rectangle given by its corners in pixel space, in order
// around the perimeter.
type Quad [4]vec.Vec2

// Envelope returns the axis-aligned rectangle containing the quad.
func (q Quad) Envelope() rect.Rect {
	r := rect.Rect{LLx: q[0].X, LLy: q[0].Y, URx: q[0].X, URy: q[0].Y}
	for _, p := range q[1:] {
		r.LLx = math.Min(r.LLx, p.X)
		r.LLy = math.Min(r.LLy, p.Y)
		r.URx = math.Max(r.URx, p.X)
		r.URy = math.Max(r.URy, p.Y)
	}
	return r
}

// Center returns the mean of the corners.
func (q Quad) Center() vec.Vec2 {
	return Centroid(q[:])
}

// BoundingQuad returns the corners of a width x height rectangle grown by
// buffer on every side and rotated by angle degrees about center.
func BoundingQuad(center vec.Vec2, width, height, angle, buffer float64) Quad {
	w2 := width/2 + buffer
	h2 := height/2 + buffer

	s, c := math.Sincos(angle * math.Pi / 180)
	m := matrix.Matrix{c, s, -s, c, center.X, center.Y}

	return Quad{
		apply(m, -w2, -h2),
		apply(m, w2, -h2),
		apply(m, w2, h2),
		apply(m, -w2, h2),
	}
}

// NormalizeAngle maps an angle in degrees into (-90, 90] by adding or
// subtracting 180, so rotated text never reads upside down.
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	if deg > 90 {
		deg -= 180
	} else if deg <= -90 {
		deg += 180
	}
	return deg
}

// BestAnchor places a label on the midpoint of the longest straight run of a
// pixel-space polyline and returns the run's normalized direction. ok is
// false when the polyline has no length.
func BestAnchor(line []vec.Vec2) (anchor vec.Vec2, angle float64, ok bool) {
	return BestAnchorTolerance(line, DefaultStraightTolerance)
}

// BestAnchorTolerance is BestAnchor with an explicit straightness tolerance.
// With tolerance 0 every segment is its own run.
func BestAnchorTolerance(line []vec.Vec2, tolerance float64) (anchor vec.Vec2, angle float64, ok bool) {
	if len(line) == 0 {
		return vec.Vec2{}, 0, false
	}

	type run struct {
		start, end int // vertex indices
		length     float64
	}

	var best run
	var cur run
	var heading float64
	open := false

	for i := 0; i+1 < len(line); i++ {
		d := line[i+1].Sub(line[i])
		l := d.Length()
		if l == 0 {
			if open {
				cur.end = i + 1
			}
			continue
		}
		h := math.Atan2(d.Y, d.X) * 180 / math.Pi
		if open && math.Abs(angleDiff(h, heading)) <= tolerance {
			cur.end = i + 1
			cur.length += l
		} else {
			cur = run{start: i, end: i + 1, length: l}
			heading = h
			open = true
		}
		if cur.length > best.length {
			best = cur
		}
	}

	if best.length == 0 {
		return line[0], 0, false
	}

	d := line[best.end].Sub(line[best.start])
	angle = NormalizeAngle(math.Atan2(d.Y, d.X) * 180 / math.Pi)
	return alongRun(line[best.start:best.end+1], best.length/2), angle, true
}

// Centroid returns the mean of the points, used as the anchor of polygons.
func Centroid(points []vec.Vec2) vec.Vec2 {
	if len(points) == 0 {
		return vec.Vec2{}
	}
	var sum vec.Vec2
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(points)))
}

// RingCentroid is Centroid over a closed ring, ignoring the closing vertex.
func RingCentroid(ring []vec.Vec2) vec.Vec2 {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	return Centroid(ring)
}

// PointAnchor returns the label anchor for a point marker.
func PointAnchor(marker vec.Vec2) vec.Vec2 {
	return marker.Add(vec.Vec2{X: 0, Y: PointLabelOffset})
}

// alongRun returns the point at distance dist along the polyline.
func alongRun(pts []vec.Vec2, dist float64) vec.Vec2 {
	for i := 0; i+1 < len(pts); i++ {
		d := pts[i+1].Sub(pts[i])
		l := d.Length()
		if l == 0 {
			continue
		}
		if dist <= l {
			return pts[i].Add(d.Mul(dist / l))
		}
		dist -= l
	}
	return pts[len(pts)-1]
}

func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

func apply(m matrix.Matrix, x, y float64) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*x + m[2]*y + m[4],
		Y: m[1]*x + m[3]*y + m[5],
	}
}
