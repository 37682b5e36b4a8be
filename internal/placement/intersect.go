package placement

import (
	"math"

	"seehuhn.de/go/geom/vec"

	"github.com/beetlebugorg/annomap/internal/labels"
)

// Intersects reports whether two convex quads share any point, using the
// separating axis test. Touching edges count as intersecting.
func Intersects(a, b labels.Quad) bool {
	return !separated(a, b) && !separated(b, a)
}

// separated reports whether one of p's edge normals separates p from q.
func separated(p, q labels.Quad) bool {
	for i := range p {
		e := p[(i+1)%len(p)].Sub(p[i])
		axis := vec.Vec2{X: -e.Y, Y: e.X}
		if axis.X == 0 && axis.Y == 0 {
			continue
		}
		minP, maxP := project(p, axis)
		minQ, maxQ := project(q, axis)
		if maxP < minQ || maxQ < minP {
			return true
		}
	}
	return false
}

func project(q labels.Quad, axis vec.Vec2) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range q {
		d := p.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// OverlapArea returns the area shared by two convex quads.
func OverlapArea(a, b labels.Quad) float64 {
	if !Intersects(a, b) {
		return 0
	}
	return math.Abs(signedArea(clip(a[:], b[:])))
}

// clip returns subject clipped to the convex polygon c (Sutherland-Hodgman).
func clip(subject, c []vec.Vec2) []vec.Vec2 {
	orient := 1.0
	if signedArea(c) < 0 {
		orient = -1
	}

	out := append([]vec.Vec2(nil), subject...)
	for i := range c {
		if len(out) == 0 {
			break
		}
		a, b := c[i], c[(i+1)%len(c)]
		inside := func(p vec.Vec2) bool { return orient*cross(b.Sub(a), p.Sub(a)) >= 0 }

		in := out
		out = nil
		for j := range in {
			cur, prev := in[j], in[(j+len(in)-1)%len(in)]
			switch {
			case inside(cur) && inside(prev):
				out = append(out, cur)
			case inside(cur):
				out = append(out, intersection(prev, cur, a, b), cur)
			case inside(prev):
				out = append(out, intersection(prev, cur, a, b))
			}
		}
	}
	return out
}

// intersection of segment p1-p2 with the infinite line through a-b.
func intersection(p1, p2, a, b vec.Vec2) vec.Vec2 {
	d := p2.Sub(p1)
	e := b.Sub(a)
	den := cross(d, e)
	if den == 0 {
		return p1
	}
	t := cross(a.Sub(p1), e) / den
	return p1.Add(d.Mul(t))
}

func cross(a, b vec.Vec2) float64 { return a.X*b.Y - a.Y*b.X }

func signedArea(poly []vec.Vec2) float64 {
	s := 0.0
	for i := range poly {
		j := (i + 1) % len(poly)
		s += cross(poly[i], poly[j])
	}
	return s / 2
}
