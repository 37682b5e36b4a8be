package placement

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"seehuhn.de/go/geom/rect"

	"github.com/beetlebugorg/annomap/internal/labels"
)

// minRectLength keeps R-tree rectangles non-degenerate.
const minRectLength = 0.0001

// LabelArea is the footprint of one placed label.
type LabelArea struct {
	Quad labels.Quad

	// Overlap is the area the footprint shares with labels placed before it.
	Overlap float64

	seq int
}

// Bounds method for rtreego.Spatial interface.
// Uses the axis-aligned envelope of the rotated footprint.
func (a *LabelArea) Bounds() rtreego.Rect {
	return toRect(a.Quad.Envelope(), 0)
}

// Context holds the footprints placed during one render pass. Footprints are
// only ever appended; nothing is moved or removed until the pass ends and the
// context is discarded.
//
// A Context is not safe for concurrent use. Separate render passes use
// separate contexts.
type Context struct {
	areas []*LabelArea
	rtree *rtreego.Rtree
}

// NewContext returns an empty placement context.
func NewContext() *Context {
	return &Context{
		// 2D, min=25 children, max=50 children
		rtree: rtreego.NewTree(2, 25, 50),
	}
}

// Len returns the number of placed footprints.
func (c *Context) Len() int { return len(c.areas) }

// Areas returns the placed footprints in placement order.
func (c *Context) Areas() []LabelArea {
	out := make([]LabelArea, len(c.areas))
	for i, a := range c.areas {
		out[i] = *a
	}
	return out
}

// TotalOverlap sums the overlap recorded for every placement.
func (c *Context) TotalOverlap() float64 {
	total := 0.0
	for _, a := range c.areas {
		total += a.Overlap
	}
	return total
}

// Query returns the footprints whose envelopes intersect r, in placement
// order. Touching envelopes count as intersecting.
func (c *Context) Query(r rect.Rect) []*LabelArea {
	spatials := c.rtree.SearchIntersect(toRect(r, 1e-9))

	result := make([]*LabelArea, 0, len(spatials))
	for _, s := range spatials {
		result = append(result, s.(*LabelArea))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].seq < result[j].seq
	})
	return result
}

func (c *Context) add(q labels.Quad, overlap float64) {
	a := &LabelArea{Quad: q, Overlap: overlap, seq: len(c.areas)}
	c.areas = append(c.areas, a)
	c.rtree.Insert(a)
}

func toRect(r rect.Rect, grow float64) rtreego.Rect {
	point := rtreego.Point{r.LLx - grow, r.LLy - grow}
	lengths := []float64{
		math.Max(r.URx-r.LLx+2*grow, minRectLength),
		math.Max(r.URy-r.LLy+2*grow, minRectLength),
	}
	rr, _ := rtreego.NewRect(point, lengths)
	return rr
}
