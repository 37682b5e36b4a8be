package simplify

import "github.com/beetlebugorg/annomap/internal/geo"

// LargeInputVertices is the total vertex count above which an input is
// treated as large and gets the stricter budget.
const LargeInputVertices = 100_000

// Budget is the per-kind vertex cap applied to features before projection.
type Budget struct {
	Polygon int `mapstructure:"polygon"`
	Line    int `mapstructure:"line"`

	// Part applies to each sub-geometry of a multi-geometry.
	Part int `mapstructure:"part"`
}

// DefaultBudget returns the caps for ordinary inputs.
func DefaultBudget() Budget {
	return Budget{Polygon: 400, Line: 300, Part: 200}
}

// LargeBudget returns the stricter caps for large inputs.
func LargeBudget() Budget {
	return Budget{Polygon: 200, Line: 150, Part: 100}
}

// Target returns the cap for a geometry of the given kind. part reports
// whether the geometry is a member of a multi-geometry. Zero means no cap.
func (b Budget) Target(kind geo.Kind, part bool) int {
	if part && kind != geo.KindPoint {
		return b.Part
	}
	switch kind {
	case geo.KindPolygon:
		return b.Polygon
	case geo.KindLine:
		return b.Line
	default:
		return 0
	}
}
