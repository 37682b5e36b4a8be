package geo

// Kind is the geometry kind of a feature.
type Kind int

const (
	// KindPoint is a single location.
	KindPoint Kind = iota

	// KindLine is an open polyline.
	KindLine

	// KindPolygon is a closed ring.
	KindPolygon

	// KindMultiGeometry is a heterogeneous collection of the other kinds.
	KindMultiGeometry
)

// String returns the string representation of the geometry kind.
func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindLine:
		return "LineString"
	case KindPolygon:
		return "Polygon"
	case KindMultiGeometry:
		return "MultiGeometry"
	default:
		return "Unknown"
	}
}

// MinVertices is the smallest coordinate count a valid instance of the kind
// can have. Polygon rings count their closing coordinate.
func (k Kind) MinVertices() int {
	switch k {
	case KindLine:
		return 2
	case KindPolygon:
		return 4
	default:
		return 1
	}
}
