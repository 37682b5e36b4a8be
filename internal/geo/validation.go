package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// ValidateCoordinate rejects coordinates with a NaN or infinite component.
func ValidateCoordinate(p orb.Point) error {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ErrInvalidCoordinate{Lon: p.Lon(), Lat: p.Lat()}
		}
	}
	return nil
}

// ValidateSequence checks that coords form a valid instance of kind: enough
// coordinates, all finite, and closed when kind is a polygon ring.
func ValidateSequence(coords []orb.Point, kind Kind) error {
	if len(coords) < kind.MinVertices() {
		return &ErrSimplification{Kind: kind, Reason: "too few coordinates"}
	}
	for _, c := range coords {
		if err := ValidateCoordinate(c); err != nil {
			return err
		}
	}
	if kind == KindPolygon {
		if !coords[0].Equal(coords[len(coords)-1]) {
			return &ErrSimplification{Kind: kind, Reason: "ring is not closed"}
		}
		if DistinctVertices(coords) < 3 {
			return &ErrSimplification{Kind: kind, Reason: "ring has fewer than 3 distinct vertices"}
		}
	}
	return nil
}

// DistinctVertices counts the vertices of a ring, ignoring consecutive
// duplicates and the closing coordinate.
func DistinctVertices(ring []orb.Point) int {
	n := 0
	for i, c := range ring {
		if i > 0 && c.Equal(ring[i-1]) {
			continue
		}
		if i == len(ring)-1 && i > 0 && c.Equal(ring[0]) {
			continue
		}
		n++
	}
	return n
}

// CountVertices returns the total number of coordinates over all sequences.
func CountVertices(seqs ...[]orb.Point) int {
	n := 0
	for _, s := range seqs {
		n += len(s)
	}
	return n
}
