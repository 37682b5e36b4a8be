package geo

import (
	"fmt"
)

// ErrDegenerateBounds indicates a bounding box or canvas with no usable
// extent. It is the only condition that aborts a render pass.
type ErrDegenerateBounds struct {
	Bounds Bounds
	Reason string
}

func (e *ErrDegenerateBounds) Error() string {
	return fmt.Sprintf("degenerate bounds [%f,%f]x[%f,%f]: %s",
		e.Bounds.MinLon, e.Bounds.MaxLon, e.Bounds.MinLat, e.Bounds.MaxLat, e.Reason)
}

// ErrInvalidCoordinate indicates a coordinate that failed numeric validation.
// The projector substitutes the canvas center and continues.
type ErrInvalidCoordinate struct {
	Lon, Lat float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: lon=%f lat=%f", e.Lon, e.Lat)
}

// ErrSimplification indicates the simplification primitive failed or produced
// an invalid geometry. The original coordinates are retained.
type ErrSimplification struct {
	Kind   Kind
	Reason string
}

func (e *ErrSimplification) Error() string {
	return fmt.Sprintf("simplification failed (%v): %s", e.Kind, e.Reason)
}

// ErrMergeFallback indicates fragments that could not be joined; they are
// treated as independent polylines.
type ErrMergeFallback struct {
	Fragments int
	Reason    string
}

func (e *ErrMergeFallback) Error() string {
	return fmt.Sprintf("merge fell back to %d separate lines: %s", e.Fragments, e.Reason)
}
