package annomap

import (
	"github.com/paulmach/orb"
	"seehuhn.de/go/geom/vec"

	"github.com/beetlebugorg/annomap/internal/geo"
	"github.com/beetlebugorg/annomap/internal/labels"
	"github.com/beetlebugorg/annomap/internal/placement"
	"github.com/beetlebugorg/annomap/internal/roads"
	"github.com/beetlebugorg/annomap/internal/style"
)

// Bounds represents a geographic bounding box in WGS-84 coordinates.
type Bounds = geo.Bounds

// GeometryKind is the geometry kind of a feature.
type GeometryKind = geo.Kind

const (
	GeometryPoint   = geo.KindPoint
	GeometryLine    = geo.KindLine
	GeometryPolygon = geo.KindPolygon
	GeometryMulti   = geo.KindMultiGeometry
)

// Way is a tagged line of connected points from map data.
//
// Ways tagged highway and name are grouped by name for road labels. Every
// way with a drawable tag is also emitted as its own command.
type Way = roads.Way

// RoadCandidate is one road sub-line competing for a label.
type RoadCandidate = roads.Candidate

// RoadOrder reports whether candidate a is placed before b.
type RoadOrder = roads.Less

// Style is a set of presentation attributes for the rendering collaborator.
type Style = style.Style

// Layer orders draw commands.
type Layer = style.Layer

// FontSize is the size class of a label.
type FontSize = labels.FontSize

// PlacementResult describes where a label ended up and how.
type PlacementResult = placement.Result

// PlacementState is the resolver state that accepted a label.
type PlacementState = placement.State

// Feature is one named geometric object produced by a document parser.
type Feature struct {
	Name string
	Kind GeometryKind

	// Coordinates holds [lon, lat] pairs for points, lines and polygon
	// rings. Polygon rings repeat their first coordinate at the end.
	Coordinates []orb.Point

	// Parts holds the members of a multi-geometry.
	Parts []Part

	// StyleRef names an entry of Options.Styles. A leading '#' is ignored.
	StyleRef string
}

// Part is one member of a multi-geometry feature.
type Part struct {
	Kind        GeometryKind
	Coordinates []orb.Point
}

// Canvas is the output surface.
type Canvas struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`

	// Padding is the fraction of each dimension left empty on either side.
	Padding float64 `mapstructure:"padding"`
}

// Input is everything one render pass consumes.
type Input struct {
	// Bounds fixes the geographic area. When nil it is derived from
	// Boundary, or from the content if Boundary is empty too.
	Bounds *Bounds

	// Boundary is the ring outlining the area of interest. Ways entirely
	// outside it are drawn faded.
	Boundary []orb.Point

	// Canvas overrides Options.Canvas when its size is non-zero.
	Canvas Canvas

	Features []Feature
	Ways     []Way
}

// CommandKind identifies the shape of a draw command.
type CommandKind int

const (
	CommandPolyline CommandKind = iota
	CommandPolygon
	CommandMarker
	CommandLabel

	// CommandSymbol is a fixed glyph at the centre of an area. It is drawn
	// where it falls and takes no part in label placement.
	CommandSymbol
)

func (k CommandKind) String() string {
	switch k {
	case CommandPolyline:
		return "polyline"
	case CommandPolygon:
		return "polygon"
	case CommandMarker:
		return "marker"
	case CommandLabel:
		return "label"
	case CommandSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Command is one finalized drawing instruction in pixel space.
type Command struct {
	Kind  CommandKind
	Layer Layer

	// Points holds the vertices of a polyline or polygon, or the single
	// position of a marker.
	Points []vec.Vec2

	Style Style

	// Label is set for CommandLabel and CommandSymbol.
	Label *Label

	// Source names the feature or way the command was built from.
	Source string
}

// Label is a placed text label.
type Label struct {
	Text   string
	Anchor vec.Vec2

	// Angle is the rotation in degrees, in (-90, 90].
	Angle float64

	Size      FontSize
	Placement PlacementResult
}

// Map is the result of one render pass.
type Map struct {
	Bounds Bounds
	Canvas Canvas

	// Commands are ordered by layer, then by emission order.
	Commands []Command

	// Warnings are the recovered conditions met during the pass.
	Warnings []error

	// TotalOverlap sums the overlap area of every placed label.
	TotalOverlap float64
}

// Labels returns the label commands in placement order.
func (m *Map) Labels() []*Label {
	var out []*Label
	for _, c := range m.Commands {
		if c.Kind == CommandLabel {
			out = append(out, c.Label)
		}
	}
	return out
}

// Errors returned by Render and reported in Map.Warnings.
type (
	ErrDegenerateBounds  = geo.ErrDegenerateBounds
	ErrInvalidCoordinate = geo.ErrInvalidCoordinate
	ErrSimplification    = geo.ErrSimplification
	ErrMergeFallback     = geo.ErrMergeFallback
)
