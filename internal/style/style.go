// Package style picks drawing styles for ways and features and the layer
// each is drawn on.
package style

import (
	"strings"

	"github.com/beetlebugorg/annomap/internal/geo"
	"github.com/beetlebugorg/annomap/internal/roads"
)

// Layer orders draw commands; lower layers are drawn first.
type Layer int

const (
	LayerNatural Layer = iota
	LayerLanduse
	LayerFeatures
	LayerParking
	LayerBuildings
	LayerRoads
	LayerPaths
	LayerMarkers
	LayerLabels
)

func (l Layer) String() string {
	switch l {
	case LayerNatural:
		return "natural"
	case LayerLanduse:
		return "landuse"
	case LayerFeatures:
		return "features"
	case LayerParking:
		return "parking"
	case LayerBuildings:
		return "buildings"
	case LayerRoads:
		return "roads"
	case LayerPaths:
		return "paths"
	case LayerMarkers:
		return "markers"
	case LayerLabels:
		return "labels"
	default:
		return "unknown"
	}
}

// Style is a set of presentation attributes handed to the rendering
// collaborator. Zero values mean "not set".
type Style struct {
	Fill        string  `mapstructure:"fill"`
	Stroke      string  `mapstructure:"stroke"`
	StrokeWidth float64 `mapstructure:"stroke_width"`
	Opacity     float64 `mapstructure:"opacity"`
	CasingColor string  `mapstructure:"casing_color"`
	CasingWidth float64 `mapstructure:"casing_width"`
	Radius      float64 `mapstructure:"radius"`
}

// Merge returns s with every attribute set in o overriding it.
func (s Style) Merge(o Style) Style {
	if o.Fill != "" {
		s.Fill = o.Fill
	}
	if o.Stroke != "" {
		s.Stroke = o.Stroke
	}
	if o.StrokeWidth != 0 {
		s.StrokeWidth = o.StrokeWidth
	}
	if o.Opacity != 0 {
		s.Opacity = o.Opacity
	}
	if o.CasingColor != "" {
		s.CasingColor = o.CasingColor
	}
	if o.CasingWidth != 0 {
		s.CasingWidth = o.CasingWidth
	}
	if o.Radius != 0 {
		s.Radius = o.Radius
	}
	return s
}

// WayStyle is the outcome of classifying a way for drawing.
type WayStyle struct {
	Style Style
	Layer Layer

	// Area reports whether the way is drawn as a filled polygon.
	Area bool
}

// ForWay styles a way from its tags. ok is false for ways that are not drawn.
// Ways outside the map boundary are faded, except footpaths.
func ForWay(tags map[string]string, closed, inside bool) (ws WayStyle, ok bool) {
	switch {
	case tags["building"] != "":
		ws = WayStyle{Style{Fill: "#E4E0D8", Stroke: "#D4D0C8", StrokeWidth: 1, Opacity: 0.9}, LayerBuildings, true}

	case tags["amenity"] == "parking":
		ws = WayStyle{Style{Fill: "#F0F0F0", Stroke: "#D0D0D0", StrokeWidth: 1, Opacity: 0.8}, LayerParking, true}

	case tags["highway"] != "":
		return roadStyle(tags, inside), true

	case tags["waterway"] != "" || tags["natural"] == "water":
		ws = WayStyle{Style{Fill: "#B3D1FF", Stroke: "#A1C3FF", StrokeWidth: 1, Opacity: 0.6}, LayerNatural, closed}

	case tags["landuse"] == "allotment" || tags["landuse"] == "allotments":
		ws = WayStyle{Style{Fill: "#E8F4D9", Stroke: "#76A32D", StrokeWidth: 2, Opacity: 0.9}, LayerLanduse, true}

	case tags["leisure"] == "park" || tags["leisure"] == "garden" || tags["landuse"] == "grass":
		ws = WayStyle{Style{Fill: "#90EE90", Stroke: "#7BE37B", StrokeWidth: 1, Opacity: 0.7}, LayerLanduse, true}

	case tags["natural"] == "wood" || tags["landuse"] == "forest" || tags["landuse"] == "recreation_ground":
		ws = WayStyle{Style{Fill: "#C6DFB3", Stroke: "#B5CE9F", StrokeWidth: 1, Opacity: 0.6}, LayerNatural, true}

	default:
		return WayStyle{}, false
	}

	if ws.Area && !closed {
		ws.Area = false
	}
	if !inside {
		ws.Style.Fill = "#EEEEEE"
		ws.Style.Stroke = "#DDDDDD"
		ws.Style.Opacity = 0.3
	}
	return ws, true
}

// Symbol returns the glyph drawn at the centre of an area, such as the "P"
// of a car park. ok is false for areas without one.
func Symbol(tags map[string]string) (text string, st Style, ok bool) {
	if tags["amenity"] == "parking" {
		return "P", Style{Fill: "#666666", Opacity: 1}, true
	}
	return "", Style{}, false
}

func roadStyle(tags map[string]string, inside bool) WayStyle {
	if roads.IsPath(tags) {
		return WayStyle{
			Style: Style{Stroke: "#FFFFFF", StrokeWidth: 2, CasingColor: "#E0E0E0", CasingWidth: 3, Opacity: 0.8},
			Layer: LayerPaths,
		}
	}

	var s Style
	switch tags["highway"] {
	case "motorway", "trunk":
		s = Style{Stroke: "#FFA07A", StrokeWidth: 6, CasingColor: "#FF8C69", CasingWidth: 8, Opacity: 1}
	case "primary":
		s = Style{Stroke: "#FCD68A", StrokeWidth: 5, CasingColor: "#F4BC6C", CasingWidth: 7, Opacity: 1}
	case "secondary":
		s = Style{Stroke: "#FAFAFA", StrokeWidth: 4, CasingColor: "#E0E0E0", CasingWidth: 6, Opacity: 1}
	default:
		s = Style{Stroke: "#FFFFFF", StrokeWidth: 2.5, CasingColor: "#E0E0E0", CasingWidth: 3.5, Opacity: 0.8}
	}
	if !inside {
		s.Stroke = "#CCCCCC"
		s.CasingColor = "#BBBBBB"
		s.Opacity = 0.5
	}
	return WayStyle{Style: s, Layer: LayerRoads}
}

// ForFeature returns the default style of a geometry kind, overridden by the
// entry named by ref in table. A leading '#' in ref is ignored.
func ForFeature(kind geo.Kind, ref string, table map[string]Style) Style {
	var s Style
	switch kind {
	case geo.KindLine:
		s = Style{Stroke: "#3388FF", StrokeWidth: 2, Opacity: 0.9}
	case geo.KindPoint:
		s = Style{Fill: "#3388FF", Radius: 5, Opacity: 0.9}
	default:
		s = Style{Fill: "#3388FF", Stroke: "#0066CC", StrokeWidth: 1, Opacity: 0.7}
	}

	if o, ok := table[strings.TrimPrefix(ref, "#")]; ok && ref != "" {
		s = s.Merge(o)
	}
	return s
}
