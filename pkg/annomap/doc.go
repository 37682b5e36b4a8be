/*
Package annomap turns geographic features and street ways into an ordered
list of draw commands for a fixed-size canvas, with non-overlapping text
labels.

A render pass takes an Input holding features (points, lines, polygons and
multi-geometries parsed from a map document), OSM-style ways and either a
bounding box or a boundary ring:

	m, err := annomap.Render(annomap.Input{
	    Boundary: boundary,
	    Features: features,
	    Ways:     annomap.WaysFromOSM(ways),
	}, annomap.DefaultOptions())
	if err != nil {
	    return err
	}
	for _, c := range m.Commands {
	    draw(c)
	}

# Pipeline

Features are simplified to a vertex budget, projected onto the canvas and
labeled at their centroid, their longest straight run, or just below their
marker. Ways are drawn with a style derived from their tags. Ways sharing a
street name are merged into continuous pieces, and each piece competes for
a label along its longest straight run. Short and minor streets are placed
first, so they are not crowded out by long arterials.

Labels never move out of the way of each other once placed. A label that
collides is tried at cardinal offsets, then on a spiral around its anchor,
and finally at whichever candidate overlaps least. Every label is always
placed; Map.TotalOverlap reports how much they overlap.

# Errors

Only an unusable bounding box or canvas makes Render fail, with an error
wrapping *ErrDegenerateBounds. Invalid coordinates, malformed geometry and
failed merges are recovered and reported in Map.Warnings, through the
configured logger, and through Hooks.

# Configuration

Options can be built in code from DefaultOptions or loaded with LoadOptions
from a YAML file and ANNOMAP_* environment variables. Metrics are exported
by attaching a metrics.Collector as Options.Hooks.
*/
package annomap
