package annomap

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// WayFromOSM converts an OSM way into a Way. Nodes without a location, as
// returned when a way is fetched without its nodes, are dropped.
//
// A missing location is recognised by a zero latitude and longitude, so a
// node lying exactly at (0, 0) is dropped as well.
func WayFromOSM(w *osm.Way) Way {
	out := Way{
		ID:    int64(w.ID),
		Tags:  w.Tags.Map(),
		Nodes: make([]orb.Point, 0, len(w.Nodes)),
	}
	for _, n := range w.Nodes {
		if n.Lat == 0 && n.Lon == 0 {
			continue
		}
		out.Nodes = append(out.Nodes, n.Point())
	}
	return out
}

// WaysFromOSM converts every way that keeps at least two located nodes.
func WaysFromOSM(ways osm.Ways) []Way {
	out := make([]Way, 0, len(ways))
	for _, w := range ways {
		if w == nil {
			continue
		}
		if way := WayFromOSM(w); len(way.Nodes) >= 2 {
			out = append(out, way)
		}
	}
	return out
}
