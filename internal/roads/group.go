package roads

import (
	"sort"
	"strings"

	"github.com/paulmach/orb"
)

// Way is a tagged line of connected points.
type Way struct {
	ID    int64
	Tags  map[string]string
	Nodes []orb.Point
}

// IsRoad reports whether the way carries a highway tag.
func (w Way) IsRoad() bool {
	_, ok := w.Tags["highway"]
	return ok
}

// Name returns the trimmed name tag.
func (w Way) Name() string {
	return strings.TrimSpace(w.Tags["name"])
}

// Closed reports whether the first and last nodes coincide.
func (w Way) Closed() bool {
	return len(w.Nodes) > 2 && w.Nodes[0].Equal(w.Nodes[len(w.Nodes)-1])
}

// NamedGroup collects the node sequences of every road sharing a name.
type NamedGroup struct {
	Name     string
	Class    Class
	Segments [][]orb.Point
}

// Group builds one NamedGroup per distinct road name, sorted by name. Ways
// without a highway or name tag, or with fewer than two nodes, are skipped.
// A group takes the most important class among its ways.
func Group(ways []Way) []NamedGroup {
	byName := make(map[string]*NamedGroup)
	for _, w := range ways {
		name := w.Name()
		if !w.IsRoad() || name == "" || len(w.Nodes) < 2 {
			continue
		}
		class := Classify(w.Tags)
		g, ok := byName[name]
		if !ok {
			g = &NamedGroup{Name: name, Class: class}
			byName[name] = g
		}
		if class < g.Class {
			g.Class = class
		}
		g.Segments = append(g.Segments, w.Nodes)
	}

	groups := make([]NamedGroup, 0, len(byName))
	for _, g := range byName {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	return groups
}
