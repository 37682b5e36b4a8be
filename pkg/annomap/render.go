package annomap

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"seehuhn.de/go/geom/vec"

	"github.com/beetlebugorg/annomap/internal/geo"
	"github.com/beetlebugorg/annomap/internal/labels"
	"github.com/beetlebugorg/annomap/internal/merge"
	"github.com/beetlebugorg/annomap/internal/placement"
	"github.com/beetlebugorg/annomap/internal/projector"
	"github.com/beetlebugorg/annomap/internal/roads"
	"github.com/beetlebugorg/annomap/internal/simplify"
	"github.com/beetlebugorg/annomap/internal/style"
)

// labelStyle is applied to every label command.
var labelStyle = Style{Fill: "#333333", Opacity: 1}

var sharedMeasurer = sync.OnceValue(labels.NewMeasurer)

// Render turns features and ways into ordered draw commands with placed
// labels.
//
// Options are validated first; build them from DefaultOptions or LoadOptions,
// as the zero Options fails validation. Beyond that, only an unusable
// bounding box or canvas is fatal. Malformed geometry,
// invalid coordinates and failed merges are recovered, logged and listed in
// Map.Warnings. Every call uses its own placement context, so concurrent
// calls are independent.
func Render(in Input, opts Options) (m *Map, err error) {
	start := time.Now()
	hooks := opts.hooks()
	defer func() {
		n := 0
		if m != nil {
			n = len(m.Commands)
		}
		hooks.OnRender(time.Since(start), n, err)
	}()

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	canvas := in.Canvas
	if canvas.Width == 0 && canvas.Height == 0 {
		canvas = opts.Canvas
	}

	bounds, err := resolveBounds(in, opts.BoundaryPadding)
	if err != nil {
		return nil, fmt.Errorf("resolve bounds: %w", err)
	}
	proj, err := projector.New(bounds, canvas.Width, canvas.Height, canvas.Padding)
	if err != nil {
		return nil, fmt.Errorf("create projector: %w", err)
	}

	p := &pass{
		opts:     opts,
		log:      opts.logger(),
		hooks:    hooks,
		proj:     proj,
		budget:   opts.Budget,
		resolver: placement.NewResolver(opts.Placement),
		ctx:      placement.NewContext(),
		measurer: sharedMeasurer(),
		boundary: geo.NewBoundary(in.Boundary),
	}
	if total := inputVertices(in.Features); total > opts.LargeInputVertices {
		p.log.Info("large input, using reduced budgets", "vertices", total)
		p.budget = opts.LargeBudget
	}

	for _, f := range in.Features {
		p.feature(f)
	}
	for _, w := range in.Ways {
		p.way(w)
	}
	p.roadLabels(in.Ways)

	sort.SliceStable(p.commands, func(i, j int) bool {
		return p.commands[i].Layer < p.commands[j].Layer
	})

	p.log.Debug("render complete",
		"commands", len(p.commands),
		"labels", p.ctx.Len(),
		"warnings", len(p.warnings),
		"elapsed", time.Since(start))

	return &Map{
		Bounds:       bounds,
		Canvas:       canvas,
		Commands:     p.commands,
		Warnings:     p.warnings,
		TotalOverlap: p.ctx.TotalOverlap(),
	}, nil
}

// resolveBounds picks the explicit bounds, then the padded boundary, then the
// padded extent of the content.
func resolveBounds(in Input, padding float64) (Bounds, error) {
	if in.Bounds != nil {
		if err := in.Bounds.Validate(); err != nil {
			return Bounds{}, err
		}
		return *in.Bounds, nil
	}
	if len(in.Boundary) > 0 {
		return geo.FromBoundary(in.Boundary, padding)
	}

	var all []orb.Point
	for _, f := range in.Features {
		all = append(all, f.Coordinates...)
		for _, part := range f.Parts {
			all = append(all, part.Coordinates...)
		}
	}
	for _, w := range in.Ways {
		all = append(all, w.Nodes...)
	}
	if len(all) == 0 {
		return Bounds{}, &geo.ErrDegenerateBounds{Reason: "no bounds, boundary or content"}
	}
	b := geo.BoundsOf(all).Expand(padding)
	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

func inputVertices(features []Feature) int {
	n := 0
	for _, f := range features {
		n += len(f.Coordinates)
		for _, part := range f.Parts {
			n += len(part.Coordinates)
		}
	}
	return n
}

// pass holds the state of one Render call.
type pass struct {
	opts     Options
	log      *log.Logger
	hooks    Hooks
	proj     *projector.Projector
	budget   simplify.Budget
	resolver *placement.Resolver
	ctx      *placement.Context
	measurer *labels.Measurer
	boundary *geo.Boundary

	commands []Command
	warnings []error
}

func (p *pass) warn(kind, key, source string, err error) {
	p.log.Warn(kind+" recovered", key, source, "err", err)
	p.hooks.OnWarning(kind, err)
	p.warnings = append(p.warnings, fmt.Errorf("%s %s %q: %w", kind, key, source, err))
}

func (p *pass) emit(c Command) {
	p.commands = append(p.commands, c)
}

// feature emits the geometry of f and, when it is named, its label.
func (p *pass) feature(f Feature) {
	st := style.ForFeature(f.Kind, f.StyleRef, p.opts.Styles)

	if f.Kind == GeometryMulti {
		var best []vec.Vec2
		for i, part := range f.Parts {
			if part.Kind == GeometryMulti {
				continue
			}
			source := fmt.Sprintf("%s[%d]", f.Name, i)
			pts := p.geometry(source, part.Kind, part.Coordinates, true, style.ForFeature(part.Kind, f.StyleRef, p.opts.Styles))
			if len(pts) > len(best) {
				best = pts
			}
		}
		if f.Name != "" && len(best) > 0 {
			p.label(f.Name, labels.Centroid(best), 0, labels.FontNormal)
		}
		return
	}

	pts := p.geometry(f.Name, f.Kind, f.Coordinates, false, st)
	if f.Name == "" || len(pts) == 0 {
		return
	}

	switch f.Kind {
	case GeometryPoint:
		p.label(f.Name, labels.PointAnchor(pts[0]), 0, labels.FontNormal)
	case GeometryLine:
		anchor, angle, ok := labels.BestAnchorTolerance(pts, p.opts.StraightTolerance)
		if !ok {
			anchor, angle = labels.Centroid(pts), 0
		}
		p.label(f.Name, anchor, angle, labels.FontNormal)
	case GeometryPolygon:
		p.label(f.Name, labels.RingCentroid(pts), 0, labels.FontNormal)
	}
}

// geometry simplifies, projects and emits one sequence and returns its pixel
// points.
func (p *pass) geometry(source string, kind GeometryKind, coords []orb.Point, part bool, st Style) []vec.Vec2 {
	if len(coords) == 0 {
		p.log.Debug("skipping empty geometry", "feature", source)
		return nil
	}

	if target := p.budget.Target(kind, part); target > 0 && len(coords) > target {
		res, err := simplify.Adaptive(coords, kind, target, p.opts.Simplify)
		if err != nil {
			p.warn("simplify", "feature", source, err)
		}
		p.hooks.OnSimplify(kind.String(), len(coords), len(res.Coords), res.Iterations)
		coords = res.Coords
	}

	pts, err := p.proj.ProjectAll(coords)
	if err != nil {
		p.warn("project", "feature", source, err)
	}

	c := Command{Layer: style.LayerFeatures, Points: pts, Style: st, Source: source}
	switch kind {
	case GeometryPoint:
		c.Kind, c.Layer, c.Points = CommandMarker, style.LayerMarkers, pts[:1]
	case GeometryLine:
		c.Kind = CommandPolyline
	default:
		c.Kind = CommandPolygon
	}
	p.emit(c)
	return c.Points
}

// way emits a way as its own styled command.
func (p *pass) way(w Way) {
	if len(w.Nodes) < 2 {
		return
	}
	ws, ok := style.ForWay(w.Tags, w.Closed(), p.inside(w.Nodes))
	if !ok {
		return
	}

	source := w.Name()
	if source == "" {
		source = fmt.Sprintf("way/%d", w.ID)
	}
	pts, err := p.proj.ProjectAll(w.Nodes)
	if err != nil {
		p.warn("project", "way", source, err)
	}

	kind := CommandPolyline
	if ws.Area {
		kind = CommandPolygon
	}
	p.emit(Command{Kind: kind, Layer: ws.Layer, Points: pts, Style: ws.Style, Source: source})

	if text, st, ok := style.Symbol(w.Tags); ok && ws.Area {
		center := labels.RingCentroid(pts)
		p.emit(Command{
			Kind:   CommandSymbol,
			Layer:  ws.Layer,
			Points: []vec.Vec2{center},
			Style:  st,
			Label:  &Label{Text: text, Anchor: center, Size: labels.FontLarge},
			Source: source,
		})
	}
}

// inside reports whether any part of the way lies within the boundary ring
// or within BoundaryBuffer of its outline. Without a boundary every way is
// inside.
func (p *pass) inside(nodes []orb.Point) bool {
	if p.boundary == nil {
		return true
	}
	return p.boundary.Touches(nodes, p.opts.BoundaryBuffer)
}

// clip keeps the parts of merged road pieces that lie within the boundary
// grown by RoadLabelBuffer.
func (p *pass) clip(pieces [][]orb.Point) [][]orb.Point {
	if p.boundary == nil {
		return pieces
	}
	var out [][]orb.Point
	for _, piece := range pieces {
		out = append(out, p.boundary.Clip(piece, p.opts.RoadLabelBuffer)...)
	}
	return out
}

// roadLabels merges same-named roads, schedules the candidates and places
// one label per surviving candidate.
func (p *pass) roadLabels(ways []Way) {
	var cands []roads.Candidate
	for _, g := range roads.Group(ways) {
		pieces, err := merge.Merge(g.Segments, p.opts.Merge)
		if err != nil {
			p.warn("merge", "road", g.Name, err)
		}
		p.hooks.OnMerge(g.Name, len(g.Segments), len(pieces))

		pieces = p.clip(pieces)
		if len(pieces) == 0 {
			p.log.Debug("road outside boundary", "road", g.Name)
			continue
		}
		cands = append(cands, roads.Candidates(g.Name, g.Class, pieces, p.proj.Scale(), p.opts.Roads)...)
	}

	order := p.opts.RoadOrder
	if order == nil {
		order = roads.ByPriorityThenLength
	}
	roads.Sort(cands, order)

	labeled := roads.NewLabeled()
	for _, c := range cands {
		if labeled.Skip(c) {
			continue
		}
		pts, err := p.proj.ProjectAll(c.Line)
		if err != nil {
			p.warn("project", "road", c.Name, err)
		}
		anchor, angle, ok := labels.BestAnchorTolerance(pts, p.opts.StraightTolerance)
		if !ok {
			p.log.Debug("no anchor for road piece", "road", c.Name, "piece", c.Piece)
			continue
		}
		p.label(c.Name, anchor, angle, roads.PolicyFor(c.Class).Font)
		labeled.Mark(c)
	}
}

// label measures, places and emits one label.
func (p *pass) label(text string, anchor vec.Vec2, angle float64, size FontSize) {
	w, h := p.measurer.Measure(text, size)
	res := p.resolver.Resolve(p.ctx, anchor, w, h, angle)
	p.hooks.OnPlacement(res.State.String(), res.Overlap)
	if res.State == placement.StateFallbackMinOverlap {
		p.log.Debug("label overlaps", "label", text, "overlap", res.Overlap)
	}

	p.emit(Command{
		Kind:   CommandLabel,
		Layer:  style.LayerLabels,
		Points: []vec.Vec2{res.Anchor},
		Style:  labelStyle,
		Label: &Label{
			Text:      text,
			Anchor:    res.Anchor,
			Angle:     res.Angle,
			Size:      size,
			Placement: res,
		},
		Source: text,
	})
}
