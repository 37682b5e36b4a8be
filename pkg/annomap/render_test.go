package annomap

import (
	"errors"
	"io"
	"math"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/annomap/internal/placement"
	"github.com/beetlebugorg/annomap/internal/roads"
	"github.com/beetlebugorg/annomap/internal/style"
)

type recorder struct {
	NoopHooks
	simplified []int
	merged     map[string]int
	placements []string
	warnings   []string
	renders    int
}

func (r *recorder) OnSimplify(_ string, _, after, _ int) { r.simplified = append(r.simplified, after) }
func (r *recorder) OnMerge(name string, _, pieces int) {
	if r.merged == nil {
		r.merged = make(map[string]int)
	}
	r.merged[name] = pieces
}
func (r *recorder) OnPlacement(state string, _ float64) { r.placements = append(r.placements, state) }
func (r *recorder) OnWarning(kind string, _ error) { r.warnings = append(r.warnings, kind) }
func (r *recorder) OnRender(time.Duration, int, error) { r.renders++ }

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Logger = NewLogger(io.Discard, log.DebugLevel)
	return opts
}

func smallArea() *Bounds {
	return &Bounds{MinLon: 0, MaxLon: 0.01, MinLat: 0, MaxLat: 0.01}
}

func road(id int64, name, highway string, nodes ...orb.Point) Way {
	tags := map[string]string{"highway": highway}
	if name != "" {
		tags["name"] = name
	}
	return Way{ID: id, Tags: tags, Nodes: nodes}
}

func circle(n int, cx, cy, r float64) []orb.Point {
	ring := make([]orb.Point, 0, n+1)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		ring = append(ring, orb.Point{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return append(ring, ring[0])
}

func TestRenderMainStreetGetsOneLabel(t *testing.T) {
	rec := &recorder{}
	opts := quietOptions()
	opts.Hooks = rec

	in := Input{
		Bounds: smallArea(),
		Ways: []Way{
			road(1, "Main St", "residential", orb.Point{0.001, 0.005}, orb.Point{0.002, 0.005}),
			road(2, "Main St", "residential", orb.Point{0.0021, 0.005}, orb.Point{0.0031, 0.005}),
			road(3, "Main St", "residential", orb.Point{0.0032, 0.005}, orb.Point{0.0042, 0.005}),
		},
	}

	m, err := Render(in, opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if rec.merged["Main St"] != 1 {
		t.Errorf("Expected 1 merged piece, got %d", rec.merged["Main St"])
	}

	got := m.Labels()
	if len(got) != 1 {
		t.Fatalf("Expected 1 label, got %d", len(got))
	}
	if got[0].Text != "Main St" {
		t.Errorf("Expected label 'Main St', got %q", got[0].Text)
	}
	if got[0].Angle != 0 {
		t.Errorf("Expected horizontal label, got angle %v", got[0].Angle)
	}

	polylines := 0
	for _, c := range m.Commands {
		if c.Kind == CommandPolyline && c.Layer == style.LayerRoads {
			polylines++
		}
	}
	if polylines != 3 {
		t.Errorf("Expected each way drawn on its own, got %d road polylines", polylines)
	}
	if rec.renders != 1 {
		t.Errorf("Expected 1 render event, got %d", rec.renders)
	}
}

func TestRenderLongRoadGetsSeveralLabels(t *testing.T) {
	in := Input{
		Bounds: smallArea(),
		Ways: []Way{
			road(1, "Harbor Blvd", "primary", orb.Point{0.0005, 0.003}, orb.Point{0.0095, 0.003}),
		},
	}

	m, err := Render(in, quietOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if n := len(m.Labels()); n != 2 {
		t.Errorf("Expected 2 labels on a long primary road, got %d", n)
	}
}

func TestRenderDegenerateBoundsIsFatal(t *testing.T) {
	rec := &recorder{}
	opts := quietOptions()
	opts.Hooks = rec

	tests := []struct {
		name string
		in   Input
	}{
		{"zero box", Input{Bounds: &Bounds{MinLon: 1, MaxLon: 1, MinLat: 0, MaxLat: 1}}},
		{"flat boundary", Input{Boundary: []orb.Point{{0, 0}, {1, 0}, {2, 0}, {0, 0}}}},
		{"no content", Input{}},
		{"zero canvas", Input{Bounds: smallArea(), Canvas: Canvas{Width: 100}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Render(tt.in, opts)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var degenerate *ErrDegenerateBounds
			if !errors.As(err, &degenerate) {
				t.Errorf("Expected *ErrDegenerateBounds, got %T", err)
			}
			if m != nil {
				t.Errorf("Expected no map, got %d commands", len(m.Commands))
			}
		})
	}

	if rec.renders != len(tests) {
		t.Errorf("Expected %d render events, got %d", len(tests), rec.renders)
	}
}

func TestRenderCommandsOrderedByLayer(t *testing.T) {
	in := Input{
		Bounds: smallArea(),
		Features: []Feature{
			{Name: "Lighthouse", Kind: GeometryPoint, Coordinates: []orb.Point{{0.005, 0.005}}},
			{Name: "Pond", Kind: GeometryPolygon, Coordinates: circle(20, 0.003, 0.003, 0.001)},
		},
		Ways: []Way{
			{ID: 1, Tags: map[string]string{"building": "yes"}, Nodes: circle(4, 0.007, 0.007, 0.0005)},
			road(2, "Elm St", "residential", orb.Point{0.001, 0.008}, orb.Point{0.009, 0.008}),
			{ID: 3, Tags: map[string]string{"natural": "wood"}, Nodes: circle(6, 0.002, 0.007, 0.001)},
			road(4, "", "footway", orb.Point{0.001, 0.001}, orb.Point{0.002, 0.002}),
		},
	}

	m, err := Render(in, quietOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !sort.SliceIsSorted(m.Commands, func(i, j int) bool { return m.Commands[i].Layer < m.Commands[j].Layer }) {
		t.Error("Expected commands ordered by layer")
	}

	seen := make(map[style.Layer]bool)
	for _, c := range m.Commands {
		seen[c.Layer] = true
	}
	for _, l := range []style.Layer{style.LayerNatural, style.LayerFeatures, style.LayerBuildings,
		style.LayerRoads, style.LayerPaths, style.LayerMarkers, style.LayerLabels} {
		if !seen[l] {
			t.Errorf("Expected a command on layer %s", l)
		}
	}

	// Feature labels are placed before road labels.
	got := m.Labels()
	want := []string{"Lighthouse", "Pond", "Elm St"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d labels, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Errorf("Expected label %d to be %q, got %q", i, want[i], got[i].Text)
		}
	}
}

func TestRenderRecoversInvalidCoordinates(t *testing.T) {
	rec := &recorder{}
	opts := quietOptions()
	opts.Hooks = rec

	in := Input{
		Bounds: smallArea(),
		Features: []Feature{
			{Name: "Broken", Kind: GeometryLine, Coordinates: []orb.Point{{0.001, 0.001}, {math.NaN(), 0.002}, {0.003, 0.003}}},
		},
	}

	m, err := Render(in, opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(m.Warnings) == 0 {
		t.Fatal("Expected a warning for the invalid coordinate")
	}
	var invalid *ErrInvalidCoordinate
	if !errors.As(m.Warnings[0], &invalid) {
		t.Errorf("Expected *ErrInvalidCoordinate, got %v", m.Warnings[0])
	}
	if len(rec.warnings) != len(m.Warnings) {
		t.Errorf("Expected %d warning events, got %d", len(m.Warnings), len(rec.warnings))
	}

	line := m.Commands[0]
	if line.Kind != CommandPolyline || len(line.Points) != 3 {
		t.Fatalf("Expected a 3-point polyline, got %s with %d points", line.Kind, len(line.Points))
	}
	if line.Points[1].X != 400 || line.Points[1].Y != 300 {
		t.Errorf("Expected invalid coordinate at canvas center, got %v", line.Points[1])
	}
}

func TestRenderMalformedPolygonKept(t *testing.T) {
	opts := quietOptions()
	opts.Budget.Polygon = 4

	open := circle(30, 0.005, 0.005, 0.002)
	open = open[:len(open)-1]

	in := Input{
		Bounds:   smallArea(),
		Features: []Feature{{Name: "Open", Kind: GeometryPolygon, Coordinates: open}},
	}
	m, err := Render(in, opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var simpl *ErrSimplification
	if len(m.Warnings) != 1 || !errors.As(m.Warnings[0], &simpl) {
		t.Fatalf("Expected one *ErrSimplification warning, got %v", m.Warnings)
	}
	if n := len(m.Commands[0].Points); n != len(open) {
		t.Errorf("Expected the original %d vertices, got %d", len(open), n)
	}
}

func TestRenderLabelsNeverDropped(t *testing.T) {
	var features []Feature
	for i := 0; i < 25; i++ {
		features = append(features, Feature{
			Name:        "Crowded",
			Kind:        GeometryPoint,
			Coordinates: []orb.Point{{0.005, 0.005}},
		})
	}

	m, err := Render(Input{Bounds: smallArea(), Features: features}, quietOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := m.Labels()
	if len(got) != len(features) {
		t.Fatalf("Expected %d labels, got %d", len(features), len(got))
	}
	for i, l := range got {
		if math.IsNaN(l.Anchor.X) || math.IsNaN(l.Anchor.Y) || math.IsInf(l.Anchor.X, 0) || math.IsInf(l.Anchor.Y, 0) {
			t.Errorf("Label %d has non-finite anchor %v", i, l.Anchor)
		}
	}
	if got[0].Placement.State != placement.StateCheckDefault {
		t.Errorf("Expected first label at its default position, got %s", got[0].Placement.State)
	}
}

func TestRenderBoundsFromBoundary(t *testing.T) {
	boundary := []orb.Point{{0, 0}, {0.01, 0}, {0.01, 0.01}, {0, 0.01}, {0, 0}}
	m, err := Render(Input{Boundary: boundary}, quietOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := Bounds{MinLon: -0.001, MaxLon: 0.011, MinLat: -0.001, MaxLat: 0.011}
	if math.Abs(m.Bounds.MinLon-want.MinLon) > 1e-12 || math.Abs(m.Bounds.MaxLat-want.MaxLat) > 1e-12 {
		t.Errorf("Expected %+v, got %+v", want, m.Bounds)
	}
	if m.Canvas.Width != 800 || m.Canvas.Height != 600 {
		t.Errorf("Expected default canvas, got %+v", m.Canvas)
	}
}

func TestRenderDimsWaysOutsideBoundary(t *testing.T) {
	boundary := []orb.Point{{0, 0}, {0.01, 0}, {0.01, 0.01}, {0, 0.01}, {0, 0}}
	in := Input{
		Boundary: boundary,
		Ways: []Way{
			road(1, "", "residential", orb.Point{0.002, 0.002}, orb.Point{0.004, 0.002}),
			road(2, "", "residential", orb.Point{0.0101, 0.003}, orb.Point{0.0105, 0.003}),
			road(3, "", "residential", orb.Point{0.0105, 0.004}, orb.Point{0.0109, 0.004}),
		},
	}

	m, err := Render(in, quietOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	tests := []struct {
		source  string
		opacity float64
	}{
		{"way/1", 0.8},
		{"way/2", 0.8}, // within the boundary buffer
		{"way/3", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			for _, c := range m.Commands {
				if c.Source == tt.source {
					if c.Style.Opacity != tt.opacity {
						t.Errorf("Expected opacity %v, got %v", tt.opacity, c.Style.Opacity)
					}
					return
				}
			}
			t.Errorf("Expected a command for %s", tt.source)
		})
	}
}

func TestRenderLargeInputUsesReducedBudget(t *testing.T) {
	rec := &recorder{}
	opts := quietOptions()
	opts.Hooks = rec
	opts.LargeInputVertices = 1000
	opts.LargeBudget.Polygon = 50

	in := Input{
		Bounds:   smallArea(),
		Features: []Feature{{Kind: GeometryPolygon, Coordinates: circle(2000, 0.005, 0.005, 0.004)}},
	}
	if _, err := Render(in, opts); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if len(rec.simplified) != 1 {
		t.Fatalf("Expected 1 simplification, got %d", len(rec.simplified))
	}
	if rec.simplified[0] > 50 {
		t.Errorf("Expected at most 50 vertices, got %d", rec.simplified[0])
	}
}

func TestRenderFeatureStyleRef(t *testing.T) {
	opts := quietOptions()
	opts.Styles = map[string]Style{"lake": {Fill: "#0000FF"}}

	in := Input{
		Bounds: smallArea(),
		Features: []Feature{
			{Kind: GeometryPolygon, StyleRef: "#lake", Coordinates: circle(8, 0.005, 0.005, 0.002)},
		},
	}
	m, err := Render(in, opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := m.Commands[0].Style.Fill; got != "#0000FF" {
		t.Errorf("Expected fill #0000FF, got %s", got)
	}
}

func TestRenderMultiGeometry(t *testing.T) {
	in := Input{
		Bounds: smallArea(),
		Features: []Feature{{
			Name: "Islands",
			Kind: GeometryMulti,
			Parts: []Part{
				{Kind: GeometryPolygon, Coordinates: circle(6, 0.002, 0.002, 0.001)},
				{Kind: GeometryPolygon, Coordinates: circle(12, 0.007, 0.007, 0.001)},
				{Kind: GeometryPoint, Coordinates: []orb.Point{{0.005, 0.002}}},
			},
		}},
	}

	m, err := Render(in, quietOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	kinds := make(map[CommandKind]int)
	for _, c := range m.Commands {
		kinds[c.Kind]++
	}
	if kinds[CommandPolygon] != 2 || kinds[CommandMarker] != 1 || kinds[CommandLabel] != 1 {
		t.Errorf("Expected 2 polygons, 1 marker and 1 label, got %v", kinds)
	}

	// Anchored on the part with the most vertices.
	l := m.Labels()[0]
	if l.Anchor.X < 400 || l.Anchor.Y > 300 {
		t.Errorf("Expected label in the upper right quadrant, got %v", l.Anchor)
	}
}

func TestRenderRoadOrder(t *testing.T) {
	ways := []Way{
		road(1, "Alpha Rd", "residential", orb.Point{0.001, 0.002}, orb.Point{0.004, 0.002}),
		road(2, "Beta Ave", "primary", orb.Point{0.001, 0.006}, orb.Point{0.009, 0.006}),
	}

	tests := []struct {
		name  string
		order RoadOrder
		first string
	}{
		{"default", nil, "Alpha Rd"},
		{"by name descending", func(a, b *roads.Candidate) bool { return a.Name > b.Name }, "Beta Ave"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := quietOptions()
			opts.RoadOrder = tt.order

			m, err := Render(Input{Bounds: smallArea(), Ways: ways}, opts)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			got := m.Labels()
			if len(got) == 0 {
				t.Fatal("Expected labels, got none")
			}
			if got[0].Text != tt.first {
				t.Errorf("Expected %q placed first, got %q", tt.first, got[0].Text)
			}
		})
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	in := Input{
		Bounds: smallArea(),
		Features: []Feature{
			{Name: "Pond", Kind: GeometryPolygon, Coordinates: circle(40, 0.005, 0.005, 0.002)},
		},
		Ways: []Way{
			road(1, "Main St", "residential", orb.Point{0.001, 0.005}, orb.Point{0.009, 0.005}),
			road(2, "Oak St", "residential", orb.Point{0.005, 0.001}, orb.Point{0.005, 0.009}),
		},
	}

	a, err := Render(in, quietOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	b, err := Render(in, quietOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	la, lb := a.Labels(), b.Labels()
	if len(la) != len(lb) {
		t.Fatalf("Expected equal label counts, got %d and %d", len(la), len(lb))
	}
	for i := range la {
		if la[i].Text != lb[i].Text || la[i].Anchor != lb[i].Anchor {
			t.Errorf("Label %d differs: %+v vs %+v", i, la[i], lb[i])
		}
	}
}

func squareBoundary() []orb.Point {
	return []orb.Point{{0, 0}, {0.01, 0}, {0.01, 0.01}, {0, 0.01}, {0, 0}}
}

func TestRenderWayCrossingBoundaryIsInside(t *testing.T) {
	in := Input{
		Boundary: squareBoundary(),
		Ways: []Way{
			road(1, "", "primary", orb.Point{-0.01, 0.005}, orb.Point{0.02, 0.005}),
		},
	}

	m, err := Render(in, quietOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(m.Commands) != 1 {
		t.Fatalf("Expected 1 command, got %d", len(m.Commands))
	}
	st := m.Commands[0].Style
	if st.Stroke != "#FCD68A" || st.Opacity != 1 {
		t.Errorf("Expected full primary style, got stroke=%s opacity=%v", st.Stroke, st.Opacity)
	}
}

func TestRenderRoadLabelsClippedToBoundary(t *testing.T) {
	in := Input{
		Boundary: squareBoundary(),
		Ways: []Way{
			road(1, "Far Rd", "residential", orb.Point{0.02, 0.02}, orb.Point{0.028, 0.02}),
			road(2, "Cross St", "residential", orb.Point{-0.02, 0.005}, orb.Point{0.006, 0.005}),
		},
	}

	m, err := Render(in, quietOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := m.Labels()
	if len(got) != 1 {
		t.Fatalf("Expected 1 label, got %d", len(got))
	}
	if got[0].Text != "Cross St" {
		t.Errorf("Expected 'Cross St', got %q", got[0].Text)
	}

	// Bounds are the boundary grown by 0.001 on each side: 45000 px per
	// degree, 130 px horizontal offset. The label sits at the middle of the
	// clipped piece, lon 0.003.
	wantX := 130 + (0.003+0.001)*45000
	if math.Abs(got[0].Anchor.X-wantX) > 1e-6 {
		t.Errorf("Expected anchor x %v, got %v", wantX, got[0].Anchor.X)
	}
}

func TestRenderRoadLabelBufferOption(t *testing.T) {
	// Runs parallel to the top edge, 0.0003 degrees outside it.
	in := Input{
		Boundary: squareBoundary(),
		Ways: []Way{
			road(1, "Edge Rd", "residential", orb.Point{0.002, 0.0103}, orb.Point{0.008, 0.0103}),
		},
	}

	tests := []struct {
		name   string
		buffer float64
		want   int
	}{
		{"default buffer keeps it", 0.0005, 1},
		{"tight buffer drops it", 0.0001, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := quietOptions()
			opts.RoadLabelBuffer = tt.buffer

			m, err := Render(in, opts)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if n := len(m.Labels()); n != tt.want {
				t.Errorf("Expected %d labels, got %d", tt.want, n)
			}
		})
	}
}

func TestRenderParkingSymbol(t *testing.T) {
	lot := []orb.Point{{0.004, 0.004}, {0.006, 0.004}, {0.006, 0.006}, {0.004, 0.006}, {0.004, 0.004}}
	in := Input{
		Bounds: smallArea(),
		Ways:   []Way{{ID: 5, Tags: map[string]string{"amenity": "parking"}, Nodes: lot}},
	}

	m, err := Render(in, quietOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(m.Commands) != 2 {
		t.Fatalf("Expected area and symbol, got %d commands", len(m.Commands))
	}

	sym := m.Commands[1]
	if sym.Kind != CommandSymbol || sym.Layer != style.LayerParking {
		t.Fatalf("Expected a symbol on the parking layer, got %s on %s", sym.Kind, sym.Layer)
	}
	if sym.Label == nil || sym.Label.Text != "P" {
		t.Fatalf("Expected symbol text P, got %+v", sym.Label)
	}
	// Center of the lot: lon 0.005 -> x 400, lat 0.005 -> y 300.
	if math.Abs(sym.Points[0].X-400) > 1e-6 || math.Abs(sym.Points[0].Y-300) > 1e-6 {
		t.Errorf("Expected symbol at (400, 300), got %v", sym.Points[0])
	}
	if n := len(m.Labels()); n != 0 {
		t.Errorf("Expected symbols kept out of labels, got %d labels", n)
	}
}

func TestRenderRejectsInvalidOptions(t *testing.T) {
	rec := &recorder{}
	opts := Options{Hooks: rec, Logger: NewLogger(io.Discard, log.DebugLevel)}

	m, err := Render(Input{Bounds: smallArea()}, opts)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if m != nil {
		t.Errorf("Expected no map, got %d commands", len(m.Commands))
	}
	if !strings.Contains(err.Error(), "options validation failed") {
		t.Errorf("Expected validation error, got %v", err)
	}
	var degenerate *ErrDegenerateBounds
	if errors.As(err, &degenerate) {
		t.Error("Expected an options error, not *ErrDegenerateBounds")
	}
	if rec.renders != 1 {
		t.Errorf("Expected 1 render event, got %d", rec.renders)
	}
}
