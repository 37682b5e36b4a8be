package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/beetlebugorg/annomap/pkg/annomap"
)

var _ annomap.Hooks = (*Collector)(nil)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.OnRender(10*time.Millisecond, 12, nil)
	c.OnRender(time.Millisecond, 0, errors.New("bad bounds"))
	c.OnPlacement("default", 0)
	c.OnPlacement("min_overlap", 42)
	c.OnPlacement("min_overlap", 8)
	c.OnWarning("merge", errors.New("fallback"))
	c.OnSimplify("Polygon", 1000, 200, 3)
	c.OnMerge("Main St", 3, 1)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"ok renders", testutil.ToFloat64(c.renders.WithLabelValues("ok")), 1},
		{"failed renders", testutil.ToFloat64(c.renders.WithLabelValues("error")), 1},
		{"default placements", testutil.ToFloat64(c.placements.WithLabelValues("default")), 1},
		{"fallback placements", testutil.ToFloat64(c.placements.WithLabelValues("min_overlap")), 2},
		{"merge warnings", testutil.ToFloat64(c.warnings.WithLabelValues("merge")), 1},
		{"polygon simplifications", testutil.ToFloat64(c.simplifications.WithLabelValues("Polygon")), 1},
		{"merged roads", testutil.ToFloat64(c.merges), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, tt.got)
			}
		})
	}
}

func TestCollectorWithRender(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := annomap.DefaultOptions()
	opts.Hooks = NewCollector(reg)

	in := annomap.Input{
		Bounds: &annomap.Bounds{MinLon: -1, MaxLon: 1, MinLat: -1, MaxLat: 1},
		Canvas: annomap.Canvas{Width: 100, Height: 100},
		Features: []annomap.Feature{
			{Name: "A", Kind: annomap.GeometryPoint, Coordinates: []orb.Point{{0, 0}}},
			{Name: "B", Kind: annomap.GeometryPoint, Coordinates: []orb.Point{{0, 0}}},
		},
	}
	if _, err := annomap.Render(in, opts); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	tests := []struct {
		metric string
		want   int
	}{
		{"annomap_placement_labels_total", 2},
		{"annomap_render_passes_total", 1},
		{"annomap_render_duration_seconds", 1},
	}
	for _, tt := range tests {
		got, err := testutil.GatherAndCount(reg, tt.metric)
		if err != nil {
			t.Fatalf("GatherAndCount failed: %v", err)
		}
		if got != tt.want {
			t.Errorf("Expected %d series of %s, got %d", tt.want, tt.metric, got)
		}
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.OnPlacement("cardinal", 0)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), `annomap_placement_labels_total{state="cardinal"} 1`) {
		t.Errorf("Expected placement counter in output, got:\n%s", rec.Body.String())
	}
}
