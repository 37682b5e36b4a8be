package annomap

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/beetlebugorg/annomap/internal/geo"
	"github.com/beetlebugorg/annomap/internal/labels"
	"github.com/beetlebugorg/annomap/internal/merge"
	"github.com/beetlebugorg/annomap/internal/placement"
	"github.com/beetlebugorg/annomap/internal/roads"
	"github.com/beetlebugorg/annomap/internal/simplify"
)

// Options configures a render pass.
type Options struct {
	// Canvas is used when Input.Canvas has no size.
	Canvas Canvas `mapstructure:"canvas"`

	// BoundaryPadding grows the bounding box derived from a boundary, in
	// degrees.
	BoundaryPadding float64 `mapstructure:"boundary_padding"`

	// BoundaryBuffer is how close, in degrees, a way must come to the
	// boundary to count as inside it.
	BoundaryBuffer float64 `mapstructure:"boundary_buffer"`

	// RoadLabelBuffer grows the boundary, in degrees, before merged roads
	// are clipped to it for labeling.
	RoadLabelBuffer float64 `mapstructure:"road_label_buffer"`

	Simplify simplify.Options `mapstructure:"simplify"`

	// Budget caps feature vertices; LargeBudget applies instead once the
	// input holds more than LargeInputVertices coordinates.
	Budget             simplify.Budget `mapstructure:"budget"`
	LargeBudget        simplify.Budget `mapstructure:"large_budget"`
	LargeInputVertices int             `mapstructure:"large_input_vertices"`

	Merge     merge.Options     `mapstructure:"merge"`
	Roads     roads.Options     `mapstructure:"roads"`
	Placement placement.Options `mapstructure:"placement"`

	// StraightTolerance is the heading change, in degrees, a straight run
	// of a road may have.
	StraightTolerance float64 `mapstructure:"straight_tolerance"`

	// Styles are looked up by Feature.StyleRef.
	Styles map[string]Style `mapstructure:"styles"`

	// LogLevel is used when Logger is nil.
	LogLevel string `mapstructure:"log_level"`

	Logger *log.Logger `mapstructure:"-"`
	Hooks  Hooks       `mapstructure:"-"`

	// RoadOrder schedules road label candidates. Nil means priority class
	// first, then increasing length.
	RoadOrder RoadOrder `mapstructure:"-"`
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Canvas:             Canvas{Width: 800, Height: 600, Padding: 0.05},
		BoundaryPadding:    geo.BoundaryPadding,
		BoundaryBuffer:     0.0002,
		RoadLabelBuffer:    0.0005,
		Simplify:           simplify.DefaultOptions(),
		Budget:             simplify.DefaultBudget(),
		LargeBudget:        simplify.LargeBudget(),
		LargeInputVertices: simplify.LargeInputVertices,
		Merge:              merge.DefaultOptions(),
		Roads:              roads.DefaultOptions(),
		Placement:          placement.DefaultOptions(),
		StraightTolerance:  labels.DefaultStraightTolerance,
		LogLevel:           "warn",
	}
}

// Validate reports every option that cannot be used.
func (o Options) Validate() error {
	var errs []string

	if o.Canvas.Width <= 0 || o.Canvas.Height <= 0 {
		errs = append(errs, fmt.Sprintf("canvas must have positive size, got %gx%g", o.Canvas.Width, o.Canvas.Height))
	}
	if o.Canvas.Padding < 0 || o.Canvas.Padding >= 0.5 {
		errs = append(errs, fmt.Sprintf("canvas.padding must be in [0, 0.5), got %g", o.Canvas.Padding))
	}
	if o.BoundaryPadding < 0 {
		errs = append(errs, "boundary_padding must not be negative")
	}
	if o.BoundaryBuffer < 0 || o.RoadLabelBuffer < 0 {
		errs = append(errs, "boundary_buffer and road_label_buffer must not be negative")
	}
	if o.LargeInputVertices <= 0 {
		errs = append(errs, "large_input_vertices must be positive")
	}
	if o.Simplify.MinTolerance <= 0 || o.Simplify.MaxTolerance < o.Simplify.MinTolerance {
		errs = append(errs, fmt.Sprintf("simplify tolerances must satisfy 0 < min <= max, got %g and %g",
			o.Simplify.MinTolerance, o.Simplify.MaxTolerance))
	}
	if o.Simplify.Factor <= 1 {
		errs = append(errs, "simplify.factor must be greater than 1")
	}
	if o.Simplify.MaxIterations < 1 {
		errs = append(errs, "simplify.max_iterations must be positive")
	}
	if o.Merge.GapThreshold < 0 {
		errs = append(errs, "merge.gap_threshold must not be negative")
	}
	if o.Placement.SearchBuffer < 0 || o.Placement.FootprintBuffer < 0 {
		errs = append(errs, "placement buffers must not be negative")
	}
	if o.Placement.SpiralRings < 0 || o.Placement.SpiralSteps < 0 {
		errs = append(errs, "placement spiral shape must not be negative")
	}
	if _, err := log.ParseLevel(o.LogLevel); o.LogLevel != "" && err != nil {
		errs = append(errs, fmt.Sprintf("log_level: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("options validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
