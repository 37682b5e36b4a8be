package annomap

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadOptions reads options from a YAML file and ANNOMAP_* environment
// variables on top of DefaultOptions.
//
// With an empty path, annomap.yaml is looked up in the working directory and
// in ./config; a missing file is not an error. Environment variables map onto
// keys by upper-casing and replacing dots, so ANNOMAP_CANVAS_WIDTH sets
// canvas.width.
func LoadOptions(path string) (Options, error) {
	v := viper.New()
	setDefaults(v, DefaultOptions())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("annomap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		_ = v.ReadInConfig() // OK if missing
	}

	v.SetEnvPrefix("ANNOMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	opts := DefaultOptions()
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func setDefaults(v *viper.Viper, d Options) {
	v.SetDefault("canvas.width", d.Canvas.Width)
	v.SetDefault("canvas.height", d.Canvas.Height)
	v.SetDefault("canvas.padding", d.Canvas.Padding)
	v.SetDefault("boundary_padding", d.BoundaryPadding)
	v.SetDefault("boundary_buffer", d.BoundaryBuffer)
	v.SetDefault("road_label_buffer", d.RoadLabelBuffer)

	v.SetDefault("simplify.min_tolerance", d.Simplify.MinTolerance)
	v.SetDefault("simplify.max_tolerance", d.Simplify.MaxTolerance)
	v.SetDefault("simplify.factor", d.Simplify.Factor)
	v.SetDefault("simplify.max_iterations", d.Simplify.MaxIterations)

	v.SetDefault("budget.polygon", d.Budget.Polygon)
	v.SetDefault("budget.line", d.Budget.Line)
	v.SetDefault("budget.part", d.Budget.Part)
	v.SetDefault("large_budget.polygon", d.LargeBudget.Polygon)
	v.SetDefault("large_budget.line", d.LargeBudget.Line)
	v.SetDefault("large_budget.part", d.LargeBudget.Part)
	v.SetDefault("large_input_vertices", d.LargeInputVertices)

	v.SetDefault("merge.gap_threshold", d.Merge.GapThreshold)
	v.SetDefault("roads.min_piece_length", d.Roads.MinPieceLength)
	v.SetDefault("roads.short_segment_px", d.Roads.ShortSegmentPx)

	v.SetDefault("placement.search_buffer", d.Placement.SearchBuffer)
	v.SetDefault("placement.footprint_buffer", d.Placement.FootprintBuffer)
	v.SetDefault("placement.spiral_rings", d.Placement.SpiralRings)
	v.SetDefault("placement.spiral_steps", d.Placement.SpiralSteps)
	v.SetDefault("placement.spiral_radius", d.Placement.SpiralRadius)

	v.SetDefault("straight_tolerance", d.StraightTolerance)
	v.SetDefault("log_level", d.LogLevel)
}
