// Package merge joins same-named line fragments into longer polylines for
// label placement. Drawable geometry is never touched; every function here
// works on copies.
package merge

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/beetlebugorg/annomap/internal/geo"
)

// DefaultGapThreshold is the largest distance, in degrees, between two
// fragments that are still considered the same street.
const DefaultGapThreshold = 0.0005

// Options configures Merge.
type Options struct {
	GapThreshold float64 `mapstructure:"gap_threshold"`
}

// DefaultOptions returns the options used by the renderer.
func DefaultOptions() Options {
	return Options{GapThreshold: DefaultGapThreshold}
}

// Merge joins fragments in two passes. The first concatenates fragments that
// meet at an exact shared end coordinate. The second repeatedly joins the
// longest polyline to its nearest neighbour while that neighbour is closer
// than opts.GapThreshold.
//
// Output order is unspecified. Malformed input is returned as separate
// copies of the original fragments together with a *geo.ErrMergeFallback.
func Merge(lines [][]orb.Point, opts Options) ([][]orb.Point, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	if err := validate(lines); err != nil {
		return separate(lines), &geo.ErrMergeFallback{Fragments: len(lines), Reason: err.Error()}
	}

	work := separate(lines)
	work = joinEndpoints(work)
	work = joinGaps(work, opts.GapThreshold)
	return work, nil
}

// Length returns the planar length of a polyline in degrees.
func Length(line []orb.Point) float64 {
	return planar.Length(orb.LineString(line))
}

// Distance returns the closest-point distance between two polylines.
func Distance(a, b []orb.Point) float64 {
	for i := 0; i+1 < len(a); i++ {
		for k := 0; k+1 < len(b); k++ {
			if geo.SegmentsIntersect(a[i], a[i+1], b[k], b[k+1]) {
				return 0
			}
		}
	}
	return math.Min(pointsToLine(a, b), pointsToLine(b, a))
}

func validate(lines [][]orb.Point) error {
	for i, l := range lines {
		if len(l) < 2 {
			return fmt.Errorf("fragment %d has %d coordinates", i, len(l))
		}
		for _, c := range l {
			if err := geo.ValidateCoordinate(c); err != nil {
				return fmt.Errorf("fragment %d: %w", i, err)
			}
		}
	}
	return nil
}

func separate(lines [][]orb.Point) [][]orb.Point {
	out := make([][]orb.Point, 0, len(lines))
	for _, l := range lines {
		if len(l) == 0 {
			continue
		}
		out = append(out, append([]orb.Point(nil), l...))
	}
	return out
}

func first(l []orb.Point) orb.Point { return l[0] }
func last(l []orb.Point) orb.Point  { return l[len(l)-1] }
func closed(l []orb.Point) bool     { return first(l).Equal(last(l)) }

func reversed(l []orb.Point) []orb.Point {
	out := make([]orb.Point, len(l))
	for i, p := range l {
		out[len(l)-1-i] = p
	}
	return out
}

// concat appends b to a, dropping b's first coordinate when it repeats a's
// last.
func concat(a, b []orb.Point) []orb.Point {
	out := make([]orb.Point, 0, len(a)+len(b))
	out = append(out, a...)
	if len(b) > 0 && last(a).Equal(first(b)) {
		b = b[1:]
	}
	return append(out, b...)
}

// joinEndpoints concatenates fragments sharing an end coordinate. A shared
// coordinate only joins when exactly two fragment ends meet there, so forks
// and crossings stay split.
func joinEndpoints(lines [][]orb.Point) [][]orb.Point {
	for {
		degree := make(map[orb.Point]int)
		for _, l := range lines {
			if closed(l) {
				continue
			}
			degree[first(l)]++
			degree[last(l)]++
		}

		joined := false
		for i := 0; i < len(lines) && !joined; i++ {
			for j := i + 1; j < len(lines); j++ {
				if l, ok := joinShared(lines[i], lines[j], degree); ok {
					lines[i] = l
					lines = append(lines[:j], lines[j+1:]...)
					joined = true
					break
				}
			}
		}
		if !joined {
			return lines
		}
	}
}

func joinShared(a, b []orb.Point, degree map[orb.Point]int) ([]orb.Point, bool) {
	if closed(a) || closed(b) {
		return nil, false
	}
	switch {
	case last(a).Equal(first(b)) && degree[last(a)] == 2:
		return concat(a, b), true
	case last(a).Equal(last(b)) && degree[last(a)] == 2:
		return concat(a, reversed(b)), true
	case first(a).Equal(last(b)) && degree[first(a)] == 2:
		return concat(b, a), true
	case first(a).Equal(first(b)) && degree[first(a)] == 2:
		return concat(reversed(b), a), true
	}
	return nil, false
}

// joinGaps bridges small gaps between the remaining fragments, longest first.
func joinGaps(lines [][]orb.Point, threshold float64) [][]orb.Point {
	for len(lines) > 1 {
		order := make([]int, len(lines))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(x, y int) bool {
			return Length(lines[order[x]]) > Length(lines[order[y]])
		})

		joined := false
		for _, i := range order {
			j, d := nearest(lines, i)
			if j < 0 || !(d < threshold) {
				continue
			}
			lines[i] = connect(lines[i], lines[j])
			lines = append(lines[:j], lines[j+1:]...)
			joined = true
			break
		}
		if !joined {
			break
		}
	}
	return lines
}

func nearest(lines [][]orb.Point, i int) (int, float64) {
	best, bestD := -1, math.Inf(1)
	for j := range lines {
		if j == i {
			continue
		}
		if d := Distance(lines[i], lines[j]); d < bestD {
			best, bestD = j, d
		}
	}
	return best, bestD
}

// connect joins b onto a through whichever pair of ends lies closest.
func connect(a, b []orb.Point) []orb.Point {
	options := []struct {
		d    float64
		join func() []orb.Point
	}{
		{planar.Distance(last(a), first(b)), func() []orb.Point { return concat(a, b) }},
		{planar.Distance(last(a), last(b)), func() []orb.Point { return concat(a, reversed(b)) }},
		{planar.Distance(first(a), last(b)), func() []orb.Point { return concat(b, a) }},
		{planar.Distance(first(a), first(b)), func() []orb.Point { return concat(reversed(b), a) }},
	}
	best := 0
	for k := 1; k < len(options); k++ {
		if options[k].d < options[best].d {
			best = k
		}
	}
	return options[best].join()
}

func pointsToLine(points, line []orb.Point) float64 {
	d := math.Inf(1)
	for _, p := range points {
		for k := 0; k+1 < len(line); k++ {
			d = math.Min(d, planar.DistanceFromSegment(line[k], line[k+1], p))
		}
	}
	return d
}
