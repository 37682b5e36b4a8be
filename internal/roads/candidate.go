package roads

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Options controls candidate selection.
type Options struct {
	// MinPieceLength is the length, in degrees, a merged piece needs to be
	// labeled when its road has several pieces.
	MinPieceLength float64 `mapstructure:"min_piece_length"`

	// ShortSegmentPx is the pixel length below which a candidate is
	// scheduled with high priority whatever its class.
	ShortSegmentPx float64 `mapstructure:"short_segment_px"`
}

// DefaultOptions returns the selection used by the renderer.
func DefaultOptions() Options {
	return Options{
		MinPieceLength: 0.0005,
		ShortSegmentPx: 80,
	}
}

// Candidate is one sub-line of a road that may receive a label.
type Candidate struct {
	Name     string
	Class    Class
	Priority Priority

	// Piece indexes the merged piece the line came from; Pieces is the
	// number of label-worthy pieces of the road.
	Piece, Pieces int

	// Sub indexes the line within its piece when the piece is split.
	Sub int

	Line []orb.Point

	// Length is the projected length in pixels.
	Length float64
}

// Candidates selects the label-worthy sub-lines of a road from its merged
// pieces. pxPerDeg converts lengths to pixels for scheduling.
//
// When a road has several pieces, pieces shorter than MinPieceLength are
// dropped unless none would remain, in which case the longest is kept.
// A piece longer than its class's MultiLabelLength is cut into up to
// MaxLabels equal sub-lines.
func Candidates(name string, class Class, pieces [][]orb.Point, pxPerDeg float64, opts Options) []Candidate {
	type piece struct {
		line   []orb.Point
		length float64
	}
	all := make([]piece, 0, len(pieces))
	for _, p := range pieces {
		if len(p) < 2 {
			continue
		}
		all = append(all, piece{p, planar.Length(orb.LineString(p))})
	}
	if len(all) == 0 {
		return nil
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].length > all[j].length })

	worthy := all
	if len(all) > 1 {
		worthy = worthy[:0:0]
		for _, p := range all {
			if p.length > opts.MinPieceLength {
				worthy = append(worthy, p)
			}
		}
		if len(worthy) == 0 {
			worthy = all[:1]
		}
	}

	policy := PolicyFor(class)
	var out []Candidate
	for i, p := range worthy {
		n := 1
		if policy.MultiLabelLength > 0 && p.length > policy.MultiLabelLength {
			n = int(p.length/policy.MultiLabelLength) + 1
		}
		if n > policy.MaxLabels {
			n = policy.MaxLabels
		}
		if n < 1 {
			n = 1
		}

		for s, sub := range Split(p.line, n) {
			c := Candidate{
				Name:     name,
				Class:    class,
				Priority: policy.Priority,
				Piece:    i,
				Pieces:   len(worthy),
				Sub:      s,
				Line:     sub,
				Length:   planar.Length(orb.LineString(sub)) * pxPerDeg,
			}
			if c.Length < opts.ShortSegmentPx {
				c.Priority = PriorityHigh
			}
			out = append(out, c)
		}
	}
	return out
}

// Split cuts a polyline into n pieces of equal length.
func Split(line []orb.Point, n int) [][]orb.Point {
	total := planar.Length(orb.LineString(line))
	if n <= 1 || total == 0 {
		return [][]orb.Point{append([]orb.Point(nil), line...)}
	}
	out := make([][]orb.Point, 0, n)
	step := total / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, Substring(line, float64(i)*step, float64(i+1)*step))
	}
	return out
}

// Substring returns the part of line between the distances from and to,
// measured along the line from its first point.
func Substring(line []orb.Point, from, to float64) []orb.Point {
	var out []orb.Point
	add := func(p orb.Point) {
		if len(out) == 0 || !out[len(out)-1].Equal(p) {
			out = append(out, p)
		}
	}

	walked := 0.0
	for i := 0; i+1 < len(line); i++ {
		a, b := line[i], line[i+1]
		l := planar.Distance(a, b)
		segStart, segEnd := walked, walked+l
		walked = segEnd
		if l == 0 || segEnd < from || segStart > to {
			continue
		}
		add(interpolate(a, b, (math.Max(from, segStart)-segStart)/l))
		if segEnd <= to {
			add(b)
		} else {
			add(interpolate(a, b, (to-segStart)/l))
			break
		}
	}
	if len(out) == 1 {
		out = append(out, out[0])
	}
	return out
}

func interpolate(a, b orb.Point, t float64) orb.Point {
	return orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}

// Less reports whether candidate a should be placed before b.
type Less func(a, b *Candidate) bool

// ByPriorityThenLength places high-priority candidates first and, within a
// priority, shorter candidates first: short roads are the hardest to fit and
// get first access to open canvas.
func ByPriorityThenLength(a, b *Candidate) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.Length < b.Length
}

// Sort orders candidates with less, keeping the input order of ties. A nil
// less means ByPriorityThenLength.
func Sort(cands []Candidate, less Less) {
	if less == nil {
		less = ByPriorityThenLength
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return less(&cands[i], &cands[j])
	})
}

// Labeled remembers which piece of each road received a label during one
// render pass.
type Labeled struct {
	pieces map[string]int
}

// NewLabeled returns an empty set.
func NewLabeled() *Labeled {
	return &Labeled{pieces: make(map[string]int)}
}

// Skip reports whether c repeats a road that is already labeled on another
// piece. Roads broken into three or more pieces may be labeled on each.
func (l *Labeled) Skip(c Candidate) bool {
	piece, ok := l.pieces[c.Name]
	return ok && piece != c.Piece && c.Pieces < 3
}

// Mark records that c was labeled.
func (l *Labeled) Mark(c Candidate) {
	if _, ok := l.pieces[c.Name]; !ok {
		l.pieces[c.Name] = c.Piece
	}
}

// Has reports whether any piece of the named road was labeled.
func (l *Labeled) Has(name string) bool {
	_, ok := l.pieces[name]
	return ok
}
