package labels

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSize is the size class of a label.
type FontSize int

const (
	FontSmall FontSize = iota
	FontNormal
	FontLarge
)

// Pixels returns the em size of the class in pixels.
func (s FontSize) Pixels() float64 {
	switch s {
	case FontSmall:
		return 10
	case FontLarge:
		return 14
	default:
		return 12
	}
}

func (s FontSize) String() string {
	switch s {
	case FontSmall:
		return "small"
	case FontLarge:
		return "large"
	default:
		return "normal"
	}
}

// Measurer measures label text using Go Regular, one face per size class.
// It is safe for concurrent use.
type Measurer struct {
	mu       sync.Mutex
	font     *opentype.Font
	faces    map[FontSize]font.Face
	fallback font.Face
}

// NewMeasurer parses the embedded font. If parsing fails every size falls
// back to the fixed 7x13 bitmap face.
func NewMeasurer() *Measurer {
	m := &Measurer{
		faces:    make(map[FontSize]font.Face),
		fallback: basicfont.Face7x13,
	}
	if f, err := opentype.Parse(goregular.TTF); err == nil {
		m.font = f
	}
	return m
}

// Measure returns the advance width and line height, in pixels, of text set
// at the given size class.
func (m *Measurer) Measure(text string, size FontSize) (width, height float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	adv := font.MeasureString(m.face(size), text)
	return float64(adv) / 64, size.Pixels()
}

func (m *Measurer) face(size FontSize) font.Face {
	if f, ok := m.faces[size]; ok {
		return f
	}
	face := m.fallback
	if m.font != nil {
		f, err := opentype.NewFace(m.font, &opentype.FaceOptions{
			Size:    size.Pixels(),
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err == nil {
			face = f
		}
	}
	m.faces[size] = face
	return face
}
