// Package roads turns tagged ways into named road groups and label
// candidates. Classification happens once, in Classify; everything
// downstream consumes the resulting Class.
package roads

import (
	"github.com/beetlebugorg/annomap/internal/labels"
)

// Class is the coarse road category governing label size and placement
// aggressiveness.
type Class int

const (
	ClassMajor Class = iota
	ClassSecondary
	ClassResidential
	ClassMinor
)

func (c Class) String() string {
	switch c {
	case ClassMajor:
		return "major"
	case ClassSecondary:
		return "secondary"
	case ClassResidential:
		return "residential"
	default:
		return "minor"
	}
}

// Classify maps a way's highway tag onto a Class. Unknown or missing values
// are minor.
func Classify(tags map[string]string) Class {
	switch tags["highway"] {
	case "motorway", "motorway_link", "trunk", "trunk_link", "primary", "primary_link":
		return ClassMajor
	case "secondary", "secondary_link", "tertiary", "tertiary_link":
		return ClassSecondary
	case "residential", "living_street", "unclassified", "road":
		return ClassResidential
	default:
		return ClassMinor
	}
}

// IsPath reports whether the way is a pedestrian path.
func IsPath(tags map[string]string) bool {
	switch tags["highway"] {
	case "footway", "path", "pedestrian":
		return true
	}
	return false
}

// Priority orders label candidates; lower values are placed first.
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityNormal
)

// Policy is the labeling behaviour of a road class.
type Policy struct {
	// MaxLabels caps the labels on one merged piece.
	MaxLabels int

	// MultiLabelLength is the piece length, in degrees, above which the
	// piece is split to carry more than one label.
	MultiLabelLength float64

	Font     labels.FontSize
	Priority Priority
}

// PolicyFor returns the labeling policy of a class.
func PolicyFor(c Class) Policy {
	switch c {
	case ClassMajor:
		return Policy{MaxLabels: 2, MultiLabelLength: 0.006, Font: labels.FontLarge, Priority: PriorityNormal}
	case ClassSecondary:
		return Policy{MaxLabels: 2, MultiLabelLength: 0.006, Font: labels.FontNormal, Priority: PriorityNormal}
	case ClassResidential:
		return Policy{MaxLabels: 1, MultiLabelLength: 0.004, Font: labels.FontNormal, Priority: PriorityHigh}
	default:
		return Policy{MaxLabels: 1, MultiLabelLength: 0.004, Font: labels.FontSmall, Priority: PriorityHigh}
	}
}
