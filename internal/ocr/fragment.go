// Package ocr owns the raw OCR data model — text fragments with
// bounding polygons — and the reconstruction of visual lines from them.
//
// Fragments arrive from the hosted document-understanding service in an
// order that is internal to that service and not guaranteed to be the
// visual reading order. Nothing here assumes one fragment equals one
// word: depending on the collaborator's granularity a fragment may be a
// token, a line or a whole block.
package ocr

import (
	"sort"
	"strings"
)

// Coordinates is a single point on a page. Normalized coordinates are
// in the 0..1 range relative to the page size.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Corners holds the four corners of a bounding polygon.
type Corners struct {
	TopLeft     Coordinates `json:"topLeft"`
	TopRight    Coordinates `json:"topRight"`
	BottomLeft  Coordinates `json:"bottomLeft"`
	BottomRight Coordinates `json:"bottomRight"`
}

// BoundingPoly carries both the absolute and the page-normalized
// corners of a region.
type BoundingPoly struct {
	Vertices           Corners `json:"vertices"`
	NormalizedVertices Corners `json:"normalizedVertices"`
}

// Indices locates a fragment's text inside the page's full text.
type Indices struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// TextFragment is the atomic OCR output unit. Fragments are immutable
// once produced by the OCR collaborator.
type TextFragment struct {
	Text         string       `json:"text"`
	Page         int          `json:"page"`
	Indices      Indices      `json:"indices"`
	BoundingPoly BoundingPoly `json:"boundingPoly"`
}

// Axis selects a coordinate for range checks.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// WithinRange reports whether all four corners lie within [start, end]
// on the given axis. Extractors use this to restrict field searches to
// an issuer-specific rectangle.
func (c Corners) WithinRange(axis Axis, start, end float64) bool {
	pick := func(p Coordinates) float64 {
		if axis == AxisX {
			return p.X
		}
		return p.Y
	}
	for _, p := range []Coordinates{c.TopLeft, c.TopRight, c.BottomLeft, c.BottomRight} {
		v := pick(p)
		if v < start || v > end {
			return false
		}
	}
	return true
}

// SortFragments orders a page's fragments into visual order: by
// normalized bottom-left Y first, then by X for fragments within the
// same Y tolerance band.
func SortFragments(fragments []*TextFragment) []*TextFragment {
	sorted := make([]*TextFragment, len(fragments))
	copy(sorted, fragments)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BoundingPoly.NormalizedVertices.BottomLeft.Y <
			sorted[j].BoundingPoly.NormalizedVertices.BottomLeft.Y
	})
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].BoundingPoly.NormalizedVertices.BottomLeft, sorted[j].BoundingPoly.NormalizedVertices.BottomLeft
		if abs(a.Y-b.Y) <= LineYTolerance {
			return a.X < b.X
		}
		return false
	})

	return sorted
}

// Strip trims surrounding whitespace from a fragment's text.
func Strip(text string) string {
	return strings.TrimSpace(text)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
