package ocr

// LineYTolerance is the normalized Y difference under which two
// fragments are considered part of the same visual line. The value is
// empirically tuned; every layout extractor that depends on line
// geometry shares it.
const LineYTolerance = 0.01

// repairWindow bounds how far back GroupLinesRepair looks for a
// still-open line when re-attaching an out-of-order fragment.
const repairWindow = 3

// Line is an ordered group of fragments judged to lie on the same
// horizontal band of one page, with a combined bounding polygon. Lines
// are derived data: rebuildable from fragments, never mutated after
// construction.
type Line struct {
	Fragments    []*TextFragment
	Page         int
	BoundingPoly BoundingPoly
}

// Document is a per-page sequence of reconstructed lines.
type Document [][]*Line

// Texts returns the stripped text of each fragment in the line.
func (l *Line) Texts() []string {
	texts := make([]string, 0, len(l.Fragments))
	for _, f := range l.Fragments {
		texts = append(texts, Strip(f.Text))
	}
	return texts
}

// Text returns the line's fragments joined with single spaces.
func (l *Line) Text() string {
	var b []byte
	for i, f := range l.Fragments {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, Strip(f.Text)...)
	}
	return string(b)
}

// FirstPage returns the document's first page, or nil when the
// document is empty.
func (d Document) FirstPage() []*Line {
	if len(d) == 0 {
		return nil
	}
	return d[0]
}

// GroupLines reconstructs visual lines from per-page fragment
// sequences. Fragments are walked in emission order; a fragment whose
// normalized bottom-left Y is within LineYTolerance of the previous
// fragment joins the current line, anything else closes it. A page
// boundary always closes the current line. Pages with zero fragments
// yield zero lines.
func GroupLines(pages [][]*TextFragment) Document {
	return GroupLinesWithTolerance(pages, LineYTolerance)
}

// GroupLinesWithTolerance is GroupLines with an explicit tolerance, for
// callers that tune it per document source.
func GroupLinesWithTolerance(pages [][]*TextFragment, tolerance float64) Document {
	doc := make(Document, 0, len(pages))
	for page, fragments := range pages {
		doc = append(doc, groupPage(page, fragments, false, tolerance))
	}
	return doc
}

// GroupLinesRepair is the enhanced variant of GroupLines: a fragment
// that does not continue the current line is first checked against the
// last few closed lines of the same page and re-attached when it falls
// within tolerance of that line's last fragment. This repairs rare
// out-of-order emission from the OCR collaborator.
func GroupLinesRepair(pages [][]*TextFragment) Document {
	return GroupLinesRepairWithTolerance(pages, LineYTolerance)
}

// GroupLinesRepairWithTolerance is GroupLinesRepair with an explicit
// tolerance.
func GroupLinesRepairWithTolerance(pages [][]*TextFragment, tolerance float64) Document {
	doc := make(Document, 0, len(pages))
	for page, fragments := range pages {
		doc = append(doc, groupPage(page, fragments, true, tolerance))
	}
	return doc
}

func groupPage(page int, fragments []*TextFragment, repair bool, tolerance float64) []*Line {
	var lines []*Line
	var current *Line

	for i, f := range fragments {
		if current == nil {
			current = &Line{Page: page, Fragments: []*TextFragment{f}}
			continue
		}

		prev := fragments[i-1]
		dy := abs(f.BoundingPoly.NormalizedVertices.BottomLeft.Y -
			prev.BoundingPoly.NormalizedVertices.BottomLeft.Y)
		if dy <= tolerance {
			current.Fragments = append(current.Fragments, f)
			continue
		}

		if repair {
			if attached := reattach(lines, f, tolerance); attached {
				continue
			}
		}

		lines = append(lines, current)
		current = &Line{Page: page, Fragments: []*TextFragment{f}}
	}
	if current != nil {
		lines = append(lines, current)
	}

	for _, line := range lines {
		line.BoundingPoly = combinedBoundingPoly(line.Fragments)
	}
	return lines
}

// reattach tries to append f to one of the most recently closed lines.
func reattach(lines []*Line, f *TextFragment, tolerance float64) bool {
	start := len(lines) - repairWindow
	if start < 0 {
		start = 0
	}
	for i := len(lines) - 1; i >= start; i-- {
		last := lines[i].Fragments[len(lines[i].Fragments)-1]
		dy := abs(f.BoundingPoly.NormalizedVertices.BottomLeft.Y -
			last.BoundingPoly.NormalizedVertices.BottomLeft.Y)
		if dy <= tolerance {
			lines[i].Fragments = append(lines[i].Fragments, f)
			return true
		}
	}
	return false
}

// combinedBoundingPoly computes the smallest axis-aligned polygon
// covering all fragments: element-wise min for the top and left
// corners, max for the bottom and right.
func combinedBoundingPoly(fragments []*TextFragment) BoundingPoly {
	combine := func(pick func(*TextFragment) Corners) Corners {
		first := pick(fragments[0])
		c := Corners{
			TopLeft:     first.TopLeft,
			TopRight:    first.TopRight,
			BottomLeft:  first.BottomLeft,
			BottomRight: first.BottomRight,
		}
		for _, f := range fragments[1:] {
			v := pick(f)
			c.TopLeft.X = min(c.TopLeft.X, v.TopLeft.X)
			c.TopLeft.Y = min(c.TopLeft.Y, v.TopLeft.Y)
			c.TopRight.X = max(c.TopRight.X, v.TopRight.X)
			c.TopRight.Y = min(c.TopRight.Y, v.TopRight.Y)
			c.BottomLeft.X = min(c.BottomLeft.X, v.BottomLeft.X)
			c.BottomLeft.Y = max(c.BottomLeft.Y, v.BottomLeft.Y)
			c.BottomRight.X = max(c.BottomRight.X, v.BottomRight.X)
			c.BottomRight.Y = max(c.BottomRight.Y, v.BottomRight.Y)
		}
		return c
	}

	return BoundingPoly{
		Vertices: combine(func(f *TextFragment) Corners {
			return f.BoundingPoly.Vertices
		}),
		NormalizedVertices: combine(func(f *TextFragment) Corners {
			return f.BoundingPoly.NormalizedVertices
		}),
	}
}
