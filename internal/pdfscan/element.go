package pdfscan

import "sort"

// Kind distinguishes the two primitives a page scan produces.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// BBox is a rectangle in page coordinates with the origin at the top-left
// corner of the page. Y grows downward, so Y0 is the top edge.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Area returns the box area, or 0 for degenerate boxes.
func (b BBox) Area() float64 {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Element is a positioned primitive found on one page.
type Element struct {
	Kind Kind
	// Page is the zero-based page index.
	Page int
	BBox BBox
	// Content is the line text for KindText and the saved file path for KindImage.
	Content string
}

// SortReadingOrder orders elements by page, then by the top edge of their
// bounding box. The sort is stable so elements sharing a top edge keep their
// scan order (text before images on the same page).
//
// There is no column awareness: on multi-column pages lines from different
// columns interleave by height.
func SortReadingOrder(elements []Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		if elements[i].Page != elements[j].Page {
			return elements[i].Page < elements[j].Page
		}
		return elements[i].BBox.Y0 < elements[j].BBox.Y0
	})
}
