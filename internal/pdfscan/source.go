package pdfscan

// Source is a loaded document the scanner can walk page by page.
// The tabula-backed Document is the production implementation.
type Source interface {
	PageCount() (int, error)
	Page(index int) (PageSource, error)
}

// PageSource exposes the primitives of a single page.
type PageSource interface {
	// Size returns the page width and height in points.
	Size() (width, height float64)

	// Lines returns the text lines of the page in top-left coordinates.
	Lines() ([]Line, error)

	// Images returns one placement per distinct image XObject, ordered by
	// first appearance in the page content.
	Images() ([]ImagePlacement, error)

	// ImageData returns the bytes of the named image in its native encoding
	// together with the file extension for that encoding (without a dot).
	ImageData(name string) (data []byte, ext string, err error)
}

// Line is one text line of a page.
type Line struct {
	Text string
	BBox BBox
}

// ImagePlacement is where an image XObject is drawn on a page.
type ImagePlacement struct {
	Name string
	BBox BBox
}
