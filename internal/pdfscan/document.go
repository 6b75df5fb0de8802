package pdfscan

import (
	"errors"
	"fmt"
	"os"

	"github.com/tsawler/tabula/contentstream"
	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/layout"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
)

// ErrInputMissing is returned when the input PDF does not exist.
var ErrInputMissing = errors.New("input PDF not found")

// Document is a Source backed by the tabula PDF reader.
type Document struct {
	r *reader.Reader
}

// Open loads the PDF at path.
func Open(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF %s: %w", path, err)
	}
	return &Document{r: r}, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	return d.r.Close()
}

func (d *Document) PageCount() (int, error) {
	return d.r.PageCount()
}

func (d *Document) Page(index int) (PageSource, error) {
	p, err := d.r.GetPage(index)
	if err != nil {
		return nil, fmt.Errorf("load page %d: %w", index+1, err)
	}
	raw, err := p.MediaBox()
	if err != nil {
		return nil, fmt.Errorf("page %d media box: %w", index+1, err)
	}
	var box mediaBox
	copy(box[:], raw)
	return &documentPage{r: d.r, page: p, box: box}, nil
}

type documentPage struct {
	r    *reader.Reader
	page *pages.Page
	box  mediaBox

	// images is filled lazily by Images and reused by ImageData.
	images map[string]imageXObject
}

func (p *documentPage) Size() (float64, float64) {
	return p.box.width(), p.box.height()
}

func (p *documentPage) Lines() ([]Line, error) {
	fragments, err := p.r.ExtractTextFragments(p.page)
	if err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		return nil, nil
	}

	detected := layout.NewLineDetector().Detect(fragments, p.box.width(), p.box.height())
	lines := make([]Line, 0, len(detected.Lines))
	for _, l := range detected.Lines {
		b := l.BBox
		lines = append(lines, Line{
			Text: l.Text,
			BBox: p.box.toTopLeft(b.X, b.Y, b.X+b.Width, b.Y+b.Height),
		})
	}
	return lines, nil
}

func (p *documentPage) Images() ([]ImagePlacement, error) {
	if err := p.loadImages(); err != nil {
		return nil, err
	}
	if len(p.images) == 0 {
		return nil, nil
	}

	data, err := p.contentBytes()
	if err != nil {
		return nil, err
	}
	ops, err := contentstream.NewParser(data).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse content stream: %w", err)
	}
	return placeImages(ops, p.box, func(name string) bool {
		_, ok := p.images[name]
		return ok
	}), nil
}

// ImageData decodes the named image. A failure only affects this image.
func (p *documentPage) ImageData(name string) ([]byte, string, error) {
	if err := p.loadImages(); err != nil {
		return nil, "", err
	}
	img, ok := p.images[name]
	if !ok {
		return nil, "", fmt.Errorf("image %q not found on page", name)
	}
	if img.err != nil {
		return nil, "", img.err
	}
	data, ext, err := encodeImage(p.r, img.stream)
	if err != nil {
		return nil, "", fmt.Errorf("image %s: %w", name, err)
	}
	return data, ext, nil
}

func (p *documentPage) loadImages() error {
	if p.images != nil {
		return nil
	}
	resources, err := p.page.Resources()
	if err != nil {
		return fmt.Errorf("page resources: %w", err)
	}
	images, err := pageImages(p.r, resources)
	if err != nil {
		return err
	}
	p.images = images
	return nil
}

// contentBytes decodes and concatenates all content streams of the page.
func (p *documentPage) contentBytes() ([]byte, error) {
	contents, err := p.page.Contents()
	if err != nil {
		return nil, fmt.Errorf("page contents: %w", err)
	}
	var all []byte
	for _, obj := range contents {
		stream, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		data, err := stream.Decode()
		if err != nil {
			return nil, fmt.Errorf("decode content stream: %w", err)
		}
		all = append(all, data...)
		all = append(all, '\n')
	}
	return all, nil
}
