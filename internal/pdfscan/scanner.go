package pdfscan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultSkipThreshold is the page-area fraction above which an image is
// treated as a page background or scan and dropped.
const DefaultSkipThreshold = 0.3

// Config controls a page scan.
type Config struct {
	// ImageDir is where retained images are written. It must exist.
	ImageDir string

	// SkipThreshold drops images whose area exceeds this fraction of the
	// page area. Images exactly at the threshold are kept.
	SkipThreshold float64
}

// DefaultConfig returns a Config writing images to dir.
func DefaultConfig(dir string) Config {
	return Config{
		ImageDir:      dir,
		SkipThreshold: DefaultSkipThreshold,
	}
}

// Scanner turns a Source into positioned elements in reading order.
type Scanner struct {
	cfg       Config
	log       logrus.FieldLogger
	writeFile func(name string, data []byte, perm os.FileMode) error
}

// NewScanner creates a Scanner. A nil logger discards output.
func NewScanner(cfg Config, log logrus.FieldLogger) *Scanner {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Scanner{cfg: cfg, log: log, writeFile: os.WriteFile}
}

// Scan walks every page of src and returns its text lines and retained
// images sorted by (page, top edge).
func (s *Scanner) Scan(src Source) ([]Element, error) {
	n, err := src.PageCount()
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	var elements []Element
	for i := range n {
		page, err := src.Page(i)
		if err != nil {
			return nil, err
		}
		elements = append(elements, s.scanText(i, page)...)
		elements = append(elements, s.scanImages(i, page)...)
	}

	SortReadingOrder(elements)
	return elements, nil
}

func (s *Scanner) scanText(index int, page PageSource) []Element {
	lines, err := page.Lines()
	if err != nil {
		s.log.WithError(err).WithField("page", index+1).Warn("Could not extract text from page")
		return nil
	}

	out := make([]Element, 0, len(lines))
	for _, l := range lines {
		text := strings.TrimSpace(l.Text)
		if text == "" {
			continue
		}
		out = append(out, Element{Kind: KindText, Page: index, BBox: l.BBox, Content: text})
	}
	return out
}

func (s *Scanner) scanImages(index int, page PageSource) []Element {
	placements, err := page.Images()
	if err != nil {
		s.log.WithError(err).WithField("page", index+1).Warn("Could not locate images on page")
		return nil
	}

	w, h := page.Size()
	pageArea := w * h

	var out []Element
	for i, pl := range placements {
		ordinal := i + 1
		log := s.log.WithFields(logrus.Fields{"page": index + 1, "image": ordinal})

		if pageArea <= 0 {
			log.Warn("Could not process image: page has no area")
			continue
		}
		if pl.BBox.Area()/pageArea > s.cfg.SkipThreshold {
			log.Debug("Skipping page-sized image")
			continue
		}

		data, ext, err := page.ImageData(pl.Name)
		if err != nil {
			log.WithError(err).Warn("Could not process image")
			continue
		}

		path := filepath.Join(s.cfg.ImageDir, ImageFileName(index, ordinal, ext))
		if err := s.writeFile(path, data, 0o644); err != nil {
			log.WithError(err).Warn("Could not save image")
			continue
		}

		out = append(out, Element{Kind: KindImage, Page: index, BBox: pl.BBox, Content: path})
	}
	return out
}

// ImageFileName names an extracted image from its zero-based page index,
// one-based per-page ordinal and extension.
func ImageFileName(pageIndex, ordinal int, ext string) string {
	return fmt.Sprintf("page%d_img%d.%s", pageIndex+1, ordinal, ext)
}
