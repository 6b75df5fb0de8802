package pdfscan

import (
	"bytes"
	"errors"
	"image/png"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pdfquiz/internal/pdfscan/pdftest"
)

func openFixture(t *testing.T, pages ...pdftest.Page) *Document {
	t.Helper()
	doc, err := Open(pdftest.WriteFile(t, pages...))
	require.NoError(t, err)
	t.Cleanup(func() { doc.Close() })
	return doc
}

func TestDocument_LinesTopToBottom(t *testing.T) {
	doc := openFixture(t, pdftest.Page{
		Width: 300, Height: 400,
		Text: []pdftest.Text{
			{X: 50, Y: 200, Body: "Ans: [B]"},
			{X: 50, Y: 350, Body: "SECTION A"},
			{X: 50, Y: 320, Body: "1. What is 2+1?"},
		},
	})

	n, err := doc.PageCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	page, err := doc.Page(0)
	require.NoError(t, err)
	w, h := page.Size()
	assert.Equal(t, 300.0, w)
	assert.Equal(t, 400.0, h)

	lines, err := page.Lines()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].BBox.Y0 < lines[j].BBox.Y0 })

	var texts []string
	for _, l := range lines {
		texts = append(texts, l.Text)
	}
	assert.Equal(t, []string{"SECTION A", "1. What is 2+1?", "Ans: [B]"}, texts)

	q := lines[1].BBox
	assert.InDelta(t, 50, q.X0, 1)
	assert.InDelta(t, 80, q.Y1, 4)
	assert.Greater(t, q.X1, q.X0)
	assert.Greater(t, q.Y1, q.Y0)
}

func TestDocument_ImagePlacementAndPNG(t *testing.T) {
	doc := openFixture(t, pdftest.Page{
		Width: 200, Height: 200,
		Text:   []pdftest.Text{{X: 20, Y: 150, Body: "1. Count the dots."}},
		Images: []pdftest.Image{pdftest.RGB("Im1", 2, 2).At(20, 100, 40, 30)},
	})
	page, err := doc.Page(0)
	require.NoError(t, err)

	placements, err := page.Images()
	require.NoError(t, err)
	require.Len(t, placements, 1)
	assert.Equal(t, "Im1", placements[0].Name)
	assert.InDelta(t, 20, placements[0].BBox.X0, 1e-9)
	assert.InDelta(t, 70, placements[0].BBox.Y0, 1e-9)
	assert.InDelta(t, 60, placements[0].BBox.X1, 1e-9)
	assert.InDelta(t, 100, placements[0].BBox.Y1, 1e-9)

	data, ext, err := page.ImageData("Im1")
	require.NoError(t, err)
	assert.Equal(t, "png", ext)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, []uint32{'z', 'P', 'A'}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestDocument_UndecodableImageKeepsOrdinal(t *testing.T) {
	doc := openFixture(t, pdftest.Page{
		Width: 200, Height: 200,
		Images: []pdftest.Image{
			pdftest.RGB16("Im1", 2, 2).At(10, 150, 20, 20),
			pdftest.RGB("Im2", 2, 2).At(10, 100, 20, 20),
		},
	})
	page, err := doc.Page(0)
	require.NoError(t, err)

	placements, err := page.Images()
	require.NoError(t, err)
	require.Len(t, placements, 2)

	_, _, err = page.ImageData("Im1")
	assert.True(t, errors.Is(err, errUnsupportedImage), "got %v", err)

	logger, hook := logtest.NewNullLogger()
	dir := t.TempDir()
	elements, err := NewScanner(DefaultConfig(dir), logger).Scan(doc)
	require.NoError(t, err)

	require.Len(t, elements, 1)
	assert.Equal(t, filepath.Join(dir, "page1_img2.png"), elements[0].Content)
	assert.NoFileExists(t, filepath.Join(dir, "page1_img1.png"))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "Could not process image", entry.Message)
	assert.Equal(t, 1, entry.Data["image"])
}

func TestDocument_PageWithoutImages(t *testing.T) {
	doc := openFixture(t, pdftest.Page{
		Width: 200, Height: 200,
		Text: []pdftest.Text{{X: 20, Y: 150, Body: "Instructions"}},
	})
	page, err := doc.Page(0)
	require.NoError(t, err)

	placements, err := page.Images()
	require.NoError(t, err)
	assert.Empty(t, placements)

	_, _, err = page.ImageData("Im1")
	assert.Error(t, err)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.pdf"))
	assert.True(t, errors.Is(err, ErrInputMissing), "got %v", err)
}
