// Package pdftest builds small, well-formed PDF files for tests. Pages carry
// Helvetica text lines and uncompressed image XObjects placed with a scaling
// cm, which is all the scanner needs to exercise real parsing.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Text is one line of text drawn with Td at (X, Y) in PDF user space.
type Text struct {
	X, Y float64
	Size float64
	Body string
}

// Image is an image XObject painted at [X, Y, X+W, Y+H] in PDF user space.
type Image struct {
	Name             string
	Width, Height    int
	ColorSpace       string
	BitsPerComponent int
	Data             []byte

	X, Y, W, H float64
}

// Page is one page. Text is drawn before images, each in slice order.
type Page struct {
	Width, Height float64
	Text          []Text
	Images        []Image
}

// RGB returns a w x h DeviceRGB image with 8 bits per component. Every
// sample byte is an ASCII letter so the stream body never starts with PDF
// whitespace or a delimiter.
func RGB(name string, w, h int) Image {
	return Image{
		Name:             name,
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Data:             bytes.Repeat([]byte("zPA"), w*h),
	}
}

// RGB16 is like RGB with 16 bits per component.
func RGB16(name string, w, h int) Image {
	img := RGB(name, w, h)
	img.BitsPerComponent = 16
	img.Data = bytes.Repeat([]byte("zzPPAA"), w*h)
	return img
}

// At returns a copy of img placed at [x, y, x+w, y+h].
func (img Image) At(x, y, w, h float64) Image {
	img.X, img.Y, img.W, img.H = x, y, w, h
	return img
}

// Build serializes pages into a PDF 1.7 file with a classic xref table.
func Build(pages ...Page) []byte {
	const (
		catalogObj = 1
		pagesObj   = 2
		fontObj    = 3
	)

	next := fontObj + 1
	var kids []string
	type pageObjs struct {
		page, content int
		images        []int
	}
	layout := make([]pageObjs, len(pages))
	for i, p := range pages {
		layout[i].page = next
		layout[i].content = next + 1
		next += 2
		for range p.Images {
			layout[i].images = append(layout[i].images, next)
			next++
		}
		kids = append(kids, ref(layout[i].page))
	}

	objects := make([][]byte, next)
	objects[catalogObj] = []byte(fmt.Sprintf("<< /Type /Catalog /Pages %s >>", ref(pagesObj)))
	objects[pagesObj] = []byte(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objects[fontObj] = []byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, p := range pages {
		l := layout[i]
		var xobjects []string
		for j, img := range p.Images {
			xobjects = append(xobjects, fmt.Sprintf("/%s %s", img.Name, ref(l.images[j])))
			objects[l.images[j]] = imageObject(img)
		}
		resources := fmt.Sprintf("<< /Font << /F1 %s >>", ref(fontObj))
		if len(xobjects) > 0 {
			resources += fmt.Sprintf(" /XObject << %s >>", strings.Join(xobjects, " "))
		}
		resources += " >>"

		objects[l.page] = []byte(fmt.Sprintf(
			"<< /Type /Page /Parent %s /MediaBox [0 0 %s %s] /Resources %s /Contents %s >>",
			ref(pagesObj), num(p.Width), num(p.Height), resources, ref(l.content)))
		objects[l.content] = stream("", contentStream(p))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(objects))
	for n := 1; n < len(objects); n++ {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", n)
		buf.Write(objects[n])
		buf.WriteString("\nendobj\n")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects))
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n < len(objects); n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %s >>\nstartxref\n%d\n%%%%EOF\n", len(objects), ref(catalogObj), xref)
	return buf.Bytes()
}

// WriteFile builds pages into a PDF under t.TempDir and returns its path.
func WriteFile(t testing.TB, pages ...Page) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quiz.pdf")
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		t.Fatalf("write PDF fixture: %v", err)
	}
	return path
}

func contentStream(p Page) []byte {
	var b bytes.Buffer
	for _, t := range p.Text {
		size := t.Size
		if size == 0 {
			size = 12
		}
		fmt.Fprintf(&b, "BT /F1 %s Tf %s %s Td (%s) Tj ET\n", num(size), num(t.X), num(t.Y), escape(t.Body))
	}
	for _, img := range p.Images {
		fmt.Fprintf(&b, "q %s 0 0 %s %s %s cm /%s Do Q\n", num(img.W), num(img.H), num(img.X), num(img.Y), img.Name)
	}
	return b.Bytes()
}

func imageObject(img Image) []byte {
	dict := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /%s /BitsPerComponent %d",
		img.Width, img.Height, img.ColorSpace, img.BitsPerComponent)
	return stream(dict, img.Data)
}

func stream(dict string, data []byte) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<< %s /Length %d >>\nstream\n", strings.TrimSpace(dict), len(data))
	b.Write(data)
	b.WriteString("\nendstream")
	return b.Bytes()
}

func ref(n int) string { return fmt.Sprintf("%d 0 R", n) }

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

var escaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

func escape(s string) string { return escaper.Replace(s) }
