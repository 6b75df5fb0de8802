package pdfscan

import (
	"math"

	"github.com/tsawler/tabula/contentstream"
	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/model"
)

// mediaBox is a page's MediaBox in PDF user space: [llx, lly, urx, ury].
type mediaBox [4]float64

func (b mediaBox) width() float64  { return b[2] - b[0] }
func (b mediaBox) height() float64 { return b[3] - b[1] }

// toTopLeft converts a PDF-space rectangle (origin bottom-left) into page
// coordinates with the origin at the top-left corner.
func (b mediaBox) toTopLeft(minX, minY, maxX, maxY float64) BBox {
	return BBox{
		X0: minX - b[0],
		Y0: b[3] - maxY,
		X1: maxX - b[0],
		Y1: b[3] - minY,
	}
}

// placeImages walks content stream operations tracking the current
// transformation matrix and records where each named XObject in isImage is
// painted. Only the first placement of a name is kept. A Q without a matching
// q leaves the state unchanged, as viewers do.
func placeImages(ops []contentstream.Operation, box mediaBox, isImage func(string) bool) []ImagePlacement {
	gs := graphicsstate.NewGraphicsState()
	seen := make(map[string]bool)
	var out []ImagePlacement

	for _, op := range ops {
		switch op.Operator {
		case "q":
			gs.Save()
		case "Q":
			// Restore fails only on an empty stack and then changes nothing.
			_ = gs.Restore()
		case "cm":
			if len(op.Operands) != 6 {
				continue
			}
			m, ok := operandsMatrix(op.Operands)
			if !ok {
				continue
			}
			// PDF concatenates as CTM' = M x CTM.
			gs.CTM = m.Multiply(gs.CTM)
		case "Do":
			if len(op.Operands) != 1 {
				continue
			}
			name, ok := op.Operands[0].(core.Name)
			if !ok || seen[string(name)] || !isImage(string(name)) {
				continue
			}
			seen[string(name)] = true
			out = append(out, ImagePlacement{
				Name: string(name),
				BBox: unitSquareBBox(gs.CTM, box),
			})
		}
	}
	return out
}

// unitSquareBBox maps the image unit square through ctm and returns its
// axis-aligned bounds in top-left page coordinates.
func unitSquareBBox(ctm model.Matrix, box mediaBox) BBox {
	corners := [4]model.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := ctm.Transform(c)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return box.toTopLeft(minX, minY, maxX, maxY)
}

func operandsMatrix(operands []core.Object) (model.Matrix, bool) {
	var m model.Matrix
	for i, o := range operands {
		switch v := o.(type) {
		case core.Int:
			m[i] = float64(v)
		case core.Real:
			m[i] = float64(v)
		default:
			return model.Identity(), false
		}
	}
	return m, true
}
