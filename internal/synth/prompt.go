package synth

import (
	"fmt"

	"github.com/abhisek/pdfquiz/internal/question"
)

// ImageMIMEType is attached to every inline image, whatever its file format.
const ImageMIMEType = "image/png"

const promptTemplate = `You're a skilled math educator for Grade 1 students.
Using the original question below, generate one new practice question:

Rules:
- Stick to the same concept.
- Change the numbers, visual elements, or scenario.
- Use four options: [A], [B], [C], [D].
- Finish the output with the correct option like: Ans: [X]

---
ORIGINAL QUESTION TEXT:
%s
---
`

// Prompt returns the instruction text for rec.
func Prompt(rec question.Record) string {
	return fmt.Sprintf(promptTemplate, rec.Text)
}

// ImagePaths lists the images to attach: the record's own images first,
// then the paths of image-typed options in label order.
func ImagePaths(rec question.Record) []string {
	paths := append([]string(nil), rec.Images...)
	for _, label := range rec.OptionLabels() {
		opt := rec.Options[label]
		if opt.Kind == question.OptionImage {
			paths = append(paths, opt.Images...)
		}
	}
	return paths
}
