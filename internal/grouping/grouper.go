// Package grouping folds the reading-ordered element stream of a page scan
// into question records.
package grouping

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/pdfquiz/internal/pdfscan"
	"github.com/abhisek/pdfquiz/internal/question"
)

var (
	// numberPattern only accepts digits followed by a period at line start.
	numberPattern = regexp.MustCompile(`^\s*(\d+)\.`)

	// AnswerPattern matches "Ans [B]", "Ans: [B]", "Ans.[B]". The letter is
	// case-sensitive and limited to A-D.
	AnswerPattern = regexp.MustCompile(`Ans\s*[.:]?\s*\[([A-D])\]`)

	headerPattern     = regexp.MustCompile(`(?i)SECTION|ACHIEVER`)
	bareNumberPattern = regexp.MustCompile(`^\d+$`)
	bareOptionPattern = regexp.MustCompile(`^\[[A-D]\]$`)
)

// Stats counts what happened to the elements of one grouping pass.
type Stats struct {
	Elements      int
	Records       int
	DroppedBefore int // elements seen before the first numbered line
	Headers       int
	Markers       int // standalone digits and option labels
	Answers       int
}

// state is either idle (no record yet) or building a record.
type state interface {
	isState()
}

type idle struct{}

type building struct {
	rec   question.Record
	lines []string
}

func (idle) isState()      {}
func (*building) isState() {}

// finalize joins the accumulated lines into the record text.
func (b *building) finalize() question.Record {
	rec := b.rec
	rec.Text = strings.TrimSpace(strings.Join(b.lines, "\n"))
	return rec
}

// Group turns elements (already in reading order) into question records.
func Group(elements []pdfscan.Element) ([]question.Record, Stats) {
	var (
		out   []question.Record
		st    state = idle{}
		stats       = Stats{Elements: len(elements)}
	)

	for _, el := range elements {
		if n, ok := questionNumber(el); ok {
			if b, active := st.(*building); active {
				out = append(out, b.finalize())
			}
			st = &building{
				rec:   question.New(n, el.Content),
				lines: []string{el.Content},
			}
			continue
		}

		b, active := st.(*building)
		if !active {
			stats.DroppedBefore++
			continue
		}

		switch el.Kind {
		case pdfscan.KindImage:
			b.rec.Images = append(b.rec.Images, el.Content)
		case pdfscan.KindText:
			classifyLine(b, el.Content, &stats)
		}
	}

	if b, active := st.(*building); active {
		out = append(out, b.finalize())
	}
	stats.Records = len(out)
	return out, stats
}

func classifyLine(b *building, text string, stats *Stats) {
	if m := AnswerPattern.FindStringSubmatch(text); m != nil {
		b.rec.Answer = m[1]
		stats.Answers++
		return
	}
	if headerPattern.MatchString(text) {
		stats.Headers++
		return
	}
	if bareNumberPattern.MatchString(text) || bareOptionPattern.MatchString(text) {
		stats.Markers++
		return
	}
	b.lines = append(b.lines, text)
}

// questionNumber reports whether el opens a new question. Only text lines
// can; an image whose path happens to start with "N." is still an image.
// A number too large for int is clamped to math.MaxInt but still opens a
// question.
func questionNumber(el pdfscan.Element) (int, bool) {
	if el.Kind != pdfscan.KindText {
		return 0, false
	}
	m := numberPattern.FindStringSubmatch(el.Content)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}
