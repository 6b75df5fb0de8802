package question

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Record is one quiz question recovered from the source PDF.
type Record struct {
	// Number is parsed from the leading "N." marker. It is not guaranteed
	// to be unique or contiguous.
	Number int `json:"question_number"`

	// Text is the question body, lines joined with "\n" and trimmed. It
	// keeps the "N." prefix of the first line.
	Text string `json:"question_text"`

	// Images are paths of figures attached to the question body, in
	// reading order.
	Images []string `json:"images"`

	// Options maps option labels ("A".."D") to their values. The extractor
	// never fills it; records produced elsewhere may.
	Options map[string]Option `json:"options"`

	// Answer is the option letter from an "Ans [X]" marker, or "".
	Answer string `json:"answer"`
}

// New returns a record with empty, non-nil collections so it serializes as
// [] and {} rather than null.
func New(number int, firstLine string) Record {
	return Record{
		Number:  number,
		Text:    firstLine,
		Images:  []string{},
		Options: map[string]Option{},
	}
}

// OptionLabels returns the option labels in sorted order.
func (r Record) OptionLabels() []string {
	labels := make([]string, 0, len(r.Options))
	for l := range r.Options {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// OptionKind tells whether an option is written as text or drawn as images.
type OptionKind string

const (
	OptionText  OptionKind = "text"
	OptionImage OptionKind = "image"
)

// Option is the value of one multiple-choice option. Text is set for
// OptionText, Images for OptionImage.
type Option struct {
	Kind   OptionKind
	Text   string
	Images []string
}

type optionJSON struct {
	Type    OptionKind      `json:"type"`
	Content json.RawMessage `json:"content"`
}

func (o Option) MarshalJSON() ([]byte, error) {
	var content any
	switch o.Kind {
	case OptionText:
		content = o.Text
	case OptionImage:
		images := o.Images
		if images == nil {
			images = []string{}
		}
		content = images
	default:
		return nil, fmt.Errorf("unknown option kind %q", o.Kind)
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(optionJSON{Type: o.Kind, Content: raw})
}

func (o *Option) UnmarshalJSON(data []byte) error {
	var v optionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Type {
	case OptionText:
		var s string
		if err := json.Unmarshal(v.Content, &s); err != nil {
			return fmt.Errorf("text option content: %w", err)
		}
		*o = Option{Kind: OptionText, Text: s}
	case OptionImage:
		var paths []string
		if err := json.Unmarshal(v.Content, &paths); err != nil {
			return fmt.Errorf("image option content: %w", err)
		}
		*o = Option{Kind: OptionImage, Images: paths}
	default:
		return fmt.Errorf("unknown option type %q", v.Type)
	}
	return nil
}
