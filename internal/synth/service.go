// Package synth turns a stored question record into a request for a new
// practice question and reports the model's reply.
package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/pdfquiz/internal/grouping"
	"github.com/abhisek/pdfquiz/internal/llm"
	"github.com/abhisek/pdfquiz/internal/question"
)

// Purpose labels synthesis requests in provider logs.
const Purpose = "question-synthesis"

// OutcomeKind classifies the result of a synthesis request.
type OutcomeKind int

const (
	OutcomeGenerated OutcomeKind = iota
	OutcomeRequestFailed
	OutcomeEmptyResponse
)

// Outcome is the printable result of one synthesis request. It is always
// produced; failures are carried as values rather than returned errors.
type Outcome struct {
	Kind OutcomeKind

	// Text is the generated question for OutcomeGenerated.
	Text string

	// Answer is the letter from a trailing "Ans: [X]" in Text, or "".
	Answer string

	// Raw is the provider payload for OutcomeEmptyResponse.
	Raw []byte

	// Err is set for OutcomeRequestFailed.
	Err error

	// SkippedImages counts image files that could not be read.
	SkippedImages int
}

// String renders the outcome the way it is shown to the user.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeRequestFailed:
		return fmt.Sprintf("Request failed: %v", o.Err)
	case OutcomeEmptyResponse:
		return "Success but empty response:\n" + indentJSON(o.Raw)
	default:
		return o.Text
	}
}

// Service builds prompts and sends them to a provider, one call per record.
type Service struct {
	provider    llm.Provider
	log         logrus.FieldLogger
	maxTokens   int
	temperature float64
	readFile    func(string) ([]byte, error)
}

// NewService returns a Service using p. A nil log discards.
func NewService(p llm.Provider, log logrus.FieldLogger) *Service {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Service{provider: p, log: log, readFile: os.ReadFile}
}

// WithMaxTokens caps the response length. Zero keeps the provider default.
func (s *Service) WithMaxTokens(n int) *Service {
	s.maxTokens = n
	return s
}

// WithTemperature sets the sampling temperature. Zero keeps the provider
// default.
func (s *Service) WithTemperature(t float64) *Service {
	s.temperature = t
	return s
}

// BuildRequest assembles the prompt and inline images for rec. Image files
// that cannot be read are skipped with a warning; the count is returned.
func (s *Service) BuildRequest(rec question.Record) (llm.Request, int) {
	parts := []llm.Part{llm.TextPart(Prompt(rec))}
	skipped := 0

	for _, path := range ImagePaths(rec) {
		data, err := s.readFile(path)
		if err != nil {
			s.log.WithError(err).WithField("path", path).Warn("Image not readable, skipping")
			skipped++
			continue
		}
		parts = append(parts, llm.ImagePart(ImageMIMEType, data))
	}

	return llm.Request{
		Messages:    []llm.Message{llm.UserMessage(parts...)},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}, skipped
}

// Generate asks the provider for a new question based on rec. It makes
// exactly one attempt.
func (s *Service) Generate(ctx context.Context, rec question.Record) Outcome {
	req, skipped := s.BuildRequest(rec)

	s.log.WithFields(logrus.Fields{
		"question_number": rec.Number,
		"images":          len(req.Messages[0].Images()),
		"skipped_images":  skipped,
	}).Info("Sending synthesis request")

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, Purpose), req)
	if err != nil {
		var empty *llm.ErrEmptyResponse
		if errors.As(err, &empty) {
			return Outcome{Kind: OutcomeEmptyResponse, Raw: empty.Raw, SkippedImages: skipped}
		}
		return Outcome{Kind: OutcomeRequestFailed, Err: err, SkippedImages: skipped}
	}

	return Outcome{
		Kind:          OutcomeGenerated,
		Text:          resp.Text,
		Answer:        ParseAnswer(resp.Text),
		SkippedImages: skipped,
	}
}

// ParseAnswer returns the letter of the last answer marker in text, or "".
func ParseAnswer(text string) string {
	matches := grouping.AnswerPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}

func indentJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
