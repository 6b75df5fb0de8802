// Package extract runs the PDF-to-questions pass: validate, scan pages,
// group elements into records, write the questions file.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/pdfquiz/internal/grouping"
	"github.com/abhisek/pdfquiz/internal/pdfscan"
	"github.com/abhisek/pdfquiz/internal/question"
)

// DefaultInput is the PDF read when no path is given.
const DefaultInput = "sample.pdf"

// Config holds the paths and thresholds of one extraction.
type Config struct {
	InputPath     string
	OutputDir     string
	SkipThreshold float64
}

// DefaultConfig returns the fixed relative defaults.
func DefaultConfig() Config {
	return Config{
		InputPath:     DefaultInput,
		OutputDir:     question.DefaultOutputDir,
		SkipThreshold: pdfscan.DefaultSkipThreshold,
	}
}

// OutputPath is where the questions file is written.
func (c Config) OutputPath() string {
	return filepath.Join(c.OutputDir, question.DefaultFileName)
}

// Validate rejects thresholds outside (0, 1] and empty paths.
func (c Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input path is empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is empty")
	}
	if c.SkipThreshold <= 0 || c.SkipThreshold > 1 {
		return fmt.Errorf("image threshold %v out of range (0, 1]", c.SkipThreshold)
	}
	return nil
}

// Document is a PDF source that must be closed.
type Document interface {
	pdfscan.Source
	Close() error
}

// Result summarizes an extraction.
type Result struct {
	Pages      int
	Elements   int
	Records    []question.Record
	Stats      grouping.Stats
	OutputPath string
	Written    bool // false when no records were found
}

// Pipeline wires the extraction stages.
type Pipeline struct {
	cfg      Config
	log      logrus.FieldLogger
	validate func(path string) error
	open     func(path string) (Document, error)
}

// New returns a Pipeline reading real PDFs. A nil log discards.
func New(cfg Config, log logrus.FieldLogger) *Pipeline {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Pipeline{
		cfg:      cfg,
		log:      log,
		validate: pdfscan.Validate,
		open: func(path string) (Document, error) {
			return pdfscan.Open(path)
		},
	}
}

// Run performs the extraction. The questions file is only written when at
// least one record was found; image files are written as they are found.
func (p *Pipeline) Run() (*Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := p.validate(p.cfg.InputPath); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	doc, err := p.open(p.cfg.InputPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	pages, err := doc.PageCount()
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	p.log.WithFields(logrus.Fields{"input": p.cfg.InputPath, "pages": pages}).Info("Scanning PDF")

	scanCfg := pdfscan.DefaultConfig(p.cfg.OutputDir)
	scanCfg.SkipThreshold = p.cfg.SkipThreshold

	elements, err := pdfscan.NewScanner(scanCfg, p.log).Scan(doc)
	if err != nil {
		return nil, err
	}

	records, stats := grouping.Group(elements)
	p.log.WithFields(logrus.Fields{
		"elements":       stats.Elements,
		"records":        stats.Records,
		"dropped_before": stats.DroppedBefore,
		"headers":        stats.Headers,
		"markers":        stats.Markers,
		"answers":        stats.Answers,
	}).Info("Grouped elements into questions")

	res := &Result{
		Pages:      pages,
		Elements:   len(elements),
		Records:    records,
		Stats:      stats,
		OutputPath: p.cfg.OutputPath(),
	}
	if len(records) == 0 {
		p.log.Warn("No numbered questions found; questions file not written")
		return res, nil
	}

	if err := question.WriteFile(res.OutputPath, records); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}
