package question

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Default locations shared by the extract and synthesize passes.
const (
	DefaultOutputDir = "final_output"
	DefaultFileName  = "questions_final.json"
)

var (
	// ErrInputMissing is returned when the questions file does not exist.
	ErrInputMissing = errors.New("questions file not found")

	// ErrMalformed is returned when the questions file is not a valid
	// array of records.
	ErrMalformed = errors.New("questions file is malformed")
)

// Marshal renders records as a JSON array indented with four spaces.
// HTML characters are left unescaped so question text stays readable.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes records to path, creating the parent directory first.
// Only path itself is touched.
func WriteFile(path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadFile reads and validates the questions file at path.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (make sure extraction is complete)", ErrInputMissing, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses a questions document.
func Decode(data []byte) ([]Record, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return records, nil
}
