package question

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://questions.json"

// recordsSchema describes the questions file: an array of records.
const recordsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["question_number", "question_text"],
    "properties": {
      "question_number": {"type": "integer", "minimum": 0},
      "question_text": {"type": "string"},
      "images": {"type": "array", "items": {"type": "string"}},
      "options": {
        "type": "object",
        "additionalProperties": {
          "type": "object",
          "required": ["type", "content"],
          "properties": {
            "type": {"enum": ["text", "image"]},
            "content": {
              "oneOf": [
                {"type": "string"},
                {"type": "array", "items": {"type": "string"}}
              ]
            }
          }
        }
      },
      "answer": {"type": "string"}
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func recordsValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		def, err := jsonschema.UnmarshalJSON(strings.NewReader(recordsSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// validateDocument checks a decoded JSON document against the records schema.
func validateDocument(doc any) error {
	s, err := recordsValidator()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return s.Validate(doc)
}
