package pdfscan

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrMalformed is returned when the input cannot be read as a PDF.
var ErrMalformed = errors.New("malformed PDF")

// Validate runs a structural check of the PDF at path before any output is
// written, so a broken input aborts the pass cleanly.
func Validate(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputMissing, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	// Keep pdfcpu from creating a config directory under the user's home.
	api.DisableConfigDir()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return nil
}
