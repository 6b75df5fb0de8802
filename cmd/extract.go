package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/pdfquiz/internal/extract"
	"github.com/abhisek/pdfquiz/internal/question"
	"github.com/abhisek/pdfquiz/internal/ui/theme"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract questions and images from a quiz PDF",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveExtractConfig(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render("=== PDF Question Extractor ==="))
		fmt.Fprintf(out, "Processing %s -> %s\n", cfg.InputPath, cfg.OutputDir)

		res, err := extract.New(cfg, log).Run()
		if err != nil {
			return err
		}

		printExtractSummary(out, res)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringP("input", "i", "", "Input PDF (overrides PDFQUIZ_INPUT, default sample.pdf)")
	extractCmd.Flags().StringP("output-dir", "o", "", "Output directory (overrides PDFQUIZ_OUTPUT_DIR, default final_output)")
	extractCmd.Flags().Float64("threshold", 0, "Skip images larger than this fraction of the page (overrides PDFQUIZ_IMAGE_THRESHOLD, default 0.3)")
}

// resolveExtractConfig applies flags over env vars over defaults.
func resolveExtractConfig(cmd *cobra.Command) (extract.Config, error) {
	cfg := extract.DefaultConfig()
	cfg.InputPath = envOr("PDFQUIZ_INPUT", cfg.InputPath)
	cfg.OutputDir = envOr("PDFQUIZ_OUTPUT_DIR", cfg.OutputDir)

	if v := envOr("PDFQUIZ_IMAGE_THRESHOLD", ""); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("PDFQUIZ_IMAGE_THRESHOLD: %w", err)
		}
		cfg.SkipThreshold = t
	}

	if cmd.Flags().Changed("input") {
		cfg.InputPath, _ = cmd.Flags().GetString("input")
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir, _ = cmd.Flags().GetString("output-dir")
	}
	if cmd.Flags().Changed("threshold") {
		cfg.SkipThreshold, _ = cmd.Flags().GetFloat64("threshold")
	}

	return cfg, cfg.Validate()
}

func printExtractSummary(out io.Writer, res *extract.Result) {
	fmt.Fprintf(out, "%s %d pages, %d elements\n", theme.Label.Render("Scanned:"), res.Pages, res.Elements)
	fmt.Fprintf(out, "%s %d questions (%d with answers)\n", theme.Label.Render("Grouped:"), len(res.Records), res.Stats.Answers)

	if !res.Written {
		fmt.Fprintln(out, theme.Incorrect.Render("No numbered questions found; nothing written."))
		return
	}

	fmt.Fprintf(out, "%s %s\n", theme.Correct.Render("Saved:"), res.OutputPath)

	first := res.Records[0]
	last := res.Records[len(res.Records)-1]
	printRecordPreview(out, "First question", first)
	printRecordPreview(out, "Last question", last)
}

// printRecordPreview shows rec as it appears in the questions file. A record
// that cannot be rendered is reported in place of its JSON.
func printRecordPreview(out io.Writer, label string, rec question.Record) {
	fmt.Fprintf(out, "\n%s\n", theme.Label.Render(label+":"))
	data, err := question.Marshal(rec)
	if err != nil {
		log.WithError(err).WithField("question_number", rec.Number).Warn("Could not render question preview")
		fmt.Fprintf(out, "%s\n", theme.Incorrect.Render(fmt.Sprintf("(question %d could not be rendered: %v)", rec.Number, err)))
		return
	}
	fmt.Fprintf(out, "%s", data)
}
