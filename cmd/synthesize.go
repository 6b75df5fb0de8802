package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/pdfquiz/internal/llm"
	"github.com/abhisek/pdfquiz/internal/question"
	"github.com/abhisek/pdfquiz/internal/synth"
	"github.com/abhisek/pdfquiz/internal/ui/theme"
)

// defaultQuestion is the question number used when none is configured.
const defaultQuestion = "1"

// synthesizeConfig is everything one synthesize run needs.
type synthesizeConfig struct {
	File        string
	Selector    question.Selector
	LLM         llm.Config
	MaxTokens   int
	Temperature float64
}

var synthesizeCmd = &cobra.Command{
	Use:     "synthesize",
	Aliases: []string{"generate"},
	Short:   "Generate a new practice question from an extracted one",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveSynthesizeConfig(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render("=== AI Practice Question Generator ==="))

		records, err := question.LoadFile(cfg.File)
		if err != nil {
			return err
		}
		rec, err := question.Select(records, cfg.Selector, nil)
		if err != nil {
			return err
		}
		printBaseQuestion(out, rec)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if cfg.LLM.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.LLM.Timeout)
			defer cancel()
		}

		provider, err := llm.NewProvider(ctx, cfg.LLM, log)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s\n", theme.Hint.Render(fmt.Sprintf("Sending question to %s... Please wait.", provider.ModelID())))
		svc := synth.NewService(provider, log).
			WithMaxTokens(cfg.MaxTokens).
			WithTemperature(cfg.Temperature)
		outcome := svc.Generate(ctx, rec)
		printOutcome(out, outcome)
		return nil
	},
}

func init() {
	synthesizeCmd.Flags().StringP("question", "q", "", `Question number or "random" (overrides PDFQUIZ_QUESTION, default 1)`)
	synthesizeCmd.Flags().StringP("file", "f", "", "Questions file (default <PDFQUIZ_OUTPUT_DIR>/questions_final.json)")
	synthesizeCmd.Flags().String("provider", "", "LLM provider: gemini, openai, anthropic, openrouter, mock (overrides PDFQUIZ_LLM_PROVIDER)")
	synthesizeCmd.Flags().Duration("timeout", 0, "Abort the generation request after this long (overrides PDFQUIZ_LLM_TIMEOUT, 0 = no limit)")
	synthesizeCmd.Flags().Int("max-tokens", 0, "Cap the length of the generated reply (0 = provider default)")
	synthesizeCmd.Flags().Float64("temperature", 0, "Sampling temperature between 0 and 1 (0 = provider default)")
}

// resolveSynthesizeConfig applies flags over env vars over defaults and
// checks the provider credentials before any file or network work.
func resolveSynthesizeConfig(cmd *cobra.Command) (synthesizeConfig, error) {
	var cfg synthesizeConfig

	provider, _ := cmd.Flags().GetString("provider")
	cfg.LLM = llm.LoadConfig(provider)
	if err := cfg.LLM.Validate(); err != nil {
		return cfg, err
	}

	sel := envOr("PDFQUIZ_QUESTION", defaultQuestion)
	if cmd.Flags().Changed("question") {
		sel, _ = cmd.Flags().GetString("question")
	}
	selector, err := question.ParseSelector(sel)
	if err != nil {
		return cfg, err
	}
	cfg.Selector = selector

	cfg.File = filepath.Join(envOr("PDFQUIZ_OUTPUT_DIR", question.DefaultOutputDir), question.DefaultFileName)
	if cmd.Flags().Changed("file") {
		cfg.File, _ = cmd.Flags().GetString("file")
	}

	if cmd.Flags().Changed("timeout") {
		cfg.LLM.Timeout, _ = cmd.Flags().GetDuration("timeout")
	}

	cfg.MaxTokens, _ = cmd.Flags().GetInt("max-tokens")
	if cfg.MaxTokens < 0 {
		return cfg, fmt.Errorf("--max-tokens must not be negative, got %d", cfg.MaxTokens)
	}
	cfg.Temperature, _ = cmd.Flags().GetFloat64("temperature")
	if cfg.Temperature < 0 || cfg.Temperature > 1 {
		return cfg, fmt.Errorf("--temperature must be between 0 and 1, got %g", cfg.Temperature)
	}
	return cfg, nil
}

func printBaseQuestion(out io.Writer, rec question.Record) {
	fmt.Fprintf(out, "\n%s\n", theme.Label.Render(fmt.Sprintf("Using base Question #%d:", rec.Number)))
	fmt.Fprintln(out, theme.Separator("-"))
	fmt.Fprintln(out, rec.Text)
	fmt.Fprintln(out, theme.Separator("-"))
}

func printOutcome(out io.Writer, o synth.Outcome) {
	if o.SkippedImages > 0 {
		fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("%d image(s) could not be read and were left out.", o.SkippedImages)))
	}

	switch o.Kind {
	case synth.OutcomeGenerated:
		fmt.Fprintf(out, "\n%s\n", theme.Correct.Render("Generated Output:"))
	default:
		fmt.Fprintf(out, "\n%s\n", theme.Incorrect.Render("Generation did not succeed:"))
	}
	fmt.Fprintln(out, theme.Separator("="))
	fmt.Fprintln(out, o.String())
	fmt.Fprintln(out, theme.Separator("="))

	if o.Answer != "" {
		fmt.Fprintf(out, "%s %s\n", theme.Label.Render("Answer:"), o.Answer)
	}
}
