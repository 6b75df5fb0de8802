package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pdfquiz/internal/extract"
	"github.com/abhisek/pdfquiz/internal/llm"
	"github.com/abhisek/pdfquiz/internal/pdfscan"
	"github.com/abhisek/pdfquiz/internal/question"
)

var envKeys = []string{
	"PDFQUIZ_LLM_PROVIDER", "PDFQUIZ_LLM_TIMEOUT", "PDFQUIZ_QUESTION", "PDFQUIZ_INPUT",
	"PDFQUIZ_OUTPUT_DIR", "PDFQUIZ_IMAGE_THRESHOLD", "LOG_LEVEL",
	"PDFQUIZ_GEMINI_API_KEY", "PDFQUIZ_OPENAI_API_KEY", "PDFQUIZ_ANTHROPIC_API_KEY", "PDFQUIZ_OPENROUTER_API_KEY",
	"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

// resetFlags restores every flag to its default; the command tree is global.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--env-file", ""))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeQuestions(t *testing.T) string {
	t.Helper()
	first := question.New(1, "1. What is 2+1?")
	first.Answer = "B"
	second := question.New(2, "2. Count the ducks.")
	path := filepath.Join(t.TempDir(), question.DefaultFileName)
	require.NoError(t, question.WriteFile(path, []question.Record{first, second}))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pdfquiz (devel)\n", out)
}

func TestSynthesize_FailsFastWithoutKey(t *testing.T) {
	clearEnv(t)

	_, err := run(t, "synthesize", "--file", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrConfig), "got %v", err)
}

func TestSynthesize_PrintsBaseQuestionAndOutcome(t *testing.T) {
	clearEnv(t)
	path := writeQuestions(t)

	out, err := run(t, "synthesize", "--provider", "mock", "--file", path, "--question", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Using base Question #2:")
	assert.Contains(t, out, "2. Count the ducks.")
	// The factory's mock has no canned responses, so the single attempt fails.
	assert.Contains(t, out, "Request failed: ")
}

func TestSynthesize_QuestionFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PDFQUIZ_QUESTION", "1")
	path := writeQuestions(t)

	out, err := run(t, "synthesize", "--provider", "mock", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Using base Question #1:")
}

func TestSynthesize_UnknownQuestion(t *testing.T) {
	clearEnv(t)
	path := writeQuestions(t)

	_, err := run(t, "synthesize", "--provider", "mock", "--file", path, "--question", "42")
	require.Error(t, err)
	assert.True(t, errors.Is(err, question.ErrNotFound))
	assert.Contains(t, err.Error(), "could not locate question number 42")
}

func TestSynthesize_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := run(t, "synthesize", "--provider", "mock", "--file", filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, question.ErrInputMissing))
}

func TestSynthesize_BadSelector(t *testing.T) {
	clearEnv(t)

	_, err := run(t, "synthesize", "--provider", "mock", "--question", "first")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid question selector")
}

func TestResolveSynthesizeConfig_ProviderFlagKeepsPDFQUIZKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("PDFQUIZ_OPENAI_API_KEY", "pdfquiz-openai")
	t.Setenv("PDFQUIZ_OPENAI_MODEL", "gpt-4o")
	t.Setenv("GEMINI_API_KEY", "vendor-gemini")
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	require.NoError(t, synthesizeCmd.Flags().Set("provider", "openai"))
	cfg, err := resolveSynthesizeConfig(synthesizeCmd)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "pdfquiz-openai", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.LLM.OpenAI.Model)
	assert.Empty(t, cfg.LLM.Gemini.APIKey)
}

func TestResolveSynthesizeConfig_GenerationFlags(t *testing.T) {
	clearEnv(t)
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	require.NoError(t, synthesizeCmd.Flags().Set("provider", "mock"))
	cfg, err := resolveSynthesizeConfig(synthesizeCmd)
	require.NoError(t, err)
	assert.Zero(t, cfg.MaxTokens)
	assert.Zero(t, cfg.Temperature)

	require.NoError(t, synthesizeCmd.Flags().Set("max-tokens", "300"))
	require.NoError(t, synthesizeCmd.Flags().Set("temperature", "0.7"))
	cfg, err = resolveSynthesizeConfig(synthesizeCmd)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.MaxTokens)
	assert.Equal(t, 0.7, cfg.Temperature)

	require.NoError(t, synthesizeCmd.Flags().Set("temperature", "1.5"))
	_, err = resolveSynthesizeConfig(synthesizeCmd)
	assert.ErrorContains(t, err, "--temperature")

	require.NoError(t, synthesizeCmd.Flags().Set("temperature", "0.7"))
	require.NoError(t, synthesizeCmd.Flags().Set("max-tokens", "-1"))
	_, err = resolveSynthesizeConfig(synthesizeCmd)
	assert.ErrorContains(t, err, "--max-tokens")
}

func TestSynthesize_ProviderFlagOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PDFQUIZ_LLM_PROVIDER", "anthropic")
	path := writeQuestions(t)

	out, err := run(t, "synthesize", "--provider", "mock", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Using base Question #1:")
}

func TestPrintExtractSummary_SingleRecordShowsBothPreviews(t *testing.T) {
	rec := question.New(7, "7. Name the largest planet.")
	var out bytes.Buffer
	printExtractSummary(&out, &extract.Result{
		Pages:      1,
		Records:    []question.Record{rec},
		OutputPath: "out/questions_final.json",
		Written:    true,
	})

	text := out.String()
	assert.Contains(t, text, "First question:")
	assert.Contains(t, text, "Last question:")
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("7. Name the largest planet.")))
}

func TestExtract_MissingInput(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := run(t, "extract", "--input", filepath.Join(dir, "missing.pdf"), "--output-dir", filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdfscan.ErrInputMissing), "got %v", err)
}

func TestExtract_InvalidThresholdEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PDFQUIZ_IMAGE_THRESHOLD", "lots")

	_, err := run(t, "extract")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PDFQUIZ_IMAGE_THRESHOLD")
}

func TestResolveExtractConfig_Precedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("PDFQUIZ_INPUT", "env.pdf")
	t.Setenv("PDFQUIZ_OUTPUT_DIR", "env_out")
	t.Setenv("PDFQUIZ_IMAGE_THRESHOLD", "0.5")
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	cfg, err := resolveExtractConfig(extractCmd)
	require.NoError(t, err)
	assert.Equal(t, "env.pdf", cfg.InputPath)
	assert.Equal(t, "env_out", cfg.OutputDir)
	assert.Equal(t, 0.5, cfg.SkipThreshold)

	require.NoError(t, extractCmd.Flags().Set("input", "flag.pdf"))
	cfg, err = resolveExtractConfig(extractCmd)
	require.NoError(t, err)
	assert.Equal(t, "flag.pdf", cfg.InputPath)
	assert.Equal(t, "env_out", cfg.OutputDir)
}

func TestLoadEnvFile(t *testing.T) {
	const key = "PDFQUIZ_ENV_FILE_CHECK"
	t.Cleanup(func() { os.Unsetenv(key) })
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=random\n"), 0o600))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "random", os.Getenv(key))
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"", logrus.WarnLevel},
		{"debug", logrus.DebugLevel},
		{" INFO ", logrus.InfoLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"nonsense", logrus.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.in)
			assert.Equal(t, tt.want, parseLogLevel())
		})
	}
}
