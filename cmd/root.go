package cmd

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// log is shared by the subcommands; it is rebuilt in PersistentPreRunE once
// .env has been loaded so LOG_LEVEL from the file takes effect.
var log = newLogger()

var rootCmd = &cobra.Command{
	Use:   "pdfquiz",
	Short: "Extract quiz questions from a PDF and generate practice variants",
	Long: "pdfquiz reads a fixed-layout quiz PDF into a JSON file of questions and images,\n" +
		"then asks a generative model for new practice questions based on them.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := loadEnvFile(envFile); err != nil {
			return err
		}
		log = newLogger()
		log.SetOutput(cmd.ErrOrStderr())
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a dotenv file (ignored when missing)")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(synthesizeCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFile loads KEY=VALUE pairs without overriding variables already
// set in the environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(parseLogLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}

// parseLogLevel reads LOG_LEVEL; unset or unknown values mean warn.
func parseLogLevel() logrus.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.WarnLevel
	}
}

// envOr returns the value of key, or fallback when it is unset or empty.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
