package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nexxia-ai/reasonchain"
	_ "github.com/nexxia-ai/reasonchain/ai/openai"
	"github.com/nexxia-ai/reasonchain/utils"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	envFile    string
	logLevel   string

	settings reasonchain.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reasonchain",
	Short: "Two-stage reasoning pipeline: a reasoning model feeds an answer model",
	Long: `reasonchain sends a prompt to a reasoning provider (DeepSeek by default),
then passes the returned reasoning as reference material to an answer provider
(OpenAI by default) and reports the final answer together with the reasoning.

API keys are read from DEEPSEEK_API_KEY and OPENAI_API_KEY, or from a .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := utils.LoadEnvFile(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}

		var err error
		settings, err = reasonchain.LoadSettings(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			settings.LogLevel = logLevel
		}

		level, err := reasonchain.ParseLogLevel(settings.LogLevel)
		if err != nil {
			return err
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "File with KEY=VALUE pairs loaded into the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	runCmd.Flags().StringVarP(&prompt, "prompt", "p", defaultPrompt, "The prompt to process")
	runCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Result file (default: results.file from config)")

	serveCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5000", "Listen address")

	rootCmd.AddCommand(runCmd, serveCmd, extractCmd, providersCmd)
}

// exitError carries a process exit code without printing anything more.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
