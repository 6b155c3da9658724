package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nexxia-ai/reasonchain"
	"github.com/spf13/cobra"
)

const defaultPrompt = "Explain the concept of machine learning in simple terms."

var (
	prompt     string
	outputFile string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and save the result as JSON",
	RunE:  runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if prompt == "" {
		return fmt.Errorf("no prompt provided")
	}

	pipeline, err := reasonchain.NewFromSettings(settings, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processing prompt: %s\n", prompt)
	result := pipeline.Run(ctx, prompt)
	printResult(cmd, result)

	path := outputFile
	if path == "" {
		path = settings.Results.File
	}
	if path != "" {
		if err := reasonchain.SaveResult(path, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nResults saved to %s\n", path)
	}

	if result.PipelineStatus == reasonchain.StatusFailed {
		return exitError{code: 2}
	}
	return nil
}

func printResult(cmd *cobra.Command, result *reasonchain.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nPipeline status: %s\n", result.PipelineStatus)
	if result.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", result.Error)
	}
	if result.ReferenceMaterial != "" {
		fmt.Fprintf(out, "\nReference material:\n%s\n", result.ReferenceMaterial)
	}
	if result.FinalAnswer != "" {
		fmt.Fprintf(out, "\nFinal answer:\n%s\n", result.FinalAnswer)
	}
}
