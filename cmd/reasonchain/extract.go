package main

import (
	"fmt"
	"io"

	"github.com/nexxia-ai/reasonchain"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the reasoning section found in text read from stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		span, ok := reasonchain.ExtractReasoning(string(data))
		if !ok {
			return fmt.Errorf("no reasoning section found")
		}
		fmt.Fprintln(cmd.OutOrStdout(), span)
		return nil
	},
}
