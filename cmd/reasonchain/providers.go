package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/nexxia-ai/reasonchain/ai"
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the registered providers and the variables their API keys are read from",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDISPLAY NAME\tBASE URL\tAPI KEY ENV")
		for _, info := range ai.Providers() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.DisplayName, info.BaseURL, info.APIKeyName)
		}
		return w.Flush()
	},
}
