package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fitctl",
		Short:         "Client for a running fit-action service",
		Long:          `Fit, query and prune the demo model over the service's REST API.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "Base URL of the service")

	rootCmd.AddCommand(
		NewFitCmd(),
		NewPredictCmd(),
		NewPruneCmd(),
		NewInfoCmd(),
	)

	return rootCmd
}

func clientFromFlags(cmd *cobra.Command) *Client {
	url, _ := cmd.Flags().GetString("url")
	return NewClient(url)
}
