package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove the persisted model state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := clientFromFlags(cmd).Prune(cmd.Context()); err != nil {
				return fmt.Errorf("prune: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "model state pruned")
			return nil
		},
	}
}
