package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func NewPredictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict <index>...",
		Short: "Look up fitted texts by index",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPredict,
	}
}

func runPredict(cmd *cobra.Command, args []string) error {
	indices := make([]int, 0, len(args))
	for _, arg := range args {
		idx, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", arg, err)
		}
		indices = append(indices, idx)
	}

	texts, err := clientFromFlags(cmd).Predict(cmd.Context(), indices)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}

	for _, text := range texts {
		fmt.Fprintln(cmd.OutOrStdout(), text)
	}
	return nil
}
