package main

import (
	"encoding/json"
	"fmt"
	"os"

	"caila-fit-action/internal/api"

	"github.com/spf13/cobra"
)

func NewFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit [text]...",
		Short: "Fit the model on a dataset",
		Long:  `Upload a dataset of texts, replacing any previously fitted state. Texts come from arguments or from a JSON dataset file ({"texts": [...]}).`,
		RunE:  runFit,
	}

	cmd.Flags().String("file", "", "Path to a JSON dataset file")

	return cmd
}

func runFit(cmd *cobra.Command, args []string) error {
	texts := args

	if file, _ := cmd.Flags().GetString("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read dataset: %w", err)
		}
		var dataset api.Dataset
		if err := json.Unmarshal(data, &dataset); err != nil {
			return fmt.Errorf("parse dataset: %w", err)
		}
		texts = dataset.Texts
	}

	if len(texts) == 0 {
		return fmt.Errorf("no texts given: pass them as arguments or via --file")
	}

	info, err := clientFromFlags(cmd).Fit(cmd.Context(), texts)
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "fitted %d texts (state %s)\n", info.Texts, info.StateID)
	return nil
}
