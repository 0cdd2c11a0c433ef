package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"admin-exporter/services"
)

var compareCmd = &cobra.Command{
	Use:   "compare <dataset-1> <dataset-2>",
	Short: "Compare two whitespace separated datasets keyed by their first column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets := make([]*services.Dataset, 0, 2)
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open dataset: %w", err)
			}
			d, err := services.ParseDataset(f)
			f.Close()
			if err != nil {
				return err
			}
			logger.Debug("[compare] %s: %d keys", path, d.Len())
			sets = append(sets, d)
		}

		result := services.Compare(sets[0], sets[1])
		services.NewPrinter(os.Stdout).Lines("DATASET COMPARISON", result, services.NoDifferences)
		return saveLines("comparison_result.txt", result)
	},
}

func init() {
	compareCmd.Flags().BoolVar(&lookupSave, "save", false, "also write the result to comparison_result.txt")
	rootCmd.AddCommand(compareCmd)
}
