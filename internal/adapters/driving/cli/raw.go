package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var rawCmd = &cobra.Command{
	Use:   "raw [name]",
	Short: "Print a substance record exactly as the provider serves it",
	Args:  cobra.ExactArgs(1),
	RunE:  runRaw,
}

func init() {
	rootCmd.AddCommand(rawCmd)
}

func runRaw(cmd *cobra.Command, args []string) error {
	if factsheetService == nil {
		return errors.New("factsheet service not configured")
	}

	record, err := factsheetService.Raw(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("raw failed: %w", err)
	}
	return outputJSON(cmd, record)
}
