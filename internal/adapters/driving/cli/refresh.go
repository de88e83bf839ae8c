package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [dataset...]",
	Short: "Fetch datasets from their sources",
	Long: `Fetches the named datasets, or all of them, and reports how many
records each published. Datasets: substances, categories, erowid, combos.`,
	ValidArgs: datasetNames(),
	Args:      cobra.OnlyValidArgs,
	RunE:      runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func datasetNames() []string {
	all := domain.AllDatasets()
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.String()
	}
	return names
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if refresher == nil {
		return errors.New("refresher not configured")
	}
	if len(args) == 0 {
		args = datasetNames()
	}

	st := newStyles(cmd.OutOrStdout())
	failed := 0
	for _, name := range args {
		n, err := refresher.Refresh(cmd.Context(), domain.Dataset(name))
		if err != nil {
			failed++
			cmd.Printf("  %s %v\n", st.Danger.Render(name+":"), err)
			continue
		}
		cmd.Printf("  %s %d records\n", st.Success.Render(name+":"), n)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d datasets failed to refresh", failed, len(args))
	}
	return nil
}
