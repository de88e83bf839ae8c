package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

var (
	statusJSON         bool
	missingSourcesJSON bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List substances missing structured data",
	Long: `Lists the substances missing structured dose, onset, duration or
after-effects, to help prioritise data entry.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var missingSourcesCmd = &cobra.Command{
	Use:   "missing-sources",
	Short: "List common substances lacking citations",
	Args:  cobra.NoArgs,
	RunE:  runMissingSources,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output the report as JSON")
	missingSourcesCmd.Flags().BoolVar(&missingSourcesJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(missingSourcesCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if factsheetService == nil {
		return errors.New("factsheet service not configured")
	}

	ctx := cmd.Context()
	loadDatasets(ctx)

	report, err := factsheetService.Status(ctx)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}
	if statusJSON {
		return outputJSON(cmd, report)
	}

	st := newStyles(cmd.OutOrStdout())
	sections := []struct {
		title string
		subs  []domain.Substance
	}{
		{"Missing dose", report.MissingDose},
		{"Missing onset", report.MissingOnset},
		{"Missing duration", report.MissingDuration},
		{"Missing after-effects", report.MissingAfterEffects},
	}
	for _, s := range sections {
		cmd.Println(st.Subtitle.Render(fmt.Sprintf("%s (%d)", s.title, len(s.subs))))
		if len(s.subs) > 0 {
			cmd.Printf("  %s\n", substanceNames(s.subs))
		}
		cmd.Println()
	}
	return nil
}

func runMissingSources(cmd *cobra.Command, _ []string) error {
	if factsheetService == nil {
		return errors.New("factsheet service not configured")
	}

	ctx := cmd.Context()
	loadDatasets(ctx)

	missing, err := factsheetService.MissingSources(ctx)
	if err != nil {
		return fmt.Errorf("missing sources failed: %w", err)
	}
	if missingSourcesJSON {
		return outputJSON(cmd, missing)
	}

	if len(missing) == 0 {
		cmd.Println("Every common substance is fully cited.")
		return nil
	}
	st := newStyles(cmd.OutOrStdout())
	for i := range missing {
		cmd.Printf("  %s %s\n",
			st.Label.Render(missing[i].Substance.DisplayName()+":"),
			strings.Join(missing[i].Missing, ", "))
	}
	return nil
}
