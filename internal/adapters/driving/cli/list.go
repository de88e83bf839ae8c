package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

var (
	listJSON     bool
	categoryJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known substance",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var categoryCmd = &cobra.Command{
	Use:   "category [name]",
	Short: "List categories, or the substances in one",
	Long: `Without an argument, lists every category with its description.
With a category name, lists the substances tagged with it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCategory,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output results as JSON")
	categoryCmd.Flags().BoolVar(&categoryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(categoryCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if factsheetService == nil {
		return errors.New("factsheet service not configured")
	}

	ctx := cmd.Context()
	loadDatasets(ctx)

	subs, err := factsheetService.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if listJSON {
		return outputJSON(cmd, subs)
	}
	outputSubstanceTable(cmd, subs)
	return nil
}

func runCategory(cmd *cobra.Command, args []string) error {
	if factsheetService == nil {
		return errors.New("factsheet service not configured")
	}

	ctx := cmd.Context()
	loadDatasets(ctx)

	if len(args) == 0 {
		cats, err := factsheetService.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("list categories failed: %w", err)
		}
		if categoryJSON {
			return outputJSON(cmd, cats)
		}
		outputCategoryTable(cmd, cats)
		return nil
	}

	subs, err := factsheetService.ListCategory(ctx, args[0])
	if err != nil {
		return fmt.Errorf("list category failed: %w", err)
	}
	if categoryJSON {
		return outputJSON(cmd, subs)
	}

	st := newStyles(cmd.OutOrStdout())
	if cat, err := factsheetService.GetCategory(ctx, args[0]); err == nil {
		cmd.Println(st.Title.Render(categoryTitle(cat)))
		if cat.Description != "" {
			cmd.Println(plainText(cat.Description))
		}
		cmd.Println()
	}
	outputSubstanceTable(cmd, subs)
	return nil
}

func outputSubstanceTable(cmd *cobra.Command, subs []domain.Substance) {
	if len(subs) == 0 {
		cmd.Println("No substances found.")
		return
	}

	st := newStyles(cmd.OutOrStdout())
	for i := range subs {
		cmd.Printf("  %s %s\n", subs[i].DisplayName(), st.Muted.Render("("+subs[i].Name+")"))
	}
	cmd.Println()
	cmd.Printf("%d substances\n", len(subs))
}

func outputCategoryTable(cmd *cobra.Command, cats []domain.Category) {
	if len(cats) == 0 {
		cmd.Println("No categories found.")
		return
	}

	st := newStyles(cmd.OutOrStdout())
	for i := range cats {
		cmd.Println(st.Subtitle.Render(categoryTitle(&cats[i])))
		if cats[i].Description != "" {
			cmd.Printf("  %s\n", plainText(cats[i].Description))
		}
	}
}

func categoryTitle(c *domain.Category) string {
	if c.PrettyName != "" {
		return c.PrettyName
	}
	return c.Name
}
