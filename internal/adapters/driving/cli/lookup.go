package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup [name]",
	Short: "Show the factsheet of a substance",
	Long: `Looks up a substance by name or alias, case-insensitively.
An alias is followed to its canonical substance.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "output the annotated factsheet as JSON")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	if factsheetService == nil {
		return errors.New("factsheet service not configured")
	}

	ctx := cmd.Context()
	loadDatasets(ctx)

	result, err := factsheetService.Lookup(ctx, args[0])
	if err == nil && result.IsRedirect() {
		if !lookupJSON {
			cmd.Printf("%s is an alias of %s\n\n", args[0], result.RedirectTo)
		}
		result, err = factsheetService.Lookup(ctx, result.RedirectTo)
	}
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	if result.Substance == nil {
		return fmt.Errorf("lookup failed: %q: %w", args[0], domain.ErrNotFound)
	}

	if lookupJSON {
		return outputJSON(cmd, result.Substance)
	}
	renderFactsheet(cmd, newStyles(cmd.OutOrStdout()), result.Substance)
	return nil
}

// safetyOrder lists combination statuses from most to least severe.
var safetyOrder = []domain.ComboStatus{
	domain.ComboDangerous,
	domain.ComboUnsafe,
	domain.ComboSerotoninSyndrome,
	domain.ComboCaution,
	domain.ComboLowRiskSynergy,
	domain.ComboLowRiskNoSynergy,
	domain.ComboLowRiskDecrease,
}

func renderFactsheet(cmd *cobra.Command, st *styles, a *domain.AnnotatedSubstance) {
	sub := a.Substance

	cmd.Println(st.Title.Render(sub.DisplayName()))
	if len(sub.Categories) > 0 {
		cmd.Println(st.Muted.Render(strings.Join(sub.Categories, ", ")))
	}
	if len(sub.Aliases) > 0 {
		cmd.Printf("%s %s\n", st.Label.Render("Also known as:"), strings.Join(sub.Aliases, ", "))
	}
	cmd.Println()

	for _, key := range a.PropertyOrder {
		if key == domain.PropertyCategories {
			continue
		}
		v, ok := sub.Properties[key]
		if !ok {
			continue
		}
		cmd.Printf("%s\n  %s\n", st.Subtitle.Render(propertyTitle(key)), displayValue(v))
	}

	structured := []struct {
		title string
		value *domain.Formatted
	}{
		{"Dose", sub.FormattedDose},
		{"Onset", sub.FormattedOnset},
		{"Duration", sub.FormattedDuration},
		{"After-effects", sub.FormattedAftereffects},
	}
	for _, s := range structured {
		lines := formattedLines(s.value)
		if len(lines) == 0 {
			continue
		}
		cmd.Println(st.Subtitle.Render(s.title + " (structured)"))
		for _, line := range lines {
			cmd.Printf("  %s\n", line)
		}
	}

	if a.Group != nil && a.Safety.Len() > 0 {
		cmd.Println()
		cmd.Println(st.Subtitle.Render("Combinations (" + a.Group.PrettyName + ")"))
		for _, status := range safetyOrder {
			entries := *a.Safety.Bucket(status)
			if len(entries) == 0 {
				continue
			}
			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.PrettyName
			}
			cmd.Printf("  %s %s\n", statusStyle(st, status).Render(string(status)+":"), strings.Join(names, ", "))
		}
	}

	renderReferences(cmd, st, a.References)
}

type reference struct {
	label string
	url   string
}

func renderReferences(cmd *cobra.Command, st *styles, refs domain.References) {
	links := []reference{
		{"TripSit wiki", refs.Wiki},
		{"PsychonautWiki", refs.PsychonautWiki},
	}
	if refs.Erowid != nil {
		links = append(links, reference{"Erowid", refs.Erowid.URL})
	}

	printed := false
	for _, l := range links {
		if l.url == "" {
			continue
		}
		if !printed {
			cmd.Println()
			cmd.Println(st.Subtitle.Render("References"))
			printed = true
		}
		cmd.Printf("  %s %s\n", st.Label.Render(l.label+":"), l.url)
	}
}

func statusStyle(st *styles, status domain.ComboStatus) lipgloss.Style {
	switch status {
	case domain.ComboDangerous, domain.ComboUnsafe, domain.ComboSerotoninSyndrome:
		return st.Danger
	case domain.ComboCaution:
		return st.Warning
	default:
		return st.Success
	}
}

// propertyTitle turns a property key into a heading.
func propertyTitle(key string) string {
	switch key {
	case domain.PropertyEffects:
		return "Effects"
	case domain.PropertyAfterEffects:
		return "After-effects"
	}
	key = strings.ReplaceAll(key, "_", " ")
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
