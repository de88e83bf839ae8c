package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// displayValue renders a property value on one line.
func displayValue(v any) string {
	if s, ok := v.(string); ok {
		return plainText(s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return domain.Display(data)
}

// formattedLines renders a structured value, one line per route.
func formattedLines(f *domain.Formatted) []string {
	if f == nil {
		return nil
	}
	unit := ""
	if f.Unit != "" {
		unit = " " + f.Unit
	}
	if !f.IsByRoute() {
		return []string{domain.Display(f.Value) + unit}
	}
	lines := make([]string, 0, len(f.Routes))
	for _, route := range f.RouteNames() {
		lines = append(lines, route+": "+domain.Display(f.Routes[route])+unit)
	}
	return lines
}

func substanceNames(subs []domain.Substance) string {
	names := make([]string, len(subs))
	for i := range subs {
		names[i] = subs[i].DisplayName()
	}
	return strings.Join(names, ", ")
}
