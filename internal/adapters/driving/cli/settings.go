package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure source endpoints, HTTP limits, refresh intervals
and other options.

Use subcommands to change a single key or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List every configuration key",
	RunE:  runSettingsKeys,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single configuration key",
	Long: `Set a single configuration key. The value is parsed for the key's type:
URLs must be absolute http(s), intervals are whole seconds.

Example:
  factsheets settings set scheduler.erowid_interval_seconds 7200`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to review every setting step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Sources]")
	cmd.Printf("  TripSit API: %s\n", settings.Sources.TripSitBaseURL)
	cmd.Printf("  Combinations: %s\n", settings.Sources.CombosURL)
	cmd.Printf("  Erowid: %s\n", settings.Sources.ErowidURL)
	cmd.Printf("  PsychonautWiki API: %s\n", settings.Sources.PsychonautWikiAPIURL)
	cmd.Printf("  PsychonautWiki pages: %s\n", settings.Sources.PsychonautWikiBaseURL)
	cmd.Printf("  TripSit wiki API: %s\n", settings.Sources.TripSitWikiAPIURL)
	cmd.Printf("  TripSit wiki pages: %s\n", settings.Sources.TripSitWikiBaseURL)
	cmd.Println()

	cmd.Println("[HTTP]")
	cmd.Printf("  Timeout: %s\n", settings.HTTP.Timeout)
	cmd.Printf("  Requests per second: %g\n", settings.HTTP.RequestsPerSecond)
	cmd.Println()

	cmd.Println("[Scheduler]")
	if settings.Scheduler.Enabled {
		cmd.Printf("  Enabled: yes\n")
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Printf("  Tick: %s\n", settings.Scheduler.Tick)
	cmd.Printf("  Substances and categories: every %s\n", settings.Scheduler.SubstancesInterval)
	cmd.Printf("  Erowid: every %s\n", settings.Scheduler.ErowidInterval)
	cmd.Printf("  Combinations: once at startup\n")
	cmd.Println()

	cmd.Println("[Memo]")
	if settings.Memo.IsBounded() {
		cmd.Printf("  Max entries: %d\n", settings.Memo.MaxEntries)
	} else {
		cmd.Printf("  Max entries: unbounded\n")
	}
	cmd.Println()

	cmd.Println("[Glossary]")
	if settings.GlossaryPath != "" {
		cmd.Printf("  Path: %s\n", settings.GlossaryPath)
	} else {
		cmd.Printf("  Path: (built-in)\n")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'factsheets settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s to %s\n", args[0], args[1])
	return nil
}

// runSettingsWizard prompts for every key. An empty answer keeps the current value.
func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Factsheets Settings Wizard")
	cmd.Println("==========================")
	cmd.Println("Press enter to keep a value.")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())
	changed := 0
	for _, key := range settingsService.Keys() {
		for {
			cmd.Printf("%s: ", key)
			input := readLine(reader)
			if input == "" {
				break
			}
			if err := settingsService.Set(key, input); err != nil {
				cmd.Printf("  %v\n", err)
				continue
			}
			changed++
			break
		}
	}

	cmd.Println()
	cmd.Printf("Updated %d settings.\n", changed)
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
