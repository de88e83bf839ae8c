// Package cli provides the cobra commands of the factsheets binary.
// Commands are thin: they call a driving port and print what it returns.
package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/factsheets/internal/core/ports/driving"
	"github.com/custodia-labs/factsheets/internal/logger"
)

var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
	noConfig  bool
)

// Services used by the commands. Set by SetServices or by the wiring hook.
var (
	factsheetService driving.FactsheetService
	refresher        driving.Refresher
	scheduler        driving.Scheduler
	settingsService  driving.SettingsService
	metricsHandler   http.Handler
)

var wiring Wiring

// Services holds the driving ports the commands call.
type Services struct {
	Factsheet driving.FactsheetService
	Refresher driving.Refresher
	Scheduler driving.Scheduler
	Settings  driving.SettingsService

	// Metrics serves the Prometheus exposition. Optional.
	Metrics http.Handler
}

// Options carries the global flags the services are built from.
type Options struct {
	// ConfigDir overrides the configuration directory.
	ConfigDir string

	// NoConfig ignores the configuration file and uses defaults.
	NoConfig bool
}

// Wiring builds the services once the global flags are parsed.
type Wiring func(opts Options) (*Services, error)

var rootCmd = &cobra.Command{
	Use:   "factsheets",
	Short: "Substance factsheet knowledge base",
	Long: `factsheets assembles substance records from TripSit, Erowid and
PsychonautWiki into annotated factsheets with dosage, duration and
combination-safety warnings.

One-shot commands fetch every dataset before answering. Use 'serve' to keep
the datasets fresh in the background and answer over MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return wire()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.factsheets)")
	rootCmd.PersistentFlags().BoolVar(&noConfig, "no-config", false, "ignore the configuration file and use defaults")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetWiring registers the hook that builds the services after flag parsing.
func SetWiring(w Wiring) {
	wiring = w
}

// SetServices replaces the services the commands call.
func SetServices(s *Services) {
	factsheetService = s.Factsheet
	refresher = s.Refresher
	scheduler = s.Scheduler
	settingsService = s.Settings
	metricsHandler = s.Metrics
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// wire builds the services through the wiring hook, once.
func wire() error {
	if wiring == nil {
		return nil
	}
	svc, err := wiring(Options{ConfigDir: configDir, NoConfig: noConfig})
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(svc)
	wiring = nil
	return nil
}

// loadDatasets fills the cache before a one-shot command reads it.
// Datasets that fail to load are logged and left empty.
func loadDatasets(ctx context.Context) {
	if refresher == nil {
		return
	}
	if err := refresher.WarmUp(ctx); err != nil {
		logger.Warn("some datasets failed to load: %v", err)
	}
}
