package driving

import "github.com/custodia-labs/factsheets/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by config key, parsing the value for its type.
	Set(key, value string) error

	// Keys returns every recognised config key.
	Keys() []string

	// Validate checks that every endpoint and interval is usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
