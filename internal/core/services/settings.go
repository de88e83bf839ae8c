package services

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
	"github.com/custodia-labs/factsheets/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyTripSitBaseURL        = "sources.tripsit.base_url"
	keyCombosURL             = "sources.combos.url"
	keyErowidURL             = "sources.erowid.url"
	keyPsychonautWikiAPIURL  = "sources.psychonautwiki.api_url"
	keyPsychonautWikiBaseURL = "sources.psychonautwiki.base_url"
	keyTripSitWikiAPIURL     = "sources.tripsit_wiki.api_url"
	keyTripSitWikiBaseURL    = "sources.tripsit_wiki.base_url"
	keyHTTPTimeout           = "http.timeout_seconds"
	keyHTTPRate              = "http.requests_per_second"
	keySchedulerEnabled      = "scheduler.enabled"
	keySchedulerTick         = "scheduler.tick_seconds"
	keySubstancesInterval    = "scheduler.substances_interval_seconds"
	keyErowidInterval        = "scheduler.erowid_interval_seconds"
	keyMemoMaxEntries        = "memo.max_entries"
	keyGlossaryPath          = "glossary.path"
)

type keyKind int

const (
	kindString keyKind = iota
	kindURL
	kindSeconds
	kindFloat
	kindBool
	kindInt
)

var settingKinds = map[string]keyKind{
	keyTripSitBaseURL:        kindURL,
	keyCombosURL:             kindURL,
	keyErowidURL:             kindURL,
	keyPsychonautWikiAPIURL:  kindURL,
	keyPsychonautWikiBaseURL: kindURL,
	keyTripSitWikiAPIURL:     kindURL,
	keyTripSitWikiBaseURL:    kindURL,
	keyHTTPTimeout:           kindSeconds,
	keyHTTPRate:              kindFloat,
	keySchedulerEnabled:      kindBool,
	keySchedulerTick:         kindSeconds,
	keySubstancesInterval:    kindSeconds,
	keyErowidInterval:        kindSeconds,
	keyMemoMaxEntries:        kindInt,
	keyGlossaryPath:          kindString,
}

// SettingsService maps config keys onto application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, filling unset keys with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Sources: domain.SourceSettings{
			TripSitBaseURL:        s.getString(keyTripSitBaseURL, d.Sources.TripSitBaseURL),
			CombosURL:             s.getString(keyCombosURL, d.Sources.CombosURL),
			ErowidURL:             s.getString(keyErowidURL, d.Sources.ErowidURL),
			PsychonautWikiAPIURL:  s.getString(keyPsychonautWikiAPIURL, d.Sources.PsychonautWikiAPIURL),
			PsychonautWikiBaseURL: s.getString(keyPsychonautWikiBaseURL, d.Sources.PsychonautWikiBaseURL),
			TripSitWikiAPIURL:     s.getString(keyTripSitWikiAPIURL, d.Sources.TripSitWikiAPIURL),
			TripSitWikiBaseURL:    s.getString(keyTripSitWikiBaseURL, d.Sources.TripSitWikiBaseURL),
		},
		HTTP: domain.HTTPSettings{
			Timeout:           s.getSeconds(keyHTTPTimeout, d.HTTP.Timeout),
			RequestsPerSecond: s.getFloat(keyHTTPRate, d.HTTP.RequestsPerSecond),
		},
		Scheduler: domain.SchedulerSettings{
			Enabled:            s.getBool(keySchedulerEnabled, d.Scheduler.Enabled),
			Tick:               s.getSeconds(keySchedulerTick, d.Scheduler.Tick),
			SubstancesInterval: s.getSeconds(keySubstancesInterval, d.Scheduler.SubstancesInterval),
			ErowidInterval:     s.getSeconds(keyErowidInterval, d.Scheduler.ErowidInterval),
		},
		Memo: domain.MemoSettings{
			MaxEntries: s.getInt(keyMemoMaxEntries, d.Memo.MaxEntries),
		},
		GlossaryPath: s.configStore.GetString(keyGlossaryPath),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyTripSitBaseURL, settings.Sources.TripSitBaseURL},
		{keyCombosURL, settings.Sources.CombosURL},
		{keyErowidURL, settings.Sources.ErowidURL},
		{keyPsychonautWikiAPIURL, settings.Sources.PsychonautWikiAPIURL},
		{keyPsychonautWikiBaseURL, settings.Sources.PsychonautWikiBaseURL},
		{keyTripSitWikiAPIURL, settings.Sources.TripSitWikiAPIURL},
		{keyTripSitWikiBaseURL, settings.Sources.TripSitWikiBaseURL},
		{keyHTTPTimeout, int64(settings.HTTP.Timeout / time.Second)},
		{keyHTTPRate, settings.HTTP.RequestsPerSecond},
		{keySchedulerEnabled, settings.Scheduler.Enabled},
		{keySchedulerTick, int64(settings.Scheduler.Tick / time.Second)},
		{keySubstancesInterval, int64(settings.Scheduler.SubstancesInterval / time.Second)},
		{keyErowidInterval, int64(settings.Scheduler.ErowidInterval / time.Second)},
		{keyMemoMaxEntries, int64(settings.Memo.MaxEntries)},
		{keyGlossaryPath, settings.GlossaryPath},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses a value for a key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	var parsed any
	switch kind {
	case kindURL:
		if err := validateURL(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		parsed = value
	case kindSeconds, kindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer: %w", key, domain.ErrInvalidInput)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%s must be a non-negative number: %w", key, domain.ErrInvalidInput)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false: %w", key, domain.ErrInvalidInput)
		}
		parsed = b
	default:
		parsed = value
	}

	return s.configStore.Set(key, parsed)
}

// Keys returns every recognised config key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that every endpoint parses and every interval is positive.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	urls := map[string]string{
		keyTripSitBaseURL:        settings.Sources.TripSitBaseURL,
		keyCombosURL:             settings.Sources.CombosURL,
		keyErowidURL:             settings.Sources.ErowidURL,
		keyPsychonautWikiAPIURL:  settings.Sources.PsychonautWikiAPIURL,
		keyPsychonautWikiBaseURL: settings.Sources.PsychonautWikiBaseURL,
		keyTripSitWikiAPIURL:     settings.Sources.TripSitWikiAPIURL,
		keyTripSitWikiBaseURL:    settings.Sources.TripSitWikiBaseURL,
	}
	for _, key := range sortedKeys(urls) {
		if err := validateURL(urls[key]); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	if settings.HTTP.Timeout <= 0 {
		return fmt.Errorf("%s must be positive: %w", keyHTTPTimeout, domain.ErrInvalidInput)
	}
	if settings.Scheduler.Tick <= 0 {
		return fmt.Errorf("%s must be positive: %w", keySchedulerTick, domain.ErrInvalidInput)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid URL %q: %w", raw, domain.ErrInvalidInput)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	raw, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := raw.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
