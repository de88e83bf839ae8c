package domain

import "time"

// AppSettings holds all user-configurable application settings.
type AppSettings struct {
	Sources   SourceSettings
	HTTP      HTTPSettings
	Scheduler SchedulerSettings
	Memo      MemoSettings

	// GlossaryPath points at a JSON glossary file. Empty uses the bundled glossary.
	GlossaryPath string
}

// SourceSettings holds the endpoints of every external provider.
type SourceSettings struct {
	// TripSitBaseURL is the base of the TripSit API (getAllDrugs, getAllCategories, getDrug).
	TripSitBaseURL string

	// CombosURL serves the combination-risk dataset.
	CombosURL string

	// ErowidURL serves the Erowid reference index.
	ErowidURL string

	// PsychonautWikiAPIURL is the MediaWiki api.php endpoint of PsychonautWiki.
	PsychonautWikiAPIURL string

	// PsychonautWikiBaseURL prefixes page links.
	PsychonautWikiBaseURL string

	// TripSitWikiAPIURL is the MediaWiki api.php endpoint of the TripSit wiki.
	TripSitWikiAPIURL string

	// TripSitWikiBaseURL prefixes page links.
	TripSitWikiBaseURL string
}

// HTTPSettings bounds outgoing requests.
type HTTPSettings struct {
	// Timeout applies to every request.
	Timeout time.Duration

	// RequestsPerSecond throttles each provider client.
	RequestsPerSecond float64
}

// SchedulerSettings configures background refreshes.
type SchedulerSettings struct {
	Enabled            bool
	Tick               time.Duration
	SubstancesInterval time.Duration
	ErowidInterval     time.Duration
}

// MemoSettings configures lookup memoisation.
type MemoSettings struct {
	// MaxEntries bounds each memo cache. Zero means unbounded.
	MaxEntries int
}

// IsBounded reports whether memo caches evict.
func (m MemoSettings) IsBounded() bool {
	return m.MaxEntries > 0
}

// DefaultAppSettings returns the default settings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Sources: SourceSettings{
			TripSitBaseURL:        "http://tripbot.tripsit.me/api/tripsit",
			CombosURL:             "http://tripsit.me/combo_beta.json",
			ErowidURL:             "https://api.erowid.org/0.1/_index.json?depth=3",
			PsychonautWikiAPIURL:  "https://psychonautwiki.org/w/api.php",
			PsychonautWikiBaseURL: "https://psychonautwiki.org/wiki/",
			TripSitWikiAPIURL:     "http://wiki.tripsit.me/api.php",
			TripSitWikiBaseURL:    "https://wiki.tripsit.me/wiki/",
		},
		HTTP: HTTPSettings{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 5,
		},
		Scheduler: SchedulerSettings{
			Enabled:            true,
			Tick:               5 * time.Second,
			SubstancesInterval: 60 * time.Second,
			ErowidInterval:     time.Hour,
		},
	}
}

// SchedulerConfig converts the scheduler settings into a SchedulerConfig.
func (s AppSettings) SchedulerConfig() SchedulerConfig {
	cfg := DefaultSchedulerConfig()
	cfg.Enabled = s.Scheduler.Enabled
	if s.Scheduler.Tick > 0 {
		cfg.TickInterval = s.Scheduler.Tick
	}
	if s.Scheduler.SubstancesInterval > 0 {
		cfg.TaskConfigs[TaskIDSubstanceRefresh] = TaskConfig{Enabled: true, Interval: s.Scheduler.SubstancesInterval}
		cfg.TaskConfigs[TaskIDCategoryRefresh] = TaskConfig{Enabled: true, Interval: s.Scheduler.SubstancesInterval}
	}
	if s.Scheduler.ErowidInterval > 0 {
		cfg.TaskConfigs[TaskIDErowidRefresh] = TaskConfig{Enabled: true, Interval: s.Scheduler.ErowidInterval}
	}
	return cfg
}
