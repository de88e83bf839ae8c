// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CacheStore: The in-memory, multi-field dataset cache
//   - SubstanceSource: Fetches substances, categories and raw records
//   - ComboSource: Fetches the combination-risk dataset
//   - ErowidSource: Fetches the Erowid reference index
//   - SchedulerStore: Scheduler task state and history
//   - ConfigStore: Application configuration
//   - GlossaryLoader: Loads the glossary once at startup
//
// # Optional Interfaces
//
// These can be nil - lookups simply omit the reference they would provide:
//
//   - WikiSearcher: Resolves a substance to a wiki page (PsychonautWiki, TripSit wiki)
//   - EffectsSource: Resolves PsychonautWiki effect pages
//   - MemoStore: Memoises the above per canonical name
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
