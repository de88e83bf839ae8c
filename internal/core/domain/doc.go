// Package domain defines the core business entities for factsheets.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Substance: A catalogued substance record with free-text and structured properties
//   - Category: A grouping of substances (e.g. "opioid", "psychedelic")
//   - Glossary: Static term definitions used for tooltip annotation
//   - Combos: Pairwise combination-risk data keyed by interaction group
//   - CacheSnapshot: The currently visible set of cached datasets
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
