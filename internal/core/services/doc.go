// Package services implements the driving port interfaces.
// Services hold the factsheet logic (annotation, alias resolution,
// interaction grouping, refresh scheduling) and orchestrate calls to
// driven ports (adapters).
//
// Services depend only on ports and the domain; concrete sources and
// stores are injected by the composition root.
package services
