// Package tripsit implements the TripSit substance, category and
// combination-risk sources on top of the httpjson transport.
package tripsit
