package domain

import "strings"

// ErowidEntry is one reference entry from the Erowid index.
type ErowidEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	URL      string `json:"url,omitempty"`
	Category string `json:"category,omitempty"`
}

// ErowidIndex maps a normalised identifier to its reference entry.
type ErowidIndex map[string]ErowidEntry

// ErowidKey normalises a substance name into an Erowid index key by dropping hyphens.
func ErowidKey(name string) string {
	return strings.ReplaceAll(name, "-", "")
}

// Find returns the entry for a substance name.
func (e ErowidIndex) Find(name string) (*ErowidEntry, bool) {
	entry, ok := e[ErowidKey(name)]
	if !ok {
		return nil, false
	}
	return &entry, true
}
