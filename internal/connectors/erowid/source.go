package erowid

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/custodia-labs/factsheets/internal/connectors/httpjson"
	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
	"github.com/custodia-labs/factsheets/internal/logger"
)

// Verify interface compliance.
var _ driven.ErowidSource = (*Source)(nil)

var log = logger.For("erowid")

// Source fetches the Erowid index.
type Source struct {
	client *httpjson.Client
	url    string
}

// New creates an Erowid source for the index at url.
func New(client *httpjson.Client, url string) *Source {
	return &Source{client: client, url: url}
}

// entryRecord is one index entry. Erowid publishes ids as strings or numbers.
type entryRecord struct {
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	URL      string          `json:"url"`
	Category string          `json:"category"`
}

// FetchErowid returns every entry keyed by id.
//
// The index is a map of sections. A section is either an array of entries
// or a map of entries; entries without an id are skipped.
func (s *Source) FetchErowid(ctx context.Context) (domain.ErowidIndex, error) {
	var sections map[string]json.RawMessage
	if err := s.client.GetJSON(ctx, s.url, nil, &sections); err != nil {
		return nil, fmt.Errorf("erowid index: %w", err)
	}

	index := make(domain.ErowidIndex)
	skipped := 0
	for _, name := range sortedSections(sections) {
		for _, raw := range sectionEntries(sections[name]) {
			entry, ok := decodeEntry(raw)
			if !ok {
				skipped++
				continue
			}
			index[entry.ID] = entry
		}
	}
	if skipped > 0 {
		log.Debug("skipped %d entries without an id", skipped)
	}
	return index, nil
}

// sectionEntries returns the raw entries of a section in either layout.
func sectionEntries(section json.RawMessage) []json.RawMessage {
	var list []json.RawMessage
	if err := json.Unmarshal(section, &list); err == nil {
		return list
	}
	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(section, &keyed); err == nil {
		entries := make([]json.RawMessage, 0, len(keyed))
		for _, k := range sortedSections(keyed) {
			entries = append(entries, keyed[k])
		}
		return entries
	}
	return nil
}

func decodeEntry(raw json.RawMessage) (domain.ErowidEntry, bool) {
	var rec entryRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.ErowidEntry{}, false
	}
	id := idString(rec.ID)
	if id == "" {
		return domain.ErowidEntry{}, false
	}
	return domain.ErowidEntry{ID: id, Name: rec.Name, URL: rec.URL, Category: rec.Category}, true
}

// idString renders a string or numeric id.
func idString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// sortedSections returns map keys in order so later sections win
// deterministically on duplicate ids.
func sortedSections(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
