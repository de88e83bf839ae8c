package tripsit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

// FetchCombos returns the combination dataset.
// Group keys are lower-cased; partner keys and statuses are kept verbatim.
// Entries that fail to decode are skipped.
func (s *Source) FetchCombos(ctx context.Context) (domain.Combos, error) {
	var raw map[string]map[string]json.RawMessage
	if err := s.client.GetJSON(ctx, s.combosURL, nil, &raw); err != nil {
		return nil, fmt.Errorf("combos: %w", err)
	}

	combos := make(domain.Combos, len(raw))
	skipped := 0
	for group, partners := range raw {
		entries := make(map[string]domain.ComboEntry, len(partners))
		for partner, data := range partners {
			var entry domain.ComboEntry
			if err := json.Unmarshal(data, &entry); err != nil || entry.Status == "" {
				skipped++
				continue
			}
			entries[partner] = entry
		}
		combos[strings.ToLower(group)] = entries
	}
	if skipped > 0 {
		log.Warn("skipped %d malformed combination entries", skipped)
	}
	return combos, nil
}
