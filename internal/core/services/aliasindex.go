package services

import (
	"strings"

	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/logger"
)

var aliasLog = logger.For("aliases")

// BuildAliasIndex maps every alias of every substance to its canonical name.
//
// Aliases are stored lower-cased. Substances are visited in name order and
// a later substance claiming an alias already taken replaces the earlier
// claim; collisions are logged but not treated as errors.
func BuildAliasIndex(subs map[string]*domain.Substance) domain.AliasIndex {
	idx := make(domain.AliasIndex)
	for _, name := range sortedKeys(subs) {
		for _, alias := range subs[name].Aliases {
			key := strings.ToLower(strings.TrimSpace(alias))
			if key == "" {
				continue
			}
			if prev, ok := idx[key]; ok && prev != name {
				aliasLog.Debug("alias %q moves from %s to %s", key, prev, name)
			}
			idx[key] = name
		}
	}
	return idx
}

// NewSubstanceSet keys substances by lower-cased name and derives the alias index.
// Records without a name are skipped, and of two records with the same name
// the later one wins. Returns the set and the number skipped.
func NewSubstanceSet(subs []domain.Substance) (*domain.SubstanceSet, int) {
	byName := make(map[string]*domain.Substance, len(subs))
	skipped := 0
	for i := range subs {
		s := subs[i]
		s.Name = strings.ToLower(strings.TrimSpace(s.Name))
		if s.Name == "" {
			skipped++
			continue
		}
		byName[s.Name] = &s
	}
	return &domain.SubstanceSet{ByName: byName, Aliases: BuildAliasIndex(byName)}, skipped
}
