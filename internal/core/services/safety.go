package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

// groupRule classifies a substance into an interaction group.
type groupRule struct {
	name  string
	match func(s *domain.Substance, combos domain.Combos) (string, bool)
}

func namePattern(expr, group string) func(*domain.Substance, domain.Combos) (string, bool) {
	re := regexp.MustCompile(expr)
	return func(s *domain.Substance, _ domain.Combos) (string, bool) {
		return group, re.MatchString(s.Name)
	}
}

func categoryTag(tag, group string) func(*domain.Substance, domain.Combos) (string, bool) {
	return func(s *domain.Substance, _ domain.Combos) (string, bool) {
		return group, s.HasCategory(tag)
	}
}

// defaultGroupRules are evaluated in order; the first match wins.
var defaultGroupRules = []groupRule{
	{
		name: "substance-specific",
		match: func(s *domain.Substance, combos domain.Combos) (string, bool) {
			_, ok := combos[s.Name]
			return s.Name, ok
		},
	},
	{name: "dox", match: namePattern(`(?i)^do.$`, domain.GroupDOx)},
	{name: "2c-x", match: namePattern(`(?i)^2c-.$`, domain.Group2Cx)},
	{name: "5-meo-xxt", match: namePattern(`(?i)^5-meo-..t$`, domain.Group5MeOxxT)},
	{name: "benzodiazepine", match: categoryTag("benzodiazepine", domain.GroupBenzodiazepines)},
	{name: "opioid", match: categoryTag("opioid", domain.GroupOpioids)},
	{name: "stimulant", match: categoryTag("stimulant", domain.GroupAmphetamines)},
}

// SafetyResolver projects the combination-risk dataset onto one substance.
type SafetyResolver struct {
	rules []groupRule
}

// NewSafetyResolver creates a resolver with the standard rule order.
func NewSafetyResolver() *SafetyResolver {
	return &SafetyResolver{rules: defaultGroupRules}
}

// Group returns the interaction group for a substance, or false when no rule matches.
func (r *SafetyResolver) Group(s *domain.Substance, combos domain.Combos) (*domain.InteractionGroup, bool) {
	for _, rule := range r.rules {
		key, ok := rule.match(s, combos)
		if !ok {
			continue
		}
		if g, known := domain.LookupGroup(key); known {
			return &g, true
		}
		return &domain.InteractionGroup{Key: key, PrettyName: s.DisplayName()}, true
	}
	return nil, false
}

// Resolve classifies a substance and buckets the risk entries of its group.
// Both results are nil when no rule matches. A group without entries yields
// empty buckets. Entries with an unrecognised status are dropped.
func (r *SafetyResolver) Resolve(
	s *domain.Substance,
	combos domain.Combos,
	subs *domain.SubstanceSet,
) (*domain.InteractionGroup, *domain.SafetyBuckets) {
	group, ok := r.Group(s, combos)
	if !ok {
		return nil, nil
	}

	buckets := domain.NewSafetyBuckets()
	partners := combos[group.Key]
	for _, partner := range sortedKeys(partners) {
		entry := partners[partner]
		bucket := buckets.Bucket(entry.Status)
		if bucket == nil {
			continue
		}
		*bucket = append(*bucket, resolvePartner(partner, entry, subs))
	}
	return group, buckets
}

// resolvePartner picks display text for a partner: a known group's name and
// link take precedence over a substance's display name, then the raw key.
// Matching ignores case; the raw key is shown as published.
func resolvePartner(partner string, entry domain.ComboEntry, subs *domain.SubstanceSet) domain.SafetyEntry {
	e := domain.SafetyEntry{Name: partner, PrettyName: partner, Note: entry.Note}
	if s, ok := subs.Get(partner); ok {
		e.PrettyName = s.DisplayName()
	}
	if g, ok := domain.LookupGroup(strings.ToLower(partner)); ok {
		e.PrettyName = g.PrettyName
		e.Wiki = g.Wiki
	}
	return e
}
