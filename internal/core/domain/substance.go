package domain

import (
	"sort"
	"strings"
)

// Property keys with special meaning in a substance's properties bag.
const (
	PropertySummary      = "summary"
	PropertyCategories   = "categories"
	PropertyDose         = "dose"
	PropertyOnset        = "onset"
	PropertyDuration     = "duration"
	PropertyEffects      = "pweffects"
	PropertyAfterEffects = "after-effects"
)

// Substance is a catalogued substance record.
type Substance struct {
	// Name is the canonical identifier. It is unique within a snapshot and always lower-case.
	Name string `json:"name"`

	// PrettyName is the display name used as link text.
	PrettyName string `json:"pretty_name"`

	// Categories holds category tags such as "stimulant" or "common".
	Categories []string `json:"categories,omitempty"`

	// Aliases are alternate names that resolve to Name.
	Aliases []string `json:"aliases,omitempty"`

	// Properties is the free-form property bag (summary, dose, onset, ...).
	Properties Properties `json:"properties,omitempty"`

	FormattedDose         *Formatted `json:"formatted_dose,omitempty"`
	FormattedOnset        *Formatted `json:"formatted_onset,omitempty"`
	FormattedDuration     *Formatted `json:"formatted_duration,omitempty"`
	FormattedAftereffects *Formatted `json:"formatted_aftereffects,omitempty"`
	FormattedEffects      []string   `json:"formatted_effects,omitempty"`

	// Sources maps a property name to citation strings.
	Sources map[string][]string `json:"sources,omitempty"`
}

// DisplayName returns PrettyName, falling back to Name.
func (s *Substance) DisplayName() string {
	if s.PrettyName != "" {
		return s.PrettyName
	}
	return s.Name
}

// HasCategory reports whether the substance carries the given category tag.
func (s *Substance) HasCategory(category string) bool {
	for _, c := range s.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// Clone returns a copy that can be modified without touching cached data.
// Property values themselves are shared; only the containers are copied.
func (s *Substance) Clone() *Substance {
	c := *s
	c.Categories = append([]string(nil), s.Categories...)
	c.Aliases = append([]string(nil), s.Aliases...)
	c.FormattedEffects = append([]string(nil), s.FormattedEffects...)

	if s.Properties != nil {
		c.Properties = make(Properties, len(s.Properties))
		for k, v := range s.Properties {
			c.Properties[k] = v
		}
	}
	if s.Sources != nil {
		c.Sources = make(map[string][]string, len(s.Sources))
		for k, v := range s.Sources {
			c.Sources[k] = append([]string(nil), v...)
		}
	}

	c.FormattedDose = s.FormattedDose.Clone()
	c.FormattedOnset = s.FormattedOnset.Clone()
	c.FormattedDuration = s.FormattedDuration.Clone()
	c.FormattedAftereffects = s.FormattedAftereffects.Clone()
	return &c
}

// Properties is the free-form property bag of a substance.
type Properties map[string]any

// Summary returns the free-text summary if present and textual.
func (p Properties) Summary() (string, bool) {
	v, ok := p[PropertySummary]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Category describes a substance category.
type Category struct {
	Name        string `json:"name"`
	PrettyName  string `json:"pretty_name"`
	Description string `json:"description,omitempty"`
	Wiki        string `json:"wiki,omitempty"`
}

// AliasIndex maps a lower-cased alias to a canonical substance name.
type AliasIndex map[string]string

// Resolve returns the canonical name for an alias, ignoring case.
func (a AliasIndex) Resolve(alias string) (string, bool) {
	name, ok := a[strings.ToLower(alias)]
	return name, ok
}

// SubstanceSet is an immutable substance dataset together with its derived alias index.
// Both are produced by the same refresh and swapped together.
type SubstanceSet struct {
	ByName  map[string]*Substance
	Aliases AliasIndex
}

// Get returns the substance with the given canonical name, ignoring case.
func (s *SubstanceSet) Get(name string) (*Substance, bool) {
	if s == nil {
		return nil, false
	}
	sub, ok := s.ByName[strings.ToLower(name)]
	return sub, ok
}

// Len returns the number of substances in the set.
func (s *SubstanceSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ByName)
}

// Names returns the canonical names in sorted order.
func (s *SubstanceSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.ByName))
	for name := range s.ByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortByDisplayName orders substances by display name ascending, then by canonical name.
func SortByDisplayName(subs []Substance) {
	sort.SliceStable(subs, func(i, j int) bool {
		a, b := strings.ToLower(subs[i].DisplayName()), strings.ToLower(subs[j].DisplayName())
		if a != b {
			return a < b
		}
		return subs[i].Name < subs[j].Name
	})
}
