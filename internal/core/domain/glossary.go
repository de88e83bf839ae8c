package domain

import (
	"sort"
	"strings"
)

// Glossary maps a lower-cased term to its definition.
// It is loaded once at startup and never modified afterwards.
type Glossary map[string]string

// NewGlossary builds a glossary, lower-casing every term.
// On case-insensitive duplicates the later definition in term order wins.
func NewGlossary(entries map[string]string) Glossary {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	g := make(Glossary, len(entries))
	for _, k := range keys {
		term := strings.ToLower(strings.TrimSpace(k))
		if term == "" {
			continue
		}
		g[term] = entries[k]
	}
	return g
}

// Define returns the definition of a term, ignoring case.
func (g Glossary) Define(term string) (string, bool) {
	def, ok := g[strings.ToLower(term)]
	return def, ok
}

// Terms returns the terms longest first, ties broken alphabetically.
// Marking in this order lets a longer term claim text before any term it contains.
func (g Glossary) Terms() []string {
	terms := make([]string, 0, len(g))
	for t := range g {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	return terms
}
