package services

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/logger"
)

// curatedMarker identifies summaries that already carry hand-written links.
const curatedMarker = "a href"

var annotatorLog = logger.For("annotator")

// AnnotateStats summarises one batch annotation.
type AnnotateStats struct {
	// Annotated is the number of summaries rewritten.
	Annotated int

	// Curated is the number of summaries left alone because they already had links.
	Curated int

	// Malformed is the number of substances without a textual summary.
	Malformed int
}

// Annotator rewrites substance summaries with cross-reference links and
// glossary tooltips.
//
// Substance links are applied first and become protected spans: later
// passes never look inside them. Glossary terms are then marked in the
// remaining plain text, longest term first, and the marks rendered as
// tooltips in a second pass.
type Annotator struct {
	glossary domain.Glossary
	terms    []pattern
}

// pattern is a compiled whole-word, case-insensitive matcher for one key.
type pattern struct {
	key string
	re  *regexp.Regexp
}

func wholeWord(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(key) + `\b`)
}

// NewAnnotator creates an annotator for a glossary.
// The glossary is compiled once and must not change afterwards.
func NewAnnotator(glossary domain.Glossary) *Annotator {
	terms := glossary.Terms()
	a := &Annotator{
		glossary: glossary,
		terms:    make([]pattern, 0, len(terms)),
	}
	for _, t := range terms {
		a.terms = append(a.terms, pattern{key: t, re: wholeWord(t)})
	}
	return a
}

// LinkTargets is the compiled set of substances a summary may link to.
// Build it once per substance dataset and reuse it for every summary.
type LinkTargets struct {
	targets []linkTarget
}

type linkTarget struct {
	pattern
	pretty string
}

// CompileTargets compiles a matcher for every substance name.
func CompileTargets(subs map[string]*domain.Substance) *LinkTargets {
	names := make([]string, 0, len(subs))
	for name := range subs {
		names = append(names, name)
	}
	// Longest first so links are applied deterministically when two kept
	// names overlap in the text without one containing the other.
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	lt := &LinkTargets{targets: make([]linkTarget, 0, len(names))}
	for _, name := range names {
		if name == "" {
			continue
		}
		lt.targets = append(lt.targets, linkTarget{
			pattern: pattern{key: strings.ToLower(name), re: wholeWord(name)},
			pretty:  subs[name].DisplayName(),
		})
	}
	return lt
}

// AnnotateAll rewrites the summary of every substance in place.
//
// The map must not be visible to readers yet. A substance without a textual
// summary is skipped and counted; it never stops the rest of the batch.
func (a *Annotator) AnnotateAll(subs map[string]*domain.Substance) AnnotateStats {
	targets := CompileTargets(subs)

	var stats AnnotateStats
	for _, name := range sortedKeys(subs) {
		s := subs[name]
		summary, ok := s.Properties.Summary()
		if !ok {
			stats.Malformed++
			annotatorLog.Debug("%s: %v", name, fmt.Errorf("no textual summary: %w", domain.ErrMalformedRecord))
			continue
		}
		if isCurated(summary) {
			stats.Curated++
			continue
		}
		s.Properties[domain.PropertySummary] = a.Annotate(summary, s.Name, targets)
		stats.Annotated++
	}
	return stats
}

// Annotate returns the summary with substance links and glossary tooltips.
// self is the name of the substance the summary belongs to; it is never
// linked, but it still shadows any shorter name it contains. Summaries that
// already contain links are returned unchanged.
func (a *Annotator) Annotate(summary, self string, targets *LinkTargets) string {
	if isCurated(summary) {
		return summary
	}

	text := []span{{text: summary}}
	text = a.link(text, summary, strings.ToLower(self), targets)
	text = a.markTerms(text)
	return a.render(text)
}

func isCurated(summary string) bool {
	return strings.Contains(summary, curatedMarker)
}

type spanKind int

const (
	spanPlain spanKind = iota
	spanLink
	spanTerm
)

// span is a piece of the summary. Only plain spans are scanned for matches.
type span struct {
	kind spanKind
	text string

	// key is the substance name of a link or the glossary term of a mark.
	key string
}

// link replaces whole-word mentions of other substances with link spans.
func (a *Annotator) link(text []span, summary, self string, targets *LinkTargets) []span {
	if targets == nil {
		return text
	}

	var matched []linkTarget
	for _, t := range targets.targets {
		if t.re.MatchString(summary) {
			matched = append(matched, t)
		}
	}

	for _, t := range longestMatches(matched) {
		if t.key == self {
			continue
		}
		text = replaceAll(text, t.re, func(string) span {
			return span{kind: spanLink, key: t.key, text: t.pretty}
		})
	}
	return text
}

// longestMatches drops every matched name contained in a longer matched name.
func longestMatches(matched []linkTarget) []linkTarget {
	kept := make([]linkTarget, 0, len(matched))
	for i, t := range matched {
		shadowed := false
		for j, other := range matched {
			if i == j || len(other.key) <= len(t.key) {
				continue
			}
			if strings.Contains(other.key, t.key) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			kept = append(kept, t)
		}
	}
	return kept
}

// markTerms is the first glossary pass: it wraps terms found in plain text
// in term spans, keeping the original casing.
func (a *Annotator) markTerms(text []span) []span {
	for _, t := range a.terms {
		text = replaceAll(text, t.re, func(match string) span {
			return span{kind: spanTerm, key: t.key, text: match}
		})
	}
	return text
}

// render is the second glossary pass: it turns every span into markup.
func (a *Annotator) render(text []span) string {
	var b strings.Builder
	for _, s := range text {
		switch s.kind {
		case spanLink:
			fmt.Fprintf(&b, `<a href="/%s">%s</a>`, s.key, s.text)
		case spanTerm:
			def, ok := a.glossary.Define(s.text)
			if !ok {
				def, _ = a.glossary.Define(s.key)
			}
			fmt.Fprintf(&b, `<span class="glossary" data-toggle="tooltip" title="%s">%s</span>`,
				html.EscapeString(def), s.text)
		default:
			b.WriteString(s.text)
		}
	}
	return b.String()
}

// replaceAll splits every plain span around matches of re, turning each
// match into the span returned by wrap.
func replaceAll(text []span, re *regexp.Regexp, wrap func(match string) span) []span {
	out := make([]span, 0, len(text))
	for _, s := range text {
		if s.kind != spanPlain {
			out = append(out, s)
			continue
		}
		locs := re.FindAllStringIndex(s.text, -1)
		if locs == nil {
			out = append(out, s)
			continue
		}
		prev := 0
		for _, loc := range locs {
			if loc[0] > prev {
				out = append(out, span{text: s.text[prev:loc[0]]})
			}
			out = append(out, wrap(s.text[loc[0]:loc[1]]))
			prev = loc[1]
		}
		if prev < len(s.text) {
			out = append(out, span{text: s.text[prev:]})
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
