package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
	"github.com/custodia-labs/factsheets/internal/core/ports/driving"
	"github.com/custodia-labs/factsheets/internal/logger"
	"github.com/custodia-labs/factsheets/internal/observability"
)

// Ensure FactsheetService implements the interface.
var _ driving.FactsheetService = (*FactsheetService)(nil)

var lookupLog = logger.For("lookup")

// Memo cache names, also used as metric labels.
const (
	MemoPsychonautWiki = "psychonautwiki"
	MemoEffects        = "effects"
	MemoTripSitWiki    = "tripsit_wiki"
)

// leadingProperties are displayed first, in this order, before every other
// property in name order.
var leadingProperties = []string{
	domain.PropertySummary,
	domain.PropertyCategories,
	domain.PropertyDose,
	domain.PropertyOnset,
	domain.PropertyDuration,
	domain.PropertyEffects,
	domain.PropertyAfterEffects,
}

// citationGroups are the source keys every common substance should carry.
var citationGroups = []string{"dose", "duration", "effects", "_general"}

var bareURL = regexp.MustCompile(`(https?://[^\s]+)`)

// FactsheetDeps groups the collaborators of a FactsheetService.
// Every reference source and memo store is optional.
type FactsheetDeps struct {
	Cache      driven.CacheStore
	Substances driven.SubstanceSource

	PsychonautWiki driven.WikiSearcher
	TripSitWiki    driven.WikiSearcher
	Effects        driven.EffectsSource

	PsychonautWikiMemo driven.MemoStore[string]
	TripSitWikiMemo    driven.MemoStore[string]
	EffectsMemo        driven.MemoStore[map[string]string]

	Resolver *SafetyResolver
	Metrics  *observability.Metrics
}

// FactsheetService answers lookups against the current cache snapshot.
type FactsheetService struct {
	cache      driven.CacheStore
	substances driven.SubstanceSource

	pwSearch   driven.WikiSearcher
	wikiSearch driven.WikiSearcher
	effects    driven.EffectsSource

	pwMemo      *memoLookup[string]
	wikiMemo    *memoLookup[string]
	effectsMemo *memoLookup[map[string]string]

	resolver *SafetyResolver
	metrics  *observability.Metrics
}

// NewFactsheetService creates a factsheet service.
func NewFactsheetService(deps FactsheetDeps) *FactsheetService {
	resolver := deps.Resolver
	if resolver == nil {
		resolver = NewSafetyResolver()
	}
	return &FactsheetService{
		cache:       deps.Cache,
		substances:  deps.Substances,
		pwSearch:    deps.PsychonautWiki,
		wikiSearch:  deps.TripSitWiki,
		effects:     deps.Effects,
		pwMemo:      newMemoLookup(MemoPsychonautWiki, deps.PsychonautWikiMemo, deps.Metrics),
		wikiMemo:    newMemoLookup(MemoTripSitWiki, deps.TripSitWikiMemo, deps.Metrics),
		effectsMemo: newMemoLookup(MemoEffects, deps.EffectsMemo, deps.Metrics),
		resolver:    resolver,
		metrics:     deps.Metrics,
	}
}

// Lookup resolves an identifier to an annotated substance or an alias redirect.
func (s *FactsheetService) Lookup(ctx context.Context, id string) (*domain.LookupResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("empty identifier: %w", domain.ErrInvalidInput)
	}

	snap := s.cache.Snapshot()
	sub, ok := snap.Substances.Get(id)
	if !ok {
		if snap.Substances != nil {
			if canonical, ok := snap.Substances.Aliases.Resolve(id); ok {
				s.metrics.ObserveLookup(observability.OutcomeRedirect)
				return &domain.LookupResult{RedirectTo: canonical}, nil
			}
		}
		s.metrics.ObserveLookup(observability.OutcomeNotFound)
		return nil, fmt.Errorf("substance %q: %w", id, domain.ErrNotFound)
	}

	annotated := s.annotate(ctx, sub, snap)
	s.metrics.ObserveLookup(observability.OutcomeFound)
	return &domain.LookupResult{Substance: annotated}, nil
}

// annotate assembles the presentation copy of a cached substance.
func (s *FactsheetService) annotate(ctx context.Context, cached *domain.Substance, snap domain.CacheSnapshot) *domain.AnnotatedSubstance {
	sub := cached.Clone()
	if sub.Properties == nil {
		sub.Properties = make(domain.Properties)
	}
	sub.Sources = urlifySources(sub.Sources)
	domain.NormaliseRoutes(sub)

	out := &domain.AnnotatedSubstance{Substance: sub}
	out.Group, out.Safety = s.resolver.Resolve(sub, snap.Combos, snap.Substances)
	out.References = s.references(ctx, sub, snap.Erowid)
	if len(out.References.Effects) > 0 {
		sub.Properties[domain.PropertyEffects] = out.References.Effects
	}
	out.PropertyOrder = propertyOrder(sub.Properties)
	return out
}

// references resolves every external reference concurrently.
// A failing source only leaves its own reference empty.
func (s *FactsheetService) references(ctx context.Context, sub *domain.Substance, erowid domain.ErowidIndex) domain.References {
	var refs domain.References
	if entry, ok := erowid.Find(sub.Name); ok {
		refs.Erowid = entry
	}

	var g errgroup.Group
	if s.wikiSearch != nil {
		g.Go(func() error {
			url, err := s.wikiMemo.get(ctx, sub.Name, func(ctx context.Context) (string, error) {
				return s.wikiSearch.Search(ctx, sub.Name)
			})
			if err != nil {
				lookupLog.Debug("tripsit wiki for %s: %v", sub.Name, err)
			}
			refs.Wiki = url
			return nil
		})
	}
	if s.pwSearch != nil {
		g.Go(func() error {
			url, err := s.pwMemo.get(ctx, sub.Name, func(ctx context.Context) (string, error) {
				return s.pwSearch.Search(ctx, sub.Name)
			})
			if err != nil {
				lookupLog.Debug("psychonautwiki for %s: %v", sub.Name, err)
			}
			refs.PsychonautWiki = url
			return nil
		})
	}
	if s.effects != nil {
		g.Go(func() error {
			effects, err := s.effectsMemo.get(ctx, sub.Name, func(ctx context.Context) (map[string]string, error) {
				return s.effects.FetchEffects(ctx, sub.DisplayName())
			})
			if err != nil {
				lookupLog.Debug("effects for %s: %v", sub.Name, err)
			}
			refs.Effects = effects
			return nil
		})
	}
	_ = g.Wait()
	return refs
}

// ListCategory returns the substances tagged with a category, sorted by display name.
func (s *FactsheetService) ListCategory(_ context.Context, category string) ([]domain.Substance, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return nil, fmt.Errorf("empty category: %w", domain.ErrInvalidInput)
	}

	snap := s.cache.Snapshot()
	subs := []domain.Substance{}
	for _, name := range snap.Substances.Names() {
		sub, _ := snap.Substances.Get(name)
		if sub.HasCategory(category) {
			subs = append(subs, *sub)
		}
	}
	domain.SortByDisplayName(subs)
	return subs, nil
}

// GetCategory returns the description of a category.
func (s *FactsheetService) GetCategory(_ context.Context, category string) (*domain.Category, error) {
	snap := s.cache.Snapshot()
	c, ok := snap.Categories[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", category, domain.ErrNotFound)
	}
	return &c, nil
}

// ListCategories returns every category, sorted by name.
func (s *FactsheetService) ListCategories(_ context.Context) ([]domain.Category, error) {
	snap := s.cache.Snapshot()
	cats := make([]domain.Category, 0, len(snap.Categories))
	for _, name := range sortedKeys(snap.Categories) {
		cats = append(cats, snap.Categories[name])
	}
	return cats, nil
}

// ListAll returns every substance sorted by display name.
func (s *FactsheetService) ListAll(_ context.Context) ([]domain.Substance, error) {
	snap := s.cache.Snapshot()
	subs := make([]domain.Substance, 0, snap.Substances.Len())
	for _, name := range snap.Substances.Names() {
		sub, _ := snap.Substances.Get(name)
		subs = append(subs, *sub)
	}
	domain.SortByDisplayName(subs)
	return subs, nil
}

// Status lists substances missing each structured field, in name order.
func (s *FactsheetService) Status(_ context.Context) (*domain.StatusReport, error) {
	snap := s.cache.Snapshot()
	report := &domain.StatusReport{
		MissingDose:         []domain.Substance{},
		MissingOnset:        []domain.Substance{},
		MissingDuration:     []domain.Substance{},
		MissingAfterEffects: []domain.Substance{},
	}
	for _, name := range snap.Substances.Names() {
		sub, _ := snap.Substances.Get(name)
		if sub.FormattedDose == nil {
			report.MissingDose = append(report.MissingDose, *sub)
		}
		if sub.FormattedOnset == nil {
			report.MissingOnset = append(report.MissingOnset, *sub)
		}
		if sub.FormattedDuration == nil {
			report.MissingDuration = append(report.MissingDuration, *sub)
		}
		if sub.FormattedAftereffects == nil {
			report.MissingAfterEffects = append(report.MissingAfterEffects, *sub)
		}
	}
	return report, nil
}

// MissingSources lists common substances lacking any citation group, in name order.
// The general citation group is reported as "general".
func (s *FactsheetService) MissingSources(_ context.Context) ([]domain.MissingSources, error) {
	snap := s.cache.Snapshot()
	out := []domain.MissingSources{}
	for _, name := range snap.Substances.Names() {
		sub, _ := snap.Substances.Get(name)
		if !sub.HasCategory("common") {
			continue
		}
		var missing []string
		for _, group := range citationGroups {
			if _, ok := sub.Sources[group]; ok {
				continue
			}
			missing = append(missing, strings.TrimPrefix(group, "_"))
		}
		if len(missing) > 0 {
			out = append(out, domain.MissingSources{Substance: *sub, Missing: missing})
		}
	}
	return out, nil
}

// Raw fetches a single record straight from the substance provider.
func (s *FactsheetService) Raw(ctx context.Context, name string) (map[string]any, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty name: %w", domain.ErrInvalidInput)
	}
	if s.substances == nil {
		return nil, domain.ErrSourceUnavailable
	}
	return s.substances.FetchRaw(ctx, name)
}

// urlifySources returns a copy of sources with bare URLs turned into links.
func urlifySources(sources map[string][]string) map[string][]string {
	if sources == nil {
		return nil
	}
	out := make(map[string][]string, len(sources))
	for prop, refs := range sources {
		linked := make([]string, len(refs))
		for i, ref := range refs {
			linked[i] = Urlify(ref)
		}
		out[prop] = linked
	}
	return out
}

// Urlify wraps every http(s) URL in text in a link.
func Urlify(text string) string {
	return bareURL.ReplaceAllString(text, `<a href="$1">$1</a>`)
}

// propertyOrder lists the leading properties followed by every other
// property key in name order.
func propertyOrder(props domain.Properties) []string {
	order := append([]string(nil), leadingProperties...)
	seen := make(map[string]struct{}, len(order))
	for _, k := range order {
		seen[k] = struct{}{}
	}
	rest := make([]string, 0, len(props))
	for k := range props {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}
