package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/observability"
)

type factsheetFixture struct {
	svc     *FactsheetService
	cache   *mockCacheStore
	subs    *mockSubstanceSource
	wiki    *mockWikiSearcher
	pw      *mockWikiSearcher
	effects *mockEffectsSource
	metrics *observability.Metrics
}

func newFactsheetFixture(t *testing.T) *factsheetFixture {
	t.Helper()

	lsd := substance("lsd", "LSD", "A psychedelic.", "psychedelic", "common")
	lsd.Aliases = []string{"Acid"}
	lsd.Sources = map[string][]string{
		"_general": {"Erowid https://erowid.org/chemicals/lsd/"},
		"dose":     {"Plain citation"},
	}
	lsd.Properties["tolerance"] = "Builds quickly."
	lsd.Properties["avoid"] = "Lithium."
	lsd.FormattedDose = &domain.Formatted{Unit: "ug", Routes: map[string]json.RawMessage{"Oral": json.RawMessage(`"100"`)}}
	lsd.FormattedOnset = &domain.Formatted{Unit: "minutes", Value: json.RawMessage(`"30-60"`)}
	lsd.FormattedDuration = &domain.Formatted{Unit: "hours", Routes: map[string]json.RawMessage{"Oral": json.RawMessage(`"8-12"`)}}

	mdma := substance("mdma", "MDMA", "An empathogen.", "empathogen", "common")
	mdma.Sources = map[string][]string{"dose": {"x"}, "duration": {"x"}, "effects": {"x"}, "_general": {"x"}}
	mdma.FormattedDose = &domain.Formatted{Value: json.RawMessage(`"100"`)}
	mdma.FormattedOnset = &domain.Formatted{Value: json.RawMessage(`"45"`)}
	mdma.FormattedDuration = &domain.Formatted{Value: json.RawMessage(`"4"`)}
	mdma.FormattedAftereffects = &domain.Formatted{Value: json.RawMessage(`"24"`)}

	cocaine := substance("cocaine", "Cocaine", "A stimulant.", "stimulant")
	caffeine := substance("caffeine", "caffeine", "Coffee.", "stimulant")

	cache := newMockCacheStore()
	require.NoError(t, cache.ReplaceSubstances(substanceSet(lsd, mdma, cocaine, caffeine)))
	require.NoError(t, cache.ReplaceCategories(map[string]domain.Category{
		"stimulant": {Name: "stimulant", PrettyName: "Stimulant"},
		"common":    {Name: "common", PrettyName: "Common"},
	}))
	require.NoError(t, cache.ReplaceErowid(domain.ErowidIndex{"lsd": {ID: "lsd", Name: "LSD"}}))
	require.NoError(t, cache.ReplaceCombos(domain.Combos{
		"lsd": {
			"mdma":    {Status: domain.ComboLowRiskSynergy},
			"lithium": {Status: domain.ComboDangerous, Note: "Seizures."},
		},
	}))

	f := &factsheetFixture{
		cache: cache,
		subs: &mockSubstanceSource{raw: map[string]map[string]any{
			"lsd": {"name": "lsd"},
		}},
		wiki:    &mockWikiSearcher{pages: map[string]string{"lsd": "https://wiki.tripsit.me/wiki/LSD"}},
		pw:      &mockWikiSearcher{pages: map[string]string{"lsd": "https://psychonautwiki.org/wiki/LSD"}},
		effects: &mockEffectsSource{effects: map[string]map[string]string{"LSD": {"Euphoria": "https://psychonautwiki.org/wiki/Euphoria"}}},
		metrics: observability.NewMetrics(prometheus.NewRegistry()),
	}
	f.svc = NewFactsheetService(FactsheetDeps{
		Cache:              cache,
		Substances:         f.subs,
		PsychonautWiki:     f.pw,
		TripSitWiki:        f.wiki,
		Effects:            f.effects,
		PsychonautWikiMemo: newMockMemoStore[string](),
		TripSitWikiMemo:    newMockMemoStore[string](),
		EffectsMemo:        newMockMemoStore[map[string]string](),
		Metrics:            f.metrics,
	})
	return f
}

func names(subs []domain.Substance) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.Name)
	}
	return out
}

func TestLookup_CaseInsensitive(t *testing.T) {
	f := newFactsheetFixture(t)

	for _, id := range []string{"lsd", "LSD", "LsD", "  lsd "} {
		res, err := f.svc.Lookup(context.Background(), id)
		require.NoError(t, err, id)
		require.NotNil(t, res.Substance, id)
		assert.Equal(t, "lsd", res.Substance.Substance.Name)
		assert.False(t, res.IsRedirect())
	}
}

func TestLookup_AliasRedirect(t *testing.T) {
	f := newFactsheetFixture(t)

	res, err := f.svc.Lookup(context.Background(), "acid")
	require.NoError(t, err)
	assert.True(t, res.IsRedirect())
	assert.Equal(t, "lsd", res.RedirectTo)
	assert.Nil(t, res.Substance)
}

func TestLookup_NotFound(t *testing.T) {
	f := newFactsheetFixture(t)

	_, err := f.svc.Lookup(context.Background(), "unobtainium")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Lookup(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLookup_EmptyCache(t *testing.T) {
	svc := NewFactsheetService(FactsheetDeps{Cache: newMockCacheStore()})

	_, err := svc.Lookup(context.Background(), "lsd")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLookup_AssemblesFactsheet(t *testing.T) {
	f := newFactsheetFixture(t)

	res, err := f.svc.Lookup(context.Background(), "lsd")
	require.NoError(t, err)
	sheet := res.Substance

	// Interaction group and safety buckets.
	require.NotNil(t, sheet.Group)
	assert.Equal(t, "lsd", sheet.Group.Key)
	require.NotNil(t, sheet.Safety)
	assert.Equal(t, []domain.SafetyEntry{{Name: "mdma", PrettyName: "MDMA"}}, sheet.Safety.LowRiskSynergy)
	assert.Equal(t, []domain.SafetyEntry{{Name: "lithium", PrettyName: "lithium", Note: "Seizures."}}, sheet.Safety.Dangerous)

	// References.
	assert.Equal(t, "https://wiki.tripsit.me/wiki/LSD", sheet.References.Wiki)
	assert.Equal(t, "https://psychonautwiki.org/wiki/LSD", sheet.References.PsychonautWiki)
	require.NotNil(t, sheet.References.Erowid)
	assert.Equal(t, "LSD", sheet.References.Erowid.Name)
	assert.Equal(t, map[string]string{"Euphoria": "https://psychonautwiki.org/wiki/Euphoria"},
		sheet.Substance.Properties[domain.PropertyEffects])

	// Sources are urlified.
	assert.Equal(t,
		[]string{`Erowid <a href="https://erowid.org/chemicals/lsd/">https://erowid.org/chemicals/lsd/</a>`},
		sheet.Substance.Sources["_general"])
	assert.Equal(t, []string{"Plain citation"}, sheet.Substance.Sources["dose"])

	// Shared onset fills the routes used elsewhere.
	assert.Equal(t, []string{"Oral"}, sheet.Substance.FormattedOnset.RouteNames())

	// Property order.
	assert.Equal(t, []string{
		"summary", "categories", "dose", "onset", "duration", "pweffects", "after-effects",
		"avoid", "tolerance",
	}, sheet.PropertyOrder)
}

func TestLookup_DoesNotMutateCache(t *testing.T) {
	f := newFactsheetFixture(t)

	_, err := f.svc.Lookup(context.Background(), "lsd")
	require.NoError(t, err)

	cached, _ := f.cache.Snapshot().Substances.Get("lsd")
	assert.Equal(t, []string{"Erowid https://erowid.org/chemicals/lsd/"}, cached.Sources["_general"])
	assert.NotContains(t, cached.Properties, domain.PropertyEffects)
	assert.False(t, cached.FormattedOnset.IsByRoute())
}

func TestLookup_MemoisesReferences(t *testing.T) {
	f := newFactsheetFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Lookup(context.Background(), "lsd")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), f.wiki.calls.Load())
	assert.Equal(t, int32(1), f.pw.calls.Load())
	assert.Equal(t, int32(1), f.effects.calls.Load())
}

func TestLookup_ConcurrentReaders(t *testing.T) {
	f := newFactsheetFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.Lookup(context.Background(), "lsd")
			assert.NoError(t, err)
			assert.NotNil(t, res.Substance)
		}()
	}
	wg.Wait()
}

func TestLookup_ReferenceFailuresAreOmitted(t *testing.T) {
	f := newFactsheetFixture(t)
	f.wiki.err = errUpstream
	f.pw.err = errUpstream
	f.effects.err = errUpstream

	res, err := f.svc.Lookup(context.Background(), "lsd")
	require.NoError(t, err)

	refs := res.Substance.References
	assert.Empty(t, refs.Wiki)
	assert.Empty(t, refs.PsychonautWiki)
	assert.Empty(t, refs.Effects)
	assert.NotNil(t, refs.Erowid)
	assert.NotContains(t, res.Substance.Substance.Properties, domain.PropertyEffects)
}

func TestLookup_NoReferenceSources(t *testing.T) {
	f := newFactsheetFixture(t)
	svc := NewFactsheetService(FactsheetDeps{Cache: f.cache})

	res, err := svc.Lookup(context.Background(), "cocaine")
	require.NoError(t, err)

	sheet := res.Substance
	assert.Equal(t, domain.GroupAmphetamines, sheet.Group.Key)
	assert.Equal(t, 0, sheet.Safety.Len())
	assert.Nil(t, sheet.References.Erowid)
	assert.Empty(t, sheet.References.Wiki)
}

func TestLookup_RecordsOutcomes(t *testing.T) {
	f := newFactsheetFixture(t)

	_, _ = f.svc.Lookup(context.Background(), "lsd")
	_, _ = f.svc.Lookup(context.Background(), "acid")
	_, _ = f.svc.Lookup(context.Background(), "nope")

	lookups := f.metrics.LookupsTotal
	assert.Equal(t, 1.0, testutil.ToFloat64(lookups.WithLabelValues(observability.OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(lookups.WithLabelValues(observability.OutcomeRedirect)))
	assert.Equal(t, 1.0, testutil.ToFloat64(lookups.WithLabelValues(observability.OutcomeNotFound)))
}

func TestListCategory(t *testing.T) {
	f := newFactsheetFixture(t)

	subs, err := f.svc.ListCategory(context.Background(), "Stimulant")
	require.NoError(t, err)
	assert.Equal(t, []string{"caffeine", "cocaine"}, names(subs))

	subs, err = f.svc.ListCategory(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, subs)

	_, err = f.svc.ListCategory(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetCategory(t *testing.T) {
	f := newFactsheetFixture(t)

	cat, err := f.svc.GetCategory(context.Background(), "STIMULANT")
	require.NoError(t, err)
	assert.Equal(t, "Stimulant", cat.PrettyName)

	_, err = f.svc.GetCategory(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListCategories(t *testing.T) {
	f := newFactsheetFixture(t)

	cats, err := f.svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "common", cats[0].Name)
	assert.Equal(t, "stimulant", cats[1].Name)
}

func TestListAll_SortedByDisplayName(t *testing.T) {
	f := newFactsheetFixture(t)

	subs, err := f.svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"caffeine", "cocaine", "lsd", "mdma"}, names(subs))
}

func TestListAll_EmptyCache(t *testing.T) {
	svc := NewFactsheetService(FactsheetDeps{Cache: newMockCacheStore()})

	subs, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestStatus(t *testing.T) {
	f := newFactsheetFixture(t)

	report, err := f.svc.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"caffeine", "cocaine"}, names(report.MissingDose))
	assert.Equal(t, []string{"caffeine", "cocaine"}, names(report.MissingOnset))
	assert.Equal(t, []string{"caffeine", "cocaine"}, names(report.MissingDuration))
	assert.Equal(t, []string{"caffeine", "cocaine", "lsd"}, names(report.MissingAfterEffects))
}

func TestMissingSources(t *testing.T) {
	f := newFactsheetFixture(t)

	missing, err := f.svc.MissingSources(context.Background())
	require.NoError(t, err)

	require.Len(t, missing, 1)
	assert.Equal(t, "lsd", missing[0].Substance.Name)
	assert.Equal(t, []string{"duration", "effects"}, missing[0].Missing)
}

func TestRaw(t *testing.T) {
	f := newFactsheetFixture(t)

	rec, err := f.svc.Raw(context.Background(), "lsd")
	require.NoError(t, err)
	assert.Equal(t, "lsd", rec["name"])

	_, err = f.svc.Raw(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Raw(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	svc := NewFactsheetService(FactsheetDeps{Cache: f.cache})
	_, err = svc.Raw(context.Background(), "lsd")
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestUrlify(t *testing.T) {
	assert.Equal(t,
		`see <a href="http://a.org/x?y=1">http://a.org/x?y=1</a> and <a href="https://b.org">https://b.org</a>`,
		Urlify("see http://a.org/x?y=1 and https://b.org"))
	assert.Equal(t, "no links here", Urlify("no links here"))
}

func TestPropertyOrder(t *testing.T) {
	order := propertyOrder(domain.Properties{"zeta": 1, "summary": "x", "alpha": 2})
	assert.Equal(t, []string{
		"summary", "categories", "dose", "onset", "duration", "pweffects", "after-effects",
		"alpha", "zeta",
	}, order)
}

func TestLookup_BareScalarFormattedValue(t *testing.T) {
	var dmt domain.Substance
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "dmt",
		"pretty_name": "DMT",
		"aliases": ["dimitri"],
		"properties": {"summary": "A short psychedelic."},
		"formatted_duration": "15-30 minutes"
	}`), &dmt))

	cache := newMockCacheStore()
	require.NoError(t, cache.ReplaceSubstances(substanceSet(dmt)))
	svc := NewFactsheetService(FactsheetDeps{Cache: cache})

	res, err := svc.Lookup(context.Background(), "DMT")
	require.NoError(t, err)
	require.NotNil(t, res.Substance)
	duration := res.Substance.Substance.FormattedDuration
	require.NotNil(t, duration)
	assert.True(t, duration.IsScalar())
	assert.Equal(t, "15-30 minutes", domain.Display(duration.Value))

	res, err = svc.Lookup(context.Background(), "dimitri")
	require.NoError(t, err)
	assert.Equal(t, "dmt", res.RedirectTo)
}
