package mcp

import (
	"context"
	"strings"

	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/core/ports/driving"
)

var (
	_ driving.FactsheetService = (*mockFactsheetService)(nil)
	_ driving.Scheduler        = (*mockScheduler)(nil)
)

// mockFactsheetService is a mock implementation of driving.FactsheetService.
type mockFactsheetService struct {
	substances map[string]*domain.AnnotatedSubstance
	aliases    map[string]string
	categories []domain.Category
	list       []domain.Substance
	err        error
}

func (m *mockFactsheetService) Lookup(_ context.Context, id string) (*domain.LookupResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	id = strings.ToLower(id)
	if sub, ok := m.substances[id]; ok {
		return &domain.LookupResult{Substance: sub}, nil
	}
	if canonical, ok := m.aliases[id]; ok {
		return &domain.LookupResult{RedirectTo: canonical}, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockFactsheetService) ListCategory(_ context.Context, category string) ([]domain.Substance, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Substance{}
	for i := range m.list {
		if m.list[i].HasCategory(category) {
			out = append(out, m.list[i])
		}
	}
	return out, nil
}

func (m *mockFactsheetService) GetCategory(_ context.Context, category string) (*domain.Category, error) {
	for i := range m.categories {
		if m.categories[i].Name == category {
			return &m.categories[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockFactsheetService) ListCategories(_ context.Context) ([]domain.Category, error) {
	return m.categories, m.err
}

func (m *mockFactsheetService) ListAll(_ context.Context) ([]domain.Substance, error) {
	return m.list, m.err
}

func (m *mockFactsheetService) Status(_ context.Context) (*domain.StatusReport, error) {
	return &domain.StatusReport{}, m.err
}

func (m *mockFactsheetService) MissingSources(_ context.Context) ([]domain.MissingSources, error) {
	return nil, m.err
}

func (m *mockFactsheetService) Raw(_ context.Context, _ string) (map[string]any, error) {
	return nil, m.err
}

// mockScheduler is a mock implementation of driving.Scheduler.
type mockScheduler struct {
	tasks []domain.ScheduledTask
	err   error
}

func (m *mockScheduler) Start(_ context.Context) error { return nil }

func (m *mockScheduler) Stop() error { return nil }

func (m *mockScheduler) Tasks(_ context.Context) ([]domain.ScheduledTask, error) {
	return m.tasks, m.err
}

// newTestFactsheets returns a service holding caffeine and mdma, with molly as an alias.
func newTestFactsheets() *mockFactsheetService {
	caffeine := domain.Substance{
		Name:       "caffeine",
		PrettyName: "Caffeine",
		Categories: []string{"stimulant", "common"},
	}
	mdma := domain.Substance{
		Name:       "mdma",
		PrettyName: "MDMA",
		Categories: []string{"empathogen", "common"},
		Aliases:    []string{"molly"},
		Properties: domain.Properties{
			"summary":  "An empathogen.",
			"duration": "3-6 hours",
			"pweffects": map[string]any{
				"Euphoria": "https://psychonautwiki.org/wiki/Euphoria",
			},
		},
	}

	return &mockFactsheetService{
		substances: map[string]*domain.AnnotatedSubstance{
			"mdma": {
				Substance: &mdma,
				Group: &domain.InteractionGroup{
					Key:        "mdma",
					PrettyName: "MDMA",
				},
				Safety: &domain.SafetyBuckets{
					Dangerous: []domain.SafetyEntry{{Name: "maois", PrettyName: "MAOIs"}},
					Caution:   []domain.SafetyEntry{{Name: "cocaine", PrettyName: "Cocaine"}},
				},
				References: domain.References{
					Wiki:   "https://wiki.tripsit.me/wiki/MDMA",
					Erowid: &domain.ErowidEntry{Name: "MDMA", URL: "https://erowid.org/chemicals/mdma/"},
				},
				PropertyOrder: []string{"summary", "duration", "pweffects"},
			},
			"caffeine": {
				Substance:     &caffeine,
				PropertyOrder: []string{"summary"},
			},
		},
		aliases: map[string]string{"molly": "mdma"},
		categories: []domain.Category{
			{Name: "common", PrettyName: "Common", Description: "Frequently used substances."},
			{Name: "stimulant", PrettyName: "Stimulant"},
		},
		list: []domain.Substance{caffeine, mdma},
	}
}
