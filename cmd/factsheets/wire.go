package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/factsheets/internal/adapters/driven/config/file"
	"github.com/custodia-labs/factsheets/internal/adapters/driven/glossary"
	"github.com/custodia-labs/factsheets/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/factsheets/internal/adapters/driving/cli"
	"github.com/custodia-labs/factsheets/internal/connectors"
	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
	"github.com/custodia-labs/factsheets/internal/core/services"
	"github.com/custodia-labs/factsheets/internal/logger"
	"github.com/custodia-labs/factsheets/internal/observability"
)

// build wires every adapter and service from the configured settings.
func build(opts cli.Options) (*cli.Services, error) {
	var store driven.ConfigStore
	if opts.NoConfig {
		store = memory.NewConfigStore(nil)
	} else {
		fileStore, err := file.NewConfigStore(opts.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		store = fileStore
	}

	settingsService := services.NewSettingsService(store)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := settingsService.Validate(); err != nil {
		logger.Warn("invalid settings: %v", err)
	}

	gloss, err := glossary.NewLoader(settings.GlossaryPath).Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load glossary: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	pwMemo, err := memory.NewMemo[string](settings.Memo.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("create memo: %w", err)
	}
	wikiMemo, err := memory.NewMemo[string](settings.Memo.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("create memo: %w", err)
	}
	effectsMemo, err := memory.NewMemo[map[string]string](settings.Memo.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("create memo: %w", err)
	}

	cache := memory.NewCacheStore()
	sources := connectors.New(settings)

	refresher := services.NewRefresher(services.RefresherDeps{
		Cache:      cache,
		Substances: sources.TripSit,
		Combos:     sources.TripSit,
		Erowid:     sources.Erowid,
		Annotator:  services.NewAnnotator(gloss),
		Metrics:    metrics,
	})

	factsheets := services.NewFactsheetService(services.FactsheetDeps{
		Cache:              cache,
		Substances:         sources.TripSit,
		PsychonautWiki:     sources.PsychonautWiki,
		TripSitWiki:        sources.TripSitWiki,
		Effects:            sources.Effects,
		PsychonautWikiMemo: pwMemo,
		TripSitWikiMemo:    wikiMemo,
		EffectsMemo:        effectsMemo,
		Metrics:            metrics,
	})

	scheduler := services.NewScheduler(settings.SchedulerConfig(), memory.NewSchedulerStore(), refresher)

	return &cli.Services{
		Factsheet: factsheets,
		Refresher: refresher,
		Scheduler: scheduler,
		Settings:  settingsService,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}, nil
}
