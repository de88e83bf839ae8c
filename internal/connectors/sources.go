package connectors

import (
	"github.com/custodia-labs/factsheets/internal/connectors/erowid"
	"github.com/custodia-labs/factsheets/internal/connectors/httpjson"
	"github.com/custodia-labs/factsheets/internal/connectors/mediawiki"
	"github.com/custodia-labs/factsheets/internal/connectors/tripsit"
	"github.com/custodia-labs/factsheets/internal/core/domain"
)

// Sources holds every source client built from one settings snapshot.
// All clients share one transport, so the request rate applies across providers.
type Sources struct {
	TripSit        *tripsit.Source
	Erowid         *erowid.Source
	PsychonautWiki *mediawiki.Searcher
	TripSitWiki    *mediawiki.Searcher
	Effects        *mediawiki.Effects
}

// New creates the source clients for settings.
func New(settings *domain.AppSettings) *Sources {
	client := httpjson.NewClient(httpjson.Options{
		Timeout:           settings.HTTP.Timeout,
		RequestsPerSecond: settings.HTTP.RequestsPerSecond,
	})

	src := settings.Sources
	return &Sources{
		TripSit:        tripsit.New(client, src.TripSitBaseURL, src.CombosURL),
		Erowid:         erowid.New(client, src.ErowidURL),
		PsychonautWiki: mediawiki.NewSearcher(client, src.PsychonautWikiAPIURL, src.PsychonautWikiBaseURL),
		TripSitWiki:    mediawiki.NewSearcher(client, src.TripSitWikiAPIURL, src.TripSitWikiBaseURL),
		Effects:        mediawiki.NewEffects(client, src.PsychonautWikiAPIURL),
	}
}
