package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/custodia-labs/factsheets/internal/connectors/httpjson"
	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.EffectsSource = (*Effects)(nil)

// Effects lists effect pages through the Semantic MediaWiki ask API.
type Effects struct {
	client *httpjson.Client
	apiURL string
}

// NewEffects creates an effects source for the api.php endpoint at apiURL.
func NewEffects(client *httpjson.Client, apiURL string) *Effects {
	return &Effects{client: client, apiURL: apiURL}
}

type askResponse struct {
	Query struct {
		// Results is an object keyed by page name, or an empty array when
		// nothing matches.
		Results json.RawMessage `json:"results"`
	} `json:"query"`
}

type askResult struct {
	FullURL string `json:"fullurl"`
}

// FetchEffects returns effect name to page URL for the substance prettyName.
func (e *Effects) FetchEffects(ctx context.Context, prettyName string) (map[string]string, error) {
	params := url.Values{
		"action": {"ask"},
		"query":  {"[[-Effect::" + prettyName + "]]"},
		"format": {"json"},
	}

	var resp askResponse
	if err := e.client.GetJSON(ctx, e.apiURL, params, &resp); err != nil {
		return nil, fmt.Errorf("ask effects of %q: %w", prettyName, err)
	}

	effects := make(map[string]string)
	if len(resp.Query.Results) == 0 {
		return effects, nil
	}

	var results map[string]askResult
	if err := json.Unmarshal(resp.Query.Results, &results); err != nil {
		// An empty result set is encoded as [].
		var empty []json.RawMessage
		if json.Unmarshal(resp.Query.Results, &empty) == nil {
			return effects, nil
		}
		return nil, fmt.Errorf("ask effects of %q: %w", prettyName, &httpjson.DecodeError{URL: e.apiURL, Err: err})
	}
	for name, r := range results {
		effects[name] = r.FullURL
	}
	return effects, nil
}
