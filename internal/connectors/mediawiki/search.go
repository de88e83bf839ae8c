package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/custodia-labs/factsheets/internal/connectors/httpjson"
	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.WikiSearcher = (*Searcher)(nil)

var whitespace = regexp.MustCompile(`\s`)

// Searcher finds wiki pages through the opensearch API.
type Searcher struct {
	client  *httpjson.Client
	apiURL  string
	baseURL string
}

// NewSearcher creates a searcher. apiURL is the site's api.php endpoint and
// baseURL prefixes page titles, e.g. "https://wiki.tripsit.me/wiki/".
func NewSearcher(client *httpjson.Client, apiURL, baseURL string) *Searcher {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Searcher{client: client, apiURL: apiURL, baseURL: baseURL}
}

// Search returns the page URL of the first opensearch hit for query,
// or "" when there is none.
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"action":    {"opensearch"},
		"search":    {query},
		"limit":     {"1"},
		"namespace": {"0"},
		"format":    {"json"},
	}

	// [query, [titles], [descriptions], [urls]]
	var resp []json.RawMessage
	if err := s.client.GetJSON(ctx, s.apiURL, params, &resp); err != nil {
		return "", fmt.Errorf("opensearch %q: %w", query, err)
	}
	if len(resp) < 2 {
		return "", nil
	}

	var titles []string
	if err := json.Unmarshal(resp[1], &titles); err != nil {
		return "", fmt.Errorf("opensearch %q: %w", query, &httpjson.DecodeError{URL: s.apiURL, Err: err})
	}
	if len(titles) == 0 || titles[0] == "" {
		return "", nil
	}
	return PageURL(s.baseURL, titles[0]), nil
}

// PageURL joins a wiki base and a page title, replacing whitespace with underscores.
func PageURL(baseURL, title string) string {
	return baseURL + whitespace.ReplaceAllString(title, "_")
}
