package tripsit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/custodia-labs/factsheets/internal/connectors/httpjson"
	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
	"github.com/custodia-labs/factsheets/internal/logger"
)

// Verify interface compliance.
var (
	_ driven.SubstanceSource = (*Source)(nil)
	_ driven.ComboSource     = (*Source)(nil)
)

var log = logger.For("tripsit")

// API endpoints relative to the base URL.
const (
	pathAllDrugs      = "getAllDrugs"
	pathAllCategories = "getAllCategories"
	pathDrug          = "getDrug"
)

// Source fetches datasets from the TripSit API.
type Source struct {
	client    *httpjson.Client
	baseURL   string
	combosURL string
}

// New creates a TripSit source. baseURL is the API root serving getAllDrugs,
// getAllCategories and getDrug; combosURL serves the combination dataset.
func New(client *httpjson.Client, baseURL, combosURL string) *Source {
	return &Source{
		client:    client,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		combosURL: combosURL,
	}
}

// envelope is the response wrapper of every TripSit API call.
type envelope struct {
	Err  json.RawMessage   `json:"err"`
	Msg  string            `json:"msg,omitempty"`
	Data []json.RawMessage `json:"data"`
}

// failed reports whether the API flagged the call as an error.
func (e *envelope) failed() bool {
	v := bytes.TrimSpace(e.Err)
	switch string(v) {
	case "", "null", "false", `""`, "0":
		return false
	default:
		return true
	}
}

// first returns the first data element, which carries the payload.
func (e *envelope) first() (json.RawMessage, bool) {
	if len(e.Data) == 0 {
		return nil, false
	}
	return e.Data[0], true
}

// apiError is an error reported inside a successful response envelope.
type apiError struct {
	path string
	msg  string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: api error: %s", e.path, e.msg)
}

func (s *Source) call(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var env envelope
	if err := s.client.GetJSON(ctx, s.baseURL+"/"+path, query, &env); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if env.failed() {
		msg := env.Msg
		if msg == "" {
			msg = string(env.Err)
		}
		return nil, &apiError{path: path, msg: msg}
	}
	data, ok := env.first()
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEmptyDataset)
	}
	return data, nil
}

// FetchSubstances returns every substance published by getAllDrugs.
// Records that fail to decode are skipped and logged.
func (s *Source) FetchSubstances(ctx context.Context) ([]domain.Substance, error) {
	data, err := s.call(ctx, pathAllDrugs, nil)
	if err != nil {
		return nil, err
	}

	var records map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%s: %w", pathAllDrugs, &httpjson.DecodeError{URL: s.baseURL, Err: err})
	}

	// Keys are visited in order so records whose names differ only by case
	// always resolve to the same winner.
	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	subs := make([]domain.Substance, 0, len(records))
	for _, key := range keys {
		sub, err := decodeSubstance(key, records[key])
		if err != nil {
			log.Debug("skipping %s: %v", key, err)
			continue
		}
		subs = append(subs, sub)
	}
	if skipped := len(records) - len(subs); skipped > 0 {
		log.Warn("skipped %d malformed substance records", skipped)
	}
	return subs, nil
}

// decodeSubstance decodes one record, taking the map key as the name when
// the record has none. A field of the wrong shape is dropped on its own;
// only a record that is not an object fails.
func decodeSubstance(key string, raw json.RawMessage) (domain.Substance, error) {
	var sub domain.Substance
	if err := json.Unmarshal(raw, &sub); err != nil {
		var dropped []string
		sub, dropped, err = decodeFields(raw)
		if err != nil {
			return domain.Substance{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
		}
		log.Debug("%s: dropped malformed fields %s", key, strings.Join(dropped, ", "))
	}
	if sub.Name == "" {
		sub.Name = key
	}
	sub.Name = strings.ToLower(strings.TrimSpace(sub.Name))
	if sub.Name == "" {
		return domain.Substance{}, fmt.Errorf("%w: no name", domain.ErrMalformedRecord)
	}
	return sub, nil
}

// decodeFields decodes a record one field at a time, returning the names
// of the fields that did not decode.
func decodeFields(raw json.RawMessage) (domain.Substance, []string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Substance{}, nil, err
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var sub domain.Substance
	var dropped []string
	for _, name := range names {
		one, err := json.Marshal(map[string]json.RawMessage{name: fields[name]})
		if err != nil {
			dropped = append(dropped, name)
			continue
		}
		var field domain.Substance
		if err := json.Unmarshal(one, &field); err != nil {
			dropped = append(dropped, name)
			continue
		}
		_ = json.Unmarshal(one, &sub)
	}
	return sub, dropped, nil
}

// categoryRecord accepts both spellings of the wiki link.
type categoryRecord struct {
	Name        string `json:"name"`
	PrettyName  string `json:"pretty_name"`
	Description string `json:"description"`
	Wiki        string `json:"wiki"`
	WikiURL     string `json:"wiki_url"`
}

// FetchCategories returns every category published by getAllCategories.
func (s *Source) FetchCategories(ctx context.Context) (map[string]domain.Category, error) {
	data, err := s.call(ctx, pathAllCategories, nil)
	if err != nil {
		return nil, err
	}

	var records map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%s: %w", pathAllCategories, &httpjson.DecodeError{URL: s.baseURL, Err: err})
	}

	cats := make(map[string]domain.Category, len(records))
	for key, raw := range records {
		var rec categoryRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Debug("skipping category %s: %v", key, err)
			continue
		}
		name := rec.Name
		if name == "" {
			name = key
		}
		name = strings.ToLower(name)
		wiki := rec.Wiki
		if wiki == "" {
			wiki = rec.WikiURL
		}
		cats[name] = domain.Category{
			Name:        name,
			PrettyName:  rec.PrettyName,
			Description: rec.Description,
			Wiki:        wiki,
		}
	}
	return cats, nil
}

// FetchRaw returns the getDrug record for name, undecoded.
func (s *Source) FetchRaw(ctx context.Context, name string) (map[string]any, error) {
	data, err := s.call(ctx, pathDrug, url.Values{"name": {name}})
	if err != nil {
		var apiErr *apiError
		if httpjson.IsNotFound(err) || errors.As(err, &apiErr) {
			return nil, fmt.Errorf("raw %q: %w", name, domain.ErrNotFound)
		}
		return nil, err
	}

	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil || record == nil {
		return nil, fmt.Errorf("raw %q: %w", name, domain.ErrNotFound)
	}
	return record, nil
}
