package tripsit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/factsheets/internal/connectors/httpjson"
	"github.com/custodia-labs/factsheets/internal/core/domain"
)

const allDrugsBody = `{"err":null,"data":[{
	"lsd": {
		"name": "lsd",
		"pretty_name": "LSD",
		"aliases": ["acid", "lucy"],
		"categories": ["psychedelic", "common"],
		"properties": {"summary": "A classic psychedelic."},
		"formatted_dose": {"_unit": "ug", "Oral": {"Common": "75-150"}},
		"sources": {"_general": ["https://example.org/lsd"]}
	},
	"MDMA": {
		"pretty_name": "MDMA",
		"properties": {"summary": "An empathogen."}
	},
	"dmt": {
		"name": "dmt",
		"pretty_name": "DMT",
		"aliases": ["dimitri"],
		"formatted_duration": "15-30 minutes"
	},
	"ketamine": {
		"name": "ketamine",
		"pretty_name": "Ketamine",
		"categories": "dissociative",
		"aliases": ["k"]
	},
	"broken": ["not", "a", "record"]
}]}`

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient() *httpjson.Client {
	return httpjson.NewClient(httpjson.Options{
		RequestsPerSecond: 1000,
		MaxRetries:        -1,
		Timeout:           5 * time.Second,
	})
}

func TestFetchSubstances(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/api/getAllDrugs": allDrugsBody})
	src := New(testClient(), srv.URL+"/api/", srv.URL+"/combos.json")

	subs, err := src.FetchSubstances(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 4)

	byName := make(map[string]domain.Substance)
	for _, s := range subs {
		byName[s.Name] = s
	}

	lsd, ok := byName["lsd"]
	require.True(t, ok)
	assert.Equal(t, "LSD", lsd.PrettyName)
	assert.Equal(t, []string{"acid", "lucy"}, lsd.Aliases)
	assert.True(t, lsd.HasCategory("common"))
	require.NotNil(t, lsd.FormattedDose)
	assert.Equal(t, "ug", lsd.FormattedDose.Unit)
	assert.Equal(t, []string{"Oral"}, lsd.FormattedDose.RouteNames())
	summary, ok := lsd.Properties.Summary()
	assert.True(t, ok)
	assert.Equal(t, "A classic psychedelic.", summary)

	// Missing name falls back to the lower-cased key.
	mdma, ok := byName["mdma"]
	require.True(t, ok)
	assert.Equal(t, "MDMA", mdma.PrettyName)

	// A bare scalar formatted value is kept as a scalar.
	dmt, ok := byName["dmt"]
	require.True(t, ok)
	assert.Equal(t, []string{"dimitri"}, dmt.Aliases)
	require.NotNil(t, dmt.FormattedDuration)
	assert.True(t, dmt.FormattedDuration.IsScalar())
	assert.Equal(t, "15-30 minutes", domain.Display(dmt.FormattedDuration.Value))

	// A field of the wrong shape is dropped, the rest of the record survives.
	ketamine, ok := byName["ketamine"]
	require.True(t, ok)
	assert.Equal(t, "Ketamine", ketamine.PrettyName)
	assert.Equal(t, []string{"k"}, ketamine.Aliases)
	assert.Empty(t, ketamine.Categories)
}

func TestFetchSubstances_CaseDuplicatesAreOrdered(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/getAllDrugs": `{"err":null,"data":[{
		"mdma": {"pretty_name": "MDMA (lower)"},
		"MDMA": {"pretty_name": "MDMA (upper)"},
		"Caffeine": {"pretty_name": "Caffeine"}
	}]}`})
	src := New(testClient(), srv.URL, "")

	for i := 0; i < 10; i++ {
		subs, err := src.FetchSubstances(context.Background())
		require.NoError(t, err)
		require.Len(t, subs, 3)

		pretty := make([]string, len(subs))
		for j, s := range subs {
			pretty[j] = s.PrettyName
		}
		assert.Equal(t, []string{"Caffeine", "MDMA (upper)", "MDMA (lower)"}, pretty)
	}
}

func TestFetchSubstances_APIError(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/getAllDrugs": `{"err":true,"msg":"database offline","data":[]}`,
	})
	src := New(testClient(), srv.URL, "")

	_, err := src.FetchSubstances(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database offline")
}

func TestFetchSubstances_EmptyData(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/getAllDrugs": `{"err":null,"data":[]}`})
	src := New(testClient(), srv.URL, "")

	_, err := src.FetchSubstances(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)
}

func TestFetchSubstances_NotAMap(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/getAllDrugs": `{"err":null,"data":["nope"]}`})
	src := New(testClient(), srv.URL, "")

	_, err := src.FetchSubstances(context.Background())
	require.Error(t, err)
	assert.True(t, httpjson.IsDecode(err))
}

func TestFetchSubstances_TransportError(t *testing.T) {
	srv := newTestServer(t, nil)
	src := New(testClient(), srv.URL, "")

	_, err := src.FetchSubstances(context.Background())
	require.Error(t, err)
	assert.True(t, httpjson.IsNotFound(err))
}

func TestFetchCategories(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/getAllCategories": `{"err":null,"data":[{
			"stimulant": {"name":"stimulant","pretty_name":"Stimulant","description":"Speeds you up.","wiki_url":"https://wiki.tripsit.me/wiki/Stimulants"},
			"Common": {"pretty_name":"Common","wiki":"https://wiki.tripsit.me/wiki/Common"},
			"bad": 42
		}]}`,
	})
	src := New(testClient(), srv.URL, "")

	cats, err := src.FetchCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)

	assert.Equal(t, domain.Category{
		Name:        "stimulant",
		PrettyName:  "Stimulant",
		Description: "Speeds you up.",
		Wiki:        "https://wiki.tripsit.me/wiki/Stimulants",
	}, cats["stimulant"])
	assert.Equal(t, "common", cats["common"].Name)
	assert.Equal(t, "https://wiki.tripsit.me/wiki/Common", cats["common"].Wiki)
}

func TestFetchRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getDrug", r.URL.Path)
		if r.URL.Query().Get("name") != "lsd" {
			_, _ = w.Write([]byte(`{"err":true,"msg":"No drug found.","data":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"err":null,"data":[{"name":"lsd","properties":{"summary":"x"}}]}`))
	}))
	defer srv.Close()
	src := New(testClient(), srv.URL, "")

	rec, err := src.FetchRaw(context.Background(), "lsd")
	require.NoError(t, err)
	assert.Equal(t, "lsd", rec["name"])
	assert.Contains(t, rec, "properties")
}

func TestFetchRaw_NotFound(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/getDrug": `{"err":null,"data":[null]}`})
	src := New(testClient(), srv.URL, "")

	_, err := src.FetchRaw(context.Background(), "nothing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFetchRaw_HTTPNotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	src := New(testClient(), srv.URL, "")

	_, err := src.FetchRaw(context.Background(), "nothing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnvelope_Failed(t *testing.T) {
	tests := []struct {
		raw    string
		failed bool
	}{
		{"", false},
		{"null", false},
		{"false", false},
		{`""`, false},
		{"true", true},
		{`"boom"`, true},
		{`{"code":1}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			e := envelope{Err: []byte(tt.raw)}
			assert.Equal(t, tt.failed, e.failed())
		})
	}
}

func TestFetchRaw_EnvelopeError(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/getDrug": `{"err":true,"msg":"No drug found.","data":[]}`,
	})
	src := New(testClient(), srv.URL, "")

	_, err := src.FetchRaw(context.Background(), "nothing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
