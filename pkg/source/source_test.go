package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw33tLie/upgradefeed/pkg/storage"
	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
)

const plainBody = `[
  {"project":"Lido","headline":"Withdrawals","timestamp":"2024-03-01T00:00:00Z","confidence":0.97,
   "affected_subtypes":[{"subtype_code":"STETH","impact_type":"rate_change","confidence":0.5,"reason":"r"}]},
  {"project":"Circle","headline":"CCTP"}
]`

const wrappedBody = `[
  {"payload":{"project":"Lido","headline":"Withdrawals","confidence":0.97}},
  {"payload":null},
  {"payload":{"project":"Circle","headline":"CCTP"}}
]`

func TestDecodeShapes(t *testing.T) {
	plain, err := Decode([]byte(plainBody))
	require.NoError(t, err)
	require.Len(t, plain, 2)
	assert.Equal(t, "Lido", plain[0].Project)
	require.Len(t, plain[0].AffectedSubtypes, 1)
	assert.Equal(t, 0.5, plain[0].AffectedSubtypes[0].StrengthOrZero())
	assert.Equal(t, 0.0, plain[1].Confidence, "absent confidence is 0")

	wrapped, err := Decode([]byte(wrappedBody))
	require.NoError(t, err)
	require.Len(t, wrapped, 2)
	assert.Equal(t, "Withdrawals", wrapped[0].Headline)
	assert.Equal(t, "CCTP", wrapped[1].Headline)
}

func TestDecodeRejectsBadBodies(t *testing.T) {
	for _, body := range []string{``, `{"project":"x"}`, `[{"project":`, `<html></html>`} {
		_, err := Decode([]byte(body))
		assert.Error(t, err, "body %q", body)
	}
	empty, err := Decode([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecodeToleratesMistypedFields(t *testing.T) {
	body := `[
	  {"project":"Lido","headline":"Epoch seconds","timestamp":1709251200,"confidence":"0.8"},
	  {"project":"Aave","headline":"Epoch millis","timestamp":1709251200000,"confidence":"high"},
	  {"project":"Circle","headline":"Odd subtypes","affected_subtypes":{"subtype_code":"USDC"},"supporting_sources":"https://x.io"},
	  {"project":"Maker","headline":"Mixed subtypes","id":42,
	   "affected_subtypes":[{"subtype_code":"DAI","confidence":"0.4"},"junk",{"subtype_code":"MKR","confidence":"n/a"}]},
	  "not a record",
	  {"project":"Good","headline":"Untouched","timestamp":"2024-03-02T00:00:00Z","confidence":0.9}
	]`

	items, err := Decode([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 5)

	assert.Equal(t, "2024-03-01T00:00:00Z", items[0].Timestamp)
	assert.Equal(t, 0.8, items[0].Confidence)

	assert.Equal(t, "2024-03-01T00:00:00Z", items[1].Timestamp)
	assert.Equal(t, 0.0, items[1].Confidence)

	assert.Empty(t, items[2].AffectedSubtypes)
	assert.Empty(t, items[2].SupportingSources)

	assert.Equal(t, "42", items[3].ID)
	require.Len(t, items[3].AffectedSubtypes, 2)
	assert.Equal(t, 0.4, items[3].AffectedSubtypes[0].StrengthOrZero())
	assert.Nil(t, items[3].AffectedSubtypes[1].Confidence)

	assert.Equal(t, "Good", items[4].Project)
	assert.Equal(t, "2024-03-02T00:00:00Z", items[4].Timestamp)
	assert.Equal(t, 0.9, items[4].Confidence)
}

func TestStaticLoadAddsCacheBuster(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(plainBody))
	}))
	defer srv.Close()

	s := &Static{URL: srv.URL + "/data/upgrades.json", now: func() time.Time { return time.UnixMilli(1700000000123) }}
	items, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "t=1700000000123", gotQuery)
}

func TestRESTLoadSendsKeyAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/upgrades", r.URL.Path)
		assert.Equal(t, "payload", r.URL.Query().Get("select"))
		assert.Equal(t, "timestamp.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "public-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer public-key", r.Header.Get("Authorization"))
		w.Write([]byte(wrappedBody))
	}))
	defer srv.Close()

	r := &REST{BaseURL: srv.URL + "/", APIKey: "public-key"}
	items, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestLoadFailuresAreDataLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, `[]`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"bad json", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			items, err := (&Static{URL: srv.URL}).Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, items)

			var dle *DataLoadError
			require.True(t, errors.As(err, &dle))
			assert.Equal(t, "static", dle.Source)
			if tt.status != http.StatusOK {
				assert.Equal(t, tt.status, dle.StatusCode)
			}
		})
	}
}

func TestLoadUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := (&REST{BaseURL: url}).Load(context.Background())
	require.Error(t, err)
	assert.True(t, IsDataLoadError(err))
}

func TestSQLiteLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.sqlite")
	db, err := storage.Open(path)
	require.NoError(t, err)
	_, err = db.ImportUpgrades(context.Background(), []upgrades.Upgrade{
		{Project: "Lido", Headline: "Withdrawals", Timestamp: "2024-03-01T00:00:00Z"},
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	items, err := (&SQLite{Path: path}).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Lido_Withdrawals", items[0].ID)
}

func TestSQLiteLoadMissingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.sqlite")

	items, err := (&SQLite{Path: path}).Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, items)

	var dle *DataLoadError
	require.True(t, errors.As(err, &dle))
	assert.Equal(t, "open", dle.Op)
	assert.NoFileExists(t, path, "loading must not create the database")
}
