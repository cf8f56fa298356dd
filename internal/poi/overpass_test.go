package poi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/ramen-tools-mcp/internal/geo"
	"github.com/ironsheep/ramen-tools-mcp/internal/vocab"
)

var shibuya = geo.Coordinate{Lat: 35.6580, Lon: 139.7016}

const overpassBody = `{
  "elements": [
    {"type": "node", "id": 1, "lat": 35.6581, "lon": 139.7016,
     "tags": {"name": "麺屋こころ", "cuisine": "ramen"}},
    {"type": "node", "id": 2, "lat": 35.6585, "lon": 139.7020,
     "tags": {"name": "マクドナルド 渋谷店", "cuisine": "ramen;burger"}},
    {"type": "way", "id": 3, "center": {"lat": 35.6590, "lon": 139.7016},
     "tags": {"name:ja": "中華そば 青葉", "cuisine": "chinese"}},
    {"type": "way", "id": 4,
     "tags": {"name": "Center Missing", "cuisine": "sushi"}},
    {"type": "node", "id": 5, "lat": 35.6570, "lon": 139.7016,
     "tags": {"cuisine": "ramen"}},
    {"type": "node", "id": 6, "lat": 35.6600, "lon": 139.7016,
     "tags": {"name": "Sushi Zen", "cuisine": "Sushi"}},
    {"type": "node", "id": 7, "lat": 35.6600, "lon": 139.7016,
     "tags": {"name": "Tokyo Noodle", "cuisine": "Japanese;RAMEN"}}
  ]
}`

func newOverpassServer(t *testing.T, status int, body string, gotQuery *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		if gotQuery != nil {
			*gotQuery = r.PostForm.Get("data")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Search(t *testing.T) {
	var query string
	srv := newOverpassServer(t, http.StatusOK, overpassBody, &query)
	client := NewClient(Config{URL: srv.URL}, srv.Client())

	got, err := client.Search(context.Background(), shibuya, 500)
	require.NoError(t, err)

	assert.Contains(t, query, "[out:json][timeout:15];")
	assert.Contains(t, query, `node["cuisine"](around:500,35.658000,139.701600);`)
	assert.Contains(t, query, `way["cuisine"](around:500,35.658000,139.701600);`)
	assert.Contains(t, query, "out body center;")

	names := make([]string, len(got))
	for i, c := range got {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"麺屋こころ", "中華そば 青葉", "Sushi Zen", "Tokyo Noodle"}, names)

	kokoro := got[0]
	assert.True(t, kokoro.IsRamen)
	assert.Equal(t, "ramen", kokoro.Cuisine)
	assert.Equal(t, SourceOverpass, kokoro.Source)
	assert.InDelta(t, 11.1, kokoro.DistanceMeters, 0.5)

	aoba := got[1]
	assert.True(t, aoba.IsRamen, "name keyword classifies a chinese-tagged shop")
	assert.Equal(t, geo.Coordinate{Lat: 35.6590, Lon: 139.7016}, aoba.Coordinate)

	assert.False(t, got[2].IsRamen)
	assert.True(t, got[3].IsRamen, "cuisine match is case-insensitive")
}

func TestClient_ExcludedChainNeverEmitted(t *testing.T) {
	srv := newOverpassServer(t, http.StatusOK, overpassBody, nil)
	client := NewClient(Config{URL: srv.URL}, srv.Client())

	got, err := client.Search(context.Background(), shibuya, 500)
	require.NoError(t, err)

	for _, c := range got {
		assert.False(t, vocab.Default().IsExcluded(c.Name), "excluded chain %q emitted", c.Name)
		assert.NotEmpty(t, c.Name)
	}
}

func TestClient_CuisineFilter(t *testing.T) {
	var query string
	srv := newOverpassServer(t, http.StatusOK, `{"elements": []}`, &query)
	client := NewClient(Config{URL: srv.URL, Cuisine: "ramen", QueryTimeout: 25 * time.Second}, srv.Client())

	got, err := client.Search(context.Background(), shibuya, 2000)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, query, "[timeout:25]")
	assert.Contains(t, query, `node["cuisine"~"ramen"](around:2000,`)
}

func TestClient_Errors(t *testing.T) {
	srv := newOverpassServer(t, http.StatusTooManyRequests, "rate limited", nil)
	_, err := NewClient(Config{URL: srv.URL}, srv.Client()).Search(context.Background(), shibuya, 500)
	assert.ErrorIs(t, err, ErrStatus)

	srv = newOverpassServer(t, http.StatusOK, "<html>", nil)
	_, err = NewClient(Config{URL: srv.URL}, srv.Client()).Search(context.Background(), shibuya, 500)
	assert.Error(t, err)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := NewClient(Config{URL: srv.URL}, NewHTTPClient(50*time.Millisecond)).Search(context.Background(), shibuya, 500)
	assert.Error(t, err)
}

func TestClient_CustomVocabulary(t *testing.T) {
	srv := newOverpassServer(t, http.StatusOK, overpassBody, nil)
	v := vocab.Vocabulary{ExcludedChains: []string{"Sushi"}}
	client := NewClient(Config{URL: srv.URL}, srv.Client(), WithVocabulary(v))

	got, err := client.Search(context.Background(), shibuya, 500)
	require.NoError(t, err)

	for _, c := range got {
		assert.False(t, strings.Contains(c.Name, "Sushi"))
	}
	assert.Len(t, got, 4, "マクドナルド is allowed once the denylist is replaced")
}

func TestIsRamen(t *testing.T) {
	kws := vocab.Default().RamenNameKeywords

	assert.True(t, IsRamen("Anything", "ramen", kws))
	assert.True(t, IsRamen("Anything", "japanese;Ramen", kws))
	assert.True(t, IsRamen("らーめん太郎", "", kws))
	assert.False(t, IsRamen("味噌カツ", "japanese", kws), "soup words alone do not make a ramen shop")
	assert.False(t, IsRamen("Sushi Zen", "sushi", kws))
}
