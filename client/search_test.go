package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// searchBackend serves geocode plus keyword-keyed nearby results
func searchBackend(t *testing.T, failing map[string]bool) *httptest.Server {
	t.Helper()

	resultsByKeyword := map[string][]PlaceResult{
		"lodging": {
			{PlaceID: "pl-hotel", Name: "Grand Hotel", Rating: 4.5},
			{PlaceID: "pl-shared", Name: "Ryokan Cafe", Rating: 4.0},
		},
		"tourist attractions": {
			{PlaceID: "pl-shrine", Name: "Old Shrine", Rating: 4.7},
			{PlaceID: "pl-shared", Name: "Ryokan Cafe", Rating: 4.0},
		},
		"restaurants": {
			{PlaceID: "pl-ramen", Name: "Ramen Bar", Rating: 4.2},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/places/geocode", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") == "nowhere" {
			writeJSON(t, w, http.StatusOK, map[string]any{"status": "ZERO_RESULTS"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"status": "OK", "latitude": 35.6762, "longitude": 139.6503,
		})
	})
	mux.HandleFunc("/api/places/search", func(w http.ResponseWriter, r *http.Request) {
		keyword := r.URL.Query().Get("keyword")
		if failing[keyword] {
			writeJSON(t, w, http.StatusBadGateway, map[string]string{"error": "Upstream error"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"results": resultsByKeyword[keyword]})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchDestinationMergesAndDedupes(t *testing.T) {
	srv := searchBackend(t, nil)
	c, err := New(srv.URL)
	require.NoError(t, err)
	defer c.Close()

	out, err := c.SearchDestination(context.Background(), "Tokyo")
	require.NoError(t, err)

	assert.InDelta(t, 35.6762, out.Latitude, 0.0001)
	assert.Empty(t, out.Errors)
	assert.False(t, out.Partial())

	// 5 raw hits, one shared place id, so 4 merged results
	require.Len(t, out.Results, 4)
	seen := make(map[string]int)
	for _, r := range out.Results {
		seen[r.PlaceID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "place %s duplicated", id)
	}

	// The duplicate keeps its first category (lodging beats attraction)
	assert.Len(t, out.ByCategory(CategoryLodging), 2)
	assert.Len(t, out.ByCategory(CategoryAttraction), 1)
	assert.Len(t, out.ByCategory(CategoryRestaurant), 1)
}

func TestSearchCategoryPinnedByKeyword(t *testing.T) {
	srv := searchBackend(t, nil)
	c, err := New(srv.URL)
	require.NoError(t, err)
	defer c.Close()

	out, err := c.SearchNearby(context.Background(), 35.0, 139.0)
	require.NoError(t, err)

	for _, r := range out.Results {
		assert.Contains(t,
			[]string{CategoryLodging, CategoryAttraction, CategoryRestaurant},
			r.Category)
	}
}

func TestSearchPartialFailureKeepsOtherCategories(t *testing.T) {
	srv := searchBackend(t, map[string]bool{"restaurants": true})
	c, err := New(srv.URL)
	require.NoError(t, err)
	defer c.Close()

	out, err := c.SearchNearby(context.Background(), 35.0, 139.0)
	require.NoError(t, err, "a single failed category must not fail the search")

	assert.True(t, out.Partial())
	assert.Contains(t, out.Errors, CategoryRestaurant)
	assert.NotEmpty(t, out.ByCategory(CategoryLodging))
	assert.NotEmpty(t, out.ByCategory(CategoryAttraction))
	assert.Empty(t, out.ByCategory(CategoryRestaurant))
}

func TestSearchAllCategoriesFailing(t *testing.T) {
	srv := searchBackend(t, map[string]bool{
		"lodging": true, "tourist attractions": true, "restaurants": true,
	})
	c, err := New(srv.URL)
	require.NoError(t, err)
	defer c.Close()

	out, err := c.SearchNearby(context.Background(), 35.0, 139.0)
	require.Error(t, err)
	assert.Len(t, out.Errors, 3)
	assert.False(t, out.Partial())
}

func TestGeocodeZeroResults(t *testing.T) {
	srv := searchBackend(t, nil)
	c, err := New(srv.URL)
	require.NoError(t, err)
	defer c.Close()

	_, _, err = c.Geocode(context.Background(), "nowhere")
	assert.Error(t, err)
}
