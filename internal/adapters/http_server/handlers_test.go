package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "hotel_search/internal/adapters/http_server"
	"hotel_search/internal/app"
	"hotel_search/internal/domain"
)

func catalog() []domain.HotelRecord {
	lat, lon := 35.6938, 139.6989
	hs := []domain.HotelRecord{{
		ID: "sw", NameLocal: "新宿华盛顿酒店", NameAlt: "Shinjuku Washington Hotel",
		CityLocal: "东京", CityAlt: "Tokyo", Region: "Shinjuku", Country: "JP", Popularity: 1000,
		Lat: &lat, Lon: &lon,
	}}
	for i := 1; i <= 24; i++ {
		hs = append(hs, domain.HotelRecord{
			ID: fmt.Sprintf("t%02d", i), NameLocal: fmt.Sprintf("Ueno Stay %02d", i), CityAlt: "Tokyo", Popularity: int64(i),
		})
	}
	return hs
}

type flakyReloader struct{ err error }

func (f flakyReloader) Reload(context.Context) error { return f.err }

func newServer(t *testing.T, loaded bool, rl server.Reloader) (*httptest.Server, *app.CatalogService) {
	t.Helper()
	cat := app.NewCatalogService(app.StaticCatalog(catalog()), nil)
	if loaded {
		require.NoError(t, cat.Reload(context.Background()))
	}
	if rl == nil {
		rl = cat
	}
	q := app.NewQueryService(cat, nil, 0, nil)
	srv := server.New(5 * time.Second)
	srv.MountHandlers(&server.Handlers{Q: q, Catalog: rl})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, cat
}

func getJSON(t *testing.T, url string, dst any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dst != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp
}

func TestSuggestGet(t *testing.T) {
	ts, _ := newServer(t, true, nil)

	var body struct {
		Query       string                 `json:"query"`
		Suggestions []domain.SuggestResult `json:"suggestions"`
	}
	resp := getJSON(t, ts.URL+"/api/v1/hotel/suggest?q=shinjuku&count=5", &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body.Suggestions)
	assert.Equal(t, "sw", body.Suggestions[0].ID)
	assert.Equal(t, "新宿华盛顿酒店 (JP)", body.Suggestions[0].DisplayName)
	assert.NotEmpty(t, resp.Header.Get("ETag"))
}

func TestSuggest_CountClamped(t *testing.T) {
	ts, _ := newServer(t, true, nil)

	var body struct {
		Suggestions []domain.SuggestResult `json:"suggestions"`
	}
	for _, count := range []string{"0", "-1", "500"} {
		resp := getJSON(t, ts.URL+"/api/v1/hotel/suggest?q=tokyo&count="+count, &body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, body.Suggestions, 10, "count=%s", count)
	}
}

func TestSuggest_BadInput(t *testing.T) {
	ts, _ := newServer(t, true, nil)

	resp := getJSON(t, ts.URL+"/api/v1/hotel/suggest?q=", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))

	resp = getJSON(t, ts.URL+"/api/v1/hotel/suggest?q=tokyo&count=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err := http.Post(ts.URL+"/api/v1/hotel/suggest", "application/json", strings.NewReader("{bad"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSuggestPost(t *testing.T) {
	ts, _ := newServer(t, true, nil)

	resp, err := http.Post(ts.URL+"/api/v1/hotel/suggest", "application/json", strings.NewReader(`{"query":"ueno","count":3}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Suggestions []domain.SuggestResult `json:"suggestions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Suggestions, 3)
}

func TestSearch_Paging(t *testing.T) {
	ts, _ := newServer(t, true, nil)

	var res domain.SearchResult
	resp := getJSON(t, ts.URL+"/api/v1/hotel/search?q=Tokyo&page=3&pageSize=10", &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 25, res.TotalCount)
	assert.Equal(t, 3, res.TotalPages)
	assert.Len(t, res.Records, 5)

	// out-of-range values are clamped, not rejected
	resp = getJSON(t, ts.URL+"/api/v1/hotel/search?q=Tokyo&page=0&pageSize=1000", &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.PageSize)
	assert.Len(t, res.Records, 20)
}

func TestSearch_HugePageIsEmpty(t *testing.T) {
	ts, _ := newServer(t, true, nil)

	var res domain.SearchResult
	resp := getJSON(t, ts.URL+"/api/v1/hotel/search?q=tokyo&page=461168601842738792", &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100000, res.Page)
	assert.Equal(t, 25, res.TotalCount)
	assert.Empty(t, res.Records)
}

func TestSearch_ETagNotModified(t *testing.T) {
	ts, _ := newServer(t, true, nil)

	first := getJSON(t, ts.URL+"/api/v1/hotel/search?q=Tokyo", nil)
	etag := first.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/hotel/search?q=Tokyo", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestSearchPost_WithCoordinates(t *testing.T) {
	ts, _ := newServer(t, true, nil)

	resp, err := http.Post(ts.URL+"/api/v1/hotel/search", "application/json",
		strings.NewReader(`{"query":"tokyo","page":1,"pageSize":5,"latitude":35.69,"longitude":139.70}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res domain.SearchResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.NotEmpty(t, res.Records)
	assert.Equal(t, "sw", res.Records[0].ID, "the only hotel with coordinates sorts first")
}

func TestSearchGeo(t *testing.T) {
	ts, _ := newServer(t, true, nil)

	var res domain.SearchResult
	resp := getJSON(t, ts.URL+"/api/v1/hotel/search/geo?q=tokyo&lat=35.69&lng=139.70&pageSize=3", &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 25, res.TotalCount)
	assert.Equal(t, "sw", res.Records[0].ID)

	resp = getJSON(t, ts.URL+"/api/v1/hotel/search/geo?q=tokyo&lat=95&lng=139.70", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = getJSON(t, ts.URL+"/api/v1/hotel/search/geo?q=tokyo", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatsAndHotel(t *testing.T) {
	ts, _ := newServer(t, true, nil)

	var st domain.CatalogStats
	resp := getJSON(t, ts.URL+"/api/v1/hotel/stats?top=1", &st)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 25, st.TotalHotels)
	assert.Equal(t, uint64(1), st.Generation)
	require.Len(t, st.TopCities, 1)
	assert.Equal(t, "Tokyo", st.TopCities[0].Name)

	var h domain.HotelRecord
	resp = getJSON(t, ts.URL+"/api/v1/hotel/sw", &h)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Shinjuku Washington Hotel", h.NameAlt)

	resp = getJSON(t, ts.URL+"/api/v1/hotel/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNoCatalogIs503(t *testing.T) {
	ts, _ := newServer(t, false, nil)

	resp := getJSON(t, ts.URL+"/api/v1/hotel/suggest?q=tokyo", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp = getJSON(t, ts.URL+"/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp = getJSON(t, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReload(t *testing.T) {
	ts, cat := newServer(t, true, nil)

	resp, err := http.Post(ts.URL+"/api/v1/hotel/reload", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]uint64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, uint64(2), body["generation"])
	_, gen, _ := cat.Current()
	assert.Equal(t, uint64(2), gen)

	failing, _ := newServer(t, true, flakyReloader{err: errors.New("bad file")})
	resp2, err := http.Post(failing.URL+"/api/v1/hotel/reload", "application/json", nil)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp2.StatusCode)
}
