package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_search/internal/app"
	"hotel_search/internal/domain"
)

const (
	defaultSuggestCount = 10
	maxSuggestCount     = 50
	defaultPageSize     = 20
	maxPageSize         = 100
	maxPage             = 100000
	defaultStatsTop     = 10
	maxBodyBytes        = 1 << 16
)

// Reloader rebuilds the serving engine.
type Reloader interface {
	Reload(ctx context.Context) error
}

type Handlers struct {
	Q       *app.QueryService
	Catalog Reloader
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)
	s.mux.Route("/api/v1/hotel", func(r chi.Router) {
		r.Get("/suggest", h.suggestGet)
		r.Post("/suggest", h.suggestPost)
		r.Get("/search", h.searchGet)
		r.Post("/search", h.searchPost)
		r.Get("/search/geo", h.searchGeo)
		r.Get("/stats", h.stats)
		r.Post("/reload", h.reload)
		r.Get("/{id}", h.getHotel)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeQueryError maps service errors onto problem responses.
func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoCatalog):
		writeProblem(w, http.StatusServiceUnavailable, "Catalog Unavailable", "the hotel catalog has not been loaded yet")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
	default:
		log.Error().Err(err).Msg("query failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON sends v with a weak ETag, answering 304 when the client already has it.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

/********** parameter parsing and clamping **********/

// intParam reads an optional integer query parameter. ok is false when the
// value is present but not an integer.
func intParam(r *http.Request, name string, def int) (int, bool) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func floatParam(r *http.Request, names ...string) (float64, bool, error) {
	for _, name := range names {
		s := strings.TrimSpace(r.URL.Query().Get(name))
		if s == "" {
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, err
		}
		return f, true, nil
	}
	return 0, false, nil
}

func clampCount(n int) int {
	if n <= 0 || n > maxSuggestCount {
		return defaultSuggestCount
	}
	return n
}

func clampPage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

func validLatLon(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

/********** suggest **********/

type suggestRequest struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type suggestResponse struct {
	Query       string                 `json:"query"`
	Suggestions []domain.SuggestResult `json:"suggestions"`
}

func (h *Handlers) suggestGet(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Query", "query parameter q is required")
		return
	}
	count, ok := intParam(r, "count", defaultSuggestCount)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid count", "count must be an integer")
		return
	}
	h.suggest(w, r, q, count)
}

func (h *Handlers) suggestPost(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	q := strings.TrimSpace(req.Query)
	if q == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Query", "query is required")
		return
	}
	h.suggest(w, r, q, req.Count)
}

func (h *Handlers) suggest(w http.ResponseWriter, r *http.Request, q string, count int) {
	out, err := h.Q.Suggest(r.Context(), q, clampCount(count))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, r, suggestResponse{Query: q, Suggestions: out})
}

/********** search **********/

type searchRequest struct {
	Query     string   `json:"query"`
	Page      int      `json:"page"`
	PageSize  int      `json:"pageSize"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *Handlers) searchGet(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Query", "query parameter q is required")
		return
	}
	page, ok1 := intParam(r, "page", 1)
	pageSize, ok2 := intParam(r, "pageSize", defaultPageSize)
	if !ok1 || !ok2 {
		writeProblem(w, http.StatusBadRequest, "Invalid paging", "page and pageSize must be integers")
		return
	}
	page, pageSize = clampPage(page, pageSize)
	res, err := h.Q.Search(r.Context(), q, page, pageSize)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, r, res)
}

func (h *Handlers) searchPost(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	q := strings.TrimSpace(req.Query)
	if q == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Query", "query is required")
		return
	}
	page, pageSize := clampPage(req.Page, req.PageSize)

	var (
		res domain.SearchResult
		err error
	)
	if req.Latitude != nil && req.Longitude != nil {
		if !validLatLon(*req.Latitude, *req.Longitude) {
			writeProblem(w, http.StatusBadRequest, "Invalid coordinates", "latitude must be within ±90 and longitude within ±180")
			return
		}
		res, err = h.Q.SearchNear(r.Context(), q, *req.Latitude, *req.Longitude, page, pageSize)
	} else {
		res, err = h.Q.Search(r.Context(), q, page, pageSize)
	}
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, r, res)
}

func (h *Handlers) searchGeo(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Query", "query parameter q is required")
		return
	}
	lat, hasLat, err1 := floatParam(r, "lat", "latitude")
	lon, hasLon, err2 := floatParam(r, "lng", "lon", "longitude")
	if err1 != nil || err2 != nil || !hasLat || !hasLon || !validLatLon(lat, lon) {
		writeProblem(w, http.StatusBadRequest, "Invalid coordinates", "lat and lng are required decimal degrees")
		return
	}
	page, ok1 := intParam(r, "page", 1)
	pageSize, ok2 := intParam(r, "pageSize", defaultPageSize)
	if !ok1 || !ok2 {
		writeProblem(w, http.StatusBadRequest, "Invalid paging", "page and pageSize must be integers")
		return
	}
	page, pageSize = clampPage(page, pageSize)
	res, err := h.Q.SearchNear(r.Context(), q, lat, lon, page, pageSize)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, r, res)
}

/********** catalog **********/

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	top, ok := intParam(r, "top", defaultStatsTop)
	if !ok || top < 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid top", "top must be a non-negative integer")
		return
	}
	st, err := h.Q.Stats(r.Context(), top)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, r, st)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Q.Hotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, r, hotel)
}

func (h *Handlers) reload(w http.ResponseWriter, r *http.Request) {
	if h.Catalog == nil {
		writeProblem(w, http.StatusNotImplemented, "Reload Unavailable", "")
		return
	}
	if err := h.Catalog.Reload(r.Context()); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "Reload Failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"generation": h.Q.Generation()})
}

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	if h.Q.Generation() == 0 {
		writeProblem(w, http.StatusServiceUnavailable, "Not Ready", "catalog not loaded")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
