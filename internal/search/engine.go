package search

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"hotel_search/internal/domain"
)

// Engine bundles an immutable catalog with its inverted index and id lookup
// table. All methods are safe for concurrent use.
type Engine struct {
	records    []domain.HotelRecord
	entries    []entry
	byID       map[string]int
	index      *Index
	normalizer *Normalizer
	scorer     Scorer
}

type Option func(*Engine)

func WithNormalizer(n *Normalizer) Option {
	return func(e *Engine) { e.normalizer = n }
}

func WithScorer(s Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// NewEngine copies catalog, validates every record and builds the index.
// Invalid records and duplicate ids are reported here rather than at query time.
func NewEngine(catalog []domain.HotelRecord, opts ...Option) (*Engine, error) {
	e := &Engine{
		records: make([]domain.HotelRecord, len(catalog)),
		byID:    make(map[string]int, len(catalog)),
		scorer:  DefaultScorer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.normalizer == nil {
		e.normalizer = NewNormalizer()
	}

	copy(e.records, catalog)
	e.entries = make([]entry, len(e.records))
	for i := range e.records {
		h := &e.records[i]
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if prev, dup := e.byID[h.ID]; dup {
			return nil, fmt.Errorf("%w: %q at records %d and %d", domain.ErrDuplicateID, h.ID, prev, i)
		}
		e.byID[h.ID] = i
		e.entries[i] = newEntry(h)
	}
	e.index = BuildIndex(e.records, e.normalizer)
	return e, nil
}

func (e *Engine) Len() int        { return len(e.records) }
func (e *Engine) TokenCount() int { return e.index.Len() }

// Record returns a copy of the record with the given id.
func (e *Engine) Record(id string) (domain.HotelRecord, bool) {
	pos, ok := e.byID[id]
	if !ok {
		return domain.HotelRecord{}, false
	}
	return e.records[pos], true
}

// Suggest returns at most count type-ahead results for query, best first.
// Queries of one character or less, and non-positive counts, yield no results.
func (e *Engine) Suggest(query string, count int) []domain.SuggestResult {
	out := []domain.SuggestResult{}
	q := strings.TrimSpace(query)
	if count <= 0 || utf8.RuneCountInString(q) <= 1 {
		return out
	}

	folded := foldQuery(q)
	board := newScoreBoard()
	for _, v := range e.normalizer.Normalize(q, false).Sorted() {
		for _, tok := range e.index.PrefixMatches(v) {
			for _, pos := range e.index.Bucket(tok) {
				if board.has(pos) {
					continue
				}
				board.keepMax(pos, e.scorer.suggestScore(&e.entries[pos], folded))
			}
		}
	}

	ranked := board.order
	sort.SliceStable(ranked, func(i, j int) bool {
		return board.get(ranked[i]) > board.get(ranked[j])
	})

	seen := make(map[string]struct{}, count)
	for _, pos := range ranked {
		if len(out) == count {
			break
		}
		h := &e.records[pos]
		if _, dup := seen[h.ID]; dup {
			continue
		}
		seen[h.ID] = struct{}{}
		out = append(out, suggestResult(h))
	}
	return out
}

func suggestResult(h *domain.HotelRecord) domain.SuggestResult {
	display := h.PrimaryName()
	switch {
	case h.Country != "":
		display += " (" + h.Country + ")"
	case h.CityName() != "":
		display += " (" + h.CityName() + ")"
	}
	return domain.SuggestResult{
		DisplayName: display,
		PrimaryName: h.PrimaryName(),
		CityName:    h.CityName(),
		RegionName:  h.Region,
		Country:     h.Country,
		ID:          h.ID,
	}
}

type hit struct {
	pos   int
	score float64
}

// matches scores every record against query and returns those with a
// positive score, best first, ties in catalog order.
func (e *Engine) matches(query string) []hit {
	q := foldQuery(query)
	if q == "" {
		return nil
	}
	var hits []hit
	for pos := range e.entries {
		if s := e.scorer.searchScore(&e.entries[pos], q); s > 0 {
			hits = append(hits, hit{pos: pos, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	return hits
}

// Search ranks the whole catalog against query and returns one page of it.
// page is 1-based; a page past the end is empty but still reports totals.
func (e *Engine) Search(query string, page, pageSize int) domain.SearchResult {
	return e.paginate(e.matches(query), page, pageSize)
}

// SearchNear matches like Search but orders the hits by distance from
// (lat, lon). Hits without coordinates follow, in score order.
func (e *Engine) SearchNear(query string, lat, lon float64, page, pageSize int) domain.SearchResult {
	hits := e.matches(query)
	dist := make(map[int]float64, len(hits))
	for _, h := range hits {
		if r := &e.records[h.pos]; r.HasCoords() {
			dist[h.pos] = haversineKm(lat, lon, *r.Lat, *r.Lon)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		di, iok := dist[hits[i].pos]
		dj, jok := dist[hits[j].pos]
		switch {
		case iok && jok:
			return di < dj
		case iok != jok:
			return iok
		default:
			return false
		}
	})
	return e.paginate(hits, page, pageSize)
}

func (e *Engine) paginate(hits []hit, page, pageSize int) domain.SearchResult {
	res := domain.SearchResult{
		Records:    []domain.HotelRecord{},
		TotalCount: len(hits),
		Page:       page,
		PageSize:   pageSize,
	}
	if pageSize <= 0 {
		return res
	}
	res.TotalPages = len(hits) / pageSize
	if len(hits)%pageSize != 0 {
		res.TotalPages++
	}
	// checked before multiplying so huge pages cannot overflow start
	if page <= 0 || page > res.TotalPages {
		return res
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(hits))
	for _, h := range hits[start:end] {
		res.Records = append(res.Records, e.records[h.pos])
	}
	return res
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// Stats summarizes the catalog, listing the top cities and regions by hotel
// count (ties by name).
func (e *Engine) Stats(top int) domain.CatalogStats {
	cities := map[string]int{}
	regions := map[string]int{}
	for i := range e.records {
		if c := e.records[i].CityName(); c != "" {
			cities[c]++
		}
		if r := e.records[i].Region; r != "" {
			regions[r]++
		}
	}
	return domain.CatalogStats{
		TotalHotels: len(e.records),
		TotalCities: len(cities),
		TopCities:   topN(cities, top),
		TopRegions:  topN(regions, top),
	}
}

func topN(counts map[string]int, n int) []domain.NameCount {
	out := make([]domain.NameCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, domain.NameCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
