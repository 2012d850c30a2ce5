package search

import (
	"math"
	"strings"
	"unicode/utf8"

	"hotel_search/internal/domain"
)

const (
	containBoost         = 10.0
	popularityExponent   = 0.2
	popularityWeight     = 0.2
	suggestSimWeight     = 0.6
	lengthFactorNumer    = 2.0
	searchContainPoints  = 1.0
	searchSimWeight      = 0.5
	DefaultMinSimilarity = 0.5
)

// Scorer holds the per-call-site policy applied on top of the raw similarity
// metric. The zero value scores search with no similarity floor.
type Scorer struct {
	// MinSearchSimilarity drops per-field similarity contributions below it
	// from the search score.
	MinSearchSimilarity float64
	// SqrtSimilarity compresses similarity with a square root in both scores.
	SqrtSimilarity bool
}

func DefaultScorer() Scorer {
	return Scorer{MinSearchSimilarity: DefaultMinSimilarity}
}

// entry caches the lowercased fields of a record so ranking does not
// re-fold strings on every query.
type entry struct {
	primary    string
	city       string
	suggest    [5]string // names, cities, region
	search     [6]string // names, cities, region, address
	popScore   float64
	lengthBias float64
}

func newEntry(h *domain.HotelRecord) entry {
	lower := strings.ToLower
	e := entry{
		primary: lower(h.PrimaryName()),
		city:    lower(h.CityName()),
		suggest: [5]string{lower(h.NameLocal), lower(h.NameAlt), lower(h.CityLocal), lower(h.CityAlt), lower(h.Region)},
		search: [6]string{
			lower(h.NameLocal), lower(h.NameAlt), lower(h.CityLocal), lower(h.CityAlt),
			lower(h.Region), lower(h.Address),
		},
		popScore: math.Pow(float64(h.Popularity)+1, popularityExponent),
	}
	if n := utf8.RuneCountInString(h.PrimaryName()); n > 0 {
		e.lengthBias = lengthFactorNumer / float64(n)
	}
	return e
}

// SuggestScore ranks rec for a type-ahead query.
func (s Scorer) SuggestScore(rec domain.HotelRecord, query string) float64 {
	e := newEntry(&rec)
	return s.suggestScore(&e, foldQuery(query))
}

// SearchScore ranks rec for a full-text query; 0 means no match.
func (s Scorer) SearchScore(rec domain.HotelRecord, query string) float64 {
	e := newEntry(&rec)
	return s.searchScore(&e, foldQuery(query))
}

func foldQuery(q string) string { return strings.ToLower(strings.TrimSpace(q)) }

// suggestScore expects q already folded by foldQuery.
func (s Scorer) suggestScore(e *entry, q string) float64 {
	best := 0.0
	for _, f := range e.suggest {
		if f == "" {
			continue
		}
		if sim := Similarity(f, q); sim > best {
			best = sim
		}
	}
	if s.SqrtSimilarity {
		best = math.Sqrt(best)
	}
	boost := 1.0
	if q != "" && (strings.Contains(e.primary, q) || strings.Contains(e.city, q)) {
		boost = containBoost
	}
	return (e.popScore*popularityWeight + best*suggestSimWeight + e.lengthBias) * boost
}

func (s Scorer) searchScore(e *entry, q string) float64 {
	if q == "" {
		return 0
	}
	score := 0.0
	for _, f := range e.search {
		if f == "" {
			continue
		}
		if strings.Contains(f, q) {
			score += searchContainPoints
		}
		sim := Similarity(f, q)
		if sim < s.MinSearchSimilarity {
			continue
		}
		if s.SqrtSimilarity {
			sim = math.Sqrt(sim)
		}
		score += searchSimWeight * sim
	}
	return score
}

// scoreBoard accumulates one score per catalog position, remembering the
// order in which positions were first seen.
type scoreBoard struct {
	scores map[int]float64
	order  []int
}

func newScoreBoard() *scoreBoard {
	return &scoreBoard{scores: make(map[int]float64)}
}

func (b *scoreBoard) has(pos int) bool {
	_, ok := b.scores[pos]
	return ok
}

// get returns the score for pos, or 0 when pos was never scored.
func (b *scoreBoard) get(pos int) float64 { return b.scores[pos] }

func (b *scoreBoard) keepMax(pos int, score float64) {
	cur, ok := b.scores[pos]
	if !ok {
		b.order = append(b.order, pos)
		b.scores[pos] = score
		return
	}
	if score > cur {
		b.scores[pos] = score
	}
}
