package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"hotel_search/internal/domain"
	"hotel_search/internal/search"
	"hotel_search/internal/shared"
)

// RowsCatalog maps raw rows into records. Rows that fail validation are
// logged and skipped so one bad spreadsheet line does not block a reload.
type RowsCatalog struct {
	Rows domain.RowSource
}

func (c RowsCatalog) LoadCatalog(ctx context.Context) ([]domain.HotelRecord, error) {
	rows, err := c.Rows.ReadRows(ctx)
	if err != nil {
		return nil, err
	}
	hs, rejects := MapHotelRows(rows)
	for _, r := range rejects {
		log.Warn().Err(r).Msg("catalog row skipped")
	}
	if len(hs) == 0 && len(rows) > 0 {
		return nil, fmt.Errorf("%w: none of %d rows is usable", domain.ErrInvalidRecord, len(rows))
	}
	return hs, nil
}

// RepoCatalog reads the catalog from persistent storage.
type RepoCatalog struct {
	Repo domain.CatalogRepository
}

func (c RepoCatalog) LoadCatalog(ctx context.Context) ([]domain.HotelRecord, error) {
	return c.Repo.ListHotels(ctx)
}

// StaticCatalog serves a fixed in-memory catalog.
type StaticCatalog []domain.HotelRecord

func (c StaticCatalog) LoadCatalog(context.Context) ([]domain.HotelRecord, error) {
	return c, nil
}

// EngineOptions turns runtime settings into engine options. placeCodes
// extends the built-in romanization table and may be nil.
func EngineOptions(cfg shared.Config, placeCodes map[string]string) []search.Option {
	n := search.NewNormalizer(
		search.WithPlaceCodes(placeCodes),
		search.WithWordBoundaryStopWords(cfg.StopWordBoundary),
	)
	sc := search.DefaultScorer()
	sc.MinSearchSimilarity = cfg.SearchMinSimilarity
	sc.SqrtSimilarity = cfg.SimilaritySqrt
	return []search.Option{search.WithNormalizer(n), search.WithScorer(sc)}
}
