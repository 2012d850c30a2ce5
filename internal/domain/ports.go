package domain

import "context"

// CatalogRepository persists the catalog between process restarts.
type CatalogRepository interface {
	// Write paths
	UpsertHotels(ctx context.Context, hs []HotelRecord) error
	LogMiss(ctx context.Context, id string, status int, reason string) error

	// Read paths
	ListHotels(ctx context.Context) ([]HotelRecord, error)
}

// CatalogAPI is the upstream hotel content service used by the ingestor.
type CatalogAPI interface {
	GetHotel(ctx context.Context, id string) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models

type SuggestResult struct {
	DisplayName string `json:"displayName"`
	PrimaryName string `json:"hotelName"`
	CityName    string `json:"cityName"`
	RegionName  string `json:"regionName"`
	Country     string `json:"country"`
	ID          string `json:"hotelId"`
}

type SearchResult struct {
	Records    []HotelRecord `json:"hotels"`
	TotalCount int           `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type CatalogStats struct {
	TotalHotels int         `json:"totalHotels"`
	TotalCities int         `json:"totalCities"`
	TopCities   []NameCount `json:"topCities"`
	TopRegions  []NameCount `json:"topRegions"`
	Generation  uint64      `json:"generation"`
}

// CatalogSource yields the full catalog an engine is built from.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) ([]HotelRecord, error)
}

// RowSource yields raw, unmapped catalog rows (file or API payloads).
type RowSource interface {
	ReadRows(ctx context.Context) ([]map[string]any, error)
}
