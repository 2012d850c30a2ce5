package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"hotel_search/internal/domain"
)

// QueryService answers suggest and search requests from the serving engine,
// cache-aside. Cache keys carry the engine generation, so a reload never
// serves results computed against the previous catalog.
type QueryService struct {
	catalog  *CatalogService
	cache    domain.Cache
	cacheTTL time.Duration
	obs      Observer
}

func NewQueryService(c *CatalogService, cache domain.Cache, ttl time.Duration, obs Observer) *QueryService {
	if obs == nil {
		obs = nopObserver{}
	}
	return &QueryService{catalog: c, cache: cache, cacheTTL: ttl, obs: obs}
}

func queryKey(q string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(q)))
	return hex.EncodeToString(sum[:8])
}

func (s *QueryService) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil || s.cacheTTL <= 0 {
		return false
	}
	ok, _ := s.cache.Get(ctx, key, dst)
	return ok
}

func (s *QueryService) store(ctx context.Context, key string, v any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
}

func (s *QueryService) Suggest(ctx context.Context, q string, count int) ([]domain.SuggestResult, error) {
	eng, gen, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("suggest:%d:%d:%s", gen, count, queryKey(q))
	var out []domain.SuggestResult
	if s.cached(ctx, key, &out) {
		return out, nil
	}

	start := time.Now()
	out = eng.Suggest(q, count)
	s.obs.ObserveQuery("suggest", len(out), time.Since(start))

	s.store(ctx, key, out)
	return out, nil
}

func (s *QueryService) Search(ctx context.Context, q string, page, pageSize int) (domain.SearchResult, error) {
	eng, gen, err := s.catalog.Current()
	if err != nil {
		return domain.SearchResult{}, err
	}
	key := fmt.Sprintf("search:%d:%d:%d:%s", gen, page, pageSize, queryKey(q))
	var out domain.SearchResult
	if s.cached(ctx, key, &out) {
		return out, nil
	}

	start := time.Now()
	out = eng.Search(q, page, pageSize)
	s.obs.ObserveQuery("search", out.TotalCount, time.Since(start))

	s.store(ctx, key, out)
	return out, nil
}

// SearchNear is not cached: coordinates make every key unique.
func (s *QueryService) SearchNear(ctx context.Context, q string, lat, lon float64, page, pageSize int) (domain.SearchResult, error) {
	eng, _, err := s.catalog.Current()
	if err != nil {
		return domain.SearchResult{}, err
	}
	start := time.Now()
	out := eng.SearchNear(q, lat, lon, page, pageSize)
	s.obs.ObserveQuery("search_geo", out.TotalCount, time.Since(start))
	return out, nil
}

func (s *QueryService) Stats(ctx context.Context, top int) (domain.CatalogStats, error) {
	eng, gen, err := s.catalog.Current()
	if err != nil {
		return domain.CatalogStats{}, err
	}
	st := eng.Stats(top)
	st.Generation = gen
	return st, nil
}

func (s *QueryService) Hotel(ctx context.Context, id string) (domain.HotelRecord, error) {
	eng, _, err := s.catalog.Current()
	if err != nil {
		return domain.HotelRecord{}, err
	}
	h, ok := eng.Record(id)
	if !ok {
		return domain.HotelRecord{}, domain.ErrNotFound
	}
	return h, nil
}

// Generation is the serving engine generation, 0 before the first build.
func (s *QueryService) Generation() uint64 {
	_, gen, _ := s.catalog.Current()
	return gen
}
