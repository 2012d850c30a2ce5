package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_search/internal/domain"
	"hotel_search/internal/search"
)

// Observer receives timing and size samples. observability.Recorder is the
// production implementation; nil disables reporting.
type Observer interface {
	ObserveQuery(op string, results int, dur time.Duration)
	ObserveIndexBuild(err error, hotels, tokens int, dur time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveQuery(string, int, time.Duration) {}
func (nopObserver) ObserveIndexBuild(error, int, int, time.Duration) {}

/********** catalog (engine lifecycle) **********/

type snapshot struct {
	engine     *search.Engine
	generation uint64
	builtAt    time.Time
}

// CatalogService owns the serving engine. Reload builds a fresh engine off to
// the side and swaps it in atomically, so readers never take a lock.
type CatalogService struct {
	src  domain.CatalogSource
	opts []search.Option
	obs  Observer

	reloadMu sync.Mutex
	cur      atomic.Pointer[snapshot]
	gen      atomic.Uint64
}

func NewCatalogService(src domain.CatalogSource, obs Observer, opts ...search.Option) *CatalogService {
	if obs == nil {
		obs = nopObserver{}
	}
	return &CatalogService{src: src, opts: opts, obs: obs}
}

// Reload loads the catalog and replaces the serving engine. On failure the
// previous engine, if any, keeps serving.
func (s *CatalogService) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	hs, err := s.src.LoadCatalog(ctx)
	if err != nil {
		s.obs.ObserveIndexBuild(err, 0, 0, time.Since(start))
		log.Error().Err(err).Msg("catalog load failed")
		return fmt.Errorf("load catalog: %w", err)
	}
	eng, err := search.NewEngine(hs, s.opts...)
	if err != nil {
		s.obs.ObserveIndexBuild(err, 0, 0, time.Since(start))
		log.Error().Err(err).Int("hotels", len(hs)).Msg("index build failed")
		return fmt.Errorf("build index: %w", err)
	}

	snap := &snapshot{engine: eng, generation: s.gen.Add(1), builtAt: time.Now()}
	s.cur.Store(snap)

	dur := time.Since(start)
	s.obs.ObserveIndexBuild(nil, eng.Len(), eng.TokenCount(), dur)
	log.Info().
		Int("hotels", eng.Len()).
		Int("tokens", eng.TokenCount()).
		Dur("duration", dur).
		Uint64("generation", snap.generation).
		Msg("index built")
	return nil
}

// Current returns the serving engine and its generation.
func (s *CatalogService) Current() (*search.Engine, uint64, error) {
	snap := s.cur.Load()
	if snap == nil {
		return nil, 0, domain.ErrNoCatalog
	}
	return snap.engine, snap.generation, nil
}

// BuiltAt is the time the serving engine was swapped in, zero before the first build.
func (s *CatalogService) BuiltAt() time.Time {
	if snap := s.cur.Load(); snap != nil {
		return snap.builtAt
	}
	return time.Time{}
}

/********** import (catalog → storage) **********/

// ImportReport summarizes one import run.
type ImportReport struct {
	Imported int
	Rejected []error
	Missed   int
	Failed   []error
}

type ImportService struct {
	api       domain.CatalogAPI
	repo      domain.CatalogRepository
	workers   int
	batchSize int
}

func NewImportService(api domain.CatalogAPI, repo domain.CatalogRepository, workers int) *ImportService {
	if workers <= 0 {
		workers = 1
	}
	return &ImportService{api: api, repo: repo, workers: workers, batchSize: 500}
}

// ImportRows maps and validates raw rows, then upserts the valid ones.
func (s *ImportService) ImportRows(ctx context.Context, rows []map[string]any) (ImportReport, error) {
	hs, rejects := MapHotelRows(rows)
	rep := ImportReport{Rejected: rejects}
	for _, r := range rejects {
		log.Warn().Err(r).Msg("row rejected")
	}
	if err := s.upsert(ctx, hs); err != nil {
		return rep, err
	}
	rep.Imported = len(hs)
	return rep, nil
}

// ImportRemote fetches each id from the upstream API with bounded
// concurrency. 404/401/403 answers are logged as misses and skipped; other
// failures are collected in the report.
func (s *ImportService) ImportRemote(ctx context.Context, ids []string) (ImportReport, error) {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		rows = make([]map[string]any, len(ids))
		rep  ImportReport
	)
	sem := semaphore.NewWeighted(int64(s.workers))

	for i, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return rep, err
		}
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			defer sem.Release(1)

			p, err := s.api.GetHotel(ctx, id)
			if err == nil && p == nil {
				err = errEmptyPayload
			}
			if err == nil {
				if _, ok := p["id"]; !ok {
					p["id"] = id
				}
				rows[i] = p
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if status := missStatus(err); status != 0 {
				rep.Missed++
				_ = s.repo.LogMiss(ctx, id, status, err.Error())
				log.Info().Str("id", id).Int("status", status).Msg("hotel missing upstream")
				return
			}
			rep.Failed = append(rep.Failed, fmt.Errorf("hotel %s: %w", id, err))
			log.Warn().Str("id", id).Err(err).Msg("fetch failed")
		}(i, id)
	}
	wg.Wait()

	fetched := rows[:0]
	for _, r := range rows {
		if r != nil {
			fetched = append(fetched, r)
		}
	}
	res, err := s.ImportRows(ctx, fetched)
	rep.Imported, rep.Rejected = res.Imported, res.Rejected
	return rep, err
}

var errEmptyPayload = errors.New("empty hotel payload")

// missStatus reports the HTTP status of a terminal upstream miss, 0 otherwise.
func missStatus(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	if errors.Is(err, domain.ErrNotFound) {
		return 404
	}
	return 0
}

func (s *ImportService) upsert(ctx context.Context, hs []domain.HotelRecord) error {
	for start := 0; start < len(hs); start += s.batchSize {
		end := min(start+s.batchSize, len(hs))
		if err := s.repo.UpsertHotels(ctx, hs[start:end]); err != nil {
			return fmt.Errorf("upsert hotels %d..%d: %w", start, end, err)
		}
	}
	return nil
}
