package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_search/internal/adapters/catalogfile"
	server "hotel_search/internal/adapters/http_server"
	"hotel_search/internal/adapters/observability"
	redisad "hotel_search/internal/adapters/redis"
	"hotel_search/internal/adapters/watcher"
	"hotel_search/internal/app"
	"hotel_search/internal/domain"
	"hotel_search/internal/shared"
	mysqlrepo "hotel_search/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// catalog
	var src domain.CatalogSource
	switch cfg.CatalogSource {
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		src = app.RepoCatalog{Repo: mysqlrepo.New(db)}
	default:
		src = app.RowsCatalog{Rows: catalogfile.New(cfg.CatalogPath)}
	}

	var codes map[string]string
	if cfg.PlaceCodesPath != "" {
		var err error
		if codes, err = catalogfile.LoadPlaceCodes(cfg.PlaceCodesPath); err != nil {
			log.Fatal().Err(err).Str("path", cfg.PlaceCodesPath).Msg("place codes")
		}
	}

	rec := observability.Recorder{}
	cat := app.NewCatalogService(src, rec, app.EngineOptions(cfg, codes)...)
	if err := cat.Reload(ctx); err != nil {
		// /readyz reports 503 until a later reload succeeds
		log.Error().Err(err).Msg("initial catalog load failed")
	}

	if cfg.CatalogWatch && cfg.CatalogSource == "file" {
		w := watcher.New(cfg.CatalogPath, cat.Reload)
		if err := w.Start(ctx); err != nil {
			log.Error().Err(err).Str("path", cfg.CatalogPath).Msg("catalog watch disabled")
		} else {
			defer w.Stop()
			log.Info().Str("path", cfg.CatalogPath).Msg("watching catalog")
		}
	}

	// cache is optional
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; continuing, cache errors are ignored")
		}
		cache = rc
	}
	q := app.NewQueryService(cat, cache, cfg.CacheTTL, rec)

	// http
	srv := server.New(cfg.HTTPTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, Catalog: cat})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}
