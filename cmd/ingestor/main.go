package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"hotel_search/internal/adapters/catalogapi"
	"hotel_search/internal/adapters/catalogfile"
	"hotel_search/internal/adapters/observability"
	"hotel_search/internal/app"
	"hotel_search/internal/search"
	"hotel_search/internal/shared"
	mysqlrepo "hotel_search/internal/storage/mysql"
)

func main() {
	if err := newApp(shared.Load()).Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("ingestor failed")
	}
}

func newApp(cfg shared.Config) *cli.App {
	return &cli.App{
		Name:  "ingestor",
		Usage: "Load hotel catalogs into storage and try queries against them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   cfg.LogLevel,
			},
		},
		Before: func(c *cli.Context) error {
			log.Logger = observability.NewLogger(cfg.AppEnv, c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "import-file",
				Usage: "Import a JSON, YAML or XLSX catalog file into MySQL",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Catalog file",
						Value:   cfg.CatalogPath,
					},
				},
				Action: func(c *cli.Context) error { return importFile(c, cfg) },
			},
			{
				Name:  "import-remote",
				Usage: "Fetch hotels from the catalog API and import them into MySQL",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "ids",
						Usage: "Hotel ids to fetch; all ids the API lists when empty",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent fetches",
						Value: cfg.Workers,
					},
				},
				Action: func(c *cli.Context) error { return importRemote(c, cfg) },
			},
			{
				Name:  "inspect",
				Usage: "Build an engine from a catalog file and print suggest and search results",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Catalog file",
						Value:   cfg.CatalogPath,
					},
					&cli.StringFlag{
						Name:     "q",
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "Suggestions to print",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Search results to print",
						Value: 10,
					},
				},
				Action: func(c *cli.Context) error { return inspect(c, cfg) },
			},
		},
	}
}

func openRepo(ctx context.Context, dsn string) (*mysqlrepo.Repo, func(), error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db.Ping: %w", err)
	}
	log.Info().Msg("db ping ok")
	return mysqlrepo.New(db), func() { _ = db.Close() }, nil
}

func logReport(what string, rep app.ImportReport) {
	log.Info().
		Str("source", what).
		Int("imported", rep.Imported).
		Int("rejected", len(rep.Rejected)).
		Int("missed", rep.Missed).
		Int("failed", len(rep.Failed)).
		Msg("import completed")
}

func importFile(c *cli.Context, cfg shared.Config) error {
	ctx := c.Context
	path := c.String("path")

	rows, err := catalogfile.New(path).ReadRows(ctx)
	if err != nil {
		return err
	}
	repo, closeDB, err := openRepo(ctx, cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer closeDB()

	rep, err := app.NewImportService(nil, repo, 1).ImportRows(ctx, rows)
	if err != nil {
		return err
	}
	logReport(path, rep)
	return nil
}

func importRemote(c *cli.Context, cfg shared.Config) error {
	ctx := c.Context

	client, err := catalogapi.New(cfg.CatalogAPIBase, cfg.CatalogAPIKey, cfg.CatalogAPIRPS)
	if err != nil {
		return fmt.Errorf("catalog api client: %w", err)
	}
	ids := c.StringSlice("ids")
	if len(ids) == 0 {
		if ids, err = client.ListHotelIDs(ctx); err != nil {
			return fmt.Errorf("list hotel ids: %w", err)
		}
	}
	log.Info().
		Str("base", cfg.CatalogAPIBase).
		Int("workers", c.Int("workers")).
		Int("ids", len(ids)).
		Msg("ingestor starting")

	repo, closeDB, err := openRepo(ctx, cfg.MySQLDSN)
	if err != nil {
		return err
	}
	defer closeDB()

	rep, err := app.NewImportService(client, repo, c.Int("workers")).ImportRemote(ctx, ids)
	if err != nil {
		return err
	}
	logReport(cfg.CatalogAPIBase, rep)
	return nil
}

func inspect(c *cli.Context, cfg shared.Config) error {
	ctx := c.Context
	src := app.RowsCatalog{Rows: catalogfile.New(c.String("path"))}
	hs, err := src.LoadCatalog(ctx)
	if err != nil {
		return err
	}

	var codes map[string]string
	if cfg.PlaceCodesPath != "" {
		if codes, err = catalogfile.LoadPlaceCodes(cfg.PlaceCodesPath); err != nil {
			return err
		}
	}
	eng, err := search.NewEngine(hs, app.EngineOptions(cfg, codes)...)
	if err != nil {
		return err
	}

	q := c.String("q")
	out := struct {
		Hotels      int    `json:"hotels"`
		Tokens      int    `json:"tokens"`
		Query       string `json:"query"`
		Suggestions any    `json:"suggestions"`
		Search      any    `json:"search"`
	}{
		Hotels:      eng.Len(),
		Tokens:      eng.TokenCount(),
		Query:       strings.TrimSpace(q),
		Suggestions: eng.Suggest(q, c.Int("count")),
		Search:      eng.Search(q, 1, c.Int("page-size")),
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
