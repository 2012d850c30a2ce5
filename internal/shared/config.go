package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	HTTPTimeout time.Duration

	MySQLDSN  string
	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	CatalogSource  string // file | mysql
	CatalogPath    string
	CatalogWatch   bool
	PlaceCodesPath string

	StopWordBoundary    bool
	SearchMinSimilarity float64
	SimilaritySqrt      bool

	CatalogAPIBase string
	CatalogAPIKey  string
	CatalogAPIRPS  int
	Workers        int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		HTTPTimeout: time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,

		MySQLDSN:  env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotels?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,

		CatalogSource:  strings.ToLower(env("CATALOG_SOURCE", "file")),
		CatalogPath:    env("CATALOG_PATH", "data/hotels.json"),
		CatalogWatch:   boolean("CATALOG_WATCH", false),
		PlaceCodesPath: env("PLACE_CODES_PATH", ""),

		StopWordBoundary:    boolean("STOPWORD_BOUNDARY", false),
		SearchMinSimilarity: atof("SEARCH_MIN_SIMILARITY", 0.5),
		SimilaritySqrt:      boolean("SIMILARITY_SQRT", false),

		CatalogAPIBase: env("CATALOG_API_BASE", "http://localhost:9000/v1"),
		CatalogAPIKey:  env("CATALOG_API_KEY", ""),
		CatalogAPIRPS:  atoi("CATALOG_API_RPS", 5),
		Workers:        atoi("INGEST_WORKERS", 8),
	}
	if c.CatalogSource != "file" && c.CatalogSource != "mysql" {
		log.Warn().Str("CATALOG_SOURCE", c.CatalogSource).Msg("unknown catalog source, using file")
		c.CatalogSource = "file"
	}
	if c.SearchMinSimilarity < 0 || c.SearchMinSimilarity > 1 {
		log.Warn().Float64("SEARCH_MIN_SIMILARITY", c.SearchMinSimilarity).Msg("out of range, using 0.5")
		c.SearchMinSimilarity = 0.5
	}
	if c.CatalogAPIKey == "" {
		log.Warn().Msg("CATALOG_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func boolean(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
