//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"hotel_search/internal/adapters/catalogapi"
	server "hotel_search/internal/adapters/http_server"
	redisad "hotel_search/internal/adapters/redis"
	"hotel_search/internal/app"
	"hotel_search/internal/domain"
	mysqlrepo "hotel_search/internal/storage/mysql"
)

// ---------- helpers ----------
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotels",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/hotels?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

// ---------- fake upstream catalog API ----------
var upstreamHotels = map[string]map[string]any{
	"e1": {
		"hotel_name_en": "Shinjuku Washington Hotel",
		"city_name_en":  "Tokyo",
		"region_name":   "Shinjuku",
		"country":       "JP",
		"star_rating":   4,
		"search_count":  900,
		"latitude":      35.6869,
		"longitude":     139.6925,
	},
	"e2": {
		"hotel_name_en": "Tokyo Station Hotel",
		"city_name_en":  "Tokyo",
		"region_name":   "Marunouchi",
		"country":       "JP",
		"star_rating":   5,
		"search_count":  700,
		"latitude":      35.6812,
		"longitude":     139.7671,
	},
}

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/hotels/ids", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]string{"e1", "e2", "gone"})
	})
	hotel := func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		h, ok := upstreamHotels[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h)
	}
	mux.HandleFunc("/v1/hotels/", hotel)
	mux.HandleFunc("/v1/hotel/", hotel)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, dst any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

// ---------- the test ----------
func TestHTTP_EndToEnd_ImportThenQuery(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// import from the upstream API
	up := upstream(t)
	client, err := catalogapi.New(up.URL+"/v1", "k", 50)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	ids, err := client.ListHotelIDs(ctx)
	if err != nil {
		t.Fatalf("ListHotelIDs: %v", err)
	}
	rep, err := app.NewImportService(client, repo, 2).ImportRemote(ctx, ids)
	if err != nil {
		t.Fatalf("ImportRemote: %v", err)
	}
	if rep.Imported != 2 || rep.Missed != 1 || len(rep.Failed) != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	// serve it
	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	cat := app.NewCatalogService(app.RepoCatalog{Repo: repo}, nil)
	if err := cat.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	q := app.NewQueryService(cat, cache, time.Minute, nil)

	srv := server.New(5 * time.Second)
	srv.MountHandlers(&server.Handlers{Q: q, Catalog: cat})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	var sug struct {
		Suggestions []domain.SuggestResult `json:"suggestions"`
	}
	getJSON(t, ts.URL+"/api/v1/hotel/suggest?q=shinjuku", &sug)
	if len(sug.Suggestions) == 0 || sug.Suggestions[0].ID != "e1" {
		t.Fatalf("unexpected suggestions: %+v", sug.Suggestions)
	}

	var page domain.SearchResult
	getJSON(t, ts.URL+"/api/v1/hotel/search?q=tokyo&page=1&pageSize=10", &page)
	if page.TotalCount != 2 {
		t.Fatalf("search tokyo: total %d", page.TotalCount)
	}

	var hotel domain.HotelRecord
	getJSON(t, ts.URL+"/api/v1/hotel/e2", &hotel)
	if hotel.NameAlt != "Tokyo Station Hotel" || !hotel.HasCoords() {
		t.Fatalf("unexpected hotel: %+v", hotel)
	}

	// a new row becomes visible after a reload, not from the stale cache
	if err := repo.UpsertHotels(ctx, []domain.HotelRecord{{
		ID: "e3", NameAlt: "Tokyo Bay Hotel", CityAlt: "Tokyo", Country: "JP", Popularity: 100,
	}}); err != nil {
		t.Fatalf("UpsertHotels: %v", err)
	}
	res, err := http.Post(ts.URL+"/api/v1/hotel/reload", "application/json", nil)
	if err != nil {
		t.Fatalf("POST reload: %v", err)
	}
	var gen struct {
		Generation uint64 `json:"generation"`
	}
	_ = json.NewDecoder(res.Body).Decode(&gen)
	res.Body.Close()
	if res.StatusCode != http.StatusOK || gen.Generation != 2 {
		t.Fatalf("reload: status %d generation %d", res.StatusCode, gen.Generation)
	}

	page = domain.SearchResult{}
	getJSON(t, ts.URL+"/api/v1/hotel/search?q=tokyo&page=1&pageSize=10", &page)
	if page.TotalCount != 3 {
		t.Fatalf("search tokyo after reload: total %d", page.TotalCount)
	}

	var missStatus int
	if err := db.QueryRowContext(ctx, "SELECT http_status FROM ingest_misses WHERE id = ?", "gone").Scan(&missStatus); err != nil {
		t.Fatalf("miss row: %v", err)
	}
	if missStatus != http.StatusNotFound {
		t.Fatalf("miss status %d", missStatus)
	}
}
