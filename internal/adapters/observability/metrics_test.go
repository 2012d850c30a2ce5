package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotel_search/internal/adapters/observability"
	"hotel_search/internal/app"
)

var _ app.Observer = observability.Recorder{}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	return string(body)
}

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample so counters are non-zero
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveQuery("suggest", 3, time.Millisecond)

	out := scrape(t, observability.MetricsHandler(reg))
	for _, name := range []string{"hotelsearch_http_requests_total", "hotelsearch_query_duration_seconds", "hotelsearch_query_results"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestObserveIndexBuild(t *testing.T) {
	reg := observability.InitRegistry()

	observability.ObserveIndexBuild(nil, 42, 300, 20*time.Millisecond)
	observability.ObserveIndexBuild(errors.New("boom"), 0, 0, 0)

	out := scrape(t, observability.MetricsHandler(reg))
	if !strings.Contains(out, "hotelsearch_catalog_hotels 42") {
		t.Fatalf("catalog size gauge missing:\n%s", out)
	}
	if !strings.Contains(out, `hotelsearch_index_builds_total{status="error"}`) {
		t.Fatalf("failed build not counted")
	}
}

func TestLabelErr(t *testing.T) {
	if got := observability.LabelErr(nil); got != "none" {
		t.Fatalf("nil error label: %q", got)
	}
	if got := observability.LabelErr(errors.New("x")); got != "*errors.errorString" {
		t.Fatalf("label: %q", got)
	}
}

func TestRecorderForwards(t *testing.T) {
	reg := observability.InitRegistry()
	var rec observability.Recorder

	rec.ObserveIndexBuild(nil, 7, 11, time.Millisecond)
	rec.ObserveQuery("search", 5, time.Millisecond)

	out := scrape(t, observability.MetricsHandler(reg))
	if !strings.Contains(out, "hotelsearch_index_tokens 11") {
		t.Fatalf("token gauge missing:\n%s", out)
	}
	if !strings.Contains(out, `hotelsearch_query_results_count{op="search"}`) {
		t.Fatalf("search query not observed")
	}
}
