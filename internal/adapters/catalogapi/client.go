// Package catalogapi talks to the upstream hotel content service the ingestor
// pulls catalog rows from.
package catalogapi

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_search/internal/adapters/observability"
)

const (
	service     = "catalogapi"
	maxAttempts = 4
)

// StatusError is a terminal upstream answer the ingestor records as a miss.
type StatusError struct {
	Code   int
	Reason string
}

func (e *StatusError) Error() string   { return "catalogapi: " + e.Reason }
func (e *StatusError) StatusCode() int { return e.Code }

var (
	ErrNotFound     = &StatusError{Code: http.StatusNotFound, Reason: "not found"}
	ErrUnauthorized = &StatusError{Code: http.StatusUnauthorized, Reason: "unauthorized"}
	ErrForbidden    = &StatusError{Code: http.StatusForbidden, Reason: "forbidden"}
)

// StatusOf returns the HTTP status behind a StatusError, or 0 for anything else.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if _, err := url.Parse(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid base url %q", base)
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// GetHotel fetches one raw hotel row. The current path is tried first, then the legacy one.
func (c *Client) GetHotel(ctx context.Context, id string) (map[string]any, error) {
	esc := url.PathEscape(id)
	var out map[string]any
	err := c.getFirst(ctx, "hotel", &out,
		c.base+"/hotels/"+esc,
		c.base+"/hotel/"+esc,
	)
	return out, err
}

// ListHotelIDs returns the ids the upstream currently publishes.
func (c *Client) ListHotelIDs(ctx context.Context) ([]string, error) {
	var raw []any
	if err := c.get(ctx, "hotel_ids", c.base+"/hotels/ids", &raw); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		switch x := v.(type) {
		case string:
			ids = append(ids, x)
		case float64:
			ids = append(ids, strconv.FormatFloat(x, 'f', -1, 64))
		}
	}
	return ids, nil
}

func (c *Client) getFirst(ctx context.Context, endpoint string, out any, urls ...string) error {
	var last error
	for _, u := range urls {
		err := c.get(ctx, endpoint, u, out)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		last = err
	}
	return last
}

// get performs a rate-limited GET and decodes the JSON body into out.
// 429 and transient 5xx responses are retried, honoring Retry-After.
func (c *Client) get(ctx context.Context, endpoint, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		wait, err := c.try(ctx, endpoint, u, out, attempt)
		if wait < 0 {
			return err
		}
		lastErr = err
		if attempt == maxAttempts-1 || !sleepCtx(ctx, wait) {
			break
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return lastErr
}

// try makes one attempt. A negative wait means the result is final.
func (c *Client) try(ctx context.Context, endpoint, u string, out any, attempt int) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return -1, err
	}
	req.Header.Set("X-API-Key", c.key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hotel-search-ingestor/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		return backoff(attempt), err
	}
	defer resp.Body.Close()
	observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		return -1, json.NewDecoder(resp.Body).Decode(out)
	case http.StatusNoContent:
		return -1, nil
	case http.StatusNotFound:
		return -1, ErrNotFound
	case http.StatusUnauthorized:
		return -1, ErrUnauthorized
	case http.StatusForbidden:
		return -1, ErrForbidden
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		_, _ = io.Copy(io.Discard, resp.Body)
		wait := retryAfter(resp)
		if wait == 0 {
			wait = backoff(attempt)
		}
		return wait, fmt.Errorf("remote %d", resp.StatusCode)
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return -1, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

// sleepCtx waits for d; false means ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After in seconds or HTTP-date form. 0 if absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to 50% jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<attempt) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	return base + time.Duration(0.5*float64(b[0])/255.0*float64(base))
}
