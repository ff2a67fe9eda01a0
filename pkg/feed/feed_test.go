package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/moda-storefront/pkg/storage"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

func TestNewEmptyLocationIsUnavailable(t *testing.T) {
	if _, err := New("  ").Fetch(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(`["a"]`), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	raw, err := New(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(raw) != `["a"]` {
		t.Fatalf("unexpected body %q", raw)
	}

	if _, err := New(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("missing file should be unavailable, got %v", err)
	}
}

func TestHTTPFetcher(t *testing.T) {
	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		if req.Header.Get("Cache-Control") != "no-store" {
			t.Fatalf("expected no-store cache header")
		}
		status := http.StatusOK
		if strings.HasSuffix(req.URL.Path, "missing.json") {
			status = http.StatusNotFound
		}
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(`[1,2]`)),
			Header:     http.Header{},
		}, nil
	})
	client := &http.Client{Transport: rt}

	raw, err := New("https://shop.test/data/coupons.json", WithHTTPClient(client)).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if capturedURL != "https://shop.test/data/coupons.json" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if string(raw) != `[1,2]` {
		t.Fatalf("unexpected body %q", raw)
	}

	_, err = New("https://shop.test/data/missing.json", WithHTTPClient(client)).Fetch(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("non-200 should be unavailable, got %v", err)
	}
}

type staticFetcher struct {
	raw []byte
	err error
}

func (s staticFetcher) Fetch(context.Context) ([]byte, error) {
	return s.raw, s.err
}

func intOptions(f Fetcher) ListOptions[int] {
	return ListOptions[int]{
		Name:     "numbers",
		CacheKey: "numbers",
		Fetcher:  f,
		Parse: func(raw []byte) ([]int, error) {
			var out []int
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, err
			}
			return out, nil
		},
		Builtin: func() []int { return []int{42} },
	}
}

func TestLoadListPrefersSourceAndCachesResult(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	items, origin, err := LoadList(ctx, store, intOptions(staticFetcher{raw: []byte(`[1,2,3]`)}), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if origin != OriginSource || len(items) != 3 {
		t.Fatalf("expected source with 3 items, got %s %v", origin, items)
	}

	cached, err := store.Get(ctx, "numbers")
	if err != nil || string(cached) != `[1,2,3]` {
		t.Fatalf("expected cached list, got %q (%v)", cached, err)
	}
}

func TestLoadListFallsBackToCacheThenBuiltin(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	_ = store.Set(ctx, "numbers", []byte(`[7]`))

	items, origin, err := LoadList(ctx, store, intOptions(staticFetcher{err: ErrUnavailable}), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if origin != OriginCache || len(items) != 1 || items[0] != 7 {
		t.Fatalf("expected cached list, got %s %v", origin, items)
	}

	_ = store.Set(ctx, "numbers", []byte(`{broken`))
	items, origin, err = LoadList(ctx, store, intOptions(staticFetcher{raw: []byte(`"not a list"`)}), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if origin != OriginBuiltin || len(items) != 1 || items[0] != 42 {
		t.Fatalf("expected builtin list, got %s %v", origin, items)
	}
}
