package pricing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chowpack/chowpack-engine/pkg/config"
	"github.com/chowpack/chowpack-engine/pkg/logger"
	"github.com/rs/zerolog"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func TestPackPricesDegradesFailedVendorsToZero(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/pack-prices/v1":
			json.NewEncoder(w).Encode(PriceTable{Small: 300, Big: 500})
		case "/api/pack-prices/v2":
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	fetcher, err := NewTableFetcher(config.UpstreamConfig{BaseURL: srv.URL, Timeout: time.Second}, testLogger())
	if err != nil {
		t.Fatalf("building fetcher: %v", err)
	}

	tables := fetcher.PackPrices(context.Background(), []string{"v1", "v2", ""})
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if got := tables["v1"]; got.Small != 300 || got.Big != 500 {
		t.Fatalf("unexpected table %+v", got)
	}
	// An errored vendor still gets an entry so plated packs keep their
	// size-selection gate; only the surcharge collapses to zero.
	got, ok := tables["v2"]
	if !ok {
		t.Fatal("errored vendor must still have a table entry")
	}
	if got.Small != 0 || got.Big != 0 {
		t.Fatalf("expected zero-priced table, got %+v", got)
	}
}

func TestNewTableFetcherRequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewTableFetcher(config.UpstreamConfig{}, testLogger()); err == nil {
		t.Fatal("expected error for missing base url")
	}
}
