package delivery

import (
	"context"
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

func newTestFetcher(t *testing.T, baseURL string) Fetcher {
	t.Helper()
	fetcher, err := NewFetcher(config.UpstreamConfig{BaseURL: baseURL, Timeout: time.Second}, testLogger())
	if err != nil {
		t.Fatalf("building fetcher: %v", err)
	}
	return fetcher
}

func TestFeeTableKeysByVendor(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/delivery" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"vendorId":"v1","minimumDeliveryFee":200,"maximumDeliveryFee":500},
			{"vendorId":"v2","minimumDeliveryFee":100,"maximumDeliveryFee":300},
			{"vendorId":"","minimumDeliveryFee":1,"maximumDeliveryFee":2}
		]`))
	}))
	defer srv.Close()

	table, ok := newTestFetcher(t, srv.URL).FeeTable(context.Background())
	if !ok {
		t.Fatal("expected loaded table")
	}
	if len(table) != 2 {
		t.Fatalf("expected 2 vendors, got %d", len(table))
	}
	if table["v1"].Max != 500 {
		t.Fatalf("unexpected bounds %+v", table["v1"])
	}
}

func TestFeeTableFailureIsTagged(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	table, ok := newTestFetcher(t, srv.URL).FeeTable(context.Background())
	if ok {
		t.Fatal("failed fetch must report missing data, not an empty table")
	}
	if table != nil {
		t.Fatal("expected nil table on failure")
	}
}

func TestFeeTableEmptyButLoaded(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	table, ok := newTestFetcher(t, srv.URL).FeeTable(context.Background())
	if !ok {
		t.Fatal("empty response still counts as loaded")
	}
	if len(table) != 0 {
		t.Fatalf("expected empty table, got %d entries", len(table))
	}
}
