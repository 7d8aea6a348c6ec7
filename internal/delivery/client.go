package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chowpack/chowpack-engine/pkg/config"
	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"github.com/chowpack/chowpack-engine/pkg/logger"
)

// Fetcher loads the vendor delivery-fee table from the upstream API.
type Fetcher interface {
	// FeeTable returns bounds keyed by vendor ID, plus whether the data was
	// actually loaded. Checkout refuses to run on a missing table; an empty
	// but loaded one is fine.
	FeeTable(ctx context.Context) (map[string]Bounds, bool)
}

type httpFetcher struct {
	client  *http.Client
	baseURL string
	logg    *logger.Logger
}

func NewFetcher(cfg config.UpstreamConfig, logg *logger.Logger) (Fetcher, error) {
	if cfg.BaseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "upstream base url is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &httpFetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		logg:    logg,
	}, nil
}

func (f *httpFetcher) FeeTable(ctx context.Context) (map[string]Bounds, bool) {
	records, err := f.fetch(ctx)
	if err != nil {
		f.logg.Warn(f.logg.WithFields(ctx, map[string]any{"error": err.Error()}),
			"delivery fee fetch failed")
		return nil, false
	}
	table := make(map[string]Bounds, len(records))
	for _, record := range records {
		if record.VendorID == "" {
			continue
		}
		table[record.VendorID] = record
	}
	return table, true
}

func (f *httpFetcher) fetch(ctx context.Context) ([]Bounds, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/delivery", nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var records []Bounds
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}
