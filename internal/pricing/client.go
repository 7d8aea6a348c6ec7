package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chowpack/chowpack-engine/pkg/config"
	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"github.com/chowpack/chowpack-engine/pkg/logger"
)

// TableFetcher resolves vendor price tables from the upstream API.
type TableFetcher interface {
	// PackPrices returns a table for every requested vendor. A failed
	// lookup degrades to a zero-priced table: the size selection is still
	// required for plated food, the surcharge just collapses to 0.
	PackPrices(ctx context.Context, vendorIDs []string) map[string]PriceTable
}

type httpFetcher struct {
	client  *http.Client
	baseURL string
	logg    *logger.Logger
}

func NewTableFetcher(cfg config.UpstreamConfig, logg *logger.Logger) (TableFetcher, error) {
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

func (f *httpFetcher) PackPrices(ctx context.Context, vendorIDs []string) map[string]PriceTable {
	tables := make(map[string]PriceTable, len(vendorIDs))
	for _, vendorID := range vendorIDs {
		if vendorID == "" {
			continue
		}
		table, err := f.fetchOne(ctx, vendorID)
		if err != nil {
			f.logg.Warn(f.logg.WithFields(ctx, map[string]any{
				"vendor_id": vendorID,
				"error":     err.Error(),
			}), "pack price fetch failed, degrading to zero prices")
			table = PriceTable{}
		}
		tables[vendorID] = table
	}
	return tables
}

func (f *httpFetcher) fetchOne(ctx context.Context, vendorID string) (PriceTable, error) {
	url := fmt.Sprintf("%s/api/pack-prices/%s", f.baseURL, vendorID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PriceTable{}, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return PriceTable{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PriceTable{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var table PriceTable
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return PriceTable{}, err
	}
	return table, nil
}
