package promotions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/chowpack/chowpack-engine/pkg/config"
	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"github.com/chowpack/chowpack-engine/pkg/logger"
)

// Fetcher loads active campus promotions.
type Fetcher interface {
	// Active returns active promotions for the university. Fetch failures
	// degrade to an empty list: carts check out without discounts rather
	// than blocking on the campaign service.
	Active(ctx context.Context, university string) []Promotion
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

type promotionsResponse struct {
	Promotions []Promotion `json:"promotions"`
}

func (f *httpFetcher) Active(ctx context.Context, university string) []Promotion {
	promos, err := f.fetch(ctx, university)
	if err != nil {
		f.logg.Warn(f.logg.WithFields(ctx, map[string]any{"error": err.Error()}),
			"promotion fetch failed, continuing without discounts")
		return []Promotion{}
	}
	// The query already filters by status, but the upstream has shipped
	// stale rows before. Filter again.
	active := make([]Promotion, 0, len(promos))
	for _, promo := range promos {
		if promo.Status == statusActive {
			active = append(active, promo)
		}
	}
	return active
}

func (f *httpFetcher) fetch(ctx context.Context, university string) ([]Promotion, error) {
	endpoint := fmt.Sprintf("%s/api/promotions?status=active&university=%s",
		f.baseURL, url.QueryEscape(university))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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
	var body promotionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Promotions, nil
}
