package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/chowpack/chowpack-engine/pkg/config"
	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"github.com/chowpack/chowpack-engine/pkg/logger"
)

const fallbackMessage = "Failed to place order. Try again."

// Submitter posts orders to the core API with the caller's bearer token.
type Submitter interface {
	Submit(ctx context.Context, order Order, token string) error
}

type httpSubmitter struct {
	client  *http.Client
	baseURL string
	logg    *logger.Logger
}

func NewSubmitter(cfg config.UpstreamConfig, logg *logger.Logger) (Submitter, error) {
	if cfg.BaseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "upstream base url is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &httpSubmitter{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		logg:    logg,
	}, nil
}

func (s *httpSubmitter) Submit(ctx context.Context, order Order, token string) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "You must be logged in to place an order.")
	}
	body, err := json.Marshal(order)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding order")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/api/users/add-order", bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building order request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallbackMessage)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		s.logg.Info(ctx, "order submitted")
		return nil
	}

	// The core API's message is surfaced verbatim when present.
	var serverError struct {
		Message string `json:"message"`
	}
	message := fallbackMessage
	if decodeErr := json.NewDecoder(resp.Body).Decode(&serverError); decodeErr == nil && serverError.Message != "" {
		message = serverError.Message
	}
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"status":  resp.StatusCode,
		"message": message,
	}), "order submission rejected")
	return pkgerrors.New(pkgerrors.CodeDependency, message)
}
