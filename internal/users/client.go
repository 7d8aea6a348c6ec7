// Package users talks to the core API's user endpoints.
package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chowpack/chowpack-engine/pkg/config"
	pkgerrors "github.com/chowpack/chowpack-engine/pkg/errors"
	"github.com/chowpack/chowpack-engine/pkg/logger"
)

// User is the slice of the account record checkout needs: identity, campus
// scope, and the wallet balance orders are charged against.
type User struct {
	ID           string `json:"_id"`
	Name         string `json:"name,omitempty"`
	University   string `json:"university"`
	AvailableBal int    `json:"availableBal"`
}

// Client fetches the current user. Refresh is the post-order re-read that
// picks up the debited balance.
type Client interface {
	Fetch(ctx context.Context, userID, token string) (*User, error)
	Refresh(ctx context.Context, userID, token string) (*User, error)
}

type httpClient struct {
	client  *http.Client
	baseURL string
	logg    *logger.Logger
}

func NewClient(cfg config.UpstreamConfig, logg *logger.Logger) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "upstream base url is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &httpClient{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		logg:    logg,
	}, nil
}

type userResponse struct {
	User *User `json:"user"`
}

func (c *httpClient) Fetch(ctx context.Context, userID, token string) (*User, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	endpoint := fmt.Sprintf("%s/api/users/user/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building user request")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching user")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "You must be logged in to place an order.")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("user fetch returned status %d", resp.StatusCode))
	}
	var body userResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding user response")
	}
	if body.User == nil || body.User.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "You must be logged in to place an order.")
	}
	return body.User, nil
}

func (c *httpClient) Refresh(ctx context.Context, userID, token string) (*User, error) {
	user, err := c.Fetch(ctx, userID, token)
	if err != nil {
		// A stale balance is tolerable right after a successful order.
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{"error": err.Error()}),
			"post-order user refresh failed")
		return nil, err
	}
	return user, nil
}
