package addrcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/lumera/contacts-service/pkg/errors"
	"github.com/lumera/contacts-service/pkg/httpclient"

	"github.com/lumera/contacts-service/internal/domain"
)

// ErrUnavailable is returned when the verification provider cannot be reached
// or its circuit breaker is open. Callers must leave the address validation
// status untouched in that case.
var ErrUnavailable = errors.New("address verification unavailable")

// Config holds the settings for the postal verification provider.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// verifyRequest is the provider's request body.
type verifyRequest struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
}

// verifyResponse is the provider's response body.
type verifyResponse struct {
	Deliverable bool `json:"deliverable"`
}

// Client calls an external postal verification API behind a circuit breaker.
type Client struct {
	http   *httpclient.BreakerClient
	cfg    Config
	logger *slog.Logger
}

// New creates a verification client for cfg.
func New(cfg Config, logger *slog.Logger) *Client {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.UserAgent = "contacts-service"
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}

	breaker := httpclient.NewBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultBreakerConfig("addrcheck"),
		logger,
	)

	return &Client{
		http:   breaker,
		cfg:    cfg,
		logger: logger,
	}
}

// Verify reports whether the provider considers the address deliverable.
// Provider outages surface as ErrUnavailable rather than a verdict.
func (c *Client) Verify(ctx context.Context, address domain.PostalAddress) (bool, error) {
	body, err := json.Marshal(verifyRequest{
		Address1: address.Address1,
		Address2: address.Address2,
		City:     address.City,
		State:    address.State,
		Zip:      address.Zip,
	})
	if err != nil {
		return false, fmt.Errorf("marshal verify request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/v1/addresses/verify"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "address verification skipped, circuit open")
			return false, ErrUnavailable
		}
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		if httpclient.IsClientError(resp.StatusCode) {
			// The provider rejected the request itself, not the address.
			err := httpclient.ParseResponseError(resp, "addrcheck")
			return false, apperrors.Wrap(err, "verify address")
		}
		return false, ErrUnavailable
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode verify response: %w", err)
	}

	return result.Deliverable, nil
}
