package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/keygate/internal/checkout/domain"
)

type sessionPayload struct {
	ProductID  string            `json:"product_id"`
	Quantity   int               `json:"quantity,omitempty"`
	Email      string            `json:"customer_email,omitempty"`
	SuccessURL string            `json:"success_url,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type providerClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newProviderClient(apiKey, baseURL string) *providerClient {
	return &providerClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

func (c *providerClient) createSession(ctx context.Context, payload sessionPayload) (sessionResponse, error) {
	if c.apiKey == "" || c.baseURL == "" {
		return sessionResponse{}, domain.ErrProviderUnavailable
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return sessionResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkouts", bytes.NewReader(body))
	if err != nil {
		return sessionResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return sessionResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return sessionResponse{}, domain.ErrProviderUnavailable
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return sessionResponse{}, err
	}
	if session.ID == "" || session.URL == "" {
		return sessionResponse{}, domain.ErrProviderUnavailable
	}
	return session, nil
}
