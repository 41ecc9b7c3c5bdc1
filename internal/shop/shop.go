// Package shop fetches basic storefront information from the host
// shop's GraphQL endpoint. The builder only needs the shop's identity
// for display; catalog and checkout stay with their own components.
package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Info is the storefront identity the builder displays.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Domain      string `json:"domain"`
}

// Client queries one storefront's GraphQL API.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient creates a Client for the given GraphQL endpoint and access
// token. httpClient nil uses a 10 second timeout default.
func NewClient(endpoint, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{endpoint: endpoint, token: token, http: httpClient}
}

const shopQuery = `{
  shop {
    name
    description
    primaryDomain { host }
  }
}`

// FetchInfo returns the shop's name, description, and primary domain.
func (c *Client) FetchInfo(ctx context.Context) (Info, error) {
	body, err := json.Marshal(map[string]string{"query": shopQuery})
	if err != nil {
		return Info{}, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Info{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("shop info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Info{}, fmt.Errorf("shop info request returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Shop struct {
				Name          string `json:"name"`
				Description   string `json:"description"`
				PrimaryDomain struct {
					Host string `json:"host"`
				} `json:"primaryDomain"`
			} `json:"shop"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Info{}, fmt.Errorf("failed to decode shop info: %w", err)
	}
	if len(payload.Errors) > 0 {
		return Info{}, fmt.Errorf("shop info query failed: %s", payload.Errors[0].Message)
	}

	return Info{
		Name:        payload.Data.Shop.Name,
		Description: payload.Data.Shop.Description,
		Domain:      payload.Data.Shop.PrimaryDomain.Host,
	}, nil
}
