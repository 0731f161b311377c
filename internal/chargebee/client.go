package chargebee

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the billing provider's v2 API. Authentication is HTTP Basic
// with the API key as username and an empty password; mutating requests are
// form-encoded with list fields flattened as key[index].
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds a client for the given site. baseURL overrides the
// site-derived default when non-empty (used in tests).
func NewClient(site, apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.chargebee.com", site)
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) ListWebhookEndpoints(ctx context.Context) ([]WebhookEndpoint, error) {
	var out webhookEndpointList
	if err := c.do(ctx, http.MethodGet, "/api/v2/webhook_endpoints", nil, &out); err != nil {
		return nil, err
	}
	endpoints := make([]WebhookEndpoint, 0, len(out.List))
	for _, entry := range out.List {
		endpoints = append(endpoints, entry.WebhookEndpoint)
	}
	return endpoints, nil
}

func (c *Client) CreateWebhookEndpoint(ctx context.Context, ep *WebhookEndpoint) (*WebhookEndpoint, error) {
	var out webhookEndpointResult
	if err := c.do(ctx, http.MethodPost, "/api/v2/webhook_endpoints", endpointForm(ep, true), &out); err != nil {
		return nil, err
	}
	return &out.WebhookEndpoint, nil
}

// UpdateWebhookEndpoint updates an existing registration. The provider's API
// uses POST on the resource path rather than PUT.
func (c *Client) UpdateWebhookEndpoint(ctx context.Context, id string, ep *WebhookEndpoint) (*WebhookEndpoint, error) {
	var out webhookEndpointResult
	if err := c.do(ctx, http.MethodPost, "/api/v2/webhook_endpoints/"+id, endpointForm(ep, false), &out); err != nil {
		return nil, err
	}
	return &out.WebhookEndpoint, nil
}

func endpointForm(ep *WebhookEndpoint, includeName bool) url.Values {
	form := url.Values{}
	if includeName {
		form.Set("name", ep.Name)
	}
	form.Set("url", ep.URL)
	if ep.APIVersion != "" {
		form.Set("api_version", ep.APIVersion)
	}
	form.Set("basic_auth_username", ep.BasicAuthUsername)
	form.Set("basic_auth_password", ep.BasicAuthPassword)
	for i, ev := range ep.EnabledEvents {
		form.Set(fmt.Sprintf("enabled_events[%d]", i), ev)
	}
	return form
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("chargebee: build %s %s: %w", method, path, err)
	}
	req.SetBasicAuth(c.apiKey, "")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("chargebee: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("chargebee: %s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("chargebee: decode %s %s: %w", method, path, err)
		}
	}
	return nil
}
