package hookdeck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the gateway's management API with a bearer key.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// UpsertSource creates or updates a source keyed by its name.
func (c *Client) UpsertSource(ctx context.Context, src *Source) (*Source, error) {
	var out Source
	if err := c.do(ctx, http.MethodPut, "/sources", src, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpsertConnection creates or updates a connection keyed by its name.
func (c *Client) UpsertConnection(ctx context.Context, conn *Connection) (*Connection, error) {
	var out Connection
	if err := c.do(ctx, http.MethodPut, "/connections", conn, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSources(ctx context.Context) ([]Source, error) {
	var out sourceList
	if err := c.do(ctx, http.MethodGet, "/sources", nil, &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

func (c *Client) ListConnections(ctx context.Context) ([]Connection, error) {
	var out connectionList
	if err := c.do(ctx, http.MethodGet, "/connections", nil, &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

func (c *Client) ListDestinations(ctx context.Context) ([]Destination, error) {
	var out destinationList
	if err := c.do(ctx, http.MethodGet, "/destinations", nil, &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

func (c *Client) DeleteSource(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sources/"+id, nil, nil)
}

func (c *Client) DeleteConnection(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/connections/"+id, nil, nil)
}

func (c *Client) DeleteDestination(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/destinations/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("hookdeck: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("hookdeck: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("hookdeck: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("hookdeck: %s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("hookdeck: decode %s %s: %w", method, path, err)
		}
	}
	return nil
}
