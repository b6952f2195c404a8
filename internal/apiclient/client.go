package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bizpilot/internal/core"
	"bizpilot/internal/log"
	"bizpilot/internal/store"
)

// Client is the one API-client implementation every dashboard shares. The
// original front-ends each re-derived this logic; here they all consume the
// same module.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func New(baseURL string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger.WithComponent(log.ComponentAPIClient),
	}
}

// Ping is the connectivity probe: any success status counts as connected,
// any network failure or non-success status as disconnected.
func (c *Client) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "Connectivity probe failed", log.FieldError, err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// List fetches the full collection for a resource, newest first.
func (c *Client) List(ctx context.Context, resource string) ([]store.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+resource, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", resource, apiError(resp))
	}

	var docs []store.Document
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", resource, err)
	}
	return docs, nil
}

// Create posts a new document and returns its generated id.
func (c *Client) Create(ctx context.Context, resource string, fields map[string]any) (string, error) {
	var reply struct {
		ID string `json:"id"`
	}
	if err := c.send(ctx, http.MethodPost, c.baseURL+"/"+resource, fields, &reply); err != nil {
		return "", fmt.Errorf("create %s: %w", resource, err)
	}
	return reply.ID, nil
}

// Update sends a partial merge for the given id.
func (c *Client) Update(ctx context.Context, resource, id string, fields map[string]any) error {
	if err := c.send(ctx, http.MethodPut, c.baseURL+"/"+resource+"/"+id, fields, nil); err != nil {
		return fmt.Errorf("update %s/%s: %w", resource, id, err)
	}
	return nil
}

// Delete removes the document with the given id.
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	if err := c.send(ctx, http.MethodDelete, c.baseURL+"/"+resource+"/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", resource, id, err)
	}
	return nil
}

// Convenience wrappers for the three resources.

func (c *Client) ListTasks(ctx context.Context) ([]store.Document, error) {
	return c.List(ctx, core.CollectionTasks)
}

func (c *Client) ListClients(ctx context.Context) ([]store.Document, error) {
	return c.List(ctx, core.CollectionClients)
}

func (c *Client) ListTransactions(ctx context.Context) ([]store.Document, error) {
	return c.List(ctx, core.CollectionTransactions)
}

func (c *Client) send(ctx context.Context, method, url string, fields map[string]any, out any) error {
	var body io.Reader
	if fields != nil {
		encoded, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if fields != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", apiError(resp))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// apiError extracts the {error: message} body, falling back to the status.
func apiError(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return body.Error
	}
	return resp.Status
}
