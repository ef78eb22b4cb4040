package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"workflow-templates/backend/pkg/models"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// apiClient calls the query API over HTTP on behalf of the tool surface.
//
// Every method swallows downstream failures: the error is logged and the
// result degrades to an empty collection or nil, so tool callers cannot
// distinguish "no results" from "the call failed".
type apiClient struct {
	baseURL string
	client  *http.Client
	logger  Logger
}

// newAPIClient creates a client for the query API at baseURL with a per-call
// timeout. There are no retries; a timed-out call is a failed call.
func newAPIClient(baseURL string, timeout time.Duration, logger Logger) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SearchTemplates searches workflow templates. Returns an empty slice on any
// downstream failure.
func (c *apiClient) SearchTemplates(ctx context.Context, req models.SearchRequest) []*models.Template {
	var results []*models.Template
	if err := c.post(ctx, "/search", req, &results); err != nil {
		c.logger.Error("Search error: %v", err)
		return []*models.Template{}
	}
	return results
}

// GetTemplateMetadata fetches detailed template metadata. Returns nil both
// for unknown ids and for downstream failures.
func (c *apiClient) GetTemplateMetadata(ctx context.Context, templateID string) map[string]any {
	var metadata map[string]any
	if err := c.get(ctx, "/template/"+url.PathEscape(templateID), &metadata); err != nil {
		c.logger.Error("Metadata error: %v", err)
		return nil
	}
	return metadata
}

// ListCategories lists categories. Returns an empty listing on failure.
func (c *apiClient) ListCategories(ctx context.Context) map[string]any {
	var categories map[string]any
	if err := c.get(ctx, "/categories", &categories); err != nil {
		c.logger.Error("Categories error: %v", err)
		return map[string]any{"categories": []any{}}
	}
	return categories
}

// ListPopularTemplates fetches the top-ranked templates. Returns an empty
// slice on failure.
func (c *apiClient) ListPopularTemplates(ctx context.Context, limit int) []*models.Template {
	var results []*models.Template
	if err := c.get(ctx, "/popular?limit="+strconv.Itoa(limit), &results); err != nil {
		c.logger.Error("Popular templates error: %v", err)
		return []*models.Template{}
	}
	return results
}

func (c *apiClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *apiClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
