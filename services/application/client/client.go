// Package client is a typed HTTP client for the application directory API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ghuser/appdirectory/services/application/domain/models"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type application struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Domains []string `json:"domains"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Client talks to the API at a base URL. Requests carry no timeout of their
// own; bound them with the context.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client for baseURL, e.g. "http://localhost:3001".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search calls GET /applications?q=query. An empty query lists everything.
func (c *Client) Search(ctx context.Context, query string) ([]*models.Application, error) {
	u := c.baseURL + "/applications"
	if query != "" {
		u += "?q=" + url.QueryEscape(query)
	}

	var out []application
	if err := c.do(ctx, http.MethodGet, u, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}

	apps := make([]*models.Application, len(out))
	for i, a := range out {
		apps[i] = models.NewApplication(a.ID, a.Name, a.Domains)
	}
	return apps, nil
}

// Create calls POST /applications and returns the stored application.
func (c *Client) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	body, err := json.Marshal(application{ID: app.ID, Name: app.Name, Domains: nonNil(app.Domains)})
	if err != nil {
		return nil, fmt.Errorf("api: encode application: %w", err)
	}

	var out application
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/applications", body, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return models.NewApplication(out.ID, out.Name, out.Domains), nil
}

// Delete calls DELETE /applications/{id}.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.baseURL+"/applications/"+url.PathEscape(id), nil, http.StatusNoContent, nil)
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, want int, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, u, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	}
	return apiErr
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
