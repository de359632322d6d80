package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/marcus/mx/internal/models"
)

// Sentinel errors for common HTTP error classes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Client is an HTTP client for the mx media server.
type Client struct {
	BaseURL  string
	APIKey   string
	DeviceID string
	HTTP     *http.Client
}

// New creates a new media server client.
func New(baseURL, apiKey, deviceID string) *Client {
	return &Client{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		DeviceID: deviceID,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

// MediaRecord is the wire form of a media item. Device-local fields
// (file path, thumbnail) are never part of this struct.
type MediaRecord struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Title       string     `json:"title"`
	Author      string     `json:"author,omitempty"`
	Description string     `json:"description,omitempty"`
	DurationSec int        `json:"duration_sec,omitempty"`
	MimeType    string     `json:"mime_type,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Validate checks the fields every record must carry before it is applied
// to the local store.
func (r *MediaRecord) Validate() error {
	if r.ID == "" {
		return errors.New("record missing id")
	}
	if !models.IsValidKind(models.Kind(r.Kind)) {
		return fmt.Errorf("record %s: invalid kind %q", r.ID, r.Kind)
	}
	if r.UpdatedAt.IsZero() {
		return fmt.Errorf("record %s: missing updated_at", r.ID)
	}
	return nil
}

// ListResponse is the response from a record listing request.
type ListResponse struct {
	Records []MediaRecord `json:"records"`
	HasMore bool          `json:"has_more"`
}

// UpsertResponse is the server's acknowledgment of an upsert.
type UpsertResponse struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HealthResponse is the response from GET /v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// apiError is a structured error payload from the server.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HealthCheck probes the server without authentication. Used by the
// reachability monitor.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doNoAuth(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListRecords fetches up to limit records of the given entity type updated
// strictly after the updatedAfter watermark (zero value means no filter).
func (c *Client) ListRecords(ctx context.Context, entityType string, limit int, updatedAfter time.Time) (*ListResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if !updatedAfter.IsZero() {
		params.Set("updated_after", updatedAfter.UTC().Format(time.RFC3339Nano))
	}

	var resp ListResponse
	path := fmt.Sprintf("/v1/media/%s?%s", entityType, params.Encode())
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpsertRecord creates or replaces a record on the server.
func (c *Client) UpsertRecord(ctx context.Context, entityType string, rec *MediaRecord) (*UpsertResponse, error) {
	var resp UpsertResponse
	path := fmt.Sprintf("/v1/media/%s/%s", entityType, url.PathEscape(rec.ID))
	if err := c.do(ctx, http.MethodPut, path, rec, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteRecord removes a record from the server. Callers typically treat
// ErrNotFound as success: the tombstone already took effect.
func (c *Client) DeleteRecord(ctx context.Context, entityType, id string) error {
	path := fmt.Sprintf("/v1/media/%s/%s", entityType, url.PathEscape(id))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do executes an authenticated HTTP request.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	return c.doRequest(ctx, method, path, body, result, true)
}

// doNoAuth executes an unauthenticated HTTP request.
func (c *Client) doNoAuth(ctx context.Context, method, path string, body, result any) error {
	return c.doRequest(ctx, method, path, body, result, false)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result any, auth bool) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if c.DeviceID != "" {
		req.Header.Set("X-Device-ID", c.DeviceID)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Code != "" {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
			case http.StatusForbidden:
				return fmt.Errorf("%w: %s", ErrForbidden, apiErr.Message)
			case http.StatusNotFound:
				return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
			default:
				return &apiErr
			}
		}
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
