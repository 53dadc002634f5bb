package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Version is the figma-docgen release, reported by the CLI and sent as User-Agent.
const Version = "0.3.0"

const (
	figmaAPIBase = "https://api.figma.com/v1"
	maxRetries   = 3
)

var (
	fileKeyPattern   = regexp.MustCompile(`^https?://(?:www\.)?figma\.com/(?:file|design|proto)/([A-Za-z0-9]+)(?:/|$|\?|#)`)
	nodesPathPattern = regexp.MustCompile(`/nodes/([^/?#]+)`)
)

// ErrInvalidURL is returned when a URL is not a Figma file, design or prototype link.
var ErrInvalidURL = errors.New("invalid Figma URL")

// APIError is a non-200 response from the Figma API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client represents a Figma API client with configured HTTP settings for reliable communication
// with the Figma API. It includes retry logic and transport settings tuned for large files.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	backoff     time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root, e.g. an httptest server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(base, "/")
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBackoff sets the base delay between retries. Attempt n waits n*backoff.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.backoff = d
	}
}

// NewClient creates a new Figma API client with the provided personal access token.
// The client is configured with connection pooling, disabled HTTP/2 (for large file stability),
// and a 10-minute timeout for very large files.
func NewClient(accessToken string, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
		// Disable HTTP/2 to avoid stream errors with large files
		ForceAttemptHTTP2: false,
	}

	c := &Client{
		accessToken: accessToken,
		baseURL:     figmaAPIBase,
		httpClient: &http.Client{
			Timeout:   10 * time.Minute,
			Transport: transport,
		},
		backoff: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExtractFileKey extracts the unique file identifier from a Figma URL.
// Supports /file/, /design/ and /proto/ URL patterns (e.g., figma.com/file/ABC123/Design-Name).
func ExtractFileKey(figmaURL string) (string, error) {
	matches := fileKeyPattern.FindStringSubmatch(strings.TrimSpace(figmaURL))
	if len(matches) < 2 {
		return "", fmt.Errorf("%w: must be a figma.com URL with a /file/, /design/ or /proto/ path", ErrInvalidURL)
	}

	return matches[1], nil
}

// ExtractNodeIDs returns the node IDs referenced by a Figma URL, looking at the node-id
// query parameter, the hash fragment and a /nodes/ path segment, in that order.
// Dashes are converted to colons (the URL-encoded form Figma uses in share links)
// and duplicates are removed preserving order. A URL without node references yields an empty slice.
func ExtractNodeIDs(figmaURL string) ([]string, error) {
	u, err := url.Parse(strings.TrimSpace(figmaURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	var raw string
	if v := u.Query().Get("node-id"); v != "" {
		raw = v
	} else if u.Fragment != "" {
		raw = u.Fragment
	} else if m := nodesPathPattern.FindStringSubmatch(u.Path); len(m) == 2 {
		raw = m[1]
	}

	ids := []string{}
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		ids = append(ids, strings.ReplaceAll(id, "-", ":"))
	}

	return deduplicateNodeIDs(ids), nil
}

func deduplicateNodeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// GetFile retrieves complete file data including document structure, styles, and metadata.
func (c *Client) GetFile(ctx context.Context, fileKey string) (*FileResponse, error) {
	var fileResp FileResponse
	if err := c.get(ctx, "/files/"+url.PathEscape(fileKey), nil, &fileResp); err != nil {
		return nil, err
	}
	return &fileResp, nil
}

// GetFileNodes retrieves only the requested nodes (and their subtrees) of a file.
func (c *Client) GetFileNodes(ctx context.Context, fileKey string, nodeIDs []string) (*NodesResponse, error) {
	if len(nodeIDs) == 0 {
		return nil, fmt.Errorf("at least one node id is required")
	}
	q := url.Values{}
	q.Set("ids", strings.Join(nodeIDs, ","))

	var nodesResp NodesResponse
	if err := c.get(ctx, "/files/"+url.PathEscape(fileKey)+"/nodes", q, &nodesResp); err != nil {
		return nil, err
	}
	return &nodesResp, nil
}

// GetImages asks Figma to render the given nodes and returns temporary download URLs.
func (c *Client) GetImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (*ImagesResponse, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(nodeIDs, ","))
	q.Set("format", format)
	q.Set("scale", strconv.FormatFloat(scale, 'f', -1, 64))

	var imgResp ImagesResponse
	if err := c.get(ctx, "/images/"+url.PathEscape(fileKey), q, &imgResp); err != nil {
		return nil, err
	}
	if imgResp.Err != "" {
		return nil, fmt.Errorf("render failed: %s", imgResp.Err)
	}
	return &imgResp, nil
}

// get performs a GET with automatic retry (up to 3 attempts) and linear backoff.
// The request is retried on transport errors, 429 (rate limit) and 5xx responses.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, status, err := c.do(ctx, endpoint)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("attempt %d failed to execute request: %w", attempt, err)
		case status != http.StatusOK:
			lastErr = &APIError{StatusCode: status, Body: string(body)}
			if status != http.StatusTooManyRequests && status < 500 {
				return lastErr
			}
		default:
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			return nil
		}

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
	}

	return lastErr
}

func (c *Client) do(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Figma-Token", c.accessToken)
	req.Header.Set("User-Agent", "figma-docgen/"+Version)
	// Disable HTTP/2 to avoid stream errors with large files
	req.Header.Set("Connection", "close")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
