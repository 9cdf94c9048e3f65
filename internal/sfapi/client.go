// Package sfapi talks to the Metadata API of a remote org over SOAP and
// resolves org aliases to authenticated clients.
package sfapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"fieldkit/internal/config"
	"fieldkit/internal/deploy"
	"fieldkit/internal/metadata"
)

var _ deploy.Connection = (*Client)(nil)

const (
	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 16 << 20
	// maxSnippetRunes caps the body excerpt carried by APIError.
	maxSnippetRunes = 200
)

// Options tune a Client. Zero values select defaults.
type Options struct {
	APIVersion     string
	HTTPClient     *http.Client
	RateLimitRPS   float64 // 0 disables pacing
	RateLimitBurst int
	Logger         *slog.Logger
}

// Client is an authenticated Metadata API session against one org.
type Client struct {
	instanceURL string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewClient returns a Client for instanceURL using accessToken as the
// session ID.
func NewClient(instanceURL, accessToken string, opts Options) *Client {
	c := &Client{
		instanceURL: strings.TrimRight(instanceURL, "/"),
		accessToken: accessToken,
		apiVersion:  opts.APIVersion,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
	}
	if c.apiVersion == "" {
		c.apiVersion = config.DefaultAPIVersion
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}
	return c
}

// InstanceURL returns the org base URL.
func (c *Client) InstanceURL() string { return c.instanceURL }

// Endpoint returns the Metadata API SOAP endpoint.
func (c *Client) Endpoint() string {
	return c.instanceURL + "/services/Soap/m/" + c.apiVersion
}

// Create submits items in a single createMetadata call.
func (c *Client) Create(ctx context.Context, kind metadata.Kind, items []metadata.Component) ([]metadata.SaveResult, error) {
	return c.call(ctx, opCreate, kind, items)
}

// Update submits item in an updateMetadata call.
func (c *Client) Update(ctx context.Context, kind metadata.Kind, item metadata.Component) ([]metadata.SaveResult, error) {
	return c.call(ctx, opUpdate, kind, []metadata.Component{item})
}

func (c *Client) call(ctx context.Context, operation string, kind metadata.Kind, items []metadata.Component) ([]metadata.SaveResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	body, err := encodeRequest(c.accessToken, operation, kind, items)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `""`)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", operation, err)
	}

	c.logger.Debug("metadata call",
		"request_id", requestID,
		"operation", operation,
		"kind", kind,
		"items", len(items),
		"status", resp.StatusCode,
		"duration", time.Since(start))

	results, err := decodeResponse(data, operation, resp.StatusCode)
	if err != nil {
		if resp.StatusCode >= 300 && !isAPIError(err) {
			return nil, &APIError{HTTPStatus: resp.StatusCode, Message: snippet(data)}
		}
		return nil, err
	}
	return results, nil
}

func isAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// snippet returns a short single-line excerpt of a response body.
func snippet(data []byte) string {
	s := strings.Join(strings.Fields(string(data)), " ")
	if r := []rune(s); len(r) > maxSnippetRunes {
		s = string(r[:maxSnippetRunes]) + "..."
	}
	if s == "" {
		s = "empty response"
	}
	return s
}
