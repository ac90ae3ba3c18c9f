package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mergington/activities/shared/logger"
)

// APIClient handles all communication with the roster service.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

// New creates a client for the roster service at baseURL. A zero timeout
// leaves requests to the transport's own limits.
func New(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{Timeout: timeout},
	}
}

// exchange is one request/response pair with the body already read.
type exchange struct {
	StatusCode int
	Body       []byte
}

func (e exchange) ok() bool {
	return e.StatusCode >= 200 && e.StatusCode < 300
}

// do is the single helper for making API requests. path must already be
// escaped. Any error it returns means no usable response was obtained.
func (c *APIClient) do(ctx context.Context, operation, method, path string, query url.Values) (exchange, error) {
	start := time.Now()

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return exchange{}, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		observe(operation, outcomeTransportError, start)
		return exchange{}, fmt.Errorf("roster service unavailable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observe(operation, outcomeTransportError, start)
		return exchange{}, fmt.Errorf("failed to read %s response: %w", operation, err)
	}

	logger.Log.Debug("roster api call", "operation", operation, "method", method, "path", path, "status", resp.StatusCode)
	return exchange{StatusCode: resp.StatusCode, Body: body}, nil
}
