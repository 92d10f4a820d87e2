package erpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrStaleDocument reports an optimistic-concurrency conflict: the
// authoritative copy changed since it was last fetched. Callers reload
// and retry once; a second conflict is surfaced, never retried again.
var ErrStaleDocument = errors.New("document was modified, please reload")

// ErrServiceUnavailable covers transport failures and 5xx responses.
// Local cart state must never be discarded on this error.
var ErrServiceUnavailable = errors.New("pos backend service unavailable")

// Client talks to the ERP backend that owns the authoritative invoice
// documents. Requests are rate limited and authenticated with a static
// API key header.
type Client struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
	limiter   <-chan time.Time
}

func NewClient(apiKey string) (*Client, error) {
	baseURL := strings.TrimSpace(os.Getenv("ERP_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	apiKeyHeader := strings.TrimSpace(os.Getenv("ERP_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("erp api key is empty")
	}
	rateLimitPerMin := int64(120)
	if v := strings.TrimSpace(os.Getenv("ERP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   time.Tick(interval),
	}, nil
}

// do runs one authenticated JSON round trip. Conflict (409) and
// 5xx/transport failures map to the package sentinel errors so callers
// can branch without parsing bodies.
func (c *Client) do(ctx context.Context, method string, path string, payload any, out any) error {
	<-c.limiter

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set(c.apiKeyHdr, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusConflict:
		return ErrStaleDocument
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: erp api error %d", ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("erp api error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
