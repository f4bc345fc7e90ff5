// Package extractor is the HTTP client for the external extraction
// bridge: the opaque, unreliable capability that resolves channel and
// video metadata. Every outbound call is serialized through a rate
// limiter, retried on transient failure, and guarded by a circuit
// breaker.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"tubefeed/internal/resilience/circuitbreaker"
	"tubefeed/internal/resilience/retry"

	"golang.org/x/time/rate"
)

const maxErrorBodySize = 4096

// Client talks to the extraction bridge over HTTP JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
}

// NewClient creates a bridge client. The limiter serializes calls to
// the rate-limited upstream; one request per second with no burst keeps
// the oldest-updated-first ordering meaningful.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		breaker:    circuitbreaker.New(circuitbreaker.ExtractorConfig()),
		retryCfg:   retry.ExtractorConfig(),
	}
}

type sourceRequest struct {
	URL       string `json:"url"`
	Flatten   bool   `json:"flatten"`
	Reverse   bool   `json:"reverse"`
	MaxCount  int    `json:"max_count,omitempty"`
	DateFloor string `json:"date_floor,omitempty"` // YYYYMMDD
}

type videoRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SourceMetadata requests fresh channel/playlist metadata with the
// given extraction parameters.
func (c *Client) SourceMetadata(ctx context.Context, url string, params Params) (*SourceMetadata, error) {
	req := sourceRequest{
		URL:      url,
		Flatten:  params.Flatten,
		Reverse:  params.Reverse,
		MaxCount: params.MaxCount,
	}
	if !params.DateFloor.IsZero() {
		req.DateFloor = params.DateFloor.Format("20060102")
	}

	var meta SourceMetadata
	if err := c.call(ctx, "/extract/source", req, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// VideoMetadata resolves a single video, including its media formats.
func (c *Client) VideoMetadata(ctx context.Context, url string) (*VideoMetadata, error) {
	var meta VideoMetadata
	if err := c.call(ctx, "/extract/video", videoRequest{URL: url}, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// call posts a JSON request through limiter, breaker, and retry, and
// decodes the response into out.
func (c *Client) call(ctx context.Context, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("extractor rate limit: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal extractor request: %w", err)
	}

	return retry.WithBackoff(ctx, c.retryCfg, func() error {
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.doOnce(ctx, path, body, out)
		})
		return err
	})
}

func (c *Client) doOnce(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build extractor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("extractor request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	slog.Debug("extractor call",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode >= 500 {
		return &retry.HTTPError{StatusCode: resp.StatusCode, Message: "extractor upstream error"}
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		var errResp errorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			return classify(errResp.Error)
		}
		return classify(string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode extractor response: %w", err)
	}
	return nil
}
