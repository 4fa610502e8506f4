// Package api is the HTTP/SSE client for a negmas-compatible tournament
// server. The server owns the negotiation mechanisms, the tournament
// scheduler, and the statistics solvers; this package only consumes them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/negwatch/negwatch/internal/model"
)

// userAgent identifies negwatch to the server.
const userAgent = "negwatch/0.1 (+https://github.com/negwatch/negwatch)"

// Client talks to one tournament server. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client for the given base URL.
// requestsPerSecond caps the request rate; <= 0 disables limiting.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64) *Client {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), int(requestsPerSecond)+1)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// endpoint joins the base URL with an API path.
func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

// wait blocks until the rate limiter admits another request.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// doJSON performs a request and decodes a JSON response into out (out may be
// nil to discard the body). Non-2xx responses become errors carrying the
// server's message.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// httpError builds an error from a non-2xx response, preferring the server's
// JSON detail message when present.
func httpError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var detail struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &detail); err == nil {
		if detail.Detail != "" {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, detail.Detail)
		}
		if detail.Error != "" {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, detail.Error)
		}
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}

// ListScenarios fetches the scenario enumeration for the wizard.
func (c *Client) ListScenarios(ctx context.Context) ([]model.Scenario, error) {
	var scenarios []model.Scenario
	if err := c.doJSON(ctx, http.MethodGet, "/api/scenarios", nil, &scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}

// ListNegotiators fetches the negotiator enumeration for the wizard.
func (c *Client) ListNegotiators(ctx context.Context) ([]model.Negotiator, error) {
	var negotiators []model.Negotiator
	if err := c.doJSON(ctx, http.MethodGet, "/api/negotiators", nil, &negotiators); err != nil {
		return nil, err
	}
	return negotiators, nil
}

// ScenarioStats fetches server-computed solution concepts for a scenario.
func (c *Client) ScenarioStats(ctx context.Context, scenarioID string) (*model.ScenarioStats, error) {
	var stats model.ScenarioStats
	path := "/api/scenarios/" + url.PathEscape(scenarioID) + "/stats"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// CalculateScenarioStats asks the server to (re)compute stats for a scenario.
func (c *Client) CalculateScenarioStats(ctx context.Context, scenarioID string) error {
	path := "/api/scenarios/" + url.PathEscape(scenarioID) + "/stats/calculate"
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

// ScenarioInfo fetches descriptive details for a scenario.
func (c *Client) ScenarioInfo(ctx context.Context, scenarioID string) (*model.Scenario, error) {
	var info model.Scenario
	path := "/api/scenarios/" + url.PathEscape(scenarioID) + "/info"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
