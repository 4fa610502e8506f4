package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/negwatch/negwatch/internal/logging"
	"github.com/negwatch/negwatch/internal/model"
)

// CacheStatus fetches the server's scenario-cache state.
func (c *Client) CacheStatus(ctx context.Context) (*model.CacheStatus, error) {
	var status model.CacheStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/cache/scenarios/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ClearCache drops the server's scenario cache.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/cache/scenarios/clear", nil, nil)
}

// BuildCache triggers a non-streaming cache build.
func (c *Client) BuildCache(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/cache/scenarios/build", nil, nil)
}

// BuildCacheStream starts a cache build and follows its progress stream.
// The channel closes after a terminal message or when ctx is cancelled.
func (c *Client) BuildCacheStream(ctx context.Context) (<-chan model.BuildProgress, error) {
	body, err := c.openStream(ctx, http.MethodPost, "/api/cache/scenarios/build-stream", nil)
	if err != nil {
		return nil, err
	}

	progress := make(chan model.BuildProgress, 16)
	go func() {
		defer close(progress)
		defer body.Close()

		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				body.Close()
			case <-done:
			}
		}()

		err := readSSE(body, func(ev sseEvent) bool {
			var p model.BuildProgress
			if err := json.Unmarshal([]byte(ev.Data), &p); err != nil {
				logging.Warn("bad cache build message", "error", err)
				return true
			}
			select {
			case progress <- p:
			case <-ctx.Done():
				return false
			}
			return !p.Terminal()
		})
		if err != nil && ctx.Err() == nil {
			logging.Error("cache build stream failed", "error", err)
			select {
			case progress <- model.BuildProgress{Type: "error", Message: err.Error()}:
			case <-ctx.Done():
			}
		}
	}()
	return progress, nil
}
