package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/negwatch/negwatch/internal/model"
)

// ListFilters fetches all saved filter presets.
func (c *Client) ListFilters(ctx context.Context) ([]model.FilterPreset, error) {
	var presets []model.FilterPreset
	if err := c.doJSON(ctx, http.MethodGet, "/api/filters", nil, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

// SaveFilter creates or updates a preset. The server assigns the ID when the
// preset is new; the stored preset is returned either way.
func (c *Client) SaveFilter(ctx context.Context, preset model.FilterPreset) (*model.FilterPreset, error) {
	var saved model.FilterPreset
	if err := c.doJSON(ctx, http.MethodPost, "/api/filters", preset, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteFilter removes a preset.
func (c *Client) DeleteFilter(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/filters/"+url.PathEscape(id), nil, nil)
}

// SetDefaultFilter marks a preset as the default selection.
func (c *Client) SetDefaultFilter(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/filters/"+url.PathEscape(id)+"/default", nil, nil)
}

// DuplicateFilter copies a preset server-side and returns the copy.
func (c *Client) DuplicateFilter(ctx context.Context, id string) (*model.FilterPreset, error) {
	var copied model.FilterPreset
	path := "/api/filters/" + url.PathEscape(id) + "/duplicate"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &copied); err != nil {
		return nil, err
	}
	return &copied, nil
}

// ExportFilters downloads all presets as one JSON document.
func (c *Client) ExportFilters(ctx context.Context) ([]model.FilterPreset, error) {
	var presets []model.FilterPreset
	if err := c.doJSON(ctx, http.MethodGet, "/api/filters/export", nil, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

// ImportResult reports the outcome of a preset import. Partial success is a
// distinct state: some presets imported, some rejected.
type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

// Partial reports whether the import succeeded for only some presets.
func (r ImportResult) Partial() bool {
	return r.Imported > 0 && len(r.Errors) > 0
}

// ImportFilters uploads presets; the server merges them by name.
func (c *Client) ImportFilters(ctx context.Context, presets []model.FilterPreset) (*ImportResult, error) {
	var result ImportResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/filters/import", presets, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
