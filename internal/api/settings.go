package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ExportSettings downloads the server's settings bundle (a ZIP blob) into
// destDir and returns the written path.
func (c *Client) ExportSettings(ctx context.Context, destDir string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/settings/export"), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("export settings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", httpError(resp)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	stamp := time.Now().Format("2006-01-02T15-04-05")
	path := filepath.Join(destDir, "negwatch-settings-"+stamp+".zip")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write settings bundle: %w", err)
	}
	return path, nil
}

// ImportSettings uploads a settings ZIP bundle as a multipart form.
func (c *Client) ImportSettings(ctx context.Context, zipPath string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	f, err := os.Open(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(zipPath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("read settings bundle: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/settings/import"), &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("import settings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// ResetSettings asks the server to restore default settings. Destructive;
// the UI confirms before calling.
func (c *Client) ResetSettings(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/settings/reset", nil, nil)
}
