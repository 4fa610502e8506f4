package api

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// sseEvent is one server-sent event. Name is empty for data-only messages.
type sseEvent struct {
	Name string
	Data string
}

// openStream issues a request with the SSE accept header and returns the
// response body. The caller owns closing it.
func (c *Client) openStream(ctx context.Context, method, path string, body io.Reader) (io.ReadCloser, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/event-stream")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Streams outlive the client's request timeout; rely on the context for
	// cancellation instead.
	streamClient := &http.Client{Transport: c.http.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, httpError(resp)
	}
	return resp.Body, nil
}

// readSSE parses server-sent events from r and calls emit for each complete
// event. emit returning false stops the read. Returns the scanner error, if
// any; a closed body on cancellation surfaces as a nil or context error.
func readSSE(r io.Reader, emit func(ev sseEvent) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var name string
	var data strings.Builder

	flush := func() bool {
		if data.Len() == 0 {
			name = ""
			return true
		}
		ev := sseEvent{Name: name, Data: data.String()}
		name = ""
		data.Reset()
		return emit(ev)
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case line == "":
			if !flush() {
				return nil
			}
		case strings.HasPrefix(line, ":"):
			// comment/keepalive
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	// Deliver a final event not followed by a blank line.
	flush()
	return scanner.Err()
}
