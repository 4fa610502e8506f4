package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/negwatch/negwatch/internal/logging"
	"github.com/negwatch/negwatch/internal/model"
)

// StartTournament submits a tournament configuration and returns the new
// tournament's ID.
func (c *Client) StartTournament(ctx context.Context, cfg model.TournamentConfig) (string, error) {
	var resp struct {
		TournamentID string `json:"tournament_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/tournament/start", cfg, &resp); err != nil {
		return "", err
	}
	if resp.TournamentID == "" {
		return "", fmt.Errorf("server returned no tournament id")
	}
	return resp.TournamentID, nil
}

// StreamTournament subscribes to a tournament's progress stream. Events are
// delivered on the returned channel, which closes after a terminal event
// (complete or error) or when ctx is cancelled. There is no automatic
// reconnect; callers retry explicitly.
func (c *Client) StreamTournament(ctx context.Context, tournamentID string) (<-chan model.TournamentEvent, error) {
	path := "/api/tournament/" + url.PathEscape(tournamentID) + "/stream"
	body, err := c.openStream(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	events := make(chan model.TournamentEvent, 64)
	go func() {
		defer close(events)
		defer body.Close()

		// Close the body when ctx ends so the scanner unblocks.
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
			event, ok := parseTournamentEvent(ev)
			if !ok {
				return true
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return false
			}
			return !event.Terminal()
		})
		if err != nil && ctx.Err() == nil {
			logging.Error("tournament stream failed", "tournament", tournamentID, "error", err)
			select {
			case events <- model.TournamentEvent{
				Kind:     model.EventError,
				Message:  err.Error(),
				Received: time.Now(),
			}:
			case <-ctx.Done():
			}
		}
	}()
	return events, nil
}

// parseTournamentEvent decodes one SSE message into a typed event.
// Unknown event names are skipped rather than failing the stream.
func parseTournamentEvent(ev sseEvent) (model.TournamentEvent, bool) {
	out := model.TournamentEvent{
		Kind:     model.TournamentEventKind(ev.Name),
		Received: time.Now(),
	}
	data := []byte(ev.Data)

	switch out.Kind {
	case model.EventGridInit:
		var init model.GridInit
		if err := json.Unmarshal(data, &init); err != nil {
			logging.Warn("bad grid_init event", "error", err)
			return out, false
		}
		out.Init = &init
	case model.EventCellUpdate:
		var cell model.CellUpdate
		if err := json.Unmarshal(data, &cell); err != nil {
			logging.Warn("bad negotiation_update event", "error", err)
			return out, false
		}
		out.Cell = &cell
	case model.EventLiveNegotiation:
		var live model.Negotiation
		if err := json.Unmarshal(data, &live); err != nil {
			logging.Warn("bad live_negotiation event", "error", err)
			return out, false
		}
		live.Observed = out.Received
		out.Live = &live
	case model.EventComplete, model.EventError:
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &msg)
		out.Message = msg.Message
	default:
		return out, false
	}
	return out, true
}

// SavedNegotiationByIndex fetches a stored negotiation record by its index in
// a saved tournament.
func (c *Client) SavedNegotiationByIndex(ctx context.Context, tournamentID string, index int) (*model.Negotiation, error) {
	path := "/api/tournament/saved/" + url.PathEscape(tournamentID) +
		"/negotiation/" + strconv.Itoa(index)
	var n model.Negotiation
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// SavedNegotiationByRunID fetches a stored negotiation record by run ID.
func (c *Client) SavedNegotiationByRunID(ctx context.Context, tournamentID, runID string) (*model.Negotiation, error) {
	path := "/api/tournament/saved/" + url.PathEscape(tournamentID) +
		"/negotiation/run/" + url.PathEscape(runID)
	var n model.Negotiation
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
