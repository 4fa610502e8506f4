// Package coord runs the background loops that keep the dashboard current:
// the tournament event pump and periodic server refreshes. Context
// cancellation is the only stop mechanism.
package coord

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/negwatch/negwatch/internal/logging"
	"github.com/negwatch/negwatch/internal/model"
	"github.com/negwatch/negwatch/internal/store"
	"github.com/negwatch/negwatch/internal/ui"
)

// requestTimeout bounds each refresh call.
const requestTimeout = 30 * time.Second

// persistBatchSize is how many live negotiations accumulate before a store
// write during a stream.
const persistBatchSize = 20

// lookupTimeout bounds the per-record fetch of a saved negotiation.
const lookupTimeout = 5 * time.Second

// serverClient is the slice of the API client the coordinator needs,
// an interface so tests can inject a fake.
type serverClient interface {
	CacheStatus(ctx context.Context) (*model.CacheStatus, error)
	ListFilters(ctx context.Context) ([]model.FilterPreset, error)
	StreamTournament(ctx context.Context, tournamentID string) (<-chan model.TournamentEvent, error)
	SavedNegotiationByRunID(ctx context.Context, tournamentID, runID string) (*model.Negotiation, error)
}

// Coordinator owns the background goroutines. The store and client are set at
// construction and never swapped.
type Coordinator struct {
	store  *store.Store
	client serverClient
	wg     sync.WaitGroup
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(s *store.Store, client serverClient) *Coordinator {
	return &Coordinator{store: s, client: client}
}

// Wait blocks until every background goroutine exits. Call after cancelling
// the contexts passed to the Start methods.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// StartRefresh polls the server for cache status and filter presets at the
// given interval, starting immediately. Results go to the program; presets
// are additionally cached in the store so the filters view works offline.
func (c *Coordinator) StartRefresh(ctx context.Context, program *tea.Program, interval time.Duration) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		c.refresh(ctx, program)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.refresh(ctx, program)
			}
		}
	}()
}

// refresh fetches cache status and presets in parallel. Each result is
// reported independently so one failing endpoint does not blank the other.
func (c *Coordinator) refresh(ctx context.Context, program *tea.Program) {
	callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var g errgroup.Group

	g.Go(func() error {
		status, err := c.client.CacheStatus(callCtx)
		send(program, ui.CacheStatusMsg{Status: status, Err: err})
		return nil
	})

	g.Go(func() error {
		presets, err := c.client.ListFilters(callCtx)
		if err == nil {
			if cacheErr := c.store.CachePresets(presets); cacheErr != nil {
				logging.Warn("failed to cache presets", "error", cacheErr)
			}
		} else {
			// Fall back to the last cached copy so the view stays populated.
			if cached, cacheErr := c.store.CachedPresets(); cacheErr == nil && len(cached) > 0 {
				send(program, ui.PresetsMsg{Presets: cached, Stale: true})
				return nil
			}
		}
		send(program, ui.PresetsMsg{Presets: presets, Err: err})
		return nil
	})

	_ = g.Wait()
}

// FollowTournament subscribes to a tournament's event stream and pumps each
// event into the program. Live negotiation records are persisted in batches.
// The goroutine exits after a terminal event or when ctx is cancelled, and
// always announces the stream closing.
func (c *Coordinator) FollowTournament(ctx context.Context, program *tea.Program, tournamentID string) error {
	events, err := c.client.StreamTournament(ctx, tournamentID)
	if err != nil {
		return err
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer send(program, ui.StreamClosedMsg{TournamentID: tournamentID})

		var batch []model.Negotiation
		flush := func() {
			if len(batch) == 0 {
				return
			}
			if _, err := c.store.SaveNegotiations(tournamentID, batch); err != nil {
				logging.Warn("failed to persist negotiations", "tournament", tournamentID, "error", err)
			}
			batch = batch[:0]
		}
		defer flush()

		for event := range events {
			if event.Kind == model.EventGridInit && event.Init != nil {
				// Recorded so the grid can be reopened from history later.
				if err := c.store.SaveLastTournament(tournamentID, *event.Init); err != nil {
					logging.Warn("failed to record tournament", "tournament", tournamentID, "error", err)
				}
			}
			if event.Live != nil && event.Live.Finished() {
				batch = append(batch, c.resolveNegotiation(ctx, tournamentID, *event.Live))
				if len(batch) >= persistBatchSize {
					flush()
				}
			}
			send(program, ui.TournamentMsg{TournamentID: tournamentID, Event: event})
		}
	}()
	return nil
}

// resolveNegotiation fetches the authoritative saved record for a finished
// live negotiation. Stream payloads can be truncated, so the saved copy wins
// when the lookup succeeds; otherwise the stream copy is persisted as-is.
func (c *Coordinator) resolveNegotiation(ctx context.Context, tournamentID string, n model.Negotiation) model.Negotiation {
	if n.RunID == "" {
		return n
	}
	callCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	saved, err := c.client.SavedNegotiationByRunID(callCtx, tournamentID, n.RunID)
	if err != nil {
		logging.Debug("saved negotiation lookup failed", "run", n.RunID, "error", err)
		return n
	}
	return *saved
}

// send tolerates a nil program so tests can run the coordinator headless.
func send(program *tea.Program, msg tea.Msg) {
	if program != nil {
		program.Send(msg)
	}
}
