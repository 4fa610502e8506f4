// Package work runs the dashboard's background jobs. Cache builds, stats
// recalculations and grid exports all flow through one pool so the jobs view
// can show what the app is doing and the rest of the code never spawns bare
// goroutines for server work.
//
// All state changes are logged via internal/logging since the UI may not be
// visible while a job runs.
package work

import (
	"fmt"
	"time"

	"github.com/negwatch/negwatch/internal/logging"
)

// Kind categorizes jobs for filtering and display.
type Kind string

const (
	KindCacheBuild Kind = "cache"      // scenario cache build
	KindStats      Kind = "stats"      // scenario stats calculation
	KindExport     Kind = "export"     // grid CSV export
	KindTournament Kind = "tournament" // tournament session
	KindFilters    Kind = "filters"    // filter preset sync
	KindOther      Kind = "other"
)

// Icon returns a display glyph for the job kind.
func (k Kind) Icon() string {
	switch k {
	case KindCacheBuild:
		return "◈"
	case KindStats:
		return "◉"
	case KindExport:
		return "↓"
	case KindTournament:
		return "▲"
	case KindFilters:
		return "◌"
	default:
		return "○"
	}
}

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Job is one unit of background work.
type Job struct {
	ID          string
	Kind        Kind
	Status      Status
	Description string // human readable, e.g. "Building scenario cache"

	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time

	// Progress for long-running jobs, 0.0 to 1.0.
	Progress    float64
	ProgressMsg string // "12 of 40"

	Result string // "40 scenarios cached", "exported grid-Summary-all.csv"
	Err    error

	// Higher priority jobs dispatch first; default 0.
	Priority int

	run func() (string, error)

	heapIndex int
}

// Duration returns how long the job took, or has been running so far.
func (j *Job) Duration() time.Duration {
	if j.FinishedAt.IsZero() {
		if j.StartedAt.IsZero() {
			return 0
		}
		return time.Since(j.StartedAt)
	}
	return j.FinishedAt.Sub(j.StartedAt)
}

// Age returns how long ago the job finished.
func (j *Job) Age() time.Duration {
	if j.FinishedAt.IsZero() {
		return 0
	}
	return time.Since(j.FinishedAt)
}

// StatusIcon returns a display glyph for the current status.
func (j *Job) StatusIcon() string {
	switch j.Status {
	case StatusPending:
		return "○"
	case StatusActive:
		return "●"
	case StatusComplete:
		return "✓"
	case StatusFailed:
		return "✗"
	default:
		return "?"
	}
}

// Event is delivered to subscribers when a job changes state.
type Event struct {
	Job    *Job
	Change string // "created", "started", "progress", "completed", "failed"
}

// Snapshot is the pool state at one instant, for the jobs view.
type Snapshot struct {
	Pending  []*Job
	Active   []*Job
	Finished []*Job // newest first
	Stats    Stats
}

// Stats tracks pool counters.
type Stats struct {
	TotalCreated   int64
	TotalCompleted int64
	TotalFailed    int64
	ActiveCount    int
	PendingCount   int
	Capacity       int
}

func (s Stats) String() string {
	return fmt.Sprintf("Active: %d  Pending: %d  Done: %d  Failed: %d",
		s.ActiveCount, s.PendingCount, s.TotalCompleted, s.TotalFailed)
}

func logEvent(event Event) {
	job := event.Job
	switch event.Change {
	case "created":
		logging.Info("Job created", "id", job.ID, "kind", job.Kind, "desc", job.Description)
	case "started":
		logging.Info("Job started", "id", job.ID, "kind", job.Kind, "desc", job.Description)
	case "progress":
		logging.Debug("Job progress",
			"id", job.ID,
			"pct", fmt.Sprintf("%.0f%%", job.Progress*100),
			"msg", job.ProgressMsg)
	case "completed":
		logging.Info("Job completed",
			"id", job.ID,
			"kind", job.Kind,
			"result", job.Result,
			"duration", job.Duration())
	case "failed":
		logging.Error("Job failed",
			"id", job.ID,
			"kind", job.Kind,
			"error", job.Err,
			"duration", job.Duration())
	}
}
