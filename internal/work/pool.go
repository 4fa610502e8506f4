package work

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/negwatch/negwatch/internal/logging"
)

// Pool limits how many jobs run concurrently and keeps their history for the
// jobs view. Jobs are dispatched by priority; the pool itself does not retry.
type Pool struct {
	mu       sync.RWMutex
	capacity int

	pending  jobQueue
	active   map[string]*Job
	finished *ring

	kick chan struct{}

	subscribers   []chan Event
	subscribersMu sync.RWMutex

	totalCreated   int64
	totalCompleted int64
	totalFailed    int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool creates a pool that runs at most capacity jobs at once. A capacity
// below 1 is raised to 1: every job the dashboard submits is already either
// I/O bound or a single server call, so a small pool is enough.
func NewPool(capacity int) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	return &Pool{
		capacity: capacity,
		active:   make(map[string]*Job),
		finished: newRing(100),
		kick:     make(chan struct{}, 1),
	}
}

// Start launches the dispatcher. Jobs submitted before Start queue up.
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.dispatch()
	logging.Info("Job pool started", "capacity", p.capacity)
}

// Stop cancels the dispatcher and waits for running jobs to finish.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	logging.Info("Job pool stopped",
		"created", atomic.LoadInt64(&p.totalCreated),
		"completed", atomic.LoadInt64(&p.totalCompleted),
		"failed", atomic.LoadInt64(&p.totalFailed))
}

// Submit queues a job and returns its ID.
func (p *Pool) Submit(job *Job) string {
	job.ID = uuid.NewString()
	job.Status = StatusPending
	job.CreatedAt = time.Now()

	p.mu.Lock()
	heap.Push(&p.pending, job)
	atomic.AddInt64(&p.totalCreated, 1)
	p.mu.Unlock()

	p.notify(Event{Job: job, Change: "created"})

	select {
	case p.kick <- struct{}{}:
	default:
	}
	return job.ID
}

// SubmitFunc queues a simple job without progress reporting.
func (p *Pool) SubmitFunc(kind Kind, desc string, fn func() (string, error)) string {
	return p.Submit(&Job{Kind: kind, Description: desc, run: fn})
}

// SubmitWithProgress queues a job whose function reports progress through the
// supplied callback. Progress events fan out to subscribers.
func (p *Pool) SubmitWithProgress(kind Kind, desc string, fn func(progress func(pct float64, msg string)) (string, error)) string {
	job := &Job{Kind: kind, Description: desc}
	job.run = func() (string, error) {
		return fn(func(pct float64, msg string) {
			p.mu.Lock()
			job.Progress = pct
			job.ProgressMsg = msg
			p.mu.Unlock()
			p.notify(Event{Job: job, Change: "progress"})
		})
	}
	return p.Submit(job)
}

// dispatch moves pending jobs into execution while capacity allows. A ticker
// backs up the kick channel so a missed signal only delays dispatch.
func (p *Pool) dispatch() {
	defer p.wg.Done()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.kick:
		case <-ticker.C:
		}

		for {
			p.mu.Lock()
			if p.pending.Len() == 0 || len(p.active) >= p.capacity {
				p.mu.Unlock()
				break
			}
			job := heap.Pop(&p.pending).(*Job)
			job.Status = StatusActive
			job.StartedAt = time.Now()
			p.active[job.ID] = job
			p.mu.Unlock()

			p.notify(Event{Job: job, Change: "started"})

			p.wg.Add(1)
			go p.execute(job)
		}
	}
}

func (p *Pool) execute(job *Job) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Job panicked", "id", job.ID, "panic", r)
			p.finish(job, "", fmt.Errorf("panic: %v", r))
		}
	}()

	if job.run == nil {
		p.finish(job, "", fmt.Errorf("job has no function"))
		return
	}
	result, err := job.run()
	p.finish(job, result, err)
}

func (p *Pool) finish(job *Job, result string, err error) {
	p.mu.Lock()
	job.FinishedAt = time.Now()
	job.Result = result
	job.Err = err
	if err != nil {
		job.Status = StatusFailed
		atomic.AddInt64(&p.totalFailed, 1)
	} else {
		job.Status = StatusComplete
		atomic.AddInt64(&p.totalCompleted, 1)
	}
	delete(p.active, job.ID)
	p.finished.push(job)
	p.mu.Unlock()

	change := "completed"
	if err != nil {
		change = "failed"
	}
	p.notify(Event{Job: job, Change: change})

	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the pool state for display.
func (p *Pool) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pending := make([]*Job, len(p.pending))
	copy(pending, p.pending)

	active := make([]*Job, 0, len(p.active))
	for _, job := range p.active {
		active = append(active, job)
	}

	return Snapshot{
		Pending:  pending,
		Active:   active,
		Finished: p.finished.all(),
		Stats:    p.statsLocked(),
	}
}

// Stats returns the current counters.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.statsLocked()
}

func (p *Pool) statsLocked() Stats {
	return Stats{
		TotalCreated:   atomic.LoadInt64(&p.totalCreated),
		TotalCompleted: atomic.LoadInt64(&p.totalCompleted),
		TotalFailed:    atomic.LoadInt64(&p.totalFailed),
		ActiveCount:    len(p.active),
		PendingCount:   p.pending.Len(),
		Capacity:       p.capacity,
	}
}

// Subscribe returns a channel of job events. Slow subscribers drop events
// rather than blocking the pool.
func (p *Pool) Subscribe() <-chan Event {
	ch := make(chan Event, 100)
	p.subscribersMu.Lock()
	p.subscribers = append(p.subscribers, ch)
	p.subscribersMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (p *Pool) Unsubscribe(ch <-chan Event) {
	p.subscribersMu.Lock()
	defer p.subscribersMu.Unlock()
	for i, sub := range p.subscribers {
		if sub == ch {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

func (p *Pool) notify(event Event) {
	logEvent(event)

	p.subscribersMu.RLock()
	defer p.subscribersMu.RUnlock()
	for _, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
			logging.Debug("Job event dropped", "id", event.Job.ID, "change", event.Change)
		}
	}
}

// ClearHistory empties the finished job list.
func (p *Pool) ClearHistory() {
	p.mu.Lock()
	p.finished.clear()
	p.mu.Unlock()
}
