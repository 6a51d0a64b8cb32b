// Package worker provides an asynchronous worker pool that finishes a
// research request after its stream has ended: storing the accumulated
// content on the history entry and publishing a completion event.
//
// The pool keeps storage and event publishing off the path that streams
// fragments back to the caller.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/quire/pkg/eventstream"
	"github.com/papercomputeco/quire/pkg/history"
	"github.com/papercomputeco/quire/pkg/render"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is one finished research request.
type Job struct {
	HistoryID uuid.UUID
	UserID    string
	Topic     string
	Content   string
	Fragments int
	Bytes     int64
	Duration  time.Duration

	// Err is the terminal stream error, if any.
	Err error
}

// Config is the configuration options for the worker pool.
type Config struct {
	// History stores the finished content.
	History history.Store

	// Publisher is the optional research event publisher.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Pool processes research jobs asynchronously.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.History == nil {
		return nil, fmt.Errorf("worker pool requires a history store")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"history_id", job.HistoryID.String(),
			"user_id", job.UserID,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"history_id", job.HistoryID.String(),
			"user_id", job.UserID,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob stores the content and then publishes the completion event.
// A failed store skips the event.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	if err := p.config.History.SetContent(ctx, job.HistoryID, job.Content); err != nil {
		p.logger.Error("storing research content failed",
			"history_id", job.HistoryID.String(),
			"error", err,
		)
		return
	}

	p.logger.Info("research stored",
		"history_id", job.HistoryID.String(),
		"fragments", job.Fragments,
		"bytes", job.Bytes,
	)

	if p.config.Publisher == nil {
		return
	}

	event := NewEvent(job, p.config.Now())
	if err := p.config.Publisher.PublishResearch(ctx, event); err != nil {
		p.logger.Warn("publishing research event failed",
			"history_id", job.HistoryID.String(),
			"event_id", event.EventID,
			"error", err,
		)
		return
	}

	p.logger.Debug("research event published", "event_id", event.EventID)
}

// NewEvent builds the completion event for a job.
func NewEvent(job Job, now time.Time) *eventstream.ResearchCompletedEvent {
	event := eventstream.NewResearchCompleted(job.UserID, job.HistoryID.String(), job.Topic, now)
	event.Stream = eventstream.StreamMeta{
		Fragments:  job.Fragments,
		Bytes:      job.Bytes,
		DurationMs: job.Duration.Milliseconds(),
	}

	for _, sec := range render.Sections(job.Content) {
		event.SectionKinds = append(event.SectionKinds, sec.Kind.String())
	}

	if job.Err != nil {
		event.Error = job.Err.Error()
	}
	return event
}
