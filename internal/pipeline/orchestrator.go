package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/config"
	"github.com/dgallion1/codelines/internal/highlight"
	"github.com/dgallion1/codelines/internal/metrics"
)

// ErrStopped is returned by Submit once the orchestrator has been stopped.
var ErrStopped = errors.New("orchestrator stopped")

// Orchestrator runs render jobs on a bounded worker pool.
type Orchestrator struct {
	jobs        *JobStore
	stats       *RenderStats
	queue       chan *Job
	highlighter *highlight.Highlighter
	options     codeblock.Options
	log         *slog.Logger
	cfg         config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewOrchestrator creates the pipeline. Call Start to run it.
func NewOrchestrator(cfg config.Config, h *highlight.Highlighter, opts codeblock.Options, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:        NewJobStore(cfg.JobTTL),
		stats:       NewRenderStats(cfg.JobTTL),
		queue:       make(chan *Job, cfg.MaxQueueSize),
		highlighter: h,
		options:     opts,
		log:         log,
		cfg:         cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.highlighter, o.options, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					metrics.QueueDepth.Set(float64(len(o.queue)))
					start := time.Now()
					w.Process(workerCtx, job)
					o.finished(job, time.Since(start))
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Later calls to Submit fail.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}

	o.jobs.Put(job)
	select {
	case o.queue <- job:
		metrics.QueueDepth.Set(float64(len(o.queue)))
		return nil
	default:
		err := fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
		job.Fail("queue_full", err)
		metrics.JobsTotal.WithLabelValues(string(StatusFailed), job.Format).Inc()
		return err
	}
}

func (o *Orchestrator) finished(job *Job, took time.Duration) {
	status := job.Snapshot().Status
	failed := status == StatusFailed
	o.stats.Record(job.Format, took, failed)
	metrics.JobsTotal.WithLabelValues(string(status), job.Format).Inc()
	if !failed {
		metrics.JobDuration.WithLabelValues(job.Format).Observe(took.Seconds())
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// JobCount returns the number of jobs not yet evicted.
func (o *Orchestrator) JobCount() int {
	return o.jobs.Len()
}

// Stats returns the render latency tracker.
func (o *Orchestrator) Stats() *RenderStats {
	return o.stats
}
