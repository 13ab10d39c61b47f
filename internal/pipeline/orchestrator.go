package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docchunk/internal/chunkstore"
	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/convert"
)

var (
	ErrQueueFull    = errors.New("job queue is full")
	ErrShuttingDown = errors.New("server is shutting down")
)

const maxConcurrentStore = 4

// Orchestrator owns the conversion worker pool and the job registry.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	conv  *convert.Service
	store *chunkstore.Client
	log   *slog.Logger
	cfg   config.Config

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. store may be nil.
func NewOrchestrator(cfg config.Config, conv *convert.Service, store *chunkstore.Client, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		conv:  conv,
		store: store,
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.conv, o.store, o.log, maxConcurrentStore)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
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
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Debug("evicted expired jobs", "count", n)
				}
			}
		}
	}()
}

// Stop cancels running work and fails anything still queued.
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

	for job := range o.queue {
		job.fail("queued", ErrShuttingDown)
	}
}

// Submit registers a job and queues it without blocking.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrShuttingDown
	}

	select {
	case o.queue <- job:
		o.jobs.Put(job)
		return nil
	default:
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// Run submits a job and waits for it to finish or for ctx to end. The
// returned error is the job's own failure, if any. Once ctx ends the job is
// abandoned: it is failed if still queued and its conversion is cancelled if
// running.
func (o *Orchestrator) Run(ctx context.Context, job *Job) error {
	job.waiter = ctx
	if err := o.Submit(job); err != nil {
		return err
	}
	// Synchronous jobs are not kept for polling once the caller has them.
	defer o.jobs.Delete(job.ID)

	select {
	case <-job.Done():
		return job.Err()
	case <-ctx.Done():
		return ctx.Err()
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

// Chunkstore returns the chunk store client, or nil when none is configured.
func (o *Orchestrator) Chunkstore() *chunkstore.Client {
	return o.store
}
