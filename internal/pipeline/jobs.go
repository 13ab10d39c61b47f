package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/convert"
	"github.com/dgallion1/docchunk/internal/document"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusConverting JobStatus = "converting"
	StatusChunking   JobStatus = "chunking"
	StatusPublishing JobStatus = "publishing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Kind selects how far a job runs.
type Kind string

const (
	KindExtract Kind = "extract"
	KindChunk   Kind = "chunk"
)

// Job tracks the state of a single document conversion.
type Job struct {
	mu sync.Mutex

	ID       string
	DocID    string // chunk store key; defaults to ID
	Kind     Kind
	Filename string
	Chunking chunker.Config
	// Publish sends the result to the chunk store when one is configured.
	Publish bool

	Status    JobStatus
	Phase     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Internal: not serialized.
	// waiter is the context of a synchronous caller; work stops when it ends.
	waiter     context.Context
	upload     convert.Upload
	extraction *document.Extraction
	result     *document.ChunkingResult
	published  bool
	err        error
	errors     []string
	done       chan struct{}
	finishOnce sync.Once
}

// NewJob creates a queued job that owns the upload bytes until conversion.
func NewJob(kind Kind, upload convert.Upload, cfg chunker.Config) *Job {
	now := time.Now()
	id := uuid.NewString()
	return &Job{
		ID:        id,
		DocID:     id,
		Kind:      kind,
		Filename:  upload.Filename,
		Chunking:  cfg,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		upload:    upload,
		done:      make(chan struct{}),
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs that have not changed within the TTL.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		if job.finished() && now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a non-fatal error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// Done is closed once the job reaches a terminal status.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Err returns the error that failed the job, if any.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Extraction returns the converted document once conversion has finished.
func (j *Job) Extraction() *document.Extraction {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.extraction
}

// Result returns the chunking result once chunking has finished.
func (j *Job) Result() *document.ChunkingResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// takeUpload hands the upload to the worker and drops the job's reference so
// the bytes can be collected while the job record lives on.
func (j *Job) takeUpload() convert.Upload {
	j.mu.Lock()
	defer j.mu.Unlock()
	u := j.upload
	j.upload = convert.Upload{}
	return u
}

func (j *Job) setExtraction(ext *document.Extraction) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.extraction = ext
	j.UpdatedAt = time.Now()
}

func (j *Job) setResult(res document.ChunkingResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &res
	j.UpdatedAt = time.Now()
}

func (j *Job) setPublished() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.published = true
}

// complete marks the job completed and releases waiters.
func (j *Job) complete() {
	j.finishOnce.Do(func() {
		j.SetStatus(StatusCompleted, "done")
		close(j.done)
	})
}

// fail marks the job failed in phase and releases waiters.
func (j *Job) fail(phase string, err error) {
	j.finishOnce.Do(func() {
		j.mu.Lock()
		j.err = err
		j.errors = append(j.errors, err.Error())
		j.mu.Unlock()
		j.SetStatus(StatusFailed, phase)
		close(j.done)
	})
}

func (j *Job) finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string                   `json:"job_id"`
	DocID     string                   `json:"doc_id"`
	Kind      Kind                     `json:"kind"`
	Status    JobStatus                `json:"status"`
	Phase     string                   `json:"phase"`
	Filename  string                   `json:"filename"`
	Published bool                     `json:"published"`
	Errors    []string                 `json:"errors"`
	Metadata  map[string]any           `json:"metadata,omitempty"`
	Result    *document.ChunkingResult `json:"result,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	snap := JobSnapshot{
		ID:        j.ID,
		DocID:     j.DocID,
		Kind:      j.Kind,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		Published: j.published,
		Errors:    errs,
		Result:    j.result,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if j.extraction != nil {
		snap.Metadata = j.extraction.Metadata
	}
	return snap
}
