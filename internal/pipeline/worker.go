package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/chunkstore"
	"github.com/dgallion1/docchunk/internal/convert"
	"github.com/dgallion1/docchunk/internal/document"
)

// Worker processes a single document job.
type Worker struct {
	conv  *convert.Service
	store *chunkstore.Client
	log   *slog.Logger

	maxConcurrentStore int
}

func NewWorker(conv *convert.Service, store *chunkstore.Client, log *slog.Logger, maxStore int) *Worker {
	if maxStore <= 0 {
		maxStore = 1
	}
	return &Worker{
		conv:               conv,
		store:              store,
		log:                log,
		maxConcurrentStore: maxStore,
	}
}

// Process runs conversion, chunking and publishing for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind, "filename", job.Filename)

	if job.waiter != nil {
		if err := job.waiter.Err(); err != nil {
			log.Info("caller gone before processing", "error", err)
			job.fail("queued", err)
			return
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(job.waiter, cancel)
		defer stop()
	}

	// Phase 1: Convert
	job.SetStatus(StatusConverting, "converting")
	ext, err := w.conv.Convert(ctx, job.takeUpload())
	if err != nil {
		log.Warn("conversion failed", "error", err)
		job.fail("converting", err)
		return
	}
	job.setExtraction(ext)

	if job.Kind == KindExtract {
		job.complete()
		return
	}

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	result := chunker.Chunk(ext.Text, ext.Sections, job.Chunking)
	job.setResult(result)
	log.Info("chunked document", "chunks", result.TotalChunks, "chars", result.TotalChars)

	// Phase 3: Publish
	if job.Publish && w.store != nil {
		job.SetStatus(StatusPublishing, "publishing")
		if err := w.publish(ctx, job, ext, result); err != nil {
			log.Error("publish failed", "error", err)
			job.AddError(fmt.Sprintf("publish: %s", err))
		} else {
			job.setPublished()
		}
	}

	job.complete()
}

// publish writes every chunk and then the document meta record.
func (w *Worker) publish(ctx context.Context, job *Job, ext *document.Extraction, result document.ChunkingResult) error {
	sem := make(chan struct{}, w.maxConcurrentStore)
	errs := make(chan error, len(result.Chunks))

	for _, ch := range result.Chunks {
		sem <- struct{}{}
		go func(ch document.Chunk) {
			defer func() { <-sem }()
			errs <- withRetry(ctx, w.log, "put chunk", func() error {
				return w.store.PutChunk(ctx, job.DocID, ch)
			})
		}(ch)
	}

	var firstErr error
	for range result.Chunks {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return firstErr
	}

	meta := chunkstore.Meta{
		DocID:       job.DocID,
		Filename:    job.Filename,
		TotalChunks: result.TotalChunks,
		TotalChars:  result.TotalChars,
		ChunkSize:   job.Chunking.ChunkSize,
		Overlap:     job.Chunking.ChunkOverlap,
		CreatedAt:   job.CreatedAt.UTC().Truncate(time.Second),
	}
	if ct, ok := ext.Metadata["content_type"].(string); ok {
		meta.ContentType = ct
	}
	if h, ok := ext.Metadata["content_hash"].(string); ok {
		meta.ContentHash = h
	}
	return withRetry(ctx, w.log, "put meta", func() error {
		return w.store.PutMeta(ctx, meta)
	})
}
