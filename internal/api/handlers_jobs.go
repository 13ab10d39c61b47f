package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docchunk/internal/pipeline"
)

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	upload, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	cfg, err := s.chunkConfig(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Reject bad uploads now rather than in a job nobody may poll.
	if _, _, err := s.conv.Validate(upload); err != nil {
		s.writeError(w, r, err)
		return
	}

	job := pipeline.NewJob(pipeline.KindChunk, upload, cfg)
	if docID := r.FormValue("doc_id"); docID != "" {
		if !validDocID(docID) {
			jsonError(w, "doc_id may only contain letters, digits, '-', '_' and '.'", http.StatusBadRequest)
			return
		}
		job.DocID = docID
	}
	job.Publish = s.orchestrator.Chunkstore() != nil

	if err := s.orchestrator.Submit(job); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"doc_id":   job.DocID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
