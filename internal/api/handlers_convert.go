package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/convert"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/pipeline"
)

// formOverhead is extra request body allowance for multipart framing.
const formOverhead = 1 << 20

// readUpload parses the multipart "file" field. On failure it has already
// written the response.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (convert.Upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.conv.MaxBytes()+formOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			jsonError(w, s.conv.CheckSize(s.conv.MaxBytes()+1).Error(), http.StatusBadRequest)
		case errors.Is(err, http.ErrNotMultipart):
			jsonError(w, "file is required", http.StatusUnprocessableEntity)
		default:
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		}
		return convert.Upload{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required", http.StatusUnprocessableEntity)
		return convert.Upload{}, false
	}
	defer file.Close()

	if err := s.conv.CheckSize(header.Size); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return convert.Upload{}, false
	}
	data, err := io.ReadAll(io.LimitReader(file, s.conv.MaxBytes()+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return convert.Upload{}, false
	}
	if err := s.conv.CheckSize(int64(len(data))); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return convert.Upload{}, false
	}

	return convert.Upload{
		Filename:    sanitizeFilename(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

// chunkConfig reads chunk_size and chunk_overlap from the query or form,
// falling back to the configured defaults.
func (s *Server) chunkConfig(r *http.Request) (chunker.Config, error) {
	cfg := chunker.Config{
		ChunkSize:    s.cfg.DefaultChunkSize,
		ChunkOverlap: s.cfg.DefaultChunkOverlap,
	}
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"chunk_size", &cfg.ChunkSize},
		{"chunk_overlap", &cfg.ChunkOverlap},
	} {
		v := r.FormValue(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s must be an integer", f.name)
		}
		*f.dst = n
	}
	return cfg, cfg.Validate()
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	upload, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	job := pipeline.NewJob(pipeline.KindExtract, upload, chunker.DefaultConfig())
	if err := s.orchestrator.Run(r.Context(), job); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job.Extraction())
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
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

	job := pipeline.NewJob(pipeline.KindChunk, upload, cfg)
	if err := s.orchestrator.Run(r.Context(), job); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job.Result())
}

type chunkTextRequest struct {
	Text         string             `json:"text"`
	Sections     []document.Section `json:"sections"`
	ChunkSize    *int               `json:"chunk_size"`
	ChunkOverlap *int               `json:"chunk_overlap"`
}

// handleChunkText chunks caller-supplied text without any conversion.
func (s *Server) handleChunkText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.conv.MaxBytes())

	var req chunkTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, s.conv.CheckSize(s.conv.MaxBytes()+1).Error(), http.StatusBadRequest)
			return
		}
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	cfg := chunker.Config{
		ChunkSize:    s.cfg.DefaultChunkSize,
		ChunkOverlap: s.cfg.DefaultChunkOverlap,
	}
	if req.ChunkSize != nil {
		cfg.ChunkSize = *req.ChunkSize
	}
	if req.ChunkOverlap != nil {
		cfg.ChunkOverlap = *req.ChunkOverlap
	}
	if err := cfg.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, chunker.Chunk(req.Text, req.Sections, cfg))
}
