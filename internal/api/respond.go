package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docchunk/internal/convert"
	"github.com/dgallion1/docchunk/internal/pipeline"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeError maps pipeline and conversion errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case convert.IsClientError(err):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, pipeline.ErrQueueFull), errors.Is(err, pipeline.ErrShuttingDown):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, convert.ErrProcessing):
		jsonError(w, err.Error(), http.StatusInternalServerError)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.log.Warn("request ended before conversion finished", "path", r.URL.Path, "error", err)
		jsonError(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		s.log.Error("unexpected error", "path", r.URL.Path, "error", err)
		jsonError(w, convert.ErrProcessing.Error(), http.StatusInternalServerError)
	}
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

// validDocID accepts ids that are safe to use as a single store key segment.
func validDocID(id string) bool {
	if id == "" || len(id) > 128 || id == "." || id == ".." {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
