package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleGetDocument returns a published document's meta and chunks.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if !validDocID(docID) {
		jsonError(w, "invalid doc_id", http.StatusBadRequest)
		return
	}

	doc, err := s.orchestrator.Chunkstore().GetDocument(r.Context(), docID)
	if err != nil {
		s.log.Error("read document failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to read document", http.StatusBadGateway)
		return
	}
	if doc == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteDocument deletes a document and all its stored chunks.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if !validDocID(docID) {
		jsonError(w, "invalid doc_id", http.StatusBadRequest)
		return
	}

	if err := s.orchestrator.Chunkstore().DeleteDocument(r.Context(), docID); err != nil {
		s.log.Error("delete document failed", "doc_id", docID, "error", err)
		jsonError(w, "failed to delete document", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}
