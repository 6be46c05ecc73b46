package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/zeebo/xxh3"

	"github.com/jackzampolin/lectern/internal/resource"
	"github.com/jackzampolin/lectern/internal/store"
	"github.com/jackzampolin/lectern/internal/svcctx"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("GET /documents/{id}", s.handleGetDocument)
	mux.HandleFunc("GET /documents/{id}/pages/{page}/{kind}", s.handleGetResource)
	mux.HandleFunc("POST /documents/{id}/focus", s.handleFocus)
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Sessions  int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Documents: s.library.Len(),
		Sessions:  s.sessions.len(),
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, svcctx.LibraryFrom(r.Context()).List())
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	m, ok := s.library.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleGetResource serves one page resource through the document's
// browse session. Concurrent requests for the same resource share a
// single underlying fetch; a failed fetch is not memoized, so clients
// may simply retry.
func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	logger := svcctx.LoggerFrom(r.Context())

	m, ok := s.library.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	page, err := strconv.Atoi(r.PathValue("page"))
	if err != nil || page < 1 || page > m.PageCount {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("page must be in [1, %d]", m.PageCount))
		return
	}

	kind := resource.Kind(r.PathValue("kind"))
	if !kind.Valid() || !m.HasKind(kind) {
		writeError(w, http.StatusNotFound, "resource kind not available for this document")
		return
	}

	b, err := s.sessions.get(m)
	if err != nil {
		logger.Error("failed to create browse session", "document", m.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to open document")
		return
	}

	v, err := b.store.Get(r.Context(), resource.Key{Page: page, Kind: kind})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "resource not found")
			return
		}
		logger.Warn("resource fetch failed", "document", m.ID, "page", page, "kind", kind, "error", err)
		writeError(w, http.StatusBadGateway, "resource fetch failed")
		return
	}

	etag := fmt.Sprintf(`"%016x"`, xxh3.Hash(v.Data))
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	if v.ContentType != "" {
		w.Header().Set("Content-Type", v.ContentType)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(v.Data)
}

// FocusRequest names the page a client is moving to.
type FocusRequest struct {
	Page int `json:"page"`
}

// FocusResponse reports the focus the controller settled on.
type FocusResponse struct {
	Page int `json:"page"`
}

// handleFocus moves the server-side focus for a document, which
// re-prioritizes prefetching around the new page (nearest-first) so
// the cache is warm when the client asks for neighboring pages.
func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	m, ok := s.library.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	var req FocusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Page < 1 || req.Page > m.PageCount {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("page must be in [1, %d]", m.PageCount))
		return
	}

	b, err := s.sessions.get(m)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to open document")
		return
	}

	b.controller.SetPage(req.Page)
	writeJSON(w, http.StatusAccepted, FocusResponse{Page: b.controller.CurrentPage()})
}

// ErrorResponse is the uniform JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
