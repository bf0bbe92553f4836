package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/models"
)

// noResultsAnswer is returned when retrieval finds nothing to ground an
// answer in.
const noResultsAnswer = "I couldn't find any relevant documents for your question. Try rephrasing it, or upload documents that cover this topic."

func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Filename == "" || req.Content == "" {
		s.respondError(w, http.StatusBadRequest, "filename and content are required")
		return
	}

	parsed, err := s.extractor.Extract(req.Filename, req.Content)
	if err != nil {
		s.respondError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	req.Content = parsed.Text

	s.logger.Debug("ingest request", zap.String("filename", req.Filename), zap.String("category", req.Category))
	result := s.engine.Ingest(r.Context(), req)
	if !result.Success {
		s.respondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	docs, err := s.registry.List(r.Context(), category)
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	if !s.engine.Remove(r.Context(), id) {
		s.respondError(w, http.StatusInternalServerError, "deletion failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("top_k", req.TopK))
	matches := s.engine.Retrieve(r.Context(), req.Query, req.TopK, req.Category)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

// handleChat runs the full answer pipeline: retrieve, generate from the top
// chunks, filter, then enhance. Retrieval failure short-circuits to a
// no-results answer instead of generating from nothing.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	ctx := r.Context()
	matches := s.engine.Retrieve(ctx, req.Query, req.TopK, req.Category)
	if len(matches) == 0 {
		s.respondJSON(w, http.StatusOK, models.ChatResponse{
			Answer:        noResultsAnswer,
			IsAppropriate: true,
			Sources:       []models.SearchMatch{},
		})
		return
	}

	contextChunks := make([]string, 0, s.contextChunks)
	for i, m := range matches {
		if i == s.contextChunks {
			break
		}
		contextChunks = append(contextChunks, m.Text)
	}

	answer, err := s.generator.Generate(ctx, req.Query, strings.Join(contextChunks, "\n\n"))
	if err != nil {
		s.logger.Error("generation failed", zap.Error(err))
		answer = generation.Apology
	}

	filtered := s.filter.Filter(answer, req.Query, contextChunks)
	enhanced := s.filter.EnhanceWithMetadata(filtered, matches)

	s.respondJSON(w, http.StatusOK, models.ChatResponse{
		Answer:        enhanced,
		Confidence:    filtered.Confidence,
		Flags:         filtered.Flags,
		IsAppropriate: filtered.IsAppropriate,
		Sources:       matches,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
