// File path: internal/api/ask_handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/november7/memberbot/internal/common"
	"github.com/november7/memberbot/internal/corpus"
	"github.com/november7/memberbot/internal/vectorindex"
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: ask decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Question == "" {
		logger.Warn("api: ask question missing")
		writeError(w, http.StatusBadRequest, fmt.Errorf("question required"))
		return
	}
	logger.Info("api: ask request received", "question_length", len(req.Question))
	// The answer path is total: degraded outcomes arrive as answer strings,
	// never as HTTP errors.
	answer := s.service.Answer(r.Context(), req.Question)
	writeJSON(w, http.StatusOK, askResponse{Question: req.Question, Answer: answer})
}

type reindexResponse struct {
	Indexed   int `json:"indexed"`
	Dimension int `json:"dimension"`
}

// handleReindex rebuilds the index from the configured messages file and
// swaps the served snapshot atomically. In-flight queries finish against the
// previous snapshot.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	if s.provider == nil || s.catalog == nil || s.messagesPath == "" {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("reindexing not configured"))
		return
	}
	messages, err := corpus.ReadFile(s.messagesPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	index, kept, err := vectorindex.Build(r.Context(), messages, s.provider)
	if err != nil {
		if errors.Is(err, vectorindex.ErrEmptyCorpus) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.catalog.Save(r.Context(), index, kept); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.retriever.Install(index, kept); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: reindex complete", "indexed", index.Len(), "dim", index.Dim())
	writeJSON(w, http.StatusOK, reindexResponse{Indexed: index.Len(), Dimension: index.Dim()})
}
