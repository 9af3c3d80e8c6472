// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"expvar"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/november7/memberbot/internal/catalog"
	"github.com/november7/memberbot/internal/common"
	"github.com/november7/memberbot/internal/llm"
	"github.com/november7/memberbot/internal/qa"
	"github.com/november7/memberbot/internal/retriever"
)

// Server exposes the question-answering pipeline over HTTP.
type Server struct {
	router       chi.Router
	service      *qa.Service
	retriever    *retriever.Retriever
	provider     llm.Provider
	catalog      *catalog.Store
	messagesPath string
}

func NewServer(service *qa.Service, retr *retriever.Retriever, provider llm.Provider, cat *catalog.Store, messagesPath string) (*Server, error) {
	if service == nil {
		return nil, errors.New("qa service required")
	}
	if retr == nil {
		return nil, errors.New("retriever required")
	}
	srv := &Server{
		router:       chi.NewRouter(),
		service:      service,
		retriever:    retr,
		provider:     provider,
		catalog:      cat,
		messagesPath: messagesPath,
	}
	srv.routes()
	common.Logger().Info("api: server ready", "indexed", retr.Count())
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()
			w.Header().Set("X-Request-Id", requestID)
			next.ServeHTTP(w, r)
			logger.Debug("request", "id", requestID, "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Member Query Bot API is running. Use POST /ask to query.",
		})
	})
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Post("/ask", s.handleAsk)
	s.router.Post("/v1/reindex", s.handleReindex)
	s.router.Get("/v1/logs", s.handleLogs)
	s.router.Get("/debug/vars", expvar.Handler().ServeHTTP)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
