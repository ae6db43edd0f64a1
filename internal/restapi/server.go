// Package restapi exposes the pipeline as a stateless request/response HTTP
// API: one question in, one answer envelope out, no server-side state.
package restapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ibranibeny/text2sql"
	"github.com/ibranibeny/text2sql/internal/logging"
)

// Version is reported by the health endpoint and service manifest.
const Version = "2.0.0"

// responseRowLimit caps rows echoed back in the envelope; row_count still
// reports the full count.
const responseRowLimit = 50

// Server is the stateless REST adapter.
type Server struct {
	pipeline text2sql.Pipeline
	apiKey   string
	log      logrus.FieldLogger
}

// New creates a Server. apiKey may be empty to disable authentication.
func New(pipeline text2sql.Pipeline, apiKey string, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{pipeline: pipeline, apiKey: apiKey, log: log}
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ask", s.requireAPIKey(s.handleAsk))
	mux.HandleFunc("GET /api/schema", s.requireAPIKey(s.handleSchema))
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /", s.handleRoot)
	return s.withCORS(s.withRequestLog(mux))
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question       string   `json:"question"`
	Answer         string   `json:"answer,omitempty"`
	SQL            string   `json:"sql,omitempty"`
	Columns        []string `json:"columns"`
	Rows           [][]any  `json:"rows"`
	RowCount       int      `json:"row_count"`
	Error          string   `json:"error,omitempty"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
}

type schemaResponse struct {
	SchemaText string `json:"schema_text"`
	TableCount int    `json:"table_count"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Question) < 3 {
		s.writeError(w, http.StatusUnprocessableEntity, "question must be at least 3 characters")
		return
	}

	result, err := s.pipeline.ProcessQuestion(r.Context(), text2sql.QuestionRequest{Question: req.Question})
	if err != nil {
		// Schema, generation, and synthesis failures: generic envelope, no
		// stack traces or credentials.
		s.log.WithError(err).Error("pipeline failure")
		s.writeError(w, http.StatusBadGateway, logging.Mask(err.Error()))
		return
	}

	resp := askResponse{
		Question:       result.Question,
		Answer:         result.Answer,
		SQL:            result.SQL,
		Columns:        []string{},
		Rows:           [][]any{},
		Error:          result.Error,
		ElapsedSeconds: float64(time.Since(start).Round(10*time.Millisecond)) / float64(time.Second),
	}
	if result.Result != nil {
		resp.Columns = result.Result.Columns
		resp.RowCount = result.Result.RowCount()
		rows := result.Result.Rows
		if len(rows) > responseRowLimit {
			rows = rows[:responseRowLimit]
		}
		resp.Rows = rows
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	snap, err := s.pipeline.DescribeSchema(r.Context())
	if err != nil {
		s.log.WithError(err).Error("schema discovery failure")
		s.writeError(w, http.StatusBadGateway, logging.Mask(err.Error()))
		return
	}
	s.writeJSON(w, http.StatusOK, schemaResponse{
		SchemaText: snap.Describe(),
		TableCount: snap.TableCount(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "text2sql-api",
		"version": Version,
	})
}

// handleRoot serves the service manifest: static discovery metadata, no
// authentication, no backend computation.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": "text2sql-api",
		"version": Version,
		"endpoints": map[string]string{
			"ask":     "POST /api/ask",
			"schema":  "GET /api/schema",
			"health":  "GET /api/health",
			"metrics": "GET /metrics",
		},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
