package a2a

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ibranibeny/text2sql"
)

// Version of the A2A protocol surface.
const Version = "3.0.0"

// Server routes JSON-RPC task methods and serves the agent card.
type Server struct {
	handler *Handler
	card    *AgentCard
	apiKey  string
	log     logrus.FieldLogger
}

// NewServer creates a Server. apiKey may be empty to disable authentication
// on the JSON-RPC endpoint; the agent card is always unauthenticated.
func NewServer(handler *Handler, card *AgentCard, apiKey string, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{handler: handler, card: card, apiKey: apiKey, log: log}
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/agent.json", s.handleAgentCard)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /{$}", s.handleRPC)
	return mux
}

func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.card)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"service":  "text2sql-a2a-agent",
		"version":  Version,
		"protocol": "A2A",
	})
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if s.apiKey != "" && r.Header.Get("X-API-Key") != s.apiKey {
		http.Error(w, "invalid or missing API key", http.StatusForbidden)
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeRPCError(w, nil, codeParseError, "Parse error: invalid JSON", nil)
		return
	}
	if req.JSONRPC != "2.0" {
		s.writeRPCError(w, req.ID, codeInvalidRequest, "Invalid Request: jsonrpc must be '2.0'", nil)
		return
	}
	if req.Method == "" {
		s.writeRPCError(w, req.ID, codeInvalidRequest, "Invalid Request: method is required", nil)
		return
	}

	switch req.Method {
	case "tasks/send":
		var params SendParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeRPCError(w, req.ID, codeInvalidRequest, "Invalid params for tasks/send", nil)
			return
		}
		task, err := s.handler.Send(r.Context(), params)
		if err != nil {
			s.writeRPCError(w, req.ID, codeInternalError, "Internal error: "+err.Error(), nil)
			return
		}
		s.writeRPCResult(w, req.ID, task)

	case "tasks/get":
		var params GetParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeRPCError(w, req.ID, codeInvalidRequest, "Invalid params for tasks/get", nil)
			return
		}
		task, err := s.handler.Get(params)
		if err != nil {
			s.writeRPCError(w, req.ID, codeTaskNotFound, "Task not found", map[string]string{"taskId": params.ID})
			return
		}
		s.writeRPCResult(w, req.ID, task)

	case "tasks/cancel":
		var params CancelParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeRPCError(w, req.ID, codeInvalidRequest, "Invalid params for tasks/cancel", nil)
			return
		}
		task, err := s.handler.Cancel(params)
		if err != nil {
			code := codeNotCancelable
			if text2sql.HasCode(err, text2sql.ErrCodeTaskNotFound) {
				code = codeTaskNotFound
			}
			s.writeRPCError(w, req.ID, code, err.Error(), map[string]string{"taskId": params.ID})
			return
		}
		s.writeRPCResult(w, req.ID, task)

	default:
		s.writeRPCError(w, req.ID, codeMethodNotFound, "Method not found: "+req.Method, map[string]any{
			"supportedMethods": []string{"tasks/send", "tasks/get", "tasks/cancel"},
		})
	}
}

func (s *Server) writeRPCResult(w http.ResponseWriter, id any, result any) {
	s.writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) writeRPCError(w http.ResponseWriter, id any, code int, message string, data any) {
	s.writeJSON(w, http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message, Data: data},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("write response")
	}
}
