package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AlexandraB-C/PR-LAB-4/internal/replication"
	"github.com/AlexandraB-C/PR-LAB-4/internal/role"
)

const (
	contentTypeJSON        = "application/json"
	requestIDHeader        = "X-Request-Id"
	defaultShutdownTimeout = 5 * time.Second
)

// Server exposes a node over HTTP.
type Server struct {
	node       *Node
	httpServer *http.Server
	addr       string
}

// NewServer creates an HTTP server for the node.
func NewServer(n *Node, addr string) *Server {
	return &Server{node: n, addr: addr}
}

// Handler builds the router. Exposed separately so tests can mount it on
// an httptest server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Get("/kv/{key}", s.handleRead)
	r.Put("/kv/{key}", s.handleWrite)
	r.Delete("/kv/{key}", s.handleDelete)
	r.Post("/replicate", s.handleReplicate)

	return r
}

// Start begins serving and blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	log.Printf("[%s] listening on %s", s.node.Role(), s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http serve: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// requestID tags every request with a correlation ID, generating one when
// the caller did not send one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type writeRequest struct {
	Value *string `json:"value"`
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	entry, ok := s.node.Read(key)
	if !ok {
		writeError(w, http.StatusNotFound, "Key does not exist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"key":     key,
		"value":   entry.Value,
		"version": entry.Version,
	})
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, "request body must be {\"value\": string}")
		return
	}

	outcome, err := s.node.SubmitWrite(r.Context(), key, *req.Value)
	if err != nil {
		s.writeOutcomeError(w, r, err, outcome)
		return
	}

	log.Printf("[%s] write key=%s version=%d acks=%d", s.node.Role(), key, outcome.Version, outcome.Acks)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Write successful",
		"key":     key,
		"value":   *req.Value,
		"version": outcome.Version,
		"acks":    outcome.Acks,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	outcome, err := s.node.SubmitDelete(r.Context(), key)
	if err != nil {
		s.writeOutcomeError(w, r, err, outcome)
		return
	}

	log.Printf("[%s] delete key=%s version=%d acks=%d", s.node.Role(), key, outcome.Version, outcome.Acks)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Delete successful",
		"key":     key,
		"version": outcome.Version,
		"acks":    outcome.Acks,
	})
}

func (s *Server) handleReplicate(w http.ResponseWriter, r *http.Request) {
	var rec replication.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "malformed replication record")
		return
	}

	if _, err := s.node.ReceiveReplication(rec); err != nil {
		var roleErr *role.Error
		if errors.As(err, &roleErr) {
			writeError(w, http.StatusForbidden, roleErr.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Stale and duplicate records report success too: the follower has
	// processed the record, dropping it was the correct outcome.
	writeJSON(w, http.StatusOK, map[string]any{"status": "replicated"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.node.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// writeOutcomeError maps core errors for writes and deletes onto status
// codes: role violations 403, missing keys 404, quorum failures 500.
func (s *Server) writeOutcomeError(w http.ResponseWriter, r *http.Request, err error, outcome replication.Outcome) {
	var roleErr *role.Error
	var quorumErr *replication.QuorumError

	switch {
	case errors.As(err, &roleErr):
		writeError(w, http.StatusForbidden, roleErr.Error())
	case errors.Is(err, replication.ErrKeyNotFound):
		writeError(w, http.StatusNotFound, "Key does not exist")
	case errors.As(err, &quorumErr):
		log.Printf("[%s] %s %s: %v", s.node.Role(), r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    quorumErr.Error(),
			"acks":     quorumErr.Acks,
			"required": quorumErr.Required,
			"version":  outcome.Version,
		})
	default:
		log.Printf("[%s] %s %s: %v", s.node.Role(), r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
