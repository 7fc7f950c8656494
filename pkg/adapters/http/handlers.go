package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aretw0/ripple/internal/presentation/graph"
	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/dsl"
	"github.com/aretw0/ripple/pkg/session"
	"github.com/go-chi/chi/v5"
)

type addNodeRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type addEdgeRequest struct {
	A string `json:"a" validate:"required"`
	B string `json:"b" validate:"required"`
}

type startRequest struct {
	Start string `json:"start" validate:"required"`
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Create(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.Sessions.List()})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /sessions/{id}/graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Workspace.View())
}

// PutGraph handles PUT /sessions/{id}/graph. The body is a fixture document
// in YAML or JSON; the previous graph and traversal are discarded.
func (s *Server) PutGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.badRequest(w, r, fmt.Errorf("failed to read body: %w", err))
		return
	}
	fx, err := dsl.Parse(data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ids, err := sess.Workspace.Load(r.Context(), fx)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := map[string]any{"ids": ids}
	if fx.Start != "" {
		resp["start"] = ids[fx.Start]
	}
	writeJSON(w, http.StatusOK, resp)
}

// ClearGraph handles DELETE /sessions/{id}/graph.
func (s *Server) ClearGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Workspace.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// AddNode handles POST /sessions/{id}/nodes.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body addNodeRequest
	if r.ContentLength != 0 && !s.decode(w, r, &body) {
		return
	}
	pos := domain.Position{X: body.X, Y: body.Y}
	id := sess.Workspace.AddNodeAt(pos)
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "position": pos})
}

// AddEdge handles POST /sessions/{id}/edges.
func (s *Server) AddEdge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body addEdgeRequest
	if !s.decode(w, r, &body) {
		return
	}
	added, err := sess.Workspace.AddEdge(body.A, body.B)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"added": added,
		"edge":  domain.NewEdgeKey(body.A, body.B),
	})
}

// GetTraversal handles GET /sessions/{id}/traversal.
func (s *Server) GetTraversal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Workspace.Snapshot())
}

// StartTraversal handles POST /sessions/{id}/traversal.
func (s *Server) StartTraversal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body startRequest
	if !s.decode(w, r, &body) {
		return
	}
	if err := sess.Workspace.Start(r.Context(), body.Start); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, sess.Workspace.Snapshot())
}

// ResetTraversal handles DELETE /sessions/{id}/traversal.
func (s *Server) ResetTraversal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Workspace.Reset(r.Context())
	writeJSON(w, http.StatusOK, sess.Workspace.Snapshot())
}

// GetMermaid handles GET /sessions/{id}/mermaid.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap := sess.Workspace.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(sess.Workspace.View(), &snap))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.badRequest(w, r, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.badRequest(w, r, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("Request rejected", "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrUnknownNode):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStart):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, dsl.ErrInvalidFixture), errors.Is(err, dsl.ErrUnknownRef):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("Request failed", "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
