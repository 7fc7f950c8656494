package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/ripple/internal/metrics"
	"github.com/aretw0/ripple/pkg/session"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

const wsWriteTimeout = 5 * time.Second

// SubscribeEvents handles GET /sessions/{id}/events (SSE). Each frame is
// sent as an event named after its kind, with the frame sequence as ID.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "id")
	ch, cancel, err := s.Sessions.Subscribe(r.Context(), sessionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer cancel()

	metrics.StreamSubscribers.WithLabelValues("sse").Inc()
	defer metrics.StreamSubscribers.WithLabelValues("sse").Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.logger.Info("SSE: Client subscribed", "session_id", sessionID)

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "session_id", sessionID)
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case payload, ok := <-ch:
			if !ok {
				return
			}
			if f, err := session.DecodeFrame(payload); err == nil {
				fmt.Fprintf(w, "event: %s\nid: %d\n", f.Kind, f.Seq)
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// SubscribeWebSocket handles GET /sessions/{id}/ws. Frames are sent as text
// messages; anything the client sends is discarded.
func (s *Server) SubscribeWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if _, err := s.Sessions.Get(sessionID); err != nil {
		s.fail(w, r, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:       s.originPatterns,
		CompressionMode:      websocket.CompressionContextTakeover,
		CompressionThreshold: 128,
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow() //nolint:errcheck // best-effort close on teardown

	ctx := conn.CloseRead(r.Context())

	ch, cancel, err := s.Sessions.Subscribe(ctx, sessionID)
	if err != nil {
		conn.Close(websocket.StatusPolicyViolation, err.Error()) //nolint:errcheck // best-effort
		return
	}
	defer cancel()

	metrics.StreamSubscribers.WithLabelValues("websocket").Inc()
	defer metrics.StreamSubscribers.WithLabelValues("websocket").Dec()

	s.logger.Info("WS: Client subscribed", "session_id", sessionID)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("WS: Client disconnected", "session_id", sessionID)
			return
		case payload, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "session closed") //nolint:errcheck // best-effort
				return
			}
			if err := write(ctx, conn, payload); err != nil {
				s.logger.Debug("WS: write failed", "session_id", sessionID, "err", err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
