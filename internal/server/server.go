// Package server exposes the assistant over a websocket endpoint plus the
// usual operational surface: /healthz for liveness and /metrics for
// Prometheus scrapes. Each websocket connection is one conversation; the
// server keeps one agent per user id so a reconnecting client resumes its
// conversation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayfarer-ai/wayfarer/internal/agent"
	"github.com/wayfarer-ai/wayfarer/internal/config"
	"github.com/wayfarer-ai/wayfarer/internal/observe"
	"github.com/wayfarer-ai/wayfarer/internal/profile"
)

const shutdownGrace = 10 * time.Second

// AgentFactory builds the agent owning one user's conversation.
type AgentFactory func(userID string) *agent.Agent

// clientMessage is one inbound websocket frame.
type clientMessage struct {
	// Type is "message" (default when empty), "interrupt", or "feedback".
	Type   string `json:"type,omitempty"`
	UserID string `json:"user_id"`
	Text   string `json:"text,omitempty"`
	// Image carries an optional base64-encoded photo.
	Image string `json:"image,omitempty"`
	// Heard is the reply prefix the user heard before interrupting.
	Heard string `json:"heard,omitempty"`
	// Rating and Item carry a feedback frame's payload; Text doubles as the
	// comment.
	Rating int    `json:"rating,omitempty"`
	Item   string `json:"item,omitempty"`
}

// serverMessage is one outbound websocket frame.
type serverMessage struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// Server is the websocket front end.
type Server struct {
	cfg      config.ServerConfig
	logger   *slog.Logger
	metrics  *observe.Metrics
	newAgent AgentFactory

	mu     sync.Mutex
	agents map[string]*agent.Agent

	httpSrv *http.Server
}

// New creates a server. newAgent is called once per user id.
func New(cfg config.ServerConfig, newAgent AgentFactory, logger *slog.Logger, metrics *observe.Metrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		newAgent: newAgent,
		agents:   make(map[string]*agent.Agent),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           observe.Middleware(metrics)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then drains with a short grace period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if tls := s.cfg.TLS; tls != nil {
			err = s.httpSrv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = s.httpSrv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.InfoContext(ctx, "server listening", "addr", s.cfg.ListenAddr)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen on %s: %w", s.cfg.ListenAddr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// agentFor returns the existing agent for userID or creates one.
func (s *Server) agentFor(userID string) *agent.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.agents[userID]; ok {
		return a
	}
	a := s.newAgent(userID)
	s.agents[userID] = a
	return a
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.WarnContext(r.Context(), "websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection dropped")

	ctx := r.Context()
	s.metrics.ActiveConversations.Add(ctx, 1)
	defer s.metrics.ActiveConversations.Add(context.WithoutCancel(ctx), -1)

	// Turns run off the read loop so interrupt frames are seen while a
	// reply is still being produced.
	out := &wsWriter{conn: conn, logger: s.logger}
	var turns sync.WaitGroup
	defer turns.Wait()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				conn.Close(websocket.StatusNormalClosure, "bye")
				return
			}
			if ctx.Err() == nil {
				s.logger.WarnContext(ctx, "websocket read failed", "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			out.write(ctx, serverMessage{Error: "无法解析请求"})
			continue
		}
		if msg.UserID == "" {
			out.write(ctx, serverMessage{Error: "缺少 user_id"})
			continue
		}

		a := s.agentFor(msg.UserID)
		switch msg.Type {
		case "interrupt":
			a.Interrupt(msg.Heard)
		case "", "message":
			turns.Add(1)
			go func() {
				defer turns.Done()
				reply := a.HandleTurn(ctx, msg.Text, msg.Image)
				out.write(ctx, serverMessage{Reply: reply})
			}()
		case "feedback":
			res := a.Feedback(ctx, profile.Feedback{
				Rating:  msg.Rating,
				Item:    msg.Item,
				Comment: msg.Text,
			})
			if res.Status == profile.StatusError {
				out.write(ctx, serverMessage{Error: res.Message})
			} else {
				out.write(ctx, serverMessage{Reply: res.Message})
			}
		default:
			out.write(ctx, serverMessage{Error: "未知的消息类型: " + msg.Type})
		}
	}
}

// wsWriter serializes outbound frames. The websocket connection allows only
// one concurrent writer, and turn goroutines reply alongside the read loop.
type wsWriter struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	logger *slog.Logger
}

func (w *wsWriter) write(ctx context.Context, msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.Write(ctx, websocket.MessageText, data); err != nil {
		w.logger.WarnContext(ctx, "websocket write failed", "error", err)
	}
}
