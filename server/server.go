// Package server is the HTTP surface of EventDash.
//
// Routes:
//
//	GET  /health           liveness
//	POST /v1/transcripts   relay for the telephony server; publishes a finished transcript
//	POST /v1/actions       agent action-group dispatch to the tool registry
//	POST /slack/events     Slack Events API; mentions are answered in thread
//	GET  /ws               websocket chat with the assistant
//
// Slack mentions are answered on a bounded worker pool so the events endpoint can
// acknowledge within Slack's three second window.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/FrostGod/EventDash/provider"
	"github.com/FrostGod/EventDash/session"
	"github.com/FrostGod/EventDash/tool"
	"github.com/FrostGod/EventDash/transcript"
	"github.com/fogfish/opts"
	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/cors"
)

const maxBodyBytes = 1 << 20

// Asker answers a prompt within a conversation thread. *assistant.Assistant satisfies it.
type Asker interface {
	Ask(ctx context.Context, thread *provider.Thread, prompt string) (string, error)
}

// SlackPoster posts replies to Slack. *slack.Client satisfies it.
type SlackPoster interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) (string, error)
}

type Server struct {
	router *mux.Router
	pool   *ants.Pool

	asker         Asker
	sessions      session.Store
	tools         *tool.Registry
	publisher     transcript.Publisher
	transcripts   transcript.Store
	slack         SlackPoster
	signingSecret string
	askTimeout    time.Duration

	allowedOrigins []string
	upgrader       websocket.Upgrader
	now            func() time.Time
	logger         *slog.Logger
}

var (
	WithAsker           = opts.ForName[Server, Asker]("asker")
	WithSessions        = opts.ForName[Server, session.Store]("sessions")
	WithTools           = opts.ForName[Server, *tool.Registry]("tools")
	WithPublisher       = opts.ForName[Server, transcript.Publisher]("publisher")
	WithTranscriptStore = opts.ForName[Server, transcript.Store]("transcripts")
	WithSlack           = opts.ForName[Server, SlackPoster]("slack")
	WithSigningSecret   = opts.ForName[Server, string]("signingSecret")
	WithAskTimeout      = opts.ForName[Server, time.Duration]("askTimeout")
	withClock           = opts.ForName[Server, func() time.Time]("now")
)

// New builds the server. Routes whose collaborator is missing answer 503.
func New(cfg config.Server, options ...opts.Option[Server]) (*Server, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 16
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:         mux.NewRouter(),
		pool:           pool,
		sessions:       session.NewMemoryStore(0),
		askTimeout:     15 * time.Minute,
		allowedOrigins: cfg.AllowedOrigins,
		now:            time.Now,
		logger:         slog.Default().With(slogx.LoggerName("eventdash.server")),
	}
	if err := opts.Apply(s, options); err != nil {
		pool.Release()
		return nil, err
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/transcripts", s.handleTranscript).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/actions", s.handleAction).Methods(http.MethodPost)
	s.router.HandleFunc("/slack/events", s.handleSlackEvent).Methods(http.MethodPost)
	s.router.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)
}

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	origins := s.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Length", "Content-Type"},
	})
	return c.Handler(s.router)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close waits briefly for in-flight background work and releases the worker pool.
func (s *Server) Close() error {
	return s.pool.ReleaseTimeout(10 * time.Second)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.allowedOrigins {
		if o == origin || o == "*" {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
