// Package syncserver serves an editor's tool settings over HTTP and streams
// every change to WebSocket clients.
package syncserver

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/inkpad/internal/errors"
	"github.com/vango-dev/inkpad/pkg/localization"
	"github.com/vango-dev/inkpad/pkg/settings"
	"github.com/vango-dev/inkpad/pkg/store"
	"github.com/vango-dev/inkpad/pkg/telemetry"
)

// maxBodySize bounds request bodies.
const maxBodySize = 64 << 10

// Server is the settings HTTP/WebSocket server.
type Server struct {
	editor  *settings.Editor
	store   store.Store
	metrics *telemetry.Metrics
	config  *Config

	upgrader   websocket.Upgrader
	router     chi.Router
	httpServer *http.Server

	clientsMu sync.Mutex
	clients   map[*client]struct{}

	logger *slog.Logger
}

// New creates a server for editor, persisting snapshots to st.
// metrics may be nil.
func New(editor *settings.Editor, st store.Store, metrics *telemetry.Metrics, config *Config) *Server {
	config = config.withDefaults()

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		editor:  editor,
		store:   st,
		metrics: metrics,
		config:  config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
		clients: make(map[*client]struct{}),
		logger:  logger.With("component", "syncserver"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", s.handleGetSettings)
		r.Post("/settings/save", s.handleSave)
		r.Post("/settings/load", s.handleLoad)
		r.Put("/settings/{path}", s.handleApply)
		r.Get("/strings", s.handleStrings)
	})

	r.Get("/ws", s.HandleWebSocket)
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

// applyRequest is the body of PUT /api/settings/{path}.
type applyRequest struct {
	Value json.RawMessage `json:"value"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")

	var req applyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		s.writeError(w, errors.New("E102").WithDetail("request body").Wrap(err))
		return
	}
	if len(req.Value) == 0 {
		s.writeError(w, errors.New("E102").WithDetail(path).WithSuggestion(`Send {"value": ...}`))
		return
	}
	if err := s.editor.Apply(path, req.Value); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Save(r.Context(), s.config.Document, s.editor.Snapshot()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"document": s.config.Document})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context(), s.config.Document)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.editor.Restore(snap); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.editor.Snapshot())
}

func (s *Server) handleStrings(w http.ResponseWriter, r *http.Request) {
	prefs := []string{r.URL.Query().Get("lang"), r.Header.Get("Accept-Language")}
	strs := localization.For(prefs...)
	labels := strs.Labels()
	labels["summary"] = s.editor.SummaryIn(strs)
	writeJSON(w, http.StatusOK, labels)
}

// errorResponse is the JSON body of a failed request.
type errorResponse struct {
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.CodeOf(err) {
	case "E101", "E201":
		status = http.StatusNotFound
	case "E102":
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}

	resp := errorResponse{Code: errors.CodeOf(err), Message: err.Error()}
	var ie *errors.InkError
	if stderrors.As(err, &ie) {
		resp.Suggestion = ie.Suggestion
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.config.Address,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every WebSocket client and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.clientsMu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.clientsMu.Unlock()
	for _, c := range clients {
		c.close(false)
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}
