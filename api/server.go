package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/davefol/sudoku-with-friends/game/room"
	"github.com/davefol/sudoku-with-friends/transport/websocket"
)

// Server routes HTTP traffic to the WebSocket gateway and the small
// operational endpoints around it.
type Server struct {
	registry  *room.Registry
	hub       *websocket.Hub
	log       *slog.Logger
	router    *mux.Router
	staticDir string
}

// NewServer creates the HTTP server. staticDir may be empty, in which
// case no files are served and the process is WebSocket-only.
func NewServer(registry *room.Registry, hub *websocket.Hub, log *slog.Logger, staticDir string) *Server {
	s := &Server{
		registry:  registry,
		hub:       hub,
		log:       log,
		router:    mux.NewRouter(),
		staticDir: staticDir,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/stats", s.handleStats).Methods("GET")
	s.router.HandleFunc("/ws", s.hub.ServeWS)

	if s.staticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int{
		"rooms":       s.registry.Count(),
		"connections": s.hub.ConnectionCount(),
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
