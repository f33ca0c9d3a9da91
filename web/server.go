// Package web serves the status and control API of a running simulation set.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/Bucknalla/geobeam/sim"
)

// StatusSource is the part of a simulation set the server reads
type StatusSource interface {
	Status() sim.Status
	AddObserver(func(sim.Status))
}

// Config holds the options for a web server
type Config struct {
	Addr      string
	StaticDir string       // optional directory served at /
	Metrics   http.Handler // optional handler served at /metrics
	Logger    *slog.Logger
}

// Server exposes set status over HTTP and a websocket, and forwards operator
// commands to the set
type Server struct {
	set      StatusSource
	commands *sim.ChannelSource
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[*websocket.Conn]bool
	broadcast chan sim.Status

	router *mux.Router
	http   *http.Server
}

// NewServer creates a server for set. Commands received over HTTP are queued
// on commands, which the set should poll alongside its other inputs.
func NewServer(cfg Config, set StatusSource, commands *sim.ChannelSource) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		set:      set,
		commands: commands,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan sim.Status, 16),
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.handleGetStatus).Methods("GET")
	api.HandleFunc("/command/{name}", s.handleCommand).Methods("POST")
	api.HandleFunc("/ws", s.handleWebSocket)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods("GET")
	}

	r.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	}
	s.router = r

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	set.AddObserver(func(status sim.Status) {
		select {
		case s.broadcast <- status:
		default:
			// Channel full, skip this update
		}
	})
	return s
}

// Handler returns the router, for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	go s.broadcastToClients(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "addr", s.http.Addr)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.set.Status())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	cmd := sim.ParseCommandName(name)
	if cmd == sim.None {
		http.Error(w, "Unknown command: "+name, http.StatusBadRequest)
		return
	}

	if !s.commands.Send(cmd) {
		http.Error(w, "Command queue full", http.StatusServiceUnavailable)
		return
	}

	s.logger.Info("command received", "command", cmd.String(), "remote", r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "command": cmd.String()})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.clients[conn] = true
	// Send current status immediately
	err = conn.WriteJSON(map[string]any{
		"type": "status",
		"data": s.set.Status(),
	})
	total := len(s.clients)
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("error sending status", "err", err)
	}
	s.logger.Info("client connected", "clients", total)

	// Clients may send commands as {"command": "next"}
	for {
		var msg struct {
			Command string `json:"command"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if cmd := sim.ParseCommandName(msg.Command); cmd != sim.None {
			s.commands.Send(cmd)
		}
	}

	s.mu.Lock()
	delete(s.clients, conn)
	total = len(s.clients)
	s.mu.Unlock()
	s.logger.Info("client disconnected", "clients", total)
}

func (s *Server) broadcastToClients(ctx context.Context) {
	for {
		var status sim.Status
		select {
		case <-ctx.Done():
			return
		case status = <-s.broadcast:
		}

		message := map[string]any{
			"type": "status",
			"data": status,
		}

		s.mu.Lock()
		for client := range s.clients {
			if err := client.WriteJSON(message); err != nil {
				s.logger.Warn("websocket write error", "err", err)
				client.Close()
				delete(s.clients, client)
			}
		}
		s.mu.Unlock()
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
