// Package diagnostics serves apcontrold's read-only operational
// surface: a health JSON endpoint, the current access-point registry,
// and a websocket feed of presence events. It is not the control RPC
// surface (out of scope, spec.md §1); it exists so an operator can see
// what the daemon sees. Adapted from the teacher's pkg/web server.
package diagnostics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wifictl/apcontrold/internal/config"
	"github.com/wifictl/apcontrold/internal/health"
	"github.com/wifictl/apcontrold/pkg/wifi/accesspoint"
	"github.com/wifictl/apcontrold/pkg/wifi/discovery"
)

// Registry is the subset of *apmanager.Manager the diagnostics server
// reads from.
type Registry interface {
	GetAll() []*accesspoint.AccessPoint
}

// Server exposes /healthz, /accesspoints and the /presence websocket
// feed.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger

	health   *health.Checker
	registry Registry

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]struct{}
	upgrader  websocket.Upgrader
}

// New constructs a Server bound to addr. checker and registry back the
// /healthz and /accesspoints handlers respectively.
func New(cfg config.HTTPConfig, checker *health.Checker, registry Registry, logger zerolog.Logger) *Server {
	s := &Server{
		logger:   logger,
		health:   checker,
		registry: registry,
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/accesspoints", s.handleAccessPoints)
	mux.HandleFunc("/presence", s.handlePresence)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start runs the HTTP server; it blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("starting diagnostics server")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server and closes any open websocket
// connections.
func (s *Server) Stop(ctx context.Context) error {
	s.clientsMu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clientsMu.Unlock()
	return s.httpServer.Shutdown(ctx)
}

// NotifyPresence fans out a discovery presence event to every
// connected /presence client. Wire it as the downstream of the AP
// manager's own presence callback so every registered access point
// change is visible over the feed.
func (s *Server) NotifyPresence(event discovery.PresenceEvent, ap *accesspoint.AccessPoint) {
	payload := map[string]any{
		"event":     event.String(),
		"interface": ap.InterfaceName,
		"timestamp": time.Now().UTC(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal presence event")
		return
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Debug().Err(err).Msg("failed to deliver presence event to client")
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.health.GetStatus()
	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode health response")
	}
}

func (s *Server) handleAccessPoints(w http.ResponseWriter, r *http.Request) {
	all := s.registry.GetAll()
	summaries := make([]map[string]any, 0, len(all))
	for _, ap := range all {
		summaries = append(summaries, map[string]any{
			"interface_name": ap.InterfaceName,
			"phy_types":      ap.Capabilities.PhyTypes,
			"frequency_bands": ap.Capabilities.FrequencyBands,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summaries); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode access point list")
	}
}

func (s *Server) handlePresence(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to upgrade presence feed connection")
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		conn.Close()
	}()

	// The feed is one-directional; read (and discard) to detect client
	// disconnects and respond to control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
