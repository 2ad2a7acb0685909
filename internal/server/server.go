// Package server exposes the management API: REST routes for tool
// functions, agents, models and lookups, plus a WebSocket change-event
// stream for editor UIs.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/soyeahso/toolforge/internal/agents"
	"github.com/soyeahso/toolforge/internal/config"
	"github.com/soyeahso/toolforge/internal/funcstore"
	"github.com/soyeahso/toolforge/internal/logging"
	"github.com/soyeahso/toolforge/internal/store"
	"github.com/soyeahso/toolforge/internal/weather"
)

// Server is the toolforge management HTTP + WebSocket server.
type Server struct {
	cfg    config.Config
	token  string
	log    *logging.Logger
	tools  *funcstore.Store
	agents *agents.Manager
	hub    *Hub

	// Optional collaborators. Nil disables the matching routes.
	revisions *store.RevisionStore
	lookup    *weather.Client

	startedAt  time.Time
	httpServer *http.Server
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithRevisions enables the /api/tools/{name}/history route.
func WithRevisions(rs *store.RevisionStore) ServerOption {
	return func(s *Server) {
		s.revisions = rs
	}
}

// WithLookup enables the /api/lookup routes.
func WithLookup(c *weather.Client) ServerOption {
	return func(s *Server) {
		s.lookup = c
	}
}

// New creates a management server over the given stores.
func New(cfg config.Config, log *logging.Logger, tools *funcstore.Store, agentMgr *agents.Manager, opts ...ServerOption) *Server {
	s := &Server{
		cfg:    cfg,
		token:  ResolveToken(cfg.Server.Auth),
		log:    log.Sub("server"),
		tools:  tools,
		agents: agentMgr,
	}
	s.hub = NewHub(log, cfg.Server.AllowedOrigins)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start begins listening. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg.Server)

	handler := withMiddleware(s.routes(), s.log, s.cfg.Server.AllowedOrigins)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.cfg.Server.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(s.cfg.Server.TLS.CertPath, s.cfg.Server.TLS.KeyPath)
		if err != nil {
			ln.Close()
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		tlsCfg := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		ln = tls.NewListener(ln, tlsCfg)
		s.log.Info().Msg("TLS enabled")
	} else if s.cfg.Server.Bind != "loopback" && s.cfg.Server.Bind != "" {
		s.log.Warn().Msg("TLS is not enabled; the auth token will be transmitted in cleartext")
	}

	s.startedAt = time.Now()

	authMode := "token"
	if s.token == "" {
		authMode = "none"
	}
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Server.Bind).
		Str("auth", authMode).
		Bool("history", s.revisions != nil).
		Msg("management server ready")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down management server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.hub.CloseAll()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}
