package chat

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blackhat-coder/TcpChat/internal/wire"
)

// Server owns the shared registries and accepts peer connections over two
// transports: framed TCP on the chat address, and WebSocket on the ops
// address next to the Prometheus endpoint.
type Server struct {
	addr    string
	opsAddr string
	logger  *slog.Logger

	names *NameRegistry
	nodes *NodeRegistry
	rooms *RoomRegistry

	listener net.Listener
	ops      *http.Server
	closing  atomic.Bool
}

func NewServer(addr, opsAddr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		opsAddr: opsAddr,
		logger:  logger,
		names:   NewNameRegistry(),
		nodes:   NewNodeRegistry(),
		rooms:   NewRoomRegistry(),
	}
}

// Start begins accepting connections. It returns once the listeners are
// bound; serving happens in background goroutines.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	go s.acceptLoop(ln)

	if s.opsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/ws", s.handleWS)
		s.ops = &http.Server{Addr: s.opsAddr, Handler: mux}
		go func() {
			if err := s.ops.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Error("ops server failed", "error", err)
			}
		}()
	}

	s.logger.Info("server started", "addr", ln.Addr().String(), "ops_addr", s.opsAddr)
	return nil
}

// Addr returns the bound chat listener address.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listeners. Live sessions are not terminated; they drain as
// their peers disconnect.
func (s *Server) Stop() {
	s.logger.Info("shutting down")
	s.closing.Store(true)

	if s.listener != nil {
		s.listener.Close()
	}
	if s.ops != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.ops.Shutdown(ctx)
	}

	s.logger.Info("shutdown complete")
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closing.Load() {
				return
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.logger.Info("peer connected", "addr", conn.RemoteAddr().String())
		go NewSession(wire.NewFrameConn(conn), s.names, s.nodes, s.rooms, s.logger).Run()
	}
}
