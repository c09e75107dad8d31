// Package bridge exposes a localhost WebSocket endpoint that receives page
// snapshots from the capture side and feeds them into the lifecycle
// monitor. The bridge never talks to the trading venue; it only moves
// already-rendered markup between local processes.
package bridge

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ORDEP81/ticketsight/internal/apperror"
	"github.com/ORDEP81/ticketsight/internal/config"
	"github.com/ORDEP81/ticketsight/internal/domtree"
	"github.com/ORDEP81/ticketsight/internal/logger"
	"github.com/ORDEP81/ticketsight/internal/ratelimit"
)

// Frame is one message from the capture side.
type Frame struct {
	Type string `json:"type"` // "snapshot" or "closed"
	HTML string `json:"html,omitempty"`
}

// Frame types.
const (
	FrameSnapshot = "snapshot"
	FrameClosed   = "closed"
)

// SnapshotSink consumes decoded snapshots.
type SnapshotSink interface {
	HandleSnapshot(ctx context.Context, root *domtree.Node)
}

// Server accepts snapshot connections on a loopback address.
type Server struct {
	cfg     config.BridgeConfig
	sink    SnapshotSink
	limiter *ratelimit.Limiter
	logger  logger.LoggerInterface

	httpServer *http.Server
	listener   net.Listener
}

// NewServer builds the bridge. Frames beyond the configured rate are
// dropped, not queued; the next frame carries the full state anyway.
func NewServer(cfg config.BridgeConfig, sink SnapshotSink, log logger.LoggerInterface) *Server {
	rps := cfg.MaxFramesPerSec
	if rps <= 0 {
		rps = 20
	}
	return &Server{
		cfg:     cfg,
		sink:    sink,
		limiter: ratelimit.New(rps, int(rps)),
		logger:  log,
	}
}

// Addr returns the bound listen address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.ListenAddr
	}
	return s.listener.Addr().String()
}

// Start binds the listener and serves in the background until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/snapshots", func(w http.ResponseWriter, r *http.Request) {
		s.handleConn(ctx, w, r)
	})

	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return apperror.Internal(apperror.CodeBridgeClosed, "bind "+s.cfg.ListenAddr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "bridge stopped", "error", err)
		}
	}()
	s.logger.Info(ctx, "bridge listening", "addr", s.Addr())
	return nil
}

// Shutdown drains and closes the bridge.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleConn(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn(ctx, "bridge accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	s.logger.Info(ctx, "capture side connected", "remote", r.RemoteAddr)

	for {
		var frame Frame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) == -1 {
				s.logger.Warn(ctx, "bridge read failed", "error", err)
			}
			return
		}

		if !s.limiter.Allow() {
			s.logger.Debug(ctx, "frame dropped, rate limit", "type", frame.Type)
			continue
		}
		s.dispatch(ctx, frame)
	}
}

func (s *Server) dispatch(ctx context.Context, frame Frame) {
	switch frame.Type {
	case FrameSnapshot:
		root, err := domtree.ParseHTMLString(frame.HTML)
		if err != nil {
			s.logger.Warn(ctx, "snapshot discarded",
				"error", apperror.Wrap(err, apperror.CodeSnapshotDecodeFailed, "snapshot frame"))
			return
		}
		s.sink.HandleSnapshot(ctx, root)
	case FrameClosed:
		// An empty tree reads as "no ticket anywhere", which is exactly
		// what a closed frame means.
		s.sink.HandleSnapshot(ctx, domtree.NewElement("body"))
	default:
		s.logger.Warn(ctx, "unknown frame type", "type", frame.Type)
	}
}
