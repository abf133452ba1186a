package server

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/Brownie44l1/fileserver/internal/response"
)

var (
	ErrBind         = errors.New("failed to create listening socket")
	ErrServerClosed = errors.New("server closed")
)

// Server accepts connections and serves each one from its own goroutine.
type Server struct {
	Logger Logger

	config   Config
	root     billy.Filesystem
	errPages *response.ErrorResponder
	metrics  *Metrics
	sem      chan struct{}

	mu       sync.Mutex
	listener net.Listener
	closed   atomic.Bool
}

func New(config Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	root := config.Filesystem
	if root == nil {
		root = osfs.New(config.DocumentRoot)
	}

	s := &Server{
		Logger:  NewDefaultLogger(),
		config:  config,
		root:    root,
		metrics: NewMetrics(),
		errPages: &response.ErrorResponder{
			FS:   root,
			Page: config.NotFoundPage,
		},
	}
	if config.MaxConnections > 0 {
		s.sem = make(chan struct{}, config.MaxConnections)
	}
	return s, nil
}

// ListenAndServe binds the configured port and serves until the listener
// fails or Close is called. A bind failure is wrapped in ErrBind.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("%w on port %d: %w", ErrBind, s.config.Port, err)
	}
	return s.Serve(ln)
}

// Serve runs the accept loop on ln. It returns ErrServerClosed after Close,
// or the accept error that stopped it. Handler failures never reach here.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	s.Logger.Info("listening",
		Field{"addr", ln.Addr().String()},
		Field{"root", s.root.Root()},
	)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			s.Logger.Error("server socket shut down unexpectedly", Field{"error", err})
			ln.Close()
			return fmt.Errorf("accept: %w", err)
		}

		s.metrics.ConnectionsTotal.Add(1)
		s.Logger.Info("connection accepted", Field{"remote_addr", remoteAddr(conn)})

		s.dispatch(conn)
	}
}

// dispatch hands conn to a new goroutine. With MaxConnections set the accept
// loop waits here for a free slot.
func (s *Server) dispatch(conn net.Conn) {
	if s.sem != nil {
		s.sem <- struct{}{}
	}

	go func() {
		if s.sem != nil {
			defer func() { <-s.sem }()
		}
		s.HandleConn(conn)
	}()
}

// Close stops the accept loop. In-flight handlers run to completion.
func (s *Server) Close() error {
	s.closed.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
