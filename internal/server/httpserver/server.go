package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	certFile   string
	keyFile    string
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithTimeouts sets the read and write timeouts. Zero leaves a timeout unset.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.httpServer.ReadTimeout = read
		s.httpServer.WriteTimeout = write
	}
}

// WithTLS serves HTTPS using the given certificate and key files.
func WithTLS(certFile, keyFile string) Option {
	return func(s *Server) {
		s.certFile = certFile
		s.keyFile = keyFile
	}
}

// WithServerLogger sets the logger for server errors.
func WithServerLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates a new HTTP server.
func New(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.httpServer.ErrorLog = slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn)
	return s
}

// TLS reports whether the server serves HTTPS.
func (s *Server) TLS() bool {
	return s.certFile != "" && s.keyFile != ""
}

// ListenAndServe listens on the configured address and serves until
// Shutdown. It returns nil after a graceful shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after a graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	var err error
	if s.TLS() {
		err = s.httpServer.ServeTLS(ln, s.certFile, s.keyFile)
	} else {
		err = s.httpServer.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
