package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	port           int
	logger         *zap.Logger
	allowedOrigins []string
	enableLogging  bool
	readTimeout    time.Duration
	writeTimeout   time.Duration
}

func WithPort(port int) Option {
	return func(o *Options) {
		o.port = port
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

func WithAllowedOrigins(origins ...string) Option {
	return func(o *Options) {
		o.allowedOrigins = append(o.allowedOrigins, origins...)
	}
}

func WithLogging(enabled bool) Option {
	return func(o *Options) {
		o.enableLogging = enabled
	}
}

func WithTimeouts(read, write time.Duration) Option {
	return func(o *Options) {
		o.readTimeout = read
		o.writeTimeout = write
	}
}

type Server struct {
	httpServer *http.Server
	router     chi.Router
	lis        net.Listener
	logger     *zap.Logger
}

// New creates a chi-backed HTTP server using the builder options.
func New(opts ...Option) (*Server, error) {
	options := &Options{
		port:         8080,
		logger:       zap.NewNop(),
		readTimeout:  15 * time.Second,
		writeTimeout: 75 * time.Second,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.port < 1 || options.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 1 and 65535", options.port)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", options.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", options.port, err)
	}

	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http-server")

	router := chi.NewRouter()

	if len(options.allowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: options.allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	if options.enableLogging {
		router.Use(LoggingMiddleware(logger))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		httpServer: &http.Server{
			Handler:      router,
			ReadTimeout:  options.readTimeout,
			WriteTimeout: options.writeTimeout,
		},
		router: router,
		lis:    lis,
		logger: logger,
	}, nil
}

// Router exposes the underlying router so the application can mount routes.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start runs the server in a goroutine and returns immediately.
func (s *Server) Start() {
	s.logger.Info("HTTP server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(s.lis); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
}

// Shutdown gracefully shuts down the server honoring the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("forced shutdown", zap.Error(err))
		_ = s.httpServer.Close()
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
