// Package reportserver serves the lint reports of a project over HTTP and
// reloads them in the browser when lint runs again.
package reportserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/varlint/internal/watch"
)

// DefaultPort is used when no port is configured.
const DefaultPort = 8090

// Config holds configuration for the report server.
type Config struct {
	ReportsDir string
	Port       int
	Logger     *slog.Logger

	// WatchDirs enables watch mode: changes below them re-run Relint and
	// reload connected browsers.
	WatchDirs  []string
	Extensions []string
	Exclude    []string
	Relint     func(ctx context.Context, changed []string) error
}

// Server serves a reports directory.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	notifier *notifier
}

// New creates a report server.
func New(cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{cfg: cfg, logger: logger, notifier: newNotifier()}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
			NoColor: true,
		}),
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/", s.handleIndex)
	r.Get("/reports/{name}", s.handleReport)
	r.Get("/api/reports", s.handleList)
	r.Get("/__reload", s.handleReload)
	return r
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("serving lint reports", "addr", fmt.Sprintf("http://localhost:%d", s.cfg.Port), "dir", s.cfg.ReportsDir)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if len(s.cfg.WatchDirs) > 0 && s.cfg.Relint != nil {
		w := watch.New(watch.Config{
			Dirs:       s.cfg.WatchDirs,
			Exclude:    append([]string{s.cfg.ReportsDir}, s.cfg.Exclude...),
			Extensions: s.cfg.Extensions,
			Logger:     s.logger,
		}, s.relint)
		eg.Go(func() error {
			return w.Run(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down report server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// relint re-runs lint and reloads browsers. Build errors are expected while
// issues remain, so they only get logged.
func (s *Server) relint(ctx context.Context, changed []string) error {
	if err := s.cfg.Relint(ctx, changed); err != nil {
		s.logger.Warn("lint run failed", "error", err)
	}
	s.notifier.broadcast()
	return nil
}
