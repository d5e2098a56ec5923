package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/weddingguard/backend/config"
	"github.com/weddingguard/backend/handler"
	"github.com/weddingguard/backend/middleware"
	"github.com/weddingguard/backend/service"
	"github.com/weddingguard/backend/web"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			slog.Info("configuration loaded successfully")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
			if err != nil {
				return fmt.Errorf("failed to listen: %w", err)
			}
			return serve(ctx, cfg, ln)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port, overrides server.port")
	return cmd
}

// newArchive returns the MinIO archive when enabled, otherwise a bounded
// in-memory one.
func newArchive(ctx context.Context, cfg *config.ArchiveConfig) (service.ReportArchive, error) {
	if !cfg.Enabled {
		slog.Info("report archive disabled, keeping reports in memory",
			"max_reports", cfg.MemoryMaxReports,
			"ttl", cfg.MemoryTTL(),
		)
		return service.NewMemoryArchive(cfg.MemoryMaxReports, cfg.MemoryTTL()), nil
	}

	archive, err := service.NewMinioArchive(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MINIO archive: %w", err)
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure MINIO bucket: %w", err)
	}
	return archive, nil
}

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
	// writeTimeoutMargin covers reading the upload and writing the page
	// around the analysis call.
	writeTimeoutMargin = 60 * time.Second
)

// newHTTPServer builds the server for router. Analysis runs inside the
// request, so there is no body or write deadline unless
// analysis.timeout_seconds bounds the call.
func newHTTPServer(cfg *config.Config, router http.Handler) *http.Server {
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	if timeout := cfg.Analysis.Timeout(); timeout > 0 {
		srv.WriteTimeout = timeout + writeTimeoutMargin
	}
	return srv
}

// serve runs the HTTP server and the session janitor on ln until ctx is
// cancelled, then shuts the server down gracefully.
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	gin.SetMode(gin.ReleaseMode)

	archive, err := newArchive(ctx, &cfg.Archive)
	if err != nil {
		ln.Close()
		return err
	}
	renderer, err := web.NewRenderer()
	if err != nil {
		ln.Close()
		return err
	}
	sessions, err := middleware.NewSessionManager(&cfg.Session)
	if err != nil {
		ln.Close()
		return err
	}

	store := service.NewSessionStore(&cfg.Session)
	h := handler.New(handler.Options{
		Store:          store,
		Analyzer:       service.NewAnalyzerService(&cfg.Analysis),
		Archive:        archive,
		Renderer:       renderer,
		MaxUploadBytes: cfg.Analysis.MaxUploadBytes,
	})
	router, err := handler.NewRouter(cfg, h, sessions, middleware.NewRateLimiter(&cfg.RateLimit))
	if err != nil {
		ln.Close()
		return err
	}

	srv := newHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return store.Run(gctx, cfg.Session.CleanupInterval())
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		slog.Info("server exited gracefully")
		return nil
	})
	return g.Wait()
}
