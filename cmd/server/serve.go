package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"model-serving-adapters/internal/adapters/primary/http/handlers"
	"model-serving-adapters/internal/adapters/primary/http/middleware"
	"model-serving-adapters/internal/adapters/secondary/filesystem"
	"model-serving-adapters/internal/adapters/secondary/tiktoken"
	"model-serving-adapters/internal/config"
	"model-serving-adapters/internal/core/services"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a saved model artifact behind /ping and /invocations",
		Args:  cobra.ExactArgs(0),
		RunE:  runServe,
	}
	cmd.Flags().Int("port", 8080, "Listen port (env SERVER_PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, closer, err := setup(cmd.Flags())
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adapterSvc := services.NewAdapterService(
		filesystem.NewArtifactStore(),
		tiktoken.NewCounter(),
		services.AdapterOptions{RequireField: cfg.Adapter.RequireField},
	)
	h := handlers.New(adapterSvc, nil)

	g, gctx := errgroup.WithContext(ctx)

	// The listener comes up first so the host sees 503 on /ping while loading.
	g.Go(func() error {
		if _, err := adapterSvc.Load(gctx, cfg.Adapter.ModelDir); err != nil {
			return fmt.Errorf("load model artifact from %s: %w", cfg.Adapter.ModelDir, err)
		}
		return nil
	})
	serveHTTP(gctx, g, cfg.Server, newRouter(h))

	return g.Wait()
}

func newRouter(h *handlers.Handler) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	h.RegisterRoutes(router.Group(""))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

// serveHTTP runs the server in g until ctx is done, then shuts it down gracefully.
func serveHTTP(ctx context.Context, g *errgroup.Group, cfg config.ServerConfig, handler http.Handler) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	g.Go(func() error {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced shutdown: %w", err)
		}
		log.Info("server stopped")
		return nil
	})
}
