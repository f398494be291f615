package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/iglide21/BabyBuddy-sub001/internal/api"
	"github.com/iglide21/BabyBuddy-sub001/internal/auth"
	"github.com/iglide21/BabyBuddy-sub001/internal/metrics"
)

func newServeCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), env)
		},
	}
}

// runServe blocks until SIGINT or SIGTERM, then drains in-flight requests
// for up to cfg.ShutdownTimeout.
func runServe(ctx context.Context, env *runtimeEnv) error {
	cfg, logger := env.cfg, env.logger
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := env.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("closing storage: %v", err)
		}
	}()

	provider, err := auth.NewProvider(cfg, logger)
	if err != nil {
		return err
	}
	app := api.NewApplication(logger, store, metrics.NewCollector("babymax"))
	srv := api.NewServer(cfg, api.NewRouter(app, provider))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server running on %s (env=%s, storage=%s)", cfg.HTTPAddr, cfg.Env, cfg.DBType)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Infof("Server stopped")
	return nil
}
