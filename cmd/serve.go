package main

import (
	"context"
	"errors"
	"listkeeper/internal/config"
	"listkeeper/internal/maintenance"
	"listkeeper/internal/ops"
	"listkeeper/internal/service"
	"listkeeper/pkg/logger"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config) (metric.MeterProvider, func(ctx context.Context)) {
	server, mp, err := ops.NewServer(ops.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...")
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return mp, func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the maintenance sweeps and the operational HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			mp, stopWebserver := setupServer(ctx, cfg)

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			sweeper, err := maintenance.New(
				service.NewSessions(strg),
				service.NewShares(strg),
				mp.Meter("listkeeper/maintenance"),
				maintenance.NewOptions(cfg),
			)
			if err != nil {
				logger.Fatal(ctx, "could not create sweeper", zap.Error(err))
			}

			logger.Info(ctx, "starting maintenance sweeps...")
			sweeper.Start(ctx)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			sweeper.Stop()
			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
