package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/project-finance/internal/server"
	"github.com/iwvelando/project-finance/internal/snapshot"
	"github.com/iwvelando/project-finance/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var serverConfig, address, maxUploadSize string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(serverConfig)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}
			if maxUploadSize != "" {
				size, err := server.ParseSize(maxUploadSize)
				if err != nil {
					return err
				}
				cfg.SetUploadSizeBytes(size)
			}

			logger, err := initializeLogger(cfg.Logging, opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, logger, cfg)
		},
	}
	cmd.Flags().StringVar(&serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override, e.g. :8080")
	cmd.Flags().StringVar(&maxUploadSize, "max-upload-size", "", "request body limit override, e.g. 512K")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, logger *zap.Logger, cfg *server.Config) error {
	// An unreachable snapshot backend disables the snapshot routes only.
	store, err := snapshot.New(ctx, logger, cfg.Snapshots)
	if err != nil {
		logger.Warn("snapshot store unavailable",
			zap.String("op", "main.serve"),
			zap.String("backend", cfg.Snapshots.Backend),
			zap.Error(err),
		)
		store = nil
	} else {
		defer store.Close()
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, cfg.UploadSizeBytes(), version, store),
		ReadTimeout:       cfg.ReadTimeoutDuration(),
		ReadHeaderTimeout: cfg.ReadTimeoutDuration(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Address),
			zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down", zap.String("op", "main.serve"))
	return srv.Shutdown(shutdownCtx)
}
