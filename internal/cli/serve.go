package cli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"grader-content-api/internal/app"
	"grader-content-api/internal/config"
	"grader-content-api/internal/content"
	transport "grader-content-api/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Serve the content API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Store.Driver == config.DriverMemory {
		if err := preload(ctx, store, cfg.Content.DataDir, logger); err != nil {
			return err
		}
	}

	service := app.NewContentService(store)
	mux := http.NewServeMux()
	transport.NewContentHandler(service, logger).Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.WithRequestLogging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting content api", "addr", server.Addr, "driver", cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case err := <-errCh:
		logger.Error("server failed", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// preload seeds an in-memory store from the generated tree at dir, when
// there is one.
func preload(ctx context.Context, store app.DocumentWriter, dir string, logger *slog.Logger) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("no content directory, serving an empty store", "dir", dir)
		return nil
	}
	records, err := content.ReadTree(dir)
	if err != nil {
		return err
	}
	validator, err := content.NewValidator()
	if err != nil {
		return err
	}
	_, err = app.NewSeeder(store, validator, logger).Seed(ctx, records)
	return err
}
