package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/cli/config"
	controller "github.com/secmon-lab/scantrend/pkg/controller/http"
	"github.com/secmon-lab/scantrend/pkg/domain/interfaces"
	"github.com/secmon-lab/scantrend/pkg/repository"
	"github.com/secmon-lab/scantrend/pkg/service/tabular"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		repoCfg   config.Repository
		outputCfg config.Output
	)

	flags := joinFlags(
		serverCfg.Flags(),
		repoCfg.Flags(),
		outputCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server exposing consolidated datasets",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting scantrend server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("repository", repoCfg),
				slog.Any("output", outputCfg),
			)

			repo, err := openServeRepository(ctx, &repoCfg, &outputCfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			server := controller.NewServer(ctx, serverCfg.Addr, repo)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-errCh:
				return goerr.Wrap(err, "HTTP server error", goerr.V("addr", serverCfg.Addr))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// openServeRepository returns the persistent repository when configured.
// Otherwise the consolidated table in the output directory, if any, is
// loaded into memory.
func openServeRepository(ctx context.Context, repoCfg *config.Repository, outputCfg *config.Output) (interfaces.Repository, error) {
	if repoCfg.IsConfigured() {
		return repoCfg.Configure(ctx)
	}

	logger := ctxlog.From(ctx)
	repo := repository.NewMemory()

	store := outputCfg.Store()
	data, err := store.Get(ctx, outputCfg.DatasetFile)
	if err != nil {
		logger.Warn("No dataset loaded, serving an empty repository",
			"path", store.Path(outputCfg.DatasetFile),
			"error", err)
		return repo, nil
	}

	ds, err := tabular.ReadDataset(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode dataset table",
			goerr.V("path", store.Path(outputCfg.DatasetFile)))
	}
	ds.RunID = "local"
	if info, err := os.Stat(store.Path(outputCfg.DatasetFile)); err == nil {
		ds.CreatedAt = info.ModTime().UTC()
	}

	if err := repo.PutDataset(ctx, ds); err != nil {
		return nil, goerr.Wrap(err, "failed to load dataset")
	}
	logger.Info("Dataset loaded into memory",
		"path", store.Path(outputCfg.DatasetFile),
		"rows", len(ds.Rows))
	return repo, nil
}
