package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/cli/config"
	"github.com/secmon-lab/scantrend/pkg/utils/apperr"
	"github.com/urfave/cli/v3"
)

// Version is the application version
const Version = "0.1.0"

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg    config.Logger
		telemetryCfg config.Telemetry
		logger       = slog.Default()
		shutdown     func(context.Context) error
	)

	app := &cli.Command{
		Name:    "scantrend",
		Usage:   "Security scan trend dataset builder",
		Version: Version,
		Flags:   joinFlags(loggerCfg.Flags(), telemetryCfg.Flags()),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Configure logger
			l, err := loggerCfg.Configure()
			if err != nil {
				return nil, err
			}
			logger = l

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			shutdown, err = telemetryCfg.Configure(ctx, Version)
			if err != nil {
				return nil, err
			}
			logger.Debug("telemetry configured", slog.Any("telemetry", telemetryCfg))
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if shutdown == nil {
				return nil
			}
			if err := shutdown(ctx); err != nil {
				logger.Warn("failed to flush traces", "error", err)
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdTimeline(),
			cmdScan(),
			cmdConsolidate(),
			cmdRun(),
			cmdReport(),
			cmdFetch(),
			cmdServe(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		apperr.Handle(ctxlog.With(ctx, logger), err)
		return goerr.Wrap(err, "CLI execution failed")
	}

	return nil
}
