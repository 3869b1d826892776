package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/scantrend/pkg/cli/config"
	"github.com/secmon-lab/scantrend/pkg/service/storage"
	"github.com/secmon-lab/scantrend/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdFetch() *cli.Command {
	var (
		gitlabCfg  config.GitLab
		storageCfg config.Storage
		outDir     string
	)

	return &cli.Command{
		Name:  "fetch",
		Usage: "Export recent CI pipelines of a branch with their jobs as JSON",
		Flags: joinFlags(
			gitlabCfg.Flags(),
			storageCfg.Flags(),
			[]cli.Flag{
				&cli.StringFlag{
					Name:        "out-dir",
					Usage:       "Directory receiving the export",
					Category:    "Output",
					Value:       ".",
					Sources:     cli.EnvVars("SCANTREND_FETCH_OUT_DIR"),
					Destination: &outDir,
				},
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("Fetching pipelines",
				slog.Any("gitlab", gitlabCfg),
				slog.Any("storage", storageCfg),
				slog.String("out_dir", outDir),
			)

			client, err := gitlabCfg.Configure()
			if err != nil {
				return err
			}

			opts := []usecase.FetcherOption{
				usecase.WithFetchStore(storage.NewLocal(outDir)),
			}

			s3, err := storageCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if s3 != nil {
				opts = append(opts, usecase.WithFetchStore(s3.Sub("gitlab")))
			}

			fetcher := usecase.NewFetcher(client, gitlabCfg.Project, gitlabCfg.Ref, gitlabCfg.Days, opts...)
			name, err := fetcher.Fetch(ctx)
			if err != nil {
				return err
			}
			if name == "" {
				return nil
			}

			_, err = fmt.Fprintln(c.Root().Writer, name)
			return err
		},
	}
}
