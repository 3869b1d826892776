package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/scantrend/pkg/cli/config"
	"github.com/secmon-lab/scantrend/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// newPipeline builds a pipeline from the merge-set and output configs. The
// commit resolver is only opened when timeline is given.
func newPipeline(mergeCfg *config.MergeSet, timelineCfg *config.Timeline, outputCfg *config.Output, opts ...usecase.PipelineOption) (*usecase.Pipeline, error) {
	mergeSet, scanners, err := mergeCfg.Configure()
	if err != nil {
		return nil, err
	}

	var timeline *usecase.Timeline
	if timelineCfg != nil {
		bucketing, err := timelineCfg.Bucketing()
		if err != nil {
			return nil, err
		}
		resolver, err := timelineCfg.Resolver()
		if err != nil {
			return nil, err
		}
		timeline = usecase.NewTimeline(mergeSet, resolver, bucketing)
	}

	opts = append([]usecase.PipelineOption{usecase.WithOutputFiles(outputCfg.Files())}, opts...)
	return usecase.NewPipeline(mergeSet, timeline, scanners, outputCfg.Store(), opts...), nil
}

func cmdTimeline() *cli.Command {
	var (
		mergeCfg    config.MergeSet
		timelineCfg config.Timeline
		outputCfg   config.Output
	)

	return &cli.Command{
		Name:  "timeline",
		Usage: "Resolve merged commit timestamps and assign them to periods",
		Flags: joinFlags(mergeCfg.Flags(), timelineCfg.Flags(), outputCfg.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("Building timeline",
				slog.Any("merge_set", mergeCfg),
				slog.Any("timeline", timelineCfg),
				slog.Any("output", outputCfg),
			)

			pipeline, err := newPipeline(&mergeCfg, &timelineCfg, &outputCfg)
			if err != nil {
				return err
			}

			tl, err := pipeline.BuildTimeline(ctx)
			if err != nil {
				return err
			}

			logger.Info("Timeline built",
				"commits", len(tl.Entries),
				"periods", tl.Periods(),
				"unresolved", len(tl.Diagnostics))
			return nil
		},
	}
}

func cmdScan() *cli.Command {
	var (
		mergeCfg  config.MergeSet
		outputCfg config.Output
	)

	return &cli.Command{
		Name:  "scan",
		Usage: "Normalize every scanner report of the merge set into one table per scanner",
		Flags: joinFlags(mergeCfg.Flags(), outputCfg.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("Scanning merge set",
				slog.Any("merge_set", mergeCfg),
				slog.Any("output", outputCfg),
			)

			pipeline, err := newPipeline(&mergeCfg, nil, &outputCfg)
			if err != nil {
				return err
			}

			tables, err := pipeline.ScanTables(ctx)
			if err != nil {
				return err
			}

			for _, table := range tables {
				sc := table.Summarize()
				logger.Info("Scanner table written",
					"scanner", sc.Name,
					"rows", sc.Rows,
					"reports", sc.Reports,
					"total", sc.Total,
					"diagnostics", sc.Diagnostics)
			}
			return nil
		},
	}
}

func cmdConsolidate() *cli.Command {
	var (
		mergeCfg  config.MergeSet
		outputCfg config.Output
	)

	return &cli.Command{
		Name:  "consolidate",
		Usage: "Join the stored timeline table with the scanner tables",
		Flags: joinFlags(mergeCfg.Flags(), outputCfg.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("Consolidating dataset",
				slog.Any("merge_set", mergeCfg),
				slog.Any("output", outputCfg),
			)

			pipeline, err := newPipeline(&mergeCfg, nil, &outputCfg)
			if err != nil {
				return err
			}

			ds, err := pipeline.Consolidate(ctx)
			if err != nil {
				return err
			}

			logger.Info("Dataset written",
				"run_id", ds.RunID,
				"rows", len(ds.Rows),
				"columns", len(ds.Columns()))
			return nil
		},
	}
}

func cmdRun() *cli.Command {
	var (
		mergeCfg    config.MergeSet
		timelineCfg config.Timeline
		outputCfg   config.Output
		storageCfg  config.Storage
		repoCfg     config.Repository
		slackCfg    config.Slack
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Run timeline, scan and consolidation in one pass",
		Flags: joinFlags(
			mergeCfg.Flags(),
			timelineCfg.Flags(),
			outputCfg.Flags(),
			storageCfg.Flags(),
			repoCfg.Flags(),
			slackCfg.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("Starting pipeline",
				slog.Any("merge_set", mergeCfg),
				slog.Any("timeline", timelineCfg),
				slog.Any("output", outputCfg),
				slog.Any("storage", storageCfg),
				slog.Any("repository", repoCfg),
				slog.Any("slack", slackCfg),
			)

			var opts []usecase.PipelineOption

			s3, err := storageCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if s3 != nil {
				opts = append(opts, usecase.WithPublisher(s3))
			}

			repo, err := repoCfg.ConfigureOptional(ctx)
			if err != nil {
				return err
			}
			if repo != nil {
				defer repo.Close()
				opts = append(opts, usecase.WithRepository(repo))
			}

			if client := slackCfg.ConfigureOptional(logger); client != nil {
				opts = append(opts, usecase.WithSlack(client, slackCfg.Channel))
			}

			pipeline, err := newPipeline(&mergeCfg, &timelineCfg, &outputCfg, opts...)
			if err != nil {
				return err
			}

			summary, err := pipeline.Run(ctx)
			if err != nil {
				return err
			}

			return renderSummary(c.Root().Writer, summary)
		},
	}
}
