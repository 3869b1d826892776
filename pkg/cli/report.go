package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"github.com/secmon-lab/scantrend/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdReport() *cli.Command {
	var (
		kind string
		file string
	)

	return &cli.Command{
		Name:  "report",
		Usage: "Normalize a single report file and print its category counts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "kind",
				Aliases:     []string{"k"},
				Usage:       "Report format (brakeman, trivy, zap)",
				Required:    true,
				Destination: &kind,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "Path of the report file",
				Required:    true,
				Destination: &file,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			k := types.ScannerKind(kind)
			if !k.IsValid() {
				return goerr.New("unknown report kind",
					goerr.T(model.ErrTagConfiguration),
					goerr.V("kind", kind))
			}

			baseline, err := usecase.BaselineReport(ctx, k, file)
			if err != nil {
				return err
			}

			return renderBaseline(c.Root().Writer, baseline)
		},
	}
}
