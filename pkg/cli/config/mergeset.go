package config

import (
	"log/slog"

	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// MergeSet holds merge-set configuration
type MergeSet struct {
	Root           string
	ScannersConfig string
	Workers        int
}

// Flags returns CLI flags for MergeSet configuration
func (m *MergeSet) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "merge-root",
			Usage:       "Directory holding one artifact folder per merged commit",
			Category:    "Merge set",
			Value:       "../raw-data/merges",
			Sources:     cli.EnvVars("SCANTREND_MERGE_ROOT"),
			Destination: &m.Root,
		},
		&cli.StringFlag{
			Name:        "scanners-config",
			Usage:       "YAML file listing scanners (name, kind, report_file); built-in list if empty",
			Category:    "Merge set",
			Sources:     cli.EnvVars("SCANTREND_SCANNERS_CONFIG"),
			Destination: &m.ScannersConfig,
		},
		&cli.IntFlag{
			Name:        "workers",
			Usage:       "Number of commits normalized concurrently",
			Category:    "Merge set",
			Value:       usecase.DefaultWorkers,
			Sources:     cli.EnvVars("SCANTREND_WORKERS"),
			Destination: &m.Workers,
		},
	}
}

// Configure creates the merge set reader and loads the scanner list
func (m *MergeSet) Configure() (*usecase.MergeSet, *model.ScannersConfig, error) {
	scanners := model.DefaultScannersConfig()
	if m.ScannersConfig != "" {
		cfg, err := LoadScannersFromFile(m.ScannersConfig)
		if err != nil {
			return nil, nil, err
		}
		scanners = cfg
	}

	return usecase.NewMergeSet(m.Root, usecase.WithWorkers(m.Workers)), scanners, nil
}

// LogValue returns structured log value
func (m MergeSet) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("root", m.Root),
		slog.String("scanners_config", m.ScannersConfig),
		slog.Int("workers", m.Workers),
	)
}
