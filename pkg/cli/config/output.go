package config

import (
	"log/slog"

	"github.com/secmon-lab/scantrend/pkg/service/storage"
	"github.com/secmon-lab/scantrend/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Output holds table output configuration
type Output struct {
	Dir          string
	TimelineFile string
	DatasetFile  string
}

// Flags returns CLI flags for Output configuration
func (o *Output) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "out-dir",
			Usage:       "Directory receiving the CSV tables",
			Category:    "Output",
			Value:       ".",
			Sources:     cli.EnvVars("SCANTREND_OUT_DIR"),
			Destination: &o.Dir,
		},
		&cli.StringFlag{
			Name:        "timeline-file",
			Usage:       "File name of the timeline table",
			Category:    "Output",
			Value:       usecase.DefaultTimelineFile,
			Sources:     cli.EnvVars("SCANTREND_TIMELINE_FILE"),
			Destination: &o.TimelineFile,
		},
		&cli.StringFlag{
			Name:        "dataset-file",
			Usage:       "File name of the consolidated table",
			Category:    "Output",
			Value:       usecase.DefaultDatasetFile,
			Sources:     cli.EnvVars("SCANTREND_DATASET_FILE"),
			Destination: &o.DatasetFile,
		},
	}
}

// Files returns the output file names
func (o *Output) Files() usecase.OutputFiles {
	return usecase.OutputFiles{
		Timeline: o.TimelineFile,
		Dataset:  o.DatasetFile,
	}
}

// Store returns the local store writing into Dir
func (o *Output) Store() *storage.Local {
	return storage.NewLocal(o.Dir)
}

// LogValue returns structured log value
func (o Output) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dir", o.Dir),
		slog.String("timeline_file", o.TimelineFile),
		slog.String("dataset_file", o.DatasetFile),
	)
}
