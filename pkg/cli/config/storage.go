package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/service/storage"
	"github.com/urfave/cli/v3"
)

// Storage holds object storage configuration for published tables
type Storage struct {
	Bucket string
	Prefix string
	Region string
}

// Flags returns CLI flags for Storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "s3-bucket",
			Usage:       "S3 bucket receiving a copy of every table",
			Category:    "Storage",
			Sources:     cli.EnvVars("SCANTREND_S3_BUCKET"),
			Destination: &s.Bucket,
		},
		&cli.StringFlag{
			Name:        "s3-prefix",
			Usage:       "Key prefix inside the bucket",
			Category:    "Storage",
			Value:       "scantrend",
			Sources:     cli.EnvVars("SCANTREND_S3_PREFIX"),
			Destination: &s.Prefix,
		},
		&cli.StringFlag{
			Name:        "s3-region",
			Usage:       "AWS region of the bucket",
			Category:    "Storage",
			Sources:     cli.EnvVars("SCANTREND_S3_REGION", "AWS_REGION"),
			Destination: &s.Region,
		},
	}
}

// Configure creates the S3 store, or returns nil when no bucket is set
func (s *Storage) Configure(ctx context.Context) (*storage.S3, error) {
	if s.Bucket == "" {
		return nil, nil
	}

	store, err := storage.NewS3(ctx, s.Bucket, s.Prefix, s.Region)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to init S3 storage",
			goerr.V("bucket", s.Bucket),
			goerr.V("region", s.Region))
	}
	return store, nil
}

// LogValue returns structured log value
func (s Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", s.Bucket),
		slog.String("prefix", s.Prefix),
		slog.String("region", s.Region),
	)
}
