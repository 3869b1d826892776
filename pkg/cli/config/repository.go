package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/interfaces"
	"github.com/secmon-lab/scantrend/pkg/repository"
	"github.com/urfave/cli/v3"
)

// Repository holds dataset persistence configuration. Firestore takes
// precedence over PostgreSQL when both are given.
type Repository struct {
	FirestoreProject  string
	FirestoreDatabase string
	PostgresDSN       string
}

// Flags returns CLI flags for Repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project",
			Usage:       "GCP project ID for Firestore",
			Category:    "Repository",
			Sources:     cli.EnvVars("SCANTREND_FIRESTORE_PROJECT"),
			Destination: &r.FirestoreProject,
		},
		&cli.StringFlag{
			Name:        "firestore-database",
			Usage:       "Firestore database ID",
			Category:    "Repository",
			Value:       "(default)",
			Sources:     cli.EnvVars("SCANTREND_FIRESTORE_DATABASE"),
			Destination: &r.FirestoreDatabase,
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Usage:       "PostgreSQL connection string",
			Category:    "Repository",
			Sources:     cli.EnvVars("SCANTREND_POSTGRES_DSN"),
			Destination: &r.PostgresDSN,
		},
	}
}

// Configure creates the configured repository, falling back to memory
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	repo, err := r.ConfigureOptional(ctx)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		ctxlog.From(ctx).Warn("Using memory database instead of firestore or postgres. The data will be removed when shutting down")
		return repository.NewMemory(), nil
	}
	return repo, nil
}

// ConfigureOptional creates the configured repository, or returns nil when
// none is configured
func (r *Repository) ConfigureOptional(ctx context.Context) (interfaces.Repository, error) {
	switch {
	case r.FirestoreProject != "":
		repo, err := repository.NewFirestore(ctx, r.FirestoreProject, r.FirestoreDatabase)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init firestore",
				goerr.V("project", r.FirestoreProject),
				goerr.V("database", r.FirestoreDatabase),
			)
		}
		return repo, nil

	case r.PostgresDSN != "":
		repo, err := repository.NewPostgres(ctx, r.PostgresDSN)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init postgres")
		}
		return repo, nil
	}

	return nil, nil
}

// IsConfigured checks if a persistent repository is configured
func (r *Repository) IsConfigured() bool {
	return r.FirestoreProject != "" || r.PostgresDSN != ""
}

// LogValue returns structured log value
func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("firestore_project", r.FirestoreProject),
		slog.String("firestore_database", r.FirestoreDatabase),
		slog.Bool("has_postgres_dsn", r.PostgresDSN != ""),
	)
}
