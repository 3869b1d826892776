package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/interfaces"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS scantrend_datasets (
    run_id        TEXT PRIMARY KEY,
    created_at    TIMESTAMPTZ NOT NULL,
    count_columns TEXT[] NOT NULL
);
CREATE TABLE IF NOT EXISTS scantrend_dataset_rows (
    run_id        TEXT NOT NULL REFERENCES scantrend_datasets (run_id) ON DELETE CASCADE,
    position      INTEGER NOT NULL,
    commit_hash   TEXT NOT NULL,
    commit_date   TIMESTAMPTZ NOT NULL,
    days_diff     INTEGER NOT NULL,
    group_offset  INTEGER NOT NULL,
    period_label  TEXT NOT NULL,
    sequential_id INTEGER NOT NULL,
    counts        JSONB NOT NULL,
    PRIMARY KEY (run_id, commit_hash)
);
CREATE INDEX IF NOT EXISTS scantrend_datasets_created_at ON scantrend_datasets (created_at DESC);
`

// Postgres implements Repository interface with PostgreSQL
type Postgres struct {
	db *sql.DB
}

// NewPostgres connects to PostgreSQL and creates the tables if needed
func NewPostgres(ctx context.Context, dsn string) (interfaces.Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres connection")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to connect to postgres")
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to create postgres schema")
	}

	ctxlog.From(ctx).Info("Postgres repository initialized successfully")
	return &Postgres{db: db}, nil
}

// PutDataset replaces the dataset of the run in one transaction
func (p *Postgres) PutDataset(ctx context.Context, dataset *model.Dataset) error {
	if err := validateDataset(dataset); err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scantrend_datasets WHERE run_id = $1`, dataset.RunID.String()); err != nil {
		return goerr.Wrap(err, "failed to delete previous dataset", goerr.V("run_id", dataset.RunID))
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scantrend_datasets (run_id, created_at, count_columns) VALUES ($1, $2, $3)`,
		dataset.RunID.String(), dataset.CreatedAt, pq.Array(dataset.CountColumns),
	); err != nil {
		return goerr.Wrap(err, "failed to insert dataset", goerr.V("run_id", dataset.RunID))
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO scantrend_dataset_rows (
        run_id, position, commit_hash, commit_date, days_diff, group_offset, period_label, sequential_id, counts
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return goerr.Wrap(err, "failed to prepare row insert")
	}
	defer stmt.Close()

	for i, row := range dataset.Rows {
		counts, err := json.Marshal(row.Counts)
		if err != nil {
			return goerr.Wrap(err, "failed to encode counts", goerr.V("commit", row.Commit))
		}
		if _, err := stmt.ExecContext(ctx,
			dataset.RunID.String(),
			i,
			row.Commit.String(),
			row.Date,
			row.DaysDiff,
			row.Offset,
			row.Label,
			row.SequentialID,
			string(counts),
		); err != nil {
			return goerr.Wrap(err, "failed to insert dataset row",
				goerr.V("run_id", dataset.RunID),
				goerr.V("commit", row.Commit))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit dataset", goerr.V("run_id", dataset.RunID))
	}
	return nil
}

// GetDataset retrieves a dataset and its rows
func (p *Postgres) GetDataset(ctx context.Context, id types.RunID) (*model.Dataset, error) {
	if id == "" {
		return nil, goerr.New("run ID is empty")
	}

	row := p.db.QueryRowContext(ctx,
		`SELECT run_id, created_at, count_columns FROM scantrend_datasets WHERE run_id = $1`, id.String())
	ds, err := scanHeader(row)
	if err == sql.ErrNoRows {
		return nil, goerr.Wrap(model.ErrDatasetNotFound, "no dataset for run", goerr.V("run_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get dataset from postgres", goerr.V("run_id", id))
	}

	if err := p.loadRows(ctx, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// GetLatestDataset retrieves the most recently created dataset
func (p *Postgres) GetLatestDataset(ctx context.Context) (*model.Dataset, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT run_id, created_at, count_columns FROM scantrend_datasets ORDER BY created_at DESC, run_id DESC LIMIT 1`)
	ds, err := scanHeader(row)
	if err == sql.ErrNoRows {
		return nil, goerr.Wrap(model.ErrDatasetNotFound, "repository is empty")
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query latest dataset")
	}

	if err := p.loadRows(ctx, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// ListDatasets returns dataset headers, newest first
func (p *Postgres) ListDatasets(ctx context.Context, limit int) ([]*model.Dataset, error) {
	query := `SELECT run_id, created_at, count_columns FROM scantrend_datasets ORDER BY created_at DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list datasets")
	}
	defer rows.Close()

	var datasets []*model.Dataset
	for rows.Next() {
		ds, err := scanHeader(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan dataset")
		}
		datasets = append(datasets, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate datasets")
	}
	return datasets, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHeader(s rowScanner) (*model.Dataset, error) {
	var (
		runID     string
		createdAt time.Time
		columns   []string
	)
	if err := s.Scan(&runID, &createdAt, pq.Array(&columns)); err != nil {
		return nil, err
	}
	return &model.Dataset{
		RunID:        types.RunID(runID),
		CreatedAt:    createdAt,
		CountColumns: columns,
	}, nil
}

func (p *Postgres) loadRows(ctx context.Context, ds *model.Dataset) error {
	rows, err := p.db.QueryContext(ctx, `SELECT commit_hash, commit_date, days_diff, group_offset, period_label, sequential_id, counts
        FROM scantrend_dataset_rows WHERE run_id = $1 ORDER BY position`, ds.RunID.String())
	if err != nil {
		return goerr.Wrap(err, "failed to query dataset rows", goerr.V("run_id", ds.RunID))
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row    model.DatasetRow
			commit string
			counts []byte
		)
		if err := rows.Scan(&commit, &row.Date, &row.DaysDiff, &row.Offset, &row.Label, &row.SequentialID, &counts); err != nil {
			return goerr.Wrap(err, "failed to scan dataset row", goerr.V("run_id", ds.RunID))
		}
		row.Commit = types.CommitHash(commit)
		if err := json.Unmarshal(counts, &row.Counts); err != nil {
			return goerr.Wrap(err, "failed to decode counts", goerr.V("commit", commit))
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return goerr.Wrap(err, "failed to iterate dataset rows", goerr.V("run_id", ds.RunID))
	}
	return nil
}

// Close closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}
