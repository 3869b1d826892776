package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/interfaces"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	datasetsCollection = "datasets"
	rowsCollection     = "rows"

	// Field names
	fieldCreatedAt = "created_at"
	fieldIndex     = "index"
)

// firestoreRow keeps the table order of a row inside the rows subcollection
type firestoreRow struct {
	Index int              `firestore:"index"`
	Row   model.DatasetRow `firestore:"row"`
}

// Firestore implements Repository interface with Firestore. A dataset is a
// document in "datasets" and its rows are documents of its "rows"
// subcollection keyed by commit hash.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on invalid project or missing permission
	_, err = client.Collection(datasetsCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized successfully",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{
		client: client,
	}, nil
}

// PutDataset writes the dataset header and every row with a bulk writer
func (f *Firestore) PutDataset(ctx context.Context, dataset *model.Dataset) error {
	if err := validateDataset(dataset); err != nil {
		return err
	}

	doc := f.client.Collection(datasetsCollection).Doc(dataset.RunID.String())
	bw := f.client.BulkWriter(ctx)

	jobs := make([]*firestore.BulkWriterJob, 0, len(dataset.Rows)+1)
	job, err := bw.Set(doc, dataset.Header())
	if err != nil {
		bw.End()
		return goerr.Wrap(err, "failed to enqueue dataset header", goerr.V("run_id", dataset.RunID))
	}
	jobs = append(jobs, job)

	for i, row := range dataset.Rows {
		job, err := bw.Set(doc.Collection(rowsCollection).Doc(row.Commit.String()), firestoreRow{Index: i, Row: row})
		if err != nil {
			bw.End()
			return goerr.Wrap(err, "failed to enqueue dataset row",
				goerr.V("run_id", dataset.RunID),
				goerr.V("commit", row.Commit))
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to save dataset to firestore", goerr.V("run_id", dataset.RunID))
		}
	}

	return nil
}

// GetDataset retrieves a dataset and its rows
func (f *Firestore) GetDataset(ctx context.Context, id types.RunID) (*model.Dataset, error) {
	if id == "" {
		return nil, goerr.New("run ID is empty")
	}

	doc, err := f.client.Collection(datasetsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrDatasetNotFound, "no dataset for run", goerr.V("run_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get dataset from firestore")
	}

	return f.loadDataset(ctx, doc)
}

// GetLatestDataset retrieves the most recently created dataset
func (f *Firestore) GetLatestDataset(ctx context.Context) (*model.Dataset, error) {
	iter := f.client.Collection(datasetsCollection).
		OrderBy(fieldCreatedAt, firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(model.ErrDatasetNotFound, "repository is empty")
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query latest dataset")
	}

	return f.loadDataset(ctx, doc)
}

// ListDatasets returns dataset headers, newest first
func (f *Firestore) ListDatasets(ctx context.Context, limit int) ([]*model.Dataset, error) {
	query := f.client.Collection(datasetsCollection).OrderBy(fieldCreatedAt, firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var datasets []*model.Dataset
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate datasets")
		}

		var ds model.Dataset
		if err := doc.DataTo(&ds); err != nil {
			return nil, goerr.Wrap(err, "failed to decode dataset", goerr.V("id", doc.Ref.ID))
		}
		datasets = append(datasets, &ds)
	}

	return datasets, nil
}

func (f *Firestore) loadDataset(ctx context.Context, doc *firestore.DocumentSnapshot) (*model.Dataset, error) {
	var ds model.Dataset
	if err := doc.DataTo(&ds); err != nil {
		return nil, goerr.Wrap(err, "failed to decode dataset", goerr.V("id", doc.Ref.ID))
	}

	iter := doc.Ref.Collection(rowsCollection).OrderBy(fieldIndex, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	for {
		rowDoc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate dataset rows", goerr.V("run_id", ds.RunID))
		}

		var row firestoreRow
		if err := rowDoc.DataTo(&row); err != nil {
			return nil, goerr.Wrap(err, "failed to decode dataset row", goerr.V("id", rowDoc.Ref.ID))
		}
		ds.Rows = append(ds.Rows, row.Row)
	}

	return &ds, nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	return f.client.Close()
}
