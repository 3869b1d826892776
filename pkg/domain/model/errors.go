package model

import "github.com/m-mizutani/goerr/v2"

// Tags classifying errors
var (
	// ErrTagMalformedReport marks a report that could not be decoded. It is
	// fatal for that report only.
	ErrTagMalformedReport = goerr.NewTag("malformed_report")
	// ErrTagConfiguration marks errors that abort the whole run
	ErrTagConfiguration = goerr.NewTag("configuration")
)

// Sentinel errors for domain operations
var (
	ErrNoCommitDirectories = goerr.New("no commit directories found in merge set", goerr.T(ErrTagConfiguration))
	ErrNoResolvedCommits   = goerr.New("no commit timestamp could be resolved", goerr.T(ErrTagConfiguration))
	ErrTimelineUnavailable = goerr.New("timeline table is unavailable", goerr.T(ErrTagConfiguration))
	ErrColumnCollision     = goerr.New("consolidated column name collision", goerr.T(ErrTagConfiguration))
	ErrDatasetNotFound     = goerr.New("dataset not found")
)
