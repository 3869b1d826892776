package apperr

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
)

// Handle logs an error that ended a command
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}
	logger := ctxlog.From(ctx)

	switch {
	case errors.Is(err, context.Canceled):
		logger.Warn("operation canceled", "error", err)
	case goerr.HasTag(err, model.ErrTagConfiguration):
		logger.Error("configuration error", "error", err)
	case goerr.HasTag(err, model.ErrTagMalformedReport):
		logger.Error("malformed report", "error", err)
	default:
		logger.Error("application error", "error", err)
	}
}
