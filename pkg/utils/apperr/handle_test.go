package apperr_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/utils/apperr"
)

func TestHandle(t *testing.T) {
	newCtx := func(buf *bytes.Buffer) context.Context {
		logger := slog.New(slog.NewJSONHandler(buf, nil))
		return ctxlog.With(context.Background(), logger)
	}

	t.Run("configuration error", func(t *testing.T) {
		var buf bytes.Buffer
		apperr.Handle(newCtx(&buf), model.ErrNoCommitDirectories)
		gt.S(t, buf.String()).Contains("configuration error")
	})

	t.Run("generic error", func(t *testing.T) {
		var buf bytes.Buffer
		apperr.Handle(newCtx(&buf), goerr.New("boom"))
		gt.S(t, buf.String()).Contains("application error")
	})

	t.Run("nil error", func(t *testing.T) {
		var buf bytes.Buffer
		apperr.Handle(newCtx(&buf), nil)
		gt.Equal(t, 0, buf.Len())
	})
}
