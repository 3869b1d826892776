package telemetry_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/scantrend/pkg/utils/telemetry"
)

func TestInit(t *testing.T) {
	ctx := context.Background()
	shutdown, err := telemetry.Init(ctx, "test", "")
	gt.NoError(t, err)
	defer func() {
		gt.NoError(t, shutdown(ctx))
	}()

	spanCtx, span := telemetry.Start(ctx, "test.span")
	gt.True(t, span.SpanContext().IsValid())
	gt.True(t, span.IsRecording())
	gt.V(t, spanCtx).NotNil()
	telemetry.End(span, goerr.New("failed"))
	gt.False(t, span.IsRecording())
}
