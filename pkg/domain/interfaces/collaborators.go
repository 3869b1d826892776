package interfaces

//go:generate moq -out mocks/collaborators_mock.go -pkg mocks . CommitResolver BlobStore SlackClient

import (
	"context"
	"time"

	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"github.com/slack-go/slack"
)

// CommitResolver looks up the committed timestamp of a commit
type CommitResolver interface {
	CommitTime(ctx context.Context, commit types.CommitHash) (time.Time, error)
}

// BlobStore reads and writes output tables by key
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// SlackClient is the subset of the Slack API used for notifications
type SlackClient interface {
	PostMessage(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}
