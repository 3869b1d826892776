package config

import (
	"log/slog"

	"github.com/secmon-lab/scantrend/pkg/domain/interfaces"
	slackSvc "github.com/secmon-lab/scantrend/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds run summary notification configuration
type Slack struct {
	OAuthToken string
	Channel    string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-oauth-token",
			Usage:       "Slack OAuth token for API access",
			Category:    "Slack",
			Sources:     cli.EnvVars("SCANTREND_SLACK_OAUTH_TOKEN"),
			Destination: &s.OAuthToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID receiving run summaries",
			Category:    "Slack",
			Sources:     cli.EnvVars("SCANTREND_SLACK_CHANNEL"),
			Destination: &s.Channel,
		},
	}
}

// ConfigureOptional creates a Slack client if configured, returns nil if not
func (s *Slack) ConfigureOptional(logger *slog.Logger) interfaces.SlackClient {
	if !s.IsConfigured() {
		logger.Debug("Slack not configured, run summaries will not be posted")
		return nil
	}

	logger.Info("Configuring Slack client", "channel", s.Channel)
	return slackSvc.New(s.OAuthToken)
}

// IsConfigured checks if both token and channel are set
func (s *Slack) IsConfigured() bool {
	return s.OAuthToken != "" && s.Channel != ""
}

// LogValue returns structured log value
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_oauth_token", s.OAuthToken != ""),
		slog.String("channel", s.Channel),
	)
}
