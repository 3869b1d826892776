package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/service/gitlab"
	"github.com/urfave/cli/v3"
)

// GitLab holds CI pipeline export configuration
type GitLab struct {
	URL     string
	Token   string
	Project string
	Ref     string
	Days    int
}

// Flags returns CLI flags for GitLab configuration
func (g *GitLab) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gitlab-url",
			Usage:       "GitLab API root",
			Category:    "GitLab",
			Value:       "https://gitlab.com/api/v4",
			Sources:     cli.EnvVars("SCANTREND_GITLAB_URL"),
			Destination: &g.URL,
		},
		&cli.StringFlag{
			Name:        "gitlab-token",
			Usage:       "GitLab private token",
			Category:    "GitLab",
			Sources:     cli.EnvVars("SCANTREND_GITLAB_TOKEN", "GITLAB_TOKEN"),
			Destination: &g.Token,
		},
		&cli.StringFlag{
			Name:        "gitlab-project",
			Usage:       "Project ID or full path (group/project)",
			Category:    "GitLab",
			Sources:     cli.EnvVars("SCANTREND_GITLAB_PROJECT"),
			Destination: &g.Project,
		},
		&cli.StringFlag{
			Name:        "gitlab-ref",
			Usage:       "Branch whose pipelines are exported",
			Category:    "GitLab",
			Value:       "main",
			Sources:     cli.EnvVars("SCANTREND_GITLAB_REF"),
			Destination: &g.Ref,
		},
		&cli.IntFlag{
			Name:        "gitlab-days",
			Usage:       "Number of days to look back",
			Category:    "GitLab",
			Value:       30,
			Sources:     cli.EnvVars("SCANTREND_GITLAB_DAYS"),
			Destination: &g.Days,
		},
	}
}

// Validate checks the required fields
func (g *GitLab) Validate() error {
	if g.Token == "" {
		return goerr.New("GitLab token is required", goerr.T(model.ErrTagConfiguration))
	}
	if g.Project == "" {
		return goerr.New("GitLab project is required", goerr.T(model.ErrTagConfiguration))
	}
	if g.Days <= 0 {
		return goerr.New("number of days must be positive",
			goerr.T(model.ErrTagConfiguration),
			goerr.V("days", g.Days))
	}
	return nil
}

// Configure creates the GitLab client
func (g *GitLab) Configure() (*gitlab.Client, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return gitlab.New(g.URL, g.Token, g.Project), nil
}

// LogValue returns structured log value
func (g GitLab) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", g.URL),
		slog.Bool("has_token", g.Token != ""),
		slog.String("project", g.Project),
		slog.String("ref", g.Ref),
		slog.Int("days", g.Days),
	)
}
