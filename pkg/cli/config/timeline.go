package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/service/gitrepo"
	"github.com/urfave/cli/v3"
)

const anchorDateLayout = "2006-01-02"

// Timeline holds commit timestamp and bucketing configuration
type Timeline struct {
	Repo       string
	Anchor     string
	WindowDays int
}

// Flags returns CLI flags for Timeline configuration
func (t *Timeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Path of the git repository the merged commits belong to",
			Category:    "Timeline",
			Value:       ".",
			Sources:     cli.EnvVars("SCANTREND_REPO"),
			Destination: &t.Repo,
		},
		&cli.StringFlag{
			Name:        "anchor",
			Usage:       "Start of period 0 (RFC 3339 or YYYY-MM-DD, UTC)",
			Category:    "Timeline",
			Value:       model.DefaultAnchor.Format(anchorDateLayout),
			Sources:     cli.EnvVars("SCANTREND_ANCHOR"),
			Destination: &t.Anchor,
		},
		&cli.IntFlag{
			Name:        "window-days",
			Usage:       "Length of one period in days",
			Category:    "Timeline",
			Value:       model.DefaultWindowDays,
			Sources:     cli.EnvVars("SCANTREND_WINDOW_DAYS"),
			Destination: &t.WindowDays,
		},
	}
}

// ParseAnchor parses an anchor given as RFC 3339 or as a UTC date
func ParseAnchor(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(anchorDateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, goerr.New("invalid anchor, expected RFC 3339 or YYYY-MM-DD",
		goerr.T(model.ErrTagConfiguration),
		goerr.V("anchor", s))
}

// Bucketing returns the period bucketing
func (t *Timeline) Bucketing() (model.Bucketing, error) {
	anchor, err := ParseAnchor(t.Anchor)
	if err != nil {
		return model.Bucketing{}, err
	}
	if t.WindowDays <= 0 {
		return model.Bucketing{}, goerr.New("window length must be positive",
			goerr.T(model.ErrTagConfiguration),
			goerr.V("window_days", t.WindowDays))
	}
	return model.NewBucketing(anchor, t.WindowDays), nil
}

// Resolver opens the git repository
func (t *Timeline) Resolver() (*gitrepo.Resolver, error) {
	resolver, err := gitrepo.Open(t.Repo)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open git repository",
			goerr.T(model.ErrTagConfiguration),
			goerr.V("repo", t.Repo))
	}
	return resolver, nil
}

// LogValue returns structured log value
func (t Timeline) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("repo", t.Repo),
		slog.String("anchor", t.Anchor),
		slog.Int("window_days", t.WindowDays),
	)
}
