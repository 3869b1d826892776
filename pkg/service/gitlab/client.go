// Package gitlab reads CI pipelines and jobs from the GitLab REST API.
package gitlab

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
)

const (
	perPage        = 100
	requestTimeout = 10 * time.Second
)

// ErrTagNotFound marks a 404 response
var ErrTagNotFound = goerr.NewTag("gitlab_not_found")

// Client is a minimal GitLab API v4 client authenticated with a private token
type Client struct {
	baseURL    string
	token      string
	project    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(x *Client) {
		x.httpClient = c
	}
}

// New creates a client for one project. baseURL is the API root, e.g.
// https://gitlab.com/api/v4. project is a numeric ID or a full path.
func New(baseURL, token, project string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		project:    project,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) projectPath() string {
	// Already encoded paths (group%2Fproject) are kept as given
	if strings.Contains(c.project, "%") {
		return c.project
	}
	return url.PathEscape(c.project)
}

// ListPipelines returns the pipelines of ref created after the given time,
// newest first, following pagination until an empty page
func (c *Client) ListPipelines(ctx context.Context, ref string, createdAfter time.Time) ([]model.Pipeline, error) {
	endpoint := c.baseURL + "/projects/" + c.projectPath() + "/pipelines"

	var all []model.Pipeline
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))
		params.Set("order_by", "id")
		params.Set("sort", "desc")
		params.Set("ref", ref)
		params.Set("created_after", createdAfter.UTC().Format(time.RFC3339))

		var pipelines []model.Pipeline
		if err := c.get(ctx, endpoint, params, &pipelines); err != nil {
			return nil, goerr.Wrap(err, "failed to list pipelines", goerr.V("page", page))
		}
		if len(pipelines) == 0 {
			break
		}
		all = append(all, pipelines...)
	}

	return all, nil
}

// ListJobs returns every job of a pipeline
func (c *Client) ListJobs(ctx context.Context, pipelineID int64) ([]model.Job, error) {
	endpoint := c.baseURL + "/projects/" + c.projectPath() + "/pipelines/" + strconv.FormatInt(pipelineID, 10) + "/jobs"

	var all []model.Job
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))

		var jobs []model.Job
		if err := c.get(ctx, endpoint, params, &jobs); err != nil {
			return nil, goerr.Wrap(err, "failed to list jobs",
				goerr.V("pipeline_id", pipelineID),
				goerr.V("page", page))
		}
		if len(jobs) == 0 {
			break
		}
		all = append(all, jobs...)
	}

	return all, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create request", goerr.V("endpoint", endpoint))
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "request failed", goerr.V("endpoint", endpoint))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return goerr.New("resource not found",
			goerr.T(ErrTagNotFound),
			goerr.V("endpoint", endpoint))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return goerr.New("unexpected status code",
			goerr.V("endpoint", endpoint),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return goerr.Wrap(err, "failed to decode response", goerr.V("endpoint", endpoint))
	}
	return nil
}
