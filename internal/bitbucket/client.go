package bitbucket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiBasePath = "/rest/api/1.0"

	defaultPageSize = 25

	// README content is small; fetch it in large pages so it almost
	// always arrives in a single request.
	readmePageSize = 500
)

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithPageSize(size int) Option {
	return func(c *Client) {
		c.pageSize = size
	}
}

// WithRequestsPerSecond throttles outgoing requests. Zero or negative
// disables throttling.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithMaxRetries bounds how many times a failed page request is retried
// before the error surfaces to the caller.
func WithMaxRetries(retries uint64) Option {
	return func(c *Client) {
		c.maxRetries = retries
	}
}

func WithRetryInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.retryInterval = interval
	}
}

// Client talks to a self-hosted Bitbucket Server REST API using basic
// auth. All listing endpoints are cursor-paginated; see fetchAll.
type Client struct {
	baseURL  string
	username string
	password string

	pageSize      int
	maxRetries    uint64
	retryInterval time.Duration

	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func New(host, username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(host, "/") + apiBasePath,
		username:      username,
		password:      password,
		pageSize:      defaultPageSize,
		maxRetries:    4,
		retryInterval: 500 * time.Millisecond,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Path, e.Code)
}

// IsNotFound reports whether err is a 404 from the source API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// getPage issues a single paginated GET. A nil start omits the cursor
// parameter, which is how the first page is requested.
func (c *Client) getPage(ctx context.Context, path string, start *int, limit int) (map[string]json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if start != nil {
		q.Set("start", strconv.Itoa(*start))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Path: path}
	}

	var page map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding %s page: %w", path, err)
	}

	return page, nil
}

// Projects fetches every project on the server, in server order.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	return fetchAll[Project](ctx, c, "/projects", "values", c.pageSize)
}

// Repositories fetches every repository belonging to one project.
func (c *Client) Repositories(ctx context.Context, projectKey string) ([]Repository, error) {
	path := fmt.Sprintf("/projects/%s/repos", projectKey)
	return fetchAll[Repository](ctx, c, path, "values", c.pageSize)
}

// Readme fetches a repository's README.md through the browse endpoint
// and assembles it into a single text blob. A repository without a
// README yields empty content, not an error.
func (c *Client) Readme(ctx context.Context, projectKey, slug string) (string, error) {
	path := fmt.Sprintf("/projects/%s/repos/%s/browse/README.md", projectKey, slug)
	lines, err := fetchAll[ReadmeLine](ctx, c, path, "lines", readmePageSize)
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return AssembleReadme(lines), nil
}
