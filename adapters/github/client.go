package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/internal/config"
	"github.com/hurmain7/devconnect/pkg/logger"
)

const (
	reposPerPage = 5
	userAgent    = "devconnect"
	// upper bound on a forwarded repo listing
	maxBodyBytes = 1 << 20
)

type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       logger.Logger
}

func NewClient(cfg config.Config, log logger.Logger) *Client {
	timeout := cfg.Github.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimSuffix(cfg.Github.BaseURL, "/"),
		clientID:     cfg.Github.ClientID,
		clientSecret: cfg.Github.Secret,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       log,
	}
}

var _ service.RepoLister = (*Client)(nil)

// ListRepos fetches the five most recently created repositories of username
// and returns GitHub's JSON untouched.
func (c *Client) ListRepos(ctx context.Context, username string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("per_page", fmt.Sprint(reposPerPage))
	q.Set("sort", "created")
	q.Set("direction", "desc")
	endpoint := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(username), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build github request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.clientID != "" && c.clientSecret != "" {
		req.SetBasicAuth(c.clientID, c.clientSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("GitHub returned non-200",
			zap.String("username", username),
			zap.Int("status", resp.StatusCode),
		)
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, service.ErrGithubNotFound
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read github response: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("github returned invalid JSON for %q", username)
	}
	return json.RawMessage(body), nil
}
