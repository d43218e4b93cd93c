// Package remote pushes the portfolio file to a GitHub repository through
// the contents API.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "portfolio-dashboard/internal/errors"
	"portfolio-dashboard/internal/logging"
	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/pkg/utils"
)

const (
	// DefaultAPIURL is the public GitHub REST endpoint.
	DefaultAPIURL = "https://api.github.com"
	// DefaultPath is where the portfolio lives inside the repository.
	DefaultPath = "data/portfolio.json"

	acceptHeader = "application/vnd.github.v3+json"
)

// GitHubConfig identifies the file to overwrite and the token to do it with.
type GitHubConfig struct {
	Token  string
	Repo   string // owner/name
	Path   string
	Branch string // empty means the repository default
	APIURL string
}

// Configured reports whether a push can be attempted.
func (c GitHubConfig) Configured() bool {
	return c.Token != "" && strings.Count(c.Repo, "/") == 1
}

// PushResult describes a completed push.
type PushResult struct {
	Repo      string    `json:"repo"`
	Path      string    `json:"path"`
	CommitSHA string    `json:"commitSha"`
	Created   bool      `json:"created"`
	PushedAt  time.Time `json:"pushedAt"`
}

// GitHubSyncer overwrites the portfolio file in a repository with the
// local copy. It never merges: the local portfolio wins.
type GitHubSyncer struct {
	cfg    GitHubConfig
	client *http.Client
	retry  utils.RetryConfig
	now    func() time.Time
	logger zerolog.Logger
}

// NewGitHubSyncer creates a syncer. Empty Path and APIURL take defaults.
func NewGitHubSyncer(cfg GitHubConfig, client *http.Client) *GitHubSyncer {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	retry := utils.DefaultRetryConfig()
	retry.Retryable = retryable
	return &GitHubSyncer{
		cfg:    cfg,
		client: client,
		retry:  retry,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
}

// WithLogger sets the logger for sync events.
func (s *GitHubSyncer) WithLogger(logger zerolog.Logger) *GitHubSyncer {
	s.logger = logger
	return s
}

// WithRetry replaces the retry policy of the metadata lookup.
func (s *GitHubSyncer) WithRetry(cfg utils.RetryConfig) *GitHubSyncer {
	if cfg.Retryable == nil {
		cfg.Retryable = retryable
	}
	s.retry = cfg
	return s
}

// Remote names the sync target for logs and errors.
func (s *GitHubSyncer) Remote() string {
	return "github:" + s.cfg.Repo + "/" + s.cfg.Path
}

func (s *GitHubSyncer) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", s.cfg.APIURL, s.cfg.Repo, escapePath(s.cfg.Path))
}

func escapePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

type contentsFile struct {
	SHA string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// Push writes p, pretty printed, over the remote file. The current blob
// sha is looked up first; a missing file is created. A rejected token
// yields ErrUnauthorized.
func (s *GitHubSyncer) Push(ctx context.Context, p *models.Portfolio) (PushResult, error) {
	remote := s.Remote()
	if !s.cfg.Configured() {
		return PushResult{}, apperrors.NewSyncError(remote, 0, apperrors.ErrSyncNotConfigured)
	}

	body, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return PushResult{}, apperrors.NewSyncError(remote, 0, err)
	}

	sha, err := utils.RetryWithResult(ctx, s.retry, func() (string, error) {
		return s.currentSHA(ctx)
	})
	if err != nil {
		s.logFailure(remote, err)
		return PushResult{}, err
	}

	now := s.now().UTC()
	req := putRequest{
		Message: "Update " + now.Format(time.RFC3339),
		Content: base64.StdEncoding.EncodeToString(body),
		SHA:     sha,
		Branch:  s.cfg.Branch,
	}
	var resp putResponse
	status, err := s.do(ctx, http.MethodPut, s.contentsURL(), req, &resp)
	if err != nil {
		err = apperrors.NewSyncError(remote, status, err)
		logging.LogSync(s.logger, remote, status, err)
		return PushResult{}, err
	}

	logging.LogSync(s.logger, remote, status, nil)
	return PushResult{
		Repo:      s.cfg.Repo,
		Path:      s.cfg.Path,
		CommitSHA: resp.Commit.SHA,
		Created:   sha == "",
		PushedAt:  now,
	}, nil
}

func (s *GitHubSyncer) currentSHA(ctx context.Context) (string, error) {
	u := s.contentsURL()
	if s.cfg.Branch != "" {
		u += "?ref=" + url.QueryEscape(s.cfg.Branch)
	}
	var file contentsFile
	status, err := s.do(ctx, http.MethodGet, u, nil, &file)
	if status == http.StatusNotFound {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewSyncError(s.Remote(), status, err)
	}
	return file.SHA, nil
}

func (s *GitHubSyncer) logFailure(remote string, err error) {
	var se *apperrors.SyncError
	status := 0
	if apperrors.As(err, &se) {
		status = se.StatusCode
	}
	logging.LogSync(s.logger, remote, status, err)
}

// do sends one request and decodes a 2xx JSON body into out. Non-2xx
// statuses are returned with an error; 401 maps to ErrUnauthorized.
func (s *GitHubSyncer) do(ctx context.Context, method, u string, in, out any) (int, error) {
	var reader io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "token "+s.cfg.Token)
	req.Header.Set("Accept", acceptHeader)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	logging.LogAPICall(s.logger, method, u, time.Since(start), err)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return resp.StatusCode, apperrors.ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return resp.StatusCode, fmt.Errorf("api error: %s", logging.Redact(strings.TrimSpace(string(msg))))
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}

// retryable retries server errors and transport failures, never auth or
// other client errors.
func retryable(err error) bool {
	if apperrors.Is(err, apperrors.ErrUnauthorized) || apperrors.Is(err, context.Canceled) {
		return false
	}
	var se *apperrors.SyncError
	if apperrors.As(err, &se) && se.StatusCode != 0 {
		return se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests
	}
	return true
}
