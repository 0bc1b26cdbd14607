package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/koron/dl-kaoriya-vim/internal/logger"
	"github.com/koron/dl-kaoriya-vim/internal/model"
)

const DefaultAPIBase = "https://api.github.com"

// StatusError reports a non-2xx answer from the releases endpoint.
type StatusError struct {
	Code   int
	Reason string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Code, e.Reason)
}

// TransportError reports a release request that got no HTTP answer.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client queries the GitHub releases API.
type Client struct {
	APIBase   string
	Token     string
	UserAgent string
	HTTP      *http.Client
	Log       logrus.FieldLogger
}

type Options struct {
	APIBase   string
	Token     string
	UserAgent string
	Timeout   time.Duration
	Log       logrus.FieldLogger
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.APIBase), "/")
	if base == "" {
		base = DefaultAPIBase
	}
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		APIBase:   base,
		Token:     strings.TrimSpace(opts.Token),
		UserAgent: opts.UserAgent,
		HTTP:      &http.Client{Timeout: opts.Timeout},
		Log:       log,
	}
}

// APIBaseFromEnv returns the DLKV_API_BASE override or fallback.
func APIBaseFromEnv(fallback string) string {
	if base := strings.TrimSpace(os.Getenv("DLKV_API_BASE")); base != "" {
		return strings.TrimRight(base, "/")
	}
	return fallback
}

func UserAgent(version string) string {
	return fmt.Sprintf("dl-kaoriya-vim/%s", version)
}

// LatestReleaseURL builds the "latest release" endpoint for owner/repo.
func (c *Client) LatestReleaseURL(repo string) string {
	return fmt.Sprintf("%s/repos/%s/releases/latest", c.APIBase, repo)
}

// LatestRelease fetches and decodes the latest published release of repo.
// A non-2xx answer is returned as *StatusError and a failed round trip as
// *TransportError; anything else is a malformed payload.
func (c *Client) LatestRelease(ctx context.Context, repo string) (*model.Release, error) {
	url := c.LatestReleaseURL(repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build release request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Token != "" {
		// Unauthenticated requests are limited to 60 per hour.
		req.Header.Set("Authorization", "token "+c.Token)
	}

	c.Log.WithField("url", url).WithField("auth", c.Token != "").Debug("querying latest release")
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	c.Log.WithField("status", resp.StatusCode).WithField("elapsed", time.Since(start)).Debug("release response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Reason: reasonPhrase(resp), URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read release response")
	}
	return ParseRelease(body)
}

// ParseRelease decodes a latest-release payload after validating its shape.
func ParseRelease(body []byte) (*model.Release, error) {
	if !utf8.Valid(body) {
		return nil, errors.New("release response is not valid UTF-8")
	}
	if err := ValidateRelease(body); err != nil {
		return nil, err
	}
	var rel model.Release
	if err := json.Unmarshal(body, &rel); err != nil {
		return nil, errors.Wrap(err, "decode release JSON")
	}
	return &rel, nil
}

func reasonPhrase(resp *http.Response) string {
	// resp.Status is "404 Not Found"; keep the phrase the server sent.
	if _, phrase, ok := strings.Cut(resp.Status, " "); ok && strings.TrimSpace(phrase) != "" {
		return strings.TrimSpace(phrase)
	}
	return http.StatusText(resp.StatusCode)
}
