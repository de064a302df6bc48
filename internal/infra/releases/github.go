// Where: internal/infra/releases/github.go
// What: GitHub release listing client.
// Why: Feed the release-safety policy with the tags already published upstream.
package releases

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

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/eapache/go-resiliency/retrier"
	"github.com/poruru-code/cargo-builder/internal/ports"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"
	pageSize       = 100
	maxPages       = 20
)

// DefaultBackoff retries transient failures three times.
var DefaultBackoff = retrier.ExponentialBackoff(3, 500*time.Millisecond)

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client lists releases through the GitHub REST API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Token is sent as a bearer token when set.
	Token   string
	Backoff []time.Duration
}

var _ ports.ReleaseRegistry = (*Client)(nil)

// NewClient returns a client for the public API with the default backoff.
func NewClient(token string) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Token:   token,
		Backoff: DefaultBackoff,
	}
}

type release struct {
	TagName string `json:"tag_name"`
}

// ListReleases returns the tag names of every release of owner/name.
func (c *Client) ListReleases(ctx context.Context, repository string) (mapset.Set[string], error) {
	repository = strings.Trim(strings.TrimSpace(repository), "/")
	if strings.Count(repository, "/") != 1 {
		return nil, fmt.Errorf("repository %q must be owner/name", repository)
	}

	tags := mapset.NewSet[string]()
	for page := 1; page <= maxPages; page++ {
		var batch []release
		r := retrier.New(c.Backoff, transientClassifier{})
		err := r.Run(func() error {
			var err error
			batch, err = c.fetchPage(ctx, repository, page)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, rel := range batch {
			tags.Add(rel.TagName)
		}
		if len(batch) < pageSize {
			break
		}
	}
	return tags, nil
}

func (c *Client) fetchPage(ctx context.Context, repository string, page int) ([]release, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(pageSize))
	query.Set("page", strconv.Itoa(page))
	endpoint := strings.TrimRight(base, "/") + "/repos/" + repository + "/releases?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	var batch []release
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode releases: %w", err)
	}
	return batch, nil
}

// transientClassifier retries server errors, rate limiting and transport
// failures; client errors and cancellation fail immediately.
type transientClassifier struct{}

func (transientClassifier) Classify(err error) retrier.Action {
	if err == nil {
		return retrier.Succeed
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retrier.Fail
	}
	var status *StatusError
	if errors.As(err, &status) {
		if status.StatusCode >= 500 || status.StatusCode == http.StatusTooManyRequests {
			return retrier.Retry
		}
		return retrier.Fail
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return retrier.Retry
	}
	return retrier.Fail
}
