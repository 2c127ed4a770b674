package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/logger"
)

// MediaTypeV3 is the Accept header of listing requests.
const MediaTypeV3 = "application/vnd.github.v3+json"

var (
	// errBadHTTPStatus is returned for any non-2xx response.
	errBadHTTPStatus = errors.New("unexpected http status")
	// errNoRepository is returned when a target has no repository mapping.
	errNoRepository = errors.New("no repository for target")
)

// Client is a thin GitHub releases client.
type Client struct {
	// http is shared by every request, including concurrent asset downloads.
	http *http.Client
	// baseURL is the API root without a trailing slash.
	baseURL string
	// userAgent is sent with every request.
	userAgent string
	// repositories maps targets to "owner/name" paths.
	repositories map[release.Target]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithBaseURL points the client at another API root, such as GitHub
// Enterprise or a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRepository maps target to an "owner/name" repository path.
func WithRepository(target release.Target, repository string) Option {
	return func(c *Client) {
		c.repositories[target] = repository
	}
}

// NewClient builds a client. The default HTTP client has no timeout: a hung
// download blocks only its own worker.
func NewClient(opts ...Option) *Client {
	client := &Client{
		http:         &http.Client{},
		baseURL:      "https://api.github.com",
		repositories: make(map[release.Target]string, len(release.Targets())),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// ReleasesEndpoint returns the listing URL for target.
func (c *Client) ReleasesEndpoint(target release.Target) (string, error) {
	repository, ok := c.repositories[target]
	if !ok || repository == "" {
		return "", fmt.Errorf("%w: %s", errNoRepository, target)
	}

	return c.baseURL + "/repos/" + repository + "/releases", nil
}

// List returns the releases of target, newest first. Failures are
// release.KindRequest or release.KindParse.
func (c *Client) List(ctx context.Context, target release.Target) ([]release.Release, error) {
	endpoint, err := c.ReleasesEndpoint(target)
	if err != nil {
		return nil, release.NewError(release.KindRequest, err)
	}

	logger.DebugKV(ctx, "Listing releases", "target", target, "url", endpoint)

	response, err := c.get(ctx, endpoint, MediaTypeV3)
	if err != nil {
		return nil, release.NewError(release.KindRequest, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	var releases []release.Release
	if err = json.NewDecoder(response.Body).Decode(&releases); err != nil {
		return nil, release.NewError(release.KindParse, fmt.Errorf("decode releases of %s: %w", target, err))
	}

	return releases, nil
}

// Fetch requests asset and returns its body for streaming. The caller closes
// it. Failures are release.KindRequest.
func (c *Client) Fetch(ctx context.Context, asset release.Asset) (io.ReadCloser, error) {
	response, err := c.get(ctx, asset.DownloadURL, asset.ContentType)
	if err != nil {
		return nil, release.NewError(release.KindRequest, err)
	}

	return response.Body, nil
}

// get issues a GET and rejects non-2xx responses.
func (c *Client) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	if accept != "" {
		request.Header.Set("Accept", accept)
	}

	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}

	response, err := c.http.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		_ = response.Body.Close()

		return nil, fmt.Errorf("%s, %s: %w", rawURL, response.Status, errBadHTTPStatus)
	}

	return response, nil
}
