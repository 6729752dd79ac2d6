package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

const (
	defaultAPIBaseURL   = "https://api.github.com"
	defaultOAuthBaseURL = "https://github.com"

	acceptHeader = "application/vnd.github.v3+json"
	userAgent    = "GitHub-Issues-Viewer"
)

// Listing defaults. Policy constants, not protocol requirements.
const (
	DefaultPage    = 1
	DefaultPerPage = 30
)

// repoListPageSize is the fixed page size used when listing repositories
// for the selector; repos are fetched in one large page.
const repoListPageSize = 100

// User is the subset of the GitHub user profile the service cares about.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// ListOptions carries the state filter and page window for issue and
// pull request listings.
type ListOptions struct {
	State   string // open, closed, all
	Page    int
	PerPage int
}

func (o ListOptions) normalize() ListOptions {
	if o.State == "" {
		o.State = "open"
	}
	if o.Page <= 0 {
		o.Page = DefaultPage
	}
	if o.PerPage <= 0 {
		o.PerPage = DefaultPerPage
	}
	return o
}

// Client is a minimal consumer of the GitHub REST API. Collection
// responses are passed through as raw JSON so that upstream fields
// survive untouched; the client only decodes what it has to.
type Client struct {
	apiBaseURL   string
	oauthBaseURL string
	httpClient   *http.Client
}

type Option func(*Client)

// WithAPIBaseURL overrides the REST API base URL. Used by tests.
func WithAPIBaseURL(u string) Option {
	return func(c *Client) { c.apiBaseURL = u }
}

// WithOAuthBaseURL overrides the OAuth host. Used by tests.
func WithOAuthBaseURL(u string) Option {
	return func(c *Client) { c.oauthBaseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		apiBaseURL:   defaultAPIBaseURL,
		oauthBaseURL: defaultOAuthBaseURL,
		httpClient:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs an authenticated GET and returns the raw body, the
// response header (callers need the Link header for pagination), and the
// status code.
func (c *Client) get(
	ctx context.Context,
	token string,
	path string,
	query url.Values,
) ([]byte, http.Header, int, error) {

	u := c.apiBaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, 0, errors.Wrap(err, "github: failed to build request")
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, 0, errors.Wrapf(err, "github: request to %s failed", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, 0, errors.Wrapf(err, "github: reading response from %s", path)
	}

	return body, resp.Header, resp.StatusCode, nil
}

// getCollection performs an authenticated GET and decodes the body as a
// JSON array of opaque items.
func (c *Client) getCollection(
	ctx context.Context,
	token string,
	path string,
	query url.Values,
) ([]json.RawMessage, http.Header, error) {

	body, header, _, err := c.get(ctx, token, path, query)
	if err != nil {
		return nil, nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, nil, errors.Wrapf(err, "github: response from %s is not a JSON array", path)
	}

	return items, header, nil
}

// FetchUser retrieves the authenticated user's profile. A body that does
// not decode as a profile is reported with the raw status and a bounded
// excerpt so the operator can see what GitHub actually said.
func (c *Client) FetchUser(ctx context.Context, token string) (*User, error) {
	body, _, status, err := c.get(ctx, token, "/user", nil)
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal(body, &u); err != nil || u.Login == "" {
		return nil, &ProfileError{
			Status:  status,
			RawBody: truncate(string(body), rawBodyLimit),
		}
	}

	return &u, nil
}

// Orgs lists the organizations the authenticated user belongs to.
func (c *Client) Orgs(ctx context.Context, token string) ([]json.RawMessage, error) {
	items, _, err := c.getCollection(ctx, token, "/user/orgs", nil)
	return items, err
}

// UserRepos lists repositories of the authenticated user's personal
// account, including those they collaborate on.
func (c *Client) UserRepos(ctx context.Context, token string) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("affiliation", "owner,collaborator")
	q.Set("per_page", strconv.Itoa(repoListPageSize))

	items, _, err := c.getCollection(ctx, token, "/user/repos", q)
	return items, err
}

// OrgRepos lists repositories belonging to an organization.
func (c *Client) OrgRepos(ctx context.Context, token, org string) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(repoListPageSize))

	path := fmt.Sprintf("/orgs/%s/repos", url.PathEscape(org))
	items, _, err := c.getCollection(ctx, token, path, q)
	return items, err
}

// Issues lists issues for a repository. The upstream endpoint conflates
// issues and pull requests; filtering is the caller's concern.
func (c *Client) Issues(
	ctx context.Context,
	token, owner, repo string,
	opts ListOptions,
) ([]json.RawMessage, PageLinks, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues", url.PathEscape(owner), url.PathEscape(repo))
	return c.list(ctx, token, path, opts)
}

// Pulls lists pull requests for a repository.
func (c *Client) Pulls(
	ctx context.Context,
	token, owner, repo string,
	opts ListOptions,
) ([]json.RawMessage, PageLinks, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls", url.PathEscape(owner), url.PathEscape(repo))
	return c.list(ctx, token, path, opts)
}

func (c *Client) list(
	ctx context.Context,
	token, path string,
	opts ListOptions,
) ([]json.RawMessage, PageLinks, error) {

	opts = opts.normalize()

	q := url.Values{}
	q.Set("state", opts.State)
	q.Set("page", strconv.Itoa(opts.Page))
	q.Set("per_page", strconv.Itoa(opts.PerPage))

	items, header, err := c.getCollection(ctx, token, path, q)
	if err != nil {
		return nil, nil, err
	}

	return items, ParseLinkHeader(header.Get("Link")), nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
