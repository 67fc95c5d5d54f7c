// Package gitee adapts the capability interface to the Gitee v5 REST
// dialect. Authentication rides in an access_token query parameter; the
// contribution calendar is only served as HTML.
package gitee

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/unigit/unigit/app"
	"github.com/unigit/unigit/transport"
)

const (
	defaultAPIURL  = "https://gitee.com/api/v5"
	defaultBaseURL = "https://gitee.com"

	defaultTimeout = 30 * time.Second
)

var defaultHeaders = map[string]string{
	"Accept":     "application/json",
	"User-Agent": "unigit",
}

// Client implements app.Client against Gitee. Gitee has no organization
// surface here; org and collaborator operations return app.ErrNotSupported.
type Client struct {
	mu    sync.RWMutex
	token string
	tr    *transport.Transport

	apiURL  string
	baseURL string
}

var _ app.Client = &Client{}

// NewClient creates a gitee client using the given doer.
func NewClient(doer transport.Doer) *Client {
	return &Client{
		tr:      transport.New(doer, defaultHeaders, false),
		apiURL:  defaultAPIURL,
		baseURL: defaultBaseURL,
	}
}

// New creates a gitee client with a default pooled http client.
func New() *Client {
	client, _ := transport.NewHTTPClient("", defaultTimeout)
	return NewClient(client)
}

// SetToken stores the API token on the client.
func (c *Client) SetToken(token string) error {
	if token == "" {
		return app.ErrTokenEmpty
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// SetProxy rebuilds the client's transport with an outbound proxy.
func (c *Client) SetProxy(proxy string) error {
	client, err := transport.NewHTTPClient(proxy, defaultTimeout)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.tr = transport.New(client, defaultHeaders, false)
	c.mu.Unlock()
	return nil
}

// UserInfo returns the authenticated user's profile.
func (c *Client) UserInfo(ctx context.Context) (app.UserInfo, error) {
	token, tr := c.snapshot()
	if token == "" {
		return app.UserInfo{}, app.ErrTokenEmpty
	}

	body, err := tr.Get(ctx, c.apiURL+"/user", tokenQuery(token, nil), nil)
	if err != nil {
		return app.UserInfo{}, err
	}
	return unmarshalUser(body, "gitee: get user info")
}

// UserInfoByName returns a public profile. Token is optional.
func (c *Client) UserInfoByName(ctx context.Context, login string) (app.UserInfo, error) {
	token, tr := c.snapshot()

	body, err := tr.Get(ctx, c.apiURL+"/users/"+url.PathEscape(login), tokenQuery(token, nil), nil)
	if err != nil {
		return app.UserInfo{}, err
	}
	return unmarshalUser(body, "gitee: get user info with name")
}

// UserAvatarURL resolves the avatar from the public profile payload.
func (c *Client) UserAvatarURL(ctx context.Context, login string) (string, error) {
	info, err := c.UserInfoByName(ctx, login)
	if err != nil {
		return "", err
	}
	return info.AvatarURL, nil
}

// UserContribution scrapes the profile page's contribution boxes.
// Unlike GitHub, the total is the sum of the scraped daily counts.
func (c *Client) UserContribution(ctx context.Context, login string) (app.ContributionResult, error) {
	_, tr := c.snapshot()

	header := http.Header{}
	header.Set("Accept", "text/html")

	body, err := tr.Get(ctx, c.baseURL+"/"+url.PathEscape(login), nil, header)
	if err != nil {
		return app.ContributionResult{}, err
	}

	logrus.WithField("provider", "gitee").WithField("user", login).Debug("parsing contribution calendar")

	return parseContributionHTML(body)
}

// OrgInfo is not supported by this provider.
func (c *Client) OrgInfo(ctx context.Context, org string) (app.OrgInfo, error) {
	return app.OrgInfo{}, app.ErrNotSupported
}

// OrgRepos is not supported by this provider.
func (c *Client) OrgRepos(ctx context.Context, org string, opts *app.ReposListOptions) ([]app.RepoInfo, error) {
	return nil, app.ErrNotSupported
}

// OrgAvatarURL is not supported by this provider.
func (c *Client) OrgAvatarURL(ctx context.Context, org string) (string, error) {
	return "", app.ErrNotSupported
}

// RepoInfo returns repository metadata.
func (c *Client) RepoInfo(ctx context.Context, path app.RepoPath) (app.RepoInfo, error) {
	token, tr := c.snapshot()

	body, err := tr.Get(ctx, c.repoURL(path), tokenQuery(token, nil), nil)
	if err != nil {
		return app.RepoInfo{}, err
	}

	var p repoPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return app.RepoInfo{}, fmt.Errorf("unmarshalling repo response: %w", err)
	}
	return p.toRepoInfo("gitee: get repo info")
}

// RepoDefaultBranch resolves the default branch name. The web strategy hits
// the same endpoint without credentials.
func (c *Client) RepoDefaultBranch(ctx context.Context, path app.RepoPath, strategy app.BranchStrategy) (string, error) {
	token, tr := c.snapshot()
	if strategy == app.BranchViaWeb {
		token = ""
	}

	body, err := tr.Get(ctx, c.repoURL(path), tokenQuery(token, nil), nil)
	if err != nil {
		return "", err
	}

	var p repoPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("unmarshalling repo response: %w", err)
	}
	if p.DefaultBranch == nil {
		return "", &app.MalformedResponseError{Op: "gitee: get repo default branch", Field: "default_branch"}
	}
	return *p.DefaultBranch, nil
}

// RepoCollaborators is not supported by this provider.
func (c *Client) RepoCollaborators(ctx context.Context, path app.RepoPath, opts *app.ReposListOptions) ([]app.CollaboratorResult, error) {
	return nil, app.ErrNotSupported
}

// UserRepos lists the authenticated user's repositories, newest pushed first.
func (c *Client) UserRepos(ctx context.Context, opts *app.ReposListOptions) ([]app.RepoInfo, error) {
	token, tr := c.snapshot()

	q := url.Values{}
	q.Set("sort", "pushed")
	opts.Apply(q)

	body, err := tr.Get(ctx, c.apiURL+"/user/repos", tokenQuery(token, q), nil)
	if err != nil {
		return nil, err
	}
	return unmarshalRepos(body, "gitee: get user repos")
}

// UserReposByName lists a user's public repositories, newest pushed first.
func (c *Client) UserReposByName(ctx context.Context, login string, opts *app.ReposListOptions) ([]app.RepoInfo, error) {
	token, tr := c.snapshot()

	q := url.Values{}
	q.Set("sort", "pushed")
	opts.Apply(q)

	body, err := tr.Get(ctx, c.apiURL+"/users/"+url.PathEscape(login)+"/repos", tokenQuery(token, q), nil)
	if err != nil {
		return nil, err
	}
	return unmarshalRepos(body, "gitee: get user repos with name")
}

// CommitInfo returns a single commit; avatar URLs come from the payload's
// top-level author/committer objects.
func (c *Client) CommitInfo(ctx context.Context, path app.RepoPath, sha string) (app.CommitInfo, error) {
	token, tr := c.snapshot()

	if sha == "" {
		sha = "HEAD"
	}
	body, err := tr.Get(ctx, c.repoURL(path)+"/commits/"+url.PathEscape(sha), tokenQuery(token, nil), nil)
	if err != nil {
		return app.CommitInfo{}, err
	}

	var p commitPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return app.CommitInfo{}, fmt.Errorf("unmarshalling commit response: %w", err)
	}
	p.enrichAvatars()
	return p.toCommitInfo("gitee: get commit info")
}

// CommitInfos lists commits with optional sha/author/since/until filters.
func (c *Client) CommitInfos(ctx context.Context, path app.RepoPath, opts *app.CommitListOptions) ([]app.CommitInfo, error) {
	token, tr := c.snapshot()

	q := url.Values{}
	opts.Apply(q)

	body, err := tr.Get(ctx, c.repoURL(path)+"/commits", tokenQuery(token, q), nil)
	if err != nil {
		return nil, err
	}

	var ps []commitPayload
	if err := json.Unmarshal(body, &ps); err != nil {
		return nil, fmt.Errorf("unmarshalling commits response: %w", err)
	}
	commits := make([]app.CommitInfo, 0, len(ps))
	for _, p := range ps {
		p.enrichAvatars()
		commit, err := p.toCommitInfo("gitee: get commit infos")
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

func (c *Client) repoURL(path app.RepoPath) string {
	return c.apiURL + "/repos/" + url.PathEscape(path.Owner) + "/" + url.PathEscape(path.Name)
}

func (c *Client) snapshot() (string, *transport.Transport) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.tr
}

func tokenQuery(token string, q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if token != "" {
		q.Set("access_token", token)
	}
	return q
}

func unmarshalUser(body []byte, op string) (app.UserInfo, error) {
	var p userPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return app.UserInfo{}, fmt.Errorf("unmarshalling user response: %w", err)
	}
	return p.toUserInfo(op)
}

func unmarshalRepos(body []byte, op string) ([]app.RepoInfo, error) {
	var ps []repoPayload
	if err := json.Unmarshal(body, &ps); err != nil {
		return nil, fmt.Errorf("unmarshalling repos response: %w", err)
	}
	repos := make([]app.RepoInfo, 0, len(ps))
	for _, p := range ps {
		repo, err := p.toRepoInfo(op)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, nil
}
