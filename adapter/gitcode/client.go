// Package gitcode adapts the capability interface to GitCode, which splits
// its surface between a v5-style REST API and a separate web-api host. The
// web-api endpoints require a Referer header and fill the gaps the REST API
// leaves: repo counts, avatars and the contribution calendar.
package gitcode

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
	defaultAPIURL    = "https://api.gitcode.com/api/v5"
	defaultBaseURL   = "https://gitcode.com"
	defaultWebAPIURL = "https://web-api.gitcode.com"

	defaultTimeout = 30 * time.Second
)

var defaultHeaders = map[string]string{
	"Accept":     "application/json",
	"User-Agent": "unigit",
}

// Client implements app.Client against GitCode.
type Client struct {
	mu    sync.RWMutex
	token string
	tr    *transport.Transport

	apiURL    string
	baseURL   string
	webAPIURL string
}

var _ app.Client = &Client{}

// NewClient creates a gitcode client using the given doer.
func NewClient(doer transport.Doer) *Client {
	return &Client{
		tr:        transport.New(doer, defaultHeaders, false),
		apiURL:    defaultAPIURL,
		baseURL:   defaultBaseURL,
		webAPIURL: defaultWebAPIURL,
	}
}

// New creates a gitcode client with a default pooled http client.
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

// UserInfo returns the authenticated user's profile. The repo count is not
// on the profile payload and is resolved through the web-api before
// normalization.
func (c *Client) UserInfo(ctx context.Context) (app.UserInfo, error) {
	token, tr := c.snapshot()
	if token == "" {
		return app.UserInfo{}, app.ErrTokenEmpty
	}

	body, err := tr.Get(ctx, c.apiURL+"/user", tokenQuery(token, nil), nil)
	if err != nil {
		return app.UserInfo{}, err
	}

	var p userPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return app.UserInfo{}, fmt.Errorf("unmarshalling user response: %w", err)
	}

	login := p.Username
	if login == "" && p.Login != nil {
		login = *p.Login
	}
	repoCount, err := c.userRepoCount(ctx, login)
	if err != nil {
		return app.UserInfo{}, err
	}
	p.RepoCount = repoCount

	return p.toUserInfo("gitcode: get user info")
}

// UserInfoByName returns a public profile, enriched with the web-api repo
// count. Token is optional.
func (c *Client) UserInfoByName(ctx context.Context, login string) (app.UserInfo, error) {
	token, tr := c.snapshot()

	body, err := tr.Get(ctx, c.apiURL+"/users/"+url.PathEscape(login), tokenQuery(token, nil), nil)
	if err != nil {
		return app.UserInfo{}, err
	}

	var p userPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return app.UserInfo{}, fmt.Errorf("unmarshalling user response: %w", err)
	}

	repoCount, err := c.userRepoCount(ctx, login)
	if err != nil {
		return app.UserInfo{}, err
	}
	p.RepoCount = repoCount

	return p.toUserInfo("gitcode: get user info with name")
}

// UserAvatarURL resolves the avatar through the web-api profile settings
// endpoint.
func (c *Client) UserAvatarURL(ctx context.Context, login string) (string, error) {
	_, tr := c.snapshot()

	q := url.Values{}
	q.Set("username", login)

	body, err := tr.Get(ctx, c.webAPIURL+"/uc/api/v1/user/setting/profile", q, c.refererHeader())
	if err != nil {
		return "", err
	}

	var p struct {
		Avatar *string `json:"avatar"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("unmarshalling profile response: %w", err)
	}
	if p.Avatar == nil {
		return "", &app.MalformedResponseError{Op: "gitcode: get user avatar url", Field: "avatar"}
	}
	return *p.Avatar, nil
}

// UserContribution fetches the JSON day-to-count map from the web-api.
func (c *Client) UserContribution(ctx context.Context, login string) (app.ContributionResult, error) {
	_, tr := c.snapshot()

	q := url.Values{}
	q.Set("username", login)

	u := c.webAPIURL + "/uc/api/v1/events/" + url.PathEscape(login) + "/contributions"
	body, err := tr.Get(ctx, u, q, c.refererHeader())
	if err != nil {
		return app.ContributionResult{}, err
	}

	logrus.WithField("provider", "gitcode").WithField("user", login).Debug("building contribution calendar")

	return parseContributionJSON(body)
}

// OrgInfo returns an organization's profile from the web-api.
func (c *Client) OrgInfo(ctx context.Context, org string) (app.OrgInfo, error) {
	token, tr := c.snapshot()

	body, err := tr.Get(ctx, c.webAPIURL+"/orgs/"+url.PathEscape(org), tokenQuery(token, nil), nil)
	if err != nil {
		return app.OrgInfo{}, err
	}

	var p orgPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return app.OrgInfo{}, fmt.Errorf("unmarshalling org response: %w", err)
	}
	return p.toOrgInfo("gitcode: get org info")
}

// OrgRepos lists an organization's repositories.
func (c *Client) OrgRepos(ctx context.Context, org string, opts *app.ReposListOptions) ([]app.RepoInfo, error) {
	token, tr := c.snapshot()

	q := url.Values{}
	opts.Apply(q)

	body, err := tr.Get(ctx, c.apiURL+"/orgs/"+url.PathEscape(org)+"/repos", tokenQuery(token, q), nil)
	if err != nil {
		return nil, err
	}
	return unmarshalRepos(body, "gitcode: get org repos")
}

// OrgAvatarURL resolves an organization's avatar through the web-api groups
// endpoint.
func (c *Client) OrgAvatarURL(ctx context.Context, org string) (string, error) {
	_, tr := c.snapshot()

	body, err := tr.Get(ctx, c.webAPIURL+"/api/v2/groups/"+url.PathEscape(org), nil, c.refererHeader())
	if err != nil {
		return "", err
	}

	var p struct {
		Avatar *string `json:"avatar"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("unmarshalling group response: %w", err)
	}
	if p.Avatar == nil {
		return "", &app.MalformedResponseError{Op: "gitcode: get org avatar url", Field: "avatar"}
	}
	return *p.Avatar, nil
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
	return p.toRepoInfo("gitcode: get repo info")
}

// RepoDefaultBranch resolves the default branch name. The web strategy asks
// the web-api project endpoint, which addresses the repository as a single
// escaped owner/name segment.
func (c *Client) RepoDefaultBranch(ctx context.Context, path app.RepoPath, strategy app.BranchStrategy) (string, error) {
	token, tr := c.snapshot()

	var body []byte
	var err error
	if strategy == app.BranchViaWeb {
		u := c.webAPIURL + "/api/v2/projects/" + url.PathEscape(path.Owner+"/"+path.Name)
		body, err = tr.Get(ctx, u, nil, c.refererHeader())
	} else {
		body, err = tr.Get(ctx, c.repoURL(path), tokenQuery(token, nil), nil)
	}
	if err != nil {
		return "", err
	}

	var p struct {
		DefaultBranch *string `json:"default_branch"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("unmarshalling repo response: %w", err)
	}
	if p.DefaultBranch == nil {
		return "", &app.MalformedResponseError{Op: "gitcode: get repo default branch", Field: "default_branch"}
	}
	return *p.DefaultBranch, nil
}

// RepoCollaborators lists collaborators; the payload carries login and
// avatar directly.
func (c *Client) RepoCollaborators(ctx context.Context, path app.RepoPath, opts *app.ReposListOptions) ([]app.CollaboratorResult, error) {
	token, tr := c.snapshot()

	q := url.Values{}
	opts.Apply(q)

	body, err := tr.Get(ctx, c.repoURL(path)+"/collaborators", tokenQuery(token, q), nil)
	if err != nil {
		return nil, err
	}

	var ps []collaboratorPayload
	if err := json.Unmarshal(body, &ps); err != nil {
		return nil, fmt.Errorf("unmarshalling collaborators response: %w", err)
	}
	collaborators := make([]app.CollaboratorResult, 0, len(ps))
	for _, p := range ps {
		collaborator, err := p.toCollaborator("gitcode: get repo collaborators")
		if err != nil {
			return nil, err
		}
		collaborators = append(collaborators, collaborator)
	}
	return collaborators, nil
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
	return unmarshalRepos(body, "gitcode: get user repos")
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
	return unmarshalRepos(body, "gitcode: get user repos with name")
}

// CommitInfo returns a single commit. GitCode commit payloads carry no
// avatars at all; both are resolved through the web-api keyed by the
// author/committer display names before normalization.
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

	if p.Commit != nil {
		if p.Commit.Author != nil && p.Commit.Author.Name != nil {
			avatarURL, err := c.UserAvatarURL(ctx, *p.Commit.Author.Name)
			if err != nil {
				return app.CommitInfo{}, err
			}
			p.Commit.Author.AvatarURL = avatarURL
		}
		if p.Commit.Committer != nil && p.Commit.Committer.Name != nil {
			avatarURL, err := c.UserAvatarURL(ctx, *p.Commit.Committer.Name)
			if err != nil {
				return app.CommitInfo{}, err
			}
			p.Commit.Committer.AvatarURL = avatarURL
		}
	}

	return p.toCommitInfo("gitcode: get commit info")
}

// CommitInfos lists commits with optional sha/author/since/until filters.
// List entries are not avatar-enriched; that would cost two extra requests
// per commit.
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
		commit, err := p.toCommitInfo("gitcode: get commit infos")
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// userRepoCount asks the web-api how many repositories the user created.
func (c *Client) userRepoCount(ctx context.Context, login string) (uint64, error) {
	_, tr := c.snapshot()

	q := url.Values{}
	q.Set("repo_query_type", "created")

	u := c.webAPIURL + "/api/v2/projects/profile/" + url.PathEscape(login)
	body, err := tr.Get(ctx, u, q, c.refererHeader())
	if err != nil {
		return 0, err
	}

	var p struct {
		Total uint64 `json:"total"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return 0, fmt.Errorf("unmarshalling profile projects response: %w", err)
	}
	return p.Total, nil
}

func (c *Client) repoURL(path app.RepoPath) string {
	return c.apiURL + "/repos/" + url.PathEscape(path.Owner) + "/" + url.PathEscape(path.Name)
}

func (c *Client) refererHeader() http.Header {
	header := http.Header{}
	header.Set("Referer", c.baseURL)
	return header
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
