// Package cnb adapts the capability interface to CNB. The API is fully
// JSON, authenticates with a bearer header and, unlike the other backends,
// uses string-native resource ids.
package cnb

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
	defaultAPIURL  = "https://api.cnb.cool"
	defaultBaseURL = "https://cnb.cool"

	defaultTimeout = 30 * time.Second
)

var defaultHeaders = map[string]string{
	"Accept":     "application/json",
	"User-Agent": "unigit",
}

// Client implements app.Client against CNB.
type Client struct {
	mu    sync.RWMutex
	token string
	tr    *transport.Transport

	apiURL  string
	baseURL string
}

var _ app.Client = &Client{}

// NewClient creates a cnb client using the given doer.
func NewClient(doer transport.Doer) *Client {
	return &Client{
		tr:      transport.New(doer, defaultHeaders, false),
		apiURL:  defaultAPIURL,
		baseURL: defaultBaseURL,
	}
}

// New creates a cnb client with a default pooled http client.
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

	body, err := tr.Get(ctx, c.apiURL+"/user", nil, bearer(token))
	if err != nil {
		return app.UserInfo{}, err
	}
	return unmarshalUser(body, "cnb: get user info")
}

// UserInfoByName returns a public profile. Token is optional.
func (c *Client) UserInfoByName(ctx context.Context, login string) (app.UserInfo, error) {
	token, tr := c.snapshot()

	body, err := tr.Get(ctx, c.apiURL+"/users/"+url.PathEscape(login), nil, bearer(token))
	if err != nil {
		return app.UserInfo{}, err
	}
	return unmarshalUser(body, "cnb: get user info with name")
}

// UserAvatarURL reads the avatar off the public profile payload; CNB has no
// separate avatar channel.
func (c *Client) UserAvatarURL(ctx context.Context, login string) (string, error) {
	user, err := c.UserInfoByName(ctx, login)
	if err != nil {
		return "", err
	}
	return user.AvatarURL, nil
}

// UserContribution fetches the JSON score map for the user's activity.
func (c *Client) UserContribution(ctx context.Context, login string) (app.ContributionResult, error) {
	token, tr := c.snapshot()

	body, err := tr.Get(ctx, c.apiURL+"/users/"+url.PathEscape(login)+"/contributions", nil, bearer(token))
	if err != nil {
		return app.ContributionResult{}, err
	}

	logrus.WithField("provider", "cnb").WithField("user", login).Debug("building contribution calendar")

	return parseContributionJSON(body)
}

// OrgInfo returns an organization's profile.
func (c *Client) OrgInfo(ctx context.Context, org string) (app.OrgInfo, error) {
	token, tr := c.snapshot()

	body, err := tr.Get(ctx, c.apiURL+"/orgs/"+url.PathEscape(org), nil, bearer(token))
	if err != nil {
		return app.OrgInfo{}, err
	}

	var p orgPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return app.OrgInfo{}, fmt.Errorf("unmarshalling org response: %w", err)
	}
	return p.toOrgInfo("cnb: get org info")
}

// OrgRepos lists an organization's repositories.
func (c *Client) OrgRepos(ctx context.Context, org string, opts *app.ReposListOptions) ([]app.RepoInfo, error) {
	token, tr := c.snapshot()

	q := url.Values{}
	opts.Apply(q)

	body, err := tr.Get(ctx, c.apiURL+"/orgs/"+url.PathEscape(org)+"/repos", q, bearer(token))
	if err != nil {
		return nil, err
	}
	return unmarshalRepos(body, "cnb: get org repos")
}

// OrgAvatarURL reads the avatar off the organization payload.
func (c *Client) OrgAvatarURL(ctx context.Context, org string) (string, error) {
	info, err := c.OrgInfo(ctx, org)
	if err != nil {
		return "", err
	}
	return info.AvatarURL, nil
}

// RepoInfo returns repository metadata.
func (c *Client) RepoInfo(ctx context.Context, path app.RepoPath) (app.RepoInfo, error) {
	token, tr := c.snapshot()

	body, err := tr.Get(ctx, c.repoURL(path), nil, bearer(token))
	if err != nil {
		return app.RepoInfo{}, err
	}

	var p repoPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return app.RepoInfo{}, fmt.Errorf("unmarshalling repo response: %w", err)
	}
	return p.toRepoInfo("cnb: get repo info")
}

// RepoDefaultBranch resolves the default branch name. CNB has no separate
// web surface for branches; the web strategy repeats the repo lookup
// without credentials.
func (c *Client) RepoDefaultBranch(ctx context.Context, path app.RepoPath, strategy app.BranchStrategy) (string, error) {
	token, tr := c.snapshot()
	if strategy == app.BranchViaWeb {
		token = ""
	}

	body, err := tr.Get(ctx, c.repoURL(path), nil, bearer(token))
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
		return "", &app.MalformedResponseError{Op: "cnb: get repo default branch", Field: "default_branch"}
	}
	return *p.DefaultBranch, nil
}

// RepoCollaborators is not exposed by CNB.
func (c *Client) RepoCollaborators(ctx context.Context, path app.RepoPath, opts *app.ReposListOptions) ([]app.CollaboratorResult, error) {
	return nil, app.ErrNotSupported
}

// UserRepos lists the authenticated user's repositories.
func (c *Client) UserRepos(ctx context.Context, opts *app.ReposListOptions) ([]app.RepoInfo, error) {
	token, tr := c.snapshot()

	q := url.Values{}
	opts.Apply(q)

	body, err := tr.Get(ctx, c.apiURL+"/user/repos", q, bearer(token))
	if err != nil {
		return nil, err
	}
	return unmarshalRepos(body, "cnb: get user repos")
}

// UserReposByName lists a user's public repositories.
func (c *Client) UserReposByName(ctx context.Context, login string, opts *app.ReposListOptions) ([]app.RepoInfo, error) {
	token, tr := c.snapshot()

	q := url.Values{}
	opts.Apply(q)

	body, err := tr.Get(ctx, c.apiURL+"/users/"+url.PathEscape(login)+"/repos", q, bearer(token))
	if err != nil {
		return nil, err
	}
	return unmarshalRepos(body, "cnb: get user repos with name")
}

// CommitInfo returns a single commit. CNB commit payloads carry the
// author/committer avatars inline, so no secondary calls are needed.
func (c *Client) CommitInfo(ctx context.Context, path app.RepoPath, sha string) (app.CommitInfo, error) {
	token, tr := c.snapshot()

	if sha == "" {
		sha = "HEAD"
	}
	body, err := tr.Get(ctx, c.repoURL(path)+"/commits/"+url.PathEscape(sha), nil, bearer(token))
	if err != nil {
		return app.CommitInfo{}, err
	}

	var p commitPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return app.CommitInfo{}, fmt.Errorf("unmarshalling commit response: %w", err)
	}
	return p.toCommitInfo("cnb: get commit info")
}

// CommitInfos lists commits with optional sha/author/since/until filters.
func (c *Client) CommitInfos(ctx context.Context, path app.RepoPath, opts *app.CommitListOptions) ([]app.CommitInfo, error) {
	token, tr := c.snapshot()

	q := url.Values{}
	opts.Apply(q)

	body, err := tr.Get(ctx, c.repoURL(path)+"/commits", q, bearer(token))
	if err != nil {
		return nil, err
	}

	var ps []commitPayload
	if err := json.Unmarshal(body, &ps); err != nil {
		return nil, fmt.Errorf("unmarshalling commits response: %w", err)
	}
	commits := make([]app.CommitInfo, 0, len(ps))
	for _, p := range ps {
		commit, err := p.toCommitInfo("cnb: get commit infos")
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

func bearer(token string) http.Header {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return header
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
