// Package github adapts the capability interface to the GitHub REST v3
// dialect, plus the HTML endpoints GitHub serves where no JSON API exists
// (contribution calendars, avatar resolution).
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/unigit/unigit/app"
	"github.com/unigit/unigit/transport"
)

const (
	defaultAPIURL  = "https://api.github.com"
	defaultBaseURL = "https://github.com"

	defaultTimeout = 30 * time.Second
)

var defaultHeaders = map[string]string{
	"Accept":               "application/vnd.github+json",
	"User-Agent":           "unigit",
	"X-GitHub-Api-Version": "2022-11-28",
}

// Client implements app.Client against GitHub.
type Client struct {
	mu    sync.RWMutex
	token string
	tr    *transport.Transport

	apiURL  string
	baseURL string
}

var _ app.Client = &Client{}

// NewClient creates a github client using the given doer.
func NewClient(doer transport.Doer) *Client {
	return &Client{
		tr:      transport.New(doer, defaultHeaders, true),
		apiURL:  defaultAPIURL,
		baseURL: defaultBaseURL,
	}
}

// New creates a github client with a default pooled http client.
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
	c.tr = transport.New(client, defaultHeaders, true)
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

	var p userPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return app.UserInfo{}, fmt.Errorf("unmarshalling user response: %w", err)
	}
	return p.toUserInfo("github: get user info")
}

// UserInfoByName returns a public profile. Token is optional.
func (c *Client) UserInfoByName(ctx context.Context, login string) (app.UserInfo, error) {
	token, tr := c.snapshot()

	body, err := tr.Get(ctx, c.apiURL+"/users/"+url.PathEscape(login), nil, bearer(token))
	if err != nil {
		return app.UserInfo{}, err
	}

	var p userPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return app.UserInfo{}, fmt.Errorf("unmarshalling user response: %w", err)
	}
	return p.toUserInfo("github: get user info with name")
}

// UserAvatarURL resolves the avatar through the profile page: the numeric
// user id sits in a meta tag, the avatar URL is derived from it.
func (c *Client) UserAvatarURL(ctx context.Context, login string) (string, error) {
	_, tr := c.snapshot()

	body, err := tr.Get(ctx, c.baseURL+"/"+url.PathEscape(login), nil, htmlHeader())
	if err != nil {
		return "", err
	}

	id, err := metaContent(body, "octolytics-dimension-user_id", "github: get user avatar url")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://avatars.githubusercontent.com/u/%s?v=4", id), nil
}

// UserContribution scrapes the contribution calendar fragment.
func (c *Client) UserContribution(ctx context.Context, login string) (app.ContributionResult, error) {
	_, tr := c.snapshot()

	q := url.Values{}
	q.Set("action", "show")
	q.Set("controller", "profiles")
	q.Set("tab", "contributions")
	q.Set("user_id", login)

	header := htmlHeader()
	header.Set("X-Requested-With", "XMLHttpRequest")

	body, err := tr.Get(ctx, c.baseURL+"/"+url.PathEscape(login), q, header)
	if err != nil {
		return app.ContributionResult{}, err
	}

	logrus.WithField("provider", "github").WithField("user", login).Debug("parsing contribution calendar")

	return parseContributionHTML(body)
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
	return p.toOrgInfo("github: get org info")
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
	return unmarshalRepos(body, "github: get org repos")
}

// OrgAvatarURL resolves an organization's avatar from its public page.
func (c *Client) OrgAvatarURL(ctx context.Context, org string) (string, error) {
	_, tr := c.snapshot()

	body, err := tr.Get(ctx, c.baseURL+"/"+url.PathEscape(org), nil, htmlHeader())
	if err != nil {
		return "", err
	}

	id, err := metaContent(body, "hovercard-subject-tag", "github: get org avatar url")
	if err != nil {
		return "", err
	}
	// Content has the form "organization:<id>".
	if i := strings.LastIndexByte(id, ':'); i >= 0 {
		id = id[i+1:]
	}
	return fmt.Sprintf("https://avatars.githubusercontent.com/u/%s?v=4", id), nil
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
	return p.toRepoInfo("github: get repo info")
}

// RepoDefaultBranch resolves the default branch name. The API strategy reads
// it from the repository payload; the web strategy asks the unauthenticated
// branches endpoint and picks the branch flagged as default.
func (c *Client) RepoDefaultBranch(ctx context.Context, path app.RepoPath, strategy app.BranchStrategy) (string, error) {
	token, tr := c.snapshot()

	if strategy == app.BranchViaWeb {
		header := http.Header{}
		header.Set("X-Requested-With", "XMLHttpRequest")
		header.Set("Accept", "application/json")

		u := fmt.Sprintf("%s/%s/%s/branches/all", c.baseURL, url.PathEscape(path.Owner), url.PathEscape(path.Name))
		body, err := tr.Get(ctx, u, nil, header)
		if err != nil {
			return "", err
		}

		var p branchesPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return "", fmt.Errorf("unmarshalling branches response: %w", err)
		}
		return p.defaultBranch("github: get repo default branch")
	}

	body, err := tr.Get(ctx, c.repoURL(path), nil, bearer(token))
	if err != nil {
		return "", err
	}

	var p repoPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("unmarshalling repo response: %w", err)
	}
	if p.DefaultBranch == nil {
		return "", &app.MalformedResponseError{Op: "github: get repo default branch", Field: "default_branch"}
	}
	return *p.DefaultBranch, nil
}

// RepoCollaborators lists pending collaborators; GitHub reports them as
// invitations carrying a nested inviter object.
func (c *Client) RepoCollaborators(ctx context.Context, path app.RepoPath, opts *app.ReposListOptions) ([]app.CollaboratorResult, error) {
	token, tr := c.snapshot()

	q := url.Values{}
	opts.Apply(q)

	body, err := tr.Get(ctx, c.repoURL(path)+"/invitations", q, bearer(token))
	if err != nil {
		return nil, err
	}

	var ps []invitationPayload
	if err := json.Unmarshal(body, &ps); err != nil {
		return nil, fmt.Errorf("unmarshalling invitations response: %w", err)
	}
	collaborators := make([]app.CollaboratorResult, 0, len(ps))
	for _, p := range ps {
		collaborator, err := p.toCollaborator("github: get repo collaborators")
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

	body, err := tr.Get(ctx, c.apiURL+"/user/repos", q, bearer(token))
	if err != nil {
		return nil, err
	}
	return unmarshalRepos(body, "github: get user repos")
}

// UserReposByName lists a user's public repositories, newest pushed first.
func (c *Client) UserReposByName(ctx context.Context, login string, opts *app.ReposListOptions) ([]app.RepoInfo, error) {
	token, tr := c.snapshot()

	q := url.Values{}
	q.Set("sort", "pushed")
	opts.Apply(q)

	body, err := tr.Get(ctx, c.apiURL+"/users/"+url.PathEscape(login)+"/repos", q, bearer(token))
	if err != nil {
		return nil, err
	}
	return unmarshalRepos(body, "github: get user repos with name")
}

// CommitInfo returns a single commit. The commit payload carries avatar URLs
// only on its top-level author/committer objects; they are merged into the
// nested commit users before normalization.
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
	p.enrichAvatars()
	return p.toCommitInfo("github: get commit info")
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
		p.enrichAvatars()
		commit, err := p.toCommitInfo("github: get commit infos")
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

func htmlHeader() http.Header {
	header := http.Header{}
	header.Set("Accept", "text/html")
	return header
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
