package github

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unigit/unigit/app"
	"github.com/unigit/unigit/mock"
)

var validUserJSON = []byte(`{
	"id": 583231,
	"login": "octocat",
	"name": "The Octocat",
	"avatar_url": "https://avatars.githubusercontent.com/u/583231?v=4",
	"email": null,
	"followers": 10000,
	"following": 9,
	"public_repos": 8
}`)

func TestClient_SetToken(t *testing.T) {
	t.Parallel()

	c := NewClient(&mock.HTTPDoer{})
	require.ErrorIs(t, c.SetToken(""), app.ErrTokenEmpty)
	require.NoError(t, c.SetToken("gh-token"))
}

func TestClient_UserInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doer    *mock.HTTPDoer
		token   string
		want    app.UserInfo
		wantErr error
	}{
		{
			name:    "no token set",
			wantErr: app.ErrTokenEmpty,
		},
		{
			name: "status ok, body ok",
			doer: &mock.HTTPDoer{
				Statuses: []int{http.StatusOK},
				Bodies:   [][]byte{validUserJSON},
			},
			token: "gh-token",
			want: app.UserInfo{
				ID:              "583231",
				Login:           "octocat",
				Name:            "The Octocat",
				AvatarURL:       "https://avatars.githubusercontent.com/u/583231?v=4",
				Followers:       10000,
				Following:       9,
				PublicRepoCount: 8,
			},
		},
		{
			name: "status unauthorized",
			doer: &mock.HTTPDoer{
				Statuses: []int{http.StatusUnauthorized},
				Bodies:   [][]byte{[]byte(`{}`)},
			},
			token:   "bad-token",
			wantErr: app.ErrUnauthorized,
		},
		{
			name: "missing login",
			doer: &mock.HTTPDoer{
				Statuses: []int{http.StatusOK},
				Bodies:   [][]byte{[]byte(`{"id": 1, "avatar_url": "https://a"}`)},
			},
			token: "gh-token",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := tt.doer
			if doer == nil {
				doer = &mock.HTTPDoer{}
			}
			c := NewClient(doer)
			if tt.token != "" {
				require.NoError(t, c.SetToken(tt.token))
			}

			got, err := c.UserInfo(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.want == (app.UserInfo{}) {
				require.Error(t, err)
				assert.True(t, app.IsMalformedResponse(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			require.Len(t, doer.Responses, 1)
			req := doer.Responses[0].Request
			assert.Equal(t, "/user", req.URL.Path)
			checkAPIHeaders(t, req)
			assert.Equal(t, "Bearer "+tt.token, req.Header.Get("Authorization"))
		})
	}
}

func TestClient_UserInfoByName(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies:   [][]byte{validUserJSON},
	}
	c := NewClient(doer)

	got, err := c.UserInfoByName(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "octocat", got.Login)
	assert.Equal(t, "583231", got.ID)

	req := doer.Responses[0].Request
	assert.Equal(t, "/users/octocat", req.URL.Path)
	// No token: no auth header.
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestClient_UserInfoByNameNotFound(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusNotFound},
		Bodies:   [][]byte{[]byte(`{"message": "Not Found"}`)},
	}
	c := NewClient(doer)

	_, err := c.UserInfoByName(context.Background(), "nobody")
	require.ErrorIs(t, err, app.ErrNotFound)
}

func TestClient_UserAvatarURL(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies: [][]byte{[]byte(`<html><head>
			<meta name="octolytics-dimension-user_id" content="583231" />
		</head><body></body></html>`)},
	}
	c := NewClient(doer)

	got, err := c.UserAvatarURL(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "https://avatars.githubusercontent.com/u/583231?v=4", got)

	req := doer.Responses[0].Request
	assert.Equal(t, "/octocat", req.URL.Path)
	assert.Equal(t, "text/html", req.Header.Get("Accept"))
}

func TestClient_UserAvatarURLMissingMeta(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies:   [][]byte{[]byte(`<html><head></head><body></body></html>`)},
	}
	c := NewClient(doer)

	_, err := c.UserAvatarURL(context.Background(), "octocat")
	require.Error(t, err)
	assert.True(t, app.IsMalformedResponse(err))
}

func TestClient_OrgAvatarURL(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies: [][]byte{[]byte(`<html><head>
			<meta name="hovercard-subject-tag" content="organization:9919" />
		</head><body></body></html>`)},
	}
	c := NewClient(doer)

	got, err := c.OrgAvatarURL(context.Background(), "github")
	require.NoError(t, err)
	assert.Equal(t, "https://avatars.githubusercontent.com/u/9919?v=4", got)
}

func TestClient_RepoDefaultBranch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		strategy app.BranchStrategy
		doer     *mock.HTTPDoer
		want     string
		wantPath string
		wantErr  bool
	}{
		{
			name:     "api strategy reads repo payload",
			strategy: app.BranchViaAPI,
			doer: &mock.HTTPDoer{
				Statuses: []int{http.StatusOK},
				Bodies:   [][]byte{[]byte(`{"id": 1, "default_branch": "main"}`)},
			},
			want:     "main",
			wantPath: "/repos/golang/go",
		},
		{
			name:     "web strategy picks the default flag",
			strategy: app.BranchViaWeb,
			doer: &mock.HTTPDoer{
				Statuses: []int{http.StatusOK},
				Bodies: [][]byte{[]byte(`{"payload": {"branches": [
					{"name": "dev", "isDefault": false},
					{"name": "master", "isDefault": true}
				]}}`)},
			},
			want:     "master",
			wantPath: "/golang/go/branches/all",
		},
		{
			name:     "web strategy with no default branch",
			strategy: app.BranchViaWeb,
			doer: &mock.HTTPDoer{
				Statuses: []int{http.StatusOK},
				Bodies:   [][]byte{[]byte(`{"payload": {"branches": []}}`)},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.doer)
			got, err := c.RepoDefaultBranch(context.Background(), app.RepoPath{Owner: "golang", Name: "go"}, tt.strategy)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, app.IsMalformedResponse(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPath, tt.doer.Responses[0].Request.URL.Path)
		})
	}
}

func TestClient_UserReposByNamePagination(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies:   [][]byte{[]byte(`[]`)},
	}
	c := NewClient(doer)

	_, err := c.UserReposByName(context.Background(), "octocat", &app.ReposListOptions{PerPage: 250, Page: 2})
	require.NoError(t, err)

	req := doer.Responses[0].Request
	assert.Equal(t, "/users/octocat/repos", req.URL.Path)
	assert.Equal(t, "pushed", req.URL.Query().Get("sort"))
	assert.Equal(t, "100", req.URL.Query().Get("per_page"))
	assert.Equal(t, "2", req.URL.Query().Get("page"))
}

func TestClient_CommitInfoEnrichesAvatars(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies: [][]byte{[]byte(`{
			"sha": "abc123",
			"commit": {
				"author": {"name": "Ada", "email": "ada@example.com", "date": "2024-01-02T10:00:00Z"},
				"committer": {"name": "Bob", "email": "bob@example.com", "date": "2024-01-02T11:00:00Z"},
				"message": "fix parser"
			},
			"stats": {"total": 12, "additions": 10, "deletions": 2},
			"author": {"avatar_url": "https://avatars.githubusercontent.com/u/1?v=4"},
			"committer": {"avatar_url": "https://avatars.githubusercontent.com/u/2?v=4"}
		}`)},
	}
	c := NewClient(doer)

	got, err := c.CommitInfo(context.Background(), app.RepoPath{Owner: "golang", Name: "go"}, "")
	require.NoError(t, err)

	assert.Equal(t, "abc123", got.SHA)
	assert.Equal(t, "fix parser", got.Commit.Message)
	assert.Equal(t, "https://avatars.githubusercontent.com/u/1?v=4", got.Commit.Author.AvatarURL)
	assert.Equal(t, "https://avatars.githubusercontent.com/u/2?v=4", got.Commit.Committer.AvatarURL)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), got.Commit.Author.Date)
	assert.Equal(t, uint64(12), got.Stats.Total)

	// Empty sha resolves to HEAD.
	assert.Equal(t, "/repos/golang/go/commits/HEAD", doer.Responses[0].Request.URL.Path)
}

func TestClient_CommitInfosFilters(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies:   [][]byte{[]byte(`[]`)},
	}
	c := NewClient(doer)

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := c.CommitInfos(context.Background(), app.RepoPath{Owner: "golang", Name: "go"}, &app.CommitListOptions{
		PerPage: 50,
		Author:  "ada",
		Since:   since,
	})
	require.NoError(t, err)

	q := doer.Responses[0].Request.URL.Query()
	assert.Equal(t, "50", q.Get("per_page"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "ada", q.Get("author"))
	assert.Equal(t, "2024-01-01T00:00:00Z", q.Get("since"))
}

func TestClient_RepoCollaborators(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies: [][]byte{[]byte(`[
			{"inviter": {"login": "octocat", "avatar_url": "https://avatars.githubusercontent.com/u/583231?v=4"}}
		]`)},
	}
	c := NewClient(doer)

	got, err := c.RepoCollaborators(context.Background(), app.RepoPath{Owner: "golang", Name: "go"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "octocat", got[0].Login)

	req := doer.Responses[0].Request
	assert.Equal(t, "/repos/golang/go/invitations", req.URL.Path)
	assert.Equal(t, "30", req.URL.Query().Get("per_page"))
}

func checkAPIHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
	assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
	assert.Equal(t, "unigit", r.Header.Get("User-Agent"))
}
