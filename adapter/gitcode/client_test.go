package gitcode

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unigit/unigit/app"
	"github.com/unigit/unigit/mock"
)

var validUserJSON = []byte(`{
	"id": 4321,
	"login": "mosher",
	"username": "mosher",
	"name": "Mosher",
	"avatar_url": "https://cdn.gitcode.com/avatar/4321.png",
	"followers": 2,
	"following": 9
}`)

func TestClient_UserInfoRequiresToken(t *testing.T) {
	t.Parallel()

	c := NewClient(&mock.HTTPDoer{})
	_, err := c.UserInfo(context.Background())
	require.ErrorIs(t, err, app.ErrTokenEmpty)
}

func TestClient_UserInfoEnrichesRepoCount(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK, http.StatusOK},
		Bodies: [][]byte{
			validUserJSON,
			[]byte(`{"total": 17}`),
		},
	}
	c := NewClient(doer)
	require.NoError(t, c.SetToken("gitcode-token"))

	got, err := c.UserInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4321", got.ID)
	assert.Equal(t, "mosher", got.Login)
	assert.Equal(t, uint64(17), got.PublicRepoCount)

	require.Len(t, doer.Responses, 2)

	userReq := doer.Responses[0].Request
	assert.Equal(t, "api.gitcode.com", userReq.URL.Host)
	assert.Equal(t, "/api/v5/user", userReq.URL.Path)
	assert.Equal(t, "gitcode-token", userReq.URL.Query().Get("access_token"))

	countReq := doer.Responses[1].Request
	assert.Equal(t, "web-api.gitcode.com", countReq.URL.Host)
	assert.Equal(t, "/api/v2/projects/profile/mosher", countReq.URL.Path)
	assert.Equal(t, "created", countReq.URL.Query().Get("repo_query_type"))
	assert.Equal(t, "https://gitcode.com", countReq.Header.Get("Referer"))
}

func TestClient_UserAvatarURL(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies:   [][]byte{[]byte(`{"avatar": "https://cdn.gitcode.com/avatar/4321.png"}`)},
	}
	c := NewClient(doer)

	got, err := c.UserAvatarURL(context.Background(), "mosher")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.gitcode.com/avatar/4321.png", got)

	req := doer.Responses[0].Request
	assert.Equal(t, "/uc/api/v1/user/setting/profile", req.URL.Path)
	assert.Equal(t, "mosher", req.URL.Query().Get("username"))
	assert.Equal(t, "https://gitcode.com", req.Header.Get("Referer"))
}

func TestClient_UserAvatarURLMissingField(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies:   [][]byte{[]byte(`{}`)},
	}
	c := NewClient(doer)

	_, err := c.UserAvatarURL(context.Background(), "mosher")
	require.True(t, app.IsMalformedResponse(err))
}

func TestClient_OrgInfo(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies: [][]byte{[]byte(`{
			"id": 88,
			"login": "widgets",
			"name": "Widgets Inc",
			"avatar_url": "https://cdn.gitcode.com/org/88.png",
			"followers": 41
		}`)},
	}
	c := NewClient(doer)

	got, err := c.OrgInfo(context.Background(), "widgets")
	require.NoError(t, err)
	assert.Equal(t, uint64(88), got.ID)
	assert.Equal(t, uint64(41), got.FollowCount)

	req := doer.Responses[0].Request
	assert.Equal(t, "web-api.gitcode.com", req.URL.Host)
	assert.Equal(t, "/orgs/widgets", req.URL.Path)
}

func TestClient_RepoDefaultBranchWeb(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies:   [][]byte{[]byte(`{"default_branch": "main"}`)},
	}
	c := NewClient(doer)

	branch, err := c.RepoDefaultBranch(context.Background(), app.RepoPath{Owner: "mosher", Name: "tool"}, app.BranchViaWeb)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	req := doer.Responses[0].Request
	assert.Equal(t, "web-api.gitcode.com", req.URL.Host)
	// The project endpoint addresses the repo as one escaped segment.
	assert.Equal(t, "/api/v2/projects/mosher%2Ftool", req.URL.EscapedPath())
}

func TestClient_CommitInfoResolvesAvatarsByName(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK, http.StatusOK, http.StatusOK},
		Bodies: [][]byte{
			[]byte(`{
				"sha": "abc123",
				"commit": {
					"author": {"name": "alice", "email": "a@example.com", "date": "2024-02-01T10:00:00Z"},
					"committer": {"name": "bob", "email": "b@example.com", "date": "2024-02-01T11:00:00Z"},
					"message": "fix parser"
				},
				"stats": {"total": 3, "additions": 2, "deletions": 1}
			}`),
			[]byte(`{"avatar": "https://cdn.gitcode.com/avatar/alice.png"}`),
			[]byte(`{"avatar": "https://cdn.gitcode.com/avatar/bob.png"}`),
		},
	}
	c := NewClient(doer)

	got, err := c.CommitInfo(context.Background(), app.RepoPath{Owner: "mosher", Name: "tool"}, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.gitcode.com/avatar/alice.png", got.Commit.Author.AvatarURL)
	assert.Equal(t, "https://cdn.gitcode.com/avatar/bob.png", got.Commit.Committer.AvatarURL)

	require.Len(t, doer.Responses, 3)
	assert.Equal(t, "alice", doer.Responses[1].Request.URL.Query().Get("username"))
	assert.Equal(t, "bob", doer.Responses[2].Request.URL.Query().Get("username"))
}

func TestClient_CommitInfoDefaultsToHead(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies:   [][]byte{[]byte(`{}`)},
	}
	c := NewClient(doer)

	_, err := c.CommitInfo(context.Background(), app.RepoPath{Owner: "mosher", Name: "tool"}, "")
	require.Error(t, err)
	assert.Equal(t, "/api/v5/repos/mosher/tool/commits/HEAD", doer.Responses[0].Request.URL.Path)
}

func TestClient_RepoCollaborators(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusOK},
		Bodies: [][]byte{[]byte(`[
			{"login": "alice", "avatar_url": "https://cdn.gitcode.com/avatar/alice.png"},
			{"login": "bob"}
		]`)},
	}
	c := NewClient(doer)

	got, err := c.RepoCollaborators(context.Background(), app.RepoPath{Owner: "mosher", Name: "tool"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Login)
	assert.Empty(t, got[1].AvatarURL)
}

func TestClient_UserInfoUnauthorized(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{
		Statuses: []int{http.StatusUnauthorized},
		Bodies:   [][]byte{[]byte(`{}`)},
	}
	c := NewClient(doer)
	require.NoError(t, c.SetToken("bad-token"))

	_, err := c.UserInfo(context.Background())
	require.ErrorIs(t, err, app.ErrUnauthorized)
}
