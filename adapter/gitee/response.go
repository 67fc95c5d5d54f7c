package gitee

import (
	"strconv"
	"time"

	"github.com/unigit/unigit/app"
)

type userPayload struct {
	ID        *uint64 `json:"id"`
	Login     *string `json:"login"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Email     string  `json:"email"`
	Followers uint64  `json:"followers"`
	Following uint64  `json:"following"`
}

func (p userPayload) toUserInfo(op string) (app.UserInfo, error) {
	switch {
	case p.ID == nil:
		return app.UserInfo{}, &app.MalformedResponseError{Op: op, Field: "id"}
	case p.Login == nil:
		return app.UserInfo{}, &app.MalformedResponseError{Op: op, Field: "login"}
	case p.Name == nil:
		return app.UserInfo{}, &app.MalformedResponseError{Op: op, Field: "name"}
	case p.AvatarURL == nil:
		return app.UserInfo{}, &app.MalformedResponseError{Op: op, Field: "avatar_url"}
	}
	// Gitee has no public repo count on the profile payload.
	return app.UserInfo{
		ID:        strconv.FormatUint(*p.ID, 10),
		Login:     *p.Login,
		Name:      *p.Name,
		AvatarURL: *p.AvatarURL,
		Email:     p.Email,
		Followers: p.Followers,
		Following: p.Following,
	}, nil
}

type repoPayload struct {
	ID    *uint64 `json:"id"`
	Owner *struct {
		Login *string `json:"login"`
	} `json:"owner"`
	Name            *string    `json:"name"`
	FullName        *string    `json:"full_name"`
	Description     string     `json:"description"`
	Public          bool       `json:"public"`
	Fork            bool       `json:"fork"`
	ForksCount      uint64     `json:"forks_count"`
	Language        string     `json:"language"`
	StargazersCount uint64     `json:"stargazers_count"`
	DefaultBranch   *string    `json:"default_branch"`
	CreatedAt       *time.Time `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
	PushedAt        *time.Time `json:"pushed_at"`
}

func (p repoPayload) toRepoInfo(op string) (app.RepoInfo, error) {
	switch {
	case p.ID == nil:
		return app.RepoInfo{}, &app.MalformedResponseError{Op: op, Field: "id"}
	case p.Owner == nil || p.Owner.Login == nil:
		return app.RepoInfo{}, &app.MalformedResponseError{Op: op, Field: "owner.login"}
	case p.Name == nil:
		return app.RepoInfo{}, &app.MalformedResponseError{Op: op, Field: "name"}
	case p.FullName == nil:
		return app.RepoInfo{}, &app.MalformedResponseError{Op: op, Field: "full_name"}
	case p.DefaultBranch == nil:
		return app.RepoInfo{}, &app.MalformedResponseError{Op: op, Field: "default_branch"}
	case p.CreatedAt == nil:
		return app.RepoInfo{}, &app.MalformedResponseError{Op: op, Field: "created_at"}
	case p.UpdatedAt == nil:
		return app.RepoInfo{}, &app.MalformedResponseError{Op: op, Field: "updated_at"}
	}

	pushedAt := *p.UpdatedAt
	if p.PushedAt != nil {
		pushedAt = *p.PushedAt
	}

	visibility := "private"
	if p.Public {
		visibility = "public"
	}

	return app.RepoInfo{
		ID:            strconv.FormatUint(*p.ID, 10),
		Owner:         *p.Owner.Login,
		Name:          *p.Name,
		FullName:      *p.FullName,
		Description:   p.Description,
		Visibility:    visibility,
		Fork:          p.Fork,
		ForkCount:     p.ForksCount,
		Public:        p.Public,
		Private:       !p.Public,
		Language:      p.Language,
		StarCount:     p.StargazersCount,
		DefaultBranch: *p.DefaultBranch,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
		PushedAt:      pushedAt.UTC(),
	}, nil
}

type commitUserPayload struct {
	Name      *string    `json:"name"`
	Email     string     `json:"email"`
	AvatarURL string     `json:"avatar_url"`
	Date      *time.Time `json:"date"`
}

func (p *commitUserPayload) toCommitUserInfo(op string) (app.CommitUserInfo, error) {
	if p == nil || p.Name == nil {
		return app.CommitUserInfo{}, &app.MalformedResponseError{Op: op, Field: "name"}
	}
	if p.Date == nil {
		return app.CommitUserInfo{}, &app.MalformedResponseError{Op: op, Field: "date"}
	}
	return app.CommitUserInfo{
		Name:      *p.Name,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
		Date:      p.Date.UTC(),
	}, nil
}

type commitPayload struct {
	SHA    *string `json:"sha"`
	Commit *struct {
		Author    *commitUserPayload `json:"author"`
		Committer *commitUserPayload `json:"committer"`
		Message   *string            `json:"message"`
	} `json:"commit"`
	Stats struct {
		Total     uint64 `json:"total"`
		Additions uint64 `json:"additions"`
		Deletions uint64 `json:"deletions"`
	} `json:"stats"`
	Author struct {
		AvatarURL string `json:"avatar_url"`
	} `json:"author"`
	Committer struct {
		AvatarURL string `json:"avatar_url"`
	} `json:"committer"`
}

func (p *commitPayload) enrichAvatars() {
	if p.Commit == nil {
		return
	}
	if p.Commit.Author != nil && p.Author.AvatarURL != "" {
		p.Commit.Author.AvatarURL = p.Author.AvatarURL
	}
	if p.Commit.Committer != nil && p.Committer.AvatarURL != "" {
		p.Commit.Committer.AvatarURL = p.Committer.AvatarURL
	}
}

func (p commitPayload) toCommitInfo(op string) (app.CommitInfo, error) {
	switch {
	case p.SHA == nil:
		return app.CommitInfo{}, &app.MalformedResponseError{Op: op, Field: "sha"}
	case p.Commit == nil:
		return app.CommitInfo{}, &app.MalformedResponseError{Op: op, Field: "commit"}
	case p.Commit.Message == nil:
		return app.CommitInfo{}, &app.MalformedResponseError{Op: op, Field: "commit.message"}
	}

	author, err := p.Commit.Author.toCommitUserInfo(op)
	if err != nil {
		return app.CommitInfo{}, err
	}
	committer, err := p.Commit.Committer.toCommitUserInfo(op)
	if err != nil {
		return app.CommitInfo{}, err
	}

	return app.CommitInfo{
		SHA: *p.SHA,
		Commit: app.CommitData{
			Author:    author,
			Committer: committer,
			Message:   *p.Commit.Message,
		},
		Stats: app.StatsInfo{
			Total:     p.Stats.Total,
			Additions: p.Stats.Additions,
			Deletions: p.Stats.Deletions,
		},
	}, nil
}
