package cnb

import (
	"strings"
	"time"

	"github.com/unigit/unigit/app"
)

type userPayload struct {
	ID            *string `json:"id"`
	Username      *string `json:"username"`
	Nickname      string  `json:"nickname"`
	AvatarURL     *string `json:"avatar_url"`
	Email         string  `json:"email"`
	FollowerCount uint64  `json:"follower_count"`
	FollowCount   uint64  `json:"follow_count"`
	RepoCount     uint64  `json:"repo_count"`
}

func (p userPayload) toUserInfo(op string) (app.UserInfo, error) {
	switch {
	case p.ID == nil:
		return app.UserInfo{}, &app.MalformedResponseError{Op: op, Field: "id"}
	case p.Username == nil:
		return app.UserInfo{}, &app.MalformedResponseError{Op: op, Field: "username"}
	case p.AvatarURL == nil:
		return app.UserInfo{}, &app.MalformedResponseError{Op: op, Field: "avatar_url"}
	}
	return app.UserInfo{
		ID:              *p.ID,
		Login:           *p.Username,
		Name:            p.Nickname,
		AvatarURL:       *p.AvatarURL,
		Email:           p.Email,
		Followers:       p.FollowerCount,
		Following:       p.FollowCount,
		PublicRepoCount: p.RepoCount,
	}, nil
}

type orgPayload struct {
	ID          *uint64 `json:"id"`
	Login       *string `json:"login"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	AvatarURL   *string `json:"avatar_url"`
	Description string  `json:"description"`
	Followers   uint64  `json:"followers"`
}

func (p orgPayload) toOrgInfo(op string) (app.OrgInfo, error) {
	switch {
	case p.ID == nil:
		return app.OrgInfo{}, &app.MalformedResponseError{Op: op, Field: "id"}
	case p.Login == nil:
		return app.OrgInfo{}, &app.MalformedResponseError{Op: op, Field: "login"}
	case p.AvatarURL == nil:
		return app.OrgInfo{}, &app.MalformedResponseError{Op: op, Field: "avatar_url"}
	}
	return app.OrgInfo{
		ID:          *p.ID,
		Login:       *p.Login,
		Name:        p.Name,
		Email:       p.Email,
		AvatarURL:   *p.AvatarURL,
		Description: p.Description,
		FollowCount: p.Followers,
	}, nil
}

type repoPayload struct {
	ID    *string `json:"id"`
	Owner *struct {
		Login *string `json:"login"`
	} `json:"owner"`
	Name            *string `json:"name"`
	FullName        *string `json:"full_name"`
	Description     string  `json:"description"`
	VisibilityLevel *string `json:"visibility_level"`
	ForkedFromRepo  *struct {
		Path *string `json:"path"`
	} `json:"forked_from_repo"`
	ForkCount     uint64     `json:"fork_count"`
	Language      string     `json:"language"`
	StarCount     uint64     `json:"star_count"`
	DefaultBranch *string    `json:"default_branch"`
	CreatedAt     *time.Time `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
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
	case p.VisibilityLevel == nil:
		return app.RepoInfo{}, &app.MalformedResponseError{Op: op, Field: "visibility_level"}
	case p.DefaultBranch == nil:
		return app.RepoInfo{}, &app.MalformedResponseError{Op: op, Field: "default_branch"}
	case p.CreatedAt == nil:
		return app.RepoInfo{}, &app.MalformedResponseError{Op: op, Field: "created_at"}
	case p.UpdatedAt == nil:
		return app.RepoInfo{}, &app.MalformedResponseError{Op: op, Field: "updated_at"}
	}

	public := strings.EqualFold(*p.VisibilityLevel, "public")
	fork := p.ForkedFromRepo != nil && p.ForkedFromRepo.Path != nil

	// CNB reports no push timestamp; the update time stands in for it.
	return app.RepoInfo{
		ID:            *p.ID,
		Owner:         *p.Owner.Login,
		Name:          *p.Name,
		FullName:      *p.FullName,
		Description:   p.Description,
		Visibility:    strings.ToLower(*p.VisibilityLevel),
		Fork:          fork,
		ForkCount:     p.ForkCount,
		Public:        public,
		Private:       !public,
		Language:      p.Language,
		StarCount:     p.StarCount,
		DefaultBranch: *p.DefaultBranch,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
		PushedAt:      p.UpdatedAt.UTC(),
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
