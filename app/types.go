package app

import "time"

// UserInfo is the canonical user profile produced by every adapter.
// ID is always a string, even when the provider's native id is numeric.
type UserInfo struct {
	ID              string `json:"id"`
	Login           string `json:"login"`
	Name            string `json:"name,omitempty"`
	AvatarURL       string `json:"avatar_url"`
	Email           string `json:"email,omitempty"`
	Followers       uint64 `json:"followers"`
	Following       uint64 `json:"following"`
	PublicRepoCount uint64 `json:"public_repo_count"`
}

// OrgInfo is the canonical organization profile.
type OrgInfo struct {
	ID          uint64 `json:"id"`
	Login       string `json:"login"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatar_url"`
	Description string `json:"description,omitempty"`
	FollowCount uint64 `json:"follow_count"`
}

// RepoInfo is the canonical repository metadata.
// Public and Private are always complementary.
type RepoInfo struct {
	ID            string    `json:"id"`
	Owner         string    `json:"owner"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description,omitempty"`
	Visibility    string    `json:"visibility"`
	Fork          bool      `json:"fork"`
	ForkCount     uint64    `json:"fork_count"`
	Public        bool      `json:"public"`
	Private       bool      `json:"private"`
	Language      string    `json:"language,omitempty"`
	StarCount     uint64    `json:"star_count"`
	DefaultBranch string    `json:"default_branch"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	PushedAt      time.Time `json:"pushed_at"`
}

// CommitInfo is a single canonical commit with its stats.
type CommitInfo struct {
	SHA    string     `json:"sha"`
	Commit CommitData `json:"commit"`
	Stats  StatsInfo  `json:"stats"`
}

// CommitData holds the author, committer and message of a commit.
type CommitData struct {
	Author    CommitUserInfo `json:"author"`
	Committer CommitUserInfo `json:"committer"`
	Message   string         `json:"message"`
}

// CommitUserInfo identifies a commit author or committer.
// It is distinct from UserInfo: commits carry names, not logins, and the
// avatar is usually resolved through a secondary lookup keyed by name.
type CommitUserInfo struct {
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatar_url"`
	Date      time.Time `json:"date"`
}

// StatsInfo holds line change counters for a commit.
type StatsInfo struct {
	Total     uint64 `json:"total"`
	Additions uint64 `json:"additions"`
	Deletions uint64 `json:"deletions"`
}

// ContributionData is one day of activity, anchored at UTC midnight.
type ContributionData struct {
	Date  time.Time `json:"date"`
	Count uint32    `json:"count"`
}

// ContributionResult is a user's activity calendar. Contributions holds
// Monday-anchored weeks in ascending order; days within a week are ascending
// too. Total is the sum of daily counts, except where a provider reports its
// own total independently of the per-day data.
type ContributionResult struct {
	Total         uint32               `json:"total"`
	Contributions [][]ContributionData `json:"contributions"`
}

// CollaboratorResult identifies a repository collaborator.
type CollaboratorResult struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// RepoPath addresses a repository as owner/name.
type RepoPath struct {
	Owner string
	Name  string
}

// String returns the owner/name form.
func (p RepoPath) String() string {
	return p.Owner + "/" + p.Name
}
