package app

import "context"

// BranchStrategy selects how RepoDefaultBranch resolves the branch name:
// through the authenticated REST API, or through the provider's
// unauthenticated web endpoint. The choice is made once per call.
type BranchStrategy int

const (
	// BranchViaAPI reads the default branch from the repository API payload.
	BranchViaAPI BranchStrategy = iota
	// BranchViaWeb reads the default branch from the provider's web endpoint,
	// without authentication.
	BranchViaWeb
)

// Client is the provider-agnostic contract every adapter implements.
// All read operations issue outbound HTTP requests and none mutate remote
// state. Operations a provider does not expose return ErrNotSupported.
//
// Token and proxy are expected to be set before concurrent use; both setters
// are safe to call while requests are in flight.
type Client interface {
	// SetToken stores the API token. Fails with ErrTokenEmpty for "".
	SetToken(token string) error
	// SetProxy configures an outbound proxy URL (http, https or socks5)
	// for this adapter instance.
	SetProxy(proxy string) error

	// UserInfo returns the authenticated user's profile.
	// Fails with ErrTokenEmpty when no token is set.
	UserInfo(ctx context.Context) (UserInfo, error)
	// UserInfoByName returns a public profile. Token is optional; without it
	// the provider may apply stricter rate limits.
	UserInfoByName(ctx context.Context, login string) (UserInfo, error)
	// UserAvatarURL resolves an avatar URL through the provider's side
	// channel; it is not always present on the main profile payload.
	UserAvatarURL(ctx context.Context, login string) (string, error)
	// UserContribution returns the user's activity calendar for the current
	// year, bucketed into Monday-anchored weeks.
	UserContribution(ctx context.Context, login string) (ContributionResult, error)

	// OrgInfo returns an organization's profile.
	OrgInfo(ctx context.Context, org string) (OrgInfo, error)
	// OrgRepos lists an organization's repositories.
	OrgRepos(ctx context.Context, org string, opts *ReposListOptions) ([]RepoInfo, error)
	// OrgAvatarURL resolves an organization's avatar URL.
	OrgAvatarURL(ctx context.Context, org string) (string, error)

	// RepoInfo returns repository metadata.
	RepoInfo(ctx context.Context, path RepoPath) (RepoInfo, error)
	// RepoDefaultBranch returns the repository's default branch name,
	// resolved per the given strategy.
	RepoDefaultBranch(ctx context.Context, path RepoPath, strategy BranchStrategy) (string, error)
	// RepoCollaborators lists repository collaborators.
	RepoCollaborators(ctx context.Context, path RepoPath, opts *ReposListOptions) ([]CollaboratorResult, error)

	// UserRepos lists the authenticated user's repositories.
	UserRepos(ctx context.Context, opts *ReposListOptions) ([]RepoInfo, error)
	// UserReposByName lists a user's public repositories.
	UserReposByName(ctx context.Context, login string, opts *ReposListOptions) ([]RepoInfo, error)

	// CommitInfo returns a single commit. An empty sha means the default
	// branch head.
	CommitInfo(ctx context.Context, path RepoPath, sha string) (CommitInfo, error)
	// CommitInfos lists commits, optionally filtered by the options.
	CommitInfos(ctx context.Context, path RepoPath, opts *CommitListOptions) ([]CommitInfo, error)
}
