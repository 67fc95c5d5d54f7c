package app

import (
	"net/url"
	"strconv"
	"time"
)

// Pagination limits shared by every listing operation.
const (
	DefaultPerPage = 30
	MaxPerPage     = 100
	DefaultPage    = 1
)

// ReposListOptions controls pagination for repository and collaborator
// listings. Zero values mean provider defaults.
type ReposListOptions struct {
	// PerPage is the page size, default 30, capped at 100.
	PerPage int
	// Page is the 1-based page number, default 1.
	Page int
}

// Apply writes the clamped pagination parameters into v.
func (o *ReposListOptions) Apply(v url.Values) {
	perPage, page := clampPagination(o)
	v.Set("per_page", strconv.Itoa(perPage))
	v.Set("page", strconv.Itoa(page))
}

// CommitListOptions controls pagination and filtering for commit listings.
type CommitListOptions struct {
	// PerPage is the page size, default 30, capped at 100.
	PerPage int
	// Page is the 1-based page number, default 1.
	Page int
	// SHA is the commit or branch to start listing from; empty means the
	// latest commit on the default branch.
	SHA string
	// Author filters commits by author.
	Author string
	// Since filters out commits before this instant.
	Since time.Time
	// Until filters out commits after this instant.
	Until time.Time
}

// Apply writes the clamped pagination parameters and any set filters into v.
func (o *CommitListOptions) Apply(v url.Values) {
	var lo *ReposListOptions
	if o != nil {
		lo = &ReposListOptions{PerPage: o.PerPage, Page: o.Page}
	}
	lo.Apply(v)
	if o == nil {
		return
	}
	if o.SHA != "" {
		v.Set("sha", o.SHA)
	}
	if o.Author != "" {
		v.Set("author", o.Author)
	}
	if !o.Since.IsZero() {
		v.Set("since", o.Since.Format(time.RFC3339))
	}
	if !o.Until.IsZero() {
		v.Set("until", o.Until.Format(time.RFC3339))
	}
}

func clampPagination(o *ReposListOptions) (perPage, page int) {
	perPage = DefaultPerPage
	page = DefaultPage
	if o == nil {
		return perPage, page
	}
	if o.PerPage > 0 {
		perPage = o.PerPage
		if perPage > MaxPerPage {
			perPage = MaxPerPage
		}
	}
	if o.Page > 0 {
		page = o.Page
	}
	return perPage, page
}
