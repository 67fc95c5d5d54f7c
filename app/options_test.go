package app

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReposListOptionsApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		opts        *ReposListOptions
		wantPerPage string
		wantPage    string
	}{
		{
			name:        "nil options use defaults",
			opts:        nil,
			wantPerPage: "30",
			wantPage:    "1",
		},
		{
			name:        "zero options use defaults",
			opts:        &ReposListOptions{},
			wantPerPage: "30",
			wantPage:    "1",
		},
		{
			name:        "values below cap pass through",
			opts:        &ReposListOptions{PerPage: 50, Page: 3},
			wantPerPage: "50",
			wantPage:    "3",
		},
		{
			name:        "per page is capped at 100",
			opts:        &ReposListOptions{PerPage: 500, Page: 2},
			wantPerPage: "100",
			wantPage:    "2",
		},
		{
			name:        "exactly at cap",
			opts:        &ReposListOptions{PerPage: 100},
			wantPerPage: "100",
			wantPage:    "1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := url.Values{}
			tt.opts.Apply(v)
			assert.Equal(t, tt.wantPerPage, v.Get("per_page"))
			assert.Equal(t, tt.wantPage, v.Get("page"))
		})
	}
}

func TestCommitListOptionsApply(t *testing.T) {
	t.Parallel()

	since := time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)
	until := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	v := url.Values{}
	opts := &CommitListOptions{
		PerPage: 200,
		Page:    4,
		SHA:     "abc123",
		Author:  "octocat",
		Since:   since,
		Until:   until,
	}
	opts.Apply(v)

	assert.Equal(t, "100", v.Get("per_page"))
	assert.Equal(t, "4", v.Get("page"))
	assert.Equal(t, "abc123", v.Get("sha"))
	assert.Equal(t, "octocat", v.Get("author"))
	assert.Equal(t, "2024-02-01T10:30:00Z", v.Get("since"))
	assert.Equal(t, "2024-03-01T00:00:00Z", v.Get("until"))
}

func TestCommitListOptionsApplyOmitsUnsetFilters(t *testing.T) {
	t.Parallel()

	v := url.Values{}
	opts := &CommitListOptions{PerPage: 10}
	opts.Apply(v)

	assert.Equal(t, "10", v.Get("per_page"))
	assert.Equal(t, "1", v.Get("page"))
	_, hasSHA := v["sha"]
	_, hasAuthor := v["author"]
	_, hasSince := v["since"]
	_, hasUntil := v["until"]
	assert.False(t, hasSHA)
	assert.False(t, hasAuthor)
	assert.False(t, hasSince)
	assert.False(t, hasUntil)
}
