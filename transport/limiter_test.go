package transport

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unigit/unigit/mock"
)

func TestLimitedDoer(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{Statuses: []int{http.StatusOK}}
	limited := NewLimitedDoer(doer, 1000)

	req, err := http.NewRequest(http.MethodGet, "https://fake", nil)
	require.NoError(t, err)

	resp, err := limited.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLimitedDoerContextCancelled(t *testing.T) {
	t.Parallel()

	doer := &mock.HTTPDoer{Statuses: []int{http.StatusOK}}
	limited := NewLimitedDoer(doer, 0.0001)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://fake", nil)
	require.NoError(t, err)

	// First call consumes the initial burst token.
	_, err = limited.Do(req)
	require.NoError(t, err)

	_, err = limited.Do(req)
	require.Error(t, err)
}
