package gitcode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unigit/unigit/app"
)

func TestParseContributionJSON(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"2024-01-01": 3,
		"2024-01-03": 0,
		"2024-01-08": 5
	}`)

	got, err := parseContributionJSON(body)
	require.NoError(t, err)

	assert.Equal(t, uint32(8), got.Total)
	require.Len(t, got.Contributions, 2)
	require.Len(t, got.Contributions[0], 2)
	require.Len(t, got.Contributions[1], 1)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got.Contributions[0][0].Date)
	assert.Equal(t, uint32(3), got.Contributions[0][0].Count)
	assert.Equal(t, uint32(5), got.Contributions[1][0].Count)
}

func TestParseContributionJSONBadDateKey(t *testing.T) {
	t.Parallel()

	_, err := parseContributionJSON([]byte(`{"20240101": 3}`))
	require.True(t, app.IsMalformedResponse(err))
}

func TestParseContributionJSONEmpty(t *testing.T) {
	t.Parallel()

	got, err := parseContributionJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.Zero(t, got.Total)
	assert.Empty(t, got.Contributions)
}
