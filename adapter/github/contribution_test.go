package github

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contributionHTML = `<html><body>
<h2 id="js-contribution-activity-description">1,287 contributions in the last year</h2>
<table>
	<tr>
		<td id="contribution-day-0" class="ContributionCalendar-day" data-date="2024-01-01"></td>
		<td id="contribution-day-1" class="ContributionCalendar-day" data-date="2024-01-03"></td>
		<td id="contribution-day-2" class="ContributionCalendar-day" data-date="2024-01-08"></td>
		<td id="contribution-day-3" class="ContributionCalendar-day" data-date="not-a-date"></td>
		<td class="ContributionCalendar-day" data-date="2024-01-09"></td>
	</tr>
</table>
<tool-tip for="contribution-day-0">3 contributions on January 1st.</tool-tip>
<tool-tip for="contribution-day-1">No contributions on January 3rd.</tool-tip>
<tool-tip for="contribution-day-2">5 contributions on January 8th.</tool-tip>
</body></html>`

func TestParseContributionHTML(t *testing.T) {
	t.Parallel()

	got, err := parseContributionHTML([]byte(contributionHTML))
	require.NoError(t, err)

	// The total is the independently rendered summary, not the per-day sum.
	assert.Equal(t, uint32(1287), got.Total)

	require.Len(t, got.Contributions, 2)
	require.Len(t, got.Contributions[0], 2)
	require.Len(t, got.Contributions[1], 1)

	week1 := got.Contributions[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), week1[0].Date)
	assert.Equal(t, uint32(3), week1[0].Count)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), week1[1].Date)
	assert.Equal(t, uint32(0), week1[1].Count, "no-contributions tooltip maps to 0")

	week2 := got.Contributions[1]
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), week2[0].Date)
	assert.Equal(t, uint32(5), week2[0].Count)
}

func TestTooltipCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tooltip string
		want    int
	}{
		{"no contributions", "No contributions on January 3rd.", 0},
		{"explicit count", "5 contributions on January 8th.", 5},
		{"thousands separator", "1,024 contributions on March 1st.", 1024},
		{"unparsable leading token", "Some contributions on May 4th.", 1},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tooltipCount(tt.tooltip))
		})
	}
}

func TestParseContributionHTMLWithoutSummary(t *testing.T) {
	t.Parallel()

	html := `<html><body><table><tr>
		<td id="d0" class="ContributionCalendar-day" data-date="2024-02-05"></td>
	</tr></table></body></html>`

	got, err := parseContributionHTML([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got.Total)
	require.Len(t, got.Contributions, 1)
	assert.Equal(t, uint32(0), got.Contributions[0][0].Count, "cell with no tooltip defaults to 0")
}
