package cnb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/unigit/unigit/app"
	"github.com/unigit/unigit/internal/calendar"
)

// parseContributionJSON reconstructs the calendar from CNB's activity
// payload: a flat object mapping compact YYYYMMDD dates to per-day objects
// whose score field carries the count. A missing score counts as 0. The
// total is the sum of the daily counts.
func parseContributionJSON(body []byte) (app.ContributionResult, error) {
	var raw map[string]struct {
		Score *uint32 `json:"score"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return app.ContributionResult{}, fmt.Errorf("unmarshalling contributions response: %w", err)
	}

	days := make([]app.ContributionData, 0, len(raw))
	for dateStr, day := range raw {
		date, err := time.Parse("20060102", dateStr)
		if err != nil {
			return app.ContributionResult{}, &app.MalformedResponseError{Op: "cnb: get user contribution", Field: dateStr}
		}
		var count uint32
		if day.Score != nil {
			count = *day.Score
		}
		days = append(days, app.ContributionData{
			Date:  date.UTC(),
			Count: count,
		})
	}

	return app.ContributionResult{
		Total:         calendar.Total(days),
		Contributions: calendar.Weeks(days),
	}, nil
}
