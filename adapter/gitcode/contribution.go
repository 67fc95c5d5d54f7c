package gitcode

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/unigit/unigit/app"
	"github.com/unigit/unigit/internal/calendar"
)

// parseContributionJSON reconstructs the calendar from the web-api
// contributions payload: a flat object mapping YYYY-MM-DD dates to daily
// counts. The total is the sum of the daily counts.
func parseContributionJSON(body []byte) (app.ContributionResult, error) {
	var raw map[string]uint32
	if err := json.Unmarshal(body, &raw); err != nil {
		return app.ContributionResult{}, fmt.Errorf("unmarshalling contributions response: %w", err)
	}

	days := make([]app.ContributionData, 0, len(raw))
	for dateStr, count := range raw {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return app.ContributionResult{}, &app.MalformedResponseError{Op: "gitcode: get user contribution", Field: dateStr}
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
