package gitee

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/unigit/unigit/app"
	"github.com/unigit/unigit/internal/calendar"
)

// parseContributionHTML reconstructs the calendar from the profile page's
// contribution boxes: one div.box per day with a compact YYYYMMDD date
// attribute and a localized tooltip text in data-content. The total is the
// sum of the daily counts.
func parseContributionHTML(html []byte) (app.ContributionResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return app.ContributionResult{}, fmt.Errorf("parsing contribution html: %w", err)
	}

	var days []app.ContributionData
	doc.Find("div.right-side div.box").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("data-content")
		if !ok {
			return
		}
		dateStr, ok := s.Attr("date")
		if !ok {
			return
		}
		date, err := time.Parse("20060102", dateStr)
		if err != nil {
			return
		}

		days = append(days, app.ContributionData{
			Date:  date.UTC(),
			Count: uint32(tooltipCount(content)),
		})
	})

	return app.ContributionResult{
		Total:         calendar.Total(days),
		Contributions: calendar.Weeks(days),
	}, nil
}

// tooltipCount reads the day count out of tooltip text shaped like
// "<date>，贡献数：5个". The count is the integer between the last colon and
// the counter word; anything unparsable counts as 0.
func tooltipCount(content string) int {
	if i := strings.Index(content, "个"); i >= 0 {
		content = content[:i]
	}
	for _, sep := range []string{"：", ":"} {
		if i := strings.LastIndex(content, sep); i >= 0 {
			content = content[i+len(sep):]
		}
	}
	count, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil {
		return 0
	}
	return count
}
