package github

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

// parseContributionHTML reconstructs the contribution calendar from the
// profile fragment: one td.ContributionCalendar-day cell per day, with the
// human-readable count in a tool-tip element matched by the cell id.
//
// The total comes from the separately rendered activity summary, which
// GitHub computes independently of the per-day cells; the two are not
// reconciled.
func parseContributionHTML(html []byte) (app.ContributionResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return app.ContributionResult{}, fmt.Errorf("parsing contribution html: %w", err)
	}

	tooltips := make(map[string]string)
	doc.Find("tool-tip").Each(func(_ int, s *goquery.Selection) {
		if forID, ok := s.Attr("for"); ok {
			tooltips[forID] = strings.TrimSpace(s.Text())
		}
	})

	var days []app.ContributionData
	doc.Find("td.ContributionCalendar-day").Each(func(_ int, s *goquery.Selection) {
		dateStr, ok := s.Attr("data-date")
		if !ok {
			return
		}
		id, ok := s.Attr("id")
		if !ok {
			return
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return
		}

		var count int
		if tooltip, ok := tooltips[id]; ok {
			count = tooltipCount(tooltip)
		}

		days = append(days, app.ContributionData{
			Date:  date.UTC(),
			Count: uint32(count),
		})
	})

	return app.ContributionResult{
		Total:         summaryTotal(doc),
		Contributions: calendar.Weeks(days),
	}, nil
}

// metaContent returns the content attribute of the named meta element of a
// scraped profile page.
func metaContent(html []byte, name, op string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing profile html: %w", err)
	}
	content, ok := doc.Find("meta[name='" + name + "']").First().Attr("content")
	if !ok || content == "" {
		return "", &app.MalformedResponseError{Op: op, Field: name}
	}
	return content, nil
}

// tooltipCount reads the day count out of tooltip text like
// "5 contributions on January 3rd." or "No contributions on ...".
// An unparsable leading token counts as 1.
func tooltipCount(tooltip string) int {
	if strings.Contains(strings.ToLower(tooltip), "no contributions") {
		return 0
	}
	fields := strings.Fields(tooltip)
	if len(fields) == 0 {
		return 0
	}
	count, err := strconv.Atoi(strings.ReplaceAll(fields[0], ",", ""))
	if err != nil {
		return 1
	}
	return count
}

// summaryTotal reads the yearly total from the activity description heading.
func summaryTotal(doc *goquery.Document) uint32 {
	text := doc.Find("h2#js-contribution-activity-description").First().Text()
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	total, err := strconv.ParseUint(strings.ReplaceAll(fields[0], ",", ""), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(total)
}
