package patch

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	patchCellRE = regexp.MustCompile(`^\d+\.\d+`)
	yearRE      = regexp.MustCompile(`\d{4}`)
)

// scheduleLayouts are tried in order for cells that carry a year.
var scheduleLayouts = []string{
	"January 2, 2006",
	"January 2, 2006 (Monday)",
	"2 January 2006",
}

// ParseSchedule reads the published patch schedule page and returns release
// dates keyed by patch "major.minor" as printed on the page (client
// numbering, e.g. "25.10"). Dates without a year are read in year. Rows whose
// date cannot be parsed are skipped.
func ParseSchedule(html string, year int) (map[string]time.Time, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse schedule html: %w", err)
	}

	out := map[string]time.Time{}

	var table *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		hasPatch := false
		t.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
			hasPatch = patchCellRE.MatchString(strings.TrimSpace(td.Text()))
			return !hasPatch
		})
		if hasPatch {
			table = t
		}
		return !hasPatch
	})
	if table == nil {
		return out, nil
	}

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}
		id := patchCellRE.FindString(strings.TrimSpace(cells.Eq(0).Text()))
		if id == "" {
			return
		}
		if d, ok := parseScheduleDate(strings.TrimSpace(cells.Eq(1).Text()), year); ok {
			out[id] = d
		}
	})
	return out, nil
}

func parseScheduleDate(cell string, year int) (time.Time, bool) {
	cell = strings.Join(strings.Fields(cell), " ")
	if !yearRE.MatchString(cell) {
		cell = fmt.Sprintf("%s, %d", cell, year)
	}
	for _, layout := range scheduleLayouts {
		if d, err := time.Parse(layout, cell); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
