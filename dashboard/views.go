package dashboard

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"nypd-dashboard/models"
)

// View is everything the page template needs to draw one section.
type View struct {
	Section  Section
	Title    string
	Facts    []Fact
	Tables   []TableView
	Charts   []ChartRef
	Map      *MapView
	Explorer *ExplorerView
}

// Fact is a labelled headline number.
type Fact struct {
	Label string
	Value string
}

// TableView is a captioned grid of text cells.
type TableView struct {
	Caption string
	Header  []string
	Rows    [][]string
}

// ChartRef points the page at a rendered chart. Empty charts are not requested.
type ChartRef struct {
	Name  string
	Title string
	Empty bool
}

// URL returns the chart image path.
func (c ChartRef) URL() string { return "/charts/" + c.Name + ".png" }

// MapView configures the location map.
type MapView struct {
	PointsURL string
	Points    int
}

// ExplorerView backs the complaint explorer form and result table.
type ExplorerView struct {
	Boroughs []string
	Offenses []string
	Filter   models.ExplorerFilter
	Result   models.ExplorerPage
	Table    TableView
	PrevURL  string
	NextURL  string
}

type viewFunc func(d *Dashboard, t *models.Table, q url.Values) View

// views maps each section to the function that builds it.
var views = map[Section]viewFunc{
	SectionOverview:         overviewView,
	SectionCrimeLocations:   locationsView,
	SectionBoroughPrecincts: boroughView,
	SectionTimeTrends:       timeTrendsView,
	SectionExplorer:         explorerView,
	SectionMissingData:      missingDataView,
}

func overviewView(d *Dashboard, t *models.Table, _ url.Values) View {
	preview := TableView{Caption: "First rows", Header: t.Frame.Names()}
	n := d.opts.PreviewRows
	if n > t.Rows() {
		n = t.Rows()
	}
	if n > 0 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		records := t.Frame.Subset(idx).Records()
		if len(records) > 1 {
			preview.Rows = blankNaN(records[1:])
		}
	}

	offenses := d.insights.TopOffenses(t, d.opts.TopN)
	return View{
		Title: "🚔 NYPD Complaint Data - Overview",
		Facts: []Fact{
			{Label: "Dataset shape", Value: fmt.Sprintf("(%d, %d)", t.Rows(), t.Columns())},
			{Label: "Rows", Value: strconv.Itoa(t.Rows())},
			{Label: "Columns", Value: strconv.Itoa(t.Columns())},
			{Label: "Dropped without location", Value: strconv.Itoa(t.DroppedRows)},
		},
		Tables: []TableView{preview},
		Charts: []ChartRef{
			{Name: chartTopOffenses, Title: "Top Complaint Types", Empty: len(offenses) == 0},
		},
	}
}

func locationsView(_ *Dashboard, t *models.Table, _ url.Values) View {
	return View{
		Title: "📍 Crime Locations Map",
		Facts: []Fact{{Label: "Plotted complaints", Value: strconv.Itoa(t.Rows())}},
		Map:   &MapView{PointsURL: "/api/points", Points: t.Rows()},
	}
}

func boroughView(d *Dashboard, t *models.Table, _ url.Values) View {
	boroughs := d.insights.BoroughCounts(t)
	precincts := d.insights.TopPrecincts(t, d.opts.TopN)
	return View{
		Title: "🏙️ Borough and Precinct Analysis",
		Tables: []TableView{
			countsTable("Complaints by Borough", "Borough", boroughs),
			countsTable(fmt.Sprintf("Top %d Precincts", d.opts.TopN), "Precinct", precincts),
		},
		Charts: []ChartRef{
			{Name: chartBoroughs, Title: "Complaints by Borough", Empty: len(boroughs) == 0},
			{Name: chartTopPrecincts, Title: "Top Precincts by Complaints", Empty: len(precincts) == 0},
		},
	}
}

func timeTrendsView(d *Dashboard, t *models.Table, _ url.Values) View {
	hourly := d.insights.HourlyTrend(t)
	weekdays := d.insights.WeekdayCounts(t)

	anyWeekday := false
	for _, w := range weekdays {
		if w.Count > 0 {
			anyWeekday = true
		}
	}

	return View{
		Title: "⏰ Time-Based Crime Trends",
		Charts: []ChartRef{
			{Name: chartHourly, Title: "Complaints by Hour of Day", Empty: len(hourly) == 0},
			{Name: chartWeekdays, Title: "Complaints by Day of Week", Empty: !anyWeekday},
		},
	}
}

func explorerView(d *Dashboard, t *models.Table, q url.Values) View {
	filter := parseExplorerFilter(q, d.opts.PageSize)
	result := d.insights.Explore(t, filter)

	table := TableView{
		Caption: fmt.Sprintf("%d matching complaints", result.Total),
		Header:  []string{"ID", "Date", "Time", "Weekday", "Offense", "Borough", "Precinct", "Latitude", "Longitude"},
	}
	for _, c := range result.Rows {
		table.Rows = append(table.Rows, []string{
			c.ID, c.StartDate, c.StartTime, c.Weekday.String, c.Offense, c.Borough, c.Precinct,
			strconv.FormatFloat(c.Latitude, 'f', 6, 64),
			strconv.FormatFloat(c.Longitude, 'f', 6, 64),
		})
	}

	ev := &ExplorerView{
		Boroughs: d.insights.Distinct(t, func(c *models.Complaint) string { return c.Borough }),
		Offenses: d.insights.Distinct(t, func(c *models.Complaint) string { return c.Offense }),
		Filter:   filter,
		Result:   result,
		Table:    table,
	}
	if result.Page > 1 {
		ev.PrevURL = explorerURL(q, result.Page-1)
	}
	if result.Page < result.TotalPages {
		ev.NextURL = explorerURL(q, result.Page+1)
	}

	return View{
		Title:    "🔎 Complaint Explorer",
		Facts:    []Fact{{Label: "Matching complaints", Value: strconv.Itoa(result.Total)}},
		Explorer: ev,
	}
}

func missingDataView(d *Dashboard, t *models.Table, _ url.Values) View {
	report := d.insights.MissingReport(t)

	table := TableView{Caption: "Missing values per column", Header: []string{"Column", "Missing", "Percent"}}
	withMissing := 0
	for _, s := range report {
		table.Rows = append(table.Rows, []string{s.Column, strconv.Itoa(s.Missing), fmt.Sprintf("%.2f%%", s.Percent)})
		if s.Missing > 0 {
			withMissing++
		}
	}

	return View{
		Title: "🕳️ Missing Data",
		Facts: []Fact{
			{Label: "Columns with missing values", Value: fmt.Sprintf("%d of %d", withMissing, len(report))},
		},
		Tables: []TableView{table},
		Charts: []ChartRef{{Name: chartMissing, Title: "Missing Values by Column", Empty: withMissing == 0}},
	}
}

func countsTable(caption, label string, counts []models.CategoryCount) TableView {
	tv := TableView{Caption: caption, Header: []string{label, "Complaints"}}
	for _, c := range counts {
		tv.Rows = append(tv.Rows, []string{c.Category, strconv.Itoa(c.Count)})
	}
	return tv
}

func parseExplorerFilter(q url.Values, pageSize int) models.ExplorerFilter {
	f := models.ExplorerFilter{
		Borough:  strings.TrimSpace(q.Get("borough")),
		Offense:  strings.TrimSpace(q.Get("offense")),
		PageSize: pageSize,
		HourTo:   23,
	}
	if from, err := strconv.Atoi(q.Get("hour_from")); err == nil && from >= 0 && from <= 23 {
		f.HourFrom = from
	}
	if to, err := strconv.Atoi(q.Get("hour_to")); err == nil && to >= 0 && to <= 23 {
		f.HourTo = to
	}
	// The full 0–23 range also keeps rows without a start hour.
	f.HasHours = f.HourFrom > 0 || f.HourTo < 23
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		f.Page = p
	}
	return f
}

func explorerURL(q url.Values, page int) string {
	next := url.Values{}
	for k, v := range q {
		next[k] = v
	}
	next.Set("page", strconv.Itoa(page))
	return SectionExplorer.Path() + "?" + next.Encode()
}

// blankNaN shows missing frame cells as empty strings in the preview.
func blankNaN(rows [][]string) [][]string {
	for _, row := range rows {
		for i, v := range row {
			if v == "NaN" {
				row[i] = ""
			}
		}
	}
	return rows
}
