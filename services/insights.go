package services

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"nypd-dashboard/models"
	"nypd-dashboard/utils"
)

// DefaultPageSize is the explorer page size used when none is given.
const DefaultPageSize = 50

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// ValueCounts counts each non-empty value, most frequent first. Ties keep the
// order in which values first appeared. Empty (missing) values are excluded.
func ValueCounts(values []string) []models.CategoryCount {
	index := make(map[string]int)
	var counts []models.CategoryCount
	for _, v := range values {
		if v == "" {
			continue
		}
		if i, ok := index[v]; ok {
			counts[i].Count++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, models.CategoryCount{Category: v, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// TopN returns at most n leading entries of counts.
func TopN(counts []models.CategoryCount, n int) []models.CategoryCount {
	if n >= 0 && len(counts) > n {
		return counts[:n]
	}
	return counts
}

func (s *InsightService) TopOffenses(t *models.Table, n int) []models.CategoryCount {
	return TopN(ValueCounts(column(t, func(c *models.Complaint) string { return c.Offense })), n)
}

func (s *InsightService) BoroughCounts(t *models.Table) []models.CategoryCount {
	return ValueCounts(column(t, func(c *models.Complaint) string { return c.Borough }))
}

func (s *InsightService) TopPrecincts(t *models.Table, n int) []models.CategoryCount {
	return TopN(ValueCounts(column(t, func(c *models.Complaint) string { return c.Precinct })), n)
}

// HourlyTrend counts complaints per start hour, ascending by hour. Hours with
// no complaints and rows without an hour are left out.
func (s *InsightService) HourlyTrend(t *models.Table) []models.HourCount {
	var perHour [24]int
	for i := range t.Records {
		if h := t.Records[i].Hour; h.Valid && h.Int16 >= 0 && h.Int16 < 24 {
			perHour[h.Int16]++
		}
	}

	out := make([]models.HourCount, 0, 24)
	for h, n := range perHour {
		if n > 0 {
			out = append(out, models.HourCount{Hour: h, Count: n})
		}
	}
	return out
}

// WeekdayCounts counts complaints per weekday, Monday first, zero days included.
func (s *InsightService) WeekdayCounts(t *models.Table) []models.CategoryCount {
	perDay := make(map[string]int, 7)
	for i := range t.Records {
		if w := t.Records[i].Weekday; w.Valid {
			perDay[w.String]++
		}
	}

	out := make([]models.CategoryCount, 0, len(weekdayOrder))
	for _, d := range weekdayOrder {
		out = append(out, models.CategoryCount{Category: d.String(), Count: perDay[d.String()]})
	}
	return out
}

// MissingReport lists the missing-cell count of every frame column, in column order.
func (s *InsightService) MissingReport(t *models.Table) []models.MissingStat {
	rows := t.Frame.Nrow()
	out := make([]models.MissingStat, 0, t.Frame.Ncol())
	for _, name := range t.Frame.Names() {
		missing := 0
		for _, na := range t.Frame.Col(name).IsNaN() {
			if na {
				missing++
			}
		}
		stat := models.MissingStat{Column: name, Missing: missing}
		if rows > 0 {
			stat.Percent = round2(float64(missing) * 100 / float64(rows))
		}
		out = append(out, stat)
	}
	return out
}

// Points returns every complaint location.
func (s *InsightService) Points(t *models.Table) []models.Point {
	out := make([]models.Point, len(t.Records))
	for i := range t.Records {
		out[i] = models.Point{Lat: t.Records[i].Latitude, Lon: t.Records[i].Longitude}
	}
	return out
}

// Distinct returns the sorted non-empty values of a field, for filter choices.
func (s *InsightService) Distinct(t *models.Table, field func(*models.Complaint) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range t.Records {
		v := field(&t.Records[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Explore filters complaints and returns the requested page. Out-of-range
// pages are clamped to the nearest valid page.
func (s *InsightService) Explore(t *models.Table, f models.ExplorerFilter) models.ExplorerPage {
	size := f.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	var matched []models.Complaint
	for i := range t.Records {
		c := &t.Records[i]
		if f.Borough != "" && !strings.EqualFold(c.Borough, f.Borough) {
			continue
		}
		if f.Offense != "" && !strings.EqualFold(c.Offense, f.Offense) {
			continue
		}
		if f.HasHours {
			if !c.Hour.Valid || int(c.Hour.Int16) < f.HourFrom || int(c.Hour.Int16) > f.HourTo {
				continue
			}
		}
		matched = append(matched, *c)
	}

	pages := int(math.Ceil(float64(len(matched)) / float64(size)))
	if pages == 0 {
		pages = 1
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * size
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	return models.ExplorerPage{
		Rows:       matched[start:end],
		Total:      len(matched),
		Page:       page,
		TotalPages: pages,
	}
}

// Generate computes the full aggregate summary of t.
func (s *InsightService) Generate(t *models.Table, topN int) *models.Summary {
	summary := &models.Summary{
		Rows:        t.Rows(),
		Columns:     t.Columns(),
		DroppedRows: t.DroppedRows,
		TopOffenses: s.TopOffenses(t, topN),
		Boroughs:    s.BoroughCounts(t),
		Precincts:   s.TopPrecincts(t, topN),
		Hourly:      s.HourlyTrend(t),
		Weekdays:    s.WeekdayCounts(t),
		Missing:     s.MissingReport(t),
	}
	s.logger.Debug("[insights] Summary over %d complaints: %d offenses, %d boroughs, %d hours",
		summary.Rows, len(summary.TopOffenses), len(summary.Boroughs), len(summary.Hourly))
	return summary
}

// Print writes the summary report to stdout.
func (s *InsightService) Print(r *models.Summary) {
	s.Fprint(os.Stdout, r)
}

// Fprint writes the summary report to w.
func (s *InsightService) Fprint(w io.Writer, r *models.Summary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)
	banner := color.New(color.FgMagenta, color.Bold)
	heading := color.New(color.FgYellow, color.Bold)
	bold := color.New(color.Bold)

	fmt.Fprintf(w, "\n%s\n", banner.Sprint(sep))
	fmt.Fprintf(w, "%s\n", banner.Sprint("  🚔 NYPD COMPLAINT DATA SUMMARY"))
	fmt.Fprintf(w, "%s\n\n", banner.Sprint(sep))

	fmt.Fprintf(w, "%s\n", heading.Sprint("  Overview"))
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Dataset shape          : %s\n", bold.Sprintf("(%d, %d)", r.Rows, r.Columns))
	fmt.Fprintf(w, "  Dropped (no location)  : %s\n\n", bold.Sprint(r.DroppedRows))

	printCounts(w, heading, thin, "Top Complaint Types", r.TopOffenses)
	printCounts(w, heading, thin, "Complaints by Borough", r.Boroughs)
	printCounts(w, heading, thin, "Top Precincts", r.Precincts)

	fmt.Fprintf(w, "%s\n", heading.Sprint("  Complaints by Hour"))
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Hourly) == 0 {
		fmt.Fprintf(w, "  No time data\n")
	}
	for _, h := range r.Hourly {
		fmt.Fprintf(w, "  %02d:00  %d\n", h.Hour, h.Count)
	}

	fmt.Fprintf(w, "\n%s\n\n", banner.Sprint(sep))
}

func printCounts(w io.Writer, heading *color.Color, thin, title string, counts []models.CategoryCount) {
	fmt.Fprintf(w, "%s\n", heading.Sprint("  "+title))
	fmt.Fprintf(w, "  %s\n", thin)
	if len(counts) == 0 {
		fmt.Fprintf(w, "  No data\n\n")
		return
	}

	peak := 1
	for _, c := range counts {
		if c.Count > peak {
			peak = c.Count
		}
	}
	for _, c := range counts {
		bar := strings.Repeat("█", int(math.Ceil(float64(c.Count)*20/float64(peak))))
		fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(c.Category, 28), bar, c.Count)
	}
	fmt.Fprintln(w)
}

func column(t *models.Table, field func(*models.Complaint) string) []string {
	out := make([]string, len(t.Records))
	for i := range t.Records {
		out[i] = field(&t.Records[i])
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
