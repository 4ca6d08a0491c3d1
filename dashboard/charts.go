package dashboard

import (
	"io"

	"nypd-dashboard/models"
	"nypd-dashboard/render"
)

const (
	chartTopOffenses  = "top-offenses"
	chartBoroughs     = "boroughs"
	chartTopPrecincts = "top-precincts"
	chartHourly       = "hourly"
	chartWeekdays     = "weekdays"
	chartMissing      = "missing"
)

type chartFunc func(d *Dashboard, t *models.Table, w io.Writer) error

var charts = map[string]chartFunc{
	chartTopOffenses: func(d *Dashboard, t *models.Table, w io.Writer) error {
		return render.Bar(w, render.BarSpec{Title: "Top Complaint Types", Counts: d.insights.TopOffenses(t, d.opts.TopN)})
	},
	chartBoroughs: func(d *Dashboard, t *models.Table, w io.Writer) error {
		return render.Bar(w, render.BarSpec{Title: "Complaints by Borough", Counts: d.insights.BoroughCounts(t)})
	},
	chartTopPrecincts: func(d *Dashboard, t *models.Table, w io.Writer) error {
		return render.Bar(w, render.BarSpec{Title: "Top Precincts by Complaints", Counts: d.insights.TopPrecincts(t, d.opts.TopN)})
	},
	chartHourly: func(d *Dashboard, t *models.Table, w io.Writer) error {
		return render.Line(w, render.LineSpec{
			Title: "Complaints by Hour of Day",
			XName: "Hour of Day",
			YName: "Complaints",
			Hours: d.insights.HourlyTrend(t),
		})
	},
	chartWeekdays: func(d *Dashboard, t *models.Table, w io.Writer) error {
		days := d.insights.WeekdayCounts(t)
		for _, day := range days {
			if day.Count > 0 {
				return render.Bar(w, render.BarSpec{Title: "Complaints by Day of Week", Counts: days})
			}
		}
		return render.ErrNoData
	},
	chartMissing: func(d *Dashboard, t *models.Table, w io.Writer) error {
		var counts []models.CategoryCount
		for _, s := range d.insights.MissingReport(t) {
			if s.Missing > 0 {
				counts = append(counts, models.CategoryCount{Category: s.Column, Count: s.Missing})
			}
		}
		return render.Bar(w, render.BarSpec{Title: "Missing Values by Column", Counts: counts})
	},
}
