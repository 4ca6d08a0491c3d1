package services

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nypd-dashboard/models"
)

func TestValueCountsExcludesMissing(t *testing.T) {
	got := ValueCounts([]string{"BRONX", "BRONX", "QUEENS", "", "QUEENS"})
	assert.Equal(t, []models.CategoryCount{
		{Category: "BRONX", Count: 2},
		{Category: "QUEENS", Count: 2},
	}, got)
}

func TestValueCountsOrdersByCountThenFirstSeen(t *testing.T) {
	got := ValueCounts([]string{"a", "b", "c", "c", "b", "c"})
	assert.Equal(t, []models.CategoryCount{
		{Category: "c", Count: 3},
		{Category: "b", Count: 2},
		{Category: "a", Count: 1},
	}, got)
}

func TestBoroughCountsFixture(t *testing.T) {
	svc := NewInsightService(quietLogger())
	got := svc.BoroughCounts(fixtureTable(t, fixtureCSV))
	assert.Equal(t, []models.CategoryCount{
		{Category: "BRONX", Count: 2},
		{Category: "QUEENS", Count: 2},
	}, got)
}

func manyRows(n int, offense func(i int) string, precinct func(i int) string) string {
	var b strings.Builder
	b.WriteString(header)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,01/15/2023,%02d:00:00,%s,BRONX,%s,40.8,-73.9\n", i, i%24, offense(i), precinct(i))
	}
	return b.String()
}

func TestTopOffensesAtMostN(t *testing.T) {
	csv := manyRows(300, func(i int) string { return fmt.Sprintf("OFFENSE %d", i%25) }, func(int) string { return "1" })
	svc := NewInsightService(quietLogger())

	top := svc.TopOffenses(fixtureTable(t, csv), 10)
	assert.Len(t, top, 10)
}

func TestTopPrecinctsSortedDescending(t *testing.T) {
	csv := manyRows(200, func(int) string { return "ROBBERY" }, func(i int) string { return fmt.Sprintf("%d.0", (i*i)%17) })
	svc := NewInsightService(quietLogger())

	top := svc.TopPrecincts(fixtureTable(t, csv), 10)
	require.LessOrEqual(t, len(top), 10)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Count, top[i].Count)
	}
	for _, p := range top {
		assert.NotContains(t, p.Category, ".")
	}
}

func TestHourlyTrendAscendingUnique(t *testing.T) {
	csv := manyRows(100, func(int) string { return "ROBBERY" }, func(int) string { return "1" })
	svc := NewInsightService(quietLogger())

	trend := svc.HourlyTrend(fixtureTable(t, csv))
	require.Len(t, trend, 24)
	for i, h := range trend {
		assert.GreaterOrEqual(t, h.Hour, 0)
		assert.Less(t, h.Hour, 24)
		if i > 0 {
			assert.Greater(t, h.Hour, trend[i-1].Hour)
		}
	}
}

func TestHourlyTrendSkipsMissingHours(t *testing.T) {
	svc := NewInsightService(quietLogger())
	trend := svc.HourlyTrend(fixtureTable(t, fixtureCSV))
	assert.Equal(t, []models.HourCount{
		{Hour: 8, Count: 2},
		{Hour: 13, Count: 1},
		{Hour: 23, Count: 1},
	}, trend)
}

func TestWeekdayCounts(t *testing.T) {
	svc := NewInsightService(quietLogger())
	days := svc.WeekdayCounts(fixtureTable(t, fixtureCSV))
	require.Len(t, days, 7)
	assert.Equal(t, "Monday", days[0].Category)
	assert.Equal(t, 1, days[0].Count)
	assert.Equal(t, "Tuesday", days[1].Category)
	assert.Equal(t, 1, days[1].Count)
	assert.Equal(t, "Sunday", days[6].Category)
	assert.Equal(t, 1, days[6].Count)
}

func TestMissingReport(t *testing.T) {
	svc := NewInsightService(quietLogger())
	report := svc.MissingReport(fixtureTable(t, fixtureCSV))

	byName := make(map[string]models.MissingStat)
	for _, s := range report {
		byName[s.Column] = s
	}
	assert.Equal(t, 1, byName[models.ColBorough].Missing)
	assert.Equal(t, 20.0, byName[models.ColBorough].Percent)
	assert.Equal(t, 1, byName[models.ColHour].Missing)
	assert.Equal(t, 2, byName[models.ColWeekday].Missing)
	assert.Equal(t, models.ColComplaintID, report[0].Column)
}

func TestExplore(t *testing.T) {
	svc := NewInsightService(quietLogger())
	tbl := fixtureTable(t, fixtureCSV)

	page := svc.Explore(tbl, models.ExplorerFilter{Borough: "queens"})
	assert.Equal(t, 2, page.Total)

	page = svc.Explore(tbl, models.ExplorerFilter{Offense: "PETIT LARCENY", HasHours: true, HourFrom: 8, HourTo: 13})
	assert.Equal(t, 2, page.Total)

	page = svc.Explore(tbl, models.ExplorerFilter{PageSize: 2, Page: 3})
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Rows, 1)

	page = svc.Explore(tbl, models.ExplorerFilter{PageSize: 2, Page: 99})
	assert.Equal(t, 3, page.Page)

	page = svc.Explore(tbl, models.ExplorerFilter{Borough: "STATEN ISLAND"})
	assert.Zero(t, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Rows)
}

func TestGenerateAndPrint(t *testing.T) {
	svc := NewInsightService(quietLogger())
	summary := svc.Generate(fixtureTable(t, fixtureCSV), 10)

	assert.Equal(t, 5, summary.Rows)
	assert.Equal(t, 10, summary.Columns)
	assert.Equal(t, "PETIT LARCENY", summary.TopOffenses[0].Category)

	var out bytes.Buffer
	svc.Fprint(&out, summary)
	assert.Contains(t, out.String(), "PETIT LARCENY")
	assert.Contains(t, out.String(), "(5, 10)")
}

func TestInsightEmptyTable(t *testing.T) {
	svc := NewInsightService(quietLogger())
	tbl := fixtureTable(t, header+"1,01/15/2023,13:45:00,ROBBERY,BRONX,44,,\n")

	assert.Zero(t, tbl.Rows())
	assert.Empty(t, svc.TopOffenses(tbl, 10))
	assert.Empty(t, svc.HourlyTrend(tbl))
	assert.Empty(t, svc.Points(tbl))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	got := truncate("HARCÈLEMENT À L'ÉGARD D'UN TÉMOIN PROTÉGÉ", 28)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 28, utf8.RuneCountInString(got))
	assert.Equal(t, "BRONX", truncate("BRONX", 28))
}
