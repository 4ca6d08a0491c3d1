package dashboard

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverviewView(t *testing.T) {
	tbl := loadTable(t, fixtureCSV)
	d := newTestDashboard(t, &fakeLoader{table: tbl}, Options{PreviewRows: 2})

	v, err := d.Render(SectionOverview, tbl, nil)
	require.NoError(t, err)
	assert.Equal(t, SectionOverview, v.Section)
	assert.Equal(t, "(5, 10)", v.Facts[0].Value)
	assert.Equal(t, "1", v.Facts[3].Value, "one row dropped for missing coordinates")

	require.Len(t, v.Tables, 1)
	assert.Len(t, v.Tables[0].Header, 10)
	assert.Len(t, v.Tables[0].Rows, 2)
	assert.Equal(t, "1", v.Tables[0].Rows[0][0])

	require.Len(t, v.Charts, 1)
	assert.Equal(t, "/charts/top-offenses.png", v.Charts[0].URL())
	assert.False(t, v.Charts[0].Empty)
}

func TestLocationsView(t *testing.T) {
	tbl := loadTable(t, fixtureCSV)
	d := newTestDashboard(t, &fakeLoader{table: tbl}, Options{})

	v, err := d.Render(SectionCrimeLocations, tbl, nil)
	require.NoError(t, err)
	require.NotNil(t, v.Map)
	assert.Equal(t, 5, v.Map.Points)
	assert.Equal(t, "/api/points", v.Map.PointsURL)
}

func TestBoroughView(t *testing.T) {
	tbl := loadTable(t, fixtureCSV)
	d := newTestDashboard(t, &fakeLoader{table: tbl}, Options{})

	v, err := d.Render(SectionBoroughPrecincts, tbl, nil)
	require.NoError(t, err)
	require.Len(t, v.Tables, 2)
	assert.Equal(t, [][]string{{"BRONX", "2"}, {"QUEENS", "2"}}, v.Tables[0].Rows)
	assert.Equal(t, []string{"44", "2"}, v.Tables[1].Rows[0])
	assert.Len(t, v.Charts, 2)
}

func TestTimeTrendsView(t *testing.T) {
	tbl := loadTable(t, fixtureCSV)
	d := newTestDashboard(t, &fakeLoader{table: tbl}, Options{})

	v, err := d.Render(SectionTimeTrends, tbl, nil)
	require.NoError(t, err)
	require.Len(t, v.Charts, 2)
	assert.Equal(t, chartHourly, v.Charts[0].Name)
	assert.False(t, v.Charts[0].Empty)
	assert.Equal(t, chartWeekdays, v.Charts[1].Name)
	assert.False(t, v.Charts[1].Empty)
}

func TestExplorerViewFilters(t *testing.T) {
	tbl := loadTable(t, fixtureCSV)
	d := newTestDashboard(t, &fakeLoader{table: tbl}, Options{})

	v, err := d.Render(SectionExplorer, tbl, url.Values{"borough": {"queens"}})
	require.NoError(t, err)
	require.NotNil(t, v.Explorer)
	assert.Equal(t, 2, v.Explorer.Result.Total)
	assert.Equal(t, []string{"BRONX", "QUEENS"}, v.Explorer.Boroughs)

	v, err = d.Render(SectionExplorer, tbl, url.Values{"hour_from": {"8"}, "hour_to": {"8"}})
	require.NoError(t, err)
	assert.Equal(t, 2, v.Explorer.Result.Total)
}

func TestExplorerViewPaging(t *testing.T) {
	tbl := loadTable(t, fixtureCSV)
	d := newTestDashboard(t, &fakeLoader{table: tbl}, Options{PageSize: 2})

	v, err := d.Render(SectionExplorer, tbl, url.Values{})
	require.NoError(t, err)
	ev := v.Explorer
	assert.Equal(t, 5, ev.Result.Total)
	assert.Equal(t, 3, ev.Result.TotalPages)
	assert.Len(t, ev.Table.Rows, 2)
	assert.Empty(t, ev.PrevURL)
	assert.Equal(t, "/sections/complaint-explorer?page=2", ev.NextURL)

	v, err = d.Render(SectionExplorer, tbl, url.Values{"page": {"3"}})
	require.NoError(t, err)
	assert.Len(t, v.Explorer.Table.Rows, 1)
	assert.Empty(t, v.Explorer.NextURL)
	assert.Equal(t, "/sections/complaint-explorer?page=2", v.Explorer.PrevURL)
}

func TestMissingDataView(t *testing.T) {
	tbl := loadTable(t, fixtureCSV)
	d := newTestDashboard(t, &fakeLoader{table: tbl}, Options{})

	v, err := d.Render(SectionMissingData, tbl, nil)
	require.NoError(t, err)
	assert.Equal(t, "3 of 10", v.Facts[0].Value)
	require.Len(t, v.Tables, 1)
	assert.Len(t, v.Tables[0].Rows, 10)
	assert.False(t, v.Charts[0].Empty)
}

func TestParseExplorerFilter(t *testing.T) {
	f := parseExplorerFilter(url.Values{}, 50)
	assert.False(t, f.HasHours)
	assert.Equal(t, 0, f.HourFrom)
	assert.Equal(t, 23, f.HourTo)

	f = parseExplorerFilter(url.Values{"hour_from": {"30"}, "hour_to": {"5"}, "page": {"x"}}, 50)
	assert.True(t, f.HasHours)
	assert.Equal(t, 0, f.HourFrom)
	assert.Equal(t, 5, f.HourTo)
	assert.Equal(t, 0, f.Page)
}

func TestRenderUnknownSection(t *testing.T) {
	tbl := loadTable(t, fixtureCSV)
	d := newTestDashboard(t, &fakeLoader{table: tbl}, Options{})
	_, err := d.Render(Section(99), tbl, nil)
	assert.Error(t, err)
}

func TestTopNIsCapped(t *testing.T) {
	d := newTestDashboard(t, &fakeLoader{table: loadTable(t, fixtureCSV)}, Options{TopN: 25})
	assert.Equal(t, 10, d.opts.TopN)
}
