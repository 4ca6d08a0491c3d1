package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nypd-dashboard/models"
	"nypd-dashboard/utils"
)

const header = "CMPLNT_NUM,CMPLNT_FR_DT,CMPLNT_FR_TM,OFNS_DESC,BORO_NM,ADDR_PCT_CD,Latitude,Longitude\n"

// fixtureCSV has five located rows plus one row without coordinates.
const fixtureCSV = header +
	"1,01/15/2023,13:45:00,PETIT LARCENY,BRONX,44.0,40.8370,-73.9196\n" +
	"2,01/16/2023,25:99,HARRASSMENT 2,BRONX,44,40.8400,-73.9100\n" +
	"3,2023-01-17,08:05:00,PETIT LARCENY,QUEENS,114,40.7600,-73.9200\n" +
	"4,not a date,08:30:00,FELONY ASSAULT,,75,40.6700,-73.8800\n" +
	"5,01/01/1010,23:59:59,PETIT LARCENY,QUEENS,114,40.7000,-73.8000\n" +
	"6,01/18/2023,10:00:00,ROBBERY,MANHATTAN,14,,\n"

func quietLogger() *utils.Logger {
	var buf bytes.Buffer
	return utils.NewLoggerTo(&buf, &buf)
}

func fixtureTable(t *testing.T, csv string) *models.Table {
	t.Helper()
	c := NewCleaner(quietLogger())
	df, err := c.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	tbl, err := c.Clean(df)
	require.NoError(t, err)
	return tbl
}
