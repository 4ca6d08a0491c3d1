package services

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"nypd-dashboard/models"
	"nypd-dashboard/utils"
)

// ErrMissingColumn is returned when the CSV lacks a column the dashboard needs.
var ErrMissingColumn = errors.New("missing required column")

// naValues are raw cells read as missing.
var naValues = []string{"", "NA", "NaN", "nan", "<nil>", "(null)", "N/A"}

var dateLayouts = []string{
	"01/02/2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"01/02/2006 15:04:05",
	"01/02/2006 03:04:05 PM",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
}

// Timestamps outside this year range cannot be represented at nanosecond
// precision and are treated as missing, like other unparseable dates.
const (
	minDateYear = 1678
	maxDateYear = 2261
)

// Cleaner parses the raw complaint CSV into a cleaned Table.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// headCapture keeps the first bytes read through it.
type headCapture struct {
	buf   bytes.Buffer
	limit int
}

func (h *headCapture) Write(p []byte) (int, error) {
	if room := h.limit - h.buf.Len(); room > 0 {
		if len(p) > room {
			h.buf.Write(p[:room])
		} else {
			h.buf.Write(p)
		}
	}
	return len(p), nil
}

func (h *headCapture) full() bool { return h.buf.Len() >= h.limit }

// Parse reads delimited text into a DataFrame with every column kept as text.
// A header without data rows yields an empty frame. Malformed files and
// missing required columns are fatal.
func (c *Cleaner) Parse(r io.Reader) (dataframe.DataFrame, error) {
	head := &headCapture{limit: 64 << 10}
	df := dataframe.ReadCSV(io.TeeReader(r, head),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(naValues),
	)
	if df.Err != nil {
		names, ok := headerOnly(head)
		if !ok {
			return df, fmt.Errorf("parse csv: %w", df.Err)
		}
		cols := make([]series.Series, len(names))
		for i, name := range names {
			cols[i] = series.New([]string{}, series.String, name)
		}
		df = dataframe.New(cols...)
		if df.Err != nil {
			return df, fmt.Errorf("parse csv: %w", df.Err)
		}
		c.logger.Warn("[cleaner] CSV has a header but no data rows")
	}

	have := make(map[string]struct{}, df.Ncol())
	for _, name := range df.Names() {
		have[name] = struct{}{}
	}
	for _, name := range models.RequiredColumns {
		if _, ok := have[name]; !ok {
			return df, fmt.Errorf("parse csv: %w %q", ErrMissingColumn, name)
		}
	}
	return df, nil
}

// headerOnly returns the column names when the captured input is a single
// well-formed header record.
func headerOnly(head *headCapture) ([]string, bool) {
	if head.full() {
		return nil, false
	}
	records, err := csv.NewReader(bytes.NewReader(head.buf.Bytes())).ReadAll()
	if err != nil || len(records) != 1 || len(records[0]) == 0 {
		return nil, false
	}
	return records[0], true
}

// Clean derives the date, hour and weekday columns and drops rows without
// coordinates. The returned Table is never modified afterwards.
func (c *Cleaner) Clean(df dataframe.DataFrame) (*models.Table, error) {
	total := df.Nrow()

	df = df.Filter(dataframe.F{Colname: models.ColLatitude, Comparator: series.CompFunc, Comparando: hasCoordinate}).
		Filter(dataframe.F{Colname: models.ColLongitude, Comparator: series.CompFunc, Comparando: hasCoordinate})
	if df.Err != nil {
		return nil, fmt.Errorf("drop rows without coordinates: %w", df.Err)
	}

	n := df.Nrow()
	records := make([]models.Complaint, n)
	hours := make([]string, n)
	weekdays := make([]string, n)

	var id series.Series
	hasID := false
	for _, name := range df.Names() {
		if name == models.ColComplaintID {
			id, hasID = df.Col(name), true
		}
	}
	dates := df.Col(models.ColStartDate)
	times := df.Col(models.ColStartTime)
	offenses := df.Col(models.ColOffense)
	boroughs := df.Col(models.ColBorough)
	precincts := df.Col(models.ColPrecinct)
	lats := df.Col(models.ColLatitude)
	lons := df.Col(models.ColLongitude)

	badDates, badTimes := 0, 0
	for i := 0; i < n; i++ {
		rec := models.Complaint{
			StartDate: cell(dates, i),
			StartTime: cell(times, i),
			Offense:   normaliseText(cell(offenses, i)),
			Borough:   normaliseText(cell(boroughs, i)),
			Precinct:  normalisePrecinct(cell(precincts, i)),
		}
		if hasID {
			rec.ID = cell(id, i)
		}
		rec.Latitude, _ = parseCoordinate(cell(lats, i))
		rec.Longitude, _ = parseCoordinate(cell(lons, i))

		if d, ok := parseDate(rec.StartDate); ok {
			rec.Date = sql.NullTime{Time: d, Valid: true}
			rec.Weekday = sql.NullString{String: d.Weekday().String(), Valid: true}
			weekdays[i] = rec.Weekday.String
		} else {
			weekdays[i] = "NaN"
			if rec.StartDate != "" {
				badDates++
			}
		}

		if h, ok := parseHour(rec.StartTime); ok {
			rec.Hour = sql.NullInt16{Int16: int16(h), Valid: true}
			hours[i] = strconv.Itoa(h)
		} else {
			hours[i] = "NaN"
			if rec.StartTime != "" {
				badTimes++
			}
		}

		records[i] = rec
	}

	df = df.Mutate(series.New(hours, series.String, models.ColHour)).
		Mutate(series.New(weekdays, series.String, models.ColWeekday))
	if df.Err != nil {
		return nil, fmt.Errorf("add derived columns: %w", df.Err)
	}

	if badDates > 0 || badTimes > 0 {
		c.logger.Debug("[cleaner] Coerced %d unparseable dates and %d unparseable times to missing", badDates, badTimes)
	}
	c.logger.Info("[cleaner] Cleaned %d → %d complaints (dropped %d without coordinates)", total, n, total-n)

	return &models.Table{
		Frame:       df,
		Records:     records,
		LoadedAt:    time.Now(),
		DroppedRows: total - n,
	}, nil
}

func hasCoordinate(el series.Element) bool {
	if el.IsNA() {
		return false
	}
	_, ok := parseCoordinate(el.String())
	return ok
}

func parseCoordinate(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseDate accepts the date layouts the dataset is published in.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		d, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if d.Year() < minDateYear || d.Year() > maxDateYear {
			return time.Time{}, false
		}
		return d, true
	}
	return time.Time{}, false
}

// parseHour returns the hour of day of a time-of-day string.
// "24:00:00" and "25:99" are rejected.
func parseHour(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}

// cell returns the text of row i, or "" when the cell is missing.
func cell(s series.Series, i int) string {
	el := s.Elem(i)
	if el.IsNA() {
		return ""
	}
	return el.String()
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalisePrecinct turns float-formatted codes such as "14.0" into "14".
func normalisePrecinct(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}
