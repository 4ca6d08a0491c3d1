package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"nypd-dashboard/models"
)

var csvHeader = []string{
	models.ColComplaintID, models.ColStartDate, models.ColStartTime, models.ColOffense,
	models.ColBorough, models.ColPrecinct, models.ColLatitude, models.ColLongitude,
	"CMPLNT_FR_DATE_PARSED", models.ColHour, models.ColWeekday,
}

// CSVWriter writes cleaned complaints, derived columns included, as CSV.
// It is safe for concurrent use.
type CSVWriter struct {
	mu            sync.Mutex
	closer        io.Closer
	writer        *csv.Writer
	headerWritten bool
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{closer: f, writer: csv.NewWriter(f)}, nil
}

// NewCSVStreamWriter writes CSV to w, e.g. an HTTP response. Close does not close w.
func NewCSVStreamWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{writer: csv.NewWriter(w)}
}

// Write appends complaints, preceded by the header row on the first call.
func (c *CSVWriter) Write(complaints []models.Complaint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.headerWritten {
		if err := c.writer.Write(csvHeader); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
		c.headerWritten = true
	}

	for i := range complaints {
		if err := c.writer.Write(complaintRow(&complaints[i])); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file, if any.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if c.closer == nil {
		return c.writer.Error()
	}
	return c.closer.Close()
}

func complaintRow(c *models.Complaint) []string {
	row := []string{
		c.ID, c.StartDate, c.StartTime, c.Offense, c.Borough, c.Precinct,
		strconv.FormatFloat(c.Latitude, 'f', -1, 64),
		strconv.FormatFloat(c.Longitude, 'f', -1, 64),
		"", "", "",
	}
	if c.Date.Valid {
		row[8] = c.Date.Time.Format("2006-01-02")
	}
	if c.Hour.Valid {
		row[9] = strconv.Itoa(int(c.Hour.Int16))
	}
	if c.Weekday.Valid {
		row[10] = c.Weekday.String
	}
	return row
}
