package models

import (
	"database/sql"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// Raw CSV column names of the complaint dataset.
const (
	ColComplaintID = "CMPLNT_NUM"
	ColStartDate   = "CMPLNT_FR_DT"
	ColStartTime   = "CMPLNT_FR_TM"
	ColOffense     = "OFNS_DESC"
	ColBorough     = "BORO_NM"
	ColPrecinct    = "ADDR_PCT_CD"
	ColLatitude    = "Latitude"
	ColLongitude   = "Longitude"
)

// Derived columns added to the frame at load time.
const (
	ColHour    = "CMPLNT_FR_HOUR"
	ColWeekday = "DayOfWeek"
)

// RequiredColumns must be present in the downloaded CSV header.
var RequiredColumns = []string{
	ColStartDate, ColStartTime, ColOffense, ColBorough, ColPrecinct, ColLatitude, ColLongitude,
}

// Complaint is one cleaned complaint record. Empty strings mean the raw cell
// was missing.
type Complaint struct {
	ID        string
	StartDate string
	StartTime string
	Offense   string
	Borough   string
	Precinct  string
	Latitude  float64
	Longitude float64

	Date    sql.NullTime
	Hour    sql.NullInt16
	Weekday sql.NullString
}

// Table is the immutable snapshot every dashboard view reads from.
// Frame and Records hold the same rows in the same order.
type Table struct {
	Frame    dataframe.DataFrame
	Records  []Complaint
	Source   string
	LoadedAt time.Time
	// DroppedRows counts rows removed for missing coordinates.
	DroppedRows int
}

// Rows returns the number of retained complaints.
func (t *Table) Rows() int { return len(t.Records) }

// Columns returns the number of columns in the frame, derived ones included.
func (t *Table) Columns() int { return t.Frame.Ncol() }

// CategoryCount is one bucket of a value-count aggregation.
type CategoryCount struct {
	Category string
	Count    int
}

// HourCount is the number of complaints that started in Hour.
type HourCount struct {
	Hour  int
	Count int
}

// MissingStat reports how many cells of a column are missing.
type MissingStat struct {
	Column  string
	Missing int
	Percent float64
}

// Point is a single plotted complaint location.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ExplorerFilter narrows the complaint explorer. Zero values match everything;
// HourFrom/HourTo are inclusive and only applied when HasHours is set.
type ExplorerFilter struct {
	Borough  string
	Offense  string
	HasHours bool
	HourFrom int
	HourTo   int
	Page     int
	PageSize int
}

// ExplorerPage is one page of filtered complaints.
type ExplorerPage struct {
	Rows       []Complaint
	Total      int
	Page       int
	TotalPages int
}

// Summary is the aggregate report behind the terminal summary and the XLSX export.
type Summary struct {
	Rows        int
	Columns     int
	DroppedRows int
	TopOffenses []CategoryCount
	Boroughs    []CategoryCount
	Precincts   []CategoryCount
	Hourly      []HourCount
	Weekdays    []CategoryCount
	Missing     []MissingStat
}
