package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"nypd-dashboard/models"
	"nypd-dashboard/utils"
)

const complaintColumns = 11

// PostgresWriter mirrors the cleaned complaint table into PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS complaints (
			id           SERIAL PRIMARY KEY,
			cmplnt_num   TEXT             NOT NULL DEFAULT '',
			start_date   TEXT             NOT NULL DEFAULT '',
			start_time   TEXT             NOT NULL DEFAULT '',
			offense      TEXT             NOT NULL DEFAULT '',
			borough      TEXT             NOT NULL DEFAULT '',
			precinct     TEXT             NOT NULL DEFAULT '',
			latitude     DOUBLE PRECISION NOT NULL,
			longitude    DOUBLE PRECISION NOT NULL,
			complaint_dt DATE,
			hour         SMALLINT,
			weekday      VARCHAR(9),
			loaded_at    TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_complaints_borough  ON complaints(borough);
		CREATE INDEX IF NOT EXISTS idx_complaints_precinct ON complaints(precinct);
		CREATE INDEX IF NOT EXISTS idx_complaints_offense  ON complaints(offense);
		CREATE INDEX IF NOT EXISTS idx_complaints_hour     ON complaints(hour);
	`)
	return err
}

// execer runs statements on a *sql.DB or *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Write replaces the table contents with complaints in one transaction, so a
// failed batch leaves the previous mirror in place.
func (pw *PostgresWriter) Write(complaints []models.Complaint) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	if err := replaceAll(tx, complaints); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

const batchSize = 50

func replaceAll(ex execer, complaints []models.Complaint) error {
	if _, err := ex.Exec("DELETE FROM complaints"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	for i := 0; i < len(complaints); i += batchSize {
		end := i + batchSize
		if end > len(complaints) {
			end = len(complaints)
		}
		query, args := insertStatement(complaints[i:end])
		if _, err := ex.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}
	return nil
}

// insertStatement builds one multi-row INSERT for batch.
func insertStatement(batch []models.Complaint) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*complaintColumns)

	for idx := range batch {
		c := &batch[idx]
		base := idx * complaintColumns
		placeholders := make([]string, complaintColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var date interface{}
		if c.Date.Valid {
			date = c.Date.Time.Format("2006-01-02")
		}
		valueArgs = append(valueArgs,
			c.ID, c.StartDate, c.StartTime, c.Offense, c.Borough, c.Precinct,
			c.Latitude, c.Longitude, date, c.Hour, c.Weekday)
	}

	query := fmt.Sprintf(`
		INSERT INTO complaints
			(cmplnt_num, start_date, start_time, offense, borough, precinct,
			 latitude, longitude, complaint_dt, hour, weekday)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

// Count returns the number of stored complaints.
func (pw *PostgresWriter) Count() (int, error) {
	var n int
	if err := pw.db.QueryRow("SELECT COUNT(*) FROM complaints").Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return n, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
