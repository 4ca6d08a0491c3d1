package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"nypd-dashboard/services"
	"nypd-dashboard/storage"
	"nypd-dashboard/utils"
)

var exportPostgres bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the cleaned complaints and summary to disk (and optionally PostgreSQL)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		t, err := newRepository().Load(cmd.Context())
		if err != nil {
			return err
		}

		writers := []storage.ComplaintWriter{}

		csvPath := filepath.Join(cfg.ExportDir, "nypd_complaints_clean.csv")
		csvWriter, err := storage.NewCSVWriter(csvPath)
		if err != nil {
			return err
		}
		writers = append(writers, csvWriter)

		var pg *storage.PostgresWriter
		if exportPostgres {
			pg, err = storage.NewPostgresWriter(cfg.DSN(), &utils.RetryConfig{
				MaxAttempts: cfg.MaxRetries,
				BaseDelay:   time.Second,
				Logger:      logger,
			})
			if err != nil {
				_ = csvWriter.Close()
				logger.Error("Make sure PostgreSQL is running: docker compose up -d")
				return err
			}
			writers = append(writers, pg)
		}

		for _, w := range writers {
			if err := w.Write(t.Records); err != nil {
				closeAll(writers)
				return fmt.Errorf("export: %w", err)
			}
		}
		if pg != nil {
			if err := verifyMirror(pg, len(t.Records)); err != nil {
				logger.Warn("[export] %v", err)
			}
		}
		if err := closeAll(writers); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		logger.Info("[export] %d complaints saved to %s", len(t.Records), csvPath)
		if exportPostgres {
			logger.Info("[export] Complaints stored in PostgreSQL (table: complaints)")
		}

		xlsxPath := filepath.Join(cfg.ExportDir, "nypd_summary.xlsx")
		insights := services.NewInsightService(logger)
		if err := storage.SaveSummaryXLSX(xlsxPath, insights.Generate(t, cfg.TopN)); err != nil {
			return err
		}
		logger.Info("[export] Summary workbook saved to %s", xlsxPath)
		return nil
	},
}

type rowCounter interface {
	Count() (int, error)
}

// verifyMirror checks that the database holds exactly want complaints.
func verifyMirror(db rowCounter, want int) error {
	got, err := db.Count()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("postgres mirror holds %d complaints, expected %d", got, want)
	}
	logger.Info("[export] PostgreSQL mirror verified: %d complaints", got)
	return nil
}

func closeAll(writers []storage.ComplaintWriter) error {
	var first error
	for _, w := range writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func init() {
	exportCmd.Flags().BoolVar(&exportPostgres, "postgres", false, "also mirror complaints into PostgreSQL")
}
