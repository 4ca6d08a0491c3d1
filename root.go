package main

import (
	"github.com/spf13/cobra"

	"nypd-dashboard/config"
	"nypd-dashboard/dashboard"
	"nypd-dashboard/services"
	"nypd-dashboard/source/gdrive"
	"nypd-dashboard/utils"
)

// Global flag values.
var (
	verbose bool
	noColor bool
)

var (
	cfg    *config.Config
	logger *utils.Logger
)

// rootCmd is the base command for the dashboard.
var rootCmd = &cobra.Command{
	Use:   "nypd-dashboard",
	Short: "Explore NYPD complaint data in a browser dashboard",
	Long: `nypd-dashboard downloads the NYPD complaint extract from Google Drive,
caches it locally and serves an interactive dashboard with location maps,
borough and precinct breakdowns, time-based trends and a missing-data report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		cfg = config.Load()
		logger = utils.NewLogger()
		logger.SetDebug(verbose || cfg.LogLevel == "debug")
		if noColor || cfg.NoColor {
			utils.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// newRepository wires the Drive fetcher into the shared table repository.
func newRepository() *services.Repository {
	if id := gdrive.ExtractFileID(cfg.GDriveShareURL); id != "" && id != cfg.GDriveFileID {
		logger.Warn("[config] Sharing URL points at file %s but downloads use %s", id, cfg.GDriveFileID)
	}

	fetcher := gdrive.New(gdrive.Options{
		FileID:      cfg.GDriveFileID,
		DownloadURL: cfg.GDriveDownloadURL,
		CachePath:   cfg.CachePath,
		ChunkSize:   cfg.ChunkSize,
		Timeout:     cfg.HTTPTimeout,
	}, logger)
	return services.NewRepository(fetcher, logger)
}

func newDashboard(repo *services.Repository) (*dashboard.Dashboard, error) {
	return dashboard.New(repo, dashboard.Options{
		PreviewRows: cfg.PreviewRows,
		TopN:        cfg.TopN,
		PageSize:    cfg.ExplorerPageSize,
	}, logger)
}
