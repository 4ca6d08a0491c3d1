package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		if serveAddr == "" {
			serveAddr = cfg.ListenAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		repo := newRepository()
		dash, err := newDashboard(repo)
		if err != nil {
			return err
		}

		// Warm the cache so the first page view does not pay for the download.
		go func() {
			if _, err := repo.Load(ctx); err != nil {
				logger.Warn("[serve] Initial load failed, retrying on first request: %v", err)
			}
		}()

		logger.Info("=== NYPD complaint dashboard starting on %s ===", serveAddr)
		return dash.Serve(ctx, serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from LISTEN_ADDR)")
}
