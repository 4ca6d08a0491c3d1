package main

import (
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"nypd-dashboard/dashboard"
	"nypd-dashboard/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a PNG screenshot of every dashboard section",
	RunE: func(cmd *cobra.Command, _ []string) error {
		gin.SetMode(gin.ReleaseMode)

		repo := newRepository()
		if _, err := repo.Load(cmd.Context()); err != nil {
			return err
		}
		dash, err := newDashboard(repo)
		if err != nil {
			return err
		}

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return err
		}
		srv := &http.Server{Handler: dash.Handler()}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("[snapshot] Local server failed: %v", err)
			}
		}()
		defer srv.Close()

		pages := make([]snapshot.Page, 0, len(dashboard.Sections()))
		for _, s := range dashboard.Sections() {
			pages = append(pages, snapshot.Page{Name: s.Slug(), Path: s.Path()})
		}

		_, err = snapshot.New(cfg, logger).Capture(cmd.Context(), "http://"+ln.Addr().String(), pages)
		return err
	},
}
