package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"nypd-dashboard/config"
	"nypd-dashboard/models"
	"nypd-dashboard/render"
	"nypd-dashboard/services"
	"nypd-dashboard/storage"
	"nypd-dashboard/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// TableLoader supplies the shared complaint table.
type TableLoader interface {
	Load(ctx context.Context) (*models.Table, error)
}

// Options tunes what the views show.
type Options struct {
	PreviewRows int
	TopN        int
	PageSize    int
}

// Dashboard serves the six dashboard sections over HTTP.
type Dashboard struct {
	loader   TableLoader
	insights *services.InsightService
	opts     Options
	logger   *utils.Logger
	engine   *gin.Engine
}

// New builds the dashboard and its routes.
func New(loader TableLoader, opts Options, logger *utils.Logger) (*Dashboard, error) {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 5
	}
	if opts.TopN <= 0 || opts.TopN > config.MaxTopN {
		opts.TopN = config.MaxTopN
	}
	if opts.PageSize <= 0 {
		opts.PageSize = services.DefaultPageSize
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"sections": Sections,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("dashboard: parse templates: %w", err)
	}

	d := &Dashboard{
		loader:   loader,
		insights: services.NewInsightService(logger),
		opts:     opts,
		logger:   logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), d.requestLogger())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", d.handleRoot)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/sections/:slug", d.handleSection)
	r.GET("/charts/:file", d.handleChart)
	r.GET("/api/points", d.handlePoints)
	r.GET("/export/complaints.csv", d.handleExportCSV)
	r.GET("/export/summary.xlsx", d.handleExportXLSX)

	d.engine = r
	return d, nil
}

// Handler returns the HTTP handler of the dashboard.
func (d *Dashboard) Handler() http.Handler { return d.engine }

// Render builds the view of section over t.
func (d *Dashboard) Render(section Section, t *models.Table, q url.Values) (View, error) {
	fn, ok := views[section]
	if !ok {
		return View{}, fmt.Errorf("dashboard: unknown section %v", section)
	}
	v := fn(d, t, q)
	v.Section = section
	return v, nil
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (d *Dashboard) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           d.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("[dashboard] Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("dashboard: listen: %w", err)
	case <-ctx.Done():
	}

	d.logger.Info("[dashboard] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (d *Dashboard) handleRoot(c *gin.Context) {
	target := SectionOverview
	if label := c.Query("section"); label != "" {
		s, ok := ParseSection(label)
		if !ok {
			c.String(http.StatusNotFound, "unknown section")
			return
		}
		target = s
	}
	c.Redirect(http.StatusFound, target.Path())
}

func (d *Dashboard) handleSection(c *gin.Context) {
	section, ok := ParseSection(c.Param("slug"))
	if !ok {
		c.String(http.StatusNotFound, "unknown section")
		return
	}

	t, ok := d.table(c, section)
	if !ok {
		return
	}

	view, err := d.Render(section, t, c.Request.URL.Query())
	if err != nil {
		d.fail(c, section, err)
		return
	}
	c.HTML(http.StatusOK, "dashboard", gin.H{"View": view, "Active": section})
}

func (d *Dashboard) handleChart(c *gin.Context) {
	name := strings.TrimSuffix(c.Param("file"), ".png")
	fn, ok := charts[name]
	if !ok || !strings.HasSuffix(c.Param("file"), ".png") {
		c.String(http.StatusNotFound, "unknown chart")
		return
	}

	t, ok := d.table(c, SectionOverview)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := fn(d, t, &buf); err != nil {
		if errors.Is(err, render.ErrNoData) {
			c.Status(http.StatusNoContent)
			return
		}
		d.logger.Error("[dashboard] Chart %s failed: %v", name, err)
		c.String(http.StatusInternalServerError, "chart rendering failed")
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (d *Dashboard) handlePoints(c *gin.Context) {
	t, ok := d.table(c, SectionCrimeLocations)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d.insights.Points(t))
}

func (d *Dashboard) handleExportCSV(c *gin.Context) {
	t, ok := d.table(c, SectionOverview)
	if !ok {
		return
	}

	c.Header("Content-Disposition", `attachment; filename="nypd_complaints_clean.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	w := storage.NewCSVStreamWriter(c.Writer)
	if err := w.Write(t.Records); err != nil {
		d.logger.Error("[dashboard] CSV export failed: %v", err)
	}
}

func (d *Dashboard) handleExportXLSX(c *gin.Context) {
	t, ok := d.table(c, SectionOverview)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := storage.WriteSummaryXLSX(&buf, d.insights.Generate(t, d.opts.TopN)); err != nil {
		d.fail(c, SectionOverview, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="nypd_summary.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// table loads the shared table, answering the request with an error page on failure.
func (d *Dashboard) table(c *gin.Context, section Section) (*models.Table, bool) {
	t, err := d.loader.Load(c.Request.Context())
	if err != nil {
		d.fail(c, section, err)
		return nil, false
	}
	return t, true
}

func (d *Dashboard) fail(c *gin.Context, section Section, err error) {
	d.logger.Error("[dashboard] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.HTML(http.StatusInternalServerError, "error", gin.H{
		"Active":  section,
		"Message": "Something went wrong while loading the complaint data. Please try again later.",
	})
}

func (d *Dashboard) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		d.logger.Debug("[http] %s %s → %d (%v)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
