package snapshot

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"nypd-dashboard/config"
	"nypd-dashboard/utils"
)

// Page is one dashboard page to capture.
type Page struct {
	Name string
	Path string
}

// Capturer screenshots dashboard pages with headless Chrome.
type Capturer struct {
	cfg    *config.Config
	logger *utils.Logger
	pool   *utils.WorkerPool
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Capturer.
func New(cfg *config.Config, logger *utils.Logger) *Capturer {
	return &Capturer{
		cfg:    cfg,
		logger: logger,
		pool:   utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Capture writes <SnapshotDir>/<page>.png for every page served under baseURL
// and returns the written paths.
func (c *Capturer) Capture(ctx context.Context, baseURL string, pages []Page) ([]string, error) {
	if err := os.MkdirAll(c.cfg.SnapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}

	chromeBin := findChromeBinary(c.cfg.ChromeBin)
	c.logger.Info("[snapshot] Capturing %d pages from %s with %s", len(pages), baseURL, orDefault(chromeBin, "chromedp default browser"))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1440, 1000),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// One browser shared by every tab; chromedp log noise suppressed.
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("snapshot: start browser: %w", err)
	}

	paths := make([]string, len(pages))
	for i, p := range pages {
		target := strings.TrimRight(baseURL, "/") + p.Path
		out := filepath.Join(c.cfg.SnapshotDir, p.Name+".png")
		paths[i] = out

		c.pool.Submit(func() error {
			return c.retry.DoContext(ctx, "snapshot "+p.Name, func(ctx context.Context) error {
				return c.capturePage(browserCtx, target, out)
			})
		})
	}

	if err := c.pool.Wait(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	c.logger.Info("[snapshot] Wrote %d snapshots to %s", len(paths), c.cfg.SnapshotDir)
	return paths, nil
}

func (c *Capturer) capturePage(browserCtx context.Context, target, out string) error {
	tabCtx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 90*time.Second)
	defer cancelTimeout()

	var png []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(target),
		chromedp.WaitVisible("#main", chromedp.ByID),
		// Let chart images and map tiles finish loading.
		chromedp.Sleep(2*time.Second),
		chromedp.FullScreenshot(&png, 90),
	)
	if err != nil {
		return fmt.Errorf("capture %s: %w", target, err)
	}

	if err := os.WriteFile(out, png, 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	c.logger.Debug("[snapshot] %s → %s (%d bytes)", target, out, len(png))
	return nil
}

func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
