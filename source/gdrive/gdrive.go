package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"nypd-dashboard/utils"
)

const defaultChunkSize = 32768

// ErrUnexpectedHTML is returned when Drive keeps answering with an HTML page
// instead of the file, e.g. a second confirmation prompt or a permission page.
var ErrUnexpectedHTML = errors.New("gdrive: unexpected HTML response instead of file")

var (
	fileIDPathRegexp = regexp.MustCompile(`/d/([A-Za-z0-9_-]{10,})`)
	confirmRegexp    = regexp.MustCompile(`name="confirm"\s+value="([A-Za-z0-9_-]+)"|[?&;]confirm=([A-Za-z0-9_-]+)`)
	uuidRegexp       = regexp.MustCompile(`name="uuid"\s+value="([A-Za-z0-9_-]+)"`)
)

// Options configures a Fetcher.
type Options struct {
	FileID      string
	DownloadURL string
	CachePath   string
	ChunkSize   int
	Timeout     time.Duration
}

// Fetcher downloads a Drive-hosted file to a local cache path once.
type Fetcher struct {
	opts   Options
	client *http.Client
	logger *utils.Logger
}

// New creates a Fetcher with its own cookie-jar session.
func New(opts Options, logger *utils.Logger) *Fetcher {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	jar, _ := cookiejar.New(nil)
	return &Fetcher{
		opts:   opts,
		client: &http.Client{Jar: jar, Timeout: opts.Timeout},
		logger: logger,
	}
}

// Path returns the local cache path.
func (f *Fetcher) Path() string { return f.opts.CachePath }

// Ensure makes sure the cache file exists, downloading it when absent.
// The cache is never invalidated: presence alone suppresses the download.
func (f *Fetcher) Ensure(ctx context.Context) (path string, downloaded bool, err error) {
	if _, err := os.Stat(f.opts.CachePath); err == nil {
		f.logger.Debug("[gdrive] Cache hit: %s", f.opts.CachePath)
		return f.opts.CachePath, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("gdrive: stat cache %q: %w", f.opts.CachePath, err)
	}

	f.logger.Info("[gdrive] Downloading dataset %s to %s", f.opts.FileID, f.opts.CachePath)
	start := time.Now()

	n, err := f.download(ctx)
	if err != nil {
		return "", false, err
	}

	f.logger.Info("[gdrive] Downloaded %d bytes in %v", n, time.Since(start).Round(time.Millisecond))
	return f.opts.CachePath, true, nil
}

func (f *Fetcher) download(ctx context.Context) (int64, error) {
	resp, err := f.get(ctx, nil)
	if err != nil {
		return 0, err
	}

	// Large files are held behind a single virus-scan confirmation step.
	if token, extra := confirmToken(resp); token != "" {
		f.logger.Debug("[gdrive] Following virus-scan confirmation")
		_ = resp.Body.Close()

		params := url.Values{"confirm": {token}}
		for k, v := range extra {
			params[k] = v
		}
		resp, err = f.get(ctx, params)
		if err != nil {
			return 0, err
		}
	}
	defer resp.Body.Close()

	if isHTML(resp) {
		return 0, ErrUnexpectedHTML
	}

	return f.store(resp.Body)
}

func (f *Fetcher) get(ctx context.Context, extra url.Values) (*http.Response, error) {
	u, err := url.Parse(f.opts.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("gdrive: parse download url: %w", err)
	}

	q := u.Query()
	q.Set("id", f.opts.FileID)
	q.Set("export", "download")
	for k, v := range extra {
		q[k] = v
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("gdrive: build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gdrive: fetch %s: %w", f.opts.FileID, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("gdrive: fetch %s: unexpected status %s", f.opts.FileID, resp.Status)
	}
	return resp, nil
}

// store streams body into a temporary file in fixed-size chunks and renames
// it onto the cache path, so a failed download never leaves a cache file.
func (f *Fetcher) store(body io.Reader) (int64, error) {
	dir := filepath.Dir(f.opts.CachePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("gdrive: create cache dir: %w", err)
	}

	tmp := f.opts.CachePath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("gdrive: create %q: %w", tmp, err)
	}

	var written int64
	buf := make([]byte, f.opts.ChunkSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				_ = out.Close()
				_ = os.Remove(tmp)
				return written, fmt.Errorf("gdrive: write chunk: %w", werr)
			}
			written += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			_ = out.Close()
			_ = os.Remove(tmp)
			return written, fmt.Errorf("gdrive: read body: %w", rerr)
		}
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return written, fmt.Errorf("gdrive: close %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.opts.CachePath); err != nil {
		_ = os.Remove(tmp)
		return written, fmt.Errorf("gdrive: move into cache: %w", err)
	}
	return written, nil
}

// confirmToken looks for Drive's confirmation token, first in a
// download_warning cookie, then in an HTML interstitial page. extra carries
// any additional form fields the interstitial asks to echo back.
func confirmToken(resp *http.Response) (token string, extra url.Values) {
	for _, c := range resp.Cookies() {
		if strings.HasPrefix(c.Name, "download_warning") {
			return c.Value, nil
		}
	}
	if !isHTML(resp) {
		return "", nil
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", nil
	}
	m := confirmRegexp.FindSubmatch(page)
	if m == nil {
		return "", nil
	}
	token = string(m[1])
	if token == "" {
		token = string(m[2])
	}
	if u := uuidRegexp.FindSubmatch(page); u != nil {
		extra = url.Values{"uuid": {string(u[1])}}
	}
	return token, extra
}

func isHTML(resp *http.Response) bool {
	mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mt == "text/html"
}

// ExtractFileID returns the Drive file id named by a sharing or download URL,
// or "" when none is present.
func ExtractFileID(raw string) string {
	if m := fileIDPathRegexp.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	if u, err := url.Parse(raw); err == nil {
		return u.Query().Get("id")
	}
	return ""
}
