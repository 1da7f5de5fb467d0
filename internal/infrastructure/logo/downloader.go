// Package logo stores team crests fetched from provider CDNs on local disk.
package logo

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 2 << 20
)

type Config struct {
	// Dir is where files are written.
	Dir string
	// PathPrefix is prepended to the file name in the returned logo path.
	PathPrefix string
	Timeout    time.Duration
	MaxBytes   int
	Client     *fasthttp.Client
}

type Downloader struct {
	client     *fasthttp.Client
	dir        string
	pathPrefix string
	timeout    time.Duration
	logger     *logging.Logger
}

func NewDownloader(cfg Config, logger *logging.Logger) (*Downloader, error) {
	if logger == nil {
		logger = logging.Default()
	}
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, fmt.Errorf("logo dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create logo dir %s: %w", dir, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	client := cfg.Client
	if client == nil {
		client = &fasthttp.Client{
			Name:                     "football-stats-logo",
			MaxResponseBodySize:      maxBytes,
			NoDefaultUserAgentHeader: false,
		}
	}

	return &Downloader{
		client:     client,
		dir:        dir,
		pathPrefix: strings.Trim(strings.TrimSpace(cfg.PathPrefix), "/"),
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// Store downloads rawURL and saves it under the last URL path segment,
// replacing any previous file of the same name. It returns the stored path.
func (d *Downloader) Store(ctx context.Context, rawURL string) (string, error) {
	name, err := fileName(rawURL)
	if err != nil {
		return "", err
	}

	timeout := d.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return "", fmt.Errorf("download logo %s: %w", rawURL, context.DeadlineExceeded)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := d.client.DoTimeout(req, resp, timeout); err != nil {
		return "", fmt.Errorf("download logo %s: %w", rawURL, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("download logo %s: status=%d", rawURL, resp.StatusCode())
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := resp.BodyWriteTo(buf); err != nil {
		return "", fmt.Errorf("read logo body %s: %w", rawURL, err)
	}
	if buf.Len() == 0 {
		return "", fmt.Errorf("download logo %s: empty body", rawURL)
	}

	if err := d.writeFile(name, buf.B); err != nil {
		return "", err
	}

	stored := name
	if d.pathPrefix != "" {
		stored = d.pathPrefix + "/" + name
	}
	d.logger.DebugContext(ctx, "team logo stored", "url", rawURL, "path", stored, "bytes", buf.Len())
	return stored, nil
}

// writeFile renames a temp file into place so readers never see a partial
// image.
func (d *Downloader) writeFile(name string, body []byte) error {
	tmp, err := os.CreateTemp(d.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp logo file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write logo %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close logo %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(d.dir, name)); err != nil {
		return fmt.Errorf("move logo %s into place: %w", name, err)
	}
	return nil
}

func fileName(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse logo url %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("logo url %q must be http or https", rawURL)
	}

	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("logo url %q has no file name", rawURL)
	}
	return name, nil
}
