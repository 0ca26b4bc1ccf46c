// Package remote uploads artifacts to an HTTP signing service.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/meigma/artisign/core"
	"github.com/meigma/artisign/internal/fileio"
	"github.com/meigma/artisign/internal/progress"
)

// FormField is the multipart field carrying the artifact bytes.
const FormField = "file"

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "artisign/1.0"

// maxDiagnosticBody bounds how much of an error response is logged.
const maxDiagnosticBody = 64 << 10

// Compile-time interface implementation check.
var _ core.RemoteSigner = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// Client signs artifacts by uploading them to a signing endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
	username   string
	password   string
	token      string
	logger     *slog.Logger
}

// New creates a Client for the given endpoint URL.
// Returns core.ErrNoEndpoint if endpoint is empty.
func New(endpoint string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, core.ErrNoEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse signing endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("signing endpoint %q: unsupported scheme %q", endpoint, u.Scheme)
	}

	c := &Client{
		endpoint:  endpoint,
		userAgent: DefaultUserAgent,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = cleanhttp.DefaultPooledClient()
	}
	return c, nil
}

// WithHTTPClient sets the HTTP client used for uploads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithBasicAuth sends HTTP basic credentials with every upload.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithBearerToken sends an Authorization bearer token with every upload.
// Takes precedence over basic credentials.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger. By default, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Endpoint returns the signing endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Sign uploads source and writes the signed response body to target.
//
// On failure a second upload is made only to capture the service's error
// message for the log. Its outcome is discarded and the original error
// is returned.
func (c *Client) Sign(ctx context.Context, source, target string) (core.Transfer, error) {
	start := time.Now()

	resp, uploaded, err := c.upload(ctx, source)
	if err != nil {
		if errors.Is(err, core.ErrSigningFailed) && ctx.Err() == nil {
			c.diagnose(ctx, source)
		}
		return core.Transfer{}, fmt.Errorf("sign %s: %w", source, err)
	}
	defer resp.Body.Close()

	downloaded, err := fileio.WriteAtomic(target, responseReader{resp.Body})
	if err != nil {
		if errors.Is(err, core.ErrSigningFailed) && ctx.Err() == nil {
			c.diagnose(ctx, source)
		}
		return core.Transfer{}, fmt.Errorf("sign %s: %w", source, err)
	}

	t := core.Transfer{Uploaded: uploaded.Count(), Downloaded: downloaded}
	c.logger.Info("signed artifact",
		"file", filepath.Base(source),
		"upload", humanize.Bytes(uint64(t.Uploaded)),     //nolint:gosec // G115: byte counts are non-negative
		"download", humanize.Bytes(uint64(t.Downloaded)), //nolint:gosec // G115: byte counts are non-negative
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return t, nil
}

// upload posts source and returns the response if it is a success.
// The caller must close the response body.
func (c *Client) upload(ctx context.Context, source string) (*http.Response, *progress.Reader, error) {
	resp, body, err := c.send(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, body, nil
}

// send posts source as multipart form data and returns the raw response.
// The returned reader counts the request body bytes sent.
func (c *Client) send(ctx context.Context, source string) (*http.Response, *progress.Reader, error) {
	//nolint:gosec // G304: source is a build artifact chosen by the caller
	f, err := os.Open(source)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", source, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer f.Close()
		part, err := mw.CreateFormFile(FormField, filepath.Base(source))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	body := progress.NewReader(pr, nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		body.Close()
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", c.userAgent)
	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.username != "" || c.password != "":
		req.SetBasicAuth(c.username, c.password)
	}

	c.logger.Debug("uploading artifact", "file", filepath.Base(source), "endpoint", c.endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", core.ErrSigningFailed, err)
	}
	return resp, body, nil
}

// diagnose repeats the upload to log the service's error response.
// Every failure here is swallowed.
func (c *Client) diagnose(ctx context.Context, source string) {
	resp, _, err := c.send(ctx, source)
	if err != nil {
		c.logger.Debug("diagnostic upload failed", "file", filepath.Base(source), "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		c.logger.Debug("diagnostic upload succeeded", "file", filepath.Base(source), "status", resp.Status)
		return
	}

	msg, err := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBody))
	if err != nil {
		c.logger.Debug("read diagnostic response", "file", filepath.Base(source), "error", err)
		return
	}
	c.logger.Error("signing service error",
		"file", filepath.Base(source),
		"status", resp.Status,
		"message", strings.TrimSpace(string(msg)),
	)
}

// responseReader marks read failures on a response body as signing
// failures, so they are not mistaken for local write errors.
type responseReader struct {
	r io.Reader
}

func (rr responseReader) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("%w: read response: %w", core.ErrSigningFailed, err)
	}
	return n, err
}
