package remote

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/artisign/core"
)

// fakeSigner is an httptest signing service. It answers with "signed:" plus
// the uploaded bytes, or with a fixed failure status and message.
type fakeSigner struct {
	failStatus  int
	failMessage string
	requests    atomic.Int32

	mu        sync.Mutex
	filenames []string
	headers   []http.Header
}

func (f *fakeSigner) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	file, header, err := r.FormFile(FormField)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.filenames = append(f.filenames, header.Filename)
	f.headers = append(f.headers, r.Header.Clone())
	f.mu.Unlock()

	if f.failStatus != 0 {
		http.Error(w, f.failMessage, f.failStatus)
		return
	}
	_, _ = w.Write(append([]byte("signed:"), data...))
}

// recorded returns the filenames and headers seen so far.
func (f *fakeSigner) recorded() ([]string, []http.Header) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.filenames...), append([]http.Header(nil), f.headers...)
}

func newServer(t *testing.T, f *fakeSigner) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv
}

func writeSource(t *testing.T, name, content string) (source, target string) {
	t.Helper()
	dir := t.TempDir()
	source = filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(source, []byte(content), 0o600))
	out := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(out, 0o755))
	return source, filepath.Join(out, name)
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires endpoint", func(t *testing.T) {
		t.Parallel()
		_, err := New("  ")
		require.ErrorIs(t, err, core.ErrNoEndpoint)
	})

	t.Run("rejects unsupported scheme", func(t *testing.T) {
		t.Parallel()
		_, err := New("ftp://signer.example.com/sign")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported scheme")
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()
		c, err := New("https://signer.example.com/sign")
		require.NoError(t, err)
		assert.Equal(t, DefaultUserAgent, c.userAgent)
		assert.NotNil(t, c.httpClient)
		assert.Equal(t, "https://signer.example.com/sign", c.Endpoint())
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()
		hc := &http.Client{}
		c, err := New("https://signer.example.com/sign",
			WithHTTPClient(hc),
			WithUserAgent("custom/2.0"),
			WithBasicAuth("user", "pass"),
			WithBearerToken("tok"),
		)
		require.NoError(t, err)
		assert.Same(t, hc, c.httpClient)
		assert.Equal(t, "custom/2.0", c.userAgent)
		assert.Equal(t, "user", c.username)
		assert.Equal(t, "tok", c.token)
	})
}

func TestSign_Success(t *testing.T) {
	t.Parallel()

	f := &fakeSigner{}
	srv := newServer(t, f)
	logger, logs := bufferLogger()

	c, err := New(srv.URL, WithLogger(logger))
	require.NoError(t, err)

	source, target := writeSource(t, "mylib-1.0.jar", "jar bytes")
	transfer, err := c.Sign(context.Background(), source, target)
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "signed:jar bytes", string(got))

	assert.Equal(t, int64(len("signed:jar bytes")), transfer.Downloaded)
	// Multipart framing makes the upload larger than the file.
	assert.Greater(t, transfer.Uploaded, int64(len("jar bytes")))
	assert.Equal(t, int32(1), f.requests.Load())
	filenames, headers := f.recorded()
	assert.Equal(t, []string{"mylib-1.0.jar"}, filenames)
	assert.Equal(t, DefaultUserAgent, headers[0].Get("User-Agent"))
	assert.Contains(t, logs.String(), "signed artifact")
	assert.Contains(t, logs.String(), "elapsed=")
}

func TestSign_AuthHeaders(t *testing.T) {
	t.Parallel()

	t.Run("bearer token", func(t *testing.T) {
		t.Parallel()
		f := &fakeSigner{}
		srv := newServer(t, f)
		c, err := New(srv.URL, WithBearerToken("s3cret"), WithBasicAuth("u", "p"))
		require.NoError(t, err)

		source, target := writeSource(t, "lib.jar", "x")
		_, err = c.Sign(context.Background(), source, target)
		require.NoError(t, err)
		_, headers := f.recorded()
		assert.Equal(t, "Bearer s3cret", headers[0].Get("Authorization"))
	})

	t.Run("basic auth", func(t *testing.T) {
		t.Parallel()
		f := &fakeSigner{}
		srv := newServer(t, f)
		c, err := New(srv.URL, WithBasicAuth("u", "p"))
		require.NoError(t, err)

		source, target := writeSource(t, "lib.jar", "x")
		_, err = c.Sign(context.Background(), source, target)
		require.NoError(t, err)

		_, headers := f.recorded()
		req := &http.Request{Header: headers[0]}
		user, pass, ok := req.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "u", user)
		assert.Equal(t, "p", pass)
	})
}

func TestSign_FailureRunsDiagnosticUpload(t *testing.T) {
	t.Parallel()

	f := &fakeSigner{failStatus: http.StatusInternalServerError, failMessage: "certificate expired"}
	srv := newServer(t, f)
	logger, logs := bufferLogger()

	c, err := New(srv.URL, WithLogger(logger))
	require.NoError(t, err)

	source, target := writeSource(t, "mylib-1.0.jar", "jar bytes")
	_, err = c.Sign(context.Background(), source, target)
	require.Error(t, err)

	assert.ErrorIs(t, err, core.ErrSigningFailed)
	assert.NotErrorIs(t, err, core.ErrUnauthorized)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, err.Error(), source)

	assert.Equal(t, int32(2), f.requests.Load(), "one upload plus one diagnostic upload")
	assert.Contains(t, logs.String(), "signing service error")
	assert.Contains(t, logs.String(), "certificate expired")

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "failed signing must not write the target")
}

func TestSign_DiagnosticSuccessIsNotLoggedAsError(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, "try again later", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("SIGNED-BINARY-PAYLOAD"))
	}))
	t.Cleanup(srv.Close)

	logger, logs := bufferLogger()
	c, err := New(srv.URL, WithLogger(logger))
	require.NoError(t, err)

	source, target := writeSource(t, "a.jar", "jar bytes")
	_, err = c.Sign(context.Background(), source, target)
	require.ErrorIs(t, err, core.ErrSigningFailed)

	assert.Equal(t, int32(2), requests.Load())
	assert.Contains(t, logs.String(), "diagnostic upload succeeded")
	assert.NotContains(t, logs.String(), "signing service error")
	assert.NotContains(t, logs.String(), "SIGNED-BINARY-PAYLOAD")

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "diagnostic response must not be written")
}

func TestSign_TruncatedResponseIsSigningFailure(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte("partial"))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)

	source, target := writeSource(t, "a.jar", "jar bytes")
	_, err = c.Sign(context.Background(), source, target)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSigningFailed)
	assert.Equal(t, int32(2), requests.Load(), "one upload plus one diagnostic upload")

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "truncated response must not be written")
}

func TestSign_Unauthorized(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			t.Parallel()
			f := &fakeSigner{failStatus: status, failMessage: "no"}
			srv := newServer(t, f)
			c, err := New(srv.URL)
			require.NoError(t, err)

			source, target := writeSource(t, "lib.jar", "x")
			_, err = c.Sign(context.Background(), source, target)
			assert.ErrorIs(t, err, core.ErrUnauthorized)
			assert.ErrorIs(t, err, core.ErrSigningFailed)
		})
	}
}

func TestSign_TransportFailureSwallowsDiagnosticError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	logger, logs := bufferLogger()
	c, err := New(url, WithLogger(logger))
	require.NoError(t, err)

	source, target := writeSource(t, "lib.jar", "x")
	_, err = c.Sign(context.Background(), source, target)
	require.ErrorIs(t, err, core.ErrSigningFailed)
	assert.Contains(t, logs.String(), "diagnostic upload failed")
	assert.NotContains(t, logs.String(), "signing service error")
}

func TestSign_MissingSourceSkipsDiagnostic(t *testing.T) {
	t.Parallel()

	f := &fakeSigner{}
	srv := newServer(t, f)
	c, err := New(srv.URL)
	require.NoError(t, err)

	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.jar")
	_, err = c.Sign(context.Background(), missing, filepath.Join(dir, "out.jar"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, core.ErrSigningFailed)
	assert.Equal(t, int32(0), f.requests.Load())
}

func TestStatusError(t *testing.T) {
	t.Parallel()

	err := &StatusError{StatusCode: http.StatusBadGateway}
	assert.Equal(t, "signing service returned 502 Bad Gateway", err.Error())

	err = &StatusError{StatusCode: http.StatusBadGateway, Status: "502 upstream down"}
	assert.Equal(t, "signing service returned 502 upstream down", err.Error())
}
