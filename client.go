package artisign

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/meigma/artisign/internal/checksum"
	"github.com/meigma/artisign/internal/fileio"
	"github.com/meigma/artisign/internal/naming"
	"github.com/meigma/artisign/internal/remote"
	"github.com/meigma/artisign/internal/reuse"
)

// Client signs artifacts, reusing previously signed ones when their source
// content is unchanged.
type Client struct {
	matcher matcher
	signer  RemoteSigner
	logger  *slog.Logger

	suffixes    []Suffix
	algorithm   string
	skipSigning bool

	// configuration passed to the remote signer
	endpoint   string
	httpClient *http.Client
	userAgent  string
	username   string
	password   string
	token      string
}

// RunConfig parameterizes one signing run.
type RunConfig struct {
	// OutputDir receives one file per input, named like the input.
	OutputDir string
	// AlternateSourceDir holds unsigned artifacts of a previous build.
	// Reuse is disabled when empty.
	AlternateSourceDir string
	// AlternateTargetDir holds the signed counterparts of AlternateSourceDir.
	AlternateTargetDir string
	// FailOnInconsistency aborts the run when an alternate matches a source
	// by name but not by content. Otherwise a warning is logged and the
	// source is signed.
	FailOnInconsistency bool
}

// NewClient creates a new artisign client.
//
// Unless signing is skipped, a signing endpoint (WithEndpoint) or a custom
// signer (WithRemoteSigner) is required.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	suffixes, err := naming.NewSuffixSet(c.suffixes...)
	if err != nil {
		return nil, fmt.Errorf("suffix configuration: %w", err)
	}
	sums, err := checksum.New(c.algorithm)
	if err != nil {
		return nil, err
	}
	c.matcher = reuse.NewMatcher(suffixes, sums, c.logger)

	// Wire up the default remote signer
	if c.signer == nil && !c.skipSigning {
		remoteOpts := []remote.Option{
			remote.WithLogger(c.logger),
			remote.WithUserAgent(c.userAgent),
		}
		if c.httpClient != nil {
			remoteOpts = append(remoteOpts, remote.WithHTTPClient(c.httpClient))
		}
		if c.username != "" || c.password != "" {
			remoteOpts = append(remoteOpts, remote.WithBasicAuth(c.username, c.password))
		}
		if c.token != "" {
			remoteOpts = append(remoteOpts, remote.WithBearerToken(c.token))
		}
		signer, err := remote.New(c.endpoint, remoteOpts...)
		if err != nil {
			return nil, fmt.Errorf("create signing client: %w", err)
		}
		c.signer = signer
	}

	return c, nil
}

// Run processes sources in order. Each source ends up as exactly one file
// in cfg.OutputDir: copied when signing is skipped, copied from a reusable
// signed artifact, or signed by the remote service.
//
// Sources must have distinct file names. The first fatal error aborts the
// run. The returned report holds the outcomes of the sources processed
// before it.
func (c *Client) Run(ctx context.Context, cfg RunConfig, sources []string) (*Report, error) {
	if cfg.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}
	if cfg.AlternateTargetDir != "" && cfg.AlternateSourceDir == "" {
		c.logger.Warn("alternate target directory ignored without an alternate source directory",
			"dir", cfg.AlternateTargetDir)
	}
	if cfg.AlternateSourceDir != "" {
		if _, err := os.Stat(cfg.AlternateSourceDir); errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("alternate source directory does not exist, nothing will be reused",
				"dir", cfg.AlternateSourceDir)
		}
	}
	if err := checkTargetNames(sources); err != nil {
		return nil, err
	}

	report := &Report{}
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome, err := c.process(ctx, cfg, source)
		if err != nil {
			return report, err
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report, nil
}

// checkTargetNames rejects sources that would be written to the same
// output file.
func checkTargetNames(sources []string) error {
	seen := make(map[string]string, len(sources))
	for _, source := range sources {
		name := filepath.Base(source)
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("%s and %s would both be written as %s", prev, source, name)
		}
		seen[name] = source
	}
	return nil
}

// process handles one source file.
func (c *Client) process(ctx context.Context, cfg RunConfig, source string) (Outcome, error) {
	name := filepath.Base(source)
	target := filepath.Join(cfg.OutputDir, name)
	outcome := Outcome{Source: source, Target: target}

	if err := fileio.EnsureDir(filepath.Dir(target)); err != nil {
		return outcome, err
	}

	if c.skipSigning {
		n, err := fileio.CopyFile(source, target)
		if err != nil {
			return outcome, err
		}
		c.logger.Info("signing skipped", "file", name)
		outcome.Action = ActionCopied
		outcome.Bytes = n
		return outcome, nil
	}

	if cfg.AlternateSourceDir != "" {
		m, err := c.matcher.Find(source, cfg.AlternateSourceDir, cfg.AlternateTargetDir)
		if err != nil {
			return outcome, err
		}
		switch m.Kind {
		case reuse.KindInconsistent:
			incErr := m.Err(source)
			if cfg.FailOnInconsistency {
				return outcome, incErr
			}
			c.logger.Warn("content inconsistency, signing again", "file", name, "error", incErr)
		case reuse.KindReusable:
			n, err := fileio.CopyFile(m.Reusable, target)
			if err != nil {
				return outcome, err
			}
			c.logger.Info("reusing signed artifact", "file", name, "from", m.Reusable)
			outcome.Action = ActionReused
			outcome.ReusedFrom = m.Reusable
			outcome.Bytes = n
			return outcome, nil
		case reuse.KindNone:
			if m.Equal != "" {
				c.logger.Debug("unchanged artifact has no signed counterpart", "file", name, "alternate", m.Equal)
			}
		}
	}

	transfer, err := c.signer.Sign(ctx, source, target)
	if err != nil {
		return outcome, err
	}
	outcome.Action = ActionSigned
	outcome.Transfer = transfer
	outcome.Bytes = transfer.Downloaded
	return outcome, nil
}
