// Package core provides the shared types and sentinel errors for artisign.
//
// This package exists to break import cycles between the root artisign package
// and internal implementation packages. The artisign package re-exports the
// public types from this package, so external users should import artisign
// directly, not artisign/core.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"
)

// Sentinel errors for common failure conditions.
var (
	// ErrInconsistent indicates an alternate artifact shares a name and suffix
	// with the source but has different content.
	ErrInconsistent = errors.New("artisign: content inconsistency")

	// ErrSigningFailed indicates the signing service rejected the upload or
	// could not be reached.
	ErrSigningFailed = errors.New("artisign: signing failed")

	// ErrUnauthorized indicates the signing service refused the credentials.
	ErrUnauthorized = errors.New("artisign: unauthorized")

	// ErrAmbiguousSuffix indicates the configured suffix table is invalid.
	ErrAmbiguousSuffix = errors.New("artisign: ambiguous suffix configuration")

	// ErrUnknownAlgorithm indicates an unsupported checksum algorithm.
	ErrUnknownAlgorithm = errors.New("artisign: unknown checksum algorithm")

	// ErrNoEndpoint indicates signing was required but no endpoint is configured.
	ErrNoEndpoint = errors.New("artisign: no signing endpoint configured")
)

// Suffix is an optional classifier plus a file extension that identifies
// the shape of an artifact independent of its version.
type Suffix struct {
	// Classifier distinguishes variants such as "sources" or "javadoc".
	// Empty means no classifier.
	Classifier string `mapstructure:"classifier" yaml:"classifier,omitempty"`
	// Extension is the file extension without the leading dot.
	Extension string `mapstructure:"extension" yaml:"extension"`
}

// Pattern returns the filename ending this suffix matches:
// ".ext" without a classifier, "-classifier.ext" with one.
func (s Suffix) Pattern() string {
	if s.Classifier == "" {
		return "." + s.Extension
	}
	return "-" + s.Classifier + "." + s.Extension
}

// String implements fmt.Stringer.
func (s Suffix) String() string { return s.Pattern() }

// Checksummer computes a content digest for a file.
// Implemented by internal/checksum.
type Checksummer interface {
	// Checksum returns the digest of the file's bytes.
	Checksum(path string) (digest.Digest, error)
}

// Transfer describes the bytes moved by one signing request.
type Transfer struct {
	// Uploaded is the number of request body bytes sent.
	Uploaded int64
	// Downloaded is the number of response bytes written to the target.
	Downloaded int64
}

// RemoteSigner uploads an artifact to the signing service and writes the
// signed bytes to target.
// Implemented by internal/remote.
type RemoteSigner interface {
	Sign(ctx context.Context, source, target string) (Transfer, error)
}

// InconsistencyError reports alternates that match a source artifact by name
// and suffix but not by content.
type InconsistencyError struct {
	// Source is the artifact being processed.
	Source string
	// Candidates are the alternates with the same base name and suffix.
	Candidates []string
}

// Error implements error.
func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s matches %s by name, but their content is not equal",
		e.Source, strings.Join(e.Candidates, ", "))
}

// Is reports whether target is ErrInconsistent.
func (e *InconsistencyError) Is(target error) bool {
	return target == ErrInconsistent
}
