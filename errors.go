package artisign

import "github.com/meigma/artisign/core"

// Sentinel errors for common failure conditions.
// Re-exported from core package.
var (
	// ErrInconsistent indicates an alternate artifact matches a source by
	// name and suffix but has different content.
	ErrInconsistent = core.ErrInconsistent

	// ErrSigningFailed indicates the signing service rejected the upload or
	// could not be reached.
	ErrSigningFailed = core.ErrSigningFailed

	// ErrUnauthorized indicates the signing service refused the credentials.
	ErrUnauthorized = core.ErrUnauthorized

	// ErrAmbiguousSuffix indicates the configured suffix table is invalid.
	ErrAmbiguousSuffix = core.ErrAmbiguousSuffix

	// ErrUnknownAlgorithm indicates an unsupported checksum algorithm.
	ErrUnknownAlgorithm = core.ErrUnknownAlgorithm

	// ErrNoEndpoint indicates signing was required but no endpoint is configured.
	ErrNoEndpoint = core.ErrNoEndpoint
)

// InconsistencyError reports alternates that match a source by name but
// not by content. Re-exported from core package.
type InconsistencyError = core.InconsistencyError
