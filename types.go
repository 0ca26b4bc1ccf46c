package artisign

import "github.com/meigma/artisign/core"

// Suffix is an optional classifier plus an extension, such as "-sources.jar".
// Re-exported from core package.
type Suffix = core.Suffix

// Transfer describes the bytes moved by one signing request.
// Re-exported from core package.
type Transfer = core.Transfer

// RemoteSigner uploads an artifact and writes its signed counterpart.
// Re-exported from core package.
type RemoteSigner = core.RemoteSigner
