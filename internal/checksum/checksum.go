// Package checksum computes content digests used to compare artifacts.
package checksum

import (
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/zeebo/blake3"

	"github.com/meigma/artisign/core"
)

// BLAKE3 names the blake3 algorithm. go-digest does not register it, so
// digests are built with digest.NewDigest and never validated.
const BLAKE3 digest.Algorithm = "blake3"

// Compile-time interface implementation check.
var _ core.Checksummer = (*Provider)(nil)

// Provider computes file digests with a fixed algorithm.
type Provider struct {
	alg digest.Algorithm
}

// New returns a Provider for the named algorithm.
// An empty name selects sha256.
func New(name string) (*Provider, error) {
	alg := digest.Algorithm(strings.ToLower(strings.TrimSpace(name)))
	switch alg {
	case "":
		alg = digest.SHA256
	case digest.SHA256, digest.SHA512, BLAKE3:
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownAlgorithm, name)
	}
	return &Provider{alg: alg}, nil
}

// Algorithm returns the algorithm this provider uses.
func (p *Provider) Algorithm() digest.Algorithm {
	return p.alg
}

// Checksum returns the digest of the file at path.
func (p *Provider) Checksum(path string) (digest.Digest, error) {
	//nolint:gosec // G304: path is a build artifact chosen by the caller
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	defer f.Close()

	d, err := p.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	return d, nil
}

// FromReader digests everything read from r.
func (p *Provider) FromReader(r io.Reader) (digest.Digest, error) {
	if p.alg != BLAKE3 {
		return p.alg.FromReader(r)
	}
	var h hash.Hash = blake3.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return digest.NewDigest(BLAKE3, h), nil
}
