// Package reuse finds previously signed artifacts whose source content is
// identical to a file about to be signed.
package reuse

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meigma/artisign/core"
	"github.com/meigma/artisign/internal/fileio"
	"github.com/meigma/artisign/internal/naming"
)

// Kind classifies the result of a lookup.
type Kind int

const (
	// KindNone means nothing can be reused and the source must be signed.
	KindNone Kind = iota
	// KindReusable means a signed counterpart with equal source content exists.
	KindReusable
	// KindInconsistent means alternates match by name but none by content.
	KindInconsistent
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindReusable:
		return "reusable"
	case KindInconsistent:
		return "inconsistent"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Match is the outcome of Matcher.Find.
type Match struct {
	Kind Kind
	// Reusable is the signed artifact in the alternate target directory.
	// Set only for KindReusable.
	Reusable string
	// Equal is the alternate source whose content equals the source.
	// May be set for KindNone when no signed counterpart exists.
	Equal string
	// Candidates are the alternates sharing base name and suffix with the
	// source, in directory listing order.
	Candidates []string
}

// Err returns an *core.InconsistencyError for KindInconsistent, nil otherwise.
func (m Match) Err(source string) error {
	if m.Kind != KindInconsistent {
		return nil
	}
	return &core.InconsistencyError{Source: source, Candidates: m.Candidates}
}

// Matcher looks up reusable artifacts by base name, suffix and checksum.
type Matcher struct {
	suffixes *naming.SuffixSet
	sums     core.Checksummer
	logger   *slog.Logger
}

// NewMatcher creates a Matcher. A nil logger disables logging.
func NewMatcher(suffixes *naming.SuffixSet, sums core.Checksummer, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Matcher{
		suffixes: suffixes,
		sums:     sums,
		logger:   logger,
	}
}

// Find looks for a signed artifact that can stand in for source.
//
// Files with no configured suffix are never reuse candidates. Candidates
// are regular files directly inside altSourceDir with the same base name
// and suffix as source; the first whose checksum equals the source's is
// the equal alternate. A missing altSourceDir yields no candidates.
// If altTargetDir holds a file of that name, it is
// returned as reusable.
func (m *Matcher) Find(source, altSourceDir, altTargetDir string) (Match, error) {
	name := filepath.Base(source)
	suffix, ok := m.suffixes.Match(name)
	if !ok {
		m.logger.Debug("no configured suffix, not a reuse candidate", "file", name)
		return Match{Kind: KindNone}, nil
	}
	base := naming.BaseArtifactName(name)

	candidates, err := m.candidates(altSourceDir, base, suffix)
	if err != nil {
		return Match{}, err
	}
	if len(candidates) == 0 {
		return Match{Kind: KindNone}, nil
	}

	sourceSum, err := m.sums.Checksum(source)
	if err != nil {
		return Match{}, err
	}

	equal := ""
	for _, candidate := range candidates {
		sum, err := m.sums.Checksum(candidate)
		if err != nil {
			return Match{}, err
		}
		if sum == sourceSum {
			equal = candidate
			break
		}
	}
	if equal == "" {
		return Match{Kind: KindInconsistent, Candidates: candidates}, nil
	}

	result := Match{Kind: KindNone, Equal: equal, Candidates: candidates}
	if altTargetDir == "" {
		return result, nil
	}
	signed := filepath.Join(altTargetDir, filepath.Base(equal))
	if !fileio.IsRegular(signed) {
		m.logger.Debug("equal alternate has no signed counterpart", "alternate", equal, "expected", signed)
		return result, nil
	}
	result.Kind = KindReusable
	result.Reusable = signed
	return result, nil
}

// candidates lists regular files in dir with the given base name and suffix.
func (m *Matcher) candidates(dir, base string, suffix core.Suffix) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		m.logger.Debug("alternate directory does not exist", "dir", dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list alternate directory %s: %w", dir, err)
	}

	var out []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if naming.BaseArtifactName(name) != base {
			continue
		}
		if s, ok := m.suffixes.Match(name); !ok || s != suffix {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}
