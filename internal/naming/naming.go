// Package naming classifies artifact filenames by base name and suffix.
package naming

import (
	"fmt"
	"strings"

	"github.com/meigma/artisign/core"
)

// BaseArtifactName strips version, classifier and extension decoration
// from a filename. It cuts at the first '-' or '_', whichever comes first,
// falling back to the last '.'. A name with none of these is returned as is.
//
// Example: "mylib-1.2.3-sources.jar" -> "mylib", "mylib_1.0.pom" -> "mylib".
func BaseArtifactName(name string) string {
	if i := strings.IndexAny(name, "-_"); i >= 0 {
		return name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// SuffixSet is an ordered, validated table of known artifact suffixes.
type SuffixSet struct {
	suffixes []core.Suffix
}

// NewSuffixSet validates suffixes and returns a SuffixSet.
//
// Identical suffixes are kept once. Two patterns that both match a name
// with equal length are the same string, so distinct suffixes spelling the
// same pattern ("a.b:c" and "a:b.c") are rejected to rule out ties.
func NewSuffixSet(suffixes ...core.Suffix) (*SuffixSet, error) {
	seen := make(map[string]core.Suffix, len(suffixes))
	out := make([]core.Suffix, 0, len(suffixes))
	for _, s := range suffixes {
		s.Classifier = strings.TrimSpace(s.Classifier)
		s.Extension = strings.TrimPrefix(strings.TrimSpace(s.Extension), ".")
		if s.Extension == "" {
			return nil, fmt.Errorf("%w: suffix %q has no extension", core.ErrAmbiguousSuffix, s.Classifier)
		}
		p := s.Pattern()
		if prev, dup := seen[p]; dup {
			if prev == s {
				continue
			}
			return nil, fmt.Errorf("%w: %q and %q share pattern %q",
				core.ErrAmbiguousSuffix, prev.Classifier+":"+prev.Extension, s.Classifier+":"+s.Extension, p)
		}
		seen[p] = s
		out = append(out, s)
	}
	return &SuffixSet{suffixes: out}, nil
}

// MustSuffixSet is like NewSuffixSet but panics on an invalid table.
// Intended for tests and package-level tables.
func MustSuffixSet(suffixes ...core.Suffix) *SuffixSet {
	set, err := NewSuffixSet(suffixes...)
	if err != nil {
		panic(err)
	}
	return set
}

// Suffixes returns a copy of the configured suffixes in order.
func (s *SuffixSet) Suffixes() []core.Suffix {
	if s == nil {
		return nil
	}
	return append([]core.Suffix(nil), s.suffixes...)
}

// Len returns the number of configured suffixes.
func (s *SuffixSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.suffixes)
}

// Match returns the longest configured suffix that name ends with.
// The second result is false when no suffix matches.
func (s *SuffixSet) Match(name string) (core.Suffix, bool) {
	var best core.Suffix
	bestLen := 0
	if s == nil {
		return best, false
	}
	for _, suffix := range s.suffixes {
		p := suffix.Pattern()
		if len(p) > bestLen && strings.HasSuffix(name, p) {
			best, bestLen = suffix, len(p)
		}
	}
	return best, bestLen > 0
}

// ParseSuffix parses the notations accepted on the command line:
// "classifier:ext", "ext", "-classifier.ext" and ".ext".
func ParseSuffix(v string) (core.Suffix, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return core.Suffix{}, fmt.Errorf("%w: empty suffix", core.ErrAmbiguousSuffix)
	}

	var s core.Suffix
	switch {
	case strings.Contains(v, ":"):
		s.Classifier, s.Extension, _ = strings.Cut(v, ":")
	case strings.HasPrefix(v, "-"):
		classifier, ext, ok := strings.Cut(v[1:], ".")
		if !ok {
			return core.Suffix{}, fmt.Errorf("%w: %q has no extension", core.ErrAmbiguousSuffix, v)
		}
		s.Classifier, s.Extension = classifier, ext
	default:
		s.Extension = strings.TrimPrefix(v, ".")
	}

	if s.Extension == "" {
		return core.Suffix{}, fmt.Errorf("%w: %q has no extension", core.ErrAmbiguousSuffix, v)
	}
	return s, nil
}
