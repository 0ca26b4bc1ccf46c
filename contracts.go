package artisign

import "github.com/meigma/artisign/internal/reuse"

type matcher interface {
	Find(source, altSourceDir, altTargetDir string) (reuse.Match, error)
}
