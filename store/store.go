// Package store manages artifact scratch space, persistence into the
// working directory, and the utterance history database.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"voxlate/etc"
)

// Scratch is the per-run temp directory synthesis artifacts are written
// into. Everything left in it is discarded on Close.
type Scratch struct {
	dir string
}

func NewScratch() (*Scratch, error) {
	dir, err := os.MkdirTemp("", "voxlate-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Scratch{dir: dir}, nil
}

func (s *Scratch) Dir() string {
	return s.dir
}

func (s *Scratch) Close() error {
	return os.RemoveAll(s.dir)
}

// Persist moves an artifact out of scratch into destDir under a
// timestamp-derived name (`<mode>_<epoch>.mp3`). When two artifacts land in
// the same second the name gets a numeric suffix instead of overwriting the
// earlier one. Returns the final path.
func Persist(artifactPath, destDir, mode string) (string, error) {
	name := etc.ArtifactName(mode, time.Now())
	dest := filepath.Join(destDir, name)

	for n := 2; ; n++ {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			break
		}
		ext := filepath.Ext(name)
		dest = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", name[:len(name)-len(ext)], n, ext))
	}

	if err := os.Rename(artifactPath, dest); err != nil {
		return "", fmt.Errorf("persist artifact: %w", err)
	}
	return dest, nil
}
