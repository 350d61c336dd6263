// Package play renders synthesized artifacts to the speakers without
// blocking the pipeline.
package play

import (
	"fmt"
	"os/exec"
	"sync"

	"github.com/charmbracelet/log"

	"voxlate/tts"
)

// Player dispatches playback on detached goroutines so the live loop can
// start capturing the next chunk immediately. The session never waits on
// playback, but Drain allows a graceful shutdown.
type Player struct {
	logger *log.Logger
	wg     sync.WaitGroup
	runCmd func(path string) error
}

func NewPlayer(logger *log.Logger) *Player {
	return &Player{logger: logger, runCmd: playFile}
}

// Play starts playback of the artifact in the background. A nil artifact is
// ignored. Failures are logged with the artifact path so the user can fetch
// the file manually; they never propagate.
func (p *Player) Play(artifact *tts.Artifact) {
	if artifact == nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.runCmd(artifact.Path); err != nil {
			p.logger.Warn("playback failed, audio kept on disk", "path", artifact.Path, "error", err)
		}
	}()
}

// Drain blocks until all in-flight playback finishes.
func (p *Player) Drain() {
	p.wg.Wait()
}

func playFile(path string) error {
	ffplay, err := exec.LookPath("ffplay")
	if err != nil {
		return fmt.Errorf("ffplay not found in PATH: %w", err)
	}
	return exec.Command(ffplay, "-nodisp", "-autoexit", "-loglevel", "quiet", path).Run()
}
