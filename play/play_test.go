package play

import (
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"voxlate/tts"
)

func newTestPlayer(runCmd func(string) error) *Player {
	p := NewPlayer(log.New(io.Discard))
	p.runCmd = runCmd
	return p
}

func TestPlayDispatchesDetached(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	p := newTestPlayer(func(path string) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	})

	p.Play(&tts.Artifact{Path: "/tmp/x.mp3", Format: "mp3"})

	// Play must return before playback completes.
	<-started
	close(release)
	p.Drain()

	if calls.Load() != 1 {
		t.Errorf("playback ran %d times, want 1", calls.Load())
	}
}

func TestPlayNilArtifactIsNoop(t *testing.T) {
	var calls atomic.Int32
	p := newTestPlayer(func(string) error {
		calls.Add(1)
		return nil
	})

	p.Play(nil)
	p.Drain()

	if calls.Load() != 0 {
		t.Errorf("playback ran %d times for nil artifact, want 0", calls.Load())
	}
}

func TestPlayFailureDoesNotPropagate(t *testing.T) {
	p := newTestPlayer(func(string) error {
		return errors.New("no audio device")
	})

	p.Play(&tts.Artifact{Path: "/tmp/x.mp3", Format: "mp3"})
	p.Drain() // must not panic or deadlock
}
