// Package session drives the live streaming translation loop.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"voxlate/audio"
	"voxlate/pipeline"
	"voxlate/store"
	"voxlate/tts"
)

// Token is the cooperative cancellation handle for one loop run. The loop
// checks it at the top of each cycle, so cancellation latency is bounded by
// one full cycle, not instantaneous.
type Token struct {
	cancelled atomic.Bool
}

func (t *Token) Cancel() {
	t.cancelled.Store(true)
}

func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}

// Processor runs one sample through the step chain. Satisfied by
// pipeline.Pipeline.
type Processor interface {
	Process(ctx context.Context, sample audio.Sample) pipeline.Result
	Record(mode string, res pipeline.Result)
	Config() pipeline.Config
}

// Sink dispatches playback without blocking. Satisfied by play.Player.
type Sink interface {
	Play(artifact *tts.Artifact)
}

// Live is the capture loop state machine: Idle -> Running -> Idle. At most
// one loop runs at a time; the run state and token are the only fields
// shared with the loop goroutine.
type Live struct {
	logger  *log.Logger
	source  audio.ChunkSource
	pipe    Processor
	player  Sink
	workDir string

	mu      sync.Mutex
	running bool
	token   *Token
	done    chan struct{}
}

func NewLive(logger *log.Logger, source audio.ChunkSource, pipe Processor, player Sink, workDir string) *Live {
	return &Live{
		logger:  logger,
		source:  source,
		pipe:    pipe,
		player:  player,
		workDir: workDir,
	}
}

// Start spawns the background loop. Starting while already running warns
// and leaves the existing loop untouched.
func (s *Live) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("live session already running")
		return
	}
	s.running = true
	s.token = &Token{}
	s.done = make(chan struct{})
	token, done := s.token, s.done
	s.mu.Unlock()

	go s.loop(token, done)
}

// Stop requests cancellation. The in-flight cycle, if any, completes; no
// new cycle begins afterwards. Stop does not block; use Wait for that.
func (s *Live) Stop() {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token != nil {
		token.Cancel()
	}
}

// Wait blocks until the loop has fully exited. Safe to call when idle.
func (s *Live) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Live) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Live) loop(token *Token, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()

	ctx := context.Background()
	cfg := s.pipe.Config()
	chunk := time.Duration(cfg.ChunkSeconds) * time.Second
	pause := time.Duration(cfg.PauseSeconds) * time.Second

	for !token.Cancelled() {
		sample, err := s.source.Capture(ctx, chunk)
		if err != nil {
			if errors.Is(err, audio.ErrDeviceUnavailable) {
				s.logger.Error("capture device unavailable, ending live session", "error", err)
				return
			}
			s.logger.Warn("capture failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		res := s.pipe.Process(ctx, sample)
		if res.Err != nil {
			// A bad cycle never ends the session; back off and go again.
			s.logger.Warn("cycle failed", "error", res.Err)
			time.Sleep(time.Second)
			continue
		}

		if res.Source == "" {
			time.Sleep(pause)
			continue
		}

		s.logger.Info("heard", "lang", res.Detected, "text", res.Source)
		s.logger.Info("translated", "lang", cfg.Target, "text", res.Translated)

		if res.Artifact != nil {
			if cfg.Persist {
				// Persist before dispatching playback so the rename cannot
				// race the player opening the file.
				dest, err := store.Persist(res.Artifact.Path, s.workDir, "live")
				if err != nil {
					s.logger.Warn("persist failed, audio left in scratch",
						"scratch", res.Artifact.Path, "error", err)
				} else {
					res.Artifact.Path = dest
				}
			}
			s.player.Play(res.Artifact)
		}

		s.pipe.Record("live", res)
		time.Sleep(pause)
	}
}
