// Package tts turns translated text into playable audio artifacts through a
// selectable backend.
package tts

import (
	"context"
	"errors"
	"fmt"
)

// ErrBackendUnavailable means the chosen engine is not installed. Callers
// degrade the step to a no-op with a warning.
var ErrBackendUnavailable = errors.New("tts: backend unavailable")

// Artifact is one synthesized audio file. It lives in the scratch directory
// until playback completes or the caller persists it; it is never reused
// across cycles.
type Artifact struct {
	Path   string
	Format string
}

// Synthesizer converts text to an audio artifact. Empty input returns a nil
// artifact and no error, without touching the backend.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) (*Artifact, error)
}

// Kind selects a synthesis backend.
type Kind string

const (
	KindGTranslate Kind = "gtranslate"
	KindElevenLabs Kind = "elevenlabs"
	KindESpeak     Kind = "espeak"
)

// Config carries backend credentials and the scratch directory artifacts are
// written into.
type Config struct {
	ScratchDir      string
	ElevenLabsKey   string
	ElevenLabsVoice string
}

// New builds the synthesizer for the requested kind.
func New(kind Kind, cfg Config) (Synthesizer, error) {
	switch kind {
	case KindGTranslate, "":
		return NewGTranslateSynthesizer(cfg.ScratchDir), nil
	case KindElevenLabs:
		return NewElevenLabsSynthesizer(cfg.ElevenLabsKey, cfg.ElevenLabsVoice, cfg.ScratchDir), nil
	case KindESpeak:
		return NewESpeakSynthesizer(cfg.ScratchDir)
	default:
		return nil, fmt.Errorf("tts: unknown backend %q (supported: gtranslate, elevenlabs, espeak)", kind)
	}
}

// Disabled replaces a backend that failed to initialize; it produces no
// artifacts so the pipeline keeps running without synthesis.
type Disabled struct{}

func (Disabled) Synthesize(context.Context, string, string) (*Artifact, error) {
	return nil, nil
}
