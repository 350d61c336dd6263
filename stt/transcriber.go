// Package stt converts audio samples to text through a selectable backend.
package stt

import (
	"context"
	"errors"
	"fmt"

	"voxlate/audio"
)

// ErrBackendUnavailable means the chosen backend's engine or model is not
// installed. Callers degrade the step to empty results with a warning.
var ErrBackendUnavailable = errors.New("stt: backend unavailable")

// Transcript is the result of one transcription. Empty Text is a valid
// outcome (nothing recognized), not an error. Language is the
// backend-reported source language when the backend provides one.
type Transcript struct {
	Text     string
	Language string
}

type Transcriber interface {
	Transcribe(ctx context.Context, sample audio.Sample) (Transcript, error)
}

// Kind selects a transcription backend.
type Kind string

const (
	KindOpenAI     Kind = "openai"
	KindDeepgram   Kind = "deepgram"
	KindWhisperCPP Kind = "whispercpp"
)

// Config carries the credentials and paths the backends need.
type Config struct {
	OpenAIKey    string
	DeepgramKey  string
	WhisperBin   string // whisper-cli executable, resolved from PATH when empty
	WhisperModel string // ggml model file for the local backend
}

// New builds the transcriber for the requested kind.
func New(kind Kind, cfg Config) (Transcriber, error) {
	switch kind {
	case KindOpenAI, "":
		return NewOpenAITranscriber(cfg.OpenAIKey), nil
	case KindDeepgram:
		return NewDeepgramTranscriber(cfg.DeepgramKey), nil
	case KindWhisperCPP:
		return NewWhisperCPPTranscriber(cfg.WhisperBin, cfg.WhisperModel)
	default:
		return nil, fmt.Errorf("stt: unknown backend %q (supported: openai, deepgram, whispercpp)", kind)
	}
}

// Disabled replaces a backend that failed to initialize; it recognizes
// nothing so the pipeline keeps running without transcription.
type Disabled struct{}

func (Disabled) Transcribe(context.Context, audio.Sample) (Transcript, error) {
	return Transcript{}, nil
}
