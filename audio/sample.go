// Package audio acquires pipeline input: fixed-duration microphone chunks,
// audio files, and zip archives of audio files.
package audio

import (
	"context"
	"errors"
	"time"
)

// ErrDeviceUnavailable means the capture device is missing or inaccessible.
// It is fatal to the session attempting capture; all other capture errors
// are retryable.
var ErrDeviceUnavailable = errors.New("audio: capture device unavailable")

// Sample is one unit of pipeline input: encoded audio bytes plus the format
// metadata the transcription backends need. A sample is owned by whichever
// step is currently processing it and is never reused across cycles.
type Sample struct {
	Data       []byte
	Ext        string // container extension without the dot, e.g. "wav"
	SampleRate int
	Channels   int
}

// ChunkSource produces one audio sample per call. The microphone
// implementation blocks for the requested duration; file-backed sources
// return immediately.
type ChunkSource interface {
	Capture(ctx context.Context, duration time.Duration) (Sample, error)
}
