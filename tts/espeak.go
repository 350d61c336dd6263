package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"voxlate/etc"
)

// ESpeakSynthesizer is the offline backend: espeak writes an intermediate
// wav, ffmpeg transcodes it to the mp3 the rest of the pipeline expects.
type ESpeakSynthesizer struct {
	espeak  string
	ffmpeg  string
	scratch string
}

func NewESpeakSynthesizer(scratch string) (*ESpeakSynthesizer, error) {
	espeak, err := exec.LookPath("espeak")
	if err != nil {
		return nil, fmt.Errorf("%w: espeak not found in PATH", ErrBackendUnavailable)
	}
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg not found in PATH", ErrBackendUnavailable)
	}
	return &ESpeakSynthesizer{espeak: espeak, ffmpeg: ffmpeg, scratch: scratch}, nil
}

func (e *ESpeakSynthesizer) Synthesize(ctx context.Context, text, lang string) (*Artifact, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	base := filepath.Join(e.scratch, "tts_"+etc.NewFreshID())
	wavPath := base + ".wav"
	mp3Path := base + ".mp3"

	// espeak voices take the bare ISO code; strip any region suffix.
	voice := lang
	if i := strings.IndexByte(voice, '-'); i > 0 {
		voice = voice[:i]
	}

	if out, err := exec.CommandContext(ctx, e.espeak, "-v", voice, "-w", wavPath, text).CombinedOutput(); err != nil {
		return nil, fmt.Errorf("espeak: %w: %s", err, out)
	}
	defer os.Remove(wavPath)

	if out, err := exec.CommandContext(ctx, e.ffmpeg,
		"-y",
		"-i", wavPath,
		"-codec:a", "libmp3lame",
		"-qscale:a", "4",
		mp3Path,
	).CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg transcode: %w: %s", err, out)
	}

	return &Artifact{Path: mp3Path, Format: "mp3"}, nil
}
