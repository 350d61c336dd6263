package stt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"voxlate/audio"
	"voxlate/etc"
)

// WhisperCPPTranscriber is the local backend: it shells out to the
// whisper.cpp CLI so no network is needed once a model is downloaded.
type WhisperCPPTranscriber struct {
	bin   string
	model string
}

func NewWhisperCPPTranscriber(bin, model string) (*WhisperCPPTranscriber, error) {
	if bin == "" {
		bin = "whisper-cli"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH", ErrBackendUnavailable, bin)
	}
	if model != "" {
		if _, err := os.Stat(model); err != nil {
			return nil, fmt.Errorf("%w: model file %s: %v", ErrBackendUnavailable, model, err)
		}
	}
	return &WhisperCPPTranscriber{bin: path, model: model}, nil
}

func (t *WhisperCPPTranscriber) Transcribe(ctx context.Context, sample audio.Sample) (Transcript, error) {
	in := filepath.Join(os.TempDir(), "whisper_"+etc.NewFreshID()+"."+sample.Ext)
	if err := os.WriteFile(in, sample.Data, 0o600); err != nil {
		return Transcript{}, fmt.Errorf("stage chunk for whisper: %w", err)
	}
	defer os.Remove(in)

	args := []string{"-f", in, "--no-prints", "--no-timestamps"}
	if t.model != "" {
		args = append([]string{"-m", t.model}, args...)
	}

	out, err := exec.CommandContext(ctx, t.bin, args...).Output()
	if err != nil {
		return Transcript{}, fmt.Errorf("whisper-cli: %w", err)
	}
	return Transcript{Text: strings.TrimSpace(string(out))}, nil
}
