package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/haguro/elevenlabs-go"

	"voxlate/etc"
)

const defaultElevenLabsVoice = "XB0fDUnXU5powFXDhCwa"

// ElevenLabsSynthesizer is an alternate network backend producing mp3.
type ElevenLabsSynthesizer struct {
	apiKey  string
	voiceID string
	scratch string
}

func NewElevenLabsSynthesizer(apiKey, voiceID, scratch string) *ElevenLabsSynthesizer {
	if voiceID == "" {
		voiceID = defaultElevenLabsVoice
	}
	return &ElevenLabsSynthesizer{apiKey: apiKey, voiceID: voiceID, scratch: scratch}
}

func (e *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text, _ string) (*Artifact, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	client := elevenlabs.NewClient(ctx, e.apiKey, 30*time.Second)
	ttsReq := elevenlabs.TextToSpeechRequest{
		Text:    text,
		ModelID: "eleven_turbo_v2_5",
	}

	data, err := client.TextToSpeech(e.voiceID, ttsReq)
	if err != nil {
		return nil, fmt.Errorf("failed to generate speech: %w", err)
	}

	path := filepath.Join(e.scratch, "tts_"+etc.NewFreshID()+".mp3")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write speech file: %w", err)
	}
	return &Artifact{Path: path, Format: "mp3"}, nil
}
