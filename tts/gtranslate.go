package tts

import (
	"context"
	"fmt"
	"strings"

	htgotts "github.com/hegedustibor/htgo-tts"

	"voxlate/etc"
)

// GTranslateSynthesizer is the network default. It uses the Google translate
// TTS endpoint and writes mp3 directly, no transcode step needed.
type GTranslateSynthesizer struct {
	scratch string
}

func NewGTranslateSynthesizer(scratch string) *GTranslateSynthesizer {
	return &GTranslateSynthesizer{scratch: scratch}
}

func (g *GTranslateSynthesizer) Synthesize(_ context.Context, text, lang string) (*Artifact, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	speech := htgotts.Speech{Folder: g.scratch, Language: lang}
	path, err := speech.CreateSpeechFile(text, "tts_"+etc.NewFreshID())
	if err != nil {
		return nil, fmt.Errorf("gtranslate tts: %w", err)
	}
	return &Artifact{Path: path, Format: "mp3"}, nil
}
