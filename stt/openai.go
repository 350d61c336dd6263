package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"voxlate/audio"
)

// OpenAITranscriber is the network default: the Whisper API.
type OpenAITranscriber struct {
	client *openai.Client
}

func NewOpenAITranscriber(apiKey string) *OpenAITranscriber {
	return &OpenAITranscriber{client: openai.NewClient(apiKey)}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, sample audio.Sample) (Transcript, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(sample.Data),
		FilePath: "chunk." + sample.Ext,
	})
	if err != nil {
		return Transcript{}, fmt.Errorf("whisper api: %w", err)
	}
	return Transcript{Text: strings.TrimSpace(resp.Text)}, nil
}
