package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voxlate/audio"
)

const deepgramEndpoint = "https://api.deepgram.com/v1/listen"

var deepgramContentTypes = map[string]string{
	"wav":  "audio/wav",
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
	"ogg":  "audio/ogg",
	"flac": "audio/flac",
}

// DeepgramTranscriber is the alternate network backend, speaking to the
// prerecorded REST endpoint.
type DeepgramTranscriber struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewDeepgramTranscriber(apiKey string) *DeepgramTranscriber {
	return &DeepgramTranscriber{
		apiKey:   apiKey,
		endpoint: deepgramEndpoint,
		client:   &http.Client{Timeout: 20 * time.Second},
	}
}

func (t *DeepgramTranscriber) Transcribe(ctx context.Context, sample audio.Sample) (Transcript, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.endpoint+"?model=nova-2&smart_format=true&detect_language=true",
		bytes.NewReader(sample.Data),
	)
	if err != nil {
		return Transcript{}, err
	}

	contentType := deepgramContentTypes[sample.Ext]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Authorization", "Token "+t.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := t.client.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Transcript{}, fmt.Errorf("deepgram error: %s", body)
	}

	var parsed struct {
		Results struct {
			Channels []struct {
				DetectedLanguage string `json:"detected_language"`
				Alternatives     []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Transcript{}, fmt.Errorf("decode deepgram: %w", err)
	}

	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		// Nothing recognized; a valid empty outcome.
		return Transcript{}, nil
	}

	channel := parsed.Results.Channels[0]
	return Transcript{
		Text:     strings.TrimSpace(channel.Alternatives[0].Transcript),
		Language: channel.DetectedLanguage,
	}, nil
}
