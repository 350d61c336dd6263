package stt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"voxlate/audio"
)

func TestNewDispatch(t *testing.T) {
	if _, err := New(KindOpenAI, Config{OpenAIKey: "k"}); err != nil {
		t.Errorf("openai: %v", err)
	}
	if _, err := New("", Config{OpenAIKey: "k"}); err != nil {
		t.Errorf("default kind: %v", err)
	}
	if _, err := New(KindDeepgram, Config{DeepgramKey: "k"}); err != nil {
		t.Errorf("deepgram: %v", err)
	}
	if _, err := New("bogus", Config{}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestDeepgramTranscribe(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"results":{"channels":[{"detected_language":"en","alternatives":[{"transcript":" hello world "}]}]}}`))
	}))
	defer server.Close()

	tr := NewDeepgramTranscriber("secret")
	tr.endpoint = server.URL

	got, err := tr.Transcribe(context.Background(), audio.Sample{Data: []byte("pcm"), Ext: "wav"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got.Text != "hello world" {
		t.Errorf("Text = %q, want \"hello world\"", got.Text)
	}
	if got.Language != "en" {
		t.Errorf("Language = %q, want \"en\"", got.Language)
	}
	if gotAuth != "Token secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotContentType != "audio/wav" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
}

func TestDeepgramEmptyChannelsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"channels":[]}}`))
	}))
	defer server.Close()

	tr := NewDeepgramTranscriber("secret")
	tr.endpoint = server.URL

	got, err := tr.Transcribe(context.Background(), audio.Sample{Ext: "wav"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got.Text != "" {
		t.Errorf("Text = %q, want empty", got.Text)
	}
}

func TestDeepgramServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	tr := NewDeepgramTranscriber("secret")
	tr.endpoint = server.URL

	if _, err := tr.Transcribe(context.Background(), audio.Sample{Ext: "wav"}); err == nil {
		t.Error("expected error for 502 response")
	}
}

func TestWhisperCPPMissingBinary(t *testing.T) {
	_, err := NewWhisperCPPTranscriber("definitely-not-a-real-binary-name", "")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("error = %v, want ErrBackendUnavailable", err)
	}
}
