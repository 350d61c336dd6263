package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"voxlate/audio"
	"voxlate/stt"
	"voxlate/tts"
)

type fakeTranscriber struct {
	texts []string
	errs  []error
	calls int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ audio.Sample) (stt.Transcript, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var text string
	if i < len(f.texts) {
		text = f.texts[i]
	}
	if err != nil {
		return stt.Transcript{}, err
	}
	return stt.Transcript{Text: text}, nil
}

type fakeTranslator struct {
	out   string
	err   error
	calls int
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type fakeSynthesizer struct {
	artifact *tts.Artifact
	err      error
	calls    int
	lastText string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, lang string) (*tts.Artifact, error) {
	f.calls++
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.artifact, nil
}

type fakeDetector struct{ code string }

func (f fakeDetector) Detect(string) string { return f.code }

type fakeHistory struct {
	saved     []string
	artifacts []string
}

func (f *fakeHistory) Save(mode, source, detected, translated, artifact string) error {
	f.saved = append(f.saved, source)
	f.artifacts = append(f.artifacts, artifact)
	return nil
}

func newTestPipeline(tr *fakeTranscriber, mt *fakeTranslator, sy *fakeSynthesizer) *Pipeline {
	cfg := Config{Target: "es", AutoDetect: true, ChunkSeconds: 4}
	return New(cfg, log.New(io.Discard), tr, mt, sy, fakeDetector{code: "en"})
}

func TestProcessFullChain(t *testing.T) {
	tr := &fakeTranscriber{texts: []string{"hello"}}
	mt := &fakeTranslator{out: "hola"}
	sy := &fakeSynthesizer{artifact: &tts.Artifact{Path: "/tmp/out.mp3", Format: "mp3"}}

	res := newTestPipeline(tr, mt, sy).Process(context.Background(), audio.Sample{Ext: "wav"})

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Source != "hello" || res.Detected != "en" || res.Translated != "hola" {
		t.Errorf("result = %+v", res)
	}
	if res.Artifact == nil || res.Artifact.Path != "/tmp/out.mp3" {
		t.Errorf("artifact = %+v", res.Artifact)
	}
	if sy.lastText != "hola" {
		t.Errorf("synthesizer received %q, want \"hola\"", sy.lastText)
	}
}

func TestProcessSilenceSkipsDownstreamSteps(t *testing.T) {
	tr := &fakeTranscriber{texts: []string{""}}
	mt := &fakeTranslator{out: "should not be used"}
	sy := &fakeSynthesizer{}

	res := newTestPipeline(tr, mt, sy).Process(context.Background(), audio.Sample{Ext: "wav"})

	if res.Err != nil {
		t.Fatalf("silence produced error: %v", res.Err)
	}
	if res.Source != "" || res.Translated != "" {
		t.Errorf("result = %+v, want empty fields", res)
	}
	if mt.calls != 0 {
		t.Errorf("translator called %d times for silence, want 0", mt.calls)
	}
	if sy.calls != 0 {
		t.Errorf("synthesizer called %d times for silence, want 0", sy.calls)
	}
}

func TestProcessTranslationFailureSkipsSynthesis(t *testing.T) {
	tr := &fakeTranscriber{texts: []string{"hello"}}
	mt := &fakeTranslator{err: errors.New("backend down")}
	sy := &fakeSynthesizer{}

	res := newTestPipeline(tr, mt, sy).Process(context.Background(), audio.Sample{Ext: "wav"})

	if res.Err != nil {
		t.Fatalf("translation failure must degrade, got error: %v", res.Err)
	}
	if res.Translated != "" {
		t.Errorf("Translated = %q, want empty", res.Translated)
	}
	if sy.calls != 0 {
		t.Errorf("empty text reached the synthesis backend (%d calls)", sy.calls)
	}
}

func TestProcessSynthesisFailureDegrades(t *testing.T) {
	tr := &fakeTranscriber{texts: []string{"hello"}}
	mt := &fakeTranslator{out: "hola"}
	sy := &fakeSynthesizer{err: errors.New("engine crashed")}

	res := newTestPipeline(tr, mt, sy).Process(context.Background(), audio.Sample{Ext: "wav"})

	if res.Err != nil {
		t.Fatalf("synthesis failure must degrade, got error: %v", res.Err)
	}
	if res.Artifact != nil {
		t.Errorf("artifact = %+v, want nil", res.Artifact)
	}
	if res.Translated != "hola" {
		t.Errorf("Translated = %q, want \"hola\"", res.Translated)
	}
}

func TestBatchIsolatesPerItemFailures(t *testing.T) {
	tr := &fakeTranscriber{
		texts: []string{"one", "", "three"},
		errs:  []error{nil, errors.New("stt blew up"), nil},
	}
	mt := &fakeTranslator{out: "translated"}
	sy := &fakeSynthesizer{artifact: &tts.Artifact{Path: "/tmp/x.mp3"}}

	inputs := []Input{
		{Name: "a.wav"},
		{Name: "b.wav"},
		{Name: "c.wav"},
	}
	results := NewBatchRunner(newTestPipeline(tr, mt, sy)).Run(context.Background(), inputs)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Err != nil || results[0].Source != "one" {
		t.Errorf("item 0 = %+v", results[0])
	}
	if results[1].Err == nil {
		t.Error("item 1 should carry the transcription error")
	}
	if results[1].Name != "b.wav" {
		t.Errorf("item 1 name = %q", results[1].Name)
	}
	if results[2].Err != nil || results[2].Source != "three" {
		t.Errorf("item 2 = %+v; failure of item 1 must not affect it", results[2])
	}
}

func TestProcessTranscriptionFailureReportsOnlyThroughResult(t *testing.T) {
	var buf bytes.Buffer
	tr := &fakeTranscriber{errs: []error{errors.New("stt down")}}
	cfg := Config{Target: "es"}
	p := New(cfg, log.New(&buf), tr, &fakeTranslator{}, &fakeSynthesizer{}, nil)

	res := p.Process(context.Background(), audio.Sample{Ext: "wav"})

	if res.Err == nil {
		t.Fatal("transcription failure must set Result.Err")
	}
	if buf.Len() != 0 {
		t.Errorf("step logged %q; reporting Result.Err is the caller's job", buf.String())
	}
}

func TestBatchPersistsArtifactsBeforeRecording(t *testing.T) {
	tr := &fakeTranscriber{texts: []string{"hello"}}
	mt := &fakeTranslator{out: "hola"}
	sy := &fakeSynthesizer{artifact: &tts.Artifact{Path: "/scratch/a.mp3", Format: "mp3"}}

	h := &fakeHistory{}
	pipe := newTestPipeline(tr, mt, sy).WithHistory(h)

	runner := NewBatchRunner(pipe).WithPersist(func(string) (string, error) {
		return "/saved/translated_1.mp3", nil
	})
	results := runner.Run(context.Background(), []Input{{Name: "a.wav"}})

	if results[0].Artifact == nil || results[0].Artifact.Path != "/saved/translated_1.mp3" {
		t.Errorf("artifact = %+v, want the persisted path", results[0].Artifact)
	}
	if len(h.artifacts) != 1 || h.artifacts[0] != "/saved/translated_1.mp3" {
		t.Errorf("recorded artifacts = %v, want the persisted path, not scratch", h.artifacts)
	}
}

func TestBatchPersistFailureKeepsScratchPath(t *testing.T) {
	tr := &fakeTranscriber{texts: []string{"hello"}}
	mt := &fakeTranslator{out: "hola"}
	sy := &fakeSynthesizer{artifact: &tts.Artifact{Path: "/scratch/a.mp3", Format: "mp3"}}

	h := &fakeHistory{}
	pipe := newTestPipeline(tr, mt, sy).WithHistory(h)

	runner := NewBatchRunner(pipe).WithPersist(func(string) (string, error) {
		return "", errors.New("disk full")
	})
	results := runner.Run(context.Background(), []Input{{Name: "a.wav"}})

	if results[0].Err != nil {
		t.Fatalf("persist failure must not fail the item: %v", results[0].Err)
	}
	if len(h.artifacts) != 1 || h.artifacts[0] != "/scratch/a.mp3" {
		t.Errorf("recorded artifacts = %v, want the scratch path kept", h.artifacts)
	}
}

func TestRecordSkipsErrorsAndSilence(t *testing.T) {
	h := &fakeHistory{}
	p := newTestPipeline(&fakeTranscriber{}, &fakeTranslator{}, &fakeSynthesizer{}).WithHistory(h)

	p.Record("live", Result{Source: "hello", Translated: "hola"})
	p.Record("live", Result{Source: "", Translated: ""})
	p.Record("live", Result{Source: "x", Err: errors.New("boom")})

	if len(h.saved) != 1 || h.saved[0] != "hello" {
		t.Errorf("saved = %v, want just [hello]", h.saved)
	}
}
