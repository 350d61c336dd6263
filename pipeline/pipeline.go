// Package pipeline chains transcription, language detection, translation,
// and synthesis over one audio sample, and runs the chain over batches.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"voxlate/audio"
	"voxlate/lang"
	"voxlate/stt"
	"voxlate/translate"
	"voxlate/tts"
)

// Config is the immutable per-run configuration, built once from the
// CLI/config surface.
type Config struct {
	Target       string
	AutoDetect   bool
	Persist      bool
	ChunkSeconds int
	PauseSeconds int
	STT          stt.Kind
	TTS          tts.Kind
}

// Detector is the optional source-language detection step.
type Detector interface {
	Detect(text string) string
}

// Result aggregates everything one sample produced. Err is set only when a
// step raised; an empty transcript is an error-free Result with empty
// fields.
type Result struct {
	Name       string
	Source     string
	Detected   string
	Translated string
	Artifact   *tts.Artifact
	Err        error
}

// Pipeline applies the step chain to samples. No step failure aborts the
// chain: translation and synthesis failures degrade to empty output with a
// warning, so callers can keep looping.
type Pipeline struct {
	cfg         Config
	logger      *log.Logger
	transcriber stt.Transcriber
	translator  translate.Translator
	synthesizer tts.Synthesizer
	detector    Detector
	history     HistoryWriter
}

// HistoryWriter records processed utterances; nil disables recording.
type HistoryWriter interface {
	Save(mode, source, detected, translated, artifact string) error
}

func New(
	cfg Config,
	logger *log.Logger,
	transcriber stt.Transcriber,
	translator translate.Translator,
	synthesizer tts.Synthesizer,
	detector Detector,
) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		logger:      logger,
		transcriber: transcriber,
		translator:  translator,
		synthesizer: synthesizer,
		detector:    detector,
	}
}

func (p *Pipeline) Config() Config {
	return p.cfg
}

// WithHistory enables utterance recording.
func (p *Pipeline) WithHistory(h HistoryWriter) *Pipeline {
	p.history = h
	return p
}

// Process runs one sample through the chain. A transcription failure marks
// the Result and skips the rest; silence returns an empty error-free Result
// without invoking translation or synthesis.
func (p *Pipeline) Process(ctx context.Context, sample audio.Sample) Result {
	var res Result

	transcript, err := p.transcriber.Transcribe(ctx, sample)
	if err != nil {
		// Callers report Result.Err; this step stays quiet.
		res.Err = fmt.Errorf("transcribe: %w", err)
		return res
	}
	res.Source = transcript.Text

	if strings.TrimSpace(transcript.Text) == "" {
		// Nothing recognized; a valid terminal state.
		return res
	}

	if p.cfg.AutoDetect {
		if transcript.Language != "" {
			res.Detected = transcript.Language
		} else if p.detector != nil {
			res.Detected = p.detector.Detect(transcript.Text)
		} else {
			res.Detected = lang.Unknown
		}
	}

	translated, err := p.translator.Translate(ctx, transcript.Text, p.cfg.Target)
	if err != nil {
		p.logger.Warn("translation failed", "error", err)
		translated = ""
	}
	res.Translated = translated

	if strings.TrimSpace(translated) == "" {
		return res
	}

	artifact, err := p.synthesizer.Synthesize(ctx, translated, p.cfg.Target)
	if err != nil {
		p.logger.Warn("synthesis failed", "error", err)
		artifact = nil
	}
	res.Artifact = artifact

	return res
}

// Record writes the result to the history store when one is configured.
// Storage failures are warnings, never fatal.
func (p *Pipeline) Record(mode string, res Result) {
	if p.history == nil || res.Err != nil || res.Source == "" {
		return
	}
	var artifact string
	if res.Artifact != nil {
		artifact = res.Artifact.Path
	}
	if err := p.history.Save(mode, res.Source, res.Detected, res.Translated, artifact); err != nil {
		p.logger.Warn("record utterance failed", "error", err)
	}
}

// Input is one batch item.
type Input struct {
	Name   string
	Sample audio.Sample
}

// PersistFn moves an artifact out of the scratch directory and returns its
// final path.
type PersistFn func(artifactPath string) (string, error)

// BatchRunner applies the pipeline to a fixed list of inputs, in order,
// isolating failures per item.
type BatchRunner struct {
	pipe    *Pipeline
	persist PersistFn
}

func NewBatchRunner(pipe *Pipeline) *BatchRunner {
	return &BatchRunner{pipe: pipe}
}

// WithPersist moves each artifact to its final location before the item is
// recorded, so history rows never point into the scratch directory.
func (b *BatchRunner) WithPersist(fn PersistFn) *BatchRunner {
	b.persist = fn
	return b
}

// Run returns exactly one Result per input, in input order. An item's error
// is captured on its Result and never aborts the remaining items.
func (b *BatchRunner) Run(ctx context.Context, inputs []Input) []Result {
	results := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		res := b.pipe.Process(ctx, in.Sample)
		res.Name = in.Name
		if res.Artifact != nil && b.persist != nil {
			dest, err := b.persist(res.Artifact.Path)
			if err != nil {
				b.pipe.logger.Warn("persist failed, audio left in scratch",
					"scratch", res.Artifact.Path, "error", err)
			} else {
				res.Artifact.Path = dest
			}
		}
		b.pipe.Record("translated", res)
		results = append(results, res)
	}
	return results
}
