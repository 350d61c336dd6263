package audio

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var supportedExts = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
}

// Supported reports whether the filename has a container extension the
// transcription backends accept.
func Supported(name string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(name))]
}

// LoadFile reads an audio file into a Sample.
func LoadFile(path string) (Sample, error) {
	if !Supported(path) {
		return Sample{}, fmt.Errorf("unsupported audio file %q (want wav, mp3, m4a, ogg, or flac)", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Sample{}, fmt.Errorf("read audio file: %w", err)
	}
	return Sample{
		Data: data,
		Ext:  strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
	}, nil
}

// FileSource is a ChunkSource backed by a previously loaded sample; Capture
// returns it immediately, ignoring the duration.
type FileSource struct {
	sample Sample
}

func NewFileSource(sample Sample) *FileSource {
	return &FileSource{sample: sample}
}

func (f *FileSource) Capture(_ context.Context, _ time.Duration) (Sample, error) {
	return f.sample, nil
}

// NamedSample pairs a sample with the filename it came from, for batch
// result reporting.
type NamedSample struct {
	Name   string
	Sample Sample
}

// ExpandZip extracts the supported audio entries of a zip archive in memory,
// preserving archive order. Unsupported entries are skipped.
func ExpandZip(data []byte) ([]NamedSample, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	var out []NamedSample
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !Supported(entry.Name) {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry %q: %w", entry.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read zip entry %q: %w", entry.Name, err)
		}
		out = append(out, NamedSample{
			Name: filepath.Base(entry.Name),
			Sample: Sample{
				Data: content,
				Ext:  strings.TrimPrefix(strings.ToLower(filepath.Ext(entry.Name)), "."),
			},
		})
	}
	return out, nil
}
