package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV converts float32 PCM samples into a 16-bit WAV file held in
// memory. The wav encoder needs a WriteSeeker to patch up the RIFF header,
// so this goes through a throwaway temp file.
func EncodeWAV(samples []float32, sampleRate, channels int) ([]byte, error) {
	f, err := os.CreateTemp("", "chunk-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp wav: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)

	ints := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		ints[i] = int(s * 32767)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalize wav: %w", err)
	}

	return os.ReadFile(f.Name())
}
