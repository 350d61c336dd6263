package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// MicSource captures fixed-duration chunks from the default microphone.
type MicSource struct {
	sampleRate uint32
	channels   uint32
}

func NewMicSource(sampleRate, channels uint32) *MicSource {
	return &MicSource{sampleRate: sampleRate, channels: channels}
}

// Capture records from the default capture device for the full wall-clock
// duration and returns the audio as a 16-bit WAV sample. Device init
// failures are reported as ErrDeviceUnavailable.
func (m *MicSource) Capture(ctx context.Context, duration time.Duration) (Sample, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: init context: %v", ErrDeviceUnavailable, err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	var mu sync.Mutex
	var buf []float32

	deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceCfg.Capture.Format = malgo.FormatF32
	deviceCfg.Capture.Channels = m.channels
	deviceCfg.SampleRate = m.sampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pSample []byte, frameCount uint32) {
			samples := bytesToFloat32(pSample, frameCount*m.channels)
			mu.Lock()
			buf = append(buf, samples...)
			mu.Unlock()
		},
	}

	device, err := malgo.InitDevice(mctx.Context, deviceCfg, callbacks)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: init device: %v", ErrDeviceUnavailable, err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return Sample{}, fmt.Errorf("%w: start device: %v", ErrDeviceUnavailable, err)
	}

	select {
	case <-time.After(duration):
	case <-ctx.Done():
		return Sample{}, ctx.Err()
	}

	mu.Lock()
	samples := make([]float32, len(buf))
	copy(samples, buf)
	mu.Unlock()

	data, err := EncodeWAV(samples, int(m.sampleRate), int(m.channels))
	if err != nil {
		return Sample{}, fmt.Errorf("encode captured chunk: %w", err)
	}

	return Sample{
		Data:       data,
		Ext:        "wav",
		SampleRate: int(m.sampleRate),
		Channels:   int(m.channels),
	}, nil
}

func bytesToFloat32(data []byte, sampleCount uint32) []float32 {
	samples := make([]float32, 0, sampleCount)
	for i := uint32(0); i < sampleCount; i++ {
		offset := i * 4
		if offset+4 > uint32(len(data)) {
			break
		}
		bits := binary.LittleEndian.Uint32(data[offset : offset+4])
		samples = append(samples, math.Float32frombits(bits))
	}
	return samples
}
