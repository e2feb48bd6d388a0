// Package audiotest generates audio fixtures for tests.
package audiotest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Waveform returns the sample value in [-1, 1] for a frame index and channel.
type Waveform func(frame, channel int) float64

// Sine returns a sine waveform at freq Hz with peak amplitude amp.
func Sine(sampleRate int, freq, amp float64) Waveform {
	return func(frame, _ int) float64 {
		return amp * math.Sin(2*math.Pi*freq*float64(frame)/float64(sampleRate))
	}
}

// Constant returns a constant waveform.
func Constant(value float64) Waveform {
	return func(_, _ int) float64 { return value }
}

// Silence is an all-zero waveform.
func Silence() Waveform {
	return Constant(0)
}

// WriteWAV writes a 16-bit PCM wav file into dir and returns its path.
func WriteWAV(t testing.TB, dir, name string, sampleRate, channels, frames int, wave Waveform) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav fixture: %v", err)
	}
	defer f.Close()

	data := make([]int, frames*channels)
	for i := range frames {
		for c := range channels {
			data[i*channels+c] = toInt16(wave(i, c))
		}
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	encoder := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("write wav fixture: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close wav fixture: %v", err)
	}
	return path
}

// WritePCM writes raw little-endian int16 samples to path.
func WritePCM(t testing.TB, path string, samples []int16) string {
	t.Helper()

	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(s))
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write pcm fixture: %v", err)
	}
	return path
}

// Samples renders frames of a mono waveform as floats.
func Samples(frames int, wave Waveform) []float64 {
	out := make([]float64, frames)
	for i := range frames {
		out[i] = wave(i, 0)
	}
	return out
}

// ListDir returns the names of the entries in dir.
func ListDir(t testing.TB, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func toInt16(v float64) int {
	s := math.Round(v * 32767)
	if s > math.MaxInt16 {
		s = math.MaxInt16
	}
	if s < math.MinInt16 {
		s = math.MinInt16
	}
	return int(s)
}
