package transcode

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/common"
	"github.com/RyanBlaney/sonido-sonar/logging"
)

// Container formats understood by the native decoder
const (
	FormatWAV     = "wav"
	FormatMP3     = "mp3"
	FormatOgg     = "ogg"
	FormatUnknown = "unknown"
)

// NativeDecoder decodes WAV, MP3 and Ogg Vorbis in-process
type NativeDecoder struct {
	logger logging.Logger
}

// NewNativeDecoder creates a new pure Go decoder
func NewNativeDecoder(logger logging.Logger) *NativeDecoder {
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "native_decoder",
		})
	}
	return &NativeDecoder{logger: logger}
}

func (d *NativeDecoder) Name() string { return BackendNative }

// pcm is interleaved float audio as produced by a format reader
type pcm struct {
	samples    []float64
	sampleRate int
	channels   int
}

// Decode writes mono s16le at sampleRate to dst
func (d *NativeDecoder) Decode(ctx context.Context, src, dst string, sampleRate int) error {
	logger := d.logger.WithFields(logging.Fields{
		"function": "Decode",
		"source":   src,
	})

	format, err := DetectFormat(src)
	if err != nil {
		return common.NewDecodeError(src, "failed to read source header", err)
	}

	var decoded *pcm
	switch format {
	case FormatWAV:
		decoded, err = readWAV(src)
	case FormatMP3:
		decoded, err = readMP3(src)
	case FormatOgg:
		decoded, err = readOgg(src)
	default:
		return common.NewDecodeError(src, "unsupported audio format", nil)
	}
	if err != nil {
		return common.NewDecodeError(src, fmt.Sprintf("failed to decode %s", format), err)
	}
	if err := ctx.Err(); err != nil {
		return common.NewDecodeError(src, "decode cancelled", err)
	}

	mono := downmix(decoded.samples, decoded.channels)
	if len(mono) == 0 {
		return common.NewDecodeError(src, "source contains no audio frames", nil)
	}

	logger.Debug("Decoded source audio", logging.Fields{
		"format":      format,
		"source_rate": decoded.sampleRate,
		"channels":    decoded.channels,
		"frames":      len(mono),
	})

	if decoded.sampleRate != sampleRate {
		mono, err = resample(mono, decoded.sampleRate, sampleRate)
		if err != nil {
			return common.NewDecodeError(src, "failed to resample audio", err)
		}
		logger.Debug("Resampled audio", logging.Fields{
			"target_rate": sampleRate,
			"frames":      len(mono),
		})
	}
	if err := ctx.Err(); err != nil {
		return common.NewDecodeError(src, "decode cancelled", err)
	}

	if err := writeS16LE(dst, mono); err != nil {
		return common.NewIOError(dst, "failed to write pcm output", err)
	}
	return nil
}

// Probe reads header metadata for src
func (d *NativeDecoder) Probe(ctx context.Context, src string) (*SourceInfo, error) {
	format, err := DetectFormat(src)
	if err != nil {
		return nil, common.NewDecodeError(src, "failed to read source header", err)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, common.NewDecodeError(src, "failed to open source", err)
	}
	defer f.Close()

	info := &SourceInfo{Format: format}
	switch format {
	case FormatWAV:
		dec := wav.NewDecoder(f)
		if !dec.IsValidFile() {
			return nil, common.NewDecodeError(src, "invalid wav file", nil)
		}
		dur, err := dec.Duration()
		if err != nil {
			return nil, common.NewDecodeError(src, "failed to read wav duration", err)
		}
		info.Codec = fmt.Sprintf("pcm_s%dle", dec.BitDepth)
		info.SampleRate = int(dec.SampleRate)
		info.Channels = int(dec.NumChans)
		info.Duration = dur.Seconds()
	case FormatMP3:
		dec, err := gomp3.NewDecoder(f)
		if err != nil {
			return nil, common.NewDecodeError(src, "invalid mp3 file", err)
		}
		length := dec.Length()
		if length <= 0 || dec.SampleRate() <= 0 {
			return nil, common.NewDecodeError(src, "mp3 length unknown", nil)
		}
		info.Codec = "mp3"
		info.SampleRate = dec.SampleRate()
		info.Channels = 2
		// go-mp3 length is in bytes of 16-bit stereo output
		info.Duration = float64(length) / 4 / float64(dec.SampleRate())
	case FormatOgg:
		length, ft, err := oggvorbis.GetLength(f)
		if err != nil {
			return nil, common.NewDecodeError(src, "invalid ogg file", err)
		}
		if ft.SampleRate <= 0 {
			return nil, common.NewDecodeError(src, "ogg sample rate unknown", nil)
		}
		info.Codec = "vorbis"
		info.SampleRate = ft.SampleRate
		info.Channels = ft.Channels
		info.Duration = float64(length) / float64(ft.SampleRate)
	default:
		return nil, common.NewDecodeError(src, "unsupported audio format", nil)
	}

	return info, ctx.Err()
}

// DetectFormat sniffs the container from magic bytes, falling back to the
// file extension.
func DetectFormat(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()

	header := make([]byte, 12)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatUnknown, err
	}
	header = header[:n]

	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return FormatWAV, nil
	case bytes.HasPrefix(header, []byte("OggS")):
		return FormatOgg, nil
	case bytes.HasPrefix(header, []byte("ID3")):
		return FormatMP3, nil
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".mp3":
		return FormatMP3, nil
	case ".ogg", ".oga":
		return FormatOgg, nil
	}
	return FormatUnknown, nil
}

func readWAV(path string) (*pcm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file")
	}
	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("unsupported wav encoding %d, only PCM is supported", dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("wav decoder returned no buffer")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported wav bit depth %d", bitDepth)
	}
	scale := float64(int64(1) << (bitDepth - 1))

	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		if bitDepth == 8 {
			// 8-bit wav is unsigned
			v -= 128
		}
		samples[i] = float64(v) / scale
	}

	return &pcm{
		samples:    samples,
		sampleRate: buf.Format.SampleRate,
		channels:   buf.Format.NumChannels,
	}, nil
}

func readMP3(path string) (*pcm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}

	// go-mp3 always produces 16-bit little-endian stereo
	samples := make([]float64, len(raw)/2)
	for i := range samples {
		samples[i] = common.Int16ToFloat64(int16(binary.LittleEndian.Uint16(raw[2*i:])))
	}

	return &pcm{
		samples:    samples,
		sampleRate: dec.SampleRate(),
		channels:   2,
	}, nil
}

func readOgg(path string) (*pcm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, err
	}

	samples := make([]float64, len(data))
	for i, v := range data {
		samples[i] = float64(v)
	}

	return &pcm{
		samples:    samples,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
	}, nil
}

// downmix averages interleaved channels into mono
func downmix(samples []float64, channels int) []float64 {
	if channels <= 1 {
		return samples
	}

	frames := len(samples) / channels
	mono := make([]float64, frames)
	for i := range frames {
		var sum float64
		for c := range channels {
			sum += samples[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

func resample(mono []float64, fromRate, toRate int) ([]float64, error) {
	if fromRate <= 0 {
		return nil, fmt.Errorf("invalid source sample rate %d", fromRate)
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(fromRate),
		OutputRate: float64(toRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	out, err := r.Process(mono)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}
	tail, err := r.Flush()
	if err != nil {
		return nil, fmt.Errorf("resample flush error: %w", err)
	}
	out = append(out, tail...)

	return alignResampled(out, r.GetLatency(), resampledLength(len(mono), fromRate, toRate)), nil
}

// resampledLength is the frame count that preserves the source duration
func resampledLength(frames, fromRate, toRate int) int {
	return int(math.Round(float64(frames) * float64(toRate) / float64(fromRate)))
}

// alignResampled drops up to latency leading samples of filter delay and
// fits the result to exactly want samples, zero-padding a short tail.
func alignResampled(out []float64, latency, want int) []float64 {
	if excess := len(out) - want; excess > 0 && latency > 0 {
		out = out[min(latency, excess):]
	}
	if len(out) >= want {
		return out[:want]
	}
	padded := make([]float64, want)
	copy(padded, out)
	return padded
}

// writeS16LE clips to [-1, 1] and writes little-endian int16 samples
func writeS16LE(path string, samples []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	var frame [2]byte
	for _, s := range samples {
		binary.LittleEndian.PutUint16(frame[:], uint16(floatToInt16(s)))
		if _, err := w.Write(frame[:]); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func floatToInt16(s float64) int16 {
	v := math.Round(s * 32768.0)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
