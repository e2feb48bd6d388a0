package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/RyanBlaney/barksync-analyzer/internal/audiotest"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/common"
)

// failingDecoder writes partial output then fails
type failingDecoder struct {
	err error
}

func (f *failingDecoder) Name() string { return "failing" }

func (f *failingDecoder) Decode(ctx context.Context, src, dst string, sampleRate int) error {
	_ = os.WriteFile(dst, []byte{0x01, 0x02, 0x03}, 0o644)
	return f.err
}

func (f *failingDecoder) Probe(ctx context.Context, src string) (*SourceInfo, error) {
	return &SourceInfo{Format: "test"}, nil
}

type NormalizerTestSuite struct {
	suite.Suite
	scratchDir string
	sourceDir  string
	normalizer *Normalizer
}

func (s *NormalizerTestSuite) SetupTest() {
	s.scratchDir = s.T().TempDir()
	s.sourceDir = s.T().TempDir()

	cfg := DefaultNormalizerConfig()
	cfg.Backend = BackendNative
	cfg.ScratchDir = s.scratchDir

	n, err := NewNormalizer(cfg, &logging.NoOpLogger{})
	s.Require().NoError(err)
	s.normalizer = n
}

func (s *NormalizerTestSuite) TestNormalizeWAV() {
	src := audiotest.WriteWAV(s.T(), s.sourceDir, "bark.wav", 44100, 1, 4410, audiotest.Sine(44100, 500, 0.5))

	pcmPath, err := s.normalizer.Normalize(context.Background(), src)
	s.Require().NoError(err)
	defer os.Remove(pcmPath)

	s.Equal(s.scratchDir, filepath.Dir(pcmPath))
	info, err := os.Stat(pcmPath)
	s.Require().NoError(err)
	s.Equal(int64(4410*2), info.Size())
}

func (s *NormalizerTestSuite) TestNormalizeStereoDownmix() {
	wave := func(frame, channel int) float64 {
		if channel == 0 {
			return 0.5
		}
		return -0.5
	}
	src := audiotest.WriteWAV(s.T(), s.sourceDir, "stereo.wav", 44100, 2, 100, wave)

	pcmPath, err := s.normalizer.Normalize(context.Background(), src)
	s.Require().NoError(err)
	defer os.Remove(pcmPath)

	raw, err := os.ReadFile(pcmPath)
	s.Require().NoError(err)
	s.Len(raw, 200)
	for _, b := range raw {
		s.Equal(byte(0), b)
	}
}

func (s *NormalizerTestSuite) TestMissingSource() {
	_, err := s.normalizer.Normalize(context.Background(), filepath.Join(s.sourceDir, "missing.wav"))
	s.Require().Error(err)
	s.ErrorIs(err, common.ErrDecode)
	s.Empty(audiotest.ListDir(s.T(), s.scratchDir))
}

func (s *NormalizerTestSuite) TestEmptySource() {
	src := filepath.Join(s.sourceDir, "empty.wav")
	s.Require().NoError(os.WriteFile(src, nil, 0o644))

	_, err := s.normalizer.Normalize(context.Background(), src)
	s.ErrorIs(err, common.ErrDecode)
	s.Empty(audiotest.ListDir(s.T(), s.scratchDir))
}

func (s *NormalizerTestSuite) TestUndecodableSource() {
	src := filepath.Join(s.sourceDir, "noise.bin")
	s.Require().NoError(os.WriteFile(src, []byte("definitely not audio"), 0o644))

	_, err := s.normalizer.Normalize(context.Background(), src)
	s.ErrorIs(err, common.ErrDecode)
	s.Empty(audiotest.ListDir(s.T(), s.scratchDir))
}

func (s *NormalizerTestSuite) TestPartialOutputRemovedOnFailure() {
	cfg := DefaultNormalizerConfig()
	cfg.ScratchDir = s.scratchDir
	n := NewNormalizerWithBackend(cfg, &failingDecoder{err: errors.New("boom")}, &logging.NoOpLogger{})

	src := audiotest.WriteWAV(s.T(), s.sourceDir, "bark.wav", 44100, 1, 100, audiotest.Silence())
	_, err := n.Normalize(context.Background(), src)
	s.ErrorIs(err, common.ErrDecode)
	s.Empty(audiotest.ListDir(s.T(), s.scratchDir))
}

func (s *NormalizerTestSuite) TestCancelledContext() {
	src := audiotest.WriteWAV(s.T(), s.sourceDir, "bark.wav", 44100, 1, 4410, audiotest.Sine(44100, 500, 0.5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.normalizer.Normalize(ctx, src)
	s.Require().Error(err)
	s.ErrorIs(err, context.Canceled)
	s.Empty(audiotest.ListDir(s.T(), s.scratchDir))
}

func (s *NormalizerTestSuite) TestDuration() {
	src := audiotest.WriteWAV(s.T(), s.sourceDir, "half.wav", 44100, 1, 22050, audiotest.Silence())

	dur, err := s.normalizer.Duration(context.Background(), src)
	s.Require().NoError(err)
	s.InDelta(0.5, dur, 1e-3)

	info, err := s.normalizer.Probe(context.Background(), src)
	s.Require().NoError(err)
	s.Equal(FormatWAV, info.Format)
	s.Equal(44100, info.SampleRate)
	s.Equal(1, info.Channels)
	s.Equal(BackendNative, info.Backend)
	s.Positive(info.SizeBytes)
}

func (s *NormalizerTestSuite) TestDurationUndeterminable() {
	src := filepath.Join(s.sourceDir, "garbage.wav")
	s.Require().NoError(os.WriteFile(src, []byte("RIFF0000WAVEjunk"), 0o644))

	_, err := s.normalizer.Duration(context.Background(), src)
	s.ErrorIs(err, common.ErrDecode)
}

func TestNormalizerTestSuite(t *testing.T) {
	suite.Run(t, new(NormalizerTestSuite))
}

func TestScratchPathUnique(t *testing.T) {
	dir := t.TempDir()
	seen := make(map[string]struct{})
	for range 1000 {
		p := ScratchPath(dir, "barksync", ".pcm")
		_, dup := seen[p]
		require.False(t, dup, "duplicate scratch path %s", p)
		seen[p] = struct{}{}
		assert.Equal(t, ".pcm", filepath.Ext(p))
	}
}

func TestRemoveScratchMissing(t *testing.T) {
	assert.NoError(t, RemoveScratch(filepath.Join(t.TempDir(), "gone.pcm")))
	assert.NoError(t, RemoveScratch(""))
}

func TestSelectBackend(t *testing.T) {
	cfg := DefaultNormalizerConfig()
	cfg.Backend = "bogus"
	_, err := NewNormalizer(cfg, &logging.NoOpLogger{})
	assert.Error(t, err)

	cfg.Backend = BackendFFmpeg
	cfg.FFmpegPath = "/nonexistent/ffmpeg"
	_, err = NewNormalizer(cfg, &logging.NoOpLogger{})
	assert.Error(t, err)

	cfg.Backend = BackendAuto
	n, err := NewNormalizer(cfg, &logging.NoOpLogger{})
	require.NoError(t, err)
	assert.Equal(t, BackendNative, n.Backend())
}

func TestDetectFormat(t *testing.T) {
	dir := t.TempDir()
	wavPath := audiotest.WriteWAV(t, dir, "a.wav", 8000, 1, 10, audiotest.Silence())

	format, err := DetectFormat(wavPath)
	require.NoError(t, err)
	assert.Equal(t, FormatWAV, format)

	oggPath := filepath.Join(dir, "clip.bin")
	require.NoError(t, os.WriteFile(oggPath, []byte("OggS\x00\x02rest"), 0o644))
	format, err = DetectFormat(oggPath)
	require.NoError(t, err)
	assert.Equal(t, FormatOgg, format)

	mp3Path := filepath.Join(dir, "clip.dat")
	require.NoError(t, os.WriteFile(mp3Path, []byte("ID3\x04\x00rest"), 0o644))
	format, err = DetectFormat(mp3Path)
	require.NoError(t, err)
	assert.Equal(t, FormatMP3, format)

	other := filepath.Join(dir, "clip.txt")
	require.NoError(t, os.WriteFile(other, []byte("hello world!"), 0o644))
	format, err = DetectFormat(other)
	require.NoError(t, err)
	assert.Equal(t, FormatUnknown, format)
}

func TestResampleToCanonicalRate(t *testing.T) {
	dir := t.TempDir()
	scratch := t.TempDir()
	src := audiotest.WriteWAV(t, dir, "low.wav", 22050, 1, 22050, audiotest.Sine(22050, 440, 0.5))

	cfg := DefaultNormalizerConfig()
	cfg.Backend = BackendNative
	cfg.ScratchDir = scratch
	n, err := NewNormalizer(cfg, &logging.NoOpLogger{})
	require.NoError(t, err)

	pcmPath, err := n.Normalize(context.Background(), src)
	require.NoError(t, err)
	defer os.Remove(pcmPath)

	info, err := os.Stat(pcmPath)
	require.NoError(t, err)
	// one second of 22.05 kHz audio is exactly one second at 44.1 kHz
	assert.Equal(t, int64(44100*2), info.Size())
}

func TestResamplePreservesDuration(t *testing.T) {
	cases := []struct {
		rate   int
		frames int
	}{
		{8000, 8000},
		{16000, 16000},
		{22050, 22050},
		{48000, 48000},
		{16000, 400},
		{16000, 100},
		{16000, 1},
	}

	for _, tc := range cases {
		mono := audiotest.Samples(tc.frames, audiotest.Sine(tc.rate, 440, 0.5))
		out, err := resample(mono, tc.rate, 44100)
		require.NoError(t, err, "rate %d frames %d", tc.rate, tc.frames)
		assert.Len(t, out, resampledLength(tc.frames, tc.rate, 44100), "rate %d frames %d", tc.rate, tc.frames)
		assert.NotEmpty(t, out)
	}
}

func TestAlignResampled(t *testing.T) {
	// leading delay is dropped only as far as the overshoot allows
	assert.Equal(t, []float64{3, 4, 5}, alignResampled([]float64{1, 2, 3, 4, 5}, 2, 3))
	assert.Equal(t, []float64{2, 3, 4}, alignResampled([]float64{1, 2, 3, 4, 5}, 1, 3))
	assert.Equal(t, []float64{1, 2, 3}, alignResampled([]float64{1, 2, 3, 4, 5}, 0, 3))
	assert.Equal(t, []float64{1, 2, 0, 0}, alignResampled([]float64{1, 2}, 5, 4))
	assert.Equal(t, 3, resampledLength(1, 16000, 44100))
}

func TestDownmix(t *testing.T) {
	assert.Equal(t, []float64{0.5, 0}, downmix([]float64{1, 0, 0.5, -0.5}, 2))
	assert.Equal(t, []float64{1, 2}, downmix([]float64{1, 2}, 1))
}

func TestFloatToInt16(t *testing.T) {
	assert.Equal(t, int16(32767), floatToInt16(1.5))
	assert.Equal(t, int16(-32768), floatToInt16(-1))
	assert.Equal(t, int16(0), floatToInt16(0))
}
