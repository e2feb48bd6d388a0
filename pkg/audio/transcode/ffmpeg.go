package transcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/common"
	"github.com/RyanBlaney/sonido-sonar/logging"
)

// FFmpegDecoder shells out to ffmpeg and ffprobe
type FFmpegDecoder struct {
	ffmpegPath  string
	ffprobePath string
	logger      logging.Logger
}

// NewFFmpegDecoder creates a new ffmpeg backed decoder
func NewFFmpegDecoder(ffmpegPath, ffprobePath string, logger logging.Logger) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "ffmpeg_decoder",
		})
	}
	return &FFmpegDecoder{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logger,
	}
}

func (d *FFmpegDecoder) Name() string { return BackendFFmpeg }

// Decode converts src to headerless mono s16le at sampleRate
func (d *FFmpegDecoder) Decode(ctx context.Context, src, dst string, sampleRate int) error {
	args := d.buildDecodeArgs(src, dst, sampleRate)
	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...)

	d.logger.Debug("Running ffmpeg command", logging.Fields{
		"function": "Decode",
		"command":  d.ffmpegPath + " " + strings.Join(args, " "),
	})

	if _, err := cmd.Output(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return common.NewDecodeError(src, "ffmpeg decode cancelled", ctxErr)
		}
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			d.logger.Error(err, "FFmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
			return common.NewDecodeError(src, "ffmpeg decode failed",
				fmt.Errorf("%w, stderr: %s", err, strings.TrimSpace(string(exitError.Stderr))))
		}
		return common.NewDecodeError(src, "failed to run ffmpeg", err)
	}

	return nil
}

func (d *FFmpegDecoder) buildDecodeArgs(src, dst string, sampleRate int) []string {
	return []string{
		"-v", "error",
		"-nostdin",
		"-y",
		"-i", src,
		"-vn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		dst,
	}
}

// Probe runs ffprobe against src
func (d *FFmpegDecoder) Probe(ctx context.Context, src string) (*SourceInfo, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		src,
	}

	cmd := exec.CommandContext(ctx, d.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, common.NewDecodeError(src, "ffprobe cancelled", ctxErr)
		}
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return nil, common.NewDecodeError(src, "ffprobe failed",
				fmt.Errorf("%w, stderr: %s", err, strings.TrimSpace(string(exitError.Stderr))))
		}
		return nil, common.NewDecodeError(src, "failed to run ffprobe", err)
	}

	info, err := parseFFprobeOutput(output)
	if err != nil {
		return nil, common.NewDecodeError(src, "failed to parse ffprobe output", err)
	}
	return info, nil
}

func parseFFprobeOutput(jsonData []byte) (*SourceInfo, error) {
	var probe struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			CodecName  string `json:"codec_name"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
			Duration   string `json:"duration"`
		} `json:"streams"`
		Format struct {
			FormatName string `json:"format_name"`
			Duration   string `json:"duration"`
		} `json:"format"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("invalid ffprobe json: %w", err)
	}

	info := &SourceInfo{
		Format: probe.Format.FormatName,
	}

	found := false
	for _, stream := range probe.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		found = true
		info.Codec = stream.CodecName
		info.Channels = stream.Channels
		if sr, err := strconv.Atoi(stream.SampleRate); err == nil {
			info.SampleRate = sr
		}
		if info.Duration == 0 {
			if dur, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
				info.Duration = dur
			}
		}
		break
	}
	if !found {
		return nil, fmt.Errorf("no audio streams found")
	}

	// container duration wins over stream duration
	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil && dur > 0 {
		info.Duration = dur
	}

	return info, nil
}
