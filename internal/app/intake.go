package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/RyanBlaney/barksync-analyzer/configs"
	"github.com/RyanBlaney/barksync-analyzer/internal/analysis"
	"github.com/RyanBlaney/barksync-analyzer/internal/batch"
)

// sniffLen is the number of leading bytes content sniffing considers
const sniffLen = 512

// ErrRejected is wrapped by every intake refusal
var ErrRejected = errors.New("file rejected")

// Intake enforces upload limits before a file reaches the pipeline
type Intake struct {
	maxFileSize int64
	extensions  []string
	types       []string
}

// NewIntake creates an intake check from configuration. Empty lists
// disable the corresponding check; a non-positive size disables the
// size limit.
func NewIntake(cfg configs.IntakeConfig) *Intake {
	lower := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	return &Intake{
		maxFileSize: cfg.MaxFileSize,
		extensions:  lower(cfg.AllowedExtensions),
		types:       lower(cfg.AllowedTypes),
	}
}

// Check returns nil when path may be analyzed
func (in *Intake) Check(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		// missing files are reported by the pipeline itself
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrRejected, path)
	}

	if in.maxFileSize > 0 && info.Size() > in.maxFileSize {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrRejected, path, info.Size(), in.maxFileSize)
	}

	if len(in.extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		if !slices.Contains(in.extensions, ext) {
			return fmt.Errorf("%w: extension %q is not allowed", ErrRejected, ext)
		}
	}

	if len(in.types) > 0 && info.Size() > 0 {
		contentType, err := sniffContentType(path)
		if err != nil {
			return err
		}
		if !slices.Contains(in.types, contentType) {
			return fmt.Errorf("%w: content type %q is not allowed", ErrRejected, contentType)
		}
	}

	return nil
}

// sniffContentType returns the media type of the file's leading bytes
// without parameters
func sniffContentType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	detected := http.DetectContentType(head[:n])
	mediaType, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return strings.ToLower(detected), nil
	}
	return strings.ToLower(mediaType), nil
}

// intakeAnalyzer applies intake checks and optional source removal
// around another analyzer
type intakeAnalyzer struct {
	next         batch.Analyzer
	intake       *Intake
	removeSource bool
	onRemoveErr  func(path string, err error)
}

func (a *intakeAnalyzer) AnalyzeDetailed(ctx context.Context, path string) (*analysis.Report, error) {
	if a.removeSource {
		defer func() {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) && a.onRemoveErr != nil {
				a.onRemoveErr(path, err)
			}
		}()
	}

	if err := a.intake.Check(path); err != nil {
		return nil, err
	}
	return a.next.AnalyzeDetailed(ctx, path)
}
