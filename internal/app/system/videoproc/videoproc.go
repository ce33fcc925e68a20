// Package videoproc probes and recompresses uploaded videos with the
// ffprobe and ffmpeg command-line tools.
package videoproc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/bemyforce/bemyforce/internal/app/system/apierr"
	"go.uber.org/zap"
)

// CommandRunner executes external commands and returns stdout bytes.
type CommandRunner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// DefaultCRF is the constant rate factor passed to ffmpeg.
const DefaultCRF = 30

var (
	ErrNoBuffer        = errors.New("No video buffer provided")
	ErrNotVideo        = errors.New("Invalid file type. Only video files are allowed.")
	ErrInvalidDuration = errors.New("Invalid video duration")
)

// Config selects binaries and quality. Zero values use defaults.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	CRF         int
	Timeout     time.Duration
	TempDir     string
}

// Processor normalizes one video at a time.
type Processor struct {
	FFmpeg  string
	FFprobe string
	CRF     int
	Timeout time.Duration
	TempDir string
	Run     CommandRunner
	Log     *zap.Logger
}

// New constructs a Processor that shells out to ffprobe and ffmpeg.
func New(cfg Config, logger *zap.Logger) *Processor {
	p := &Processor{
		FFmpeg:  strings.TrimSpace(cfg.FFmpegPath),
		FFprobe: strings.TrimSpace(cfg.FFprobePath),
		CRF:     cfg.CRF,
		Timeout: cfg.Timeout,
		TempDir: cfg.TempDir,
		Run:     defaultCommandRunner,
		Log:     logger,
	}
	if p.FFmpeg == "" {
		p.FFmpeg = "ffmpeg"
	}
	if p.FFprobe == "" {
		p.FFprobe = "ffprobe"
	}
	if p.CRF <= 0 {
		p.CRF = DefaultCRF
	}
	if p.Timeout <= 0 {
		p.Timeout = 3 * time.Minute
	}
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	return p
}

// Input is an uploaded video.
type Input struct {
	Data        []byte
	ContentType string
}

// Output is the recompressed video and its duration in whole seconds.
type Output struct {
	Data     []byte
	Duration int
}

// Process validates, probes and recompresses in. Every failure is returned
// as a 400 "Video processing failed: ..." error wrapping the cause.
func (p *Processor) Process(ctx context.Context, in Input) (Output, error) {
	out, err := p.process(ctx, in)
	if err != nil {
		p.Log.Warn("video processing failed", zap.Error(err))
		return Output{}, apierr.Upstream(http.StatusBadRequest, "Video processing failed: "+err.Error(), err)
	}
	return out, nil
}

func (p *Processor) process(ctx context.Context, in Input) (Output, error) {
	if len(in.Data) == 0 {
		return Output{}, ErrNoBuffer
	}
	if !strings.HasPrefix(strings.ToLower(in.ContentType), "video/") {
		return Output{}, ErrNotVideo
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	input, err := os.CreateTemp(p.TempDir, "bemyforce-in-*.mp4")
	if err != nil {
		return Output{}, fmt.Errorf("create temp input: %w", err)
	}
	inPath := input.Name()
	defer os.Remove(inPath)

	if _, err := input.Write(in.Data); err != nil {
		input.Close()
		return Output{}, fmt.Errorf("write temp input: %w", err)
	}
	if err := input.Close(); err != nil {
		return Output{}, fmt.Errorf("write temp input: %w", err)
	}

	seconds, err := p.probe(ctx, inPath)
	if err != nil {
		return Output{}, err
	}
	if seconds <= 0 {
		return Output{}, ErrInvalidDuration
	}

	data, err := p.compress(ctx, inPath)
	if err != nil {
		return Output{}, err
	}

	p.Log.Debug("video processed",
		zap.Int("input_bytes", len(in.Data)),
		zap.Int("output_bytes", len(data)),
		zap.Float64("duration", seconds))

	return Output{Data: data, Duration: int(math.Round(seconds))}, nil
}

func (p *Processor) probe(ctx context.Context, path string) (float64, error) {
	raw, err := p.Run(ctx, p.FFprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "N/A" {
		return 0, ErrInvalidDuration
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidDuration
	}
	return d, nil
}

func (p *Processor) compress(ctx context.Context, inPath string) ([]byte, error) {
	output, err := os.CreateTemp(p.TempDir, "bemyforce-out-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("create temp output: %w", err)
	}
	outPath := output.Name()
	output.Close()
	defer os.Remove(outPath)

	if _, err := p.Run(ctx, p.FFmpeg,
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", inPath,
		"-crf", strconv.Itoa(p.CRF),
		outPath,
	); err != nil {
		return nil, fmt.Errorf("Video compression failed: %w", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read compressed video: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("Video compression failed: empty output")
	}
	return data, nil
}

func defaultCommandRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return out, err
}
