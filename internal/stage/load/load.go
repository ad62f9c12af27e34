// Package load decodes an audio source into a mono float signal.
package load

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/spectag/internal/integration/ffmpeg"
	"github.com/farcloser/spectag/internal/integration/ffprobe"
	"github.com/farcloser/spectag/internal/stage/shared"
	"github.com/farcloser/spectag/internal/types"
)

const (
	DecoderNative = "native"
	DecoderFFmpeg = "ffmpeg"
)

// Transcoder converts a file the native decoder cannot read into a WAV file.
// It returns the source codec name when known.
type Transcoder interface {
	Transcode(ctx context.Context, input, output string) (string, error)
}

// FFmpeg probes the source with ffprobe and decodes its first audio stream with ffmpeg.
type FFmpeg struct{}

func (FFmpeg) Transcode(ctx context.Context, input, output string) (string, error) {
	probe, err := ffprobe.Probe(ctx, input)
	if err != nil {
		return "", err
	}

	stream, ok := probe.AudioStream()
	if !ok {
		return "", fmt.Errorf("%w: no audio stream", fault.ErrCommandFailure)
	}

	if err = ffmpeg.Transcode(ctx, input, output, 0); err != nil {
		return stream.CodecName, err
	}

	return stream.CodecName, nil
}

// Stage loads the source file into the analysis. A nil Transcoder disables the fallback path.
type Stage struct {
	Transcoder Transcoder
}

// New returns a loader falling back to ffmpeg for non-WAV sources.
func New() *Stage {
	return &Stage{Transcoder: FFmpeg{}}
}

func (*Stage) Name() string {
	return shared.StepLoadAudio
}

func (s *Stage) Execute(ctx context.Context, analysis *types.Analysis) (*types.Analysis, error) {
	path := analysis.SourcePath

	slog.Debug("load.Execute", "file", path, "stage", "start")

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrDecode, path, err)
	}

	sampleRate, signal, nativeErr := decodeFile(path)
	decoder := DecoderNative

	if nativeErr != nil {
		if s.Transcoder == nil {
			return nil, fmt.Errorf("%w: %s: %w", types.ErrDecode, path, nativeErr)
		}

		slog.Debug("load.Execute", "file", path, "stage", "fallback", "reason", nativeErr)

		var codec string

		sampleRate, signal, codec, err = s.transcode(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: native: %w; fallback: %w", types.ErrDecode, path, nativeErr, err)
		}

		decoder = DecoderFFmpeg
		analysis.Metadata["codec"] = codec
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %s: invalid sample rate %d", types.ErrDecode, path, sampleRate)
	}

	sizeMB := float64(info.Size()) / (1024 * 1024)

	analysis.SampleRate = sampleRate
	analysis.Signal = signal
	analysis.Metadata["file_size_mb"] = math.Round(sizeMB*10) / 10
	analysis.Metadata["decoder"] = decoder

	levels := Measure(signal)
	analysis.Metadata["peak_db"] = math.Round(levels.PeakDb*10) / 10
	analysis.Metadata["rms_db"] = math.Round(levels.RmsDb*10) / 10
	analysis.Metadata["dc_offset_db"] = math.Round(levels.DCOffsetDb*10) / 10

	slog.Info("load_audio",
		"file", path,
		"size_mb", fmt.Sprintf("%.1f", sizeMB),
		"sample_rate", sampleRate,
		"samples", len(signal),
		"decoder", decoder,
		"peak_db", fmt.Sprintf("%.1f", levels.PeakDb),
	)

	return analysis, nil
}

// transcode runs the fallback decoder through a temporary file that never outlives the call.
func (s *Stage) transcode(ctx context.Context, path string) (int, []float32, string, error) {
	tmp, err := os.CreateTemp("", "spectag-*.wav")
	if err != nil {
		return 0, nil, "", fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	tmpPath := tmp.Name()
	_ = tmp.Close()

	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("failed to remove temporary file", "file", tmpPath, "error", rmErr)
		}
	}()

	codec, err := s.Transcoder.Transcode(ctx, path, tmpPath)
	if err != nil {
		return 0, nil, codec, err
	}

	sampleRate, signal, err := decodeFile(tmpPath)
	if err != nil {
		return 0, nil, codec, fmt.Errorf("decoding %s: %w", filepath.Base(tmpPath), err)
	}

	return sampleRate, signal, codec, nil
}

func decodeFile(path string) (int, []float32, error) {
	file, err := os.Open(path) //nolint:gosec // path is intentionally user-provided
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer file.Close()

	return Decode(file)
}
