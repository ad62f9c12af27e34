//nolint:tagliatelle
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/spectag/internal/integration/binary"
)

// Result contains the marshalled output of ffprobe.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream holds the stream properties the loader cares about.
type Stream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`                // flac, mp3, aac
	CodecLongName string `json:"codec_long_name"`           // FLAC (Free Lossless Audio Codec)
	CodecType     string `json:"codec_type"`                // audio
	SampleRate    string `json:"sample_rate,omitempty"`     // 44100
	Channels      int    `json:"channels,omitempty"`        // 2
	ChannelLayout string `json:"channel_layout,omitempty"`  // stereo
	SampleFmt     string `json:"sample_fmt,omitempty"`      // fltp
	Duration      string `json:"duration,omitempty"`        // 310.666667
	BitRate       string `json:"bit_rate,omitempty"`        // 956821
	BitsPerSample int    `json:"bits_per_sample,omitempty"` // 0 for lossy codecs
}

// Format represents container-level information.
type Format struct {
	Filename       string `json:"filename"`
	NbStreams      int    `json:"nb_streams"`
	FormatName     string `json:"format_name"` // "mov,mp4,m4a,3gp,3g2,mj2"
	FormatLongName string `json:"format_long_name"`
	Duration       string `json:"duration,omitempty"`
	Size           string `json:"size,omitempty"`
	ProbeScore     int    `json:"probe_score"` // 100 = certain, lower = guessed
}

// AudioStream returns the first audio stream, which ffmpeg maps as "0:a:0".
func (r *Result) AudioStream() (*Stream, bool) {
	for i := range r.Streams {
		if r.Streams[i].CodecType == "audio" {
			return &r.Streams[i], true
		}
	}

	return nil, false
}

// Probe runs ffprobe on the given file path and returns parsed metadata.
// It requires ffprobe to be available in the system PATH.
func Probe(ctx context.Context, filePath string) (*Result, error) {
	slog.Debug("ffprobe.Probe", "file path", filePath)

	ffprobePath, err := binary.Require(name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // filePath is intentionally user-provided input for probing media files
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return Parse(output)
}

// Parse decodes ffprobe JSON output.
func Parse(output []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, err)
	}

	return &result, nil
}
