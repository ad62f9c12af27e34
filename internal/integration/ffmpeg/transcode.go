package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/spectag/internal/integration/binary"
)

// Transcode decodes an audio stream of the input file into a 24-bit PCM WAV file at output.
// Sample rate and channel layout are preserved.
func Transcode(ctx context.Context, input, output string, streamIndex int) error {
	slog.Debug("ffmpeg.Transcode", "file", input, "stream index", streamIndex, "stage", "start")

	ffmpegPath, err := binary.Require(name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // input and output are intentionally caller-provided paths
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-v", "quiet",
		"-y",
		"-i", input,
		"-map", "0:a:"+strconv.Itoa(streamIndex),
		"-acodec", codec,
		"-f", "wav",
		output,
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffmpeg.Transcode", "file", input, "stage", "timeout")

			return fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		slog.Debug("ffmpeg.Transcode", "file", input, "stage", "error")

		return fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	slog.Debug("ffmpeg.Transcode", "file", input, "stage", "done")

	return nil
}
