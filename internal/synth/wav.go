package synth

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/farcloser/spectag/internal/types"
)

const formatPCM = 1

var errLayout = errors.New("invalid sample layout")

// Encode writes channels as an interleaved integer PCM WAV stream in the requested format.
// Every channel must hold the same number of samples in [-1, 1].
func Encode(writer io.WriteSeeker, format types.PCMFormat, channels ...[]float64) error {
	if len(channels) == 0 || int(format.Channels) != len(channels) { //nolint:gosec // channel count is small
		return fmt.Errorf("%w: %d channels declared, %d provided", errLayout, format.Channels, len(channels))
	}

	frames := len(channels[0])
	for _, channel := range channels {
		if len(channel) != frames {
			return fmt.Errorf("%w: channels differ in length", errLayout)
		}
	}

	quantize, err := quantizer(format.BitDepth)
	if err != nil {
		return err
	}

	numChannels := len(channels)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChannels, SampleRate: format.SampleRate},
		Data:           make([]int, 0, frames*numChannels),
		SourceBitDepth: int(format.BitDepth), //nolint:gosec // small
	}

	for i := range frames {
		for _, channel := range channels {
			buf.Data = append(buf.Data, quantize(math.Max(-1, math.Min(1, channel[i]))))
		}
	}

	encoder := wav.NewEncoder(writer, format.SampleRate, int(format.BitDepth), numChannels, formatPCM) //nolint:gosec // small

	if err = encoder.Write(buf); err != nil {
		return err
	}

	return encoder.Close()
}

// quantizer returns the raw integer mapping for a bit depth. 8-bit WAV is unsigned.
func quantizer(depth types.BitDepth) (func(float64) int, error) {
	switch depth {
	case types.Depth8:
		return func(v float64) int { return int(math.Min(255, math.Round(v*128+128))) }, nil
	case types.Depth16:
		return func(v float64) int { return int(math.Min(math.MaxInt16, math.Round(v*32768))) }, nil
	case types.Depth24:
		return func(v float64) int { return int(math.Min(8388607, math.Round(v*8388608))) }, nil
	case types.Depth32:
		return func(v float64) int { return int(math.Min(math.MaxInt32, math.Round(v*2147483648))) }, nil
	default:
		return nil, fmt.Errorf("%w: %d-bit integer", errLayout, depth)
	}
}

// WriteFile writes a mono signal as a 24-bit PCM WAV file.
func WriteFile(path string, signal *Signal) error {
	return WriteFileAs(path, types.PCMFormat{
		SampleRate: signal.SampleRate,
		BitDepth:   types.Depth24,
		Channels:   1,
	}, signal.Samples)
}

// WriteFileAs writes channels to path in the given format.
func WriteFileAs(path string, format types.PCMFormat, channels ...[]float64) error {
	file, err := os.Create(path) //nolint:gosec // path is intentionally caller-provided
	if err != nil {
		return err
	}

	if err = Encode(file, format, channels...); err != nil {
		_ = file.Close()

		return err
	}

	return file.Close()
}
