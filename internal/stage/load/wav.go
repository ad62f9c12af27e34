package load

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/farcloser/primordium/fault"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/farcloser/spectag/internal/stage/shared"
	"github.com/farcloser/spectag/internal/types"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE

	framesPerBlock = 4096
)

var (
	errNotWAV      = errors.New("not a RIFF/WAVE stream")
	errUnsupported = errors.New("unsupported WAV sample format")
	errChunkSize   = errors.New("chunk size exceeds stream length")
)

// Decode reads an integer PCM WAV stream and returns its sample rate and a mono signal in [-1, 1].
// Channels are averaged per frame. Samples are read in blocks.
// Float and 32-bit extensible layouts are reported as unsupported.
func Decode(reader io.ReadSeeker) (int, []float32, error) {
	if err := checkChunks(reader); err != nil {
		return 0, nil, err
	}

	decoder := wav.NewDecoder(reader)
	if !decoder.IsValidFile() {
		if err := decoder.Err(); err != nil {
			return 0, nil, fmt.Errorf("%w: %w", errNotWAV, err)
		}

		return 0, nil, errNotWAV
	}

	format := types.PCMFormat{
		SampleRate: int(decoder.SampleRate),
		BitDepth:   types.BitDepth(decoder.BitDepth),
		Channels:   uint(decoder.NumChans),
	}

	scale, err := sampleScale(decoder.WavAudioFormat, format.BitDepth)
	if err != nil {
		return 0, nil, err
	}

	numChannels := int(format.Channels) //nolint:gosec // channel count is small
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: numChannels, SampleRate: format.SampleRate},
		Data:   make([]int, framesPerBlock*numChannels),
	}

	var (
		signal []float32
		sum    float64
		filled int
	)

	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}

		if n == 0 {
			break
		}

		// Blocks may end mid-frame; the partial frame carries over.
		for _, raw := range buf.Data[:n] {
			sum += scale(raw)
			filled++

			if filled == numChannels {
				signal = append(signal, float32(clamp(sum/float64(numChannels))))
				sum, filled = 0, 0
			}
		}
	}

	return format.SampleRate, signal, nil
}

// sampleScale maps raw integer samples to [-1, 1]. Extensible headers are accepted for depths that
// cannot carry IEEE float data.
func sampleScale(tag uint16, depth types.BitDepth) (func(int) float64, error) {
	switch {
	case tag == formatPCM:
	case tag == formatExtensible && depth != types.Depth32:
	default:
		return nil, fmt.Errorf("%w: tag 0x%04x, %d bits", errUnsupported, tag, depth)
	}

	switch depth {
	case types.Depth8:
		return func(v int) float64 { return (float64(v) - shared.MaxValue8) / shared.MaxValue8 }, nil
	case types.Depth16:
		return func(v int) float64 { return float64(v) / shared.MaxValue16 }, nil
	case types.Depth24:
		return func(v int) float64 { return float64(v) / shared.MaxValue24 }, nil
	case types.Depth32:
		return func(v int) float64 { return float64(v) / shared.MaxValue32 }, nil
	default:
		return nil, fmt.Errorf("%w: %d bits", errUnsupported, depth)
	}
}

func clamp(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}

	return math.Max(-1, math.Min(1, value))
}

// checkChunks walks the chunk headers up to the data chunk and rejects any chunk claiming more
// bytes than the stream holds, so header sizes never drive allocations. The reader is rewound.
func checkChunks(reader io.ReadSeeker) error {
	length, err := reader.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	if _, err = reader.Seek(12, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	var header [8]byte

	for offset := int64(12); ; {
		if _, err = io.ReadFull(reader, header[:]); err != nil {
			// Missing data chunk, left for the decoder to report.
			break
		}

		offset += int64(len(header))

		if string(header[0:4]) == "data" {
			break
		}

		size := int64(binary.LittleEndian.Uint32(header[4:8]))
		size += size % 2

		if size > length-offset {
			return fmt.Errorf("%w: %w: %q claims %d bytes", errNotWAV, errChunkSize, header[0:4], size)
		}

		if offset, err = reader.Seek(size, io.SeekCurrent); err != nil {
			return fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
	}

	if _, err = reader.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	return nil
}
