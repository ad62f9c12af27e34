package ffmpeg

import "time"

const (
	name = "ffmpeg"
	// Long recordings of compressed audio take a while to decode on slow hosts.
	timeout = 5 * time.Minute
	// Decoded output is always little-endian 24-bit integer PCM, whatever the source depth.
	codec = "pcm_s24le"
)
