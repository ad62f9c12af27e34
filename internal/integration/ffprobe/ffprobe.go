package ffprobe

import "time"

const (
	name = "ffprobe"
	// Probing reads headers only, but network mounts and sleeping disks still need headroom.
	timeout = 60 * time.Second
)
