package shared

const (
	MaxValue8  = 128.0        // 2^7 8-bit unsigned PCM midpoint and normalization divisor
	MaxValue16 = 32768.0      // 2^15 16-bit signed PCM normalization divisor
	MaxValue24 = 8388608.0    // 2^23 24-bit signed PCM normalization divisor
	MaxValue32 = 2147483648.0 // 2^31 32-bit signed PCM normalization divisor
)

// Step names, in their canonical pipeline order.
const (
	StepLoadAudio         = "load_audio"
	StepFeatureExtraction = "feature_extraction"
	StepThreshold         = "threshold"
	StepStateMachine      = "state_machine"
	StepGapFill           = "gap_fill"
	StepTrim              = "trim"
	StepNoiseRemoval      = "noise_removal"
)

// Tolerance absorbs floating point error when comparing derived durations.
const Tolerance = 1e-9
