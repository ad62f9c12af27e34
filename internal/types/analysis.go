package types

// Analysis is the state threaded through the pipeline stages of a single run.
// It is created once per run, owned by that run, and discarded afterwards.
type Analysis struct {
	SourcePath string
	Config     Config

	// Set by the loader.
	SampleRate int
	Signal     []float32 // mono, [-1, 1]

	// Set by band energy extraction. Energies[band][chunk index].
	Chunks   []Chunk
	Energies map[string][]float64

	// Set by threshold estimation, one scalar per band.
	Thresholds map[string]float64

	// Diagnostics only. Nothing downstream reads it.
	Metadata map[string]any
}

// NewAnalysis returns an empty analysis for the given source and configuration.
func NewAnalysis(sourcePath string, cfg Config) *Analysis {
	return &Analysis{
		SourcePath: sourcePath,
		Config:     cfg.Clone(),
		Energies:   map[string][]float64{},
		Thresholds: map[string]float64{},
		Metadata:   map[string]any{},
	}
}

// Energy returns the energy of a band at a chunk index, or 0 when absent.
func (a *Analysis) Energy(band string, index int) float64 {
	values := a.Energies[band]
	if index < 0 || index >= len(values) {
		return 0
	}

	return values[index]
}

// PrimaryBand returns the configured primary band.
func (a *Analysis) PrimaryBand() (Band, bool) {
	return a.Config.Bands.Primary()
}

// PrimaryThreshold returns the threshold of the primary band, or 0 when not computed.
func (a *Analysis) PrimaryThreshold() float64 {
	band, ok := a.PrimaryBand()
	if !ok {
		return 0
	}

	return a.Thresholds[band.ID]
}
