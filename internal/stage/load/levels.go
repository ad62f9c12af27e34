package load

import "math"

const floorDb = -120.0

// Levels summarizes a decoded signal. All values are in dBFS, floored at -120.
type Levels struct {
	PeakDb     float64
	RmsDb      float64
	DCOffsetDb float64
}

// Measure computes the peak, RMS and DC offset of a mono signal.
func Measure(signal []float32) Levels {
	if len(signal) == 0 {
		return Levels{PeakDb: floorDb, RmsDb: floorDb, DCOffsetDb: floorDb}
	}

	var peak, sum, sumSquares float64

	for _, v := range signal {
		sample := float64(v)
		peak = math.Max(peak, math.Abs(sample))
		sum += sample
		sumSquares += sample * sample
	}

	count := float64(len(signal))

	return Levels{
		PeakDb:     toDb(peak),
		RmsDb:      toDb(math.Sqrt(sumSquares / count)),
		DCOffsetDb: toDb(math.Abs(sum / count)),
	}
}

func toDb(amplitude float64) float64 {
	db := 20 * math.Log10(amplitude)
	if math.IsInf(db, -1) || math.IsNaN(db) || db < floorDb {
		return floorDb
	}

	return db
}
