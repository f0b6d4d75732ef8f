package signals

import "GhostRegime/internal/domain/models"

// SMA is the simple mean of the last window values. ok is false with fewer points.
func SMA(values []float64, window int) (float64, bool) {
	if window <= 0 || len(values) < window {
		return 0, false
	}
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window), true
}

// PctReturn is last / value lookback bars earlier - 1. Needs lookback+1 points.
func PctReturn(values []float64, lookback int) (float64, bool) {
	if lookback <= 0 || len(values) < lookback+1 {
		return 0, false
	}
	base := values[len(values)-1-lookback]
	if base <= 0 {
		return 0, false
	}
	return values[len(values)-1]/base - 1, true
}

// Change is last minus the value lookback bars earlier. Used for yields quoted in percent.
func Change(values []float64, lookback int) (float64, bool) {
	if lookback <= 0 || len(values) < lookback+1 {
		return 0, false
	}
	return values[len(values)-1] - values[len(values)-1-lookback], true
}

// Ratio divides num by den on the dates both series share, in date order.
func Ratio(num, den models.Series) []float64 {
	out := make([]float64, 0, min(num.Len(), den.Len()))
	i, j := 0, 0
	for i < len(num.Bars) && j < len(den.Bars) {
		a, b := num.Bars[i], den.Bars[j]
		switch a.Date.Compare(b.Date) {
		case -1:
			i++
		case 1:
			j++
		default:
			if b.Close > 0 {
				out = append(out, a.Close/b.Close)
			}
			i++
			j++
		}
	}
	return out
}

// Compare maps value against a symmetric band: above hi → +1, below lo → −1, else 0.
func Compare(value, lo, hi float64) int {
	switch {
	case value > hi:
		return 1
	case value < lo:
		return -1
	default:
		return 0
	}
}
