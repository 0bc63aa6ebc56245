package indicator

import "math"

// Bands holds per-row Bollinger Bands.
type Bands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Bollinger computes an SMA over period with bands k population standard deviations away.
// A row is NaN until period closes are available or when its window holds a NaN.
func Bollinger(closes []float64, period int, k float64) (Bands, error) {
	if period <= 0 {
		return Bands{}, ErrPeriod
	}
	n := len(closes)
	b := Bands{Middle: make([]float64, n), Upper: make([]float64, n), Lower: make([]float64, n)}
	for i := range closes {
		b.Middle[i], b.Upper[i], b.Lower[i] = math.NaN(), math.NaN(), math.NaN()
		if i+1 < period {
			continue
		}
		window := closes[i+1-period : i+1]
		var sum float64
		for _, v := range window {
			sum += v
		}
		mean := sum / float64(period)
		if math.IsNaN(mean) {
			continue
		}
		var sq float64
		for _, v := range window {
			sq += (v - mean) * (v - mean)
		}
		std := math.Sqrt(sq / float64(period))
		b.Middle[i] = mean
		b.Upper[i] = mean + k*std
		b.Lower[i] = mean - k*std
	}
	return b, nil
}

// AboveUpper flags rows whose close is strictly above the upper band.
func (b Bands) AboveUpper(closes []float64) []bool {
	out := make([]bool, len(closes))
	for i, c := range closes {
		out[i] = c > b.Upper[i]
	}
	return out
}

// BelowLower flags rows whose close is strictly below the lower band.
func (b Bands) BelowLower(closes []float64) []bool {
	out := make([]bool, len(closes))
	for i, c := range closes {
		out[i] = c < b.Lower[i]
	}
	return out
}
