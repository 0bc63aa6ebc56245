// Package indicator computes per-row technical indicator series over closing prices.
// Rows without enough history are NaN; NaN inputs are never filled.
package indicator

import (
	"errors"
	"math"
)

// ErrPeriod is returned for a non-positive period.
var ErrPeriod = errors.New("period must be positive")

// RSI computes the relative strength index for every row using Wilder smoothing, an exponential
// average with alpha 1/period seeded with a zero change on the first row.
// A value is available once period rows have been seen; a NaN close is NaN and restarts the warm-up.
func RSI(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrPeriod
	}
	alpha := 1 / float64(period)
	out := make([]float64, len(closes))
	var avgGain, avgLoss float64
	rows := 0 // valid rows since the last NaN
	for i, cur := range closes {
		out[i] = math.NaN()
		if math.IsNaN(cur) {
			avgGain, avgLoss, rows = 0, 0, 0
			continue
		}
		rows++
		if rows > 1 {
			gain, loss := 0.0, 0.0
			if change := cur - closes[i-1]; change > 0 {
				gain = change
			} else {
				loss = -change
			}
			avgGain += alpha * (gain - avgGain)
			avgLoss += alpha * (loss - avgLoss)
		}
		if rows >= period {
			out[i] = rsiValue(avgGain, avgLoss)
		}
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// Last returns the final value of a series, NaN when it is empty.
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
