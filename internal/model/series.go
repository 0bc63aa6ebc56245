package model

import (
	"sort"
	"time"
)

// Series is the daily price history of one ticker ordered by Timestamp, one bar per day.
type Series []Bar

// Normalize sorts the series by day and drops repeated days; the first occurrence wins.
func (s Series) Normalize() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	n := 0
	for i, b := range out {
		if i > 0 && b.Timestamp == out[n-1].Timestamp {
			continue
		}
		out[n] = b
		n++
	}
	return out[:n]
}

// Since keeps bars on or after day.
func (s Series) Since(day time.Time) Series {
	cut := Day(day).UnixMilli()
	out := make(Series, 0, len(s))
	for _, b := range s {
		if b.Timestamp >= cut {
			out = append(out, b)
		}
	}
	return out
}

// Until keeps bars on or before day.
func (s Series) Until(day time.Time) Series {
	cut := Day(day).UnixMilli()
	out := make(Series, 0, len(s))
	for _, b := range s {
		if b.Timestamp <= cut {
			out = append(out, b)
		}
	}
	return out
}

// FirstDay returns the day of the first bar. The series must not be empty.
func (s Series) FirstDay() time.Time { return s[0].Day() }

// LastDay returns the day of the last bar. The series must not be empty.
func (s Series) LastDay() time.Time { return s[len(s)-1].Day() }

// CombineFirst returns the union of both series ordered by day.
// On a day present in both, the receiver's bar is kept.
func (s Series) CombineFirst(other Series) Series {
	merged := make(Series, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	return merged.Normalize()
}

// AdjCloses returns the adjusted close column.
func (s Series) AdjCloses() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.AdjClose
	}
	return out
}
