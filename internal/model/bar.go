package model

import "time"

// Bar represents one daily OHLCV record.
// Shared by provider, store and serialization (json, parquet).
type Bar struct {
	Timestamp int64   `json:"t" parquet:"t"` // Unix millis of the trading day at 00:00 UTC
	Open      float64 `json:"o" parquet:"o"`
	High      float64 `json:"h" parquet:"h"`
	Low       float64 `json:"l" parquet:"l"`
	Close     float64 `json:"c" parquet:"c"`
	AdjClose  float64 `json:"ac" parquet:"ac"`
	Volume    int64   `json:"v" parquet:"v"`
}

// Day returns the trading day of the bar as UTC midnight.
func (b Bar) Day() time.Time {
	return Day(time.UnixMilli(b.Timestamp))
}

// NewBar builds a bar stamped at the UTC midnight of day.
func NewBar(day time.Time, open, high, low, close, adjClose float64, volume int64) Bar {
	return Bar{
		Timestamp: Day(day).UnixMilli(),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		AdjClose:  adjClose,
		Volume:    volume,
	}
}
