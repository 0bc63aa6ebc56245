package model

import (
	"sort"
	"time"
)

// ErrorTick is the persisted row of an ErrorSet entry.
type ErrorTick struct {
	Ticker   string `json:"ErrorTicks" parquet:"ErrorTicks"`
	FailedAt int64  `json:"FailedAt" parquet:"FailedAt"` // Unix millis, 0 when unknown
}

// ErrorSet holds tickers whose last fetch attempt failed, keyed to the time of that failure.
type ErrorSet map[string]time.Time

// NewErrorSet builds a set from persisted rows.
func NewErrorSet(rows []ErrorTick) ErrorSet {
	s := make(ErrorSet, len(rows))
	for _, r := range rows {
		var at time.Time
		if r.FailedAt != 0 {
			at = time.UnixMilli(r.FailedAt).UTC()
		}
		s[r.Ticker] = at
	}
	return s
}

// Has reports whether ticker is in the set.
func (s ErrorSet) Has(ticker string) bool {
	_, ok := s[ticker]
	return ok
}

// Add records a failure of ticker at time at.
func (s ErrorSet) Add(ticker string, at time.Time) { s[ticker] = at.UTC() }

// Remove drops ticker from the set.
func (s ErrorSet) Remove(ticker string) { delete(s, ticker) }

// Clone returns an independent copy.
func (s ErrorSet) Clone() ErrorSet {
	out := make(ErrorSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Tickers returns the members in sorted order.
func (s ErrorSet) Tickers() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Equal compares membership and failure times.
func (s ErrorSet) Equal(other ErrorSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		ov, ok := other[k]
		if !ok || !ov.Equal(v) {
			return false
		}
	}
	return true
}

// Expired reports whether the entry for ticker is older than ttl.
// A zero ttl never expires, so a failed ticker stays excluded until the record is cleared by hand.
func (s ErrorSet) Expired(ticker string, now time.Time, ttl time.Duration) bool {
	at, ok := s[ticker]
	if !ok || ttl <= 0 {
		return false
	}
	return now.Sub(at) >= ttl
}

// Rows converts the set into persisted rows sorted by ticker.
func (s ErrorSet) Rows() []ErrorTick {
	rows := make([]ErrorTick, 0, len(s))
	for _, t := range s.Tickers() {
		var ms int64
		if at := s[t]; !at.IsZero() {
			ms = at.UnixMilli()
		}
		rows = append(rows, ErrorTick{Ticker: t, FailedAt: ms})
	}
	return rows
}
