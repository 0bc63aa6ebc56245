// Package universe supplies the list of tickers to scan.
package universe

import (
	"context"
	"sort"
	"strings"
	"time"

	"us-screener/internal/model"
)

// Source lists the tickers of a universe.
type Source interface {
	Tickers(ctx context.Context) ([]string, error)
}

// Static is a fixed list, used for tests and for tickers given on the command line.
type Static []string

// Tickers returns the list normalized.
func (s Static) Tickers(context.Context) ([]string, error) {
	return normalize(s), nil
}

// Exclude returns tickers minus the known-bad ones. With ttl <= 0 an error entry never expires;
// otherwise entries older than ttl are handed back for a retry.
func Exclude(tickers []string, errs model.ErrorSet, now time.Time, ttl time.Duration) (keep []string, skipped int) {
	keep = make([]string, 0, len(tickers))
	for _, t := range tickers {
		if errs.Has(t) && !errs.Expired(t, now, ttl) {
			skipped++
			continue
		}
		keep = append(keep, t)
	}
	return keep, skipped
}

// normalize upper-cases, trims, drops empties and duplicates, and sorts.
func normalize(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(strings.ToUpper(t))
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
