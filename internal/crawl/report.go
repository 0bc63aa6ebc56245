package crawl

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type failedEntry struct {
	Ticker    string `json:"ticker"`
	DateRange string `json:"date_range"`
	Reason    string `json:"reason"`
}

func successList[T any](b *Batch[T]) []string {
	out := make([]string, 0, b.Succeeded)
	for _, o := range b.Outcomes {
		if o.Ok() {
			out = append(out, o.Ticker)
		}
	}
	sort.Strings(out)
	return out
}

func failedEntries[T any](b *Batch[T]) []failedEntry {
	out := make([]failedEntry, 0, b.Failed)
	for _, o := range b.Outcomes {
		if !o.Ok() {
			out = append(out, failedEntry{Ticker: o.Ticker, DateRange: b.Window.String(), Reason: o.Err.Error()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// writeRunReport replaces the last-run files. A list that is empty this run removes its stale file.
func writeRunReport(dir string, successList []string, failedList []failedEntry) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := writeReportFile(filepath.Join(dir, ".lastrun.success.json"), successList, len(successList)); err != nil {
		return err
	}
	return writeReportFile(filepath.Join(dir, ".lastrun.failed.json"), failedList, len(failedList))
}

func writeReportFile(p string, v any, n int) error {
	if n == 0 {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return err
	}
	slog.Debug("report wrote", "path", p, "count", n)
	return nil
}

func joinFailedReasons(failedList []failedEntry) string {
	if len(failedList) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range failedList {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Ticker)
		b.WriteString(": ")
		b.WriteString(f.Reason)
		if i >= 4 && len(failedList) > 6 {
			b.WriteString(fmt.Sprintf(" (+%d more)", len(failedList)-5))
			break
		}
	}
	return b.String()
}
