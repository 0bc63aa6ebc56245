package universe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// File reads tickers from a local file.
// Supported formats:
//   - .txt  : one ticker per line, '#' lines are treated as comments
//   - .json : JSON array of strings
type File struct {
	Path string
}

// Tickers loads and normalizes the file contents.
func (f File) Tickers(context.Context) ([]string, error) {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", f.Path, err)
	}

	var tickers []string
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".json":
		if err := json.Unmarshal(content, &tickers); err != nil {
			return nil, fmt.Errorf("parse JSON %s: %w", f.Path, err)
		}
	case ".txt", "":
		tickers = parseTickersFromText(string(content))
	default:
		return nil, fmt.Errorf("unsupported ticker file extension %q (use .txt or .json)", filepath.Ext(f.Path))
	}

	out := normalize(tickers)
	slog.Info("loaded tickers from file", "count", len(out), "path", f.Path)
	return out, nil
}

// parseTickersFromText treats each non-empty, non-comment line as a ticker.
func parseTickersFromText(s string) []string {
	var tickers []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			tickers = append(tickers, line)
		}
	}
	return tickers
}
