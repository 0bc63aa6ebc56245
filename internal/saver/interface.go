package saver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format selects how rows are encoded on disk.
type Format string

const (
	Parquet Format = "parquet"
	JSON    Format = "json"
)

// ErrUnsupportedFormat is returned for an unknown SAVE_FORMAT.
var ErrUnsupportedFormat = errors.New("unsupported save format")

// ParseFormat validates a format name (parquet, json).
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case Parquet:
		return Parquet, nil
	case JSON:
		return JSON, nil
	default:
		return "", fmt.Errorf("%w %q (use: parquet, json)", ErrUnsupportedFormat, s)
	}
}

// Extension is the file extension for the format.
func (f Format) Extension() string { return string(f) }

// Save writes rows to path. The file is written beside path and renamed into place,
// so a reader sees either the old record or the new one.
func Save[T any](f Format, path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	var err error
	switch f {
	case Parquet:
		err = saveParquet(tmp, rows)
	case JSON:
		err = saveJSON(tmp, rows)
	default:
		err = fmt.Errorf("%w %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads rows from path. A missing file surfaces as an error matching os.ErrNotExist.
func Load[T any](f Format, path string) ([]T, error) {
	switch f {
	case Parquet:
		return loadParquet[T](path)
	case JSON:
		return loadJSON[T](path)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, f)
	}
}
