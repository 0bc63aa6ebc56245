// Package store is the on-disk cache: one record per ticker series, one record for the
// error set and one record per named result table.
package store

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"us-screener/internal/model"
	"us-screener/internal/saver"
)

// FilteredTicks is the name of the screening result table.
const FilteredTicks = "filteredTicks"

// Store keeps records under Dir using the configured row format.
// Distinct tickers map to distinct files, so concurrent workers never share a key.
type Store struct {
	Dir    string
	Format saver.Format
}

// New creates a Store rooted at dir. Nothing is created on disk until the first write.
func New(dir string, format saver.Format) *Store {
	return &Store{Dir: dir, Format: format}
}

func (s *Store) seriesPath(ticker string) string {
	return filepath.Join(s.Dir, "series", url.PathEscape(ticker)+"."+s.Format.Extension())
}

func (s *Store) errorPath() string {
	return filepath.Join(s.Dir, "error."+s.Format.Extension())
}

func (s *Store) resultPath(name string) string {
	return filepath.Join(s.Dir, "results", url.PathEscape(name)+"."+s.Format.Extension())
}

// Get returns the cached series of ticker. ok is false when nothing has been cached yet.
func (s *Store) Get(ticker string) (series model.Series, ok bool, err error) {
	bars, err := saver.Load[model.Bar](s.Format, s.seriesPath(ticker))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read series %s: %w", ticker, err)
	}
	return model.Series(bars), true, nil
}

// Put overwrites the cached series of ticker.
func (s *Store) Put(ticker string, series model.Series) error {
	if err := saver.Save(s.Format, s.seriesPath(ticker), []model.Bar(series)); err != nil {
		return fmt.Errorf("write series %s: %w", ticker, err)
	}
	return nil
}

// ErrorSet returns the persisted error tickers, empty when none were recorded.
func (s *Store) ErrorSet() (model.ErrorSet, error) {
	rows, err := saver.Load[model.ErrorTick](s.Format, s.errorPath())
	if errors.Is(err, os.ErrNotExist) {
		return model.ErrorSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read error set: %w", err)
	}
	return model.NewErrorSet(rows), nil
}

// PutErrorSet overwrites the persisted error set.
func (s *Store) PutErrorSet(set model.ErrorSet) error {
	if err := saver.Save(s.Format, s.errorPath(), set.Rows()); err != nil {
		return fmt.Errorf("write error set: %w", err)
	}
	return nil
}

// Result returns the named table, empty when it was never written.
func (s *Store) Result(name string) ([]model.ClassifiedTicker, error) {
	rows, err := saver.Load[model.ClassifiedTicker](s.Format, s.resultPath(name))
	if errors.Is(err, os.ErrNotExist) {
		return []model.ClassifiedTicker{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read result %s: %w", name, err)
	}
	return rows, nil
}

// PutResult overwrites the named table.
func (s *Store) PutResult(name string, rows []model.ClassifiedTicker) error {
	if err := saver.Save(s.Format, s.resultPath(name), rows); err != nil {
		return fmt.Errorf("write result %s: %w", name, err)
	}
	return nil
}
