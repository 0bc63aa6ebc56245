package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"us-screener/internal/model"
	"us-screener/internal/saver"
)

func newStore(t *testing.T, f saver.Format) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "cache"), f)
}

func TestGetAbsent(t *testing.T) {
	s := newStore(t, saver.Parquet)
	series, ok, err := s.Get("AAPL")
	if err != nil || ok || series != nil {
		t.Fatalf("Get absent = (%v, %v, %v), want (nil, false, nil)", series, ok, err)
	}
	if _, err := os.Stat(s.Dir); !os.IsNotExist(err) {
		t.Errorf("reading must not create %s", s.Dir)
	}
}

func TestPutCreatesDirAndRoundTrips(t *testing.T) {
	for _, f := range []saver.Format{saver.Parquet, saver.JSON} {
		t.Run(string(f), func(t *testing.T) {
			s := newStore(t, f)
			d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
			in := model.Series{model.NewBar(d, 1, 2, 0.5, 1.5, 1.4, 100)}
			if err := s.Put("BRK/A", in); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, ok, err := s.Get("BRK/A")
			if err != nil || !ok {
				t.Fatalf("Get = (%v, %v)", ok, err)
			}
			if len(got) != 1 || got[0] != in[0] {
				t.Errorf("Get = %+v, want %+v", got, in)
			}
		})
	}
}

func TestTickerNamedErrorDoesNotCollide(t *testing.T) {
	s := newStore(t, saver.Parquet)
	set := model.ErrorSet{}
	set.Add("ZZZZ", time.Unix(1700000000, 0))
	if err := s.PutErrorSet(set); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("error", model.Series{model.NewBar(time.Now(), 1, 1, 1, 1, 1, 1)}); err != nil {
		t.Fatal(err)
	}
	got, err := s.ErrorSet()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(set) {
		t.Errorf("ErrorSet = %v, want %v", got, set)
	}
}

func TestErrorSetEmptyWhenAbsent(t *testing.T) {
	s := newStore(t, saver.JSON)
	set, err := s.ErrorSet()
	if err != nil {
		t.Fatal(err)
	}
	if set == nil || len(set) != 0 {
		t.Errorf("ErrorSet = %v, want empty non-nil set", set)
	}
}

func TestResultEmptyWhenAbsent(t *testing.T) {
	s := newStore(t, saver.Parquet)
	rows, err := s.Result(FilteredTicks)
	if err != nil {
		t.Fatal(err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("Result = %v, want empty table", rows)
	}

	want := []model.ClassifiedTicker{{Symbol: "AAA", Type: "Overbought"}, {Symbol: "BBB", Type: "Oversold"}}
	if err := s.PutResult(FilteredTicks, want); err != nil {
		t.Fatal(err)
	}
	rows, err = s.Result(FilteredTicks)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0] != want[0] || rows[1] != want[1] {
		t.Errorf("Result = %+v, want %+v", rows, want)
	}
}

func TestPutFailureIsReturned(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "cache")
	if err := os.WriteFile(blocker, []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}
	s := New(blocker, saver.JSON)
	if err := s.Put("AAPL", model.Series{}); err == nil {
		t.Fatal("Put under a regular file should fail")
	}
}
