package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperifyio/hylee/internal/archive"
)

func openTempSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "hylee.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite(" "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestSQLite_SaveYearAndQuery(t *testing.T) {
	s := openTempSQLite(t)
	ctx := context.Background()
	if err := s.SaveYear(ctx, sampleYear()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Day(ctx, "2004-03-12")
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if len(got) != 2 || got[0] != "Druhý den" {
		t.Fatalf("day bulletins=%q", got)
	}

	matches, err := s.Search(ctx, "den", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 || matches[0].Day != "2004-01-05" || matches[1].Day != "2004-03-12" {
		t.Fatalf("matches=%+v", matches)
	}

	matches, err = s.Search(ctx, "100%", 10)
	if err != nil || len(matches) != 0 {
		t.Fatalf("literal percent should not match everything: %+v err=%v", matches, err)
	}
}

func TestSQLite_SaveYearReplaces(t *testing.T) {
	s := openTempSQLite(t)
	ctx := context.Background()
	if err := s.SaveYear(ctx, sampleYear()); err != nil {
		t.Fatalf("save: %v", err)
	}
	again := archive.YearRecord{Year: 2004, Days: archive.DailyRecord{"2004-01-05": {"Opraveno"}}}
	if err := s.SaveYear(ctx, again); err != nil {
		t.Fatalf("save again: %v", err)
	}
	if got, _ := s.Day(ctx, "2004-03-12"); len(got) != 0 {
		t.Fatalf("stale rows survived: %q", got)
	}
	if got, _ := s.Day(ctx, "2004-01-05"); len(got) != 1 || got[0] != "Opraveno" {
		t.Fatalf("replacement missing: %q", got)
	}
}
