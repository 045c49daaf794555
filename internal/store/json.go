// Package store persists finished years.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hyperifyio/hylee/internal/archive"
)

// DefaultPrefix names yearly files hyena_<year>.json.
const DefaultPrefix = "hyena_"

// JSONWriter writes one indented JSON object per year: ISO dates in ascending
// order mapped to their bulletins. Non-ASCII text is written as is.
type JSONWriter struct {
	Dir    string
	Prefix string
}

// Path returns the file a year is written to.
func (w *JSONWriter) Path(year int) string {
	prefix := w.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return filepath.Join(w.Dir, prefix+strconv.Itoa(year)+".json")
}

// SaveYear implements archive.Sink.
func (w *JSONWriter) SaveYear(_ context.Context, rec archive.YearRecord) error {
	b, err := MarshalYear(rec)
	if err != nil {
		return err
	}
	if w.Dir != "" {
		if err := os.MkdirAll(w.Dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	path := w.Path(rec.Year)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// MarshalYear encodes the days of rec. encoding/json sorts map keys, which
// for ISO dates is chronological order.
func MarshalYear(rec archive.YearRecord) ([]byte, error) {
	days := rec.Days
	if days == nil {
		days = archive.DailyRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(days); err != nil {
		return nil, fmt.Errorf("encode year %d: %w", rec.Year, err)
	}
	return buf.Bytes(), nil
}

// LoadYear reads a file written by SaveYear.
func (w *JSONWriter) LoadYear(year int) (archive.YearRecord, error) {
	b, err := os.ReadFile(w.Path(year))
	if err != nil {
		return archive.YearRecord{}, err
	}
	var days archive.DailyRecord
	if err := json.Unmarshal(b, &days); err != nil {
		return archive.YearRecord{}, fmt.Errorf("decode year %d: %w", year, err)
	}
	if days == nil {
		return archive.YearRecord{}, errors.New("empty year file")
	}
	return archive.YearRecord{Year: year, Days: days}, nil
}
