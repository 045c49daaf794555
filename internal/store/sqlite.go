package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/hyperifyio/hylee/internal/archive"
)

//go:embed schema.sql
var schemaSQL string

// SQLite keeps every bulletin as a row so the archive can be queried across
// years. Saving a year replaces whatever was stored for it before.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer at a time; years may be saved concurrently
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveYear implements archive.Sink.
func (s *SQLite) SaveYear(ctx context.Context, rec archive.YearRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bulletins WHERE year = ?`, rec.Year); err != nil {
		return fmt.Errorf("clear year %d: %w", rec.Year, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO bulletins (year, day, position, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, day := range rec.Days.Dates() {
		for i, text := range rec.Days[day] {
			if _, err := stmt.ExecContext(ctx, rec.Year, day, i, text); err != nil {
				return fmt.Errorf("insert %s #%d: %w", day, i, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit year %d: %w", rec.Year, err)
	}
	return nil
}

// Day returns the bulletins stored for an ISO date in page order.
func (s *SQLite) Day(ctx context.Context, day string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT text FROM bulletins WHERE day = ? ORDER BY position`, day)
	if err != nil {
		return nil, fmt.Errorf("query day %s: %w", day, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, rows.Err()
}

// Match is one search hit.
type Match struct {
	Day  string
	Text string
}

// Search returns bulletins containing term, oldest first. Matching uses SQL
// LIKE and is case-insensitive for ASCII only.
func (s *SQLite) Search(ctx context.Context, term string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 100
	}
	pattern := "%" + escapeLike(term) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, text FROM bulletins WHERE text LIKE ? ESCAPE '\' ORDER BY day, position LIMIT ?`,
		pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()
	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Day, &m.Text); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
