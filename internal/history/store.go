package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Conversion is one recorded rewrite.
type Conversion struct {
	ID           int64
	SourcePath   string
	OutputPath   string
	Profile      string
	ActivityTime time.Time
	ConvertedAt  time.Time
}

// Store persists conversion records.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_path TEXT NOT NULL,
    output_path TEXT NOT NULL,
    profile TEXT NOT NULL,
    activity_time TEXT,
    converted_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_source ON conversions(source_path);
`

// Open initializes or connects to the history database at path,
// creating parent directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a conversion and returns it with its assigned id.
func (s *Store) Record(ctx context.Context, c Conversion) (Conversion, error) {
	if c.ConvertedAt.IsZero() {
		c.ConvertedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversions (source_path, output_path, profile, activity_time, converted_at)
         VALUES (?, ?, ?, ?, ?)`,
		c.SourcePath,
		c.OutputPath,
		c.Profile,
		nullableTime(c.ActivityTime),
		c.ConvertedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Conversion{}, fmt.Errorf("insert conversion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Conversion{}, fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id
	return c, nil
}

// Seen reports whether a source path was already converted.
func (s *Store) Seen(ctx context.Context, sourcePath string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM conversions WHERE source_path = ? LIMIT 1`, sourcePath)
	var one int
	err := row.Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query conversion: %w", err)
	}
	return true, nil
}

// List returns the most recent conversions, newest first. A limit of
// zero returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Conversion, error) {
	query := `SELECT id, source_path, output_path, profile, activity_time, converted_at
              FROM conversions ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		var (
			c           Conversion
			activityRaw sql.NullString
			convertedAt string
		)
		if err := rows.Scan(&c.ID, &c.SourcePath, &c.OutputPath, &c.Profile, &activityRaw, &convertedAt); err != nil {
			return nil, err
		}
		if activityRaw.Valid {
			if t, err := time.Parse(time.RFC3339Nano, activityRaw.String); err == nil {
				c.ActivityTime = t
			}
		}
		if t, err := time.Parse(time.RFC3339Nano, convertedAt); err == nil {
			c.ConvertedAt = t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Clear removes all records.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversions`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}
