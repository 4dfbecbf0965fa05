package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the name of the history database inside its directory.
const FileName = "docepub.db"

// timestampLayout has a fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when the history database does not exist and
// Options.CreateIfNotExists is false.
var ErrNotFound = errors.New("history database not found")

// Status values of a recorded build.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// HistoryDB stores build records in SQLite.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Record is one finished build.
type Record struct {
	// ID is assigned by the database.
	ID int64

	BaseURL    string
	Title      string
	Format     string
	OutputFile string

	// Pages, Images and Sections count what the build processed.
	Pages    int
	Images   int
	Sections int

	// Digest is the hex SHA3-256 of the assembled document, empty when the
	// build failed before assembly.
	Digest string

	StartedAt time.Time
	Duration  time.Duration

	// Status is StatusSucceeded or StatusFailed.
	Status string

	// Error is the failure message of a failed build.
	Error string
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return h, nil
}

// Path returns the path of the database file.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL DEFAULT '',
		output_file TEXT NOT NULL DEFAULT '',
		pages INTEGER NOT NULL DEFAULT 0,
		images INTEGER NOT NULL DEFAULT 0,
		sections INTEGER NOT NULL DEFAULT 0,
		digest TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_builds_base_url ON builds(base_url);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RecordBuild appends r to the history and sets r.ID.
func (h *HistoryDB) RecordBuild(ctx context.Context, r *Record) error {
	query := `
	INSERT INTO builds
		(base_url, title, format, output_file, pages, images, sections, digest, started_at, duration_ms, status, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := h.db.ExecContext(ctx, query,
		r.BaseURL, r.Title, r.Format, r.OutputFile,
		r.Pages, r.Images, r.Sections, r.Digest,
		r.StartedAt.UTC().Format(timestampLayout), r.Duration.Milliseconds(),
		r.Status, r.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record build: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get build id: %w", err)
	}
	r.ID = id
	return nil
}

// ListBuilds returns the most recent builds first. A limit of zero or less
// returns all of them.
func (h *HistoryDB) ListBuilds(ctx context.Context, limit int) ([]Record, error) {
	query := `
	SELECT id, base_url, title, format, output_file, pages, images, sections,
		digest, started_at, duration_ms, status, error
	FROM builds
	ORDER BY started_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return h.queryBuilds(ctx, query, args...)
}

// ListBuildsFor returns the builds of one documentation root, most recent
// first.
func (h *HistoryDB) ListBuildsFor(ctx context.Context, baseURL string) ([]Record, error) {
	query := `
	SELECT id, base_url, title, format, output_file, pages, images, sections,
		digest, started_at, duration_ms, status, error
	FROM builds
	WHERE base_url = ?
	ORDER BY started_at DESC, id DESC
	`

	return h.queryBuilds(ctx, query, baseURL)
}

func (h *HistoryDB) queryBuilds(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r          Record
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &r.BaseURL, &r.Title, &r.Format, &r.OutputFile,
			&r.Pages, &r.Images, &r.Sections, &r.Digest,
			&startedAt, &durationMS, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		r.StartedAt = parseTimestamp(startedAt)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}

	return records, rows.Err()
}

// Digest returns the hex SHA3-256 of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// timestampFormats are the formats SQLite may hand back, most specific first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
