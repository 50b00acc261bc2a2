package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/linkcheck/internal/model"
)

// FileName is the name of the history database file.
const FileName = "linkcheck.db"

// HistoryDB provides SQLite-based storage for finished runs.
//
// Design decision: Runs are stored whole as JSON so that any past run can be
// re-rendered or compared without a schema per model field. The links table
// duplicates a few fields of each record so per-URL history stays a plain
// indexed query.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s: %w", dbPath, ErrNotFound)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store complete link check results as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		run_json TEXT NOT NULL,
		summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- Links store one row per verified URL of a run
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		content_digest TEXT,
		has_failure INTEGER NOT NULL DEFAULT 0,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_links_url ON links(url);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a finished run and its links in one transaction.
// It returns the ID of the stored run.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.Run) (id int64, err error) {
	runJSON, err := json.Marshal(run)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize run: %w", err)
	}
	summaryJSON, err := json.Marshal(model.Summarize(run))
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (seed, timestamp, run_json, summary) VALUES (?, ?, ?, ?)`,
		run.SeedURL,
		formatTimestamp(run.StartedAt),
		string(runJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	if run.Table != nil {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO links (run_id, url, status_code, content_digest, has_failure) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("failed to prepare link insert: %w", err)
		}
		defer stmt.Close()

		var insertErr error
		run.Table.Each(func(u string, r *model.LinkRecord) {
			if insertErr != nil {
				return
			}
			_, insertErr = stmt.ExecContext(ctx, id, u, r.StatusCode, r.ContentDigest, r.Checks.HasFailure())
		})
		if insertErr != nil {
			return 0, fmt.Errorf("failed to save link: %w", insertErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// RunMetadata contains summary information about a stored run.
// This is used for displaying history without loading the full run.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Seed is the URL the run started from.
	Seed string

	// Timestamp is when the run started.
	Timestamp time.Time

	// Summary contains the totals of the run.
	Summary *model.Summary
}

// ListRuns returns metadata of every run of a seed, newest first.
func (hdb *HistoryDB) ListRuns(ctx context.Context, seed string) ([]RunMetadata, error) {
	query := `
	SELECT id, seed, timestamp, summary
	FROM runs
	WHERE seed = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	results := make([]RunMetadata, 0)
	for rows.Next() {
		var (
			meta        RunMetadata
			timestamp   string
			summaryJSON sql.NullString
		)
		if err := rows.Scan(&meta.ID, &meta.Seed, &timestamp, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)

		meta.Summary = &model.Summary{SeedURL: meta.Seed, StatusCounts: make(map[int]int)}
		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), meta.Summary); err != nil {
				meta.Summary = &model.Summary{SeedURL: meta.Seed, StatusCounts: make(map[int]int)}
			}
		}
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun retrieves a run by its database ID.
// It returns ErrNotFound if no such run exists.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	var runJSON string
	err := hdb.db.QueryRowContext(ctx, `SELECT run_json FROM runs WHERE id = ?`, id).Scan(&runJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return decodeRun(runJSON)
}

// LatestRuns returns up to n runs of a seed, newest first.
func (hdb *HistoryDB) LatestRuns(ctx context.Context, seed string, n int) ([]*model.Run, error) {
	query := `
	SELECT run_json FROM runs
	WHERE seed = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`

	rows, err := hdb.db.QueryContext(ctx, query, seed, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*model.Run, 0, n)
	for rows.Next() {
		var runJSON string
		if err := rows.Scan(&runJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run, err := decodeRun(runJSON)
		if err != nil {
			continue // Skip malformed runs
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ListSeeds returns every seed URL with at least one stored run.
func (hdb *HistoryDB) ListSeeds(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT DISTINCT seed FROM runs ORDER BY seed`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds: %w", err)
	}
	defer rows.Close()

	seeds := make([]string, 0)
	for rows.Next() {
		var seed string
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan seed: %w", err)
		}
		seeds = append(seeds, seed)
	}

	return seeds, rows.Err()
}

// LinkSnapshot is the state of one URL in one stored run.
type LinkSnapshot struct {
	RunID         int64
	Timestamp     time.Time
	StatusCode    int
	ContentDigest string
	HasFailure    bool
}

// LinkHistory returns the state of a URL across every stored run, newest first.
func (hdb *HistoryDB) LinkHistory(ctx context.Context, url string) ([]LinkSnapshot, error) {
	query := `
	SELECT l.run_id, r.timestamp, l.status_code, l.content_digest, l.has_failure
	FROM links l
	JOIN runs r ON r.id = l.run_id
	WHERE l.url = ?
	ORDER BY r.timestamp DESC, r.id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get link history: %w", err)
	}
	defer rows.Close()

	results := make([]LinkSnapshot, 0)
	for rows.Next() {
		var (
			snap      LinkSnapshot
			timestamp string
			digest    sql.NullString
		)
		if err := rows.Scan(&snap.RunID, &timestamp, &snap.StatusCode, &digest, &snap.HasFailure); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		snap.Timestamp = parseTimestamp(timestamp)
		snap.ContentDigest = digest.String
		results = append(results, snap)
	}

	return results, rows.Err()
}

// decodeRun parses a stored run.
func decodeRun(runJSON string) (*model.Run, error) {
	run := &model.Run{}
	if err := json.Unmarshal([]byte(runJSON), run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}
	if run.Table == nil {
		run.Table = model.NewStatusTable()
	}
	return run, nil
}

// storedTimestampFormat sorts lexicographically in time order.
const storedTimestampFormat = "2006-01-02T15:04:05.000000000Z"

// formatTimestamp formats t for storage.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimestampFormat)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	storedTimestampFormat,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
