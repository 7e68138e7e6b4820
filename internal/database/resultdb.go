package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitescout/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "sitescout.db"

// DefaultPageSize is used by ListResults when pageSize is not positive.
const DefaultPageSize = 20

// MaxPageSize caps the page size of ListResults and the limit of SearchResults.
const MaxPageSize = 100

// ResultDB provides SQLite-based storage for scrape results.
type ResultDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ResultDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
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

// Open opens or creates a ResultDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ResultDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
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

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ResultDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *ResultDB) Path() string {
	return rdb.dbPath
}

// Ping verifies the database connection.
func (rdb *ResultDB) Ping(ctx context.Context) error {
	return rdb.db.PingContext(ctx)
}

// Close closes the database connection.
func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

func (rdb *ResultDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		company_name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		page_count INTEGER NOT NULL DEFAULT 0,
		total_pages_found INTEGER NOT NULL DEFAULT 0,
		partial INTEGER NOT NULL DEFAULT 0,
		result_json TEXT NOT NULL,
		scraped_at TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_results_scraped_at ON results(scraped_at);
	CREATE INDEX IF NOT EXISTS idx_results_company ON results(company_name);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// Summary is the listing view of a stored result.
type Summary struct {
	ID              int64     `json:"id"`
	URL             string    `json:"url"`
	CompanyName     string    `json:"company_name"`
	Description     string    `json:"description,omitempty"`
	PageCount       int       `json:"page_count"`
	TotalPagesFound int       `json:"total_pages_found"`
	Partial         bool      `json:"partial,omitempty"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// Record is a stored result together with its database ID.
type Record struct {
	ID     int64               `json:"id"`
	Result *model.ScrapeResult `json:"result"`
}

// SaveResult inserts result or replaces the stored result with the same
// seed URL, and returns the row ID.
func (rdb *ResultDB) SaveResult(ctx context.Context, result *model.ScrapeResult) (int64, error) {
	if result == nil || result.SeedURL == "" {
		return 0, errors.New("cannot save a result without a seed url")
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result: %w", err)
	}

	scrapedAt := result.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}

	query := `
	INSERT INTO results (url, company_name, description, page_count, total_pages_found, partial, result_json, scraped_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		company_name = excluded.company_name,
		description = excluded.description,
		page_count = excluded.page_count,
		total_pages_found = excluded.total_pages_found,
		partial = excluded.partial,
		result_json = excluded.result_json,
		scraped_at = excluded.scraped_at,
		updated_at = CURRENT_TIMESTAMP
	RETURNING id
	`

	var id int64
	err = rdb.db.QueryRowContext(ctx, query,
		result.SeedURL,
		result.CompanyName,
		result.Description,
		result.PageCount(),
		result.TotalPagesFound,
		result.Partial,
		string(resultJSON),
		formatTimestamp(scrapedAt),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save result: %w", err)
	}
	return id, nil
}

// GetResultByURL returns the stored result for a seed URL.
func (rdb *ResultDB) GetResultByURL(ctx context.Context, url string) (*Record, error) {
	return rdb.getResult(ctx, "url = ?", url)
}

// GetResultByID returns the stored result with the given ID.
func (rdb *ResultDB) GetResultByID(ctx context.Context, id int64) (*Record, error) {
	return rdb.getResult(ctx, "id = ?", id)
}

func (rdb *ResultDB) getResult(ctx context.Context, where string, arg any) (*Record, error) {
	query := "SELECT id, result_json FROM results WHERE " + where

	var record Record
	var resultJSON string
	err := rdb.db.QueryRowContext(ctx, query, arg).Scan(&record.ID, &resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var result model.ScrapeResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}
	record.Result = &result
	return &record, nil
}

// ListResults returns one page of summaries, newest first, and the total
// number of stored results. page starts at 1.
func (rdb *ResultDB) ListResults(ctx context.Context, page, pageSize int) ([]Summary, int, error) {
	if page < 1 {
		page = 1
	}
	pageSize = ClampPageSize(pageSize)

	var total int
	if err := rdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count results: %w", err)
	}

	query := summarySelect + `
	ORDER BY scraped_at DESC, id DESC
	LIMIT ? OFFSET ?
	`
	summaries, err := rdb.querySummaries(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// SearchResults returns summaries whose URL, company name or description
// contains query, case-insensitively, newest first.
func (rdb *ResultDB) SearchResults(ctx context.Context, query string, limit int) ([]Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	q := summarySelect + `
	WHERE lower(company_name) LIKE ? ESCAPE '\'
		OR lower(description) LIKE ? ESCAPE '\'
		OR lower(url) LIKE ? ESCAPE '\'
	ORDER BY scraped_at DESC, id DESC
	LIMIT ?
	`
	return rdb.querySummaries(ctx, q, pattern, pattern, pattern, ClampPageSize(limit))
}

// DeleteResult removes the stored result with the given ID.
func (rdb *ResultDB) DeleteResult(ctx context.Context, id int64) error {
	res, err := rdb.db.ExecContext(ctx, "DELETE FROM results WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const summarySelect = `
	SELECT id, url, company_name, description, page_count, total_pages_found, partial, scraped_at
	FROM results
	`

func (rdb *ResultDB) querySummaries(ctx context.Context, query string, args ...any) ([]Summary, error) {
	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		var scrapedAt string
		if err := rows.Scan(&s.ID, &s.URL, &s.CompanyName, &s.Description,
			&s.PageCount, &s.TotalPagesFound, &s.Partial, &scrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		s.ScrapedAt = parseTimestamp(scrapedAt)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ClampPageSize returns n bounded to [1, MaxPageSize]; a non-positive n
// becomes DefaultPageSize.
func ClampPageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}

// escapeLike escapes the LIKE wildcards of s for use with ESCAPE '\'.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// storedTimeFormat sorts lexically in time order.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimeFormat)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	storedTimeFormat,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339Nano,
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
