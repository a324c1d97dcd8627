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

	"github.com/Sharawey74/PhishSniffer/internal/model"
)

// DBFileName is the SQLite database file name inside the data directory.
const DBFileName = "phishsniffer.db"

// AnalysisDB provides SQLite-based storage for analysis results.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for history, URLs, and
// reports rather than separate files per concern. This simplifies
// relationship queries and backup/restore operations.
type AnalysisDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// historyLimit caps the number of retained history entries.
	historyLimit int
}

// Options configures AnalysisDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool

	// HistoryLimit caps the analysis history; older entries are pruned
	// on insert. Zero means the default of 10.
	HistoryLimit int
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		HistoryLimit:      10,
	}
}

// Open opens or creates an AnalysisDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AnalysisDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

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

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = DefaultOptions().HistoryLimit
	}

	adb := &AnalysisDB{
		db:           db,
		dbPath:       dbPath,
		historyLimit: limit,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AnalysisDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AnalysisDB) createTables() error {
	schema := `
	-- Analysis history stores a rolling window of verdict summaries
	CREATE TABLE IF NOT EXISTS analysis_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL UNIQUE,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		source TEXT,
		is_phishing INTEGER NOT NULL,
		probability REAL NOT NULL,
		confidence TEXT,
		model_name TEXT,
		indicator_count INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON analysis_history(timestamp);

	-- Suspicious URLs are unique per URL across all analyses
	CREATE TABLE IF NOT EXISTS suspicious_urls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		domain TEXT,
		source TEXT,
		date_added DATETIME DEFAULT CURRENT_TIMESTAMP,
		risk_level TEXT NOT NULL,
		risk_rank INTEGER NOT NULL,
		risk_factors TEXT,
		safety_score REAL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_urls_domain ON suspicious_urls(domain);
	CREATE INDEX IF NOT EXISTS idx_urls_risk ON suspicious_urls(risk_rank);

	-- Analysis reports store complete results as JSON
	CREATE TABLE IF NOT EXISTS analysis_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL UNIQUE,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON analysis_reports(timestamp);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// HistoryEntry is a stored verdict summary.
type HistoryEntry struct {
	ID             int64
	AnalysisID     string
	Timestamp      time.Time
	Source         string
	IsPhishing     bool
	Probability    float64
	Confidence     string
	ModelName      string
	IndicatorCount int
}

// AddHistoryEntry records a verdict summary and prunes entries beyond
// the history limit, oldest first.
func (adb *AnalysisDB) AddHistoryEntry(ctx context.Context, report *model.AnalysisReport) error {
	if report == nil {
		return errors.New("nil report")
	}

	query := `
	INSERT INTO analysis_history (analysis_id, timestamp, source, is_phishing, probability, confidence, model_name, indicator_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(analysis_id) DO UPDATE SET
		is_phishing = excluded.is_phishing,
		probability = excluded.probability,
		confidence = excluded.confidence,
		indicator_count = excluded.indicator_count
	`

	_, err := adb.db.ExecContext(ctx, query,
		report.AnalysisID,
		report.DateAnalyzed.UTC().Format("2006-01-02 15:04:05"),
		report.Source,
		report.IsPhishing,
		report.Probability,
		report.ConfidenceLevel,
		report.ModelName,
		len(report.Indicators),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	prune := `
	DELETE FROM analysis_history
	WHERE id NOT IN (
		SELECT id FROM analysis_history
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	)
	`
	if _, err := adb.db.ExecContext(ctx, prune, adb.historyLimit); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	return nil
}

// History returns stored verdict summaries, newest first.
func (adb *AnalysisDB) History(ctx context.Context) ([]HistoryEntry, error) {
	query := `
	SELECT id, analysis_id, timestamp, source, is_phishing, probability, confidence, model_name, indicator_count
	FROM analysis_history
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var timestamp string

		err := rows.Scan(
			&entry.ID,
			&entry.AnalysisID,
			&timestamp,
			&entry.Source,
			&entry.IsPhishing,
			&entry.Probability,
			&entry.Confidence,
			&entry.ModelName,
			&entry.IndicatorCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.Timestamp = parseTimestamp(timestamp)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ClearHistory deletes all history entries.
func (adb *AnalysisDB) ClearHistory(ctx context.Context) error {
	if _, err := adb.db.ExecContext(ctx, "DELETE FROM analysis_history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// UpsertURL records a suspicious URL. When the URL already exists the
// update never lowers its recorded risk level; a link seen once as
// high risk stays high risk even if a later assessment is milder.
func (adb *AnalysisDB) UpsertURL(ctx context.Context, record model.URLRecord) error {
	factorsJSON, err := json.Marshal(record.RiskFactors)
	if err != nil {
		return fmt.Errorf("failed to serialize risk factors: %w", err)
	}

	query := `
	INSERT INTO suspicious_urls (url, domain, source, date_added, risk_level, risk_rank, risk_factors, safety_score)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		risk_level = CASE WHEN excluded.risk_rank > suspicious_urls.risk_rank
			THEN excluded.risk_level ELSE suspicious_urls.risk_level END,
		safety_score = CASE WHEN excluded.risk_rank > suspicious_urls.risk_rank
			THEN excluded.safety_score ELSE suspicious_urls.safety_score END,
		risk_factors = CASE WHEN excluded.risk_rank > suspicious_urls.risk_rank
			THEN excluded.risk_factors ELSE suspicious_urls.risk_factors END,
		risk_rank = MAX(excluded.risk_rank, suspicious_urls.risk_rank)
	`

	_, err = adb.db.ExecContext(ctx, query,
		record.URL,
		record.Domain,
		record.Source,
		record.DateAdded.UTC().Format("2006-01-02 15:04:05"),
		string(record.RiskLevel),
		record.RiskLevel.Score(),
		string(factorsJSON),
		record.SafetyScore,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert url: %w", err)
	}

	return nil
}

// URLs returns stored suspicious URLs, highest risk first.
func (adb *AnalysisDB) URLs(ctx context.Context) ([]model.URLRecord, error) {
	query := `
	SELECT url, domain, source, date_added, risk_level, risk_factors, safety_score
	FROM suspicious_urls
	ORDER BY risk_rank DESC, date_added DESC
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query urls: %w", err)
	}
	defer rows.Close()

	var records []model.URLRecord
	for rows.Next() {
		var record model.URLRecord
		var dateAdded string
		var riskLevel string
		var factorsJSON sql.NullString

		err := rows.Scan(
			&record.URL,
			&record.Domain,
			&record.Source,
			&dateAdded,
			&riskLevel,
			&factorsJSON,
			&record.SafetyScore,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}

		record.DateAdded = parseTimestamp(dateAdded)
		record.RiskLevel = model.RiskLevel(riskLevel)
		if factorsJSON.Valid && factorsJSON.String != "" {
			if err := json.Unmarshal([]byte(factorsJSON.String), &record.RiskFactors); err != nil {
				record.RiskFactors = nil
			}
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// MarkURLSafe downgrades a stored URL to low risk with a full safety
// score. It returns sql.ErrNoRows if the URL is not stored.
func (adb *AnalysisDB) MarkURLSafe(ctx context.Context, url string) error {
	query := `
	UPDATE suspicious_urls
	SET risk_level = ?, risk_rank = ?, safety_score = 1.0
	WHERE url = ?
	`

	result, err := adb.db.ExecContext(ctx, query,
		string(model.RiskLow), model.RiskLow.Score(), url)
	if err != nil {
		return fmt.Errorf("failed to mark url safe: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// DeleteURL removes a stored URL. It returns sql.ErrNoRows if the URL
// is not stored.
func (adb *AnalysisDB) DeleteURL(ctx context.Context, url string) error {
	result, err := adb.db.ExecContext(ctx, "DELETE FROM suspicious_urls WHERE url = ?", url)
	if err != nil {
		return fmt.Errorf("failed to delete url: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// SaveReport stores a complete analysis report as JSON.
func (adb *AnalysisDB) SaveReport(ctx context.Context, report *model.AnalysisReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO analysis_reports (analysis_id, timestamp, report_json)
	VALUES (?, ?, ?)
	ON CONFLICT(analysis_id) DO UPDATE SET
		report_json = excluded.report_json
	`

	_, err = adb.db.ExecContext(ctx, query,
		report.AnalysisID,
		report.DateAnalyzed.UTC().Format("2006-01-02 15:04:05"),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// GetReport retrieves a stored report by analysis ID.
// Returns nil without error when no report matches.
func (adb *AnalysisDB) GetReport(ctx context.Context, analysisID string) (*model.AnalysisReport, error) {
	query := `
	SELECT report_json FROM analysis_reports
	WHERE analysis_id = ?
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, analysisID).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// LatestReport retrieves the most recent stored report.
// Returns nil without error when the store is empty.
func (adb *AnalysisDB) LatestReport(ctx context.Context) (*model.AnalysisReport, error) {
	query := `
	SELECT report_json FROM analysis_reports
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}

	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
