package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kerlexov/errorlog/pkg/apperror"
	_ "github.com/mattn/go-sqlite3"
)

// ErrIndexDegraded marks a Store call whose SQL insert succeeded but whose
// search indexing failed. The record is durable; only the index is stale.
var ErrIndexDegraded = errors.New("search index degraded")

// SQLiteStore implements ErrorStore using SQLite
type SQLiteStore struct {
	db     *sql.DB
	search *SearchService
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(connectionString string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithSearch(connectionString, "")
}

// NewSQLiteStoreWithSearch creates a new SQLite store instance with full-text
// search over stored records
func NewSQLiteStoreWithSearch(connectionString, searchIndexPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", connectionString)
	if err != nil {
		return nil, err
	}

	// WAL mode keeps readers from blocking the single writer
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if searchIndexPath != "" {
		searchService, err := NewSearchService(searchIndexPath)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize search service: %w", err)
		}
		store.search = searchService
	}

	return store, nil
}

// migrate runs database migrations
func (s *SQLiteStore) migrate() error {
	createMigrationsTable := `
	CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := s.db.Exec(createMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{
			version: 1,
			sql: `
			CREATE TABLE IF NOT EXISTS error_records (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				code TEXT NOT NULL,
				message TEXT NOT NULL,
				user_message TEXT NOT NULL,
				severity TEXT NOT NULL CHECK (severity IN ('critical', 'error', 'warning', 'info')),
				component TEXT NOT NULL,
				category TEXT NOT NULL,
				timestamp DATETIME NOT NULL,
				context TEXT, -- JSON
				suggested_fix TEXT,
				stack_trace TEXT,
				variant TEXT,
				detail TEXT, -- JSON
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);

			CREATE INDEX IF NOT EXISTS idx_error_records_code ON error_records(code);
			CREATE INDEX IF NOT EXISTS idx_error_records_timestamp ON error_records(timestamp);
			CREATE INDEX IF NOT EXISTS idx_error_records_severity ON error_records(severity);
			CREATE INDEX IF NOT EXISTS idx_error_records_component ON error_records(component);
			CREATE INDEX IF NOT EXISTS idx_error_records_category ON error_records(category);
			CREATE INDEX IF NOT EXISTS idx_error_records_component_severity ON error_records(component, severity);
			`,
		},
	}

	for _, migration := range migrations {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM migrations WHERE version = ?", migration.version).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check migration version %d: %w", migration.version, err)
		}

		if count == 0 {
			if _, err := s.db.Exec(migration.sql); err != nil {
				return fmt.Errorf("failed to apply migration version %d: %w", migration.version, err)
			}

			if _, err := s.db.Exec("INSERT INTO migrations (version) VALUES (?)", migration.version); err != nil {
				return fmt.Errorf("failed to record migration version %d: %w", migration.version, err)
			}
		}
	}

	return nil
}

// Store persists a single error record
func (s *SQLiteStore) Store(ctx context.Context, record apperror.Record) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid error record %s: %w", record.Code, err)
	}

	var contextJSON, detailJSON *string

	if record.Context != nil {
		data, err := json.Marshal(record.Context)
		if err != nil {
			return fmt.Errorf("failed to marshal context for record %s: %w", record.Code, err)
		}
		contextStr := string(data)
		contextJSON = &contextStr
	}

	if record.Detail != nil {
		data, err := json.Marshal(record.Detail)
		if err != nil {
			return fmt.Errorf("failed to marshal detail for record %s: %w", record.Code, err)
		}
		detailStr := string(data)
		detailJSON = &detailStr
	}

	var variant *string
	if record.Variant != "" {
		variant = &record.Variant
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO error_records (
			code, message, user_message, severity, component, category,
			timestamp, context, suggested_fix, stack_trace, variant, detail
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.Code,
		record.Message,
		record.UserMessage,
		record.Severity,
		record.Component,
		record.Category,
		record.Timestamp,
		contextJSON,
		record.SuggestedFix,
		record.StackTrace,
		variant,
		detailJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert error record %s: %w", record.Code, err)
	}

	if s.search != nil {
		if err := s.search.Index(record); err != nil {
			// The SQL row is already durable; report the stale index so
			// callers can count it separately from insert failures.
			return fmt.Errorf("%w: %v", ErrIndexDegraded, err)
		}
	}

	return nil
}

// Query retrieves error records based on filter criteria
func (s *SQLiteStore) Query(ctx context.Context, filter ErrorFilter) (*ErrorResult, error) {
	if s.search != nil && filter.MessageContains != "" {
		return s.queryWithSearch(ctx, filter)
	}

	return s.queryWithSQL(ctx, filter)
}

// queryWithSearch resolves codes through the Bleve index and retrieves full
// records from SQL
func (s *SQLiteStore) queryWithSearch(ctx context.Context, filter ErrorFilter) (*ErrorResult, error) {
	codes, err := s.search.Search(ctx, filter.MessageContains, filter)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if len(codes) == 0 {
		return &ErrorResult{
			Errors:     []apperror.Record{},
			TotalCount: 0,
			HasMore:    false,
		}, nil
	}

	records, err := s.getByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to get records by codes: %w", err)
	}

	// The index is less precise on time ranges; re-check them here
	var filtered []apperror.Record
	for _, record := range records {
		if !filter.StartTime.IsZero() && record.Timestamp.Before(filter.StartTime) {
			continue
		}
		if !filter.EndTime.IsZero() && record.Timestamp.After(filter.EndTime) {
			continue
		}
		filtered = append(filtered, record)
	}

	totalCount := len(filtered)
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	var paginated []apperror.Record
	if offset < len(filtered) {
		paginated = filtered[offset:end]
	}
	if paginated == nil {
		paginated = []apperror.Record{}
	}

	return &ErrorResult{
		Errors:     paginated,
		TotalCount: totalCount,
		HasMore:    offset+len(paginated) < totalCount,
	}, nil
}

// queryWithSQL performs a traditional SQL-based query
func (s *SQLiteStore) queryWithSQL(ctx context.Context, filter ErrorFilter) (*ErrorResult, error) {
	var conditions []string
	var args []interface{}

	if filter.Component != "" {
		conditions = append(conditions, "component = ?")
		args = append(args, filter.Component)
	}

	if filter.Severity != "" {
		conditions = append(conditions, "severity = ?")
		args = append(args, filter.Severity)
	}

	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}

	if filter.Code != "" {
		conditions = append(conditions, "code = ?")
		args = append(args, filter.Code)
	}

	if !filter.StartTime.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.StartTime)
	}

	if !filter.EndTime.IsZero() {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, filter.EndTime)
	}

	if filter.MessageContains != "" {
		conditions = append(conditions, "message LIKE ?")
		args = append(args, "%"+filter.MessageContains+"%")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var totalCount int
	countQuery := "SELECT COUNT(*) FROM error_records " + whereClause
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count error records: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT code, message, user_message, severity, component, category,
		       timestamp, context, suggested_fix, stack_trace, variant, detail
		FROM error_records
		%s
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`, whereClause)

	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query error records: %w", err)
	}
	defer rows.Close()

	records := make([]apperror.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	return &ErrorResult{
		Errors:     records,
		TotalCount: totalCount,
		HasMore:    offset+len(records) < totalCount,
	}, nil
}

// GetByCode retrieves the most recent record with the given tracking code
func (s *SQLiteStore) GetByCode(ctx context.Context, code string) (*apperror.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT code, message, user_message, severity, component, category,
		       timestamp, context, suggested_fix, stack_trace, variant, detail
		FROM error_records
		WHERE code = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`, code)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// getByCodes retrieves records for a set of tracking codes, newest first
func (s *SQLiteStore) getByCodes(ctx context.Context, codes []string) ([]apperror.Record, error) {
	if len(codes) == 0 {
		return []apperror.Record{}, nil
	}

	placeholders := make([]string, len(codes))
	args := make([]interface{}, len(codes))
	for i, code := range codes {
		placeholders[i] = "?"
		args[i] = code
	}

	query := fmt.Sprintf(`
		SELECT code, message, user_message, severity, component, category,
		       timestamp, context, suggested_fix, stack_trace, variant, detail
		FROM error_records
		WHERE code IN (%s)
		ORDER BY timestamp DESC
	`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query error records by codes: %w", err)
	}
	defer rows.Close()

	var records []apperror.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// Counts returns aggregate totals by component and severity
func (s *SQLiteStore) Counts(ctx context.Context) (*Counts, error) {
	counts := &Counts{
		ByComponent: make(map[string]int),
		BySeverity:  make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM error_records").Scan(&counts.Total); err != nil {
		return nil, fmt.Errorf("failed to count error records: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT component, COUNT(*) FROM error_records GROUP BY component")
	if err != nil {
		return nil, fmt.Errorf("failed to count by component: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var component string
		var count int
		if err := rows.Scan(&component, &count); err != nil {
			return nil, err
		}
		counts.ByComponent[component] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	severityRows, err := s.db.QueryContext(ctx, "SELECT severity, COUNT(*) FROM error_records GROUP BY severity")
	if err != nil {
		return nil, fmt.Errorf("failed to count by severity: %w", err)
	}
	defer severityRows.Close()

	for severityRows.Next() {
		var severity string
		var count int
		if err := severityRows.Scan(&severity, &count); err != nil {
			return nil, err
		}
		counts.BySeverity[severity] = count
	}

	return counts, severityRows.Err()
}

// DeleteOlderThan removes records of the given severity older than the
// cutoff and returns the number of rows deleted. An empty severity matches
// every record.
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, severity string, cutoff time.Time) (int, error) {
	var result sql.Result
	var err error

	if severity == "" {
		result, err = s.db.ExecContext(ctx, "DELETE FROM error_records WHERE timestamp < ?", cutoff)
	} else {
		result, err = s.db.ExecContext(ctx, "DELETE FROM error_records WHERE severity = ? AND timestamp < ?", severity, cutoff)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired records: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// HealthCheck returns the health status of the storage system
func (s *SQLiteStore) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Details:   make(map[string]string),
	}

	if err := s.db.PingContext(ctx); err != nil {
		status.Status = "unhealthy"
		status.Details["error"] = err.Error()
		return status
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM error_records").Scan(&count); err != nil {
		status.Status = "unhealthy"
		status.Details["error"] = err.Error()
		return status
	}

	status.Details["record_count"] = fmt.Sprintf("%d", count)
	return status
}

// Close closes the storage connection
func (s *SQLiteStore) Close() error {
	if s.search != nil {
		s.search.Close()
	}
	return s.db.Close()
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanRecord
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord reads one error record row
func scanRecord(row rowScanner) (*apperror.Record, error) {
	var record apperror.Record
	var contextJSON, detailJSON, variant, suggestedFix, stackTrace sql.NullString

	err := row.Scan(
		&record.Code,
		&record.Message,
		&record.UserMessage,
		&record.Severity,
		&record.Component,
		&record.Category,
		&record.Timestamp,
		&contextJSON,
		&suggestedFix,
		&stackTrace,
		&variant,
		&detailJSON,
	)
	if err != nil {
		return nil, err
	}

	if contextJSON.Valid && contextJSON.String != "" {
		var errCtx apperror.Context
		if err := json.Unmarshal([]byte(contextJSON.String), &errCtx); err != nil {
			return nil, fmt.Errorf("failed to unmarshal context for record %s: %w", record.Code, err)
		}
		record.Context = &errCtx
	}

	if suggestedFix.Valid {
		fix := suggestedFix.String
		record.SuggestedFix = &fix
	}

	if stackTrace.Valid {
		trace := stackTrace.String
		record.StackTrace = &trace
	}

	if variant.Valid {
		record.Variant = variant.String
	}

	if detailJSON.Valid && detailJSON.String != "" {
		var detail apperror.Detail
		if err := json.Unmarshal([]byte(detailJSON.String), &detail); err != nil {
			return nil, fmt.Errorf("failed to unmarshal detail for record %s: %w", record.Code, err)
		}
		record.Detail = &detail
	}

	return &record, nil
}
