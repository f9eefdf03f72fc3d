// Package seriesstore persists daily ship-count series for monitored
// chokepoints across sqlite, mysql and postgresql backends.
package seriesstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/jiayuqiu/sisi-mcp/internal/contract"
	"github.com/jiayuqiu/sisi-mcp/schema"
)

// tableName is the single table holding the persisted series.
const tableName = "ship_cnt_in_pipe"

// Store handles durable series storage using various database backends.
type Store struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.SeriesStore = &Store{} // Compile-time check

// New initializes and returns a Store based on the backend type.
func New(backend schema.DatabaseBackend, connStr string) (*Store, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetSeriesDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite series store at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL series store: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=secret dbname=postgres
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL series store: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled persistence
		return &Store{db: nil, backend: backend, connStr: connStr}, nil

	default:
		return nil, fmt.Errorf("unsupported series backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	if _, err := db.Exec(getCreateTableQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &Store{db: db, backend: backend, connStr: connStr}, nil
}

// getCreateTableQuery returns the CREATE TABLE query for the given backend.
func getCreateTableQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				pipe_name VARCHAR(64) NOT NULL,
				date_id INT NOT NULL,
				ship_cnt DOUBLE NOT NULL,
				PRIMARY KEY (pipe_name, date_id)
			);
		`, tableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				pipe_name TEXT NOT NULL,
				date_id INTEGER NOT NULL,
				ship_cnt DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (pipe_name, date_id)
			);
		`, tableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				pipe_name TEXT NOT NULL,
				date_id INTEGER NOT NULL,
				ship_cnt REAL NOT NULL,
				PRIMARY KEY (pipe_name, date_id)
			);
		`, tableName)
	}
}

// placeholders returns backend-specific parameter placeholders, numbered from
// start for PostgreSQL.
func (s *Store) placeholders(start, count int) []string {
	out := make([]string, count)
	for i := range count {
		if s.backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", start+i)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// LoadWindow returns the channel's rows inside [end - lookback, end]
// inclusive, ordered by date ascending.
func (s *Store) LoadWindow(ctx context.Context, pipeName string, end time.Time, lookbackMonths, lookbackDays int) ([]schema.SeriesRow, error) {
	if s.backend == schema.NoneBackend || s.db == nil {
		return nil, fmt.Errorf("%w: %s (series store disabled)", schema.ErrNoDataForChannel, pipeName)
	}

	exists, err := s.HasChannel(ctx, pipeName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", schema.ErrNoDataForChannel, pipeName)
	}

	startID := schema.TimeToDateID(schema.WindowStart(end, lookbackMonths, lookbackDays))
	endID := schema.TimeToDateID(end)

	ph := s.placeholders(1, 3)
	query := fmt.Sprintf(
		`SELECT pipe_name, date_id, ship_cnt FROM %s WHERE pipe_name = %s AND date_id >= %s AND date_id <= %s ORDER BY date_id ASC`,
		tableName, ph[0], ph[1], ph[2])

	rows, err := s.db.QueryContext(ctx, query, pipeName, startID, endID)
	if err != nil {
		return nil, fmt.Errorf("failed to query series window: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// A channel with rows outside the window yields an empty, non-nil slice.
	result := []schema.SeriesRow{}
	for rows.Next() {
		var r schema.SeriesRow
		if err := rows.Scan(&r.PipeName, &r.DateID, &r.ShipCnt); err != nil {
			return nil, fmt.Errorf("failed to scan series row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// HasChannel reports whether the channel has any persisted rows at all.
func (s *Store) HasChannel(ctx context.Context, pipeName string) (bool, error) {
	if s.backend == schema.NoneBackend || s.db == nil {
		return false, nil
	}
	ph := s.placeholders(1, 1)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE pipe_name = %s`, tableName, ph[0])
	var count int
	if err := s.db.QueryRowContext(ctx, query, pipeName).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count channel rows: %w", err)
	}
	return count > 0, nil
}

// UpsertRows inserts or replaces series rows.
func (s *Store) UpsertRows(ctx context.Context, rows []schema.SeriesRow) error {
	if s.backend == schema.NoneBackend || s.db == nil {
		return nil
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := s.getUpsertQuery()
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.PipeName, r.DateID, r.ShipCnt); err != nil {
			return fmt.Errorf("failed to upsert row (%s, %d): %w", r.PipeName, r.DateID, err)
		}
	}
	return tx.Commit()
}

// getUpsertQuery returns the UPSERT query for the backend.
func (s *Store) getUpsertQuery() string {
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (pipe_name, date_id, ship_cnt) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE ship_cnt = new.ship_cnt`, tableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (pipe_name, date_id, ship_cnt) VALUES ($1, $2, $3)
			ON CONFLICT (pipe_name, date_id) DO UPDATE SET ship_cnt = EXCLUDED.ship_cnt`, tableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (pipe_name, date_id, ship_cnt) VALUES (?, ?, ?)`, tableName)
	}
}

// Channels lists all channels with persisted rows.
func (s *Store) Channels(ctx context.Context) ([]string, error) {
	if s.backend == schema.NoneBackend || s.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT DISTINCT pipe_name FROM %s ORDER BY pipe_name`, tableName)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var channels []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan channel name: %w", err)
		}
		channels = append(channels, name)
	}
	return channels, rows.Err()
}

// GetStatus returns status information about the series store.
func (s *Store) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
		CheckedAt: time.Now(),
	}
	if s.backend == schema.NoneBackend || s.db == nil {
		return status, nil
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, tableName)
	if err := s.db.QueryRowContext(ctx, countQuery).Scan(&status.TotalRows); err != nil {
		return status, fmt.Errorf("failed to get total rows: %w", err)
	}
	if status.TotalRows == 0 {
		return status, nil
	}

	rangeQuery := fmt.Sprintf(`SELECT MIN(date_id), MAX(date_id) FROM %s`, tableName)
	if err := s.db.QueryRowContext(ctx, rangeQuery).Scan(&status.FirstDate, &status.LastDate); err != nil {
		return status, fmt.Errorf("failed to get date range: %w", err)
	}

	channels, err := s.Channels(ctx)
	if err != nil {
		return status, err
	}
	status.Channels = channels

	// Estimate table size (approximate)
	switch s.backend {
	case schema.SQLiteBackend:
		sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := s.db.QueryRowContext(ctx, sizeQuery).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = 0
		}
	case schema.PostgreSQLBackend:
		sizeQuery := "SELECT pg_total_relation_size($1)"
		if err := s.db.QueryRowContext(ctx, sizeQuery, tableName).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = int64(status.TotalRows) * 50 // Fallback rough estimate
		}
	default:
		status.TableSizeBytes = int64(status.TotalRows) * 50 // Rough estimate
	}

	return status, nil
}

// Close closes the underlying DB connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
