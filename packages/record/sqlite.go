package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS exchanges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	method TEXT NOT NULL,
	url TEXT NOT NULL,
	path TEXT NOT NULL,
	request_headers TEXT,
	request_body TEXT,
	status_code INTEGER NOT NULL,
	status TEXT NOT NULL,
	response_headers TEXT,
	response_body TEXT,
	content_type TEXT,
	duration_ms REAL NOT NULL
)`

// SQLiteStore persists exchanges in a SQLite database.
type SQLiteStore struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// NewSQLiteStore opens (creating if needed) a SQLite database at path and
// bootstraps the exchanges table.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:           db,
		queryTimeout: 30 * time.Second,
	}, nil
}

func (s *SQLiteStore) Append(exchange Exchange) error {
	reqHeaders, err := json.Marshal(exchange.RequestHeaders)
	if err != nil {
		return fmt.Errorf("failed to encode request headers: %w", err)
	}
	respHeaders, err := json.Marshal(exchange.ResponseHeaders)
	if err != nil {
		return fmt.Errorf("failed to encode response headers: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO exchanges (
			timestamp, method, url, path,
			request_headers, request_body,
			status_code, status,
			response_headers, response_body,
			content_type, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exchange.Timestamp.Format(time.RFC3339Nano),
		exchange.Method,
		exchange.URL,
		exchange.Path,
		string(reqHeaders),
		exchange.RequestBody,
		exchange.StatusCode,
		exchange.Status,
		string(respHeaders),
		exchange.ResponseBody,
		exchange.ContentType,
		exchange.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Recent(n int) ([]Exchange, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	query := `
		SELECT timestamp, method, url, path,
			request_headers, request_body,
			status_code, status,
			response_headers, response_body,
			content_type, duration_ms
		FROM exchanges ORDER BY id DESC`
	args := []any{}
	if n > 0 {
		query += " LIMIT ?"
		args = append(args, n)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	exchanges := make([]Exchange, 0)
	for rows.Next() {
		var (
			exchange    Exchange
			stamp       string
			reqHeaders  string
			respHeaders string
		)
		if err := rows.Scan(
			&stamp,
			&exchange.Method,
			&exchange.URL,
			&exchange.Path,
			&reqHeaders,
			&exchange.RequestBody,
			&exchange.StatusCode,
			&exchange.Status,
			&respHeaders,
			&exchange.ResponseBody,
			&exchange.ContentType,
			&exchange.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		exchange.Timestamp, err = time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		if err := json.Unmarshal([]byte(reqHeaders), &exchange.RequestHeaders); err != nil {
			return nil, fmt.Errorf("failed to decode request headers: %w", err)
		}
		if err := json.Unmarshal([]byte(respHeaders), &exchange.ResponseHeaders); err != nil {
			return nil, fmt.Errorf("failed to decode response headers: %w", err)
		}
		exchanges = append(exchanges, exchange)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	// Newest-first from the query, chronological for the caller.
	for i, j := 0, len(exchanges)-1; i < j; i, j = i+1, j-1 {
		exchanges[i], exchanges[j] = exchanges[j], exchanges[i]
	}
	return exchanges, nil
}

func (s *SQLiteStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM exchanges`); err != nil {
		return fmt.Errorf("failed to clear exchanges: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
