// Package tracking persists tool-call outcomes to sqlite so sessions can
// be audited after the fact. The store implements the engine's Tracker
// contract; a failure to record never disturbs execution.
package tracking

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/clokai/clok/pkg/call"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tool_calls (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL REFERENCES sessions(id),
	tool_name     TEXT NOT NULL,
	input_data    TEXT,
	output_data   TEXT,
	status        TEXT NOT NULL,
	reason        TEXT,
	duration_ms   INTEGER NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tool_calls_session ON tool_calls(session_id);

CREATE TABLE IF NOT EXISTS tool_stats (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id     TEXT NOT NULL,
	tool_name      TEXT NOT NULL,
	calls          INTEGER NOT NULL,
	successes      INTEGER NOT NULL,
	errors         INTEGER NOT NULL,
	cached_serves  INTEGER NOT NULL,
	duration_ms    INTEGER NOT NULL,
	exported_at    TIMESTAMP NOT NULL
);
`

// Store records sessions and tool calls in a sqlite database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the tracking database at dbPath and initializes
// the schema. WAL mode keeps concurrent observer writes cheap.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("Tracking store opened")
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartSession records the start of a tracking session.
func (s *Store) StartSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, created_at) VALUES (?, ?)",
		sessionID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

// RecordResult persists one execution result. Arguments and output are
// stored as JSON; unencodable output degrades to its string form.
func (s *Store) RecordResult(ctx context.Context, sessionID string, res call.ExecutionResult) error {
	input := encodeJSON(res.Descriptor.Args)
	output := ""
	if res.Output != nil {
		output = encodeJSON(res.Output)
	}

	reason := res.Reason
	if reason == "" {
		reason = res.Error
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_calls
			(session_id, tool_name, input_data, output_data, status, reason, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, res.Descriptor.Tool, input, output,
		string(res.Status), reason, res.Duration.Milliseconds(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record tool call: %w", err)
	}
	return nil
}

// SessionCalls returns the recorded tool names for one session, in
// insertion order.
func (s *Store) SessionCalls(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT tool_name FROM tool_calls WHERE session_id = ? ORDER BY id",
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func encodeJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
