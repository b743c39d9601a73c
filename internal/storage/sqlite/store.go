// Package sqlite persists the observed-traffic trace (request log entries
// and scenario transitions) for post-run inspection. It stores the audit
// trail only; scenario state is never persisted.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/polyglot-ai/mocktransport/internal/domain"
)

// Store is a SQLite-backed traffic log sink.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and initializes the schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS traffic_log (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		method TEXT,
		url TEXT,
		provider TEXT,
		model TEXT,
		endpoint TEXT,
		internal INTEGER,
		scenario_op TEXT,
		scenario_from TEXT,
		scenario_to TEXT,
		context TEXT,
		created_at TIMESTAMP NOT NULL
	)`)
	return err
}

// Record implements the manager's LogSink contract.
func (s *Store) Record(ctx context.Context, entry domain.LogEntry) error {
	switch entry.Kind {
	case domain.LogEntryRequest:
		contextJSON, err := json.Marshal(entry.Request.Context)
		if err != nil {
			return fmt.Errorf("encode request context: %w", err)
		}
		md := entry.Request.Metadata
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO traffic_log (id, kind, method, url, provider, model, endpoint, internal, context, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, string(entry.Kind),
			entry.Request.Context.Method, entry.Request.Context.URL,
			string(md.Provider), md.Model, md.Endpoint, boolToInt(md.InternalRequest),
			string(contextJSON), entry.Timestamp,
		)
		return err

	case domain.LogEntryScenarioChange:
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO traffic_log (id, kind, scenario_op, scenario_from, scenario_to, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			entry.ID, string(entry.Kind),
			string(entry.Scenario.Op), entry.Scenario.From, entry.Scenario.To,
			entry.Timestamp,
		)
		return err

	default:
		return fmt.Errorf("unknown log entry kind %q", entry.Kind)
	}
}

// Entries returns all persisted entries in insertion order.
func (s *Store) Entries(ctx context.Context) ([]domain.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, method, url, provider, model, endpoint, internal,
		        scenario_op, scenario_from, scenario_to, context, created_at
		 FROM traffic_log ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var (
			entry                     domain.LogEntry
			kind                      string
			method, url               sql.NullString
			provider, model, endpoint sql.NullString
			internal                  sql.NullInt64
			op, from, to              sql.NullString
			contextJSON               sql.NullString
			createdAt                 time.Time
		)
		if err := rows.Scan(&entry.ID, &kind, &method, &url, &provider, &model, &endpoint,
			&internal, &op, &from, &to, &contextJSON, &createdAt); err != nil {
			return nil, err
		}
		entry.Kind = domain.LogEntryKind(kind)
		entry.Timestamp = createdAt

		switch entry.Kind {
		case domain.LogEntryRequest:
			record := &domain.RequestRecord{
				Metadata: domain.RequestMetadata{
					Provider:        domain.Provider(provider.String),
					Model:           model.String,
					Endpoint:        endpoint.String,
					InternalRequest: internal.Int64 == 1,
					ExternalAPI:     internal.Int64 != 1,
				},
			}
			if contextJSON.Valid {
				if err := json.Unmarshal([]byte(contextJSON.String), &record.Context); err != nil {
					return nil, fmt.Errorf("decode request context: %w", err)
				}
			}
			entry.Request = record
		case domain.LogEntryScenarioChange:
			entry.Scenario = &domain.ScenarioChange{
				Op:   domain.ScenarioOp(op.String),
				From: from.String,
				To:   to.String,
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
