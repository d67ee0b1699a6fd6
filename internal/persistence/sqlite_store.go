package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// SQLiteRunStore is a RunStore backed by SQLite.
//
// It expects an *sql.DB opened with a SQLite driver; the caller is
// responsible for importing one, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteRunStore struct {
	db *sql.DB
}

var _ RunStore = (*SQLiteRunStore)(nil)

// NewSQLiteRunStore initializes the required schema in the given database
// and returns a new SQLiteRunStore.
func NewSQLiteRunStore(db *sql.DB) (*SQLiteRunStore, error) {
	s := &SQLiteRunStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteRunStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			flow_name TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			results BLOB
		);`,
	)
	return err
}

func (s *SQLiteRunStore) SaveRun(ctx context.Context, rec *RunRecord) error {
	results, err := EncodeResults(rec.Results)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, flow_name, status, started_at, finished_at, results)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Flow,
		string(rec.Status),
		rec.StartedAt.UnixNano(),
		rec.FinishedAt.UnixNano(),
		results,
	)
	return err
}

func (s *SQLiteRunStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, flow_name, status, started_at, finished_at, results
		FROM runs WHERE id = ?`, id)

	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return rec, err
}

func (s *SQLiteRunStore) ListRuns(ctx context.Context, filter RunFilter) ([]*RunRecord, error) {
	query := `
		SELECT id, flow_name, status, started_at, finished_at, results
		FROM runs`

	var (
		conds []string
		args  []any
	)
	if filter.Flow != "" {
		conds = append(conds, "flow_name = ?")
		args = append(args, filter.Flow)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY started_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		rec                   RunRecord
		status                string
		startedNs, finishedNs int64
		results               []byte
	)
	if err := row.Scan(&rec.ID, &rec.Flow, &status, &startedNs, &finishedNs, &results); err != nil {
		return nil, err
	}

	rec.Status = RunStatus(status)
	rec.StartedAt = time.Unix(0, startedNs)
	rec.FinishedAt = time.Unix(0, finishedNs)

	decoded, err := DecodeResults(results)
	if err != nil {
		return nil, err
	}
	rec.Results = decoded
	return &rec, nil
}
