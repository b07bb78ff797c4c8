package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"focuslog/internal/modules/session/domain"

	_ "modernc.org/sqlite"
)

// SQLiteSessionIndex projects session notes into SQLite for filtered, ordered listing.
type SQLiteSessionIndex struct {
	db *sql.DB
}

func NewSQLiteSessionIndex(dbPath string) (*SQLiteSessionIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serialises writers and keeps the foreign_keys pragma in effect
	db.SetMaxOpenConns(1)
	index := &SQLiteSessionIndex{db: db}
	if err := index.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return index, nil
}

func (s *SQLiteSessionIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteSessionIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
PRAGMA foreign_keys = ON;
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  task TEXT NOT NULL,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  duration_ms INTEGER NOT NULL,
  app_id TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  note_path TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS sessions_started_at ON sessions(started_at);
CREATE TABLE IF NOT EXISTS session_tags (
  session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  tag TEXT NOT NULL,
  PRIMARY KEY (session_id, tag)
);
CREATE INDEX IF NOT EXISTS session_tags_tag ON session_tags(tag);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create session tables: %w", err)
	}
	return nil
}

func (s *SQLiteSessionIndex) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_tags; DELETE FROM sessions;`); err != nil {
		return fmt.Errorf("reset sessions: %w", err)
	}
	return nil
}

func (s *SQLiteSessionIndex) Upsert(ctx context.Context, session domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const stmt = `
INSERT INTO sessions (id, task, started_at, ended_at, duration_ms, app_id, notes, note_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  task=excluded.task,
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  duration_ms=excluded.duration_ms,
  app_id=excluded.app_id,
  notes=excluded.notes,
  note_path=excluded.note_path;
`
	if _, err := tx.ExecContext(ctx, stmt,
		session.ID,
		session.TaskName,
		session.StartedAt.UTC().Format(TimeLayout),
		session.EndedAt.UTC().Format(TimeLayout),
		session.Duration().Milliseconds(),
		session.AppID,
		session.Notes,
		session.NotePath,
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM session_tags WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("replace session tags: %w", err)
	}
	for pos, tag := range domain.NormalizeTags(session.Tags) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO session_tags (session_id, position, tag) VALUES (?, ?, ?)`, session.ID, pos, tag); err != nil {
			return fmt.Errorf("insert session tag: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert session: %w", err)
	}
	return nil
}

func (s *SQLiteSessionIndex) Delete(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM session_tags WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return tx.Commit()
}

// Search returns matching sessions, newest first.
func (s *SQLiteSessionIndex) Search(ctx context.Context, filter domain.Filter) ([]domain.Session, error) {
	clauses := []string{}
	args := []any{}
	if filter.Tag != "" {
		clauses = append(clauses, `EXISTS (SELECT 1 FROM session_tags t WHERE t.session_id = s.id AND t.tag = ?)`)
		args = append(args, filter.Tag)
	}
	if filter.AppID != "" {
		clauses = append(clauses, `s.app_id = ?`)
		args = append(args, filter.AppID)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, `s.started_at >= ?`)
		args = append(args, filter.Since.UTC().Format(TimeLayout))
	}
	if !filter.Until.IsZero() {
		clauses = append(clauses, `s.started_at < ?`)
		args = append(args, filter.Until.UTC().Format(TimeLayout))
	}
	query := `SELECT s.id, s.task, s.started_at, s.ended_at, s.app_id, s.notes, s.note_path FROM sessions s`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY s.started_at DESC, s.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search sessions: %w", err)
	}
	defer rows.Close()

	out := []domain.Session{}
	for rows.Next() {
		var (
			session        domain.Session
			started, ended string
		)
		if err := rows.Scan(&session.ID, &session.TaskName, &started, &ended, &session.AppID, &session.Notes, &session.NotePath); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if session.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if session.EndedAt, err = time.Parse(time.RFC3339Nano, ended); err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	if err := s.attachTags(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteSessionIndex) attachTags(ctx context.Context, sessions []domain.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	byID := make(map[string]int, len(sessions))
	for i := range sessions {
		byID[sessions[i].ID] = i
		sessions[i].Tags = []string{}
	}
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, tag FROM session_tags ORDER BY session_id, position`)
	if err != nil {
		return fmt.Errorf("load session tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sessionID, tag string
		if err := rows.Scan(&sessionID, &tag); err != nil {
			return fmt.Errorf("scan session tag: %w", err)
		}
		if i, ok := byID[sessionID]; ok {
			sessions[i].Tags = append(sessions[i].Tags, tag)
		}
	}
	return rows.Err()
}
