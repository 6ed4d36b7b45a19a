// Package store provides SQLite-backed access to the document-management
// data the dashboard and API read: users, documents, tags, workflows,
// tasks and notifications.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL UNIQUE,
	email      TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL DEFAULT 'user'
);

CREATE TABLE IF NOT EXISTS documents (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	filename          TEXT NOT NULL,
	original_filename TEXT NOT NULL,
	file_path         TEXT NOT NULL,
	file_type         TEXT NOT NULL,
	file_size         INTEGER NOT NULL DEFAULT 0,
	title             TEXT NOT NULL DEFAULT '',
	description       TEXT NOT NULL DEFAULT '',
	content_text      TEXT NOT NULL DEFAULT '',
	classification    TEXT NOT NULL DEFAULT '',
	checksum          TEXT NOT NULL DEFAULT '',
	owner_id          INTEGER NOT NULL REFERENCES users(id),
	expiry_date       DATE,
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id);
CREATE INDEX IF NOT EXISTS idx_documents_checksum ON documents(checksum);

CREATE TABLE IF NOT EXISTS tags (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	name  TEXT NOT NULL UNIQUE,
	color TEXT NOT NULL DEFAULT '#6c757d'
);

CREATE TABLE IF NOT EXISTS document_tags (
	document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	tag_id      INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	UNIQUE(document_id, tag_id)
);

CREATE TABLE IF NOT EXISTS document_shares (
	document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	UNIQUE(document_id, user_id)
);

CREATE TABLE IF NOT EXISTS workflows (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'active',
	created_by_id INTEGER NOT NULL REFERENCES users(id),
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS workflow_tasks (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	workflow_id    INTEGER NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	position       INTEGER NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	assigned_to_id INTEGER REFERENCES users(id),
	due_date       DATETIME,
	completed_at   DATETIME
);

CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON workflow_tasks(assigned_to_id);

CREATE TABLE IF NOT EXISTS notifications (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id           INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	message           TEXT NOT NULL,
	link              TEXT NOT NULL DEFAULT '',
	notification_type TEXT NOT NULL DEFAULT 'info',
	is_read           BOOLEAN NOT NULL DEFAULT 0,
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, is_read);

CREATE TABLE IF NOT EXISTS reminder_log (
	subject TEXT NOT NULL,
	kind    TEXT NOT NULL,
	day     TEXT NOT NULL,
	UNIQUE(subject, kind, day)
);
`

// DB wraps a sql.DB with docdesk queries.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
