//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; search scans the documents table with LIKE.
	return nil
}

func ftsIndex(_ context.Context, _ execer, _ int64, _, _ string, _ []string) error {
	return nil
}

func ftsDelete(_ context.Context, _ execer, _ int64) error { return nil }

// SearchDocuments matches q against the title, description, file name and
// extracted text of documents userID can view.
func (db *DB) SearchDocuments(ctx context.Context, userID int64, q string, limit int) ([]DocumentHit, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := like(q)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT d.id, d.title, substr(d.content_text, 1, 200)
		FROM documents d
		WHERE (d.owner_id = ? OR EXISTS (
		       SELECT 1 FROM document_shares s WHERE s.document_id = d.id AND s.user_id = ?))
		  AND (d.title LIKE ? ESCAPE '\' OR d.description LIKE ? ESCAPE '\'
		       OR d.original_filename LIKE ? ESCAPE '\' OR d.content_text LIKE ? ESCAPE '\')
		ORDER BY d.created_at DESC, d.id DESC
		LIMIT ?
	`, userID, userID, pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search documents: %w", err)
	}
	defer rows.Close()
	return scanHits(rows)
}
