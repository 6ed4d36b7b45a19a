//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			document_id UNINDEXED,
			title,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsIndex(ctx context.Context, ex execer, id int64, title, body string, tags []string) error {
	if err := ftsDelete(ctx, ex, id); err != nil {
		return err
	}
	_, err := ex.ExecContext(ctx, `INSERT INTO documents_fts (document_id, title, body, tags) VALUES (?, ?, ?, ?)`,
		id, title, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("store: index fts: %w", err)
	}
	return nil
}

func ftsDelete(ctx context.Context, ex execer, id int64) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM documents_fts WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete fts: %w", err)
	}
	return nil
}

// matchQuery quotes every term so user input cannot use FTS5 syntax.
func matchQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// SearchDocuments runs an FTS5 query over documents userID can view and
// returns highlighted snippets.
func (db *DB) SearchDocuments(ctx context.Context, userID int64, q string, limit int) ([]DocumentHit, error) {
	if limit <= 0 {
		limit = 20
	}
	match := matchQuery(q)
	if match == "" {
		return nil, nil
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT d.id, d.title, snippet(documents_fts, 2, '<b>', '</b>', '...', 32)
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.document_id
		WHERE documents_fts MATCH ?
		  AND (d.owner_id = ? OR EXISTS (
		       SELECT 1 FROM document_shares s WHERE s.document_id = d.id AND s.user_id = ?))
		ORDER BY rank
		LIMIT ?
	`, match, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search documents: %w", err)
	}
	defer rows.Close()
	return scanHits(rows)
}
