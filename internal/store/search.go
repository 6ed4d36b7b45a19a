package store

import (
	"context"
	"database/sql"
)

// DocumentHit is one full-text search match.
type DocumentHit struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanHits(rows *sql.Rows) ([]DocumentHit, error) {
	var out []DocumentHit
	for rows.Next() {
		var h DocumentHit
		if err := rows.Scan(&h.ID, &h.Title, &h.Snippet); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
