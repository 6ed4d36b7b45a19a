//go:build sqlite_fts5

package store

import (
	"context"
	"strings"
	"testing"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents_fts`).Scan(&count); err != nil {
		t.Fatalf("documents_fts table missing: %v", err)
	}
}

func TestFTS5_SnippetHighlights(t *testing.T) {
	db := testDB(t)
	alice := mustUser(t, db, "alice")
	insertText(t, db, alice, "FTS", "docdesk provides powerful full-text search capabilities", "f1")

	hits, err := db.SearchDocuments(context.Background(), alice, "powerful", 10)
	if err != nil {
		t.Fatalf("SearchDocuments: %v", err)
	}
	if len(hits) != 1 || !strings.Contains(hits[0].Snippet, "<b>powerful</b>") {
		t.Fatalf("hits = %+v", hits)
	}
}

func TestFTS5_QuerySyntaxIsQuoted(t *testing.T) {
	db := testDB(t)
	alice := mustUser(t, db, "alice")
	insertText(t, db, alice, "Quote", `she said "hello" AND left`, "q1")

	for _, q := range []string{`"hello`, `AND`, `hello*`, `title:x`} {
		if _, err := db.SearchDocuments(context.Background(), alice, q, 10); err != nil {
			t.Errorf("query %q: %v", q, err)
		}
	}
	if got := matchQuery(`a "b`); got != `"a" """b"` {
		t.Errorf("matchQuery = %q", got)
	}
}
