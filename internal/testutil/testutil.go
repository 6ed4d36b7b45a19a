// Package testutil provides shared test helpers for setting up document
// storage and databases.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/starford/docdesk/internal/models"
	"github.com/starford/docdesk/internal/sse"
	"github.com/starford/docdesk/internal/storage"
	"github.com/starford/docdesk/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "docdesk-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestFiles creates a temporary document directory with a storage.Provider.
func TestFiles(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, files
}

// User inserts a user with the given username and role.
func User(t *testing.T, db *store.DB, username, role string) int64 {
	t.Helper()
	id, err := db.InsertUser(context.Background(), models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

// Events records published events.
type Events struct {
	mu        sync.Mutex
	Documents []string
	Counts    map[int64]int
}

// PublishDocumentEvent implements docservice.Events.
func (e *Events) PublishDocumentEvent(kind string, doc sse.DocumentRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Documents = append(e.Documents, kind)
}

// PublishCount implements docservice.Events.
func (e *Events) PublishCount(userID int64, count int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Counts == nil {
		e.Counts = map[int64]int{}
	}
	e.Counts[userID] = count
}

// Count returns the last count published for userID.
func (e *Events) Count(userID int64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Counts[userID]
}

// DocumentKinds returns the document event kinds seen so far.
func (e *Events) DocumentKinds() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.Documents...)
}
