package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "docdesk-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustUser(t *testing.T, db *DB, username string) int64 {
	t.Helper()
	id, err := db.InsertUser(context.Background(), models.User{Username: username, Email: username + "@example.com"})
	if err != nil {
		t.Fatalf("InsertUser: %v", err)
	}
	return id
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"users", "documents", "tags", "workflows", "workflow_tasks", "notifications", "reminder_log"} {
		var n int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&n); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestDocumentsVisibility(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")

	id, err := db.InsertDocument(ctx, models.Document{
		Filename: "a.txt", OriginalFilename: "a.txt", FilePath: "x/a.txt", FileType: "text/plain",
		Checksum: "c1", OwnerID: alice, Tags: []string{"finance", " ", "2024"},
	})
	if err != nil {
		t.Fatalf("InsertDocument: %v", err)
	}

	got, err := db.Document(ctx, id)
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if diff := cmp.Diff([]string{"2024", "finance"}, got.Tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}

	if ok, _ := db.CanView(ctx, id, bob); ok {
		t.Error("bob should not see alice's document yet")
	}
	if err := db.ShareDocument(ctx, id, []int64{bob, bob}); err != nil {
		t.Fatalf("ShareDocument: %v", err)
	}
	if ok, _ := db.CanView(ctx, id, bob); !ok {
		t.Error("bob should see the shared document")
	}
	docs, err := db.Documents(ctx, bob)
	if err != nil || len(docs) != 1 {
		t.Fatalf("Documents(bob) = %d, %v", len(docs), err)
	}

	if _, err := db.InsertDocument(ctx, models.Document{
		Filename: "b.txt", OriginalFilename: "b.txt", FilePath: "x/b.txt", FileType: "text/plain",
		Checksum: "c1", OwnerID: bob,
	}); err != nil {
		t.Fatalf("InsertDocument(bob): %v", err)
	}
	dup, err := db.DocumentByChecksum(ctx, alice, "c1")
	if err != nil || dup.ID != id {
		t.Errorf("DocumentByChecksum(alice) = %v, %v", dup, err)
	}
	if dup, err := db.DocumentByChecksum(ctx, bob, "c1"); err != nil || dup.OwnerID != bob {
		t.Errorf("DocumentByChecksum(bob) = %v, %v", dup, err)
	}
	if _, err := db.DocumentByChecksum(ctx, alice, "c2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown checksum err = %v", err)
	}

	if err := db.DeleteDocument(ctx, id); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if err := db.DeleteDocument(ctx, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if _, err := db.Document(ctx, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Document after delete err = %v", err)
	}
}

func TestSearchTagsEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	owner := mustUser(t, db, "owner")
	_, err := db.InsertDocument(ctx, models.Document{
		Filename: "a", OriginalFilename: "a", FilePath: "a", FileType: "text/plain",
		OwnerID: owner, Tags: []string{"100%", "1000", "tax_2024", "taxes"},
	})
	if err != nil {
		t.Fatal(err)
	}
	tags, err := db.SearchTags(ctx, "100%")
	if err != nil || len(tags) != 1 || tags[0].Name != "100%" {
		t.Errorf("SearchTags(100%%) = %v, %v", tags, err)
	}
	tags, _ = db.SearchTags(ctx, "tax_")
	if len(tags) != 1 || tags[0].Name != "tax_2024" {
		t.Errorf("SearchTags(tax_) = %v", tags)
	}
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	owner := mustUser(t, db, "owner")
	jan := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)
	for _, d := range []models.Document{
		{FileType: "application/pdf", CreatedAt: jan},
		{FileType: "application/pdf", CreatedAt: feb},
		{FileType: "image/png", CreatedAt: feb},
	} {
		d.Filename, d.OriginalFilename, d.FilePath, d.OwnerID = "f", "f", "f", owner
		if _, err := db.InsertDocument(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	byType, err := db.CountByType(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]TypeCount{{"application/pdf", 2}, {"image/png", 1}}, byType); diff != "" {
		t.Errorf("CountByType (-want +got):\n%s", diff)
	}
	byMonth, err := db.CountByMonth(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]MonthCount{{"2024-01", 1}, {"2024-02", 2}}, byMonth); diff != "" {
		t.Errorf("CountByMonth (-want +got):\n%s", diff)
	}
}

func TestSearchUsersExcludesCaller(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	me := mustUser(t, db, "anna")
	mustUser(t, db, "annabel")
	mustUser(t, db, "bob")

	got, err := db.SearchUsers(ctx, "ann", me, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Username != "annabel" {
		t.Errorf("SearchUsers = %+v", got)
	}
	got, _ = db.SearchUsers(ctx, "example.com", me, 1)
	if len(got) != 1 {
		t.Errorf("limit not applied: %d rows", len(got))
	}
}

func TestWorkflowTasks(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	u := mustUser(t, db, "u")
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	id, err := db.CreateWorkflow(ctx, models.Workflow{Name: "wf", CreatedByID: u}, []models.Task{
		{Name: "first", AssignedToID: u, DueDate: &due},
		{Name: "second"},
	})
	if err != nil {
		t.Fatalf("CreateWorkflow: %v", err)
	}
	tasks, err := db.WorkflowTasks(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 || tasks[0].Name != "first" || tasks[0].Order != 1 || tasks[1].Order != 2 {
		t.Fatalf("tasks = %+v", tasks)
	}
	if tasks[0].AssignedUsername != "u" || tasks[0].WorkflowName != "wf" || tasks[1].AssignedToID != 0 {
		t.Errorf("joined fields = %+v", tasks)
	}

	open, _ := db.OpenTasksWithDueDate(ctx)
	if len(open) != 1 {
		t.Errorf("OpenTasksWithDueDate = %d, want 1", len(open))
	}

	closed, err := db.SetTaskStatus(ctx, tasks[0].ID, "complete", due)
	if err != nil {
		t.Fatal(err)
	}
	if closed {
		t.Error("workflow closed while a task is still pending")
	}
	done, _ := db.Task(ctx, tasks[0].ID)
	if done.Status != "complete" || done.CompletedAt == nil {
		t.Errorf("completed task = %+v", done)
	}
	if wf, _ := db.Workflow(ctx, id); wf.Status != "active" {
		t.Errorf("workflow status = %q, want active", wf.Status)
	}

	closed, err = db.SetTaskStatus(ctx, tasks[1].ID, "rejected", due)
	if err != nil {
		t.Fatal(err)
	}
	if !closed {
		t.Error("last task did not close the workflow")
	}
	if wf, _ := db.Workflow(ctx, id); wf.Status != "complete" {
		t.Errorf("workflow status = %q, want complete", wf.Status)
	}

	if _, err := db.SetTaskStatus(ctx, 999, "complete", due); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing task err = %v", err)
	}
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	me := mustUser(t, db, "me")
	other := mustUser(t, db, "other")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []int64
	for i := range 7 {
		id, err := db.InsertNotification(ctx, models.Notification{UserID: me, Message: "m", CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	foreign, _ := db.InsertNotification(ctx, models.Notification{UserID: other, Message: "x"})

	if n, _ := db.UnreadCount(ctx, me); n != 7 {
		t.Errorf("UnreadCount = %d, want 7", n)
	}
	recent, _ := db.RecentUnread(ctx, me, 5)
	if len(recent) != 5 || recent[0].ID != ids[6] {
		t.Errorf("RecentUnread not newest first: %+v", recent)
	}

	if err := db.MarkRead(ctx, foreign, me); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("MarkRead foreign err = %v", err)
	}
	if err := db.MarkRead(ctx, 12345, me); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("MarkRead missing err = %v", err)
	}
	if err := db.MarkRead(ctx, ids[0], me); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.UnreadCount(ctx, me); n != 6 {
		t.Errorf("UnreadCount after MarkRead = %d", n)
	}
	if n, _ := db.MarkAllRead(ctx, me); n != 6 {
		t.Errorf("MarkAllRead affected %d", n)
	}
	if n, _ := db.UnreadCount(ctx, other); n != 1 {
		t.Errorf("other user's count changed: %d", n)
	}
}

func TestRecordReminderOnce(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	first, err := db.RecordReminder(ctx, "task:1", "deadline", "2024-01-01")
	if err != nil || !first {
		t.Fatalf("first record = %v, %v", first, err)
	}
	again, _ := db.RecordReminder(ctx, "task:1", "deadline", "2024-01-01")
	if again {
		t.Error("duplicate reminder recorded twice")
	}
	next, _ := db.RecordReminder(ctx, "task:1", "deadline", "2024-01-02")
	if !next {
		t.Error("next day's reminder was rejected")
	}
}

func TestSeed(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	res, err := db.Seed(ctx, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if len(res.UserIDs) != 4 || len(res.WorkflowIDs) != 3 {
		t.Errorf("Seed result = %+v", res)
	}
	if n, _ := db.UnreadCount(ctx, res.UserIDs[0]); n != 3 {
		t.Errorf("admin unread = %d, want 3", n)
	}
	if _, err := db.Seed(ctx, time.Now()); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("second Seed err = %v", err)
	}
}
