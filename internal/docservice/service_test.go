package docservice_test

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/docservice"
	"github.com/starford/docdesk/internal/filter"
	"github.com/starford/docdesk/internal/models"
	"github.com/starford/docdesk/internal/store"
	"github.com/starford/docdesk/internal/testutil"
	"github.com/starford/docdesk/internal/workflow"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type env struct {
	svc    *docservice.Service
	db     *store.DB
	events *testutil.Events
	owner  int64
	other  int64
	admin  int64
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testutil.TestDB(t)
	_, files := testutil.TestFiles(t)
	e := env{db: db, events: &testutil.Events{}}
	e.owner = testutil.User(t, db, "owner", "user")
	e.other = testutil.User(t, db, "other", "user")
	e.admin = testutil.User(t, db, "admin", "admin")
	e.svc = docservice.New(db, files,
		docservice.WithEvents(e.events),
		docservice.WithClock(func() time.Time { return fixedNow }),
		docservice.WithInboxOwner(e.owner),
	)
	return e
}

func (e env) upload(t *testing.T, name, body string, tags ...string) int64 {
	t.Helper()
	doc, err := e.svc.Upload(context.Background(), docservice.UploadInput{
		OwnerID:  e.owner,
		Filename: name,
		Tags:     tags,
		Body:     strings.NewReader(body),
	})
	require.NoError(t, err)
	return doc.ID
}

func TestUploadDerivesMetadata(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doc, err := e.svc.Upload(ctx, docservice.UploadInput{
		OwnerID:  e.owner,
		Filename: "notes.md",
		Tags:     []string{"finance"},
		Body:     strings.NewReader("# Budget 2024\nSee #q1 numbers.\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Budget 2024", doc.Title)
	assert.Equal(t, []string{"finance", "q1"}, doc.Tags)
	assert.Equal(t, "notes.md", doc.OriginalFilename)
	assert.True(t, strings.HasPrefix(doc.FilePath, "2024/03/"), doc.FilePath)
	assert.Contains(t, doc.ContentText, "See #q1")
	assert.Equal(t, []string{"created"}, e.events.DocumentKinds())

	pdf, err := e.svc.Upload(ctx, docservice.UploadInput{
		OwnerID: e.owner, Filename: "scan.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "scan", pdf.Title)
	assert.Empty(t, pdf.ContentText)
}

func TestUploadRejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.svc.Upload(ctx, docservice.UploadInput{OwnerID: e.owner, Filename: "tool.exe", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = e.svc.Upload(ctx, docservice.UploadInput{Filename: "a.txt", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	first := e.upload(t, "a.txt", "same bytes")
	dup, err := e.svc.Upload(ctx, docservice.UploadInput{OwnerID: e.owner, Filename: "b.txt", Body: strings.NewReader("same bytes")})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
	require.NotNil(t, dup)
	assert.Equal(t, first, dup.ID)
}

func TestUploadDuplicateIsPerOwner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	upload := func(owner int64, name string) (*models.Document, error) {
		return e.svc.Upload(ctx, docservice.UploadInput{OwnerID: owner, Filename: name, Body: strings.NewReader("shared bytes")})
	}

	theirs, err := upload(e.other, "theirs.txt")
	require.NoError(t, err)
	mine, err := upload(e.owner, "mine.txt")
	require.NoError(t, err, "another user's copy must not block the upload")
	assert.NotEqual(t, theirs.ID, mine.ID)

	dup, err := upload(e.owner, "again.txt")
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
	require.NotNil(t, dup)
	assert.Equal(t, mine.ID, dup.ID)
}

func TestListAppliesFilter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.upload(t, "inv1.pdf", "1", "invoice")
	e.upload(t, "inv2.pdf", "2", "invoice", "2024")
	e.upload(t, "memo.txt", "3")

	all, err := e.svc.List(ctx, e.owner, filter.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, "Showing 3 of 3 documents", all.Summary)

	got, err := e.svc.List(ctx, e.owner, filter.CriteriaFromQuery(url.Values{"tag": {"invoice"}, "type": {"pdf"}}))
	require.NoError(t, err)
	assert.Equal(t, 2, got.Visible)
	assert.Equal(t, "Showing 2 of 3 documents", got.Summary)
	for _, d := range got.Documents {
		assert.Equal(t, d.OriginalFilename != "memo.txt", d.Visible, d.OriginalFilename)
	}

	later, _ := e.svc.List(ctx, e.owner, filter.Criteria{Since: "2024-03-11"})
	assert.Zero(t, later.Visible)
}

func TestAccessControl(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.upload(t, "a.txt", "secret")

	_, err := e.svc.Preview(ctx, id, e.other)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	html, err := e.svc.Preview(ctx, id, e.admin)
	require.NoError(t, err)
	assert.Contains(t, html, "secret")

	assert.ErrorIs(t, e.svc.Share(ctx, id, e.owner, nil), apperr.ErrInvalidInput)
	assert.ErrorIs(t, e.svc.Share(ctx, id, e.other, []int64{e.admin}), apperr.ErrForbidden)
	assert.ErrorIs(t, e.svc.Share(ctx, id, e.owner, []int64{999}), apperr.ErrInvalidInput)
	require.NoError(t, e.svc.Share(ctx, id, e.owner, []int64{e.other}))
	assert.Equal(t, 1, e.events.Count(e.other))

	_, err = e.svc.Preview(ctx, id, e.other)
	assert.NoError(t, err)
	assert.ErrorIs(t, e.svc.Delete(ctx, id, e.other), apperr.ErrForbidden)

	ok, err := e.svc.Verify(ctx, id, e.owner)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, e.svc.Delete(ctx, id, e.owner))
	assert.ErrorIs(t, e.svc.Delete(ctx, id, e.owner), apperr.ErrNotFound)
	assert.Equal(t, []string{"created", "deleted"}, e.events.DocumentKinds())
}

func TestImportFromInbox(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	inbox := t.TempDir()
	p := filepath.Join(inbox, "lease.txt")
	require.NoError(t, os.WriteFile(p, []byte("lease terms"), 0o644))
	require.NoError(t, os.WriteFile(p+".meta.yaml", []byte("title: Office lease\ntags: [legal]\nexpiry: 2025-01-31\n"), 0o644))

	res, err := e.svc.Import(ctx, p)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	doc, err := e.db.Document(ctx, res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "Office lease", doc.Title)
	assert.Equal(t, []string{"legal"}, doc.Tags)
	require.NotNil(t, doc.ExpiryDate)
	assert.NoFileExists(t, p)
	assert.NoFileExists(t, p+".meta.yaml")

	require.NoError(t, os.WriteFile(p, []byte("lease terms"), 0o644))
	again, err := e.svc.Import(ctx, p)
	require.NoError(t, err)
	assert.True(t, again.Duplicate)
	assert.Equal(t, res.DocumentID, again.DocumentID)
	assert.NoFileExists(t, p)
}

func TestNotifications(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for range 7 {
		e.svc.Notify(ctx, modelsNote(e.owner))
	}
	assert.Equal(t, 7, e.events.Count(e.owner))
	recent, err := e.svc.RecentNotifications(ctx, e.owner)
	require.NoError(t, err)
	assert.Len(t, recent, docservice.RecentLimit)

	require.NoError(t, e.svc.MarkRead(ctx, recent[0].ID, e.owner))
	assert.Equal(t, 6, e.events.Count(e.owner))
	assert.ErrorIs(t, e.svc.MarkRead(ctx, recent[1].ID, e.other), apperr.ErrForbidden)

	n, err := e.svc.MarkAllRead(ctx, e.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.Equal(t, 0, e.events.Count(e.owner))
}

func TestSearchUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	hits, err := e.svc.SearchUsers(ctx, "o", e.owner)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.NotNil(t, hits)

	hits, err = e.svc.SearchUsers(ctx, "ot", e.owner)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "other", hits[0].Username)

	hits, _ = e.svc.SearchUsers(ctx, "owner", e.owner)
	assert.Empty(t, hits)
}

func TestWorkflowLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.CreateWorkflow(ctx, e.owner, workflow.Form{})
	var verr *workflow.ValidationError
	require.ErrorAs(t, err, &verr)

	form := workflow.Form{Name: "Invoice approval", Tasks: []workflow.TaskInput{
		{Key: "a", Name: "Check", AssignedTo: e.other, DueDate: "2024-03-15"},
		{Key: "b", Name: "Sign", AssignedTo: e.owner},
	}}
	id, err := e.svc.CreateWorkflow(ctx, e.owner, form)
	require.NoError(t, err)
	assert.Equal(t, 1, e.events.Count(e.other))

	grid, err := e.svc.Calendar(ctx, e.other, 2024, time.March)
	require.NoError(t, err)
	var found int
	for _, c := range grid.Days() {
		if len(c.Tasks) > 0 {
			assert.Equal(t, 15, c.Day)
			found++
		}
	}
	assert.Equal(t, 1, found)

	view, err := e.svc.Workflow(ctx, id)
	require.NoError(t, err)
	require.Len(t, view.Tasks, 2)
	check := view.Tasks[0]

	_, err = e.svc.CompleteTask(ctx, check.ID, e.owner, "approve")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = e.svc.CompleteTask(ctx, check.ID, e.other, "maybe")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	done, err := e.svc.CompleteTask(ctx, check.ID, e.other, "approve")
	require.NoError(t, err)
	assert.Equal(t, "complete", done.Status)
	_, err = e.svc.CompleteTask(ctx, check.ID, e.other, "reject")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	d, err := e.svc.Diagram(ctx, id, 1000)
	require.NoError(t, err)
	require.Len(t, d.Boxes, 2)
	assert.Equal(t, "#198754", d.Boxes[0].Color)
	assert.Equal(t, "owner", d.Boxes[1].AssigneeLabel())

	_, err = e.svc.Diagram(ctx, 404, 1000)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	view, err = e.svc.Workflow(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "active", view.Workflow.Status)

	_, err = e.svc.CompleteTask(ctx, view.Tasks[1].ID, e.owner, "approve")
	require.NoError(t, err)
	view, err = e.svc.Workflow(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "complete", view.Workflow.Status)

	// Assignment, two task results and the completion notice.
	assert.Equal(t, 4, e.events.Count(e.owner))
	recent, err := e.svc.RecentNotifications(ctx, e.owner)
	require.NoError(t, err)
	assert.Equal(t, "Workflow 'Invoice approval' has been completed.", recent[0].Message)
}

func TestDashboardStats(t *testing.T) {
	e := newEnv(t)
	e.upload(t, "a.pdf", "1")
	e.upload(t, "b.pdf", "2")
	e.upload(t, "c.txt", "3")

	stats, err := e.svc.DashboardStats(context.Background(), e.owner)
	require.NoError(t, err)
	require.Len(t, stats.ByType, 2)
	assert.Equal(t, "application/pdf", stats.ByType[0].Type)
	assert.Equal(t, 2, stats.ByType[0].Count)
	assert.NotEmpty(t, stats.ByType[0].Color)
	require.Len(t, stats.ByMonth, docservice.TrendMonths)
	assert.Equal(t, "2024-03", stats.ByMonth[5].Month)
	assert.Equal(t, 3, stats.ByMonth[5].Count)
}

func modelsNote(userID int64) models.Notification {
	return models.Notification{UserID: userID, Message: "hello", Type: "info"}
}
