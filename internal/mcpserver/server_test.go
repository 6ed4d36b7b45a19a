package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/docdesk/internal/docservice"
	"github.com/starford/docdesk/internal/testutil"
	"github.com/starford/docdesk/internal/workflow"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	srv   *Server
	svc   *docservice.Service
	user  int64
	other int64
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db := testutil.TestDB(t)
	_, files := testutil.TestFiles(t)
	e := testEnv{
		user:  testutil.User(t, db, "lchen", "user"),
		other: testutil.User(t, db, "msmith", "user"),
	}
	e.svc = docservice.New(db, files, docservice.WithClock(func() time.Time { return fixedNow }))
	e.srv = New(e.svc, e.user)
	e.srv.now = func() time.Time { return fixedNow }
	return e
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"filter_documents":     srv.filterDocuments,
		"task_calendar":        srv.taskCalendar,
		"status_color":         srv.statusColor,
		"search_users":         srv.searchUsers,
		"unread_notifications": srv.unreadNotifications,
		"read_document":        srv.readDocument,
		"search_documents":     srv.searchDocuments,
		"upload_document":      srv.uploadDocument,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func dataURI(mime, body string) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString([]byte(body))
}

func TestUploadAndFilterDocuments(t *testing.T) {
	e := newTestEnv(t)

	r := callTool(t, e.srv, "upload_document", map[string]any{
		"url":      dataURI("text/plain", "minutes of the #board meeting"),
		"filename": "minutes.txt",
		"tags":     []any{"meetings"},
	})
	if r.IsError {
		t.Fatalf("upload error: %s", resultText(r))
	}
	var up uploadResult
	if err := json.Unmarshal([]byte(resultText(r)), &up); err != nil {
		t.Fatal(err)
	}
	if up.Title != "minutes" || len(up.Tags) != 2 {
		t.Errorf("upload = %+v", up)
	}

	r = callTool(t, e.srv, "upload_document", map[string]any{
		"url":      dataURI("text/plain", "minutes of the #board meeting"),
		"filename": "again.txt",
	})
	if !r.IsError || !strings.Contains(resultText(r), "already uploaded") {
		t.Errorf("duplicate result = %q", resultText(r))
	}

	r = callTool(t, e.srv, "filter_documents", map[string]any{"tags": []any{"board"}, "type": "pdf"})
	var listing docservice.Listing
	if err := json.Unmarshal([]byte(resultText(r)), &listing); err != nil {
		t.Fatal(err)
	}
	if listing.Summary != "Showing 0 of 1 documents" {
		t.Errorf("summary = %q", listing.Summary)
	}

	r = callTool(t, e.srv, "search_documents", map[string]any{"query": "board"})
	if !strings.Contains(resultText(r), `"title": "minutes"`) {
		t.Errorf("search_documents = %q", resultText(r))
	}

	r = callTool(t, e.srv, "read_document", map[string]any{"id": float64(up.ID)})
	if !strings.Contains(resultText(r), "board meeting") {
		t.Errorf("read_document = %q", resultText(r))
	}
}

func TestUploadDocumentRejects(t *testing.T) {
	e := newTestEnv(t)
	cases := map[string]map[string]any{
		"loopback":  {"url": "http://127.0.0.1/report.pdf"},
		"scheme":    {"url": "ftp://example.com/report.pdf"},
		"extension": {"url": dataURI("text/plain", "x"), "filename": "run.exe"},
		"magic":     {"url": dataURI("application/pdf", "not a pdf"), "filename": "fake.pdf"},
		"mime":      {"url": dataURI("application/zip", "PK")},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if r := callTool(t, e.srv, "upload_document", args); !r.IsError {
				t.Errorf("expected error, got %q", resultText(r))
			}
		})
	}
}

func TestTaskCalendar(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.svc.CreateWorkflow(context.Background(), e.other, workflow.Form{
		Name: "Audit",
		Tasks: []workflow.TaskInput{
			{Key: "a", Name: "Collect receipts", AssignedTo: e.user, DueDate: "2024-03-15"},
			{Key: "b", Name: "No date", AssignedTo: e.user},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, e.srv, "task_calendar", map[string]any{})
	var got calendarResult
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Title != "March 2024" || len(got.Days) != 1 || got.Days[0].Date != "2024-03-15" {
		t.Fatalf("calendar = %+v", got)
	}
	if got.Days[0].Tasks[0].Name != "Collect receipts" {
		t.Errorf("task = %+v", got.Days[0].Tasks[0])
	}

	if r := callTool(t, e.srv, "task_calendar", map[string]any{"month": 13}); !r.IsError {
		t.Error("expected error for month 13")
	}

	r = callTool(t, e.srv, "unread_notifications", nil)
	if !strings.Contains(resultText(r), `"count": 2`) {
		t.Errorf("unread = %s", resultText(r))
	}
}

func TestStatusColorAndSearch(t *testing.T) {
	e := newTestEnv(t)

	r := callTool(t, e.srv, "status_color", map[string]any{"status": "REJECTED"})
	if !strings.Contains(resultText(r), `"hex": "#dc3545"`) {
		t.Errorf("status_color = %s", resultText(r))
	}
	if r := callTool(t, e.srv, "status_color", map[string]any{}); !r.IsError {
		t.Error("expected error without status")
	}

	if got := resultText(callTool(t, e.srv, "search_users", map[string]any{"query": "m"})); got != "no users found" {
		t.Errorf("short query = %q", got)
	}
	if got := resultText(callTool(t, e.srv, "search_users", map[string]any{"query": "smi"})); !strings.Contains(got, "msmith") {
		t.Errorf("search = %q", got)
	}
	if got := resultText(callTool(t, e.srv, "search_users", map[string]any{"query": "lch"})); got != "no users found" {
		t.Errorf("self search = %q", got)
	}
}

func TestSidecarResource(t *testing.T) {
	e := newTestEnv(t)
	contents, err := e.srv.readSidecarFormat(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || !strings.Contains(tc.Text, ".meta.yaml") {
		t.Errorf("resource = %+v", contents)
	}
}
