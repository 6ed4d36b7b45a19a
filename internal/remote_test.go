package internal

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/docdesk/internal/models"
)

func TestBadgeLogsSnapshots(t *testing.T) {
	c := testComponents(t)
	srv := httptest.NewServer(c.router())
	defer srv.Close()

	c.svc.Notify(context.Background(), models.Notification{UserID: c.cfg.Session.UserID, Message: "Lease shared", Type: "share"})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	var log bytes.Buffer
	if err := Badge(ctx, WithConfig(c.cfg), WithServerURL(srv.URL), WithLogOutput(&log)); err != nil {
		t.Fatalf("Badge: %v", err)
	}
	out := log.String()
	for _, want := range []string{`"count":1`, `"badge":"1"`, `"latest":"Lease shared"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s:\n%s", want, out)
		}
	}
}

func TestBadgeReportsUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	var log bytes.Buffer
	if err := Badge(ctx, WithConfig(NewDefaultConfig()), WithServerURL(url), WithLogOutput(&log)); err != nil {
		t.Fatalf("Badge: %v", err)
	}
	if !strings.Contains(log.String(), "notification poll failed") {
		t.Errorf("expected a poll failure in:\n%s", log.String())
	}
}

func TestFindUsersAnswersLatestQuery(t *testing.T) {
	c := testComponents(t)
	if _, err := c.db.InsertUser(context.Background(), models.User{Username: "alice", Email: "alice@example.com"}); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(c.router())
	defer srv.Close()

	var out, log bytes.Buffer
	err := FindUsers(context.Background(),
		WithConfig(c.cfg),
		WithServerURL(srv.URL),
		WithLogOutput(&log),
		WithIO(strings.NewReader("a\nal\nali\n"), &out))
	if err != nil {
		t.Fatalf("FindUsers: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if lines[0] != "a: Enter at least 2 characters to search" {
		t.Errorf("first line = %q", lines[0])
	}
	if last := lines[len(lines)-1]; !strings.HasPrefix(last, "ali: ") || !strings.HasSuffix(last, " alice <alice@example.com>") {
		t.Errorf("last line = %q", last)
	}
}
