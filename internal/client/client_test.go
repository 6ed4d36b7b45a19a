package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/starford/docdesk/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestPollFetchesRecentOnlyWhenUnread(t *testing.T) {
	var count atomic.Int32
	var recentCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notifications/count", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]int32{"count": count.Load()})
	})
	mux.HandleFunc("GET /api/notifications/recent", func(w http.ResponseWriter, r *http.Request) {
		recentCalls.Add(1)
		writeJSON(w, map[string]any{"notifications": []models.Notification{{ID: 1, Message: "hi"}}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewPoller(New(srv.URL, srv.Client()), time.Minute, nil)
	snap := p.Poll(context.Background())
	require.NoError(t, snap.Err)
	assert.False(t, snap.BadgeVisible())
	assert.Zero(t, recentCalls.Load())

	count.Store(120)
	snap = p.Poll(context.Background())
	require.NoError(t, snap.Err)
	assert.Equal(t, "99+", snap.BadgeText())
	require.Len(t, snap.Recent, 1)
	assert.Equal(t, "hi", snap.Recent[0].Message)
}

func TestPollReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]string{"error": "internal error"})
	}))
	defer srv.Close()

	snap := NewPoller(New(srv.URL, srv.Client()), 0, nil).Poll(context.Background())
	var se *StatusError
	require.ErrorAs(t, snap.Err, &se)
	assert.Equal(t, 500, se.Code)
	assert.Equal(t, "internal error", se.Message)
	assert.False(t, snap.BadgeVisible())
	assert.Empty(t, snap.BadgeText())
}

func TestRunDeliversUntilCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]int{"count": 0})
	}))
	defer srv.Close()

	var got atomic.Int32
	p := NewPoller(New(srv.URL, srv.Client()), 10*time.Millisecond, func(Snapshot) { got.Add(1) })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return got.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestUserSearcherDropsStaleResponses(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "jo" {
			// The slow first query answers only after the second one.
			select {
			case <-release:
			case <-r.Context().Done():
				return
			}
		}
		writeJSON(w, []User{{ID: 1, Username: q + "-user"}})
	}))
	defer srv.Close()

	var mu sync.Mutex
	var results []SearchResult
	s := NewUserSearcher(New(srv.URL, srv.Client()), func(r SearchResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})

	ctx := context.Background()
	first := s.Search(ctx, "jo")
	second := s.Search(ctx, "joh")
	assert.Greater(t, second, first)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(results) == 1
	}, 2*time.Second, 5*time.Millisecond)
	close(release)
	s.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 1)
	assert.Equal(t, second, results[0].Seq)
	assert.Equal(t, "joh-user", results[0].Users[0].Username)
}

func TestUserSearcherShortQuery(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, []User{})
	}))
	defer srv.Close()

	var last SearchResult
	s := NewUserSearcher(New(srv.URL, srv.Client()), func(r SearchResult) { last = r })
	s.Search(context.Background(), "j")
	assert.Equal(t, HintTooShort, last.Hint)
	assert.Empty(t, last.Users)
	assert.Zero(t, hits.Load())

	s.Search(context.Background(), "zz")
	s.Close()
	// Close bumps the sequence, so the "zz" answer may be dropped; either
	// way the server saw at most one request.
	assert.LessOrEqual(t, hits.Load(), int32(1))
}

func TestPreviewAndMarkRead(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/documents/preview/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "1" {
			writeJSON(w, map[string]string{"preview_html": "<pre>x</pre>"})
			return
		}
		writeJSON(w, map[string]string{"error": "Document not found"})
	})
	mux.HandleFunc("POST /notifications/mark_read/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "9" {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, map[string]bool{"success": true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	html, err := c.Preview(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "<pre>x</pre>", html)
	_, err = c.Preview(ctx, 2)
	assert.EqualError(t, err, "Document not found")

	assert.NoError(t, c.MarkRead(ctx, 3))
	var se *StatusError
	assert.ErrorAs(t, c.MarkRead(ctx, 9), &se)
}
