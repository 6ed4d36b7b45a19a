// Package sse implements a Server-Sent Events broker that pushes document
// and notification changes to open dashboards.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	TypeNotificationCount = "notification.count"
	TypeDocumentCreated   = "document.created"
	TypeDocumentDeleted   = "document.deleted"
	TypeDashboardUpdated  = "dashboard.updated"
)

// Event represents an SSE event. A non-zero UserID limits delivery to
// that user's connections.
type Event struct {
	Type   string `json:"type"`
	Data   any    `json:"data"`
	UserID int64  `json:"-"`
}

// DocumentRef identifies the document a change refers to.
type DocumentRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title,omitempty"`
}

type documentEventReq struct {
	kind string
	doc  DocumentRef
}

type subscription struct {
	ch     chan []byte
	userID int64
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set and the dashboard
// throttle timestamp; public methods talk to it over channels. Each
// client remembers the user it was opened for, zero meaning anonymous.
type Broker struct {
	dashboardMin time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	documentCh    chan documentEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits dashboard.updated at most once per
// dashboardThrottle.
func NewBroker(dashboardThrottle time.Duration) *Broker {
	if dashboardThrottle <= 0 {
		dashboardThrottle = 2 * time.Second
	}

	b := &Broker{
		dashboardMin:  dashboardThrottle,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		documentCh:    make(chan documentEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

// Format renders an event in the text/event-stream wire format.
func Format(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event.Type, payload), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]int64)
	var lastDashboard time.Time

	broadcast := func(event Event) {
		raw, err := Format(event)
		if err != nil {
			return
		}
		for ch, userID := range clients {
			if event.UserID != 0 && event.UserID != userID {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than block the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = sub.userID

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.documentCh:
			switch req.kind {
			case "created":
				broadcast(Event{Type: TypeDocumentCreated, Data: req.doc})
			case "deleted":
				broadcast(Event{Type: TypeDocumentDeleted, Data: req.doc})
			default:
				continue
			}

			now := time.Now()
			if now.Sub(lastDashboard) >= b.dashboardMin {
				lastDashboard = now
				broadcast(Event{Type: TypeDashboardUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client for userID and returns its channel. Clients
// with a zero userID only see broadcast events.
func (b *Broker) Subscribe(userID int64) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{ch: ch, userID: userID}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to every matching client.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishCount announces a user's new unread notification count to that
// user's connections only.
func (b *Broker) PublishCount(userID int64, count int) {
	b.Publish(Event{Type: TypeNotificationCount, UserID: userID, Data: map[string]int{
		"count": count,
	}})
}

// PublishDocumentEvent publishes a document change ("created" or
// "deleted") and a throttled dashboard.updated event.
func (b *Broker) PublishDocumentEvent(kind string, doc DocumentRef) {
	if b.closed.Load() {
		return
	}
	select {
	case b.documentCh <- documentEventReq{kind: kind, doc: doc}:
	case <-b.stopped:
	}
}

// Handler returns the SSE endpoint (GET /api/events). userOf resolves the
// connection's user from the request context.
func (b *Broker) Handler(userOf func(context.Context) int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.serve(w, r, userOf(r.Context()))
	})
}

// ServeHTTP serves an anonymous stream that receives broadcasts only.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.serve(w, r, 0)
}

func (b *Broker) serve(w http.ResponseWriter, r *http.Request, userID int64) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(userID)
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
