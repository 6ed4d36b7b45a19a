// Package docservice coordinates the store, file storage and live events
// behind the HTTP API, the HTML fragments and the MCP tools.
package docservice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/preview"
	"github.com/starford/docdesk/internal/sse"
	"github.com/starford/docdesk/internal/storage"
	"github.com/starford/docdesk/internal/store"
)

// Events receives change notifications. *sse.Broker implements it.
type Events interface {
	PublishDocumentEvent(kind string, doc sse.DocumentRef)
	PublishCount(userID int64, count int)
}

type noEvents struct{}

func (noEvents) PublishDocumentEvent(string, sse.DocumentRef) {}
func (noEvents) PublishCount(int64, int)                      {}

// Service coordinates store and storage operations.
type Service struct {
	db         *store.DB
	files      storage.Provider
	preview    *preview.Renderer
	events     Events
	logger     *slog.Logger
	now        func() time.Time
	inboxOwner int64
}

// Option configures a Service.
type Option func(*Service)

// WithEvents publishes changes to e.
func WithEvents(e Events) Option {
	return func(s *Service) {
		if e != nil {
			s.events = e
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithInboxOwner sets the user that owns documents imported from the inbox.
func WithInboxOwner(userID int64) Option {
	return func(s *Service) { s.inboxOwner = userID }
}

// New creates a document service.
func New(db *store.DB, files storage.Provider, opts ...Option) *Service {
	s := &Service{
		db:      db,
		files:   files,
		preview: preview.NewRenderer(),
		events:  noEvents{},
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// isAdmin reports whether userID has the admin role. Unknown users are
// not admins.
func (s *Service) isAdmin(ctx context.Context, userID int64) (bool, error) {
	u, err := s.db.User(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Role == "admin", nil
}
