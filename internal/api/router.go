package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/docdesk/internal/docservice"
)

// NewRouter creates a chi router with the JSON API under /api and the form
// actions at their page-relative paths. Every route acts as sessionUser.
// events, if non-nil, is mounted at GET /api/events.
func NewRouter(svc *docservice.Service, sessionUser int64, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(Session(sessionUser))
	r.Use(requireSession)

	r.Route("/api", func(r chi.Router) {
		r.Get("/notifications/count", h.UnreadCount)
		r.Get("/notifications/recent", h.RecentNotifications)

		r.Get("/users/search", h.SearchUsers)
		r.Get("/tags/search", h.SearchTags)

		r.Get("/documents", h.ListDocuments)
		r.Post("/documents", h.UploadDocument)
		r.Get("/documents/search", h.SearchDocuments)
		r.Get("/documents/preview/{id}", h.Preview)
		r.Get("/documents/{id}", h.GetDocument)
		r.Delete("/documents/{id}", h.DeleteDocument)
		r.Get("/documents/{id}/verify", h.Verify)
		r.Post("/documents/{id}/share", h.Share)

		r.Post("/workflows", h.CreateWorkflow)
		r.Get("/workflows/{id}", h.GetWorkflow)

		r.Get("/status/{status}", h.Status)
		r.Get("/calendar", h.Calendar)
		r.Get("/dashboard/stats", h.DashboardStats)

		if events != nil {
			r.Get("/events", events.ServeHTTP)
		}
	})

	r.Post("/notifications/mark_read/{id}", h.MarkRead)
	r.Post("/notifications/mark_all_read", h.MarkAllRead)
	r.Post("/workflow/task/{id}/complete", h.CompleteTask)
	r.Get("/documents/{id}/download", h.Download)
	r.Post("/ui/theme", h.ToggleTheme)

	return r
}
