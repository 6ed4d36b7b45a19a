package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/docdesk/internal/calendar"
	"github.com/starford/docdesk/internal/docservice"
	"github.com/starford/docdesk/internal/models"
	"github.com/starford/docdesk/internal/status"
	"github.com/starford/docdesk/internal/uistate"
)

// maxUploadBytes bounds a multipart upload request.
const maxUploadBytes = 50 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
	now func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// UnreadCount handles GET /api/notifications/count.
//
//	@Summary		Unread notification count
//	@Tags			notifications
//	@Produce		json
//	@Success		200	{object}	CountResponse
//	@Router			/api/notifications/count [get]
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.UnreadCount(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, "unread count", err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// RecentNotifications handles GET /api/notifications/recent.
//
//	@Summary		Newest unread notifications
//	@Tags			notifications
//	@Produce		json
//	@Success		200	{object}	RecentResponse
//	@Router			/api/notifications/recent [get]
func (h *Handler) RecentNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.RecentNotifications(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, "recent notifications", err)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, RecentResponse{Notifications: items})
}

// MarkRead handles POST /notifications/mark_read/{id}.
//
//	@Summary		Mark one notification as read
//	@Tags			notifications
//	@Produce		json
//	@Param			id	path		int	true	"Notification id"
//	@Success		200	{object}	SuccessResponse
//	@Failure		403	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Router			/notifications/mark_read/{id} [post]
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	if err := h.svc.MarkRead(r.Context(), id, UserID(r.Context())); err != nil {
		writeError(w, "mark read", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// MarkAllRead handles POST /notifications/mark_all_read.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkAllRead(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, "mark all read", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Updated: n})
}

// SearchUsers handles GET /api/users/search?q=.
//
//	@Summary		Search users to share with or assign
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"At least two characters"
//	@Success		200	{array}		UserHit
//	@Router			/api/users/search [get]
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	hits, err := h.svc.SearchUsers(r.Context(), r.URL.Query().Get("q"), UserID(r.Context()))
	if err != nil {
		writeError(w, "search users", err)
		return
	}
	if hits == nil {
		hits = []UserHit{}
	}
	writeJSON(w, http.StatusOK, hits)
}

// SearchTags handles GET /api/tags/search?q=.
func (h *Handler) SearchTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.SearchTags(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, "search tags", err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

// Status handles GET /api/status/{status}.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "status")
	tok := status.ColorFor(label)
	writeJSON(w, http.StatusOK, StatusResponse{
		Status: label,
		Token:  string(tok),
		Hex:    tok.Hex(),
		Badge:  tok.BadgeClass(),
	})
}

// Calendar handles GET /api/calendar?year=&month=. Missing values default
// to the current month.
//
//	@Summary		Month grid of the caller's open tasks
//	@Tags			workflows
//	@Produce		json
//	@Param			year	query		int	false	"Year"
//	@Param			month	query		int	false	"Month 1-12"
//	@Success		200		{object}	calendar.Grid
//	@Failure		400		{object}	errResponse
//	@Router			/api/calendar [get]
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, month, err := calendar.ParseMonth(q.Get("year"), q.Get("month"), h.now())
	if err != nil {
		writeError(w, "calendar", err)
		return
	}
	grid, err := h.svc.Calendar(r.Context(), UserID(r.Context()), year, month)
	if err != nil {
		writeError(w, "calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// DashboardStats handles GET /api/dashboard/stats.
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.DashboardStats(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, "dashboard stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ToggleTheme handles POST /ui/theme. The new state is written back as a
// cookie.
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	st := uistate.FromRequest(r).Toggle()
	http.SetCookie(w, st.Cookie())
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: st.HTMLTheme()})
}
