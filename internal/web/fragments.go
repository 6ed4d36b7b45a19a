package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/starford/docdesk/internal/api"
	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/calendar"
	"github.com/starford/docdesk/internal/docservice"
	"github.com/starford/docdesk/internal/filter"
	"github.com/starford/docdesk/internal/uistate"
)

// DefaultDiagramWidth is used when the request gives no canvas width.
const DefaultDiagramWidth = 1000

// Fragments serves HTML fragments for the acting session user.
type Fragments struct {
	svc    *docservice.Service
	logger *slog.Logger
	now    func() time.Time
}

// NewFragments creates the fragment handlers.
func NewFragments(svc *docservice.Service, logger *slog.Logger) *Fragments {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fragments{svc: svc, logger: logger, now: time.Now}
}

// Routes mounts every fragment. The caller installs the session
// middleware.
func (f *Fragments) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/calendar", f.calendar)
	r.Get("/documents", f.documents)
	r.Get("/notifications", f.notifications)
	r.Get("/workflow/{id}/diagram", f.diagram)
	r.Get("/nav", f.nav)
	return r
}

func render(w http.ResponseWriter, r *http.Request, code int, c templ.Component) {
	templ.Handler(c, templ.WithStatus(code)).ServeHTTP(w, r)
}

// fail renders an error notice in place of the fragment.
func (f *Fragments) fail(w http.ResponseWriter, r *http.Request, what string, err error) {
	code, msg := http.StatusInternalServerError, what+" could not be loaded"
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		code, msg = http.StatusNotFound, what+" not found"
	case errors.Is(err, apperr.ErrForbidden):
		code, msg = http.StatusForbidden, what+" is not available to you"
	case errors.Is(err, apperr.ErrInvalidInput):
		code, msg = http.StatusBadRequest, err.Error()
	default:
		f.logger.Error("render fragment failed",
			slog.String("fragment", what),
			slog.String("error", err.Error()))
	}
	render(w, r, code, ErrorNotice(msg))
}

func (f *Fragments) calendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, month, err := calendar.ParseMonth(q.Get("year"), q.Get("month"), f.now())
	if err != nil {
		f.fail(w, r, "Calendar", err)
		return
	}
	grid, err := f.svc.Calendar(r.Context(), api.UserID(r.Context()), year, month)
	if err != nil {
		f.fail(w, r, "Calendar", err)
		return
	}
	render(w, r, http.StatusOK, Calendar(grid))
}

func (f *Fragments) documents(w http.ResponseWriter, r *http.Request) {
	listing, err := f.svc.List(r.Context(), api.UserID(r.Context()), filter.CriteriaFromQuery(r.URL.Query()))
	if err != nil {
		f.fail(w, r, "Documents", err)
		return
	}
	render(w, r, http.StatusOK, Documents(listing))
}

func (f *Fragments) notifications(w http.ResponseWriter, r *http.Request) {
	uid := api.UserID(r.Context())
	count, err := f.svc.UnreadCount(r.Context(), uid)
	if err != nil {
		f.fail(w, r, "Notifications", err)
		return
	}
	recent, err := f.svc.RecentNotifications(r.Context(), uid)
	if err != nil {
		f.fail(w, r, "Notifications", err)
		return
	}
	render(w, r, http.StatusOK, Notifications(count, recent, f.now()))
}

func (f *Fragments) diagram(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		f.fail(w, r, "Workflow", apperr.ErrNotFound)
		return
	}
	width := DefaultDiagramWidth
	if v, err := strconv.Atoi(r.URL.Query().Get("width")); err == nil && v > 0 {
		width = v
	}
	d, err := f.svc.Diagram(r.Context(), id, width)
	if err != nil {
		f.fail(w, r, "Workflow", err)
		return
	}
	render(w, r, http.StatusOK, Diagram(d))
}

// nav renders the chrome for the page at ?path=, using the theme cookie.
func (f *Fragments) nav(w http.ResponseWriter, r *http.Request) {
	st := uistate.FromRequest(r)
	if p := r.URL.Query().Get("path"); p != "" {
		st.Path = p
	}
	if r.URL.Query().Get("sidebar") == "open" {
		st = st.ToggleSidebar()
	}
	render(w, r, http.StatusOK, Nav(st))
}
