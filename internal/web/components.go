// Package web renders the server-side HTML fragments the pages embed:
// the task calendar, the filtered document list, the notification
// dropdown, workflow diagrams and the navigation chrome.
//
// Components live in components.templ; run `templ generate` after
// editing it.
package web

//go:generate go run github.com/a-h/templ/cmd/templ@v0.2.793 generate

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/starford/docdesk/internal/calendar"
	"github.com/starford/docdesk/internal/client"
	"github.com/starford/docdesk/internal/models"
	"github.com/starford/docdesk/internal/uistate"
	"github.com/starford/docdesk/internal/workflow"
)

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var navLinks = []struct{ Href, Label, Icon string }{
	{"/", "Dashboard", "bi-speedometer2"},
	{"/documents", "Documents", "bi-folder"},
	{"/workflow", "Workflows", "bi-diagram-3"},
	{"/calendar", "Calendar", "bi-calendar3"},
}

const diagramHeight = workflow.BoxHeight + 2*workflow.BoxTop

func shownTasks(c calendar.Cell) []calendar.Task {
	shown, _ := c.Display(calendar.MaxTasksPerDay)
	return shown
}

func moreTasks(c calendar.Cell) int {
	_, more := c.Display(calendar.MaxTasksPerDay)
	return more
}

func workflowPath(id int64) string { return "/workflow/" + strconv.FormatInt(id, 10) }

func documentPath(id int64) string { return "/documents/" + strconv.FormatInt(id, 10) }

func notificationLink(n models.Notification) string {
	if n.Link == "" {
		return "#"
	}
	return n.Link
}

func badgeVisible(count int) bool { return client.Snapshot{Count: count}.BadgeVisible() }

func badgeText(count int) string { return client.Snapshot{Count: count}.BadgeText() }

func relTime(t, now time.Time) string { return humanize.RelTime(t, now, "ago", "from now") }

func boxCentre(b workflow.Box) int { return b.X + workflow.BoxWidth/2 }

func lightHidden(st uistate.State) bool {
	h, _ := st.ThemeIcons()
	return h
}

func darkHidden(st uistate.State) bool {
	_, h := st.ThemeIcons()
	return h
}
