// Package calendar lays out a month of workflow task due dates as a
// Sunday-first week grid.
package calendar

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/starford/docdesk/internal/apperr"
)

const (
	// MaxRows is the tallest a month grid can get.
	MaxRows = 6
	// DaysPerWeek is the grid width.
	DaysPerWeek = 7
	// MaxTasksPerDay is how many tasks a day cell lists before "+N more".
	MaxTasksPerDay = 2
	// NameWidth is the label length after which task names are shortened.
	NameWidth = 15
)

var dueLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Task is a workflow task as embedded in the dashboard.
type Task struct {
	ID           int64  `json:"id"`
	Name         string `json:"task_name"`
	DueDate      string `json:"due_date,omitempty"`
	WorkflowID   int64  `json:"workflow_id"`
	WorkflowName string `json:"workflow_name"`
	Status       string `json:"status,omitempty"`
}

// Due parses DueDate. ok is false when the task has no usable due date.
func (t Task) Due() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	for _, layout := range dueLayouts {
		if d, err := time.Parse(layout, t.DueDate); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// Cell is one grid position. Day is zero for padding cells.
type Cell struct {
	Day     int    `json:"day,omitempty"`
	IsToday bool   `json:"is_today,omitempty"`
	Tasks   []Task `json:"tasks,omitempty"`
}

// IsPadding reports whether the cell sits outside the month.
func (c Cell) IsPadding() bool { return c.Day == 0 }

// Display returns at most limit tasks and the number left over. A negative
// limit shows nothing. The cell's full task list is untouched.
func (c Cell) Display(limit int) (shown []Task, more int) {
	limit = max(limit, 0)
	if len(c.Tasks) <= limit {
		return c.Tasks, 0
	}
	return c.Tasks[:limit], len(c.Tasks) - limit
}

// Grid is a rendered month. Rows holds between four and six weeks.
type Grid struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Rows  [][]Cell   `json:"rows"`
}

// Title returns e.g. "March 2024".
func (g Grid) Title() string {
	return time.Date(g.Year, g.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// Days returns the non-padding cells in date order.
func (g Grid) Days() []Cell {
	var out []Cell
	for _, row := range g.Rows {
		for _, c := range row {
			if !c.IsPadding() {
				out = append(out, c)
			}
		}
	}
	return out
}

// DaysIn returns the number of days in the month, using day zero of the
// following month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Render builds the grid for month/year and assigns each task with a due
// date to the day matching its year, month and day. now decides which
// cell is today.
func Render(year int, month time.Month, tasks []Task, now time.Time) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Normalise out-of-range months the way time.Date does.
	year, month = first.Year(), first.Month()
	start := int(first.Weekday())
	days := DaysIn(year, month)

	byDay := make(map[int][]Task)
	for _, t := range tasks {
		d, ok := t.Due()
		if !ok || d.Year() != year || d.Month() != month {
			continue
		}
		byDay[d.Day()] = append(byDay[d.Day()], t)
	}

	ny, nm, nd := now.Date()
	g := Grid{Year: year, Month: month}
	day := 1
	for row := 0; row < MaxRows && day <= days; row++ {
		cells := make([]Cell, DaysPerWeek)
		for col := range DaysPerWeek {
			if (row == 0 && col < start) || day > days {
				continue
			}
			cells[col] = Cell{
				Day:     day,
				IsToday: ny == year && nm == month && nd == day,
				Tasks:   byDay[day],
			}
			day++
		}
		g.Rows = append(g.Rows, cells)
	}
	return g
}

// TruncateName shortens s to width runes followed by "...".
func TruncateName(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width]) + "..."
}

// ParseMonth reads optional year and month values, such as query
// parameters. An empty value falls back to now's year or month. Years run
// 1 to 9999 and months 1 to 12; anything else is apperr.ErrInvalidInput.
func ParseMonth(year, month string, now time.Time) (int, time.Month, error) {
	y, m := now.Year(), now.Month()
	if year != "" {
		v, err := strconv.Atoi(year)
		if err != nil || v < 1 || v > 9999 {
			return 0, 0, fmt.Errorf("invalid year %q: %w", year, apperr.ErrInvalidInput)
		}
		y = v
	}
	if month != "" {
		v, err := strconv.Atoi(month)
		if err != nil || v < 1 || v > 12 {
			return 0, 0, fmt.Errorf("invalid month %q: %w", month, apperr.ErrInvalidInput)
		}
		m = time.Month(v)
	}
	return y, m, nil
}
