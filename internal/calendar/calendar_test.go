package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/docdesk/internal/apperr"
)

var someNow = time.Date(2030, time.June, 1, 12, 0, 0, 0, time.UTC)

func countDays(g Grid) int { return len(g.Days()) }

func TestRenderLeapFebruary(t *testing.T) {
	g := Render(2024, time.February, nil, someNow)
	assert.Equal(t, 29, countDays(g))
	assert.Len(t, g.Rows, 5)
	for _, row := range g.Rows {
		assert.Len(t, row, DaysPerWeek)
	}
	// 1 Feb 2024 is a Thursday.
	assert.True(t, g.Rows[0][3].IsPadding())
	assert.Equal(t, 1, g.Rows[0][4].Day)
}

func TestRenderCommonFebruary(t *testing.T) {
	g := Render(2023, time.February, nil, someNow)
	assert.Equal(t, 28, countDays(g))
}

func TestRenderStopsAfterLastRow(t *testing.T) {
	// February 2015 starts on Sunday and fits exactly four weeks.
	g := Render(2015, time.February, nil, someNow)
	assert.Len(t, g.Rows, 4)
	// August 2026 starts on Saturday and needs six.
	g = Render(2026, time.August, nil, someNow)
	assert.Len(t, g.Rows, 6)
	assert.Equal(t, 31, countDays(g))
}

func TestTaskLandsOnItsDay(t *testing.T) {
	task := Task{ID: 1, Name: "Review", DueDate: "2024-03-15"}
	g := Render(2024, time.March, []Task{task}, someNow)

	hits := 0
	for _, c := range g.Days() {
		if len(c.Tasks) > 0 {
			hits++
			assert.Equal(t, 15, c.Day)
			assert.Equal(t, []Task{task}, c.Tasks)
		}
	}
	assert.Equal(t, 1, hits)
}

func TestTimeOfDayStillMatches(t *testing.T) {
	tasks := []Task{
		{ID: 1, DueDate: "2024-03-15T23:59:00"},
		{ID: 2, DueDate: "2024-03-15T00:00:00Z"},
	}
	g := Render(2024, time.March, tasks, someNow)
	for _, c := range g.Days() {
		if c.Day == 15 {
			assert.Len(t, c.Tasks, 2)
			return
		}
	}
	t.Fatal("day 15 not rendered")
}

func TestTasksWithoutDueDateNeverAppear(t *testing.T) {
	tasks := []Task{{ID: 1, Name: "floating"}, {ID: 2, DueDate: "not a date"}}
	for m := time.January; m <= time.December; m++ {
		g := Render(2024, m, tasks, someNow)
		for _, c := range g.Days() {
			assert.Empty(t, c.Tasks, "month %s day %d", m, c.Day)
		}
	}
}

func TestOtherMonthsIgnored(t *testing.T) {
	tasks := []Task{{ID: 1, DueDate: "2023-03-15"}, {ID: 2, DueDate: "2024-04-15"}}
	g := Render(2024, time.March, tasks, someNow)
	for _, c := range g.Days() {
		assert.Empty(t, c.Tasks)
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2024, time.March, 9, 18, 30, 0, 0, time.UTC)
	g := Render(2024, time.March, nil, now)
	today := 0
	for _, c := range g.Days() {
		if c.IsToday {
			today++
			assert.Equal(t, 9, c.Day)
		}
	}
	assert.Equal(t, 1, today)

	g = Render(2024, time.April, nil, now)
	for _, c := range g.Days() {
		assert.False(t, c.IsToday)
	}
}

func TestDisplayKeepsFullList(t *testing.T) {
	c := Cell{Day: 3, Tasks: []Task{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}}
	shown, more := c.Display(MaxTasksPerDay)
	require.Len(t, shown, 2)
	assert.Equal(t, int64(1), shown[0].ID)
	assert.Equal(t, int64(2), shown[1].ID)
	assert.Equal(t, 2, more)
	assert.Len(t, c.Tasks, 4)

	shown, more = Cell{Tasks: []Task{{ID: 9}}}.Display(MaxTasksPerDay)
	assert.Len(t, shown, 1)
	assert.Zero(t, more)

	shown, more = c.Display(-1)
	assert.Empty(t, shown)
	assert.Equal(t, 4, more)
}

func TestTaskOrderPreserved(t *testing.T) {
	tasks := []Task{
		{ID: 3, DueDate: "2024-03-01"},
		{ID: 1, DueDate: "2024-03-01"},
		{ID: 2, DueDate: "2024-03-01"},
	}
	g := Render(2024, time.March, tasks, someNow)
	first := g.Days()[0]
	require.Len(t, first.Tasks, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{first.Tasks[0].ID, first.Tasks[1].ID, first.Tasks[2].ID})
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2000, time.February))
	assert.Equal(t, 28, DaysIn(1900, time.February))
	assert.Equal(t, 31, DaysIn(2024, time.December))
	assert.Equal(t, 30, DaysIn(2024, time.April))
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", TruncateName("short", NameWidth))
	assert.Equal(t, "exactly fifteen", TruncateName("exactly fifteen", NameWidth))
	assert.Equal(t, "Approve the inv...", TruncateName("Approve the invoice batch", NameWidth))
	assert.Equal(t, "àèìòù...", TruncateName("àèìòùàèìòù", 5))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "March 2024", Render(2024, time.March, nil, someNow).Title())
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name        string
		year, month string
		wantYear    int
		wantMonth   time.Month
		wantErr     bool
	}{
		{name: "defaults to now", wantYear: 2030, wantMonth: time.June},
		{name: "explicit", year: "2024", month: "2", wantYear: 2024, wantMonth: time.February},
		{name: "month only", month: "12", wantYear: 2030, wantMonth: time.December},
		{name: "month too big", month: "13", wantErr: true},
		{name: "month zero", month: "0", wantErr: true},
		{name: "year zero", year: "0", wantErr: true},
		{name: "year too big", year: "10000", wantErr: true},
		{name: "not a number", year: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, m, err := ParseMonth(tt.year, tt.month, someNow)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantYear, y)
			assert.Equal(t, tt.wantMonth, m)
		})
	}
}
