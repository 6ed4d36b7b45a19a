// Package reminder turns upcoming task due dates and document expiry
// dates into notifications, at most one per subject, kind and day.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/docdesk/internal/models"
)

// Kind is the notification type a reminder produces.
type Kind string

const (
	KindReminder Kind = "reminder"
	KindDeadline Kind = "deadline"
	KindOverdue  Kind = "overdue"
)

// OverdueWindow is how many days late a subject keeps producing reminders.
const OverdueWindow = 7

// DaysUntil counts calendar days from today to due, ignoring clock time.
func DaysUntil(due, today time.Time) int {
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(t).Hours() / 24)
}

// Classify decides whether a subject due in days needs a reminder today.
func Classify(days, notifyDays int) (Kind, bool) {
	switch {
	case days == 0:
		return KindDeadline, true
	case days < 0 && days > -OverdueWindow:
		return KindOverdue, true
	case days > 0 && days == notifyDays:
		return KindReminder, true
	default:
		return "", false
	}
}

// Suffix is appended to the reminder message.
func Suffix(kind Kind, days int) string {
	switch kind {
	case KindDeadline:
		return "Due today!"
	case KindOverdue:
		return fmt.Sprintf("Overdue by %d days!", -days)
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}

// Subject is something with a due date and a recipient.
type Subject struct {
	Key     string // unique per subject, e.g. "task:12"
	Title   string
	Link    string
	Due     time.Time
	UserIDs []int64
}

// Source supplies subjects and remembers which reminders went out.
type Source interface {
	OpenTasksWithDueDate(ctx context.Context) ([]models.Task, error)
	DocumentsWithExpiry(ctx context.Context) ([]models.Document, error)
	RecordReminder(ctx context.Context, subject, kind, day string) (bool, error)
}

// Notifier delivers a notification.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// Job checks subjects periodically.
type Job struct {
	src        Source
	notifier   Notifier
	notifyDays int
	logger     *slog.Logger
	now        func() time.Time
}

// NewJob creates a reminder job. notifyDays is how far ahead the first
// reminder is sent.
func NewJob(src Source, notifier Notifier, notifyDays int, logger *slog.Logger) *Job {
	return &Job{src: src, notifier: notifier, notifyDays: notifyDays, logger: logger, now: time.Now}
}

// subjects gathers tasks and expiring documents concurrently.
func (j *Job) subjects(ctx context.Context) ([]Subject, error) {
	var tasks []models.Task
	var docs []models.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = j.src.OpenTasksWithDueDate(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		docs, err = j.src.DocumentsWithExpiry(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Subject, 0, len(tasks)+len(docs))
	for _, t := range tasks {
		if t.DueDate == nil || t.AssignedToID == 0 {
			continue
		}
		out = append(out, Subject{
			Key:     fmt.Sprintf("task:%d", t.ID),
			Title:   fmt.Sprintf("task %q in %s", t.Name, t.WorkflowName),
			Link:    fmt.Sprintf("/workflow/%d", t.WorkflowID),
			Due:     *t.DueDate,
			UserIDs: []int64{t.AssignedToID},
		})
	}
	for _, d := range docs {
		if d.ExpiryDate == nil {
			continue
		}
		out = append(out, Subject{
			Key:     fmt.Sprintf("document:%d", d.ID),
			Title:   fmt.Sprintf("document '%s' expires", d.DisplayTitle()),
			Link:    fmt.Sprintf("/documents/%d", d.ID),
			Due:     *d.ExpiryDate,
			UserIDs: []int64{d.OwnerID},
		})
	}
	return out, nil
}

// RunOnce sends today's reminders and returns how many notifications it
// created.
func (j *Job) RunOnce(ctx context.Context) (int, error) {
	today := j.now()
	day := today.Format(time.DateOnly)
	subjects, err := j.subjects(ctx)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, s := range subjects {
		days := DaysUntil(s.Due, today)
		kind, ok := Classify(days, j.notifyDays)
		if !ok {
			continue
		}
		fresh, err := j.src.RecordReminder(ctx, s.Key, string(kind), day)
		if err != nil {
			return sent, err
		}
		if !fresh {
			continue
		}
		msg := fmt.Sprintf("Reminder: %s - %s", s.Title, Suffix(kind, days))
		for _, uid := range s.UserIDs {
			j.notifier.Notify(ctx, models.Notification{UserID: uid, Message: msg, Link: s.Link, Type: string(kind)})
			sent++
		}
	}
	j.logger.Info("reminders checked", slog.Int("subjects", len(subjects)), slog.Int("sent", sent))
	return sent, nil
}

// Run checks immediately and then every interval until ctx is cancelled.
func (j *Job) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if _, err := j.RunOnce(ctx); err != nil && ctx.Err() == nil {
			j.logger.Error("reminders failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}
