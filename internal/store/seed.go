package store

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/models"
)

// SeedResult reports the ids Seed created.
type SeedResult struct {
	UserIDs     []int64
	WorkflowIDs []int64
}

// Seed fills an empty database with sample users, workflows and
// notifications dated relative to now. It refuses to touch a database that
// already has users.
func (db *DB) Seed(ctx context.Context, now time.Time) (SeedResult, error) {
	var res SeedResult
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return res, fmt.Errorf("store: seed: %w", err)
	}
	if n > 0 {
		return res, fmt.Errorf("store: seed: database has %d users: %w", n, apperr.ErrAlreadyExists)
	}

	users := []models.User{
		{Username: "admin", Email: "admin@example.com", FirstName: "Ada", LastName: "Admin", Role: "admin"},
		{Username: "jdoe", Email: "jane.doe@example.com", FirstName: "Jane", LastName: "Doe", Role: "manager"},
		{Username: "msmith", Email: "mark.smith@example.com", FirstName: "Mark", LastName: "Smith"},
		{Username: "lchen", Email: "lin.chen@example.com", FirstName: "Lin", LastName: "Chen"},
	}
	for _, u := range users {
		id, err := db.InsertUser(ctx, u)
		if err != nil {
			return res, err
		}
		res.UserIDs = append(res.UserIDs, id)
	}
	admin, jane, mark, lin := res.UserIDs[0], res.UserIDs[1], res.UserIDs[2], res.UserIDs[3]

	day := func(offset int) *time.Time {
		t := time.Date(now.Year(), now.Month(), now.Day(), 17, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
		return &t
	}

	workflows := []struct {
		wf    models.Workflow
		tasks []models.Task
	}{
		{
			wf: models.Workflow{Name: "Invoice approval", Description: "Quarterly supplier invoices", CreatedByID: admin},
			tasks: []models.Task{
				{Name: "Check totals", AssignedToID: mark, DueDate: day(-3), Status: "complete"},
				{Name: "Manager sign-off", AssignedToID: admin, DueDate: day(1)},
				{Name: "Archive", AssignedToID: lin, DueDate: day(5)},
			},
		},
		{
			wf: models.Workflow{Name: "Contract review", Description: "Renewal for the office lease", CreatedByID: jane},
			tasks: []models.Task{
				{Name: "Legal review", AssignedToID: admin, DueDate: day(-2), Status: "in_progress"},
				{Name: "Budget check", AssignedToID: admin, DueDate: day(0)},
				{Name: "Signature", AssignedToID: jane, DueDate: day(10)},
			},
		},
		{
			wf: models.Workflow{Name: "Policy update", CreatedByID: admin},
			tasks: []models.Task{
				{Name: "Draft changes", AssignedToID: admin, DueDate: day(3)},
				{Name: "Publish", DueDate: day(14)},
			},
		},
	}
	for _, w := range workflows {
		id, err := db.CreateWorkflow(ctx, w.wf, w.tasks)
		if err != nil {
			return res, err
		}
		res.WorkflowIDs = append(res.WorkflowIDs, id)
		for _, t := range w.tasks {
			if t.Status != "complete" {
				continue
			}
			// Completed fixtures need a completion stamp.
			if _, err := db.conn.ExecContext(ctx, `
				UPDATE workflow_tasks SET completed_at = ? WHERE workflow_id = ? AND name = ?
			`, now.UTC(), id, t.Name); err != nil {
				return res, fmt.Errorf("store: seed: %w", err)
			}
		}
	}

	notes := []models.Notification{
		{UserID: admin, Message: "Welcome to DocDesk", Type: "info", CreatedAt: now.Add(-48 * time.Hour)},
		{UserID: admin, Message: "You have been assigned: Manager sign-off", Link: fmt.Sprintf("/workflow/%d", res.WorkflowIDs[0]), Type: "workflow", CreatedAt: now.Add(-2 * time.Hour)},
		{UserID: admin, Message: "Jane Doe shared a document with you", Type: "document", CreatedAt: now.Add(-30 * time.Minute)},
		{UserID: jane, Message: "Contract review started", Link: fmt.Sprintf("/workflow/%d", res.WorkflowIDs[1]), Type: "workflow", CreatedAt: now.Add(-time.Hour)},
	}
	for _, nt := range notes {
		if _, err := db.InsertNotification(ctx, nt); err != nil {
			return res, err
		}
	}
	return res, nil
}
