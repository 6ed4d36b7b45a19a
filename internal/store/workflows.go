package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/models"
)

const taskColumns = `
	t.id, t.workflow_id, w.name, t.name, t.description, t.position, t.status,
	COALESCE(t.assigned_to_id, 0), COALESCE(u.username, ''), t.due_date, t.completed_at`

const taskFrom = `
	FROM workflow_tasks t
	JOIN workflows w ON w.id = t.workflow_id
	LEFT JOIN users u ON u.id = t.assigned_to_id`

// CreateWorkflow inserts a workflow and its tasks in order, returning the
// workflow id.
func (db *DB) CreateWorkflow(ctx context.Context, wf models.Workflow, tasks []models.Task) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	status := wf.Status
	if status == "" {
		status = "active"
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO workflows (name, description, status, created_by_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, wf.Name, wf.Description, status, wf.CreatedByID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("store: insert workflow: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: workflow id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO workflow_tasks (workflow_id, name, description, position, status, assigned_to_id, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("store: prepare task insert: %w", err)
	}
	defer stmt.Close()
	for i, t := range tasks {
		st := t.Status
		if st == "" {
			st = "pending"
		}
		var assignee any
		if t.AssignedToID != 0 {
			assignee = t.AssignedToID
		}
		if _, err := stmt.ExecContext(ctx, id, t.Name, t.Description, i+1, st, assignee, timeArg(t.DueDate)); err != nil {
			return 0, fmt.Errorf("store: insert task: %w", err)
		}
	}
	return id, tx.Commit()
}

// Workflow returns a workflow by id.
func (db *DB) Workflow(ctx context.Context, id int64) (*models.Workflow, error) {
	var wf models.Workflow
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, name, description, status, created_by_id, created_at FROM workflows WHERE id = ?
	`, id).Scan(&wf.ID, &wf.Name, &wf.Description, &wf.Status, &wf.CreatedByID, &wf.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: workflow %d: %w", id, err)
	}
	return &wf, nil
}

// WorkflowTasks returns a workflow's tasks in their defined order.
func (db *DB) WorkflowTasks(ctx context.Context, workflowID int64) ([]models.Task, error) {
	return db.queryTasks(ctx, `SELECT `+taskColumns+taskFrom+` WHERE t.workflow_id = ? ORDER BY t.position`, workflowID)
}

// TasksForUser returns tasks assigned to userID with the given status,
// earliest due first; tasks without a due date come last.
func (db *DB) TasksForUser(ctx context.Context, userID int64, status string) ([]models.Task, error) {
	return db.queryTasks(ctx, `SELECT `+taskColumns+taskFrom+`
		WHERE t.assigned_to_id = ? AND t.status = ?
		ORDER BY t.due_date IS NULL, t.due_date, t.id`, userID, status)
}

// OpenTasksWithDueDate returns pending or in-progress tasks that have a
// due date and an assignee.
func (db *DB) OpenTasksWithDueDate(ctx context.Context) ([]models.Task, error) {
	return db.queryTasks(ctx, `SELECT `+taskColumns+taskFrom+`
		WHERE t.status IN ('pending', 'in_progress')
		  AND t.due_date IS NOT NULL
		  AND t.assigned_to_id IS NOT NULL
		ORDER BY t.due_date, t.id`)
}

// Task returns a single task.
func (db *DB) Task(ctx context.Context, id int64) (*models.Task, error) {
	tasks, err := db.queryTasks(ctx, `SELECT `+taskColumns+taskFrom+` WHERE t.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &tasks[0], nil
}

// SetTaskStatus updates a task's status, stamping completed_at when the
// task leaves the open states. When no task of the workflow is left
// pending or in progress the workflow itself is marked complete, and
// workflowDone reports that this call closed it.
func (db *DB) SetTaskStatus(ctx context.Context, id int64, status string, at time.Time) (workflowDone bool, err error) {
	var completed any
	if status != "pending" && status != "in_progress" {
		completed = at.UTC()
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var workflowID int64
	err = tx.QueryRowContext(ctx, `SELECT workflow_id FROM workflow_tasks WHERE id = ?`, id).Scan(&workflowID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, apperr.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("store: task workflow: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE workflow_tasks SET status = ?, completed_at = ? WHERE id = ?`, status, completed, id); err != nil {
		return false, fmt.Errorf("store: set task status: %w", err)
	}

	var open int
	if err := tx.QueryRowContext(ctx, `
		SELECT count(*) FROM workflow_tasks
		WHERE workflow_id = ? AND status IN ('pending', 'in_progress')
	`, workflowID).Scan(&open); err != nil {
		return false, fmt.Errorf("store: count open tasks: %w", err)
	}
	if open == 0 {
		res, err := tx.ExecContext(ctx,
			`UPDATE workflows SET status = 'complete' WHERE id = ? AND status != 'complete'`, workflowID)
		if err != nil {
			return false, fmt.Errorf("store: complete workflow: %w", err)
		}
		n, _ := res.RowsAffected()
		workflowDone = n > 0
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("store: commit: %w", err)
	}
	return workflowDone, nil
}

func (db *DB) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: tasks: %w", err)
	}
	defer rows.Close()

	out := []models.Task{}
	for rows.Next() {
		var (
			t         models.Task
			due, done sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.WorkflowID, &t.WorkflowName, &t.Name, &t.Description, &t.Order,
			&t.Status, &t.AssignedToID, &t.AssignedUsername, &due, &done); err != nil {
			return nil, err
		}
		t.DueDate = nullTime(due)
		t.CompletedAt = nullTime(done)
		out = append(out, t)
	}
	return out, rows.Err()
}
