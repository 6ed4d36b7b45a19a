package docservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/calendar"
	"github.com/starford/docdesk/internal/models"
	"github.com/starford/docdesk/internal/status"
	"github.com/starford/docdesk/internal/workflow"
)

// CreateWorkflow validates the form, stores the workflow and notifies
// every assignee.
func (s *Service) CreateWorkflow(ctx context.Context, creatorID int64, f workflow.Form) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	tasks := make([]models.Task, len(f.Tasks))
	for i, in := range f.Tasks {
		tasks[i] = models.Task{
			Name:         in.Name,
			Description:  in.Description,
			AssignedToID: in.AssignedTo,
			Status:       status.Pending,
		}
		if in.DueDate != "" {
			// Validate already checked the layout.
			due, _ := time.Parse(workflow.DateLayout, in.DueDate)
			tasks[i].DueDate = &due
		}
	}
	for _, t := range tasks {
		if _, err := s.db.User(ctx, t.AssignedToID); err != nil {
			return 0, &workflow.ValidationError{Messages: []string{fmt.Sprintf("Unknown user %d", t.AssignedToID)}}
		}
	}

	id, err := s.db.CreateWorkflow(ctx, models.Workflow{Name: f.Name, Description: f.Description, CreatedByID: creatorID}, tasks)
	if err != nil {
		return 0, err
	}
	s.logger.Info("workflow created", slog.Int64("id", id), slog.Int("tasks", len(tasks)))
	for _, t := range tasks {
		s.notify(ctx, models.Notification{
			UserID:  t.AssignedToID,
			Message: fmt.Sprintf("You have been assigned: %s", t.Name),
			Link:    fmt.Sprintf("/workflow/%d", id),
			Type:    "workflow",
		})
	}
	return id, nil
}

// WorkflowView is a workflow with its ordered tasks.
type WorkflowView struct {
	Workflow models.Workflow `json:"workflow"`
	Tasks    []models.Task   `json:"tasks"`
}

// Workflow loads a workflow and its tasks.
func (s *Service) Workflow(ctx context.Context, id int64) (*WorkflowView, error) {
	wf, err := s.db.Workflow(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.db.WorkflowTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WorkflowView{Workflow: *wf, Tasks: tasks}, nil
}

// Diagram lays out a workflow's tasks for a canvas of the given width.
func (s *Service) Diagram(ctx context.Context, id int64, width int) (workflow.Diagram, error) {
	view, err := s.Workflow(ctx, id)
	if err != nil {
		return workflow.Diagram{}, err
	}
	in := make([]workflow.DiagramTask, len(view.Tasks))
	for i, t := range view.Tasks {
		in[i] = workflow.DiagramTask{Name: t.Name, Assignee: t.AssignedUsername, Status: t.Status}
	}
	return workflow.Layout(in, width), nil
}

// CompleteTask applies an approve or reject action to a task assigned to
// userID and notifies the workflow's creator. Finishing the last open task
// completes the workflow.
func (s *Service) CompleteTask(ctx context.Context, taskID, userID int64, action string) (*models.Task, error) {
	next, err := workflow.Complete(action)
	if err != nil {
		return nil, err
	}
	task, err := s.db.Task(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.AssignedToID != userID {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, apperr.ErrForbidden
		}
	}
	if task.Status != status.Pending && task.Status != status.InProgress {
		return nil, fmt.Errorf("task %d is already %s: %w", taskID, task.Status, apperr.ErrInvalidInput)
	}
	workflowDone, err := s.db.SetTaskStatus(ctx, taskID, next, s.now())
	if err != nil {
		return nil, err
	}
	wf, err := s.db.Workflow(ctx, task.WorkflowID)
	if err != nil {
		return nil, err
	}
	verb := "approved"
	if next == status.Rejected {
		verb = "rejected"
	}
	s.notify(ctx, models.Notification{
		UserID:  wf.CreatedByID,
		Message: fmt.Sprintf("Task %q was %s", task.Name, verb),
		Link:    fmt.Sprintf("/workflow/%d", wf.ID),
		Type:    "workflow",
	})
	if workflowDone {
		s.logger.Info("workflow completed", slog.Int64("id", wf.ID))
		s.notify(ctx, models.Notification{
			UserID:  wf.CreatedByID,
			Message: fmt.Sprintf("Workflow '%s' has been completed.", wf.Name),
			Link:    fmt.Sprintf("/workflow/%d", wf.ID),
			Type:    "workflow",
		})
	}
	return s.db.Task(ctx, taskID)
}

// CalendarTasks returns userID's open tasks in calendar form.
func (s *Service) CalendarTasks(ctx context.Context, userID int64) ([]calendar.Task, error) {
	var out []calendar.Task
	for _, st := range []string{status.Pending, status.InProgress} {
		tasks, err := s.db.TasksForUser(ctx, userID, st)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			ct := calendar.Task{
				ID:           t.ID,
				Name:         t.Name,
				WorkflowID:   t.WorkflowID,
				WorkflowName: t.WorkflowName,
				Status:       t.Status,
			}
			if t.DueDate != nil {
				ct.DueDate = t.DueDate.Format(time.DateOnly)
			}
			out = append(out, ct)
		}
	}
	return out, nil
}

// Calendar renders userID's task calendar for a month.
func (s *Service) Calendar(ctx context.Context, userID int64, year int, month time.Month) (calendar.Grid, error) {
	tasks, err := s.CalendarTasks(ctx, userID)
	if err != nil {
		return calendar.Grid{}, err
	}
	return calendar.Render(year, month, tasks, s.now()), nil
}
