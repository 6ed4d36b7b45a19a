// Package workflow manages the workflow creation form and the task
// diagram shown on a workflow's page.
package workflow

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/status"
)

// DateLayout is the accepted due date format.
const DateLayout = "2006-01-02"

// TaskInput is one task row of the creation form. Key is assigned once
// and survives removal of other rows.
type TaskInput struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AssignedTo  int64  `json:"assigned_to"`
	DueDate     string `json:"due_date,omitempty"`
}

// Form is the workflow creation form.
type Form struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Tasks       []TaskInput `json:"tasks"`
}

// AddTask appends an empty task row with a fresh key.
func (f *Form) AddTask() TaskInput {
	t := TaskInput{Key: uuid.NewString()}
	f.Tasks = append(f.Tasks, t)
	return t
}

// RemoveTask drops the row with key. It reports whether a row was removed.
func (f *Form) RemoveTask(key string) bool {
	i := slices.IndexFunc(f.Tasks, func(t TaskInput) bool { return t.Key == key })
	if i < 0 {
		return false
	}
	f.Tasks = slices.Delete(f.Tasks, i, i+1)
	return true
}

// FieldSet is the rendering view of one task row. Numbers and DOM ids
// follow list order; input names are keyed and never renumbered.
type FieldSet struct {
	Task    TaskInput
	Number  int
	Heading string
	DOMID   string
}

// InputName returns the form field name for field of this row.
func (fs FieldSet) InputName(field string) string {
	return "task_" + field + "." + fs.Task.Key
}

// InputID returns the DOM id for field of this row.
func (fs FieldSet) InputID(field string) string {
	return fmt.Sprintf("task_%s_%d", field, fs.Number)
}

// Fields derives the numbered rows from the current task list.
func (f Form) Fields() []FieldSet {
	out := make([]FieldSet, len(f.Tasks))
	for i, t := range f.Tasks {
		n := i + 1
		out[i] = FieldSet{
			Task:    t,
			Number:  n,
			Heading: fmt.Sprintf("Task #%d", n),
			DOMID:   fmt.Sprintf("task-%d", n),
		}
	}
	return out
}

// ParseForm reads a submitted form. Row order follows the repeated
// task_key values.
func ParseForm(v url.Values) Form {
	f := Form{
		Name:        strings.TrimSpace(v.Get("workflow_name")),
		Description: strings.TrimSpace(v.Get("workflow_description")),
	}
	for _, key := range v["task_key"] {
		if key == "" {
			continue
		}
		assigned, _ := strconv.ParseInt(v.Get("task_assigned_to."+key), 10, 64)
		f.Tasks = append(f.Tasks, TaskInput{
			Key:         key,
			Name:        strings.TrimSpace(v.Get("task_name." + key)),
			Description: strings.TrimSpace(v.Get("task_description." + key)),
			AssignedTo:  assigned,
			DueDate:     strings.TrimSpace(v.Get("task_due_date." + key)),
		})
	}
	return f
}

// ValidationError lists every problem in form order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Unwrap lets callers match apperr.ErrInvalidInput.
func (e *ValidationError) Unwrap() error { return apperr.ErrInvalidInput }

// Validate checks the workflow name, that at least one task exists, and
// each task's name, assignee and due date.
func (f Form) Validate() error {
	var msgs []string
	if err := validation.Validate(strings.TrimSpace(f.Name),
		validation.Required.Error("Workflow name is required"),
		validation.Length(0, 100).Error("Workflow name must be at most 100 characters"),
	); err != nil {
		msgs = append(msgs, err.Error())
	}
	if len(f.Tasks) == 0 {
		msgs = append(msgs, "At least one task is required")
	}
	for _, fs := range f.Fields() {
		t := fs.Task
		rules := []struct {
			value any
			rule  validation.Rule
		}{
			{strings.TrimSpace(t.Name), validation.Required.Error("Name is required")},
			{t.AssignedTo, validation.Required.Error("Assigned user is required")},
			{t.DueDate, validation.Date(DateLayout).Error("Due date must be YYYY-MM-DD")},
		}
		for _, r := range rules {
			if err := validation.Validate(r.value, r.rule); err != nil {
				msgs = append(msgs, fmt.Sprintf("%s: %s", fs.Heading, err.Error()))
			}
		}
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// Complete maps an approve/reject action to the task's new status.
func Complete(action string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "approve":
		return status.Complete, nil
	case "reject":
		return status.Rejected, nil
	default:
		return "", fmt.Errorf("unknown action %q: %w", action, apperr.ErrInvalidInput)
	}
}
