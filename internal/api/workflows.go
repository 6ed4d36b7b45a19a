package api

import (
	"errors"
	"net/http"

	"github.com/starford/docdesk/internal/workflow"
)

// CreateWorkflow handles POST /api/workflows (form encoded).
//
//	@Summary		Create a workflow with ordered tasks
//	@Tags			workflows
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Success		201	{object}	CreateWorkflowResponse
//	@Failure		422	{object}	ValidationResponse
//	@Router			/api/workflows [post]
func (h *Handler) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid form"))
		return
	}
	id, err := h.svc.CreateWorkflow(r.Context(), UserID(r.Context()), workflow.ParseForm(r.PostForm))
	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: verr.Messages})
		return
	}
	if err != nil {
		writeError(w, "create workflow", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateWorkflowResponse{ID: id})
}

// GetWorkflow handles GET /api/workflows/{id}.
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	view, err := h.svc.Workflow(r.Context(), id)
	if err != nil {
		writeError(w, "get workflow", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CompleteTask handles POST /workflow/task/{id}/complete with an
// "action" form value of approve or reject.
//
//	@Summary		Approve or reject a task
//	@Tags			workflows
//	@Produce		json
//	@Param			id		path		int		true	"Task id"
//	@Param			action	formData	string	true	"approve or reject"
//	@Success		200		{object}	CompleteTaskResponse
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse
//	@Router			/workflow/task/{id}/complete [post]
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	task, err := h.svc.CompleteTask(r.Context(), id, UserID(r.Context()), r.FormValue("action"))
	if err != nil {
		writeError(w, "complete task", err)
		return
	}
	writeJSON(w, http.StatusOK, CompleteTaskResponse{Success: true, Status: task.Status})
}
