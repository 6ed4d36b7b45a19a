package api

import (
	"github.com/starford/docdesk/internal/docservice"
	"github.com/starford/docdesk/internal/models"
	"github.com/starford/docdesk/internal/store"
)

// CountResponse is the unread notification badge count.
type CountResponse struct {
	Count int `json:"count" example:"3" validate:"required"`
}

// RecentResponse wraps the newest unread notifications.
type RecentResponse struct {
	Notifications []models.Notification `json:"notifications" validate:"required"`
}

// SuccessResponse acknowledges a state change.
type SuccessResponse struct {
	Success bool  `json:"success" validate:"required"`
	Updated int64 `json:"updated,omitempty" example:"2"`
}

// StatusResponse describes how a status label is displayed.
type StatusResponse struct {
	Status string `json:"status" example:"in_progress" validate:"required"`
	Token  string `json:"token" example:"info" validate:"required"`
	Hex    string `json:"hex" example:"#0d6efd" validate:"required"`
	Badge  string `json:"badge" example:"bg-info" validate:"required"`
}

// UserHit is one user search result (aliased from the domain layer).
type UserHit = docservice.UserHit

// DocumentHit is one full-text search match (aliased from the store).
type DocumentHit = store.DocumentHit

// DocumentListResponse is the filtered document list (aliased from the domain layer).
type DocumentListResponse = docservice.Listing

// UploadConflictResponse is returned when the owner already has the bytes.
type UploadConflictResponse struct {
	Error      string `json:"error" example:"already exists" validate:"required"`
	DocumentID int64  `json:"document_id" example:"12" validate:"required"`
}

// PreviewResponse carries the sanitised preview snippet.
type PreviewResponse struct {
	HTML string `json:"preview_html" validate:"required"`
}

// VerifyResponse reports whether the stored bytes match the recorded checksum.
type VerifyResponse struct {
	ID    int64 `json:"id" example:"12" validate:"required"`
	Valid bool  `json:"valid" validate:"required"`
}

// ShareRequest lists the users to share a document with.
type ShareRequest struct {
	UserIDs []int64 `json:"user_ids" validate:"required"`
}

// CreateWorkflowResponse is returned after a workflow is created.
type CreateWorkflowResponse struct {
	ID int64 `json:"id" example:"7" validate:"required"`
}

// ValidationResponse lists form problems in order.
type ValidationResponse struct {
	Errors []string `json:"errors" validate:"required"`
}

// CompleteTaskResponse reports a task's new status.
type CompleteTaskResponse struct {
	Success bool   `json:"success" validate:"required"`
	Status  string `json:"status" example:"complete" validate:"required"`
}

// ThemeResponse reports the theme after a toggle.
type ThemeResponse struct {
	Theme string `json:"theme" example:"dark" validate:"required"`
}
