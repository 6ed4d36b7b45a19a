// Package models defines the domain types for docdesk.
package models

import "time"

// User is an account that can own, share and be assigned work.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role,omitempty"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Document is an uploaded file and its metadata.
type Document struct {
	ID               int64      `json:"id"`
	Filename         string     `json:"filename"`
	OriginalFilename string     `json:"original_filename"`
	FilePath         string     `json:"-"`
	FileType         string     `json:"file_type"`
	FileSize         int64      `json:"file_size"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	ContentText      string     `json:"-"`
	Classification   string     `json:"classification,omitempty"`
	Checksum         string     `json:"checksum"`
	OwnerID          int64      `json:"owner_id"`
	Tags             []string   `json:"tags"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// DisplayTitle falls back to the original file name.
func (d Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.OriginalFilename
}

// Tag labels documents.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Workflow groups ordered tasks around a review process.
type Workflow struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedByID int64     `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task is one step of a workflow.
type Task struct {
	ID               int64      `json:"id"`
	WorkflowID       int64      `json:"workflow_id"`
	WorkflowName     string     `json:"workflow_name"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Order            int        `json:"order"`
	Status           string     `json:"status"`
	AssignedToID     int64      `json:"assigned_to_id,omitempty"`
	AssignedUsername string     `json:"assigned_to_username,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// Notification is a message for a single user.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Type      string    `json:"notification_type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
