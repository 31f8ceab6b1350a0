package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectID uniquely identifies a user project.
// It wraps uuid.UUID to provide type safety at the domain layer.
type ProjectID uuid.UUID

// UserID uniquely identifies a user within the system.
type UserID uuid.UUID

// ProjectState represents the lifecycle state of a project.
type ProjectState string

const (
	// ProjectStateParsing indicates the uploaded file is still being classified.
	ProjectStateParsing ProjectState = "parsing"
	// ProjectStateChecking indicates domains are being checked against the registrar API.
	ProjectStateChecking ProjectState = "checking"
	// ProjectStateMeasuring indicates link metrics are being fetched for available domains.
	ProjectStateMeasuring ProjectState = "measuring"
	// ProjectStatePaused indicates processing was manually suspended.
	ProjectStatePaused ProjectState = "paused"
	// ProjectStateCompleted indicates all domains are checked and all metrics measured. Terminal.
	ProjectStateCompleted ProjectState = "completed"
	// ProjectStateError indicates an unrecoverable failure; see Error for details. Terminal.
	ProjectStateError ProjectState = "error"
)

// Sticky reports whether the state blocks automatic recomputation.
// Paused and error are entered manually or exceptionally and must not be
// overwritten by the reconciliation logic; parsing means classification has
// not finished yet.
func (s ProjectState) Sticky() bool {
	return s == ProjectStatePaused || s == ProjectStateError || s == ProjectStateParsing
}

// Terminal reports whether no further processing occurs for the project.
func (s ProjectState) Terminal() bool {
	return s == ProjectStateCompleted || s == ProjectStateError
}

// Project tracks the lifecycle of one uploaded URL list: its owner, current
// state, aggregated non-fatal parse errors and completion bookkeeping.
type Project struct {
	ID     ProjectID `json:"id"`
	UserID UserID    `json:"userId"`

	// Name is the filename of the uploaded file the project was created from.
	Name string `json:"name"`
	// ContactEmail receives the completion and failure notifications for
	// this project. Captured at upload time.
	ContactEmail string       `json:"contactEmail,omitempty"`
	State        ProjectState `json:"state"`
	// Error holds the fatal error text when State is error.
	Error string `json:"error,omitempty"`
	// ParseErrors aggregates the non-fatal per-line failures recorded at upload time.
	ParseErrors string `json:"parseErrors,omitempty"`

	// CompletionNotified is set once the completion email has been sent.
	CompletionNotified bool `json:"completionNotified"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// CompletedAt is stamped on the transition into completed or error.
	CompletedAt time.Time `json:"completedAt,omitzero"`
}

// UploadedFile stores the raw uploaded URL list. It is exclusively owned by
// its project and removed when the project is deleted.
type UploadedFile struct {
	ID        uuid.UUID `json:"id"`
	ProjectID ProjectID `json:"projectId"`
	Filename  string    `json:"filename"`
	Data      string    `json:"-"`
}
