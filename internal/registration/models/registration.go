package models

import (
	"time"

	id "hackportal/pkg/domain"
)

// Registration records a user's interest in a project.
type Registration struct {
	ProjectID id.ProjectID
	UserID    id.UserID
	CreatedAt time.Time
}

// Status is the caller's view of a project's registrations, always read back
// from the store after a change.
type Status struct {
	ProjectID         id.ProjectID `json:"projectId"`
	RegistrationCount int          `json:"registrationCount"`
	IsRegistered      bool         `json:"isRegistered"`
}
