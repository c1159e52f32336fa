package models

import (
	"time"

	id "hackportal/pkg/domain"
)

// UserSummary is the admin view of a user.
type UserSummary struct {
	ID        id.UserID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProjectRegistrations aggregates registrations for one project.
type ProjectRegistrations struct {
	ProjectID         id.ProjectID   `json:"projectId"`
	Title             string         `json:"title"`
	Creator           *UserSummary   `json:"creator,omitempty"`
	MaxTeamSize       int            `json:"maxTeamSize"`
	RegistrationCount int            `json:"registrationCount"`
	Registrants       []*UserSummary `json:"registrants"`
}

// RegistrationAnalytics is the admin dashboard payload.
type RegistrationAnalytics struct {
	Projects           []*ProjectRegistrations `json:"projects"`
	TotalProjects      int                     `json:"totalProjects"`
	TotalRegistrations int                     `json:"totalRegistrations"`
	TotalUsers         int                     `json:"totalUsers"`
	// RegisteredUsers counts distinct users with at least one registration.
	RegisteredUsers int `json:"registeredUsers"`
}
