package models

import (
	"strings"
	"time"

	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
)

// Environment says where a project will run.
type Environment string

const (
	EnvironmentInternal Environment = "internal"
	EnvironmentExternal Environment = "external"
)

// IsValid reports whether e is a known environment.
func (e Environment) IsValid() bool {
	return e == EnvironmentInternal || e == EnvironmentExternal
}

// Project is a hackathon project idea.
type Project struct {
	ID                 id.ProjectID
	Title              string
	Description        string
	MinTeamSize        int
	MaxTeamSize        int
	Environment        Environment
	AdditionalRequests string
	CreatorID          *id.UserID // nil when the creator account is gone
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsCreatedBy reports whether userID created the project.
func (p *Project) IsCreatedBy(userID id.UserID) bool {
	return p != nil && p.CreatorID != nil && *p.CreatorID == userID
}

// HasCapacity reports whether another registration fits under MaxTeamSize.
func (p *Project) HasCapacity(currentCount int) bool {
	return currentCount < p.MaxTeamSize
}

// Apply overwrites the editable fields from a validated input.
func (p *Project) Apply(in *ProjectInput, now time.Time) {
	p.Title = in.Title
	p.Description = in.Description
	p.MinTeamSize = in.MinTeamSize
	p.MaxTeamSize = in.MaxTeamSize
	p.Environment = in.Environment
	p.AdditionalRequests = in.AdditionalRequests
	p.UpdatedAt = now
}

// NewProject builds a project from a validated input.
func NewProject(projectID id.ProjectID, in *ProjectInput, creator *id.UserID, now time.Time) (*Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := &Project{ID: projectID, CreatorID: creator, CreatedAt: now}
	p.Apply(in, now)
	return p, nil
}

// ProjectInput carries the editable fields for create and update.
type ProjectInput struct {
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	MinTeamSize        int         `json:"minTeamSize"`
	MaxTeamSize        int         `json:"maxTeamSize"`
	Environment        Environment `json:"environment"`
	AdditionalRequests string      `json:"additionalRequests"`
}

// Normalize trims free-text fields and lower-cases the environment.
func (in *ProjectInput) Normalize() {
	if in == nil {
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.AdditionalRequests = strings.TrimSpace(in.AdditionalRequests)
	in.Environment = Environment(strings.ToLower(strings.TrimSpace(string(in.Environment))))
}

// Validate enforces field presence and the team-size bounds.
func (in *ProjectInput) Validate() error {
	if in == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "request is required")
	}
	switch {
	case in.Title == "":
		return dErrors.New(dErrors.CodeInvalidInput, "title is required")
	case len(in.Title) > 200:
		return dErrors.New(dErrors.CodeInvalidInput, "title must be at most 200 characters")
	case in.Description == "":
		return dErrors.New(dErrors.CodeInvalidInput, "description is required")
	case in.MinTeamSize < 1:
		return dErrors.New(dErrors.CodeInvalidInput, "minTeamSize must be at least 1")
	case in.MaxTeamSize < in.MinTeamSize:
		return dErrors.New(dErrors.CodeInvalidInput, "maxTeamSize must be greater than or equal to minTeamSize")
	case !in.Environment.IsValid():
		return dErrors.New(dErrors.CodeInvalidInput, "environment must be internal or external")
	}
	return nil
}

// ProjectView is a project as seen by one caller.
type ProjectView struct {
	*Project
	RegistrationCount int
	IsRegistered      bool
}
