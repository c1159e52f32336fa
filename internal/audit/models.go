package audit

import (
	"time"

	id "hackportal/pkg/domain"
)

// Action names a state change worth recording.
type Action string

const (
	ActionUserSignedIn        Action = "user_signed_in"
	ActionUserCreated         Action = "user_created"
	ActionUserSignedOut       Action = "user_signed_out"
	ActionProjectCreated      Action = "project_created"
	ActionProjectUpdated      Action = "project_updated"
	ActionProjectDeleted      Action = "project_deleted"
	ActionRegistrationCreated Action = "registration_created"
	ActionRegistrationRemoved Action = "registration_removed"
	ActionAdminGranted        Action = "admin_granted"
	ActionAdminRevoked        Action = "admin_revoked"
)

// Event is emitted after a successful mutation. It is transport-agnostic so
// sinks can fan out.
type Event struct {
	Timestamp time.Time    `json:"timestamp"`
	Action    Action       `json:"action"`
	ActorID   id.UserID    `json:"actor_id"`
	UserID    id.UserID    `json:"user_id,omitzero"`
	ProjectID id.ProjectID `json:"project_id,omitzero"`
	Email     string       `json:"email,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	ClientIP  string       `json:"client_ip,omitempty"`
}

// Key is the partition key: events about one project stay ordered.
func (e Event) Key() string {
	if !e.ProjectID.IsNil() {
		return e.ProjectID.String()
	}
	if !e.UserID.IsNil() {
		return e.UserID.String()
	}
	return e.ActorID.String()
}
