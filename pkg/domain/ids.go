package domain

import (
	"database/sql/driver"
	"strings"

	"github.com/google/uuid"

	dErrors "hackportal/pkg/domain-errors"
)

// UserID identifies a portal user. Distinct from ProjectID so the compiler
// rejects swapped arguments in store and service signatures.
type UserID uuid.UUID

// ProjectID identifies a submitted project.
type ProjectID uuid.UUID

// maxIDLength bounds input before it reaches the UUID parser.
const maxIDLength = 64

func (u UserID) String() string { return uuid.UUID(u).String() }

// IsNil reports whether the ID is the zero UUID.
func (u UserID) IsNil() bool { return uuid.UUID(u) == uuid.Nil }

func (p ProjectID) String() string { return uuid.UUID(p).String() }

// IsNil reports whether the ID is the zero UUID.
func (p ProjectID) IsNil() bool { return uuid.UUID(p) == uuid.Nil }

// MarshalText renders the canonical UUID form so JSON carries strings.
func (u UserID) MarshalText() ([]byte, error) { return uuid.UUID(u).MarshalText() }

func (p ProjectID) MarshalText() ([]byte, error) { return uuid.UUID(p).MarshalText() }

func (u *UserID) UnmarshalText(b []byte) error { return (*uuid.UUID)(u).UnmarshalText(b) }

func (p *ProjectID) UnmarshalText(b []byte) error { return (*uuid.UUID)(p).UnmarshalText(b) }

// Value and Scan let the IDs travel through database/sql directly.
func (u UserID) Value() (driver.Value, error) { return uuid.UUID(u).Value() }

func (u *UserID) Scan(src any) error { return (*uuid.UUID)(u).Scan(src) }

func (p ProjectID) Value() (driver.Value, error) { return uuid.UUID(p).Value() }

func (p *ProjectID) Scan(src any) error { return (*uuid.UUID)(p).Scan(src) }

// NewUserID returns a random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewProjectID returns a random project ID.
func NewProjectID() ProjectID { return ProjectID(uuid.New()) }

// ParseUserID validates external input and returns a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseProjectID validates external input and returns a ProjectID.
func ParseProjectID(s string) (ProjectID, error) {
	u, err := parseUUID(s, "project ID")
	if err != nil {
		return ProjectID{}, err
	}
	return ProjectID(u), nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is too long")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
