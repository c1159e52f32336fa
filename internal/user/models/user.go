package models

import (
	"strings"
	"time"

	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
	"hackportal/pkg/email"
)

// User is a person who has signed in at least once.
type User struct {
	ID        id.UserID
	Email     string
	Name      string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a non-admin user. The email is normalized; a blank name is
// derived from the local part of the address.
func NewUser(userID id.UserID, address, name string, now time.Time) (*User, error) {
	address = email.Normalize(address)
	if address == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email.DeriveDisplayName(address)
	}
	return &User{
		ID:        userID,
		Email:     address,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Identity returns the request identity for u.
func (u *User) Identity() *id.Identity {
	return &id.Identity{UserID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

// AdminGuard decides whether target may be switched to the requested admin
// flag given the current number of admins. Stores call it while holding
// their lock so the check and the write are one unit.
type AdminGuard func(target *User, adminCount int) error
