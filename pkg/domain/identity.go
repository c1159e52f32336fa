package domain

// Identity is the resolved actor of a request. A nil *Identity is anonymous.
//
// IsAdmin reflects the persisted user record at resolution time; it is never
// read from token claims.
type Identity struct {
	UserID  UserID
	Email   string
	IsAdmin bool
}

// IsAuthenticated reports whether the identity represents a signed-in user.
func (i *Identity) IsAuthenticated() bool {
	return i != nil && !i.UserID.IsNil()
}

// Is reports whether the identity belongs to userID.
func (i *Identity) Is(userID UserID) bool {
	return i.IsAuthenticated() && i.UserID == userID
}

// Admin reports whether the identity is an authenticated administrator.
func (i *Identity) Admin() bool {
	return i.IsAuthenticated() && i.IsAdmin
}
