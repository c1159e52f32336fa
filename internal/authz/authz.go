// Package authz holds the access rules for projects, registrations and admin
// management. Every function is pure: it takes the caller's identity (nil for
// anonymous) plus the facts it needs and returns nil or a coded error.
package authz

import (
	projectModels "hackportal/internal/project/models"
	userModels "hackportal/internal/user/models"
	id "hackportal/pkg/domain"
	dErrors "hackportal/pkg/domain-errors"
)

// Policy carries the configurable rules.
type Policy struct {
	// AdminsMayRegisterOwn lets an admin register for a project they created.
	AdminsMayRegisterOwn bool
}

func requireAuthenticated(ident *id.Identity) error {
	if !ident.IsAuthenticated() {
		return dErrors.New(dErrors.CodeUnauthenticated, "sign in required")
	}
	return nil
}

func requireAdmin(ident *id.Identity) error {
	if err := requireAuthenticated(ident); err != nil {
		return err
	}
	if !ident.Admin() {
		return dErrors.New(dErrors.CodeForbidden, "admin access required")
	}
	return nil
}

// CanCreateProject allows any signed-in user.
func CanCreateProject(ident *id.Identity) error {
	return requireAuthenticated(ident)
}

// CanEditProject allows admins and the project's creator.
func CanEditProject(ident *id.Identity, project *projectModels.Project) error {
	if err := requireAuthenticated(ident); err != nil {
		return err
	}
	if ident.Admin() || project.IsCreatedBy(ident.UserID) {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "only the creator or an admin can change this project")
}

// CanDeleteProject follows the edit rule.
func CanDeleteProject(ident *id.Identity, project *projectModels.Project) error {
	return CanEditProject(ident, project)
}

// CanRegister checks sign-in, creator exclusion and duplicates, in that order.
func (p Policy) CanRegister(ident *id.Identity, project *projectModels.Project, alreadyRegistered bool) error {
	if err := requireAuthenticated(ident); err != nil {
		return err
	}
	if project.IsCreatedBy(ident.UserID) && !(p.AdminsMayRegisterOwn && ident.Admin()) {
		return dErrors.New(dErrors.CodeOwnerCannotRegister, "you cannot register for a project you created")
	}
	if alreadyRegistered {
		return dErrors.New(dErrors.CodeAlreadyRegistered, "already registered for this project")
	}
	return nil
}

// CanUnregister allows any signed-in user. Not being registered is fine.
func CanUnregister(ident *id.Identity) error {
	return requireAuthenticated(ident)
}

// CanManageUsers allows admins only.
func CanManageUsers(ident *id.Identity) error {
	return requireAdmin(ident)
}

// CanViewAnalytics allows admins only.
func CanViewAnalytics(ident *id.Identity) error {
	return requireAdmin(ident)
}

// CanSetAdmin allows an admin to change target's flag unless that would
// leave zero admins.
func CanSetAdmin(actor *id.Identity, target *userModels.User, newValue bool, adminCount int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if target.IsAdmin && !newValue && adminCount <= 1 {
		return dErrors.New(dErrors.CodeLastAdminProtected, "cannot remove the last admin")
	}
	return nil
}
