package access

import (
	"github.com/google/uuid"

	"classifieds/internal/pkg/apperr"
)

func CanModerate(p Principal) bool {
	return p.IsAdmin()
}

func CanEditContent(p Principal, owner uuid.UUID) bool {
	return p.Owns(owner) || p.IsAdmin()
}

func CanDeletePosting(p Principal, owner uuid.UUID) bool {
	return p.Owns(owner) || p.IsAdmin()
}

func CanChangeOperationalStatus(p Principal, owner uuid.UUID) bool {
	return p.Owns(owner) || p.IsAdmin()
}

func CanViewApplications(p Principal, owner uuid.UUID) bool {
	return p.Owns(owner) || p.IsAdmin()
}

// CanDeleteAccount guards the admin user-management path: only admins delete accounts,
// never their own and never another admin's.
func CanDeleteAccount(p Principal, target uuid.UUID, targetRole Role) bool {
	if !p.IsAdmin() {
		return false
	}
	if p.ID == target {
		return false
	}
	return targetRole != RoleAdmin
}

// Authorize turns a capability check into an error. Anonymous callers get an
// authentication error, authenticated ones an authorization error.
func Authorize(p Principal, allowed bool, action string) error {
	if allowed {
		return nil
	}
	if !p.Authenticated() {
		return apperr.Unauthenticated("authentication required")
	}
	return apperr.Forbidden("not allowed to " + action)
}
