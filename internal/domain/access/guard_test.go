package access

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"classifieds/internal/pkg/apperr"
)

func TestOwnerAndAdminCapabilities(t *testing.T) {
	owner := uuid.New()
	ownerP := Principal{ID: owner, Role: RoleUser}
	other := Principal{ID: uuid.New(), Role: RoleUser}
	admin := Principal{ID: uuid.New(), Role: RoleAdmin}

	checks := map[string]func(Principal, uuid.UUID) bool{
		"edit":   CanEditContent,
		"delete": CanDeletePosting,
		"status": CanChangeOperationalStatus,
		"apps":   CanViewApplications,
	}

	for name, fn := range checks {
		if !fn(ownerP, owner) {
			t.Fatalf("%s: owner must be allowed", name)
		}
		if !fn(admin, owner) {
			t.Fatalf("%s: admin must be allowed", name)
		}
		if fn(other, owner) {
			t.Fatalf("%s: stranger must be denied", name)
		}
		if fn(Anonymous, owner) {
			t.Fatalf("%s: anonymous must be denied", name)
		}
	}
}

func TestAnonymousNeverOwnsNilOwner(t *testing.T) {
	if CanEditContent(Anonymous, uuid.Nil) {
		t.Fatalf("anonymous principal must not match a nil owner")
	}
}

func TestCanModerate(t *testing.T) {
	if CanModerate(Principal{ID: uuid.New(), Role: RoleUser}) {
		t.Fatalf("user must not moderate")
	}
	if !CanModerate(Principal{ID: uuid.New(), Role: RoleAdmin}) {
		t.Fatalf("admin must moderate")
	}
	if CanModerate(Principal{Role: RoleAdmin}) {
		t.Fatalf("admin role without identity must not moderate")
	}
}

func TestCanDeleteAccount(t *testing.T) {
	admin := Principal{ID: uuid.New(), Role: RoleAdmin}

	if !CanDeleteAccount(admin, uuid.New(), RoleUser) {
		t.Fatalf("admin must delete a regular account")
	}
	if CanDeleteAccount(admin, uuid.New(), RoleAdmin) {
		t.Fatalf("admin must not delete another admin")
	}
	if CanDeleteAccount(admin, admin.ID, RoleAdmin) {
		t.Fatalf("admin must not delete self")
	}
	if CanDeleteAccount(Principal{ID: uuid.New(), Role: RoleUser}, uuid.New(), RoleUser) {
		t.Fatalf("user must not delete accounts")
	}
}

func TestAuthorize(t *testing.T) {
	if err := Authorize(Anonymous, false, "edit"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if err := Authorize(Principal{ID: uuid.New()}, false, "edit"); !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if err := Authorize(Anonymous, true, "read"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
