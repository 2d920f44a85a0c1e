package user

import (
	"context"
	"errors"
	"testing"

	"classifieds/internal/domain/access"
	"classifieds/internal/domain/user"
	"classifieds/internal/pkg/apperr"
	"classifieds/internal/repository/memory"

	"github.com/google/uuid"
)

func seed(store *memory.Store, role access.Role) uuid.UUID {
	id := uuid.New()
	store.PutUser(user.User{ID: id, Email: id.String() + "@example.com", Role: role})
	return id
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Users(), nil)

	adminID := seed(store, access.RoleAdmin)
	otherAdmin := seed(store, access.RoleAdmin)
	member := seed(store, access.RoleUser)
	admin := access.Principal{ID: adminID, Role: access.RoleAdmin}

	tests := []struct {
		name   string
		actor  access.Principal
		target uuid.UUID
		want   error
	}{
		{"anonymous", access.Anonymous, member, apperr.ErrUnauthenticated},
		{"regular user", access.Principal{ID: member, Role: access.RoleUser}, otherAdmin, apperr.ErrAuthorization},
		{"self", admin, adminID, apperr.ErrAuthorization},
		{"other admin", admin, otherAdmin, apperr.ErrAuthorization},
		{"missing", admin, uuid.New(), apperr.ErrNotFound},
		{"member", admin, member, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.DeleteUser(ctx, tt.actor, tt.target)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := svc.Get(ctx, member); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("deleted user must be gone, got %v", err)
	}
	if _, err := svc.Get(ctx, otherAdmin); err != nil {
		t.Fatalf("other admin must survive: %v", err)
	}
}
