package user

import (
	"context"
	"errors"
	"log"

	"classifieds/internal/domain/access"
	"classifieds/internal/domain/user"
	"classifieds/internal/pkg/apperr"

	"github.com/google/uuid"
)

var ErrUserNotFound = apperr.NotFound("user not found")

type Service struct {
	users  user.Repository
	logger *log.Logger
}

func NewService(users user.Repository, logger *log.Logger) *Service {
	return &Service{users: users, logger: logger}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (user.User, error) {
	usr, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, classify("load user", err)
	}
	return usr, nil
}

// DeleteUser removes an account on behalf of an admin. Admins cannot remove themselves
// or another admin. Postings owned by the account are left in place.
func (s *Service) DeleteUser(ctx context.Context, p access.Principal, target uuid.UUID) error {
	if err := access.Authorize(p, p.IsAdmin(), "delete accounts"); err != nil {
		return err
	}
	if p.ID == target {
		return apperr.Forbidden("not allowed to delete your own account")
	}

	usr, err := s.users.GetByID(ctx, target)
	if err != nil {
		return classify("load user", err)
	}
	if err := access.Authorize(p, access.CanDeleteAccount(p, usr.ID, usr.Role), "delete this account"); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, target); err != nil {
		return classify("delete user", err)
	}
	if s.logger != nil {
		s.logger.Printf("[Users] deleted | id=%s by=%s", target, p.ID)
	}
	return nil
}

func classify(op string, err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return ErrUserNotFound
	}
	if apperr.KindOf(err) != apperr.KindUnclassified {
		return err
	}
	return apperr.Internal(op+" failed", err)
}
