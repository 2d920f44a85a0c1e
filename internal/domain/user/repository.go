package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
