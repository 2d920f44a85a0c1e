package user

import (
	"time"

	"github.com/google/uuid"

	"classifieds/internal/domain/access"
)

type User struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	Role      access.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the applicant identity attached to application listings.
type Summary struct {
	ID       uuid.UUID
	Email    string
	FullName string
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, FullName: u.FullName}
}
