package seeder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"classifieds/internal/database"
	"classifieds/internal/domain/access"
	"classifieds/internal/domain/user"
	"classifieds/internal/infrastructure/persistence/postgres"

	"github.com/google/uuid"
)

// NewDevUser derives the id from the email so repeated runs and issued tokens agree.
func NewDevUser(email, fullName string, role access.Role) user.User {
	email = strings.ToLower(strings.TrimSpace(email))
	return user.User{
		ID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)),
		Email:    email,
		FullName: fullName,
		Role:     role,
	}
}

type UsersSeeder struct {
	Users []user.User
	Now   func() time.Time
}

func (UsersSeeder) Name() string { return "users" }

func (s UsersSeeder) Run(ctx context.Context, db database.DB) error {
	if err := RequireColumns(ctx, db, "users", "id", "email", "full_name", "role", "created_at", "updated_at"); err != nil {
		return err
	}

	repo, err := postgres.NewUserRepository(ctx, db.SQLDB())
	if err != nil {
		return err
	}
	defer func() {
		_ = repo.Close()
	}()

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	for _, u := range s.Users {
		ts := now().UTC()
		u.CreatedAt, u.UpdatedAt = ts, ts
		if err := repo.Upsert(ctx, u); err != nil {
			return fmt.Errorf("upsert %s: %w", u.Email, err)
		}
	}
	return nil
}
