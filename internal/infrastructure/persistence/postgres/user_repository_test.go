package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"classifieds/internal/domain/access"
	"classifieds/internal/domain/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passThrough struct{}

func (passThrough) ConvertValue(v any) (driver.Value, error) { return v, nil }

func newMockRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passThrough{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectPrepare(regexp.QuoteMeta("FROM users WHERE id = $1"))
	mock.ExpectPrepare(regexp.QuoteMeta("FROM users WHERE id = ANY($1::uuid[])"))
	mock.ExpectPrepare(regexp.QuoteMeta("DELETE FROM users WHERE id = $1"))
	mock.ExpectPrepare("INSERT INTO users")

	repo, err := NewUserRepository(context.Background(), db)
	require.NoError(t, err)
	return repo, mock
}

var userCols = []string{"id", "email", "full_name", "role", "created_at", "updated_at"}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(id.String(), "a@example.com", "Ada", "admin", now, now))

	u, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, access.RoleAdmin, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUserRepository_GetByIDs(t *testing.T) {
	repo, mock := newMockRepo(t)
	a, b := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("ANY($1::uuid[])")).
		WithArgs([]string{a.String(), b.String()}).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(a.String(), "a@example.com", "A", "user", now, now))

	got, err := repo.GetByIDs(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a@example.com", got[a].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), id), user.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
