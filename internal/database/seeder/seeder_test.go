package seeder

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"classifieds/internal/database"
	"classifieds/internal/domain/access"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passThrough struct{}

func (passThrough) ConvertValue(v any) (driver.Value, error) { return v, nil }

// fakeDB serves the information_schema lookup and hands out a mocked *sql.DB.
type fakeDB struct {
	database.DB
	columns []string
	sqlDB   *sql.DB
}

func (f fakeDB) Query(context.Context, string, ...any) (database.Rows, error) {
	return &columnRows{cols: f.columns, i: -1}, nil
}

func (f fakeDB) SQLDB() *sql.DB { return f.sqlDB }

type columnRows struct {
	cols []string
	i    int
}

func (r *columnRows) Close()     {}
func (r *columnRows) Err() error { return nil }
func (r *columnRows) Next() bool {
	r.i++
	return r.i < len(r.cols)
}
func (r *columnRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.cols[r.i]
	return nil
}

func TestNewDevUserIsDeterministic(t *testing.T) {
	a := NewDevUser(" Admin@Classifieds.local ", "A", access.RoleAdmin)
	b := NewDevUser("admin@classifieds.local", "B", access.RoleAdmin)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "admin@classifieds.local", a.Email)
}

func TestUsersSeeder_UpsertsEveryUser(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passThrough{}))
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectPrepare("FROM users WHERE id = \\$1")
	mock.ExpectPrepare(regexp.QuoteMeta("ANY($1::uuid[])"))
	mock.ExpectPrepare("DELETE FROM users")
	upsert := mock.ExpectPrepare("INSERT INTO users")

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	users := DevUsers()
	for _, u := range users {
		upsert.ExpectExec().
			WithArgs(u.ID.String(), u.Email, u.FullName, string(u.Role), now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	db := fakeDB{columns: []string{"id", "email", "full_name", "role", "created_at", "updated_at"}, sqlDB: sqlDB}
	s := UsersSeeder{Users: users, Now: func() time.Time { return now }}
	require.NoError(t, Runner{Seeders: []Seeder{s}}.Run(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersSeeder_SchemaMismatch(t *testing.T) {
	db := fakeDB{columns: []string{"id", "email"}}
	err := UsersSeeder{Users: DevUsers()}.Run(context.Background(), db)
	require.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "users missing full_name, role, created_at, updated_at")
}

func TestRunner_WrapsSeederName(t *testing.T) {
	err := Runner{Seeders: []Seeder{failing{}}}.Run(context.Background(), fakeDB{})
	require.Error(t, err)
	assert.Equal(t, "seed broken: boom", err.Error())
}

type failing struct{}

func (failing) Name() string                           { return "broken" }
func (failing) Run(context.Context, database.DB) error { return errors.New("boom") }
