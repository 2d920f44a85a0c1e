package postgres

import (
	"context"
	"database/sql"
	"errors"

	"classifieds/internal/domain/access"
	"classifieds/internal/domain/user"

	"github.com/google/uuid"
)

// UserRepository reads the identity records the service resolves applicants and
// deletion targets against. Accounts themselves are issued elsewhere.
type UserRepository struct {
	db *sql.DB

	stmtGetByID  *sql.Stmt
	stmtGetByIDs *sql.Stmt
	stmtDelete   *sql.Stmt
	stmtUpsert   *sql.Stmt
}

func NewUserRepository(ctx context.Context, db *sql.DB) (*UserRepository, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	r := &UserRepository{db: db}

	var err error
	r.stmtGetByID, err = db.PrepareContext(ctx,
		`SELECT id, email, full_name, role, created_at, updated_at FROM users WHERE id = $1`,
	)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	r.stmtGetByIDs, err = db.PrepareContext(ctx,
		`SELECT id, email, full_name, role, created_at, updated_at FROM users WHERE id = ANY($1::uuid[])`,
	)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	r.stmtDelete, err = db.PrepareContext(ctx, `DELETE FROM users WHERE id = $1`)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	r.stmtUpsert, err = db.PrepareContext(ctx,
		`INSERT INTO users (id, email, full_name, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name,
			role = EXCLUDED.role, updated_at = EXCLUDED.updated_at`,
	)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	return r, nil
}

func (r *UserRepository) Close() error {
	var firstErr error
	closeStmt := func(s *sql.Stmt) {
		if s == nil {
			return
		}
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	closeStmt(r.stmtGetByID)
	closeStmt(r.stmtGetByIDs)
	closeStmt(r.stmtDelete)
	closeStmt(r.stmtUpsert)

	return firstErr
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	row := r.stmtGetByID.QueryRowContext(ctx, id.String())
	return scanUser(row)
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error) {
	out := make(map[uuid.UUID]user.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}

	rows, err := r.stmtGetByIDs.QueryContext(ctx, strs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.stmtDelete.ExecContext(ctx, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

// Upsert mirrors an identity from the issuing service.
func (r *UserRepository) Upsert(ctx context.Context, u user.User) error {
	_, err := r.stmtUpsert.ExecContext(ctx,
		u.ID.String(), u.Email, u.FullName, string(u.Role), u.CreatedAt, u.UpdatedAt,
	)
	return err
}

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (user.User, error) {
	var u user.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	u.Role = access.ParseRole(role)
	return u, nil
}
