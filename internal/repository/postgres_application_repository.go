package repository

import (
	"context"
	"time"

	"classifieds/internal/database"
	dbpostgres "classifieds/internal/database/postgres"
	"classifieds/internal/domain/posting"

	"github.com/google/uuid"
)

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

// Append inserts the application and bumps the job's application_count in one
// transaction. The (posting_id, applicant_id) unique index rejects a second application.
func (r *PostgresApplicationRepository) Append(ctx context.Context, app posting.Application) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM postings WHERE id = $1 AND kind = 'job')`,
			app.PostingID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrPostingNotFound
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO job_applications (id, posting_id, applicant_id, status, cover_letter, resume, notes, applied_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			app.ID, app.PostingID, app.ApplicantID, string(app.Status),
			app.CoverLetter, app.Resume, app.Notes, app.AppliedAt, app.UpdatedAt,
		); err != nil {
			switch {
			case dbpostgres.IsUniqueViolation(err):
				return ErrDuplicateApplication
			case dbpostgres.IsForeignKeyViolation(err):
				return ErrPostingNotFound
			}
			return err
		}

		_, err := tx.Exec(ctx,
			`UPDATE postings SET application_count = application_count + 1 WHERE id = $1`,
			app.PostingID,
		)
		return err
	})
}

const applicationColumns = `id, posting_id, applicant_id, status, cover_letter, resume, notes, applied_at, updated_at`

func (r *PostgresApplicationRepository) ListByPosting(ctx context.Context, jobID uuid.UUID) ([]posting.Application, error) {
	return r.list(ctx,
		`SELECT `+applicationColumns+` FROM job_applications WHERE posting_id = $1 ORDER BY applied_at ASC, id ASC`,
		jobID,
	)
}

func (r *PostgresApplicationRepository) ListByApplicant(ctx context.Context, applicant uuid.UUID) ([]posting.Application, error) {
	return r.list(ctx,
		`SELECT `+applicationColumns+` FROM job_applications WHERE applicant_id = $1 ORDER BY applied_at DESC, id ASC`,
		applicant,
	)
}

func (r *PostgresApplicationRepository) UpdateStatus(ctx context.Context, jobID, applicationID uuid.UUID, status posting.ApplicationStatus, notes *string, at time.Time) (posting.Application, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE job_applications
		 SET status = $3, notes = COALESCE($4, notes), updated_at = $5
		 WHERE posting_id = $1 AND id = $2
		 RETURNING `+applicationColumns,
		jobID, applicationID, string(status), notes, at,
	)
	app, err := scanApplication(row)
	if err != nil {
		if isNoRows(err) {
			return posting.Application{}, ErrApplicationNotFound
		}
		return posting.Application{}, err
	}
	return app, nil
}

func (r *PostgresApplicationRepository) list(ctx context.Context, query string, args ...any) ([]posting.Application, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]posting.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanApplication(row database.Row) (posting.Application, error) {
	var app posting.Application
	var status string
	if err := row.Scan(
		&app.ID, &app.PostingID, &app.ApplicantID, &status,
		&app.CoverLetter, &app.Resume, &app.Notes, &app.AppliedAt, &app.UpdatedAt,
	); err != nil {
		return posting.Application{}, err
	}
	app.Status = posting.ApplicationStatus(status)
	return app, nil
}
