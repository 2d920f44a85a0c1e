package repository

import (
	"context"
	"errors"
	"time"

	"classifieds/internal/domain/posting"
	"classifieds/internal/pkg/apperr"
	"classifieds/internal/search"

	"github.com/google/uuid"
)

var (
	ErrPostingNotFound      = apperr.NotFound("posting not found")
	ErrApplicationNotFound  = apperr.NotFound("application not found")
	ErrDuplicateApplication = apperr.Conflict("already applied to this job")
	ErrDuplicateReport      = apperr.Conflict("already reported this posting")

	// ErrVersionConflict is internal: callers re-read and retry.
	ErrVersionConflict = errors.New("posting version conflict")
)

// ContentUpdate replaces the content of a posting. ModerationStatus is set only when the
// re-review rule reset the posting.
type ContentUpdate struct {
	Content          posting.Content
	ModerationStatus *posting.ModerationStatus
	UpdatedAt        time.Time
}

// PostingRepository is the Entity Store. Every mutation is a single conditional update
// against the store; none of them read-modify-write in memory.
type PostingRepository interface {
	Insert(ctx context.Context, p posting.Posting) error
	FindByID(ctx context.Context, kind posting.Kind, id uuid.UUID) (posting.Posting, error)
	Find(ctx context.Context, q search.Query) ([]posting.Posting, int64, error)
	Count(ctx context.Context, kind posting.Kind, filter search.And) (int64, error)

	// UpdateContent applies only when the stored version equals expectedVersion.
	UpdateContent(ctx context.Context, kind posting.Kind, id uuid.UUID, expectedVersion int64, upd ContentUpdate) error
	// SetModeration applies d to every existing id and reports how many were modified.
	SetModeration(ctx context.Context, kind posting.Kind, ids []uuid.UUID, d posting.Decision) (int64, error)
	SetStatus(ctx context.Context, kind posting.Kind, id uuid.UUID, status posting.Status, at time.Time) error
	IncrementViews(ctx context.Context, kind posting.Kind, id uuid.UUID) error
	AddReport(ctx context.Context, kind posting.Kind, id uuid.UUID, r posting.Report) error
	Delete(ctx context.Context, kind posting.Kind, id uuid.UUID) error
}

// ApplicationRepository manages the applicant list of job postings.
type ApplicationRepository interface {
	// Append inserts app only if the applicant has no application on the job yet and
	// keeps the job's application count in the same unit of work.
	Append(ctx context.Context, app posting.Application) error
	ListByPosting(ctx context.Context, jobID uuid.UUID) ([]posting.Application, error)
	ListByApplicant(ctx context.Context, applicant uuid.UUID) ([]posting.Application, error)
	UpdateStatus(ctx context.Context, jobID, applicationID uuid.UUID, status posting.ApplicationStatus, notes *string, at time.Time) (posting.Application, error)
}
