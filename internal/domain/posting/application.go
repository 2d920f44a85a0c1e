package posting

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationReviewed    ApplicationStatus = "reviewed"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationHired       ApplicationStatus = "hired"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewed, ApplicationShortlisted, ApplicationRejected, ApplicationHired:
		return true
	default:
		return false
	}
}

// CanTransitionApplication deliberately accepts any move between known statuses.
// Reviewers reopen rejected candidates and step back from shortlisted in practice, so
// no graph is enforced here.
func CanTransitionApplication(from, to ApplicationStatus) bool {
	return from.Valid() && to.Valid()
}

// Application is unique per (PostingID, ApplicantID).
type Application struct {
	ID          uuid.UUID
	PostingID   uuid.UUID
	ApplicantID uuid.UUID
	Status      ApplicationStatus
	CoverLetter string
	Resume      string
	Notes       string
	AppliedAt   time.Time
	UpdatedAt   time.Time
}

func NewApplication(postingID, applicant uuid.UUID, coverLetter, resume string, now time.Time) Application {
	now = now.UTC()
	return Application{
		ID:          uuid.New(),
		PostingID:   postingID,
		ApplicantID: applicant,
		Status:      ApplicationPending,
		CoverLetter: coverLetter,
		Resume:      resume,
		AppliedAt:   now,
		UpdatedAt:   now,
	}
}

func HasApplied(apps []Application, applicant uuid.UUID) bool {
	for _, a := range apps {
		if a.ApplicantID == applicant {
			return true
		}
	}
	return false
}
