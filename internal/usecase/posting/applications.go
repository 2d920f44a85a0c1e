package posting

import (
	"context"
	"errors"
	"strings"

	"classifieds/internal/domain/access"
	"classifieds/internal/domain/posting"
	"classifieds/internal/domain/user"
	"classifieds/internal/metrics"
	"classifieds/internal/notify"
	"classifieds/internal/pkg/apperr"
	"classifieds/internal/repository"

	"github.com/google/uuid"
)

const (
	maxCoverLetter = 5000
	maxResume      = 500
	maxNotes       = 2000
)

type ApplyInput struct {
	CoverLetter string
	Resume      string
}

// ApplicationView is an application with the applicant identity resolved.
type ApplicationView struct {
	posting.Application
	Applicant user.Summary
}

// ApplicantApplication is one entry of an applicant's own history. Job is nil when the
// posting has been deleted since.
type ApplicantApplication struct {
	posting.Application
	Job *posting.Posting
}

// Apply records an application on an open, approved job whose deadline has not passed.
// The store rejects a second application by the same applicant atomically.
func (s *Service) Apply(ctx context.Context, p access.Principal, jobID uuid.UUID, in ApplyInput) (posting.Application, error) {
	in.CoverLetter = strings.TrimSpace(in.CoverLetter)
	in.Resume = strings.TrimSpace(in.Resume)
	fields := map[string]string{}
	if len([]rune(in.CoverLetter)) > maxCoverLetter {
		fields["cover_letter"] = "must be at most 5000 characters"
	}
	if len([]rune(in.Resume)) > maxResume {
		fields["resume"] = "must be at most 500 characters"
	}
	if len(fields) > 0 {
		return posting.Application{}, apperr.Validation("invalid application", fields)
	}
	if err := access.Authorize(p, p.Authenticated(), "apply to jobs"); err != nil {
		return posting.Application{}, err
	}

	job, err := s.postings.FindByID(ctx, posting.KindJob, jobID)
	if err != nil {
		return posting.Application{}, storeErr("load job", err)
	}
	now := s.clock()
	if !job.IsPubliclyVisible(now) && !access.CanEditContent(p, job.OwnerID) {
		return posting.Application{}, repository.ErrPostingNotFound
	}
	if p.Owns(job.OwnerID) {
		metrics.RecordApplication("rejected")
		return posting.Application{}, apperr.Forbidden("not allowed to apply to your own job")
	}
	if !job.AcceptsApplications(now) {
		metrics.RecordApplication("rejected")
		return posting.Application{}, apperr.Validation("job is not accepting applications", nil)
	}

	app := posting.NewApplication(jobID, p.ID, in.CoverLetter, in.Resume, now)
	if err := s.apps.Append(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicateApplication) {
			metrics.RecordApplication("duplicate")
		}
		return posting.Application{}, storeErr("apply to job", err)
	}
	metrics.RecordApplication("accepted")
	s.invalidateLists(ctx, posting.KindJob)
	s.logf("[Applications] submitted | job_id=%s applicant=%s", jobID, p.ID)

	s.notify(notify.Notification{
		Type:        notify.TypeApplicationNew,
		RecipientID: job.OwnerID,
		PostingID:   job.ID,
		PostingKind: string(posting.KindJob),
		Title:       job.Content.Title,
		Status:      string(app.Status),
		At:          now,
	})
	return app, nil
}

func (s *Service) ListApplications(ctx context.Context, p access.Principal, jobID uuid.UUID) ([]ApplicationView, error) {
	job, err := s.postings.FindByID(ctx, posting.KindJob, jobID)
	if err != nil {
		return nil, storeErr("load job", err)
	}
	if err := access.Authorize(p, access.CanViewApplications(p, job.OwnerID), "view applications of this job"); err != nil {
		return nil, err
	}

	apps, err := s.apps.ListByPosting(ctx, jobID)
	if err != nil {
		return nil, storeErr("list applications", err)
	}
	if len(apps) == 0 {
		return []ApplicationView{}, nil
	}

	ids := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ApplicantID)
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr("resolve applicants", err)
	}

	out := make([]ApplicationView, 0, len(apps))
	for _, a := range apps {
		summary := user.Summary{ID: a.ApplicantID}
		if u, ok := users[a.ApplicantID]; ok {
			summary = u.Summary()
		}
		out = append(out, ApplicationView{Application: a, Applicant: summary})
	}
	return out, nil
}

// UpdateApplicationStatus writes any enumerated status; no transition graph is enforced.
func (s *Service) UpdateApplicationStatus(ctx context.Context, p access.Principal, jobID, applicationID uuid.UUID, status string, notes *string) (posting.Application, error) {
	st := posting.ApplicationStatus(strings.ToLower(strings.TrimSpace(status)))
	fields := map[string]string{}
	if !st.Valid() {
		fields["status"] = "must be one of pending, reviewed, shortlisted, rejected, hired"
	}
	notes = trimNotes(notes)
	if notes != nil && len([]rune(*notes)) > maxNotes {
		fields["notes"] = "must be at most 2000 characters"
	}
	if len(fields) > 0 {
		return posting.Application{}, apperr.Validation("invalid application status", fields)
	}

	job, err := s.postings.FindByID(ctx, posting.KindJob, jobID)
	if err != nil {
		return posting.Application{}, storeErr("load job", err)
	}
	if err := access.Authorize(p, access.CanViewApplications(p, job.OwnerID), "manage applications of this job"); err != nil {
		return posting.Application{}, err
	}

	app, err := s.apps.UpdateStatus(ctx, jobID, applicationID, st, notes, s.clock())
	if err != nil {
		return posting.Application{}, storeErr("update application", err)
	}
	s.logf("[Applications] status changed | job_id=%s application_id=%s status=%s by=%s", jobID, applicationID, st, p.ID)

	msg := notify.Notification{
		Type:        notify.TypeApplicationStatus,
		RecipientID: app.ApplicantID,
		PostingID:   job.ID,
		PostingKind: string(posting.KindJob),
		Title:       job.Content.Title,
		Status:      string(app.Status),
		At:          app.UpdatedAt,
	}
	if notes != nil {
		msg.Notes = *notes
	}
	s.notify(msg)
	return app, nil
}

// MyApplications lists the caller's applications, newest first, with their jobs.
func (s *Service) MyApplications(ctx context.Context, p access.Principal) ([]ApplicantApplication, error) {
	if err := access.Authorize(p, p.Authenticated(), "list applications"); err != nil {
		return nil, err
	}
	apps, err := s.apps.ListByApplicant(ctx, p.ID)
	if err != nil {
		return nil, storeErr("list applications", err)
	}

	jobs := map[uuid.UUID]*posting.Posting{}
	out := make([]ApplicantApplication, 0, len(apps))
	for _, a := range apps {
		job, seen := jobs[a.PostingID]
		if !seen {
			item, err := s.postings.FindByID(ctx, posting.KindJob, a.PostingID)
			switch {
			case err == nil:
				job = &item
			case errors.Is(err, apperr.ErrNotFound):
			default:
				return nil, storeErr("load job", err)
			}
			jobs[a.PostingID] = job
		}
		out = append(out, ApplicantApplication{Application: a, Job: job})
	}
	return out, nil
}
