package dto

import (
	"time"

	"classifieds/internal/domain/posting"
	postinguc "classifieds/internal/usecase/posting"

	"github.com/google/uuid"
)

type ApplicationResponse struct {
	ID          uuid.UUID            `json:"id"`
	JobID       uuid.UUID            `json:"job_id"`
	ApplicantID uuid.UUID            `json:"applicant_id"`
	Applicant   *UserSummaryResponse `json:"applicant,omitempty"`
	Status      string               `json:"status"`
	CoverLetter string               `json:"cover_letter,omitempty"`
	Resume      string               `json:"resume,omitempty"`
	Notes       string               `json:"notes,omitempty"`
	AppliedAt   time.Time            `json:"applied_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type JobSummaryResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	CompanyName string    `json:"company_name"`
	City        string    `json:"city"`
	Status      string    `json:"status"`
}

type ApplicantApplicationResponse struct {
	ApplicationResponse
	Job *JobSummaryResponse `json:"job"`
}

func NewApplicationResponse(a posting.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:          a.ID,
		JobID:       a.PostingID,
		ApplicantID: a.ApplicantID,
		Status:      string(a.Status),
		CoverLetter: a.CoverLetter,
		Resume:      a.Resume,
		Notes:       a.Notes,
		AppliedAt:   a.AppliedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func NewApplicationViews(in []postinguc.ApplicationView) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(in))
	for _, v := range in {
		res := NewApplicationResponse(v.Application)
		summary := NewUserSummary(v.Applicant)
		res.Applicant = &summary
		out = append(out, res)
	}
	return out
}

func NewApplicantApplications(in []postinguc.ApplicantApplication) []ApplicantApplicationResponse {
	out := make([]ApplicantApplicationResponse, 0, len(in))
	for _, v := range in {
		res := ApplicantApplicationResponse{ApplicationResponse: NewApplicationResponse(v.Application)}
		if v.Job != nil {
			res.Job = &JobSummaryResponse{
				ID:          v.Job.ID,
				Title:       v.Job.Content.Title,
				CompanyName: v.Job.Content.CompanyName,
				City:        v.Job.Content.City,
				Status:      string(v.Job.Status),
			}
		}
		out = append(out, res)
	}
	return out
}
