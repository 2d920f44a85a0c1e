package dto

import (
	"time"

	"classifieds/internal/domain/posting"

	"github.com/google/uuid"
)

type PostingResponse struct {
	ID      uuid.UUID `json:"id"`
	Kind    string    `json:"kind"`
	OwnerID uuid.UUID `json:"owner_id"`

	Title        string `json:"title"`
	Description  string `json:"description"`
	City         string `json:"city"`
	Region       string `json:"region,omitempty"`
	Address      string `json:"address,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`

	Price             *float64   `json:"price,omitempty"`
	PriceMax          *float64   `json:"price_max,omitempty"`
	Currency          string     `json:"currency,omitempty"`
	PropertyType      string     `json:"property_type,omitempty"`
	ListingType       string     `json:"listing_type,omitempty"`
	Bedrooms          *int       `json:"bedrooms,omitempty"`
	Bathrooms         *int       `json:"bathrooms,omitempty"`
	AreaSqm           *float64   `json:"area_sqm,omitempty"`
	RoomType          string     `json:"room_type,omitempty"`
	GenderRestriction string     `json:"gender_restriction,omitempty"`
	AvailableFrom     *time.Time `json:"available_from,omitempty"`
	Amenities         []string   `json:"amenities,omitempty"`

	Role                string     `json:"role,omitempty"`
	CompanyName         string     `json:"company_name,omitempty"`
	JobType             string     `json:"job_type,omitempty"`
	WorkMode            string     `json:"work_mode,omitempty"`
	Requirements        string     `json:"requirements,omitempty"`
	Benefits            string     `json:"benefits,omitempty"`
	SalaryMin           *float64   `json:"salary_min,omitempty"`
	SalaryMax           *float64   `json:"salary_max,omitempty"`
	SalaryCurrency      string     `json:"salary_currency,omitempty"`
	SalaryPeriod        string     `json:"salary_period,omitempty"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	ApplicationCount    *int       `json:"application_count,omitempty"`

	Status           string     `json:"status"`
	ModerationStatus string     `json:"moderation_status"`
	ModeratedBy      *uuid.UUID `json:"moderated_by,omitempty"`
	ModeratedAt      *time.Time `json:"moderated_at,omitempty"`
	ModerationNotes  string     `json:"moderation_notes,omitempty"`

	Views                   int64            `json:"views"`
	IsReported              bool             `json:"is_reported"`
	IsActive                bool             `json:"is_active"`
	IsAcceptingApplications *bool            `json:"is_accepting_applications,omitempty"`
	PriceRange              string           `json:"price_range,omitempty"`
	SalaryRange             string           `json:"salary_range,omitempty"`
	Reports                 []ReportResponse `json:"reports,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReportResponse struct {
	ID          uuid.UUID `json:"id"`
	ReportedBy  uuid.UUID `json:"reported_by"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
	ReportedAt  time.Time `json:"reported_at"`
}

// NewPostingResponse renders a posting with its derived fields computed at now. Reports
// are only included when withReports is set.
func NewPostingResponse(p posting.Posting, now time.Time, withReports bool) PostingResponse {
	c := p.Content
	d := posting.Derive(p, now)
	res := PostingResponse{
		ID:      p.ID,
		Kind:    string(p.Kind),
		OwnerID: p.OwnerID,

		Title:        c.Title,
		Description:  c.Description,
		City:         c.City,
		Region:       c.Region,
		Address:      c.Address,
		ContactEmail: c.ContactEmail,
		ContactPhone: c.ContactPhone,

		Price:             c.Price,
		PriceMax:          c.PriceMax,
		Currency:          c.Currency,
		PropertyType:      c.PropertyType,
		ListingType:       c.ListingType,
		Bedrooms:          c.Bedrooms,
		Bathrooms:         c.Bathrooms,
		AreaSqm:           c.AreaSqm,
		RoomType:          c.RoomType,
		GenderRestriction: c.GenderRestriction,
		AvailableFrom:     c.AvailableFrom,
		Amenities:         c.Amenities,

		Role:                c.Role,
		CompanyName:         c.CompanyName,
		JobType:             c.JobType,
		WorkMode:            c.WorkMode,
		Requirements:        c.Requirements,
		Benefits:            c.Benefits,
		SalaryMin:           c.SalaryMin,
		SalaryMax:           c.SalaryMax,
		SalaryCurrency:      c.SalaryCurrency,
		SalaryPeriod:        c.SalaryPeriod,
		ApplicationDeadline: c.ApplicationDeadline,

		Status:           string(p.Status),
		ModerationStatus: string(p.ModerationStatus),
		ModeratedBy:      p.ModeratedBy,
		ModeratedAt:      p.ModeratedAt,
		ModerationNotes:  p.ModerationNotes,

		Views:       p.Views,
		IsReported:  d.IsReported,
		IsActive:    d.IsActive,
		PriceRange:  d.PriceRange,
		SalaryRange: d.SalaryRange,

		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	if p.Kind == posting.KindJob {
		count := p.ApplicationCount
		accepting := d.IsAcceptingApplications
		res.ApplicationCount = &count
		res.IsAcceptingApplications = &accepting
	}
	if withReports {
		res.Reports = make([]ReportResponse, 0, len(p.Reports))
		for _, r := range p.Reports {
			res.Reports = append(res.Reports, NewReportResponse(r))
		}
	}
	return res
}

func NewPostingList(items []posting.Posting, now time.Time, withReports bool) []PostingResponse {
	out := make([]PostingResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewPostingResponse(it, now, withReports))
	}
	return out
}

func NewReportResponse(r posting.Report) ReportResponse {
	return ReportResponse{
		ID:          r.ID,
		ReportedBy:  r.ReportedBy,
		Reason:      string(r.Reason),
		Description: r.Description,
		ReportedAt:  r.ReportedAt,
	}
}
