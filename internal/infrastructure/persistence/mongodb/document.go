package mongodb

import (
	"time"

	"classifieds/internal/domain/access"
	"classifieds/internal/domain/posting"
	"classifieds/internal/domain/user"

	"github.com/google/uuid"
)

type postingDoc struct {
	ID      string     `bson:"_id"`
	Kind    string     `bson:"kind"`
	OwnerID string     `bson:"ownerId"`
	Content contentDoc `bson:"content"`

	Status           string     `bson:"status"`
	ModerationStatus string     `bson:"moderationStatus"`
	ModeratedBy      *string    `bson:"moderatedBy,omitempty"`
	ModeratedAt      *time.Time `bson:"moderatedAt,omitempty"`
	ModerationNotes  string     `bson:"moderationNotes"`

	Reports          []reportDoc      `bson:"reports"`
	Views            int64            `bson:"views"`
	Applications     []applicationDoc `bson:"applications,omitempty"`
	ApplicationCount int              `bson:"applicationCount"`

	Version   int64     `bson:"version"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type contentDoc struct {
	Title        string `bson:"title"`
	Description  string `bson:"description"`
	City         string `bson:"city"`
	Region       string `bson:"region"`
	Address      string `bson:"address"`
	ContactEmail string `bson:"contactEmail"`
	ContactPhone string `bson:"contactPhone"`

	Price             *float64   `bson:"price,omitempty"`
	PriceMax          *float64   `bson:"priceMax,omitempty"`
	Currency          string     `bson:"currency"`
	PropertyType      string     `bson:"propertyType"`
	ListingType       string     `bson:"listingType"`
	Bedrooms          *int       `bson:"bedrooms,omitempty"`
	Bathrooms         *int       `bson:"bathrooms,omitempty"`
	AreaSqm           *float64   `bson:"areaSqm,omitempty"`
	RoomType          string     `bson:"roomType"`
	GenderRestriction string     `bson:"genderRestriction"`
	AvailableFrom     *time.Time `bson:"availableFrom,omitempty"`
	Amenities         []string   `bson:"amenities"`

	Role                string     `bson:"role"`
	CompanyName         string     `bson:"companyName"`
	JobType             string     `bson:"jobType"`
	WorkMode            string     `bson:"workMode"`
	Requirements        string     `bson:"requirements"`
	Benefits            string     `bson:"benefits"`
	SalaryMin           *float64   `bson:"salaryMin,omitempty"`
	SalaryMax           *float64   `bson:"salaryMax,omitempty"`
	SalaryCurrency      string     `bson:"salaryCurrency"`
	SalaryPeriod        string     `bson:"salaryPeriod"`
	ApplicationDeadline *time.Time `bson:"applicationDeadline,omitempty"`
}

type reportDoc struct {
	ID          string    `bson:"_id"`
	ReportedBy  string    `bson:"reportedBy"`
	Reason      string    `bson:"reason"`
	Description string    `bson:"description"`
	ReportedAt  time.Time `bson:"reportedAt"`
}

type applicationDoc struct {
	ID          string    `bson:"_id"`
	PostingID   string    `bson:"postingId"`
	ApplicantID string    `bson:"applicantId"`
	Status      string    `bson:"status"`
	CoverLetter string    `bson:"coverLetter"`
	Resume      string    `bson:"resume"`
	Notes       string    `bson:"notes"`
	AppliedAt   time.Time `bson:"appliedAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

type userDoc struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	FullName  string    `bson:"fullName"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func toPostingDoc(p posting.Posting) postingDoc {
	d := postingDoc{
		ID:               p.ID.String(),
		Kind:             string(p.Kind),
		OwnerID:          p.OwnerID.String(),
		Content:          toContentDoc(p.Content),
		Status:           string(p.Status),
		ModerationStatus: string(p.ModerationStatus),
		ModeratedAt:      utcPtr(p.ModeratedAt),
		ModerationNotes:  p.ModerationNotes,
		Reports:          make([]reportDoc, 0, len(p.Reports)),
		Views:            p.Views,
		Version:          p.Version,
		CreatedAt:        p.CreatedAt.UTC(),
		UpdatedAt:        p.UpdatedAt.UTC(),
	}
	if p.ModeratedBy != nil {
		s := p.ModeratedBy.String()
		d.ModeratedBy = &s
	}
	for _, r := range p.Reports {
		d.Reports = append(d.Reports, toReportDoc(r))
	}
	return d
}

func toContentDoc(c posting.Content) contentDoc {
	amenities := c.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return contentDoc{
		Title:               c.Title,
		Description:         c.Description,
		City:                c.City,
		Region:              c.Region,
		Address:             c.Address,
		ContactEmail:        c.ContactEmail,
		ContactPhone:        c.ContactPhone,
		Price:               c.Price,
		PriceMax:            c.PriceMax,
		Currency:            c.Currency,
		PropertyType:        c.PropertyType,
		ListingType:         c.ListingType,
		Bedrooms:            c.Bedrooms,
		Bathrooms:           c.Bathrooms,
		AreaSqm:             c.AreaSqm,
		RoomType:            c.RoomType,
		GenderRestriction:   c.GenderRestriction,
		AvailableFrom:       utcPtr(c.AvailableFrom),
		Amenities:           amenities,
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
		ApplicationDeadline: utcPtr(c.ApplicationDeadline),
	}
}

func (d postingDoc) toDomain() (posting.Posting, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return posting.Posting{}, err
	}
	owner, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return posting.Posting{}, err
	}
	p := posting.Posting{
		ID:               id,
		Kind:             posting.Kind(d.Kind),
		OwnerID:          owner,
		Content:          d.Content.toDomain(),
		Status:           posting.Status(d.Status),
		ModerationStatus: posting.ModerationStatus(d.ModerationStatus),
		ModeratedAt:      d.ModeratedAt,
		ModerationNotes:  d.ModerationNotes,
		Views:            d.Views,
		ApplicationCount: d.ApplicationCount,
		Version:          d.Version,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	if d.ModeratedBy != nil {
		by, err := uuid.Parse(*d.ModeratedBy)
		if err != nil {
			return posting.Posting{}, err
		}
		p.ModeratedBy = &by
	}
	for _, r := range d.Reports {
		rep, err := r.toDomain()
		if err != nil {
			return posting.Posting{}, err
		}
		p.Reports = append(p.Reports, rep)
	}
	return p, nil
}

func (c contentDoc) toDomain() posting.Content {
	return posting.Content{
		Title:               c.Title,
		Description:         c.Description,
		City:                c.City,
		Region:              c.Region,
		Address:             c.Address,
		ContactEmail:        c.ContactEmail,
		ContactPhone:        c.ContactPhone,
		Price:               c.Price,
		PriceMax:            c.PriceMax,
		Currency:            c.Currency,
		PropertyType:        c.PropertyType,
		ListingType:         c.ListingType,
		Bedrooms:            c.Bedrooms,
		Bathrooms:           c.Bathrooms,
		AreaSqm:             c.AreaSqm,
		RoomType:            c.RoomType,
		GenderRestriction:   c.GenderRestriction,
		AvailableFrom:       c.AvailableFrom,
		Amenities:           c.Amenities,
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
	}
}

func toReportDoc(r posting.Report) reportDoc {
	return reportDoc{
		ID:          r.ID.String(),
		ReportedBy:  r.ReportedBy.String(),
		Reason:      string(r.Reason),
		Description: r.Description,
		ReportedAt:  r.ReportedAt.UTC(),
	}
}

func (r reportDoc) toDomain() (posting.Report, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return posting.Report{}, err
	}
	by, err := uuid.Parse(r.ReportedBy)
	if err != nil {
		return posting.Report{}, err
	}
	return posting.Report{
		ID:          id,
		ReportedBy:  by,
		Reason:      posting.ReportReason(r.Reason),
		Description: r.Description,
		ReportedAt:  r.ReportedAt,
	}, nil
}

func toApplicationDoc(a posting.Application) applicationDoc {
	return applicationDoc{
		ID:          a.ID.String(),
		PostingID:   a.PostingID.String(),
		ApplicantID: a.ApplicantID.String(),
		Status:      string(a.Status),
		CoverLetter: a.CoverLetter,
		Resume:      a.Resume,
		Notes:       a.Notes,
		AppliedAt:   a.AppliedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
}

func (a applicationDoc) toDomain() (posting.Application, error) {
	var out posting.Application
	var err error
	if out.ID, err = uuid.Parse(a.ID); err != nil {
		return posting.Application{}, err
	}
	if out.PostingID, err = uuid.Parse(a.PostingID); err != nil {
		return posting.Application{}, err
	}
	if out.ApplicantID, err = uuid.Parse(a.ApplicantID); err != nil {
		return posting.Application{}, err
	}
	out.Status = posting.ApplicationStatus(a.Status)
	out.CoverLetter = a.CoverLetter
	out.Resume = a.Resume
	out.Notes = a.Notes
	out.AppliedAt = a.AppliedAt
	out.UpdatedAt = a.UpdatedAt
	return out, nil
}

func (u userDoc) toDomain() (user.User, error) {
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return user.User{}, err
	}
	return user.User{
		ID:        id,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      access.ParseRole(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
