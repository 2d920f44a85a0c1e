package posting

import (
	"slices"
	"time"
)

// Content is the owner-editable payload. Fields that do not apply to a kind stay zero.
type Content struct {
	Title        string
	Description  string
	City         string
	Region       string
	Address      string
	ContactEmail string
	ContactPhone string

	// listings and dormitories
	Price             *float64
	PriceMax          *float64
	Currency          string
	PropertyType      string
	ListingType       string
	Bedrooms          *int
	Bathrooms         *int
	AreaSqm           *float64
	RoomType          string
	GenderRestriction string
	AvailableFrom     *time.Time
	Amenities         []string

	// jobs
	Role                string
	CompanyName         string
	JobType             string
	WorkMode            string
	Requirements        string
	Benefits            string
	SalaryMin           *float64
	SalaryMax           *float64
	SalaryCurrency      string
	SalaryPeriod        string
	ApplicationDeadline *time.Time
}

// Patch is a partial content edit; nil fields are left untouched.
type Patch struct {
	Title        *string
	Description  *string
	City         *string
	Region       *string
	Address      *string
	ContactEmail *string
	ContactPhone *string

	Price             *float64
	PriceMax          *float64
	Currency          *string
	PropertyType      *string
	ListingType       *string
	Bedrooms          *int
	Bathrooms         *int
	AreaSqm           *float64
	RoomType          *string
	GenderRestriction *string
	AvailableFrom     *time.Time
	Amenities         *[]string

	Role                *string
	CompanyName         *string
	JobType             *string
	WorkMode            *string
	Requirements        *string
	Benefits            *string
	SalaryMin           *float64
	SalaryMax           *float64
	SalaryCurrency      *string
	SalaryPeriod        *string
	ApplicationDeadline *time.Time
}

func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Apply returns a copy of c with the patch applied. c is not modified.
func (p Patch) Apply(c Content) Content {
	out := c.Clone()

	setStr(&out.Title, p.Title)
	setStr(&out.Description, p.Description)
	setStr(&out.City, p.City)
	setStr(&out.Region, p.Region)
	setStr(&out.Address, p.Address)
	setStr(&out.ContactEmail, p.ContactEmail)
	setStr(&out.ContactPhone, p.ContactPhone)

	setPtr(&out.Price, p.Price)
	setPtr(&out.PriceMax, p.PriceMax)
	setStr(&out.Currency, p.Currency)
	setStr(&out.PropertyType, p.PropertyType)
	setStr(&out.ListingType, p.ListingType)
	setPtr(&out.Bedrooms, p.Bedrooms)
	setPtr(&out.Bathrooms, p.Bathrooms)
	setPtr(&out.AreaSqm, p.AreaSqm)
	setStr(&out.RoomType, p.RoomType)
	setStr(&out.GenderRestriction, p.GenderRestriction)
	setPtr(&out.AvailableFrom, p.AvailableFrom)
	if p.Amenities != nil {
		out.Amenities = slices.Clone(*p.Amenities)
	}

	setStr(&out.Role, p.Role)
	setStr(&out.CompanyName, p.CompanyName)
	setStr(&out.JobType, p.JobType)
	setStr(&out.WorkMode, p.WorkMode)
	setStr(&out.Requirements, p.Requirements)
	setStr(&out.Benefits, p.Benefits)
	setPtr(&out.SalaryMin, p.SalaryMin)
	setPtr(&out.SalaryMax, p.SalaryMax)
	setStr(&out.SalaryCurrency, p.SalaryCurrency)
	setStr(&out.SalaryPeriod, p.SalaryPeriod)
	setPtr(&out.ApplicationDeadline, p.ApplicationDeadline)

	return out
}

// ChangedFields lists the content fields whose value differs between a and b.
func ChangedFields(a, b Content) []string {
	var out []string
	add := func(name string, changed bool) {
		if changed {
			out = append(out, name)
		}
	}

	add("title", a.Title != b.Title)
	add("description", a.Description != b.Description)
	add("city", a.City != b.City)
	add("region", a.Region != b.Region)
	add("address", a.Address != b.Address)
	add("contact_email", a.ContactEmail != b.ContactEmail)
	add("contact_phone", a.ContactPhone != b.ContactPhone)

	add("price", !eqPtr(a.Price, b.Price))
	add("price_max", !eqPtr(a.PriceMax, b.PriceMax))
	add("currency", a.Currency != b.Currency)
	add("property_type", a.PropertyType != b.PropertyType)
	add("listing_type", a.ListingType != b.ListingType)
	add("bedrooms", !eqPtr(a.Bedrooms, b.Bedrooms))
	add("bathrooms", !eqPtr(a.Bathrooms, b.Bathrooms))
	add("area_sqm", !eqPtr(a.AreaSqm, b.AreaSqm))
	add("room_type", a.RoomType != b.RoomType)
	add("gender_restriction", a.GenderRestriction != b.GenderRestriction)
	add("available_from", !eqTime(a.AvailableFrom, b.AvailableFrom))
	add("amenities", !slices.Equal(a.Amenities, b.Amenities))

	add("role", a.Role != b.Role)
	add("company_name", a.CompanyName != b.CompanyName)
	add("job_type", a.JobType != b.JobType)
	add("work_mode", a.WorkMode != b.WorkMode)
	add("requirements", a.Requirements != b.Requirements)
	add("benefits", a.Benefits != b.Benefits)
	add("salary_min", !eqPtr(a.SalaryMin, b.SalaryMin))
	add("salary_max", !eqPtr(a.SalaryMax, b.SalaryMax))
	add("salary_currency", a.SalaryCurrency != b.SalaryCurrency)
	add("salary_period", a.SalaryPeriod != b.SalaryPeriod)
	add("application_deadline", !eqTime(a.ApplicationDeadline, b.ApplicationDeadline))

	return out
}

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setPtr[T any](dst **T, v *T) {
	if v != nil {
		cp := *v
		*dst = &cp
	}
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func eqTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Clone returns a deep copy of c.
func (c Content) Clone() Content {
	out := c
	out.Price = clonePtr(c.Price)
	out.PriceMax = clonePtr(c.PriceMax)
	out.Bedrooms = clonePtr(c.Bedrooms)
	out.Bathrooms = clonePtr(c.Bathrooms)
	out.AreaSqm = clonePtr(c.AreaSqm)
	out.AvailableFrom = clonePtr(c.AvailableFrom)
	out.Amenities = slices.Clone(c.Amenities)
	out.SalaryMin = clonePtr(c.SalaryMin)
	out.SalaryMax = clonePtr(c.SalaryMax)
	out.ApplicationDeadline = clonePtr(c.ApplicationDeadline)
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
