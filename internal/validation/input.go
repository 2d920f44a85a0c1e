package validation

import (
	"slices"
	"strings"
	"time"

	"classifieds/internal/domain/posting"
	"classifieds/internal/pkg/apperr"
)

// Input is a decoded posting payload. Absent fields are nil.
type Input struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	City         *string `json:"city"`
	Region       *string `json:"region"`
	Address      *string `json:"address"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`

	Price             *float64  `json:"price"`
	PriceMax          *float64  `json:"price_max"`
	Currency          *string   `json:"currency"`
	PropertyType      *string   `json:"property_type"`
	ListingType       *string   `json:"listing_type"`
	Bedrooms          *int      `json:"bedrooms"`
	Bathrooms         *int      `json:"bathrooms"`
	AreaSqm           *float64  `json:"area_sqm"`
	RoomType          *string   `json:"room_type"`
	GenderRestriction *string   `json:"gender_restriction"`
	AvailableFrom     *string   `json:"available_from"`
	Amenities         *[]string `json:"amenities"`

	Role                *string  `json:"role"`
	CompanyName         *string  `json:"company_name"`
	JobType             *string  `json:"job_type"`
	WorkMode            *string  `json:"work_mode"`
	Requirements        *string  `json:"requirements"`
	Benefits            *string  `json:"benefits"`
	SalaryMin           *float64 `json:"salary_min"`
	SalaryMax           *float64 `json:"salary_max"`
	SalaryCurrency      *string  `json:"salary_currency"`
	SalaryPeriod        *string  `json:"salary_period"`
	ApplicationDeadline *string  `json:"application_deadline"`
}

var commonFields = []string{"title", "description", "city", "region", "address", "contact_email", "contact_phone"}

var kindFields = map[posting.Kind][]string{
	posting.KindJob: {
		"role", "company_name", "job_type", "work_mode", "requirements", "benefits",
		"salary_min", "salary_max", "salary_currency", "salary_period", "application_deadline",
	},
	posting.KindListing: {
		"price", "price_max", "currency", "property_type", "listing_type", "bedrooms",
		"bathrooms", "area_sqm", "available_from", "amenities",
	},
	posting.KindDormitory: {
		"price", "price_max", "currency", "room_type", "gender_restriction",
		"available_from", "amenities",
	},
}

func applies(kind posting.Kind, field string) bool {
	return slices.Contains(commonFields, field) || slices.Contains(kindFields[kind], field)
}

// Validator checks payloads against a RuleSet.
type Validator struct {
	rules RuleSet
}

func New(rules RuleSet) *Validator {
	return &Validator{rules: rules}
}

// Create validates a full payload and returns the content of a new posting.
func (v *Validator) Create(kind posting.Kind, in Input) (posting.Content, error) {
	patch, err := v.check(kind, in, true)
	if err != nil {
		return posting.Content{}, err
	}
	return patch.Apply(posting.Content{}), nil
}

// Update validates a partial payload. Only present fields are checked; required fields
// may be omitted but not cleared.
func (v *Validator) Update(kind posting.Kind, in Input) (posting.Patch, error) {
	patch, err := v.check(kind, in, false)
	if err != nil {
		return posting.Patch{}, err
	}
	if patch.IsEmpty() {
		return posting.Patch{}, apperr.Validation("no content fields to update", nil)
	}
	return patch, nil
}

func (v *Validator) check(kind posting.Kind, in Input, creating bool) (posting.Patch, error) {
	fieldErrs := map[string]string{}
	values := map[string]any{}
	var patch posting.Patch

	str := func(name string, src *string, dst **string, lower bool) {
		if src == nil || !applies(kind, name) {
			return
		}
		s := strings.TrimSpace(*src)
		if lower {
			s = strings.ToLower(s)
		}
		values[name] = s
		*dst = &s
	}
	num := func(name string, src *float64, dst **float64) {
		if src == nil || !applies(kind, name) {
			return
		}
		n := *src
		values[name] = n
		*dst = &n
	}
	integer := func(name string, src *int, dst **int) {
		if src == nil || !applies(kind, name) {
			return
		}
		n := *src
		values[name] = n
		*dst = &n
	}
	date := func(name string, src *string, dst **time.Time) {
		if src == nil || !applies(kind, name) {
			return
		}
		raw := strings.TrimSpace(*src)
		if raw == "" {
			values[name] = ""
			return
		}
		t, ok := parseTime(raw)
		if !ok {
			fieldErrs[name] = "must be a date (YYYY-MM-DD) or RFC3339 timestamp"
			return
		}
		values[name] = t
		*dst = &t
	}

	str("title", in.Title, &patch.Title, false)
	str("description", in.Description, &patch.Description, false)
	str("city", in.City, &patch.City, false)
	str("region", in.Region, &patch.Region, false)
	str("address", in.Address, &patch.Address, false)
	str("contact_email", in.ContactEmail, &patch.ContactEmail, true)
	str("contact_phone", in.ContactPhone, &patch.ContactPhone, false)

	num("price", in.Price, &patch.Price)
	num("price_max", in.PriceMax, &patch.PriceMax)
	str("currency", in.Currency, &patch.Currency, false)
	str("property_type", in.PropertyType, &patch.PropertyType, true)
	str("listing_type", in.ListingType, &patch.ListingType, true)
	integer("bedrooms", in.Bedrooms, &patch.Bedrooms)
	integer("bathrooms", in.Bathrooms, &patch.Bathrooms)
	num("area_sqm", in.AreaSqm, &patch.AreaSqm)
	str("room_type", in.RoomType, &patch.RoomType, true)
	str("gender_restriction", in.GenderRestriction, &patch.GenderRestriction, true)
	date("available_from", in.AvailableFrom, &patch.AvailableFrom)
	if in.Amenities != nil && applies(kind, "amenities") {
		items := make([]string, 0, len(*in.Amenities))
		for _, a := range *in.Amenities {
			if a = strings.TrimSpace(a); a != "" && !slices.Contains(items, a) {
				items = append(items, a)
			}
		}
		values["amenities"] = items
		patch.Amenities = &items
	}

	str("role", in.Role, &patch.Role, false)
	str("company_name", in.CompanyName, &patch.CompanyName, false)
	str("job_type", in.JobType, &patch.JobType, true)
	str("work_mode", in.WorkMode, &patch.WorkMode, true)
	str("requirements", in.Requirements, &patch.Requirements, false)
	str("benefits", in.Benefits, &patch.Benefits, false)
	num("salary_min", in.SalaryMin, &patch.SalaryMin)
	num("salary_max", in.SalaryMax, &patch.SalaryMax)
	str("salary_currency", in.SalaryCurrency, &patch.SalaryCurrency, false)
	str("salary_period", in.SalaryPeriod, &patch.SalaryPeriod, true)
	date("application_deadline", in.ApplicationDeadline, &patch.ApplicationDeadline)

	for name, rule := range v.rules[kind] {
		if !applies(kind, name) {
			continue
		}
		if _, bad := fieldErrs[name]; bad {
			continue
		}
		val, present := values[name]
		if !present {
			if creating && rule.Required {
				fieldErrs[name] = "is required"
			}
			continue
		}
		if s, ok := val.(string); ok && s == "" && rule.Required {
			fieldErrs[name] = "is required"
			continue
		}
		if msg := rule.check(val); msg != "" {
			fieldErrs[name] = msg
		}
	}

	if len(fieldErrs) > 0 {
		return posting.Patch{}, apperr.Validation("invalid posting payload", fieldErrs)
	}
	return patch, nil
}

func parseTime(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
