package posting

import (
	"time"

	"classifieds/internal/pkg/apperr"
)

// CheckContent enforces the cross-field rules of a posting's content. deadlineChanged
// is true on creation and whenever an edit touches the application deadline; only then
// must the deadline lie strictly in the future.
func CheckContent(kind Kind, c Content, deadlineChanged bool, now time.Time) error {
	fields := map[string]string{}

	if c.SalaryMin != nil && c.SalaryMax != nil && *c.SalaryMin > *c.SalaryMax {
		fields["salary_max"] = "must not be lower than salary_min"
	}
	if c.Price != nil && c.PriceMax != nil && *c.Price > *c.PriceMax {
		fields["price_max"] = "must not be lower than price"
	}
	if kind == KindJob && deadlineChanged {
		switch {
		case c.ApplicationDeadline == nil:
			fields["application_deadline"] = "is required"
		case !c.ApplicationDeadline.After(now):
			fields["application_deadline"] = "must be in the future"
		}
	}

	if len(fields) > 0 {
		return apperr.Validation("invalid posting content", fields)
	}
	return nil
}
