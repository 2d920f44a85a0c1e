package posting

import (
	"strconv"
	"strings"
	"time"
)

// Derived holds read-only values computed from stored fields. Nothing here is persisted.
type Derived struct {
	IsReported              bool
	IsActive                bool
	IsAcceptingApplications bool
	PriceRange              string
	SalaryRange             string
}

func Derive(p Posting, now time.Time) Derived {
	d := Derived{IsReported: p.IsReported()}

	switch p.Kind {
	case KindJob:
		d.IsActive = p.Status == StatusOpen
		d.IsAcceptingApplications = p.AcceptsApplications(now)
		d.SalaryRange = formatRange(p.Content.SalaryMin, p.Content.SalaryMax, p.Content.SalaryCurrency, p.Content.SalaryPeriod)
	default:
		d.IsActive = p.Status == StatusActive
		d.PriceRange = formatRange(p.Content.Price, p.Content.PriceMax, p.Content.Currency, "")
	}
	return d
}

func formatRange(lo, hi *float64, currency, period string) string {
	var b strings.Builder
	switch {
	case lo != nil && hi != nil && *hi > *lo:
		b.WriteString(formatAmount(*lo))
		b.WriteString(" - ")
		b.WriteString(formatAmount(*hi))
	case lo != nil:
		b.WriteString(formatAmount(*lo))
	case hi != nil:
		b.WriteString("up to ")
		b.WriteString(formatAmount(*hi))
	default:
		return ""
	}
	if currency != "" {
		b.WriteString(" ")
		b.WriteString(strings.ToUpper(currency))
	}
	if period != "" {
		b.WriteString(" / ")
		b.WriteString(period)
	}
	return b.String()
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
