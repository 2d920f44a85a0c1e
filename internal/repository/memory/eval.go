package memory

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"classifieds/internal/domain/posting"
	"classifieds/internal/search"

	"github.com/google/uuid"
)

func eval(n search.Node, p posting.Posting) (bool, error) {
	switch v := n.(type) {
	case nil:
		return true, nil
	case search.And:
		for _, c := range v.Nodes {
			ok, err := eval(c, p)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case search.Or:
		for _, c := range v.Nodes {
			ok, err := eval(c, p)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case search.Eq:
		got, err := fieldValue(p, v.Field)
		if err != nil {
			return false, err
		}
		return equal(v.Field, got, v.Value), nil
	case search.Range:
		got, err := fieldValue(p, v.Field)
		if err != nil {
			return false, err
		}
		return inRange(got, v), nil
	case search.Text:
		got, err := fieldValue(p, v.Field)
		if err != nil {
			return false, err
		}
		s, ok := got.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(v.Value)), nil
	default:
		return false, fmt.Errorf("memory: unsupported predicate %T", n)
	}
}

func equal(f search.Field, got, want any) bool {
	if gs, ok := got.(string); ok {
		ws, ok := want.(string)
		if !ok {
			return false
		}
		if f.FoldCase() {
			return strings.EqualFold(gs, ws)
		}
		return gs == ws
	}
	if gt, ok := got.(time.Time); ok {
		wt, ok := want.(time.Time)
		return ok && gt.Equal(wt)
	}
	return got == want
}

func inRange(got any, r search.Range) bool {
	if got == nil {
		return false
	}
	check := func(bound any, accept func(int) bool) bool {
		if bound == nil {
			return true
		}
		c, ok := compareValues(got, bound)
		return ok && accept(c)
	}
	return check(r.Gt, func(c int) bool { return c > 0 }) &&
		check(r.Gte, func(c int) bool { return c >= 0 }) &&
		check(r.Lt, func(c int) bool { return c < 0 }) &&
		check(r.Lte, func(c int) bool { return c <= 0 })
}

func compareValues(a, b any) (int, bool) {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return cmp.Compare(av, bv), ok
	case int64:
		bv, ok := b.(int64)
		return cmp.Compare(av, bv), ok
	case time.Time:
		bv, ok := b.(time.Time)
		return av.Compare(bv), ok
	case string:
		bv, ok := b.(string)
		return cmp.Compare(av, bv), ok
	default:
		return 0, false
	}
}

// compareBy orders postings; missing values sort last regardless of direction, matching
// NULLS LAST in the SQL store.
func compareBy(orders []search.Order, a, b posting.Posting) int {
	for _, o := range orders {
		av, _ := fieldValue(a, o.Field)
		bv, _ := fieldValue(b, o.Field)

		switch {
		case av == nil && bv == nil:
			continue
		case av == nil:
			return 1
		case bv == nil:
			return -1
		}

		var c int
		if au, ok := av.(uuid.UUID); ok {
			c = cmp.Compare(au.String(), bv.(uuid.UUID).String())
		} else {
			c, _ = compareValues(av, bv)
		}
		if c == 0 {
			continue
		}
		if o.Desc {
			return -c
		}
		return c
	}
	return 0
}

func fieldValue(p posting.Posting, f search.Field) (any, error) {
	c := p.Content
	switch f {
	case search.FieldID:
		return p.ID, nil
	case search.FieldOwner:
		return p.OwnerID, nil
	case search.FieldStatus:
		return string(p.Status), nil
	case search.FieldModerationStatus:
		return string(p.ModerationStatus), nil
	case search.FieldIsReported:
		return p.IsReported(), nil
	case search.FieldViews:
		return p.Views, nil
	case search.FieldCreatedAt:
		return p.CreatedAt, nil
	case search.FieldTitle:
		return c.Title, nil
	case search.FieldDescription:
		return c.Description, nil
	case search.FieldCity:
		return c.City, nil
	case search.FieldRegion:
		return c.Region, nil
	case search.FieldAddress:
		return c.Address, nil
	case search.FieldPrice:
		return floatOrNil(c.Price), nil
	case search.FieldPropertyType:
		return c.PropertyType, nil
	case search.FieldListingType:
		return c.ListingType, nil
	case search.FieldRoomType:
		return c.RoomType, nil
	case search.FieldGenderRestriction:
		return c.GenderRestriction, nil
	case search.FieldAvailableFrom:
		return timeOrNil(c.AvailableFrom), nil
	case search.FieldRole:
		return c.Role, nil
	case search.FieldCompanyName:
		return c.CompanyName, nil
	case search.FieldJobType:
		return c.JobType, nil
	case search.FieldWorkMode:
		return c.WorkMode, nil
	case search.FieldRequirements:
		return c.Requirements, nil
	case search.FieldSalaryMin:
		return floatOrNil(c.SalaryMin), nil
	case search.FieldSalaryMax:
		return floatOrNil(c.SalaryMax), nil
	case search.FieldSalaryCurrency:
		return c.SalaryCurrency, nil
	case search.FieldSalaryPeriod:
		return c.SalaryPeriod, nil
	case search.FieldApplicationDeadline:
		return timeOrNil(c.ApplicationDeadline), nil
	default:
		return nil, fmt.Errorf("memory: unknown field %q", f)
	}
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func timeOrNil(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}
