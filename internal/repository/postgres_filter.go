package repository

import (
	"fmt"
	"strconv"
	"strings"

	"classifieds/internal/search"
)

var postingColumns = map[search.Field]string{
	search.FieldID:                  "p.id",
	search.FieldOwner:               "p.owner_id",
	search.FieldStatus:              "p.status",
	search.FieldModerationStatus:    "p.moderation_status",
	search.FieldViews:               "p.views",
	search.FieldCreatedAt:           "p.created_at",
	search.FieldTitle:               "p.title",
	search.FieldDescription:         "p.description",
	search.FieldCity:                "p.city",
	search.FieldRegion:              "p.region",
	search.FieldAddress:             "p.address",
	search.FieldPrice:               "p.price",
	search.FieldPropertyType:        "p.property_type",
	search.FieldListingType:         "p.listing_type",
	search.FieldRoomType:            "p.room_type",
	search.FieldGenderRestriction:   "p.gender_restriction",
	search.FieldAvailableFrom:       "p.available_from",
	search.FieldRole:                "p.role",
	search.FieldCompanyName:         "p.company_name",
	search.FieldJobType:             "p.job_type",
	search.FieldWorkMode:            "p.work_mode",
	search.FieldRequirements:        "p.requirements",
	search.FieldSalaryMin:           "p.salary_min",
	search.FieldSalaryMax:           "p.salary_max",
	search.FieldSalaryCurrency:      "p.salary_currency",
	search.FieldSalaryPeriod:        "p.salary_period",
	search.FieldApplicationDeadline: "p.application_deadline",
}

const reportedExpr = "EXISTS (SELECT 1 FROM posting_reports r WHERE r.posting_id = p.id)"

// sqlBuilder renders predicate trees into a WHERE fragment with positional arguments.
// Field names never reach the SQL text unless they are in postingColumns.
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *sqlBuilder) column(f search.Field) (string, error) {
	col, ok := postingColumns[f]
	if !ok {
		return "", fmt.Errorf("postgres: unknown field %q", f)
	}
	return col, nil
}

func (b *sqlBuilder) where(n search.Node) (string, error) {
	switch v := n.(type) {
	case nil:
		return "TRUE", nil
	case search.And:
		return b.join(v.Nodes, " AND ", "TRUE")
	case search.Or:
		return b.join(v.Nodes, " OR ", "FALSE")
	case search.Eq:
		if v.Field == search.FieldIsReported {
			reported, ok := v.Value.(bool)
			if !ok {
				return "", fmt.Errorf("postgres: is_reported expects bool, got %T", v.Value)
			}
			if reported {
				return reportedExpr, nil
			}
			return "NOT " + reportedExpr, nil
		}
		col, err := b.column(v.Field)
		if err != nil {
			return "", err
		}
		if v.Field.FoldCase() {
			return "lower(" + col + ") = lower(" + b.arg(v.Value) + ")", nil
		}
		return col + " = " + b.arg(v.Value), nil
	case search.Range:
		col, err := b.column(v.Field)
		if err != nil {
			return "", err
		}
		parts := make([]string, 0, 4)
		for _, bound := range []struct {
			op string
			v  any
		}{{">", v.Gt}, {">=", v.Gte}, {"<", v.Lt}, {"<=", v.Lte}} {
			if bound.v == nil {
				continue
			}
			parts = append(parts, col+" "+bound.op+" "+b.arg(bound.v))
		}
		if len(parts) == 0 {
			return col + " IS NOT NULL", nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil
	case search.Text:
		col, err := b.column(v.Field)
		if err != nil {
			return "", err
		}
		return col + ` ILIKE ` + b.arg("%"+escapeLike(v.Value)+"%") + ` ESCAPE '\'`, nil
	default:
		return "", fmt.Errorf("postgres: unsupported predicate %T", n)
	}
}

func (b *sqlBuilder) join(nodes []search.Node, sep, empty string) (string, error) {
	if len(nodes) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		s, err := b.where(n)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *sqlBuilder) orderBy(orders []search.Order) (string, error) {
	if len(orders) == 0 {
		return "p.created_at DESC, p.id ASC", nil
	}
	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		col, err := b.column(o.Field)
		if err != nil {
			return "", err
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir+" NULLS LAST")
	}
	return strings.Join(parts, ", "), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
