package mongodb

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"classifieds/internal/search"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fieldPaths = map[search.Field]string{
	search.FieldID:                  "_id",
	search.FieldOwner:               "ownerId",
	search.FieldStatus:              "status",
	search.FieldModerationStatus:    "moderationStatus",
	search.FieldViews:               "views",
	search.FieldCreatedAt:           "createdAt",
	search.FieldTitle:               "content.title",
	search.FieldDescription:         "content.description",
	search.FieldCity:                "content.city",
	search.FieldRegion:              "content.region",
	search.FieldAddress:             "content.address",
	search.FieldPrice:               "content.price",
	search.FieldPropertyType:        "content.propertyType",
	search.FieldListingType:         "content.listingType",
	search.FieldRoomType:            "content.roomType",
	search.FieldGenderRestriction:   "content.genderRestriction",
	search.FieldAvailableFrom:       "content.availableFrom",
	search.FieldRole:                "content.role",
	search.FieldCompanyName:         "content.companyName",
	search.FieldJobType:             "content.jobType",
	search.FieldWorkMode:            "content.workMode",
	search.FieldRequirements:        "content.requirements",
	search.FieldSalaryMin:           "content.salaryMin",
	search.FieldSalaryMax:           "content.salaryMax",
	search.FieldSalaryCurrency:      "content.salaryCurrency",
	search.FieldSalaryPeriod:        "content.salaryPeriod",
	search.FieldApplicationDeadline: "content.applicationDeadline",
}

func path(f search.Field) (string, error) {
	p, ok := fieldPaths[f]
	if !ok {
		return "", fmt.Errorf("mongodb: unknown field %q", f)
	}
	return p, nil
}

// toFilter renders a predicate tree as a query document. String values are matched
// through quoted regular expressions so user input is never interpreted as a pattern.
func toFilter(n search.Node) (bson.M, error) {
	switch v := n.(type) {
	case nil:
		return bson.M{}, nil
	case search.And:
		if len(v.Nodes) == 0 {
			return bson.M{}, nil
		}
		parts, err := toFilters(v.Nodes)
		if err != nil {
			return nil, err
		}
		return bson.M{"$and": parts}, nil
	case search.Or:
		if len(v.Nodes) == 0 {
			return bson.M{"_id": bson.M{"$exists": false}}, nil
		}
		parts, err := toFilters(v.Nodes)
		if err != nil {
			return nil, err
		}
		return bson.M{"$or": parts}, nil
	case search.Eq:
		if v.Field == search.FieldIsReported {
			reported, ok := v.Value.(bool)
			if !ok {
				return nil, fmt.Errorf("mongodb: is_reported expects bool, got %T", v.Value)
			}
			return bson.M{"reports.0": bson.M{"$exists": reported}}, nil
		}
		p, err := path(v.Field)
		if err != nil {
			return nil, err
		}
		val := toValue(v.Value)
		if s, ok := val.(string); ok && v.Field.FoldCase() {
			return bson.M{p: primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}}, nil
		}
		return bson.M{p: val}, nil
	case search.Range:
		p, err := path(v.Field)
		if err != nil {
			return nil, err
		}
		cond := bson.M{"$ne": nil}
		for op, bound := range map[string]any{"$gt": v.Gt, "$gte": v.Gte, "$lt": v.Lt, "$lte": v.Lte} {
			if bound != nil {
				cond[op] = toValue(bound)
			}
		}
		return bson.M{p: cond}, nil
	case search.Text:
		p, err := path(v.Field)
		if err != nil {
			return nil, err
		}
		return bson.M{p: primitive.Regex{Pattern: regexp.QuoteMeta(v.Value), Options: "i"}}, nil
	default:
		return nil, fmt.Errorf("mongodb: unsupported predicate %T", n)
	}
}

func toFilters(nodes []search.Node) (bson.A, error) {
	out := make(bson.A, 0, len(nodes))
	for _, n := range nodes {
		f, err := toFilter(n)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func toValue(v any) any {
	switch t := v.(type) {
	case uuid.UUID:
		return t.String()
	case time.Time:
		return t.UTC()
	default:
		return v
	}
}

// sortStages orders documents with missing values last in either direction. Each sort
// key gets a companion flag field that sorts ahead of the value itself.
func sortStages(orders []search.Order) (bson.D, bson.D, error) {
	flags := bson.D{}
	sort := bson.D{}
	for i, o := range orders {
		p, err := path(o.Field)
		if err != nil {
			return nil, nil, err
		}
		flag := "_missing" + strconv.Itoa(i)
		flags = append(flags, bson.E{Key: flag, Value: bson.M{
			"$cond": bson.A{bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{"$" + p, nil}}, nil}}, 1, 0},
		}})
		dir := 1
		if o.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: flag, Value: 1}, bson.E{Key: p, Value: dir})
	}
	return flags, sort, nil
}
