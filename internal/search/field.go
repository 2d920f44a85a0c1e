package search

import "classifieds/internal/domain/posting"

// Field is a logical attribute name. Stores map it onto columns or document paths and
// must reject fields they do not know.
type Field string

const (
	FieldID               Field = "id"
	FieldOwner            Field = "owner_id"
	FieldStatus           Field = "status"
	FieldModerationStatus Field = "moderation_status"
	FieldIsReported       Field = "is_reported"
	FieldViews            Field = "views"
	FieldCreatedAt        Field = "created_at"

	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldCity        Field = "city"
	FieldRegion      Field = "region"
	FieldAddress     Field = "address"

	FieldPrice             Field = "price"
	FieldPropertyType      Field = "property_type"
	FieldListingType       Field = "listing_type"
	FieldRoomType          Field = "room_type"
	FieldGenderRestriction Field = "gender_restriction"
	FieldAvailableFrom     Field = "available_from"

	FieldRole                Field = "role"
	FieldCompanyName         Field = "company_name"
	FieldJobType             Field = "job_type"
	FieldWorkMode            Field = "work_mode"
	FieldRequirements        Field = "requirements"
	FieldSalaryMin           Field = "salary_min"
	FieldSalaryMax           Field = "salary_max"
	FieldSalaryCurrency      Field = "salary_currency"
	FieldSalaryPeriod        Field = "salary_period"
	FieldApplicationDeadline Field = "application_deadline"
)

// TextFields is the fixed set of fields free-text search expands over per kind.
func TextFields(kind posting.Kind) []Field {
	switch kind {
	case posting.KindJob:
		return []Field{
			FieldTitle, FieldRole, FieldDescription, FieldCompanyName,
			FieldCity, FieldRegion, FieldSalaryCurrency, FieldSalaryPeriod,
		}
	case posting.KindListing:
		return []Field{
			FieldTitle, FieldDescription, FieldCity, FieldRegion,
			FieldAddress, FieldPropertyType, FieldListingType,
		}
	case posting.KindDormitory:
		return []Field{
			FieldTitle, FieldDescription, FieldCity, FieldRegion,
			FieldAddress, FieldRoomType,
		}
	default:
		return nil
	}
}

var (
	JobTypes      = []string{"full-time", "part-time", "contract", "internship", "temporary"}
	WorkModes     = []string{"on-site", "remote", "hybrid"}
	PropertyTypes = []string{"apartment", "house", "villa", "studio", "land", "commercial"}
	ListingTypes  = []string{"sale", "rent"}
	RoomTypes     = []string{"single", "double", "triple", "shared", "studio"}
	Genders       = []string{"male", "female", "mixed"}
)

// FoldCase reports whether equality on f ignores case. Enumerated fields are stored
// lowercase already; free-form location fields are not.
func (f Field) FoldCase() bool {
	return f == FieldCity || f == FieldRegion
}
