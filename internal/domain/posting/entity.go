package posting

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindJob       Kind = "job"
	KindListing   Kind = "listing"
	KindDormitory Kind = "dormitory"
)

var Kinds = []Kind{KindJob, KindListing, KindDormitory}

// ParseKind accepts both the singular kind and the plural route segment.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "job", "jobs":
		return KindJob, true
	case "listing", "listings":
		return KindListing, true
	case "dormitory", "dormitories":
		return KindDormitory, true
	default:
		return "", false
	}
}

func (k Kind) Plural() string {
	switch k {
	case KindJob:
		return "jobs"
	case KindListing:
		return "listings"
	case KindDormitory:
		return "dormitories"
	default:
		return string(k)
	}
}

type Posting struct {
	ID      uuid.UUID
	Kind    Kind
	OwnerID uuid.UUID
	Content Content

	Status           Status
	ModerationStatus ModerationStatus
	ModeratedBy      *uuid.UUID
	ModeratedAt      *time.Time
	ModerationNotes  string

	Reports []Report
	Views   int64

	// Applications is only populated by callers that load it explicitly; ApplicationCount
	// is always kept by the store.
	Applications     []Application
	ApplicationCount int

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Posting) IsReported() bool {
	return len(p.Reports) > 0
}

// IsPubliclyVisible mirrors the public base predicate of the query composer.
func (p Posting) IsPubliclyVisible(now time.Time) bool {
	if p.ModerationStatus != ModerationApproved {
		return false
	}
	if p.Kind != KindJob {
		return true
	}
	return p.Status == StatusOpen && p.Content.ApplicationDeadline != nil && p.Content.ApplicationDeadline.After(now)
}

func (p Posting) AcceptsApplications(now time.Time) bool {
	return p.Kind == KindJob && p.IsPubliclyVisible(now)
}

type ReportReason string

const (
	ReportSpam          ReportReason = "spam"
	ReportInappropriate ReportReason = "inappropriate"
	ReportFraud         ReportReason = "fraud"
	ReportDuplicate     ReportReason = "duplicate"
	ReportMisleading    ReportReason = "misleading"
	ReportOther         ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReportSpam, ReportInappropriate, ReportFraud, ReportDuplicate, ReportMisleading, ReportOther:
		return true
	default:
		return false
	}
}

// Report entries are append-only.
type Report struct {
	ID          uuid.UUID
	ReportedBy  uuid.UUID
	Reason      ReportReason
	Description string
	ReportedAt  time.Time
}
