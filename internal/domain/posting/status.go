package posting

type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

func (s ModerationStatus) Valid() bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationRejected:
		return true
	default:
		return false
	}
}

// Status is the operational state of a posting. Jobs use open/closed/filled, listings
// and dormitories use active/inactive/maintenance.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
	StatusFilled Status = "filled"

	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
)

func (k Kind) Statuses() []Status {
	if k == KindJob {
		return []Status{StatusOpen, StatusClosed, StatusFilled}
	}
	return []Status{StatusActive, StatusInactive, StatusMaintenance}
}

func (k Kind) ValidStatus(s Status) bool {
	for _, it := range k.Statuses() {
		if it == s {
			return true
		}
	}
	return false
}

func (k Kind) InitialStatus() Status {
	if k == KindJob {
		return StatusOpen
	}
	return StatusActive
}

// CoupledStatus returns the operational status a moderation outcome forces, if any.
// Jobs are never touched by moderation.
func (k Kind) CoupledStatus(m ModerationStatus) (Status, bool) {
	if k == KindJob {
		return "", false
	}
	switch m {
	case ModerationApproved:
		return StatusActive, true
	case ModerationRejected:
		return StatusInactive, true
	default:
		return "", false
	}
}
