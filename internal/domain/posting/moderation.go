package posting

import (
	"time"

	"github.com/google/uuid"

	"classifieds/internal/pkg/apperr"
)

// Decision is the full field update produced by an admin moderation transition. The same
// value is applied to one posting or to a whole batch.
type Decision struct {
	Status        ModerationStatus
	By            uuid.UUID
	At            time.Time
	Notes         *string
	CoupledStatus *Status
}

// Decide validates an admin transition target. Only approved and rejected are reachable
// through moderation; pending is reachable only through ReviewAfterEdit.
func Decide(kind Kind, target ModerationStatus, by uuid.UUID, notes *string, now time.Time) (Decision, error) {
	if target != ModerationApproved && target != ModerationRejected {
		return Decision{}, apperr.Validation("invalid moderation status", map[string]string{
			"moderation_status": "must be one of approved, rejected",
		})
	}

	d := Decision{Status: target, By: by, At: now.UTC(), Notes: notes}
	if st, ok := kind.CoupledStatus(target); ok {
		d.CoupledStatus = &st
	}
	return d, nil
}

// Apply writes the decision onto p. Stores that cannot push the update down use it.
func (d Decision) Apply(p *Posting) {
	p.ModerationStatus = d.Status
	by := d.By
	at := d.At
	p.ModeratedBy = &by
	p.ModeratedAt = &at
	if d.Notes != nil {
		p.ModerationNotes = *d.Notes
	}
	if d.CoupledStatus != nil {
		p.Status = *d.CoupledStatus
	}
	p.UpdatedAt = d.At
	p.Version++
}

// InitialModeration returns the moderation state of a freshly created posting. Admin
// authors are approved on the spot and stamped as the moderator.
func InitialModeration(authorIsAdmin bool, author uuid.UUID, now time.Time) (ModerationStatus, *Decision) {
	if !authorIsAdmin {
		return ModerationPending, nil
	}
	d := Decision{Status: ModerationApproved, By: author, At: now.UTC()}
	return ModerationApproved, &d
}

// ReviewAfterEdit is the content-changed re-review rule: a non-admin edit that changes
// any content field sends an already moderated posting back to pending. It returns the
// next moderation status and whether a reset happened.
func ReviewAfterEdit(current ModerationStatus, editorIsAdmin bool, changed []string) (ModerationStatus, bool) {
	if editorIsAdmin || len(changed) == 0 {
		return current, false
	}
	switch current {
	case ModerationApproved, ModerationRejected:
		return ModerationPending, true
	default:
		return current, false
	}
}
