package posting

import (
	"context"
	"strings"

	"classifieds/internal/domain/access"
	"classifieds/internal/domain/posting"
	"classifieds/internal/metrics"
	"classifieds/internal/notify"
	"classifieds/internal/pkg/apperr"
	"classifieds/internal/repository"
	"classifieds/internal/search"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Moderate applies an admin decision to one posting and notifies its owner.
func (s *Service) Moderate(ctx context.Context, p access.Principal, kind posting.Kind, id uuid.UUID, target string, notes *string) (posting.Posting, error) {
	d, err := posting.Decide(kind, parseModeration(target), p.ID, trimNotes(notes), s.clock())
	if err != nil {
		return posting.Posting{}, err
	}
	if err := access.Authorize(p, access.CanModerate(p), "moderate postings"); err != nil {
		return posting.Posting{}, err
	}

	n, err := s.postings.SetModeration(ctx, kind, []uuid.UUID{id}, d)
	if err != nil {
		return posting.Posting{}, storeErr("moderate posting", err)
	}
	if n == 0 {
		return posting.Posting{}, repository.ErrPostingNotFound
	}
	metrics.RecordModeration(string(kind), string(d.Status), n)
	s.invalidateLists(ctx, kind)

	item, err := s.reload(ctx, kind, id)
	if err != nil {
		return posting.Posting{}, err
	}
	s.logf("[Moderation] decided | kind=%s id=%s status=%s by=%s", kind, id, d.Status, p.ID)
	s.notifyOwner(item, d)
	return item, nil
}

// BulkModerate applies one decision to every existing id in a single store pass. Ids
// that do not resolve are skipped; the result is the number of postings modified.
func (s *Service) BulkModerate(ctx context.Context, p access.Principal, kind posting.Kind, ids []uuid.UUID, target string, notes *string) (int64, error) {
	ids = dedupeIDs(ids)
	switch {
	case len(ids) == 0:
		return 0, apperr.Validation("invalid bulk moderation", map[string]string{"ids": "must contain at least one id"})
	case len(ids) > maxBulkModerationIDs:
		return 0, apperr.Validation("invalid bulk moderation", map[string]string{"ids": "must contain at most 100 ids"})
	}
	d, err := posting.Decide(kind, parseModeration(target), p.ID, trimNotes(notes), s.clock())
	if err != nil {
		return 0, err
	}
	if err := access.Authorize(p, access.CanModerate(p), "moderate postings"); err != nil {
		return 0, err
	}

	n, err := s.postings.SetModeration(ctx, kind, ids, d)
	if err != nil {
		return 0, storeErr("bulk moderate postings", err)
	}
	metrics.RecordModeration(string(kind), string(d.Status), n)
	s.invalidateLists(ctx, kind)
	s.logf("[Moderation] bulk decided | kind=%s requested=%d modified=%d status=%s by=%s", kind, len(ids), n, d.Status, p.ID)

	if s.notifier != nil && n > 0 {
		for _, id := range ids {
			item, err := s.postings.FindByID(ctx, kind, id)
			if err != nil {
				continue
			}
			s.notifyOwner(item, d)
		}
	}
	return n, nil
}

func (s *Service) notifyOwner(item posting.Posting, d posting.Decision) {
	msg := notify.Notification{
		Type:        notify.TypeModeration,
		RecipientID: item.OwnerID,
		PostingID:   item.ID,
		PostingKind: string(item.Kind),
		Title:       item.Content.Title,
		Status:      string(d.Status),
		At:          d.At,
	}
	if d.Notes != nil {
		msg.Notes = *d.Notes
	}
	s.notify(msg)
}

type Stats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Reported int64 `json:"reported"`
}

// Stats counts a kind's postings per moderation status and how many carry reports.
func (s *Service) Stats(ctx context.Context, p access.Principal, kind posting.Kind) (Stats, error) {
	if err := access.Authorize(p, access.CanModerate(p), "view moderation stats"); err != nil {
		return Stats{}, err
	}

	var out Stats
	counts := []struct {
		dst    *int64
		filter search.And
	}{
		{&out.Total, search.And{}},
		{&out.Pending, search.All(search.Eq{Field: search.FieldModerationStatus, Value: string(posting.ModerationPending)})},
		{&out.Approved, search.All(search.Eq{Field: search.FieldModerationStatus, Value: string(posting.ModerationApproved)})},
		{&out.Rejected, search.All(search.Eq{Field: search.FieldModerationStatus, Value: string(posting.ModerationRejected)})},
		{&out.Reported, search.All(search.Eq{Field: search.FieldIsReported, Value: true})},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		g.Go(func() error {
			n, err := s.postings.Count(gctx, kind, c.filter)
			if err != nil {
				return err
			}
			*c.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, storeErr("count postings", err)
	}
	return out, nil
}

func parseModeration(v string) posting.ModerationStatus {
	return posting.ModerationStatus(strings.ToLower(strings.TrimSpace(v)))
}

func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	v := strings.TrimSpace(*notes)
	return &v
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
