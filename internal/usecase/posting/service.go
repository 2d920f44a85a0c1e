package posting

import (
	"context"
	"errors"
	"log"
	"slices"
	"strings"
	"time"

	"classifieds/internal/domain/access"
	"classifieds/internal/domain/posting"
	"classifieds/internal/domain/user"
	"classifieds/internal/infrastructure/cache"
	"classifieds/internal/metrics"
	"classifieds/internal/notify"
	"classifieds/internal/pkg/apperr"
	"classifieds/internal/repository"
	"classifieds/internal/search"
	"classifieds/internal/validation"

	"github.com/google/uuid"
)

const (
	maxUpdateAttempts    = 3
	maxBulkModerationIDs = 100
	maxReportDescription = 1000

	defaultListTTL = 60 * time.Second
	defaultViewTTL = 30 * time.Minute
)

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

type Notifier interface {
	Send(msg notify.Notification)
}

// Deps wires a Service. Cache and Notifier are optional.
type Deps struct {
	Postings     repository.PostingRepository
	Applications repository.ApplicationRepository
	Users        user.Repository
	Validator    *validation.Validator
	Cache        Cache
	Notifier     Notifier
	Logger       *log.Logger

	ListCacheTTL time.Duration
	ViewTTL      time.Duration
	Now          func() time.Time
}

// Service orchestrates the posting lifecycle. Every operation validates its input first,
// then runs the authorization guard, and only then touches the store.
type Service struct {
	postings  repository.PostingRepository
	apps      repository.ApplicationRepository
	users     user.Repository
	validator *validation.Validator
	cache     Cache
	notifier  Notifier
	logger    *log.Logger

	listTTL time.Duration
	viewTTL time.Duration
	now     func() time.Time
}

func NewService(d Deps) *Service {
	s := &Service{
		postings:  d.Postings,
		apps:      d.Applications,
		users:     d.Users,
		validator: d.Validator,
		cache:     d.Cache,
		notifier:  d.Notifier,
		logger:    d.Logger,
		listTTL:   d.ListCacheTTL,
		viewTTL:   d.ViewTTL,
		now:       d.Now,
	}
	if s.listTTL <= 0 {
		s.listTTL = defaultListTTL
	}
	if s.viewTTL <= 0 {
		s.viewTTL = defaultViewTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

type ListResult struct {
	Items      []posting.Posting
	Pagination search.Pagination
}

func (s *Service) Create(ctx context.Context, p access.Principal, kind posting.Kind, in validation.Input) (posting.Posting, error) {
	content, err := s.validator.Create(kind, in)
	if err != nil {
		return posting.Posting{}, err
	}
	now := s.clock()
	if err := posting.CheckContent(kind, content, true, now); err != nil {
		return posting.Posting{}, err
	}
	if err := access.Authorize(p, p.Authenticated(), "create postings"); err != nil {
		return posting.Posting{}, err
	}

	mod, decision := posting.InitialModeration(p.IsAdmin(), p.ID, now)
	item := posting.Posting{
		ID:               uuid.New(),
		Kind:             kind,
		OwnerID:          p.ID,
		Content:          content,
		Status:           kind.InitialStatus(),
		ModerationStatus: mod,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if decision != nil {
		by, at := decision.By, decision.At
		item.ModeratedBy = &by
		item.ModeratedAt = &at
	}

	if err := s.postings.Insert(ctx, item); err != nil {
		return posting.Posting{}, storeErr("create posting", err)
	}
	if decision != nil {
		metrics.RecordModeration(string(kind), string(mod), 1)
	}
	s.invalidateLists(ctx, kind)
	s.logf("[Postings] created | kind=%s id=%s owner=%s moderation=%s", kind, item.ID, p.ID, mod)
	return item, nil
}

// Update applies a partial content edit. A non-admin edit that changes content sends an
// already moderated posting back to pending. The write is conditional on the version that
// was read; on a concurrent change the edit is re-evaluated against the fresh state.
func (s *Service) Update(ctx context.Context, p access.Principal, kind posting.Kind, id uuid.UUID, in validation.Input) (posting.Posting, error) {
	patch, err := s.validator.Update(kind, in)
	if err != nil {
		return posting.Posting{}, err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		cur, err := s.postings.FindByID(ctx, kind, id)
		if err != nil {
			return posting.Posting{}, storeErr("load posting", err)
		}
		if err := access.Authorize(p, access.CanEditContent(p, cur.OwnerID), "edit this posting"); err != nil {
			return posting.Posting{}, err
		}

		now := s.clock()
		next := patch.Apply(cur.Content)
		changed := posting.ChangedFields(cur.Content, next)
		if len(changed) == 0 {
			return cur, nil
		}
		if err := posting.CheckContent(kind, next, slices.Contains(changed, "application_deadline"), now); err != nil {
			return posting.Posting{}, err
		}

		mod, reset := posting.ReviewAfterEdit(cur.ModerationStatus, p.IsAdmin(), changed)
		upd := repository.ContentUpdate{Content: next, UpdatedAt: now}
		if reset {
			upd.ModerationStatus = &mod
		}

		err = s.postings.UpdateContent(ctx, kind, id, cur.Version, upd)
		if errors.Is(err, repository.ErrVersionConflict) {
			s.logf("[Postings] version conflict, retrying | kind=%s id=%s attempt=%d", kind, id, attempt+1)
			continue
		}
		if err != nil {
			return posting.Posting{}, storeErr("update posting", err)
		}

		if reset {
			metrics.RecordRereviewReset(string(kind))
			s.logf("[Moderation] re-review required | kind=%s id=%s previous=%s fields=%s",
				kind, id, cur.ModerationStatus, strings.Join(changed, ","))
		}
		s.invalidateLists(ctx, kind)
		return s.reload(ctx, kind, id)
	}
	return posting.Posting{}, apperr.Conflict("posting was modified concurrently, please retry")
}

func (s *Service) Delete(ctx context.Context, p access.Principal, kind posting.Kind, id uuid.UUID) error {
	cur, err := s.postings.FindByID(ctx, kind, id)
	if err != nil {
		return storeErr("load posting", err)
	}
	if err := access.Authorize(p, access.CanDeletePosting(p, cur.OwnerID), "delete this posting"); err != nil {
		return err
	}
	if err := s.postings.Delete(ctx, kind, id); err != nil {
		return storeErr("delete posting", err)
	}
	s.invalidateLists(ctx, kind)
	s.logf("[Postings] deleted | kind=%s id=%s by=%s", kind, id, p.ID)
	return nil
}

// Get returns one posting. Postings outside the public set are only visible to their
// owner and to admins; everyone else gets not found. Public reads by anyone but the
// owner count a view, at most once per viewer key within the dedupe window.
func (s *Service) Get(ctx context.Context, p access.Principal, kind posting.Kind, id uuid.UUID, viewer string) (posting.Posting, error) {
	item, err := s.postings.FindByID(ctx, kind, id)
	if err != nil {
		return posting.Posting{}, storeErr("load posting", err)
	}

	public := item.IsPubliclyVisible(s.clock())
	if !public && !access.CanEditContent(p, item.OwnerID) {
		return posting.Posting{}, repository.ErrPostingNotFound
	}
	if !public || p.Owns(item.OwnerID) {
		return item, nil
	}

	if s.countView(ctx, kind, id, viewer) {
		if err := s.postings.IncrementViews(ctx, kind, id); err != nil {
			s.logf("[Postings] view increment failed | kind=%s id=%s err=%v", kind, id, err)
		} else {
			item.Views++
		}
	}
	return item, nil
}

func (s *Service) countView(ctx context.Context, kind posting.Kind, id uuid.UUID, viewer string) bool {
	if viewer == "" || s.cache == nil {
		return true
	}
	first, err := s.cache.SetIfNotExists(ctx, cache.PostingViewKey(string(kind), id, viewer), "1", s.viewTTL)
	if err != nil {
		return true
	}
	return first
}

// List serves the public search. Pages are cached per parameter set; for jobs the entry
// never outlives the earliest application deadline on the page.
func (s *Service) List(ctx context.Context, kind posting.Kind, raw map[string]string) (ListResult, error) {
	now := s.clock()
	q, err := search.Compose(kind, raw, search.Options{Scope: search.ScopePublic, Now: now})
	if err != nil {
		return ListResult{}, err
	}

	key := cache.PostingListKey(string(kind), raw)
	if s.cache != nil {
		var cached cachedPage
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			s.logf("[Postings] cache HIT | key=%s", key)
			return ListResult{Items: cached.Items, Pagination: search.NewPagination(q.Page, cached.Total)}, nil
		}
	}

	items, total, err := s.postings.Find(ctx, q)
	if err != nil {
		return ListResult{}, storeErr("list postings", err)
	}

	if s.cache != nil {
		if ttl := s.pageTTL(items, now); ttl > 0 {
			if err := s.cache.SetJSON(ctx, key, cachedPage{Items: items, Total: total}, ttl); err != nil {
				s.logf("[Postings] cache store failed | key=%s err=%v", key, err)
			}
		}
	}
	return ListResult{Items: items, Pagination: search.NewPagination(q.Page, total)}, nil
}

type cachedPage struct {
	Items []posting.Posting `json:"items"`
	Total int64             `json:"total"`
}

func (s *Service) pageTTL(items []posting.Posting, now time.Time) time.Duration {
	ttl := s.listTTL
	for _, it := range items {
		if it.Kind != posting.KindJob || it.Content.ApplicationDeadline == nil {
			continue
		}
		if left := it.Content.ApplicationDeadline.Sub(now); left < ttl {
			ttl = left
		}
	}
	return ttl
}

// ListAdmin runs the unrestricted search: no base predicate, explicit state filters.
func (s *Service) ListAdmin(ctx context.Context, p access.Principal, kind posting.Kind, raw map[string]string) (ListResult, error) {
	q, err := search.Compose(kind, raw, search.Options{Scope: search.ScopeAdmin, Now: s.clock()})
	if err != nil {
		return ListResult{}, err
	}
	if err := access.Authorize(p, access.CanModerate(p), "browse all postings"); err != nil {
		return ListResult{}, err
	}
	return s.find(ctx, q)
}

// ListMine lists the caller's own postings in any moderation state.
func (s *Service) ListMine(ctx context.Context, p access.Principal, kind posting.Kind, raw map[string]string) (ListResult, error) {
	q, err := search.Compose(kind, raw, search.Options{Scope: search.ScopeOwner, Owner: p.ID, Now: s.clock()})
	if err != nil {
		return ListResult{}, err
	}
	if err := access.Authorize(p, p.Authenticated(), "list own postings"); err != nil {
		return ListResult{}, err
	}
	return s.find(ctx, q)
}

func (s *Service) find(ctx context.Context, q search.Query) (ListResult, error) {
	items, total, err := s.postings.Find(ctx, q)
	if err != nil {
		return ListResult{}, storeErr("list postings", err)
	}
	return ListResult{Items: items, Pagination: search.NewPagination(q.Page, total)}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, p access.Principal, kind posting.Kind, id uuid.UUID, status string) (posting.Posting, error) {
	st := posting.Status(strings.ToLower(strings.TrimSpace(status)))
	if !kind.ValidStatus(st) {
		return posting.Posting{}, apperr.Validation("invalid status", map[string]string{
			"status": "must be one of " + joinStatuses(kind.Statuses()),
		})
	}

	cur, err := s.postings.FindByID(ctx, kind, id)
	if err != nil {
		return posting.Posting{}, storeErr("load posting", err)
	}
	if err := access.Authorize(p, access.CanChangeOperationalStatus(p, cur.OwnerID), "change the status of this posting"); err != nil {
		return posting.Posting{}, err
	}
	if cur.Status == st {
		return cur, nil
	}

	if err := s.postings.SetStatus(ctx, kind, id, st, s.clock()); err != nil {
		return posting.Posting{}, storeErr("update status", err)
	}
	s.invalidateLists(ctx, kind)
	s.logf("[Postings] status changed | kind=%s id=%s from=%s to=%s by=%s", kind, id, cur.Status, st, p.ID)
	return s.reload(ctx, kind, id)
}

// Report appends an abuse report. Each principal reports a posting at most once.
func (s *Service) Report(ctx context.Context, p access.Principal, kind posting.Kind, id uuid.UUID, reason, description string) (posting.Report, error) {
	r := posting.Report{
		ID:          uuid.New(),
		ReportedBy:  p.ID,
		Reason:      posting.ReportReason(strings.ToLower(strings.TrimSpace(reason))),
		Description: strings.TrimSpace(description),
		ReportedAt:  s.clock(),
	}
	fields := map[string]string{}
	if !r.Reason.Valid() {
		fields["reason"] = "must be one of spam, inappropriate, fraud, duplicate, misleading, other"
	}
	if len([]rune(r.Description)) > maxReportDescription {
		fields["description"] = "must be at most 1000 characters"
	}
	if len(fields) > 0 {
		return posting.Report{}, apperr.Validation("invalid report", fields)
	}
	if err := access.Authorize(p, p.Authenticated(), "report postings"); err != nil {
		return posting.Report{}, err
	}

	item, err := s.postings.FindByID(ctx, kind, id)
	if err != nil {
		return posting.Report{}, storeErr("load posting", err)
	}
	if !item.IsPubliclyVisible(r.ReportedAt) && !access.CanEditContent(p, item.OwnerID) {
		return posting.Report{}, repository.ErrPostingNotFound
	}
	if err := s.postings.AddReport(ctx, kind, id, r); err != nil {
		return posting.Report{}, storeErr("report posting", err)
	}
	s.logf("[Postings] reported | kind=%s id=%s by=%s reason=%s", kind, id, p.ID, r.Reason)
	return r, nil
}

func (s *Service) reload(ctx context.Context, kind posting.Kind, id uuid.UUID) (posting.Posting, error) {
	item, err := s.postings.FindByID(ctx, kind, id)
	if err != nil {
		return posting.Posting{}, storeErr("load posting", err)
	}
	return item, nil
}

func (s *Service) invalidateLists(ctx context.Context, kind posting.Kind) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, cache.PostingListPattern(string(kind))); err != nil {
		s.logf("[Postings] cache invalidation failed | kind=%s err=%v", kind, err)
	}
}

func (s *Service) notify(msg notify.Notification) {
	if s.notifier == nil {
		return
	}
	s.notifier.Send(msg)
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// storeErr passes classified errors through and wraps everything else as an opaque
// infrastructure failure.
func storeErr(op string, err error) error {
	if apperr.KindOf(err) != apperr.KindUnclassified {
		return err
	}
	return apperr.Internal(op+" failed", err)
}

func joinStatuses(in []posting.Status) string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return strings.Join(out, ", ")
}
