package posting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"classifieds/internal/domain/access"
	"classifieds/internal/domain/posting"
	"classifieds/internal/domain/user"
	"classifieds/internal/notify"
	"classifieds/internal/pkg/apperr"
	"classifieds/internal/repository/memory"
	"classifieds/internal/validation"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Notification
}

func (r *recordingNotifier) Send(msg notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingNotifier) last() notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.msgs[len(r.msgs)-1]
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]time.Duration
	nx      map[string]bool
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]time.Duration{}, nx: map[string]bool{}}
}

func (c *memCache) GetJSON(context.Context, string, any) (bool, error) { return false, nil }

func (c *memCache) SetJSON(_ context.Context, key string, _ any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ttl
	return nil
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, pattern)
	return nil
}

func (c *memCache) SetIfNotExists(_ context.Context, key, _ string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nx[key] {
		return false, nil
	}
	c.nx[key] = true
	return true, nil
}

type fixture struct {
	svc      *Service
	store    *memory.Store
	notifier *recordingNotifier
	cache    *memCache
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rules, err := validation.Load("")
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	now := testNow
	f := &fixture{store: memory.NewStore(), notifier: &recordingNotifier{}, cache: newMemCache(), clock: &now}
	f.svc = NewService(Deps{
		Postings:     f.store,
		Applications: f.store.Applications(),
		Users:        f.store.Users(),
		Validator:    validation.New(rules),
		Cache:        f.cache,
		Notifier:     f.notifier,
		Now:          func() time.Time { return *f.clock },
	})
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func strp(s string) *string    { return &s }
func f64p(v float64) *float64  { return &v }
func userP() access.Principal  { return access.Principal{ID: uuid.New(), Role: access.RoleUser} }
func adminP() access.Principal { return access.Principal{ID: uuid.New(), Role: access.RoleAdmin} }
func deadline(d time.Duration) *string {
	return strp(testNow.Add(d).Format(time.RFC3339))
}

func jobInput() validation.Input {
	return validation.Input{
		Title:               strp("Line cook"),
		Description:         strp("Evening shifts in a busy harbour kitchen"),
		City:                strp("Kyrenia"),
		Role:                strp("Cook"),
		CompanyName:         strp("Harbour Grill"),
		JobType:             strp("full-time"),
		WorkMode:            strp("on-site"),
		ApplicationDeadline: deadline(30 * 24 * time.Hour),
	}
}

func listingInput() validation.Input {
	return validation.Input{
		Title:        strp("Sea view flat"),
		Description:  strp("Two bedrooms, ten minutes from the port"),
		City:         strp("Kyrenia"),
		Price:        f64p(700),
		PropertyType: strp("apartment"),
		ListingType:  strp("rent"),
	}
}

func TestJobLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, admin, applicant := userP(), adminP(), userP()

	job, err := f.svc.Create(ctx, owner, posting.KindJob, jobInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.ModerationStatus != posting.ModerationPending || job.Status != posting.StatusOpen {
		t.Fatalf("unexpected initial state: %s/%s", job.ModerationStatus, job.Status)
	}

	approved, err := f.svc.Moderate(ctx, admin, posting.KindJob, job.ID, "approved", nil)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ModerationStatus != posting.ModerationApproved {
		t.Fatalf("expected approved, got %s", approved.ModerationStatus)
	}
	if approved.Status != posting.StatusOpen {
		t.Fatalf("moderation must not touch job status, got %s", approved.Status)
	}
	if got := f.notifier.last(); got.RecipientID != owner.ID || got.Type != notify.TypeModeration {
		t.Fatalf("owner not notified: %+v", got)
	}

	if _, err := f.svc.Apply(ctx, applicant, job.ID, ApplyInput{CoverLetter: "hi"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	apps, err := f.svc.ListApplications(ctx, owner, job.ID)
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected 1 application, got %d", len(apps))
	}
	reloaded, _ := f.store.FindByID(ctx, posting.KindJob, job.ID)
	if reloaded.ApplicationCount != 1 {
		t.Fatalf("expected application count 1, got %d", reloaded.ApplicationCount)
	}

	_, err = f.svc.Apply(ctx, applicant, job.ID, ApplyInput{})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict on second apply, got %v", err)
	}

	f.advance(time.Hour)
	rejected, err := f.svc.Moderate(ctx, admin, posting.KindJob, job.ID, "rejected", strp("spam"))
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.ModerationStatus != posting.ModerationRejected || rejected.ModerationNotes != "spam" {
		t.Fatalf("unexpected rejection state: %s %q", rejected.ModerationStatus, rejected.ModerationNotes)
	}
	if !rejected.ModeratedAt.After(*approved.ModeratedAt) {
		t.Fatalf("moderatedAt must move forward")
	}
	if got := f.notifier.last(); got.Notes != "spam" || got.Status != "rejected" {
		t.Fatalf("unexpected notification: %+v", got)
	}
}

func TestListingPriceEditResetsModeration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, admin := userP(), adminP()

	item, err := f.svc.Create(ctx, owner, posting.KindListing, listingInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Moderate(ctx, admin, posting.KindListing, item.ID, "approved", nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, owner, posting.KindListing, item.ID, "maintenance"); err != nil {
		t.Fatalf("status: %v", err)
	}

	updated, err := f.svc.Update(ctx, owner, posting.KindListing, item.ID, validation.Input{Price: f64p(750)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ModerationStatus != posting.ModerationPending {
		t.Fatalf("expected pending after owner edit, got %s", updated.ModerationStatus)
	}
	if updated.Status != posting.StatusMaintenance {
		t.Fatalf("edit must not touch status, got %s", updated.Status)
	}
	if *updated.Content.Price != 750 {
		t.Fatalf("price not updated")
	}
}

func TestAdminEditKeepsModeration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, admin := userP(), adminP()

	item, _ := f.svc.Create(ctx, owner, posting.KindListing, listingInput())
	if _, err := f.svc.Moderate(ctx, admin, posting.KindListing, item.ID, "approved", nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	updated, err := f.svc.Update(ctx, admin, posting.KindListing, item.ID, validation.Input{Title: strp("Sea view flat, renovated")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ModerationStatus != posting.ModerationApproved {
		t.Fatalf("admin edit must not reset moderation, got %s", updated.ModerationStatus)
	}
}

func TestUnchangedEditKeepsModeration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, admin := userP(), adminP()

	item, _ := f.svc.Create(ctx, owner, posting.KindListing, listingInput())
	if _, err := f.svc.Moderate(ctx, admin, posting.KindListing, item.ID, "approved", nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	updated, err := f.svc.Update(ctx, owner, posting.KindListing, item.ID, validation.Input{Price: f64p(700)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ModerationStatus != posting.ModerationApproved {
		t.Fatalf("no-op edit must not reset moderation, got %s", updated.ModerationStatus)
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, admin := userP(), adminP()

	item, _ := f.svc.Create(ctx, owner, posting.KindDormitory, validation.Input{
		Title:       strp("Campus dorm"),
		Description: strp("Shared rooms next to the university"),
		City:        strp("Nicosia"),
		Price:       f64p(300),
		RoomType:    strp("shared"),
	})

	first, err := f.svc.Moderate(ctx, admin, posting.KindDormitory, item.ID, "approved", nil)
	if err != nil {
		t.Fatalf("first approve: %v", err)
	}
	f.advance(time.Minute)
	second, err := f.svc.Moderate(ctx, admin, posting.KindDormitory, item.ID, "approved", nil)
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if first.ModerationStatus != second.ModerationStatus || second.Status != posting.StatusActive {
		t.Fatalf("state changed: %s/%s -> %s/%s", first.ModerationStatus, first.Status, second.ModerationStatus, second.Status)
	}
}

func TestModerationGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := userP()
	item, _ := f.svc.Create(ctx, owner, posting.KindListing, listingInput())

	_, err := f.svc.Moderate(ctx, owner, posting.KindListing, item.ID, "approved", nil)
	if !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	_, err = f.svc.Moderate(ctx, adminP(), posting.KindListing, item.ID, "pending", nil)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = f.svc.Moderate(ctx, adminP(), posting.KindListing, uuid.New(), "approved", nil)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	got, _ := f.store.FindByID(ctx, posting.KindListing, item.ID)
	if got.ModerationStatus != posting.ModerationPending {
		t.Fatalf("failed checks must not modify the posting")
	}
}

func TestBulkModerateSkipsMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := userP()
	a, _ := f.svc.Create(ctx, owner, posting.KindListing, listingInput())
	b, _ := f.svc.Create(ctx, owner, posting.KindListing, listingInput())

	n, err := f.svc.BulkModerate(ctx, adminP(), posting.KindListing, []uuid.UUID{a.ID, b.ID, uuid.New(), a.ID}, "rejected", strp("duplicate"))
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 modified, got %d", n)
	}
	got, _ := f.store.FindByID(ctx, posting.KindListing, b.ID)
	if got.ModerationStatus != posting.ModerationRejected || got.Status != posting.StatusInactive {
		t.Fatalf("unexpected state %s/%s", got.ModerationStatus, got.Status)
	}

	_, err = f.svc.BulkModerate(ctx, adminP(), posting.KindListing, nil, "approved", nil)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for empty ids, got %v", err)
	}
}

func TestAdminCreateIsApproved(t *testing.T) {
	f := newFixture(t)
	admin := adminP()
	item, err := f.svc.Create(context.Background(), admin, posting.KindListing, listingInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.ModerationStatus != posting.ModerationApproved || item.ModeratedBy == nil || *item.ModeratedBy != admin.ID {
		t.Fatalf("admin posting must be approved and stamped: %+v", item)
	}
}

func TestCreateRejectsPastDeadlineBeforeStore(t *testing.T) {
	f := newFixture(t)
	in := jobInput()
	in.ApplicationDeadline = deadline(-time.Hour)

	_, err := f.svc.Create(context.Background(), userP(), posting.KindJob, in)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	res, _ := f.svc.ListAdmin(context.Background(), adminP(), posting.KindJob, nil)
	if res.Pagination.TotalItems != 0 {
		t.Fatalf("nothing must be stored")
	}
}

func TestUpdateAndDeleteRequireOwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, stranger := userP(), userP()
	item, _ := f.svc.Create(ctx, owner, posting.KindListing, listingInput())

	_, err := f.svc.Update(ctx, stranger, posting.KindListing, item.ID, validation.Input{Price: f64p(1)})
	if !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if err := f.svc.Delete(ctx, stranger, posting.KindListing, item.ID); !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if err := f.svc.Delete(ctx, owner, posting.KindListing, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, owner, posting.KindListing, item.ID, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestGetHidesUnapprovedAndCountsViewsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := userP()
	item, _ := f.svc.Create(ctx, owner, posting.KindListing, listingInput())

	if _, err := f.svc.Get(ctx, access.Anonymous, posting.KindListing, item.ID, "1.2.3.4"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("pending posting must be hidden, got %v", err)
	}
	if _, err := f.svc.Get(ctx, owner, posting.KindListing, item.ID, ""); err != nil {
		t.Fatalf("owner must see own pending posting: %v", err)
	}

	if _, err := f.svc.Moderate(ctx, adminP(), posting.KindListing, item.ID, "approved", nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	first, err := f.svc.Get(ctx, access.Anonymous, posting.KindListing, item.ID, "1.2.3.4")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first.Views != 1 {
		t.Fatalf("expected 1 view, got %d", first.Views)
	}
	second, _ := f.svc.Get(ctx, access.Anonymous, posting.KindListing, item.ID, "1.2.3.4")
	if second.Views != 1 {
		t.Fatalf("repeat viewer must not count, got %d", second.Views)
	}
	self, _ := f.svc.Get(ctx, owner, posting.KindListing, item.ID, owner.ID.String())
	if self.Views != 1 {
		t.Fatalf("owner view must not count, got %d", self.Views)
	}
}

func TestListCachesUntilEarliestDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := adminP()

	in := jobInput()
	in.ApplicationDeadline = deadline(20 * time.Second)
	if _, err := f.svc.Create(ctx, admin, posting.KindJob, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := f.svc.List(ctx, posting.KindJob, map[string]string{"city": "Kyrenia"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(res.Items))
	}
	if len(f.cache.entries) != 1 {
		t.Fatalf("expected page to be cached")
	}
	for _, ttl := range f.cache.entries {
		if ttl != 20*time.Second {
			t.Fatalf("expected ttl capped to deadline, got %s", ttl)
		}
	}

	if _, err := f.svc.List(ctx, posting.KindJob, map[string]string{"limit": "500"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := adminP()
	for i := 0; i < 25; i++ {
		if _, err := f.svc.Create(ctx, admin, posting.KindListing, listingInput()); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	res, err := f.svc.List(ctx, posting.KindListing, map[string]string{"page": "2", "limit": "10"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	p := res.Pagination
	if len(res.Items) != 10 || p.TotalPages != 3 || !p.HasNextPage || !p.HasPrevPage || p.TotalItems != 25 {
		t.Fatalf("unexpected page: items=%d %+v", len(res.Items), p)
	}
}

func TestWritesInvalidateListCache(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Create(context.Background(), userP(), posting.KindListing, listingInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(f.cache.deleted) != 1 || f.cache.deleted[0] != "postings:list:listing:*" {
		t.Fatalf("unexpected invalidations %v", f.cache.deleted)
	}
}

func TestApplyPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := userP()
	job, _ := f.svc.Create(ctx, owner, posting.KindJob, jobInput())

	if _, err := f.svc.Apply(ctx, userP(), job.ID, ApplyInput{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("pending job must be hidden from applicants, got %v", err)
	}
	if _, err := f.svc.Apply(ctx, owner, job.ID, ApplyInput{}); !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("owner of a pending job must get forbidden, got %v", err)
	}
	if _, err := f.svc.Apply(ctx, adminP(), job.ID, ApplyInput{}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("admin sees the pending job but it does not accept applications, got %v", err)
	}
	if _, err := f.svc.Moderate(ctx, adminP(), posting.KindJob, job.ID, "approved", nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.Apply(ctx, owner, job.ID, ApplyInput{}); !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("owner must not apply, got %v", err)
	}
	if _, err := f.svc.Apply(ctx, access.Anonymous, job.ID, ApplyInput{}); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("anonymous must not apply, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, owner, posting.KindJob, job.ID, "closed"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := f.svc.Apply(ctx, userP(), job.ID, ApplyInput{}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("closed job must not accept applications, got %v", err)
	}
}

func TestApplicationStatusIsPermissive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, applicant := userP(), userP()
	f.store.PutUser(user.User{ID: applicant.ID, Email: "a@example.com", FullName: "Ayla", Role: access.RoleUser})

	job, _ := f.svc.Create(ctx, owner, posting.KindJob, jobInput())
	if _, err := f.svc.Moderate(ctx, adminP(), posting.KindJob, job.ID, "approved", nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	app, err := f.svc.Apply(ctx, applicant, job.ID, ApplyInput{Resume: "https://cv.example.com/ayla"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	for _, st := range []string{"hired", "pending", "rejected", "shortlisted"} {
		got, err := f.svc.UpdateApplicationStatus(ctx, owner, job.ID, app.ID, st, nil)
		if err != nil {
			t.Fatalf("status %s: %v", st, err)
		}
		if string(got.Status) != st {
			t.Fatalf("expected %s, got %s", st, got.Status)
		}
	}
	if got := f.notifier.last(); got.RecipientID != applicant.ID || got.Type != notify.TypeApplicationStatus {
		t.Fatalf("applicant not notified: %+v", got)
	}

	if _, err := f.svc.UpdateApplicationStatus(ctx, owner, job.ID, app.ID, "archived", nil); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.UpdateApplicationStatus(ctx, applicant, job.ID, app.ID, "hired", nil); !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("applicant must not manage applications, got %v", err)
	}

	views, err := f.svc.ListApplications(ctx, owner, job.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if views[0].Applicant.FullName != "Ayla" {
		t.Fatalf("applicant identity not resolved: %+v", views[0].Applicant)
	}

	mine, err := f.svc.MyApplications(ctx, applicant)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(mine) != 1 || mine[0].Job == nil || mine[0].Job.ID != job.ID {
		t.Fatalf("unexpected history: %+v", mine)
	}
}

func TestReportOncePerReporter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item, _ := f.svc.Create(ctx, adminP(), posting.KindListing, listingInput())
	reporter := userP()

	if _, err := f.svc.Report(ctx, reporter, posting.KindListing, item.ID, "spam", ""); err != nil {
		t.Fatalf("report: %v", err)
	}
	if _, err := f.svc.Report(ctx, reporter, posting.KindListing, item.ID, "fraud", ""); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := f.svc.Report(ctx, userP(), posting.KindListing, item.ID, "boring", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	stats, err := f.svc.Stats(ctx, adminP(), posting.KindListing)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 || stats.Approved != 1 || stats.Reported != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if _, err := f.svc.Stats(ctx, reporter, posting.KindListing); !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestReportHiddenPosting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := userP()
	item, err := f.svc.Create(ctx, owner, posting.KindListing, listingInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Report(ctx, userP(), posting.KindListing, item.ID, "spam", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("pending listing must be hidden from reporters, got %v", err)
	}
	if _, err := f.svc.Report(ctx, owner, posting.KindListing, item.ID, "duplicate", ""); err != nil {
		t.Fatalf("owner report: %v", err)
	}
	if _, err := f.svc.Report(ctx, adminP(), posting.KindListing, item.ID, "other", ""); err != nil {
		t.Fatalf("admin report: %v", err)
	}
	if _, err := f.svc.Report(ctx, userP(), posting.KindListing, uuid.New(), "spam", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing listing, got %v", err)
	}

	if _, err := f.svc.Moderate(ctx, adminP(), posting.KindListing, item.ID, "approved", nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.Report(ctx, userP(), posting.KindListing, item.ID, "spam", ""); err != nil {
		t.Fatalf("approved listing report: %v", err)
	}
}

func TestListMineIncludesPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := userP()
	if _, err := f.svc.Create(ctx, owner, posting.KindListing, listingInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Create(ctx, userP(), posting.KindListing, listingInput()); err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := f.svc.ListMine(ctx, owner, posting.KindListing, map[string]string{"moderation_status": "pending"})
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if res.Pagination.TotalItems != 1 || res.Items[0].OwnerID != owner.ID {
		t.Fatalf("unexpected result %+v", res.Pagination)
	}
	public, _ := f.svc.List(ctx, posting.KindListing, nil)
	if public.Pagination.TotalItems != 0 {
		t.Fatalf("pending postings must not be public")
	}
}
