// Package memory is an in-process Entity Store. It backs local development and the
// usecase tests and evaluates search predicates directly.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"classifieds/internal/domain/posting"
	"classifieds/internal/domain/user"
	"classifieds/internal/repository"
	"classifieds/internal/search"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	postings map[uuid.UUID]*posting.Posting
	apps     map[uuid.UUID][]posting.Application
	users    map[uuid.UUID]user.User
}

func NewStore() *Store {
	return &Store{
		postings: map[uuid.UUID]*posting.Posting{},
		apps:     map[uuid.UUID][]posting.Application{},
		users:    map[uuid.UUID]user.User{},
	}
}

func (s *Store) Insert(_ context.Context, p posting.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := clonePosting(p)
	cp.Applications = nil
	cp.ApplicationCount = 0
	s.postings[p.ID] = &cp
	return nil
}

func (s *Store) FindByID(_ context.Context, kind posting.Kind, id uuid.UUID) (posting.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.get(kind, id)
	if !ok {
		return posting.Posting{}, repository.ErrPostingNotFound
	}
	return clonePosting(*p), nil
}

func (s *Store) Find(_ context.Context, q search.Query) ([]posting.Posting, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]posting.Posting, 0)
	for _, p := range s.postings {
		if p.Kind != q.Kind {
			continue
		}
		ok, err := eval(q.Filter, *p)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			matched = append(matched, clonePosting(*p))
		}
	}

	slices.SortFunc(matched, func(a, b posting.Posting) int {
		return compareBy(q.Sort, a, b)
	})

	total := int64(len(matched))
	start := min(q.Page.Offset(), len(matched))
	end := min(start+q.Page.Limit, len(matched))
	return matched[start:end], total, nil
}

func (s *Store) Count(_ context.Context, kind posting.Kind, filter search.And) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.postings {
		if p.Kind != kind {
			continue
		}
		ok, err := eval(filter, *p)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdateContent(_ context.Context, kind posting.Kind, id uuid.UUID, expectedVersion int64, upd repository.ContentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.get(kind, id)
	if !ok {
		return repository.ErrPostingNotFound
	}
	if p.Version != expectedVersion {
		return repository.ErrVersionConflict
	}

	p.Content = upd.Content.Clone()
	if upd.ModerationStatus != nil {
		p.ModerationStatus = *upd.ModerationStatus
	}
	p.UpdatedAt = upd.UpdatedAt
	p.Version++
	return nil
}

func (s *Store) SetModeration(_ context.Context, kind posting.Kind, ids []uuid.UUID, d posting.Decision) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range ids {
		p, ok := s.get(kind, id)
		if !ok {
			continue
		}
		d.Apply(p)
		n++
	}
	return n, nil
}

func (s *Store) SetStatus(_ context.Context, kind posting.Kind, id uuid.UUID, status posting.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.get(kind, id)
	if !ok {
		return repository.ErrPostingNotFound
	}
	p.Status = status
	p.UpdatedAt = at
	p.Version++
	return nil
}

func (s *Store) IncrementViews(_ context.Context, kind posting.Kind, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.get(kind, id)
	if !ok {
		return repository.ErrPostingNotFound
	}
	p.Views++
	return nil
}

func (s *Store) AddReport(_ context.Context, kind posting.Kind, id uuid.UUID, r posting.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.get(kind, id)
	if !ok {
		return repository.ErrPostingNotFound
	}
	for _, existing := range p.Reports {
		if existing.ReportedBy == r.ReportedBy {
			return repository.ErrDuplicateReport
		}
	}
	p.Reports = append(p.Reports, r)
	return nil
}

func (s *Store) Delete(_ context.Context, kind posting.Kind, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.get(kind, id); !ok {
		return repository.ErrPostingNotFound
	}
	delete(s.postings, id)
	delete(s.apps, id)
	return nil
}

func (s *Store) get(kind posting.Kind, id uuid.UUID) (*posting.Posting, bool) {
	p, ok := s.postings[id]
	if !ok || p.Kind != kind {
		return nil, false
	}
	return p, true
}

// Applications returns the ApplicationRepository view of the store.
func (s *Store) Applications() repository.ApplicationRepository {
	return applicationStore{s: s}
}

type applicationStore struct {
	s *Store
}

func (a applicationStore) Append(_ context.Context, app posting.Application) error {
	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.get(posting.KindJob, app.PostingID)
	if !ok {
		return repository.ErrPostingNotFound
	}
	if posting.HasApplied(s.apps[app.PostingID], app.ApplicantID) {
		return repository.ErrDuplicateApplication
	}
	s.apps[app.PostingID] = append(s.apps[app.PostingID], app)
	p.ApplicationCount = len(s.apps[app.PostingID])
	return nil
}

func (a applicationStore) ListByPosting(_ context.Context, jobID uuid.UUID) ([]posting.Application, error) {
	s := a.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.apps[jobID]), nil
}

func (a applicationStore) ListByApplicant(_ context.Context, applicant uuid.UUID) ([]posting.Application, error) {
	s := a.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]posting.Application, 0)
	for _, apps := range s.apps {
		for _, app := range apps {
			if app.ApplicantID == applicant {
				out = append(out, app)
			}
		}
	}
	slices.SortFunc(out, func(x, y posting.Application) int {
		return y.AppliedAt.Compare(x.AppliedAt)
	})
	return out, nil
}

func (a applicationStore) UpdateStatus(_ context.Context, jobID, applicationID uuid.UUID, status posting.ApplicationStatus, notes *string, at time.Time) (posting.Application, error) {
	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()

	apps := s.apps[jobID]
	for i := range apps {
		if apps[i].ID != applicationID {
			continue
		}
		apps[i].Status = status
		if notes != nil {
			apps[i].Notes = *notes
		}
		apps[i].UpdatedAt = at
		return apps[i], nil
	}
	return posting.Application{}, repository.ErrApplicationNotFound
}

// PutUser seeds a user for identity resolution.
func (s *Store) PutUser(u user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// Users returns the user.Repository view of the store.
func (s *Store) Users() user.Repository {
	return userStore{s: s}
}

type userStore struct {
	s *Store
}

func (u userStore) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	usr, ok := u.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (u userStore) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	out := make(map[uuid.UUID]user.User, len(ids))
	for _, id := range ids {
		if usr, ok := u.s.users[id]; ok {
			out[id] = usr
		}
	}
	return out, nil
}

func (u userStore) Delete(_ context.Context, id uuid.UUID) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, ok := u.s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(u.s.users, id)
	return nil
}

func clonePosting(p posting.Posting) posting.Posting {
	cp := p
	cp.Content = p.Content.Clone()
	cp.Reports = slices.Clone(p.Reports)
	cp.Applications = slices.Clone(p.Applications)
	if p.ModeratedBy != nil {
		v := *p.ModeratedBy
		cp.ModeratedBy = &v
	}
	if p.ModeratedAt != nil {
		v := *p.ModeratedAt
		cp.ModeratedAt = &v
	}
	return cp
}
