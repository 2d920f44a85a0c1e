package search

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classifieds/internal/domain/posting"
	"classifieds/internal/pkg/apperr"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func publicOpts() Options {
	return Options{Scope: ScopePublic, Now: testNow}
}

func jobBase() []Node {
	return []Node{
		Eq{FieldModerationStatus, "approved"},
		Eq{FieldStatus, "open"},
		Range{Field: FieldApplicationDeadline, Gt: testNow},
	}
}

func TestCompose_StructuredFiltersAreExactConjunction(t *testing.T) {
	q, err := Compose(posting.KindJob, map[string]string{"job_type": "full-time", "city": "Kyrenia"}, publicOpts())
	require.NoError(t, err)

	want := append(jobBase(),
		Eq{FieldCity, "Kyrenia"},
		Eq{FieldJobType, "full-time"},
	)
	assert.Equal(t, want, q.Filter.Nodes)
	assert.Empty(t, q.Search)
}

func TestCompose_SearchAddsDisjunctionAsExtraConjunct(t *testing.T) {
	raw := map[string]string{"job_type": "full-time", "city": "Kyrenia"}
	without, err := Compose(posting.KindJob, raw, publicOpts())
	require.NoError(t, err)

	raw["search"] = "  Plumber "
	with, err := Compose(posting.KindJob, raw, publicOpts())
	require.NoError(t, err)

	require.Len(t, with.Filter.Nodes, len(without.Filter.Nodes)+1)
	assert.Equal(t, without.Filter.Nodes, with.Filter.Nodes[:len(without.Filter.Nodes)])

	or, ok := with.Filter.Nodes[len(with.Filter.Nodes)-1].(Or)
	require.True(t, ok, "last conjunct must be the text disjunction")
	require.Len(t, or.Nodes, len(TextFields(posting.KindJob)))
	for i, n := range or.Nodes {
		assert.Equal(t, Text{Field: TextFields(posting.KindJob)[i], Value: "Plumber"}, n)
	}
	assert.Contains(t, with.Filter.Nodes, Node(Eq{FieldCity, "Kyrenia"}), "city filter must stay a top-level conjunct")
}

func TestCompose_DoesNotMutateInput(t *testing.T) {
	raw := map[string]string{"search": " Flat ", "page": "2", "sort": "price_asc"}
	snapshot := map[string]string{"search": " Flat ", "page": "2", "sort": "price_asc"}

	_, err := Compose(posting.KindListing, raw, publicOpts())
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(raw, snapshot))
}

func TestCompose_ListingBaseHasOnlyModeration(t *testing.T) {
	q, err := Compose(posting.KindListing, nil, publicOpts())
	require.NoError(t, err)
	assert.Equal(t, []Node{Eq{FieldModerationStatus, "approved"}}, q.Filter.Nodes)
	assert.Equal(t, Page{Number: 1, Limit: DefaultLimit}, q.Page)
	assert.Equal(t, []Order{{FieldCreatedAt, true}, {FieldID, false}}, q.Sort)
}

func TestCompose_AdminScopeDropsBasePredicate(t *testing.T) {
	owner := uuid.New()
	q, err := Compose(posting.KindJob, map[string]string{
		"moderation_status": "pending",
		"status":            "filled",
		"owner_id":          owner.String(),
		"is_reported":       "true",
		"limit":             "100",
	}, Options{Scope: ScopeAdmin, Now: testNow})
	require.NoError(t, err)

	assert.Equal(t, []Node{
		Eq{FieldModerationStatus, "pending"},
		Eq{FieldStatus, "filled"},
		Eq{FieldOwner, owner},
		Eq{FieldIsReported, true},
	}, q.Filter.Nodes)
	assert.Equal(t, 100, q.Page.Limit)
}

func TestCompose_AdminScopeWithoutFiltersMatchesAll(t *testing.T) {
	q, err := Compose(posting.KindDormitory, map[string]string{}, Options{Scope: ScopeAdmin, Now: testNow})
	require.NoError(t, err)
	assert.Empty(t, q.Filter.Nodes)
}

func TestCompose_OwnerScope(t *testing.T) {
	owner := uuid.New()
	q, err := Compose(posting.KindListing, map[string]string{"moderation_status": "rejected", "owner_id": uuid.NewString()}, Options{Scope: ScopeOwner, Owner: owner, Now: testNow})
	require.NoError(t, err)
	assert.Equal(t, []Node{Eq{FieldOwner, owner}, Eq{FieldModerationStatus, "rejected"}}, q.Filter.Nodes)
}

func TestCompose_PriceAndAvailability(t *testing.T) {
	q, err := Compose(posting.KindDormitory, map[string]string{
		"min_price":      "100",
		"max_price":      "300.5",
		"available_from": "2026-09-01",
		"gender":         "Female",
		"room_type":      "single",
	}, publicOpts())
	require.NoError(t, err)

	assert.Contains(t, q.Filter.Nodes, Node(Range{Field: FieldPrice, Gte: 100.0, Lte: 300.5}))
	assert.Contains(t, q.Filter.Nodes, Node(Range{Field: FieldAvailableFrom, Lte: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}))
	assert.Contains(t, q.Filter.Nodes, Node(Eq{FieldGenderRestriction, "female"}))
	assert.Contains(t, q.Filter.Nodes, Node(Eq{FieldRoomType, "single"}))
}

func TestCompose_IgnoresFiltersOfOtherKinds(t *testing.T) {
	q, err := Compose(posting.KindListing, map[string]string{"job_type": "full-time"}, publicOpts())
	require.NoError(t, err)
	assert.Len(t, q.Filter.Nodes, 1)
}

func TestCompose_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		kind  posting.Kind
		raw   map[string]string
		field string
	}{
		{"page zero", posting.KindJob, map[string]string{"page": "0"}, "page"},
		{"page not a number", posting.KindJob, map[string]string{"page": "two"}, "page"},
		{"page past max", posting.KindJob, map[string]string{"page": "1000001"}, "page"},
		{"page overflowing offset", posting.KindListing, map[string]string{"page": "1000000000000000001", "limit": "10"}, "page"},
		{"page beyond int", posting.KindListing, map[string]string{"page": "99999999999999999999"}, "page"},
		{"limit over public max", posting.KindJob, map[string]string{"limit": "51"}, "limit"},
		{"limit zero", posting.KindJob, map[string]string{"limit": "0"}, "limit"},
		{"unknown sort", posting.KindJob, map[string]string{"sort": "random"}, "sort"},
		{"sort for other kind", posting.KindJob, map[string]string{"sort": "price_asc"}, "sort"},
		{"unknown job type", posting.KindJob, map[string]string{"job_type": "gig"}, "job_type"},
		{"unknown work mode", posting.KindJob, map[string]string{"work_mode": "moon"}, "work_mode"},
		{"negative salary", posting.KindJob, map[string]string{"min_salary": "-1"}, "min_salary"},
		{"inverted price range", posting.KindListing, map[string]string{"min_price": "10", "max_price": "5"}, "min_price"},
		{"bad date", posting.KindListing, map[string]string{"available_from": "soon"}, "available_from"},
		{"admin filter ignored publicly but bad status in admin", posting.KindListing, map[string]string{"status": "open"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose(tt.kind, tt.raw, publicOpts())
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))

			var ae *apperr.Error
			require.True(t, errors.As(err, &ae))
			assert.Contains(t, ae.Fields, tt.field)
		})
	}
}

func TestCompose_AdminValidation(t *testing.T) {
	_, err := Compose(posting.KindListing, map[string]string{"status": "open", "limit": "101", "is_reported": "maybe"}, Options{Scope: ScopeAdmin, Now: testNow})
	require.Error(t, err)

	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Contains(t, ae.Fields, "status")
	assert.Contains(t, ae.Fields, "limit")
	assert.Contains(t, ae.Fields, "is_reported")
}

func TestCompose_SortTieBreakers(t *testing.T) {
	q, err := Compose(posting.KindJob, map[string]string{"sort": "deadline_asc"}, publicOpts())
	require.NoError(t, err)
	assert.Equal(t, []Order{{FieldApplicationDeadline, false}, {FieldCreatedAt, true}, {FieldID, false}}, q.Sort)
}

func TestCompose_SearchTermIsVerbatim(t *testing.T) {
	for _, term := range []string{"C/C++", "Café & Bar", "a  b", "(remote), @home"} {
		q, err := Compose(posting.KindListing, map[string]string{"search": "  " + term + "\t"}, publicOpts())
		require.NoError(t, err)
		assert.Equal(t, term, q.Search)
	}

	q, err := Compose(posting.KindListing, map[string]string{"search": "   "}, publicOpts())
	require.NoError(t, err)
	assert.Empty(t, q.Search)
	assert.Len(t, q.Filter.Nodes, 1, "blank search adds no text disjunction")
}

func TestCompose_SearchLengthCountsRunes(t *testing.T) {
	_, err := Compose(posting.KindListing, map[string]string{"search": strings.Repeat("é", MaxSearchLength)}, publicOpts())
	require.NoError(t, err)

	_, err = Compose(posting.KindListing, map[string]string{"search": strings.Repeat("é", MaxSearchLength+1)}, publicOpts())
	require.ErrorIs(t, err, apperr.ErrValidation)
}
