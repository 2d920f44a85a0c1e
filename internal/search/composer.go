package search

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"classifieds/internal/domain/posting"
	"classifieds/internal/pkg/apperr"
)

type Scope int

const (
	// ScopePublic applies the public base predicate.
	ScopePublic Scope = iota
	// ScopeOwner restricts to one owner's postings in any moderation state.
	ScopeOwner
	// ScopeAdmin drops the base predicate and accepts explicit state filters.
	ScopeAdmin
)

type Options struct {
	Scope Scope
	Owner uuid.UUID
	Now   time.Time
}

type Order struct {
	Field Field
	Desc  bool
}

type Query struct {
	Kind   posting.Kind
	Filter And
	Sort   []Order
	Page   Page
	// Search is the trimmed free-text term, empty when absent.
	Search string
}

type sortSpec struct {
	kinds  []posting.Kind
	orders []Order
}

var sorts = map[string]sortSpec{
	"newest":       {orders: []Order{{FieldCreatedAt, true}}},
	"oldest":       {orders: []Order{{FieldCreatedAt, false}}},
	"views_desc":   {orders: []Order{{FieldViews, true}}},
	"price_asc":    {kinds: []posting.Kind{posting.KindListing, posting.KindDormitory}, orders: []Order{{FieldPrice, false}}},
	"price_desc":   {kinds: []posting.Kind{posting.KindListing, posting.KindDormitory}, orders: []Order{{FieldPrice, true}}},
	"salary_asc":   {kinds: []posting.Kind{posting.KindJob}, orders: []Order{{FieldSalaryMin, false}}},
	"salary_desc":  {kinds: []posting.Kind{posting.KindJob}, orders: []Order{{FieldSalaryMax, true}}},
	"deadline_asc": {kinds: []posting.Kind{posting.KindJob}, orders: []Order{{FieldApplicationDeadline, false}}},
}

// Compose turns untrusted request parameters into a validated query. It never reads or
// writes raw and performs no I/O; every problem is reported in one validation error.
func Compose(kind posting.Kind, raw map[string]string, opts Options) (Query, error) {
	c := composer{kind: kind, raw: raw, errs: map[string]string{}}

	q := Query{Kind: kind}
	q.Page = c.page(opts.Scope)
	q.Sort = c.sort()

	base := c.base(opts)
	structured := c.structured()
	q.Search = c.search()

	var text Node
	if q.Search != "" {
		text = AnyText(q.Search, TextFields(kind))
	}

	if len(c.errs) > 0 {
		return Query{}, apperr.Validation("invalid query parameters", c.errs)
	}

	q.Filter = All(append(append(base, structured...), text)...)
	return q, nil
}

type composer struct {
	kind posting.Kind
	raw  map[string]string
	errs map[string]string
}

func (c *composer) get(key string) string {
	return strings.TrimSpace(c.raw[key])
}

func (c *composer) fail(key, msg string) {
	if _, ok := c.errs[key]; !ok {
		c.errs[key] = msg
	}
}

func (c *composer) page(scope Scope) Page {
	maxLimit := MaxPublicLimit
	if scope == ScopeAdmin {
		maxLimit = MaxAdminLimit
	}

	p := Page{Number: DefaultPage, Limit: DefaultLimit}
	if v := c.get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxPage {
			c.fail("page", "must be an integer between 1 and "+strconv.Itoa(MaxPage))
		} else {
			p.Number = n
		}
	}
	if v := c.get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			c.fail("limit", "must be an integer between 1 and "+strconv.Itoa(maxLimit))
		} else {
			p.Limit = n
		}
	}
	return p
}

func (c *composer) sort() []Order {
	key := c.get("sort")
	if key == "" {
		key = "newest"
	}
	def, ok := sorts[key]
	if !ok || (len(def.kinds) > 0 && !slices.Contains(def.kinds, c.kind)) {
		c.fail("sort", "must be one of "+strings.Join(c.sortKeys(), ", "))
		return nil
	}

	out := slices.Clone(def.orders)
	if out[0].Field != FieldCreatedAt {
		out = append(out, Order{FieldCreatedAt, true})
	}
	return append(out, Order{FieldID, false})
}

func (c *composer) sortKeys() []string {
	var out []string
	for _, k := range slices.Sorted(maps.Keys(sorts)) {
		def := sorts[k]
		if len(def.kinds) == 0 || slices.Contains(def.kinds, c.kind) {
			out = append(out, k)
		}
	}
	return out
}

func (c *composer) base(opts Options) []Node {
	switch opts.Scope {
	case ScopeAdmin:
		return c.stateFilters(true)
	case ScopeOwner:
		return append([]Node{Eq{FieldOwner, opts.Owner}}, c.stateFilters(false)...)
	default:
		out := []Node{Eq{FieldModerationStatus, string(posting.ModerationApproved)}}
		if c.kind == posting.KindJob {
			out = append(out,
				Eq{FieldStatus, string(posting.StatusOpen)},
				Range{Field: FieldApplicationDeadline, Gt: opts.Now.UTC()},
			)
		}
		return out
	}
}

func (c *composer) stateFilters(admin bool) []Node {
	var out []Node
	if v := c.get("moderation_status"); v != "" {
		if !posting.ModerationStatus(v).Valid() {
			c.fail("moderation_status", "must be one of pending, approved, rejected")
		} else {
			out = append(out, Eq{FieldModerationStatus, v})
		}
	}
	if v := c.get("status"); v != "" {
		if !c.kind.ValidStatus(posting.Status(v)) {
			c.fail("status", "must be one of "+joinStatuses(c.kind.Statuses()))
		} else {
			out = append(out, Eq{FieldStatus, v})
		}
	}
	if !admin {
		return out
	}
	if v := c.get("owner_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.fail("owner_id", "must be a valid id")
		} else {
			out = append(out, Eq{FieldOwner, id})
		}
	}
	if v := c.get("is_reported"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.fail("is_reported", "must be true or false")
		} else {
			out = append(out, Eq{FieldIsReported, b})
		}
	}
	return out
}

func (c *composer) structured() []Node {
	var out []Node
	if n := c.exact("city", FieldCity); n != nil {
		out = append(out, n)
	}
	if n := c.exact("region", FieldRegion); n != nil {
		out = append(out, n)
	}

	switch c.kind {
	case posting.KindJob:
		out = appendNode(out, c.enum("job_type", FieldJobType, JobTypes))
		out = appendNode(out, c.enum("work_mode", FieldWorkMode, WorkModes))
		out = appendNode(out, c.bound("min_salary", FieldSalaryMin, true))
		out = appendNode(out, c.bound("max_salary", FieldSalaryMax, false))
	case posting.KindListing:
		out = appendNode(out, c.enum("property_type", FieldPropertyType, PropertyTypes))
		out = appendNode(out, c.enum("listing_type", FieldListingType, ListingTypes))
		out = appendNode(out, c.priceRange())
		out = appendNode(out, c.availability())
	case posting.KindDormitory:
		out = appendNode(out, c.enum("room_type", FieldRoomType, RoomTypes))
		out = appendNode(out, c.enum("gender", FieldGenderRestriction, Genders))
		out = appendNode(out, c.priceRange())
		out = appendNode(out, c.availability())
	}
	return out
}

func appendNode(out []Node, n Node) []Node {
	if n == nil {
		return out
	}
	return append(out, n)
}

// exact matches a location value as given; stores compare it case-insensitively.
func (c *composer) exact(key string, f Field) Node {
	v := c.get(key)
	if v == "" {
		return nil
	}
	if len(v) > MaxSearchLength {
		c.fail(key, "is too long")
		return nil
	}
	return Eq{f, v}
}

func (c *composer) enum(key string, f Field, allowed []string) Node {
	v := strings.ToLower(c.get(key))
	if v == "" {
		return nil
	}
	if !slices.Contains(allowed, v) {
		c.fail(key, "must be one of "+strings.Join(allowed, ", "))
		return nil
	}
	return Eq{f, v}
}

func (c *composer) number(key string) (float64, bool) {
	v := c.get(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n < 0 {
		c.fail(key, "must be a non-negative number")
		return 0, false
	}
	return n, true
}

func (c *composer) bound(key string, f Field, lower bool) Node {
	n, ok := c.number(key)
	if !ok {
		return nil
	}
	if lower {
		return Range{Field: f, Gte: n}
	}
	return Range{Field: f, Lte: n}
}

func (c *composer) priceRange() Node {
	lo, hasLo := c.number("min_price")
	hi, hasHi := c.number("max_price")
	if hasLo && hasHi && lo > hi {
		c.fail("min_price", "must not exceed max_price")
		return nil
	}
	if !hasLo && !hasHi {
		return nil
	}
	r := Range{Field: FieldPrice}
	if hasLo {
		r.Gte = lo
	}
	if hasHi {
		r.Lte = hi
	}
	return r
}

// availability keeps postings that are available on or before the requested date.
func (c *composer) availability() Node {
	v := c.get("available_from")
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		t, err = time.Parse(time.RFC3339, v)
	}
	if err != nil {
		c.fail("available_from", "must be a date (YYYY-MM-DD)")
		return nil
	}
	return Range{Field: FieldAvailableFrom, Lte: t.UTC()}
}

// search returns the free-text term trimmed and otherwise verbatim. Stores match it as
// a literal, case-insensitive substring.
func (c *composer) search() string {
	v := c.get("search")
	if utf8.RuneCountInString(v) > MaxSearchLength {
		c.fail("search", "must be at most "+strconv.Itoa(MaxSearchLength)+" characters")
		return ""
	}
	return v
}

func joinStatuses(in []posting.Status) string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return strings.Join(out, ", ")
}
