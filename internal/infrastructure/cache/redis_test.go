package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDisabledCacheBypasses(t *testing.T) {
	c := Disabled()
	ctx := context.Background()

	if c.Available() {
		t.Fatalf("disabled cache reports available")
	}
	var out map[string]any
	hit, err := c.GetJSON(ctx, "k", &out)
	if err != nil || hit {
		t.Fatalf("GetJSON = %v, %v", hit, err)
	}
	if err := c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	ok, err := c.SetIfNotExists(ctx, "k", "1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("SetIfNotExists on disabled cache = %v, %v", ok, err)
	}
	if err := c.DeleteByPattern(ctx, "x:*"); err != nil {
		t.Fatalf("DeleteByPattern: %v", err)
	}
}

func TestPostingListKeyIgnoresParamOrder(t *testing.T) {
	a := PostingListKey("job", map[string]string{"city": "lyon", "page": "2"})
	b := PostingListKey("job", map[string]string{"page": "2", "city": "lyon"})
	if a != b {
		t.Fatalf("keys differ: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, PostingListPrefix("job")) {
		t.Fatalf("key %s missing prefix", a)
	}
	if a == PostingListKey("listing", map[string]string{"city": "lyon", "page": "2"}) {
		t.Fatalf("kinds must not share keys")
	}
}

func TestPostingViewKey(t *testing.T) {
	id := uuid.MustParse("7f1d5c3e-2b4a-4c6e-9a8b-0d1e2f3a4b5c")
	got := PostingViewKey("dormitory", id, "u1")
	if got != "postings:view:dormitory:7f1d5c3e-2b4a-4c6e-9a8b-0d1e2f3a4b5c:u1" {
		t.Fatalf("unexpected key %s", got)
	}
}
