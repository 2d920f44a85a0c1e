package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// PostingListKey identifies one public listing page. Parameters are sorted so the same
// query in a different order shares the entry.
func PostingListKey(kind string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
		b.WriteByte('&')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return PostingListPrefix(kind) + hex.EncodeToString(sum[:])
}

func PostingListPrefix(kind string) string {
	return "postings:list:" + kind + ":"
}

func PostingListPattern(kind string) string {
	return PostingListPrefix(kind) + "*"
}

// PostingViewKey marks that viewer has already been counted for a posting.
func PostingViewKey(kind string, postingID uuid.UUID, viewer string) string {
	return "postings:view:" + kind + ":" + postingID.String() + ":" + viewer
}
