package mongodb

import (
	"testing"
	"time"

	"classifieds/internal/search"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToFilter_FoldCaseEqualityIsAnchoredAndQuoted(t *testing.T) {
	f, err := toFilter(search.Eq{Field: search.FieldCity, Value: "St. Louis"})
	require.NoError(t, err)

	re, ok := f["content.city"].(primitive.Regex)
	require.True(t, ok, "expected regex, got %#v", f)
	assert.Equal(t, `^St\. Louis$`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestToFilter_ExactEqualityAndUUID(t *testing.T) {
	owner := uuid.New()
	f, err := toFilter(search.All(
		search.Eq{Field: search.FieldOwner, Value: owner},
		search.Eq{Field: search.FieldModerationStatus, Value: "approved"},
	))
	require.NoError(t, err)

	parts := f["$and"].(bson.A)
	require.Len(t, parts, 2)
	assert.Equal(t, bson.M{"ownerId": owner.String()}, parts[0])
	assert.Equal(t, bson.M{"moderationStatus": "approved"}, parts[1])
}

func TestToFilter_RangeExcludesMissing(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f, err := toFilter(search.Range{Field: search.FieldApplicationDeadline, Gt: now})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"content.applicationDeadline": bson.M{"$ne": nil, "$gt": now}}, f)
}

func TestToFilter_TextAndReported(t *testing.T) {
	f, err := toFilter(search.Or{Nodes: []search.Node{
		search.Text{Field: search.FieldTitle, Value: "c++"},
		search.Eq{Field: search.FieldIsReported, Value: true},
	}})
	require.NoError(t, err)

	parts := f["$or"].(bson.A)
	re := parts[0].(bson.M)["content.title"].(primitive.Regex)
	assert.Equal(t, `c\+\+`, re.Pattern)
	assert.Equal(t, bson.M{"reports.0": bson.M{"$exists": true}}, parts[1])
}

func TestToFilter_TextKeepsPunctuation(t *testing.T) {
	f, err := toFilter(search.Text{Field: search.FieldTitle, Value: "C/C++ (remote)"})
	require.NoError(t, err)

	re := f["content.title"].(primitive.Regex)
	assert.Equal(t, `C/C\+\+ \(remote\)`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestToFilter_EmptyOrMatchesNothing(t *testing.T) {
	f, err := toFilter(search.Or{})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": bson.M{"$exists": false}}, f)
}

func TestToFilter_UnknownField(t *testing.T) {
	_, err := toFilter(search.Eq{Field: "$where", Value: "1"})
	assert.Error(t, err)
}

func TestSortStages(t *testing.T) {
	flags, sort, err := sortStages([]search.Order{{Field: search.FieldPrice}, {Field: search.FieldID}})
	require.NoError(t, err)
	require.Len(t, flags, 2)
	assert.Equal(t, bson.D{
		{Key: "_missing0", Value: 1}, {Key: "content.price", Value: 1},
		{Key: "_missing1", Value: 1}, {Key: "_id", Value: 1},
	}, sort)
}
