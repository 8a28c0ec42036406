package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCollectDocumentsPreservesKeyOrder(t *testing.T) {
	id1 := primitive.NewObjectID()
	id2 := primitive.NewObjectID()
	docs := []bson.D{
		{
			{Key: "_id", Value: id1},
			{Key: "name", Value: "first"},
			{Key: "amount", Value: int32(10)},
		},
		{
			{Key: "_id", Value: id2},
			{Key: "name", Value: "second"},
			// A key the first document does not have joins the union after
			// everything already seen.
			{Key: "active", Value: true},
		},
	}

	result := collectDocuments(docs)
	require.Equal(t, 2, result.RowCount)
	assert.Equal(t, []string{"_id", "name", "amount", "active"}, result.Columns)
	assert.Equal(t, id1.Hex(), result.Rows[0]["_id"])
	assert.Equal(t, "second", result.Rows[1]["name"])
	assert.Equal(t, true, result.Rows[1]["active"])
}

func TestCollectDocumentsEmpty(t *testing.T) {
	result := collectDocuments(nil)
	require.Equal(t, 0, result.RowCount)
	assert.NotNil(t, result.Rows)
	assert.Empty(t, result.Columns)
}

func TestNormalizeValue(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"object id to hex", id, id.Hex()},
		{"array recursed", primitive.A{id, "x"}, []any{id.Hex(), "x"}},
		{
			"nested ordered document",
			bson.D{{Key: "inner", Value: id}},
			map[string]any{"inner": id.Hex()},
		},
		{"scalar passthrough", int64(7), int64(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeValue(tt.value))
		})
	}
}

func TestNormalizeValueDateTime(t *testing.T) {
	when := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	got, ok := normalizeValue(primitive.NewDateTimeFromTime(when)).(time.Time)
	require.True(t, ok)
	assert.True(t, got.Equal(when))
}
