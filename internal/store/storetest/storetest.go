// Package storetest holds a conformance suite every store backend must pass
// and testify mocks for handler tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-api/internal/store"
)

// Run exercises db through the Collection contract. Each subtest uses its own
// collection so a shared database is fine.
func Run(t *testing.T, db store.Database) {
	t.Helper()
	ctx := context.Background()

	t.Run("insert and find one", func(t *testing.T) {
		c := db.Collection("conformance_insert")

		id, err := c.InsertOne(ctx, store.Document{"title": "Standup", "category": "work"})
		require.NoError(t, err)
		require.Len(t, id, 24)

		got, err := c.FindOne(ctx, store.Filter{store.IDField: id})
		require.NoError(t, err)
		doc, ok := got.Get()
		require.True(t, ok)
		assert.Equal(t, id, doc[store.IDField])
		assert.Equal(t, "Standup", doc["title"])
		assert.Equal(t, "work", doc["category"])
	})

	t.Run("empty collection lists as empty slice", func(t *testing.T) {
		docs, err := db.Collection("conformance_empty").Find(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("find keeps insertion order", func(t *testing.T) {
		c := db.Collection("conformance_order")

		ids, err := c.InsertMany(ctx, []store.Document{
			{"name": "a"}, {"name": "b"}, {"name": "c"},
		})
		require.NoError(t, err)
		require.Len(t, ids, 3)

		docs, err := c.Find(ctx, nil)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		for i, name := range []string{"a", "b", "c"} {
			assert.Equal(t, name, docs[i]["name"])
			assert.Equal(t, ids[i], docs[i][store.IDField])
		}
	})

	t.Run("find one by field", func(t *testing.T) {
		c := db.Collection("conformance_by_field")

		_, err := c.InsertMany(ctx, []store.Document{
			{"name": "Be fit", "color": "bg-red-200"},
			{"name": "LEARN", "color": "bg-purple-200"},
		})
		require.NoError(t, err)

		got, err := c.FindOne(ctx, store.Filter{"name": "LEARN"})
		require.NoError(t, err)
		doc, ok := got.Get()
		require.True(t, ok)
		assert.Equal(t, "bg-purple-200", doc["color"])

		missing, err := c.FindOne(ctx, store.Filter{"name": "nope"})
		require.NoError(t, err)
		assert.True(t, missing.IsAbsent())
	})

	t.Run("update merges fields", func(t *testing.T) {
		c := db.Collection("conformance_update")

		id, err := c.InsertOne(ctx, store.Document{"title": "Standup", "category": "work"})
		require.NoError(t, err)

		require.NoError(t, c.UpdateByID(ctx, id, store.Document{"category": "meeting", "room": "B"}))

		got, err := c.FindOne(ctx, store.Filter{store.IDField: id})
		require.NoError(t, err)
		doc := got.MustGet()
		assert.Equal(t, "Standup", doc["title"])
		assert.Equal(t, "meeting", doc["category"])
		assert.Equal(t, "B", doc["room"])
	})

	t.Run("update and delete of unknown id succeed", func(t *testing.T) {
		c := db.Collection("conformance_unknown")
		unknown := store.NewID()

		assert.NoError(t, c.UpdateByID(ctx, unknown, store.Document{"title": "x"}))
		assert.NoError(t, c.DeleteByID(ctx, unknown))

		got, err := c.FindOne(ctx, store.Filter{store.IDField: unknown})
		require.NoError(t, err)
		assert.True(t, got.IsAbsent())
	})

	t.Run("malformed id is an error", func(t *testing.T) {
		c := db.Collection("conformance_malformed")

		assert.Error(t, c.UpdateByID(ctx, "not-an-id", store.Document{"title": "x"}))
		assert.Error(t, c.DeleteByID(ctx, "not-an-id"))
		_, err := c.FindOne(ctx, store.Filter{store.IDField: "not-an-id"})
		assert.Error(t, err)
	})

	t.Run("delete by id", func(t *testing.T) {
		c := db.Collection("conformance_delete")

		ids, err := c.InsertMany(ctx, []store.Document{{"name": "keep"}, {"name": "drop"}})
		require.NoError(t, err)

		require.NoError(t, c.DeleteByID(ctx, ids[1]))

		docs, err := c.Find(ctx, nil)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "keep", docs[0]["name"])
	})

	t.Run("delete all only clears one collection", func(t *testing.T) {
		a := db.Collection("conformance_clear_a")
		b := db.Collection("conformance_clear_b")

		_, err := a.InsertMany(ctx, []store.Document{{"n": "1"}, {"n": "2"}})
		require.NoError(t, err)
		_, err = b.InsertOne(ctx, store.Document{"n": "3"})
		require.NoError(t, err)

		require.NoError(t, a.DeleteAll(ctx))

		docsA, err := a.Find(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, docsA)
		docsB, err := b.Find(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, docsB, 1)
	})

	t.Run("client supplied id is ignored", func(t *testing.T) {
		c := db.Collection("conformance_client_id")
		clientID := store.NewID()

		id, err := c.InsertOne(ctx, store.Document{store.IDField: clientID, "name": "x"})
		require.NoError(t, err)
		assert.NotEqual(t, clientID, id)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, db.Ping(ctx))
	})
}
