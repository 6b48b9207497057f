package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-api/internal/store"
	"calendar-api/internal/store/storetest"
)

func TestMemoryConformance(t *testing.T) {
	storetest.Run(t, store.NewMemory())
}

func TestOpen_Memory(t *testing.T) {
	db, err := store.Open(context.Background(), "memory://", "calendar")
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, db)
	assert.NoError(t, db.Close(context.Background()))
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	_, err := store.Open(context.Background(), "redis://localhost:6379", "calendar")
	assert.ErrorContains(t, err, "unsupported store scheme")
}

func TestOpen_EmptyMongoDatabase(t *testing.T) {
	_, err := store.Open(context.Background(), "mongodb://localhost:27017", "")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id := store.NewID()
	oid, err := store.ParseID(id)
	require.NoError(t, err)
	assert.Equal(t, id, oid.Hex())

	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		_, err := store.ParseID(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestMemory_FilterRejectsNonStringID(t *testing.T) {
	_, err := store.NewMemory().Collection("x").Find(context.Background(), store.Filter{store.IDField: 42})
	assert.Error(t, err)
}
