package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckoon-infopro/rxdb-backend/internal/storage/types"
	"github.com/ckoon-infopro/rxdb-backend/pkg/model"
)

func TestStore_GetUpsert(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, model.ErrNotFound)

	doc := &types.Document{Id: "a", UpdatedAt: 100, Data: map[string]interface{}{"title": "hello"}}
	require.NoError(t, store.Upsert(ctx, doc))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	// Replacing keeps the id, swaps everything else.
	require.NoError(t, store.Upsert(ctx, &types.Document{Id: "a", UpdatedAt: 200, Data: map[string]interface{}{"title": "world"}}))
	got, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.UpdatedAt)
	assert.Equal(t, "world", got.Data["title"])
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &types.Document{Id: "a", UpdatedAt: 100, Data: map[string]interface{}{"n": 1}}))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	got.Data["n"] = 99

	again, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Data["n"], "callers must not mutate stored state")
}

func TestStore_ScanOrdering(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &types.Document{Id: "c", UpdatedAt: 100}))
	require.NoError(t, store.Upsert(ctx, &types.Document{Id: "a", UpdatedAt: 100}))
	require.NoError(t, store.Upsert(ctx, &types.Document{Id: "b", UpdatedAt: 50}))

	docs, err := store.ScanAll(ctx, 10)
	require.NoError(t, err)
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.Id
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids, "ordered by (updatedAt, id)")

	docs, err = store.ScanAfter(ctx, 100, "a", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "c", docs[0].Id, "id tiebreak resumes mid-timestamp")

	docs, err = store.ScanAll(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestStore_Latest(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.Latest(ctx)
	assert.ErrorIs(t, err, model.ErrEmptyStore)

	require.NoError(t, store.Upsert(ctx, &types.Document{Id: "a", UpdatedAt: 100}))
	require.NoError(t, store.Upsert(ctx, &types.Document{Id: "b", UpdatedAt: 100}))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", latest.Id, "id breaks the tie at the newest timestamp")
}
