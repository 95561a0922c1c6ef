package designstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"redesignstudio/internal/kvstore"
	"redesignstudio/internal/types"
)

func snapshot(id, name string) types.SavedDesign {
	return types.SavedDesign{
		ID:        id,
		Name:      name,
		CreatedAt: 1700000000,
		UploadedFile: types.UploadedFile{
			Data:     "data:image/png;base64,aGk=",
			MimeType: "image/png",
			Name:     "ladder.png",
		},
		AnalysisSpec: types.DesignSpec{Title: "ladder.png", RawAnalysis: "Ladder, 6 steps"},
	}
}

func TestInsertOrdersMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	store := New(kvstore.NewMemory())

	require.NoError(t, store.Insert(ctx, snapshot("a", "first")))
	require.NoError(t, store.Insert(ctx, snapshot("b", "second")))

	designs := store.List(ctx)
	require.Len(t, designs, 2)
	require.Equal(t, "b", designs[0].ID)
	require.Equal(t, "a", designs[1].ID)
}

func TestInsertCapsAtMaxSaved(t *testing.T) {
	ctx := context.Background()
	store := New(kvstore.NewMemory())

	for i := 1; i <= MaxSaved+1; i++ {
		require.NoError(t, store.Insert(ctx, snapshot(fmt.Sprintf("d%02d", i), fmt.Sprintf("design %d", i))))
	}

	designs := store.List(ctx)
	require.Len(t, designs, MaxSaved)
	require.Equal(t, "d11", designs[0].ID, "newest present")
	for _, d := range designs {
		require.NotEqual(t, "d01", d.ID, "oldest dropped")
	}
}

func TestInsertOutOfSpaceLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryWithQuota(2048)
	store := New(kv)

	require.NoError(t, store.Insert(ctx, snapshot("a", "fits")))
	before := store.List(ctx)

	big := snapshot("b", "too big")
	for i := 0; i < 2048; i++ {
		big.AnalysisSpec.RawAnalysis += "x"
	}
	err := store.Insert(ctx, big)
	require.ErrorIs(t, err, ErrStorageFull)
	require.Equal(t, before, store.List(ctx), "failed insert must not partially persist")
}

func TestListDegradesToEmptyOnCorruptData(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(ctx, DefaultKey, "{not json"))

	store := New(kv)
	require.Empty(t, store.List(ctx))
}

func TestRemoveUnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := New(kvstore.NewMemory())
	require.NoError(t, store.Insert(ctx, snapshot("a", "keep")))

	require.NoError(t, store.Remove(ctx, "missing"))
	require.Len(t, store.List(ctx), 1)
}

func TestRemoveDeletesAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	store := New(kv)
	require.NoError(t, store.Insert(ctx, snapshot("a", "one")))
	require.NoError(t, store.Insert(ctx, snapshot("b", "two")))

	require.NoError(t, store.Remove(ctx, "a"))

	// A fresh store over the same KV sees the removal.
	designs := New(kv).List(ctx)
	require.Len(t, designs, 1)
	require.Equal(t, "b", designs[0].ID)
}

func TestInsertReplacesSameID(t *testing.T) {
	ctx := context.Background()
	store := New(kvstore.NewMemory())
	require.NoError(t, store.Insert(ctx, snapshot("a", "v1")))
	require.NoError(t, store.Insert(ctx, snapshot("a", "v2")))

	designs := store.List(ctx)
	require.Len(t, designs, 1)
	require.Equal(t, "v2", designs[0].Name)
}

func TestListCopiesAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := New(kvstore.NewMemory())
	require.NoError(t, store.Insert(ctx, snapshot("a", "one")))

	first := store.List(ctx)
	first[0].Name = "mutated"
	require.Equal(t, "one", store.List(ctx)[0].Name)
}
