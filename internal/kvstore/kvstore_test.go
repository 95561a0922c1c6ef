package kvstore

import (
	"context"
	"strings"
	"testing"

	"redesignstudio/internal/tester"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	_, ok, err := kv.Get(ctx, "saves")
	tester.NoErr(t, err)
	tester.False(t, ok, "missing key")

	tester.NoErr(t, kv.Set(ctx, "saves", `[]`))
	v, ok, err := kv.Get(ctx, "saves")
	tester.NoErr(t, err)
	tester.True(t, ok, "key present")
	tester.Eq(t, v, `[]`)
}

func TestMemoryQuotaLeavesValueIntact(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryWithQuota(20)

	tester.NoErr(t, kv.Set(ctx, "saves", "small"))
	err := kv.Set(ctx, "saves", strings.Repeat("x", 64))
	if err != ErrOutOfSpace {
		t.Fatalf("expected ErrOutOfSpace, got %v", err)
	}
	v, ok, err := kv.Get(ctx, "saves")
	tester.NoErr(t, err)
	tester.True(t, ok, "previous value kept")
	tester.Eq(t, v, "small")
}

func TestMemoryQuotaCountsReplacedValueOnce(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryWithQuota(32)

	tester.NoErr(t, kv.Set(ctx, "saves", strings.Repeat("a", 24)))
	// Replacing a value of the same size must not double-count.
	tester.NoErr(t, kv.Set(ctx, "saves", strings.Repeat("b", 24)))
}

func TestFileRoundTripAndRestart(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	kv, err := NewFile(root)
	tester.NoErr(t, err)
	tester.NoErr(t, kv.Set(ctx, "ladder_redesign_studio_saves", `[{"id":"a"}]`))

	reopened, err := NewFile(root)
	tester.NoErr(t, err)
	v, ok, err := reopened.Get(ctx, "ladder_redesign_studio_saves")
	tester.NoErr(t, err)
	tester.True(t, ok, "value survives reopen")
	tester.Eq(t, v, `[{"id":"a"}]`)
}

func TestFileQuota(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileWithQuota(t.TempDir(), 8)
	tester.NoErr(t, err)

	tester.NoErr(t, kv.Set(ctx, "k", "short"))
	if err := kv.Set(ctx, "k", "far too long for the quota"); err != ErrOutOfSpace {
		t.Fatalf("expected ErrOutOfSpace, got %v", err)
	}
	v, ok, err := kv.Get(ctx, "k")
	tester.NoErr(t, err)
	tester.True(t, ok, "previous value kept")
	tester.Eq(t, v, "short")
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, err := NewSQLite(t.TempDir() + "/studio.db")
	tester.NoErr(t, err)
	defer kv.Close()

	_, ok, err := kv.Get(ctx, "saves")
	tester.NoErr(t, err)
	tester.False(t, ok, "missing key")

	tester.NoErr(t, kv.Set(ctx, "saves", `[1]`))
	tester.NoErr(t, kv.Set(ctx, "saves", `[1,2]`))
	v, ok, err := kv.Get(ctx, "saves")
	tester.NoErr(t, err)
	tester.True(t, ok, "key present")
	tester.Eq(t, v, `[1,2]`)
}

func TestSlugKey(t *testing.T) {
	tester.Eq(t, slugKey("ladder_redesign_studio_saves"), "ladder_redesign_studio_saves")
	tester.Eq(t, slugKey("a b/c"), "a_b_c")
	tester.Eq(t, slugKey("  "), "default")
}
