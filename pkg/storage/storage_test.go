package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw33tLie/shopscope/pkg/catalog"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func openTestDB(t *testing.T) (*DB, *fakeClock) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	db.WithClock(clock.Now)
	return db, clock
}

func TestGetSetDelete(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()

	_, err := db.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Set(ctx, "k", "v1"))
	require.NoError(t, db.Set(ctx, "k", "v2"))
	v, err := db.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	keys, err := db.ListKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "k", keys[0].Key)
	assert.Equal(t, 2, keys[0].Size)

	require.NoError(t, db.Delete(ctx, "k"))
	_, err = db.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUIStateRoundTrip(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()

	_, err := db.LoadUIState(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	st := catalog.NewState()
	st.Filters = catalog.Filters{Search: "ipa", Vendor: "V", Available: "1"}
	st.SortKey = catalog.FieldPrice
	st.SortAsc = false
	st.Page = 3
	require.NoError(t, db.SaveUIState(ctx, CaptureUIState(st)))

	raw, err := db.Get(ctx, StateKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"search":"ipa"`)
	assert.Contains(t, raw, `"avail":"1"`)
	assert.Contains(t, raw, `"sortAsc":false`)

	u, err := db.LoadUIState(ctx)
	require.NoError(t, err)

	restored := catalog.NewState()
	u.ApplyTo(restored)
	assert.Equal(t, st.Filters, restored.Filters)
	assert.Equal(t, catalog.FieldPrice, restored.SortKey)
	assert.False(t, restored.SortAsc)
	assert.Equal(t, 3, restored.Page)
}

func TestUIStateIgnoresUnknownSortKey(t *testing.T) {
	st := catalog.NewState()
	UIState{SortKey: "bogus"}.ApplyTo(st)
	assert.Equal(t, catalog.DefaultSortKey, st.SortKey)
	assert.True(t, st.SortAsc)
	assert.Equal(t, 1, st.Page)
}

func TestSnapshotTTL(t *testing.T) {
	db, clock := openTestDB(t)
	ctx := context.Background()

	_, err := db.LoadSnapshot(ctx, time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)

	products := []*catalog.Product{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}
	require.NoError(t, db.SaveSnapshot(ctx, products, 2))

	clock.Advance(59 * time.Minute)
	snap, err := db.LoadSnapshot(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalRecords)
	assert.Equal(t, SnapshotVersion, snap.Version)
	require.Len(t, snap.Products, 2)
	assert.Equal(t, "B", snap.Products[1].Title)

	clock.Advance(2 * time.Minute)
	_, err = db.LoadSnapshot(ctx, time.Hour)
	assert.ErrorIs(t, err, ErrSnapshotExpired)

	require.NoError(t, db.ClearSnapshot(ctx))
	_, err = db.LoadSnapshot(ctx, time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmptySnapshotIsUsable(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()

	st := catalog.NewState()
	st.Append(nil, 0)
	require.True(t, st.AllLoaded)
	require.NoError(t, db.SaveSnapshot(ctx, st.Products, st.TotalRecords))

	raw, err := db.Get(ctx, ProductsKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"products":[]`)

	snap, err := db.LoadSnapshot(ctx, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, snap.Products)
	assert.Equal(t, 0, snap.TotalRecords)
}

func TestSnapshotInvalid(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, ProductsKey, "{not json"))
	_, err := db.LoadSnapshot(ctx, time.Hour)
	assert.ErrorIs(t, err, ErrSnapshotInvalid)

	require.NoError(t, db.Set(ctx, ProductsKey, `{"products":[],"timestamp":1,"version":1}`))
	_, err = db.LoadSnapshot(ctx, time.Hour)
	assert.ErrorIs(t, err, ErrSnapshotInvalid)
}
