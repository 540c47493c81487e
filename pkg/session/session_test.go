package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw33tLie/shopscope/pkg/api"
	"github.com/sw33tLie/shopscope/pkg/catalog"
	"github.com/sw33tLie/shopscope/pkg/storage"
)

type fakeBackend struct {
	mu       sync.Mutex
	records  []*catalog.Product
	fetches  int
	failPage int
	failEdit bool
	ignored  map[int64]bool
	edits    []catalog.EditForm
}

func newFakeBackend(n int) *fakeBackend {
	b := &fakeBackend{ignored: map[int64]bool{}}
	for i := 1; i <= n; i++ {
		b.records = append(b.records, &catalog.Product{
			ID:        int64(i),
			Title:     fmt.Sprintf("Product %d", i),
			Price:     fmt.Sprintf("%d.50", i),
			Vendor:    fmt.Sprintf("Vendor%d", i%3),
			Available: i%2 == 0,
		})
	}
	return b
}

func (b *fakeBackend) FetchProducts(_ context.Context, page, perPage int) (*api.Chunk, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches++
	if b.failPage == page {
		return nil, &api.StatusError{Op: "fetch products", StatusCode: 502}
	}
	start := (page - 1) * perPage
	if start > len(b.records) {
		start = len(b.records)
	}
	end := start + perPage
	if end > len(b.records) {
		end = len(b.records)
	}
	out := make([]*catalog.Product, 0, end-start)
	for _, p := range b.records[start:end] {
		cp := *p
		out = append(out, &cp)
	}
	return &api.Chunk{Products: out, Total: len(b.records), Page: page, PerPage: perPage}, nil
}

func (b *fakeBackend) Product(_ context.Context, id int64) (*catalog.Product, error) {
	for _, p := range b.records {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, &api.StatusError{Op: "fetch product", StatusCode: 404}
}

func (b *fakeBackend) SetIgnore(_ context.Context, id int64, ignore bool) error {
	if id == 999 {
		return &api.StatusError{Op: "update ignore_notifications", StatusCode: 500}
	}
	b.ignored[id] = ignore
	return nil
}

func (b *fakeBackend) EditProduct(_ context.Context, form catalog.EditForm) error {
	if b.failEdit {
		return errors.New("connection refused")
	}
	b.edits = append(b.edits, form)
	return nil
}

func (b *fakeBackend) fetchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetches
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func openStore(t *testing.T, dir string, clock *fakeClock) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(dir, "local.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.WithClock(clock.Now)
	return db
}

func openSession(t *testing.T, backend Backend, store Store) *Session {
	t.Helper()
	s := New(backend, store, Options{ChunkSize: 10, CacheTTL: time.Hour})
	require.NoError(t, s.Open(context.Background()))
	s.Wait()
	t.Cleanup(s.Close)
	return s
}

func TestOpenLoadsFromNetworkAndSavesSnapshot(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	store := openStore(t, t.TempDir(), clock)
	backend := newFakeBackend(25)

	s := openSession(t, backend, store)
	assert.Equal(t, 3, backend.fetchCount())
	assert.NoError(t, s.LastError())
	assert.Equal(t, "Loaded 25 products", s.Status())

	v := s.View()
	assert.Equal(t, 25, v.Loaded)
	assert.True(t, v.AllLoaded)
	assert.False(t, v.FromCache)

	snap, err := store.LoadSnapshot(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Len(t, snap.Products, 25)
	assert.Equal(t, 25, snap.TotalRecords)
}

func TestOpenUsesFreshSnapshotAndRestoresUIState(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	store := openStore(t, dir, clock)
	backend := newFakeBackend(25)

	first := openSession(t, backend, store)
	first.SetFilters(context.Background(), catalog.Filters{Vendor: "Vendor1"})
	require.NoError(t, first.ToggleSort(context.Background(), catalog.FieldPrice))
	require.NoError(t, first.ToggleSort(context.Background(), catalog.FieldPrice))

	clock.t = clock.t.Add(30 * time.Minute)
	second := openSession(t, backend, store)
	assert.Equal(t, 3, backend.fetchCount(), "fresh snapshot must not hit the network")

	v := second.View()
	assert.True(t, v.FromCache)
	assert.Equal(t, "Vendor1", v.Filters.Vendor)
	assert.Equal(t, catalog.FieldPrice, v.SortKey)
	assert.False(t, v.SortAsc)
	require.NotEmpty(t, v.Items)
	for _, p := range v.Items {
		assert.Equal(t, "Vendor1", p.Vendor)
	}
	for i := 1; i < len(v.Items); i++ {
		a, _ := catalog.ParsePrice(v.Items[i-1].Price)
		b, _ := catalog.ParsePrice(v.Items[i].Price)
		assert.GreaterOrEqual(t, a, b)
	}
}

func TestExpiredSnapshotTriggersNetworkLoad(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	store := openStore(t, t.TempDir(), clock)
	backend := newFakeBackend(5)

	openSession(t, backend, store)
	require.Equal(t, 1, backend.fetchCount())

	clock.t = clock.t.Add(time.Hour + time.Second)
	s := openSession(t, backend, store)
	assert.Equal(t, 2, backend.fetchCount())
	assert.False(t, s.View().FromCache)
}

func TestLoadFailureSurfacesStatus(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	store := openStore(t, t.TempDir(), clock)
	backend := newFakeBackend(25)
	backend.failPage = 2

	s := openSession(t, backend, store)
	var se *api.StatusError
	require.ErrorAs(t, s.LastError(), &se)
	assert.Equal(t, 502, se.StatusCode)
	assert.True(t, strings.HasPrefix(s.Status(), "Error loading products: "))
	assert.Equal(t, 10, s.View().Loaded)

	_, err := store.LoadSnapshot(context.Background(), time.Hour)
	assert.ErrorIs(t, err, storage.ErrNotFound, "partial data is never cached")
}

func TestEditPatchesBothCollections(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	store := openStore(t, t.TempDir(), clock)
	backend := newFakeBackend(12)
	s := openSession(t, backend, store)
	ctx := context.Background()

	form, types, err := s.EditForm(4)
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultAlcoholType, form.AlcoholType)
	assert.Equal(t, []string{catalog.DefaultAlcoholType}, types)

	form.Vendor = "Brand New"
	form.Title = "Renamed"
	require.NoError(t, s.Edit(ctx, form))
	require.Len(t, backend.edits, 1)

	p, err := s.Product(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Brand New", p.Vendor)
	assert.Equal(t, "Renamed", p.Title)

	s.SetFilters(ctx, catalog.Filters{Vendor: "Brand New"})
	v := s.View()
	require.Len(t, v.Items, 1)
	assert.Equal(t, int64(4), v.Items[0].ID)

	snap, err := store.LoadSnapshot(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "Brand New", snap.Products[3].Vendor)
}

func TestFailedUpdatesLeaveStateUnchanged(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	store := openStore(t, t.TempDir(), clock)
	backend := newFakeBackend(5)
	s := openSession(t, backend, store)
	ctx := context.Background()

	backend.failEdit = true
	form, _, err := s.EditForm(2)
	require.NoError(t, err)
	form.Title = "Nope"
	assert.Error(t, s.Edit(ctx, form))

	p, err := s.Product(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Product 2", p.Title)

	assert.Error(t, s.SetIgnore(ctx, 999, true))

	require.NoError(t, s.SetIgnore(ctx, 3, true))
	p, err = s.Product(ctx, 3)
	require.NoError(t, err)
	assert.True(t, p.IgnoreNotifications)
	assert.True(t, backend.ignored[3])
}

func TestProductLookupFallsBackToBackend(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	store := openStore(t, t.TempDir(), clock)
	backend := newFakeBackend(3)
	s := New(backend, store, Options{})
	ctx := context.Background()

	p, err := s.Product(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Product 2", p.Title)

	_, err = s.Product(ctx, 42)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	_, _, err = s.EditForm(2)
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestPagingAndExport(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	store := openStore(t, t.TempDir(), clock)
	backend := newFakeBackend(120)
	s := openSession(t, backend, store)
	ctx := context.Background()

	require.NoError(t, s.GoToPage(ctx, 3))
	v := s.View()
	assert.Equal(t, 3, v.Page)
	assert.Equal(t, 3, v.TotalPages)
	require.Len(t, v.Items, 20)
	assert.Equal(t, int64(101), v.Items[0].ID)
	assert.Equal(t, 100, v.Offset)

	require.NoError(t, s.GoToPage(ctx, 99))
	assert.Equal(t, 3, s.View().Page)

	u, err := store.LoadUIState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, u.CurrentPage)

	s.SetFilters(ctx, catalog.Filters{Search: "product 11"})
	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, strings.Join(catalog.CSVHeader, ","), lines[0])
	// "Product 11" and "Product 110".."Product 119"
	assert.Len(t, lines, 12)
}

func TestRefreshReloadsAndKeepsFilters(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	store := openStore(t, t.TempDir(), clock)
	backend := newFakeBackend(15)
	s := openSession(t, backend, store)
	ctx := context.Background()

	s.SetFilters(ctx, catalog.Filters{Available: "1"})
	backend.mu.Lock()
	backend.records = backend.records[:4]
	backend.mu.Unlock()

	require.NoError(t, s.Refresh(ctx))
	s.Wait()

	v := s.View()
	assert.Equal(t, 4, v.Loaded)
	assert.Equal(t, "1", v.Filters.Available)
	assert.Equal(t, 2, v.Matching)

	s.ResetFilters(ctx)
	assert.Equal(t, 4, s.View().Matching)
}
