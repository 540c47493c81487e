package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sw33tLie/shopscope/pkg/catalog"
)

const (
	StateKey    = "shopscopeProductsStateV2"
	ProductsKey = "shopscopeProductsDataV2"

	SnapshotVersion = 2
	DefaultCacheTTL = time.Hour
)

var (
	ErrSnapshotExpired = errors.New("product snapshot expired")
	ErrSnapshotInvalid = errors.New("product snapshot invalid")
)

// UIState is the persisted filter/sort/page state of the listing.
type UIState struct {
	catalog.Filters
	SortKey     string `json:"sortKey,omitempty"`
	SortAsc     *bool  `json:"sortAsc,omitempty"`
	CurrentPage int    `json:"currentPage,omitempty"`
}

// CaptureUIState reads the persisted fields out of st.
func CaptureUIState(st *catalog.State) UIState {
	asc := st.SortAsc
	return UIState{
		Filters:     st.Filters,
		SortKey:     st.SortKey,
		SortAsc:     &asc,
		CurrentPage: st.Page,
	}
}

// ApplyTo restores the saved choices onto st. Fields that were never saved
// keep their current values. The view is not re-derived.
func (u UIState) ApplyTo(st *catalog.State) {
	st.Filters = u.Filters
	if u.SortKey != "" && catalog.IsField(u.SortKey) {
		st.SortKey = u.SortKey
	}
	if u.SortAsc != nil {
		st.SortAsc = *u.SortAsc
	}
	if u.CurrentPage > 0 {
		st.Page = u.CurrentPage
	}
}

func (d *DB) SaveUIState(ctx context.Context, u UIState) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return d.Set(ctx, StateKey, string(b))
}

// LoadUIState returns the saved state, or ErrNotFound.
func (d *DB) LoadUIState(ctx context.Context) (UIState, error) {
	raw, err := d.Get(ctx, StateKey)
	if err != nil {
		return UIState{}, err
	}
	var u UIState
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return UIState{}, fmt.Errorf("decode ui state: %w", err)
	}
	return u, nil
}

// Snapshot is a complete copy of the dataset.
type Snapshot struct {
	Products     []*catalog.Product `json:"products"`
	TotalRecords int                `json:"totalRecords"`
	Timestamp    int64              `json:"timestamp"` // Unix milliseconds
	Version      int                `json:"version"`
}

// SaveSnapshot stores products as the current dataset snapshot.
func (d *DB) SaveSnapshot(ctx context.Context, products []*catalog.Product, total int) error {
	if products == nil {
		// An empty catalog is stored as [] so it loads back as a valid snapshot.
		products = []*catalog.Product{}
	}
	b, err := json.Marshal(Snapshot{
		Products:     products,
		TotalRecords: total,
		Timestamp:    d.now().UnixMilli(),
		Version:      SnapshotVersion,
	})
	if err != nil {
		return err
	}
	return d.Set(ctx, ProductsKey, string(b))
}

// LoadSnapshot returns the stored snapshot if it is younger than ttl.
// A missing snapshot yields ErrNotFound, an old one ErrSnapshotExpired and
// an unreadable one ErrSnapshotInvalid.
func (d *DB) LoadSnapshot(ctx context.Context, ttl time.Duration) (*Snapshot, error) {
	raw, err := d.Get(ctx, ProductsKey)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if snap.Products == nil || snap.Timestamp == 0 || snap.Version != SnapshotVersion {
		return nil, ErrSnapshotInvalid
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	age := d.now().Sub(time.UnixMilli(snap.Timestamp))
	if age > ttl {
		return nil, ErrSnapshotExpired
	}
	if snap.TotalRecords == 0 {
		snap.TotalRecords = len(snap.Products)
	}
	return &snap, nil
}

// ClearSnapshot drops the stored dataset.
func (d *DB) ClearSnapshot(ctx context.Context) error {
	return d.Delete(ctx, ProductsKey)
}
