// Package session ties the backend client, the chunk loader, local storage
// and the listing state together. Every user action is one method that does
// the work and then calls the matching persistence hook.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sw33tLie/shopscope/pkg/api"
	"github.com/sw33tLie/shopscope/pkg/catalog"
	"github.com/sw33tLie/shopscope/pkg/loader"
	"github.com/sw33tLie/shopscope/pkg/storage"
)

var ErrUnknownProduct = errors.New("unknown product")

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Backend is the subset of *api.Client the session uses.
type Backend interface {
	loader.Source
	Product(ctx context.Context, id int64) (*catalog.Product, error)
	SetIgnore(ctx context.Context, id int64, ignore bool) error
	EditProduct(ctx context.Context, form catalog.EditForm) error
}

// Store is the subset of *storage.DB the session uses.
type Store interface {
	SaveUIState(ctx context.Context, u storage.UIState) error
	LoadUIState(ctx context.Context) (storage.UIState, error)
	SaveSnapshot(ctx context.Context, products []*catalog.Product, total int) error
	LoadSnapshot(ctx context.Context, ttl time.Duration) (*storage.Snapshot, error)
	ClearSnapshot(ctx context.Context) error
}

type Options struct {
	ChunkSize int           // defaults to catalog.ChunkSize
	CacheTTL  time.Duration // defaults to storage.DefaultCacheTTL
	Log       Logger        // optional; nil = no logging
}

type Session struct {
	backend Backend
	store   Store
	ttl     time.Duration
	chunk   int
	log     Logger

	mu        sync.Mutex
	st        *catalog.State
	status    string
	lastErr   error
	fromCache bool
	loading   bool
	done      chan struct{}
	cancel    context.CancelFunc
}

func New(backend Backend, store Store, opts Options) *Session {
	s := &Session{
		backend: backend,
		store:   store,
		ttl:     opts.CacheTTL,
		chunk:   opts.ChunkSize,
		log:     opts.Log,
		st:      catalog.NewState(),
	}
	if s.ttl <= 0 {
		s.ttl = storage.DefaultCacheTTL
	}
	if s.chunk <= 0 {
		s.chunk = catalog.ChunkSize
	}
	if s.log == nil {
		s.log = nopLogger{}
	}
	return s
}

// Open restores the saved UI state, then installs a fresh snapshot if one
// exists or starts the network load otherwise. The UI state is always in
// place before the first chunk is rendered.
func (s *Session) Open(ctx context.Context) error {
	if u, err := s.store.LoadUIState(ctx); err == nil {
		s.mu.Lock()
		u.ApplyTo(s.st)
		s.mu.Unlock()
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.log.Warnf("Could not restore UI state: %v", err)
	}

	snap, err := s.store.LoadSnapshot(ctx, s.ttl)
	if err == nil {
		s.mu.Lock()
		s.st.Replace(snap.Products, snap.TotalRecords)
		s.st.ApplyFilters()
		s.fromCache = true
		s.status = fmt.Sprintf("Loaded %d products from cache", len(s.st.Products))
		s.mu.Unlock()
		s.log.Debugf("Using cached snapshot with %d products", len(snap.Products))
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		s.log.Debugf("Ignoring cached snapshot: %v", err)
	}
	return s.Load(ctx)
}

// Load starts the chunk chain if it is not already running. It returns once
// the first chunk is resident (or the chain failed); the rest of the dataset
// keeps arriving in the background. Use Wait to join it.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	if s.st.AllLoaded {
		s.mu.Unlock()
		return nil
	}
	bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	s.loading = true
	s.done = done
	s.cancel = cancel
	s.lastErr = nil
	s.fromCache = false
	s.status = "Loading products..."
	s.mu.Unlock()

	first := make(chan error, 1)
	var once sync.Once
	l := &loader.Loader{
		Source:    s.backend,
		ChunkSize: s.chunk,
		Log:       s.log,
		Locker:    &s.mu,
		OnChunk: func(p loader.Progress) {
			s.mu.Lock()
			if !p.Done {
				s.status = fmt.Sprintf("Loaded %d of %d products...", p.Loaded, p.Total)
			}
			s.mu.Unlock()
			once.Do(func() { first <- nil })
		},
	}

	go func() {
		defer cancel()
		err := l.Load(bg, s.st)
		s.finishLoad(bg, err)
		once.Do(func() { first <- err })
		close(done)
	}()

	select {
	case err := <-first:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) finishLoad(ctx context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.cancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.status = "Loading cancelled"
			return
		}
		s.lastErr = err
		s.status = "Error loading products: " + err.Error()
		s.log.Errorf("Loading products failed: %v", err)
		return
	}
	s.status = fmt.Sprintf("Loaded %d products", len(s.st.Products))
	s.saveSnapshotLocked(ctx)
}

// saveSnapshotLocked writes the dataset to local storage once it is complete.
func (s *Session) saveSnapshotLocked(ctx context.Context) {
	if !s.st.AllLoaded {
		return
	}
	if err := s.store.SaveSnapshot(ctx, s.st.Products, s.st.TotalRecords); err != nil {
		s.log.Warnf("Could not save product snapshot: %v", err)
	}
}

// persistLocked writes the filter/sort/page choices to local storage.
func (s *Session) persistLocked(ctx context.Context) {
	if err := s.store.SaveUIState(ctx, storage.CaptureUIState(s.st)); err != nil {
		s.log.Warnf("Could not save UI state: %v", err)
	}
}

// Wait blocks until the running load, if any, has finished.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close stops a running load and waits for it.
func (s *Session) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.Wait()
}

// Status is the message shown in the status line.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastError returns the error that aborted the most recent load.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) SetFilters(ctx context.Context, f catalog.Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.SetFilters(f)
	s.persistLocked(ctx)
}

// ResetFilters clears every filter value.
func (s *Session) ResetFilters(ctx context.Context) {
	s.SetFilters(ctx, catalog.Filters{})
}

// ToggleSort handles a click on the header of column key.
func (s *Session) ToggleSort(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.ToggleSort(key); err != nil {
		return err
	}
	s.persistLocked(ctx)
	return nil
}

// GoToPage moves to page p. If the page reaches past the resident data and
// no load is running, the chunk chain is resumed.
func (s *Session) GoToPage(ctx context.Context, p int) error {
	s.mu.Lock()
	s.st.SetPage(p)
	s.persistLocked(ctx)
	resume := s.st.NeedsMore() && !s.loading
	s.mu.Unlock()

	if resume {
		return s.Load(ctx)
	}
	return nil
}

// SetIgnore stores the ignore flag on the backend, then patches the
// resident record. On failure local state is left untouched.
func (s *Session) SetIgnore(ctx context.Context, id int64, ignore bool) error {
	if err := s.backend.SetIgnore(ctx, id, ignore); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.st.PatchIgnore(id, ignore) {
		s.log.Debugf("Product %d updated on backend but not resident", id)
		return nil
	}
	s.saveSnapshotLocked(ctx)
	return nil
}

// Edit submits form to the backend, then patches the resident record.
func (s *Session) Edit(ctx context.Context, form catalog.EditForm) error {
	if err := s.backend.EditProduct(ctx, form); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.st.PatchEdit(form) {
		s.log.Debugf("Product %d updated on backend but not resident", form.ID)
		return nil
	}
	s.saveSnapshotLocked(ctx)
	return nil
}

// Refresh drops the resident dataset and the snapshot and loads again from
// the first chunk. Filter/sort/page choices survive.
func (s *Session) Refresh(ctx context.Context) error {
	s.Close()
	if err := s.store.ClearSnapshot(ctx); err != nil {
		s.log.Warnf("Could not clear product snapshot: %v", err)
	}
	s.mu.Lock()
	s.st.Reset()
	s.st.ApplyFilters()
	s.mu.Unlock()
	return s.Load(ctx)
}

// Export writes the current filtered and sorted view as CSV.
func (s *Session) Export(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.WriteCSV(w, s.st.Filtered)
}

// Product returns a copy of the record with the given id, asking the
// backend when it is not resident.
func (s *Session) Product(ctx context.Context, id int64) (*catalog.Product, error) {
	s.mu.Lock()
	p := s.st.ByID(id)
	if p != nil {
		cp := *p
		s.mu.Unlock()
		return &cp, nil
	}
	s.mu.Unlock()

	p, err := s.backend.Product(ctx, id)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.StatusCode == 404 {
			return nil, fmt.Errorf("%w: %d", ErrUnknownProduct, id)
		}
		return nil, err
	}
	return p, nil
}

// EditForm returns the pre-filled edit form for a resident record and the
// alcohol types the form offers.
func (s *Session) EditForm(id int64) (catalog.EditForm, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.st.ByID(id)
	if p == nil {
		return catalog.EditForm{}, nil, fmt.Errorf("%w: %d", ErrUnknownProduct, id)
	}
	return catalog.NewEditForm(p), catalog.AlcoholTypeOptions(s.st.Products), nil
}
