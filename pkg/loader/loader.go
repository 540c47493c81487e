// Package loader pulls the product dataset from the backend in large chunks
// and accumulates it into a catalog.State.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sw33tLie/shopscope/pkg/api"
	"github.com/sw33tLie/shopscope/pkg/catalog"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// nopLocker is used when the caller owns the state exclusively.
type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// Source is the part of the backend client the loader needs.
type Source interface {
	FetchProducts(ctx context.Context, page, perPage int) (*api.Chunk, error)
}

// Progress is reported after every chunk has been merged into the state.
type Progress struct {
	Page    int
	Fetched int // records in this chunk
	Loaded  int // resident records after the merge
	Total   int
	Done    bool
}

type Loader struct {
	Source    Source
	ChunkSize int         // defaults to catalog.ChunkSize if <= 0
	Log       Logger      // optional; nil = no logging
	Locker    sync.Locker // optional; guards the state while a chunk is merged

	// OnChunk is called after each chunk is merged, outside the lock.
	OnChunk func(Progress)
}

// Load requests chunk after chunk, starting at the page that follows the
// records already resident, until the backend total is reached or a chunk
// comes back empty. Pages are counted by the loop, so a short chunk never
// causes the same page to be requested twice. Each chunk is merged with
// State.Append and the view is re-derived. The first failing request aborts
// the chain; nothing is retried here.
func (l *Loader) Load(ctx context.Context, st *catalog.State) error {
	if l.Source == nil {
		return errors.New("loader: no source")
	}
	log := l.Log
	if log == nil {
		log = nopLogger{}
	}
	var mu sync.Locker = nopLocker{}
	if l.Locker != nil {
		mu = l.Locker
	}
	size := l.ChunkSize
	if size <= 0 {
		size = catalog.ChunkSize
	}

	mu.Lock()
	page := len(st.Products)/size + 1
	mu.Unlock()

	for ; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		mu.Lock()
		have, done := len(st.Products), st.AllLoaded
		mu.Unlock()
		if done {
			return nil
		}

		log.Debugf("Fetching products chunk %d (%d resident)", page, have)
		chunk, err := l.Source.FetchProducts(ctx, page, size)
		if err != nil {
			return fmt.Errorf("fetch chunk %d: %w", page, err)
		}

		mu.Lock()
		if added := st.Append(chunk.Products, chunk.Total); added < len(chunk.Products) {
			log.Warnf("Skipped %d already resident products in chunk %d", len(chunk.Products)-added, page)
		}
		if len(chunk.Products) == 0 && !st.AllLoaded {
			log.Warnf("Backend returned an empty chunk at page %d with %d of %d records loaded", page, len(st.Products), chunk.Total)
			st.TotalRecords = len(st.Products)
			st.AllLoaded = true
		}
		st.ApplyFilters()
		progress := Progress{
			Page:    page,
			Fetched: len(chunk.Products),
			Loaded:  len(st.Products),
			Total:   st.TotalRecords,
			Done:    st.AllLoaded,
		}
		mu.Unlock()

		if l.OnChunk != nil {
			l.OnChunk(progress)
		}
		if progress.Done {
			log.Debugf("Loaded all %d products", progress.Loaded)
			return nil
		}
	}
}
