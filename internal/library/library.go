// Package library keeps a resident snapshot of the published prompt library
// and answers searches and tag queries from it.
//
// The snapshot moves through explicit stages. It starts Uninitialized, is
// loaded from storage on first use (Hydrating) and serves reads once Ready.
// Writes call Invalidate, which drops the snapshot; the next read hydrates
// again. Concurrent reads during a hydration share a single load.
package library

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dsjohal14/promptlib/internal/libs/obs"
	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/dsjohal14/promptlib/internal/scope/search"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Stage is the lifecycle state of the snapshot.
type Stage int

// Snapshot stages
const (
	Uninitialized Stage = iota
	Hydrating
	Ready
)

func (s Stage) String() string {
	switch s {
	case Hydrating:
		return "hydrating"
	case Ready:
		return "ready"
	}
	return "uninitialized"
}

// hydrateTimeout bounds a load that outlives the request that started it.
const hydrateTimeout = 30 * time.Second

// Source is the storage the snapshot is loaded from. db.Storage satisfies it.
type Source interface {
	ListPrompts(ctx context.Context, f db.PromptFilter) ([]prompt.Prompt, int, error)
	ListCategories(ctx context.Context) ([]prompt.Category, error)
}

// Snapshot is an immutable view of the library. Callers must not modify it.
type Snapshot struct {
	Prompts    []prompt.Prompt
	Categories []prompt.Category
	LoadedAt   time.Time
}

// Library serves reads from the current snapshot.
type Library struct {
	source  Source
	metrics *obs.Metrics
	logger  zerolog.Logger
	group   singleflight.Group

	mu         sync.RWMutex
	stage      Stage
	snapshot   *Snapshot
	generation uint64
}

// New creates an uninitialized library. metrics may be nil.
func New(source Source, metrics *obs.Metrics) *Library {
	return &Library{
		source:  source,
		metrics: metrics,
		logger:  obs.Logger("library"),
	}
}

// Stage returns the current lifecycle stage.
func (l *Library) Stage() Stage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stage
}

// Snapshot returns the ready snapshot, hydrating it first if needed.
func (l *Library) Snapshot(ctx context.Context) (*Snapshot, error) {
	l.mu.RLock()
	if l.stage == Ready {
		snap := l.snapshot
		l.mu.RUnlock()
		return snap, nil
	}
	l.mu.RUnlock()

	ch := l.group.DoChan("hydrate", func() (any, error) {
		return l.hydrate()
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// hydrate loads a snapshot. It is detached from any single caller so a
// canceled request does not fail the others waiting on the same load.
func (l *Library) hydrate() (*Snapshot, error) {
	l.mu.Lock()
	if l.stage == Ready {
		snap := l.snapshot
		l.mu.Unlock()
		return snap, nil
	}
	gen := l.generation
	l.stage = Hydrating
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), hydrateTimeout)
	defer cancel()

	start := time.Now()
	snap, err := l.load(ctx)
	if err != nil {
		l.mu.Lock()
		if l.generation == gen {
			l.stage = Uninitialized
		}
		l.mu.Unlock()
		l.logger.Error().Err(err).Msg("hydration failed")
		return nil, err
	}

	l.mu.Lock()
	if l.generation == gen {
		l.snapshot = snap
		l.stage = Ready
	}
	l.mu.Unlock()

	l.metrics.ObserveHydration()
	l.logger.Debug().
		Int("prompts", len(snap.Prompts)).
		Int("categories", len(snap.Categories)).
		Dur("took", time.Since(start)).
		Msg("library hydrated")
	return snap, nil
}

func (l *Library) load(ctx context.Context) (*Snapshot, error) {
	prompts, _, err := l.source.ListPrompts(ctx, db.PromptFilter{Status: prompt.StatusPublished})
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	categories, err := l.source.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return &Snapshot{Prompts: prompts, Categories: categories, LoadedAt: time.Now()}, nil
}

// Invalidate drops the snapshot. A hydration already in flight still
// answers its waiters but is not installed.
func (l *Library) Invalidate() {
	l.mu.Lock()
	l.generation++
	l.stage = Uninitialized
	l.snapshot = nil
	l.mu.Unlock()
	l.group.Forget("hydrate")
}

// Search runs the retrieval pipeline over the published prompts.
func (l *Library) Search(ctx context.Context, q search.Query) ([]prompt.Prompt, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	results := search.Search(snap.Prompts, q)
	l.metrics.ObserveSearch(len(results))
	return results, nil
}

// Tags returns every tag used by a published prompt, sorted.
func (l *Library) Tags(ctx context.Context) ([]string, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return search.ExtractTags(snap.Prompts), nil
}
