// Package pool provides the shared worker budget used by the planner.
//
// A Pool bounds how many tasks run on their own goroutine at any time. A
// task submitted while the budget is exhausted runs inline on the caller's
// goroutine, so nested submissions (a chunk search fanning out its root
// branches) never wait for a slot and cannot deadlock.
package pool

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrTaskPanicked marks a task that panicked. The panic is recovered and the
// task counts as failed.
var ErrTaskPanicked = errors.New("task panicked")

// Pool is a bounded set of worker slots shared by all groups created from it.
type Pool struct {
	workers int64
	sem     *semaphore.Weighted
	closed  atomic.Bool

	spawned atomic.Int64
	inline  atomic.Int64
}

// New creates a pool with the given number of worker slots. A value <= 0
// means runtime.NumCPU().
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		workers: int64(workers),
		sem:     semaphore.NewWeighted(int64(workers)),
	}
}

// Workers returns the number of worker slots.
func (p *Pool) Workers() int {
	return int(p.workers)
}

// Close stops the pool from spawning new goroutines. Tasks already running
// finish normally; later submissions run inline.
func (p *Pool) Close() {
	p.closed.Store(true)
}

// Stats reports how many tasks got their own goroutine and how many ran
// inline on the submitting goroutine.
func (p *Pool) Stats() (spawned, inline int64) {
	return p.spawned.Load(), p.inline.Load()
}

// NewGroup returns an empty join group bound to this pool.
func (p *Pool) NewGroup() *Group {
	return &Group{pool: p}
}

// Group collects tasks so a caller can wait for all of them.
type Group struct {
	pool *Pool
	wg   sync.WaitGroup

	mu     sync.Mutex
	faults []error
}

// Go submits fn. It starts on a free worker slot if one is available and
// otherwise runs before Go returns.
func (g *Group) Go(fn func()) {
	p := g.pool
	if p == nil || p.closed.Load() || !p.sem.TryAcquire(1) {
		if p != nil {
			p.inline.Add(1)
		}
		g.run(fn)
		return
	}

	p.spawned.Add(1)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer p.sem.Release(1)
		g.run(fn)
	}()
}

// Wait blocks until every task submitted through Go has finished and
// returns the joined faults of tasks that panicked, or nil.
func (g *Group) Wait() error {
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.faults...)
}

// Faults returns the number of tasks that failed so far.
func (g *Group) Faults() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.faults)
}

func (g *Group) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			g.mu.Lock()
			g.faults = append(g.faults, fmt.Errorf("%w: %v", ErrTaskPanicked, r))
			g.mu.Unlock()
		}
	}()
	fn()
}
