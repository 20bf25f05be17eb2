package engine

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// workerPool runs one goroutine per shard, each draining its own bounded
// queue. Jobs submitted under the same key land on the same shard and run in
// submission order.
type workerPool[T any] struct {
	shards  []chan T
	process func(ctx context.Context, t T)
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// newWorkerPool creates and starts a pool with n shards of queue capacity depth.
func newWorkerPool[T any](ctx context.Context, n, depth int, fn func(context.Context, T)) *workerPool[T] {
	n = max(n, 1)
	p := &workerPool[T]{
		shards:  make([]chan T, n),
		process: fn,
	}
	for i := range p.shards {
		q := make(chan T, depth)
		p.shards[i] = q
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx, q)
		}()
	}
	return p
}

func (p *workerPool[T]) run(ctx context.Context, q <-chan T) {
	for {
		select {
		case t, ok := <-q:
			if !ok {
				return
			}
			p.process(ctx, t)
		case <-ctx.Done():
			return
		}
	}
}

func (p *workerPool[T]) shardFor(key string) chan T {
	return p.shards[xxhash.Sum64String(key)%uint64(len(p.shards))]
}

// Submit enqueues a job on key's shard without blocking (returns false if
// the shard is full or the pool is drained).
func (p *workerPool[T]) Submit(key string, t T) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.shardFor(key) <- t:
		return true
	default:
		return false
	}
}

// Drain closes every queue and waits for the workers to finish.
func (p *workerPool[T]) Drain() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, q := range p.shards {
		close(q)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// QueueLen returns the length of the fullest shard queue.
func (p *workerPool[T]) QueueLen() int {
	n := 0
	for _, q := range p.shards {
		n = max(n, len(q))
	}
	return n
}

// QueueCap returns the capacity of one shard queue.
func (p *workerPool[T]) QueueCap() int {
	return cap(p.shards[0])
}

// Shards returns the shard count.
func (p *workerPool[T]) Shards() int {
	return len(p.shards)
}
