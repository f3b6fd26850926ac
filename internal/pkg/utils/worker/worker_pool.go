package worker

import (
	"sync"
	"sync/atomic"
)

const defaultQueueSize = 64

// WorkerPool dispatches tasks round-robin across a fixed set of workers.
type WorkerPool struct {
	workers []*Worker
	next    atomic.Uint64
	mu      sync.RWMutex
	stopped bool
}

func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	pool := &WorkerPool{workers: make([]*Worker, numWorkers)}
	for i := 0; i < numWorkers; i++ {
		w := NewWorker(defaultQueueSize)
		w.Start()
		pool.workers[i] = w
	}
	return pool
}

// Submit queues task on the next worker. It reports false once the pool is stopped.
func (p *WorkerPool) Submit(task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	idx := p.next.Add(1) % uint64(len(p.workers))
	p.workers[idx].Submit(task)
	return true
}

// Stop drains queued tasks and stops every worker. Safe to call twice.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	for _, w := range p.workers {
		w.Stop()
	}
}
