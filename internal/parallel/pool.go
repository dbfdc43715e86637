// Package parallel runs scanline spans on a fixed set of goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs tasks on a fixed number of goroutines. Each worker owns a
// queue and steals from the others when its own queue is empty, which
// keeps rows of uneven cost balanced.
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool starts a pool with the given number of workers. Zero or a
// negative count uses GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	depth := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), depth)
	}
	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case task := <-own:
			task()
			continue
		default:
		}
		if task := p.steal(id); task != nil {
			task()
			continue
		}
		select {
		case <-p.done:
			p.drain(own)
			return
		case task := <-own:
			task()
		}
	}
}

func (p *Pool) drain(q chan func()) {
	for {
		select {
		case task := <-q:
			task()
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case task := <-p.queues[i]:
			return task
		default:
		}
	}
	return nil
}

// Run executes every task and waits for all of them. Tasks are dealt
// round-robin to the workers. On a closed pool Run executes nothing.
func (p *Pool) Run(tasks []func()) {
	if len(tasks) == 0 || !p.running.Load() {
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, task := range tasks {
		wrapped := func() {
			defer wg.Done()
			task()
		}
		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			wg.Done()
		}
	}
	wg.Wait()
}

// Close stops the pool after queued tasks finish. It is safe to call
// more than once.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *Pool) Workers() int { return p.workers }
