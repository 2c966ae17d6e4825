// Package parallel runs batch jobs on a fixed set of workers and counts
// their outcomes.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

type (
	// WorkerFunc schedules a job. A job that returns an error counts as failed.
	WorkerFunc func(func() error)
	// WaitFunc blocks until every scheduled job has finished and returns the
	// counts so far. With done set the workers are released; no job may be
	// scheduled afterwards.
	WaitFunc   func(done bool) Stats
	CancelFunc func()
)

type Stats struct {
	Processed uint64
	Failed    uint64
}

func (s Stats) Total() uint64 {
	return s.Processed + s.Failed
}

type Pool struct {
	workers   sync.WaitGroup
	jobs      sync.WaitGroup
	processed atomic.Uint64
	failed    atomic.Uint64

	Do     WorkerFunc
	Wait   WaitFunc
	Cancel CancelFunc
}

// Start returns a pool of numWorkers workers, GOMAXPROCS if numWorkers < 1.
// A single worker runs every job inline on the calling goroutine.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{}
	pool.Do = pool.run
	pool.Wait = func(bool) Stats {
		return pool.stats()
	}
	pool.Cancel = func() {}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.workers.Go(func() {
				for f := range workChan {
					f()
				}
			})
		}

		pool.Do = func(job func() error) {
			pool.jobs.Add(1)
			workChan <- func() {
				defer pool.jobs.Done()
				pool.run(job)
			}
		}

		pool.Wait = func(done bool) Stats {
			pool.jobs.Wait()
			if done {
				pool.Cancel()
				pool.workers.Wait()
			}
			return pool.stats()
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

func (p *Pool) run(job func() error) {
	if err := job(); err != nil {
		p.failed.Add(1)
		return
	}
	p.processed.Add(1)
}

func (p *Pool) stats() Stats {
	return Stats{Processed: p.processed.Load(), Failed: p.failed.Load()}
}
