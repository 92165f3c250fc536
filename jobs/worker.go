package jobs

import (
	"log/slog"
	"sync"
)

// Pool runs submitted tasks on a fixed number of goroutines. Submission
// is non-blocking: when the queue is full the task is rejected and the
// caller decides what to do with it.
type Pool struct {
	queue  chan func()
	wg     sync.WaitGroup
	size   int
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

func NewPool(size, queueDepth int, logger *slog.Logger) *Pool {
	if size < 1 {
		size = 1
	}

	return &Pool{
		queue:  make(chan func(), queueDepth),
		size:   size,
		logger: logger,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.queue {
				task()
			}
		}()
	}
	p.logger.Info("worker pool started", slog.Int("workers", p.size), slog.Int("queue", cap(p.queue)))
}

// Submit enqueues a task. It reports false when the queue is full or the
// pool has been stopped.
func (p *Pool) Submit(task func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}

	select {
	case p.queue <- task:
		return true
	default:
		return false
	}
}

// Stop closes the queue and waits for queued tasks to drain. Further
// submissions are rejected.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}
