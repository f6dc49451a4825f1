package recurring

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"
)

var ErrPoolClosed = stderrors.New("recurring pool is shut down")

// Job asks the pool to materialize one user's obligations as of Now.
type Job struct {
	UserID int64
	Now    time.Time
}

type PoolConfig struct {
	MaxWorkers int
	QueueSize  int
}

type worker struct {
	id         int
	workerPool chan chan Job
	jobChannel chan Job
	logger     *slog.Logger
}

func (w *worker) start(pool *Pool) {
	pool.wg.Add(1)
	go func() {
		defer pool.wg.Done()

		for {
			select {
			case w.workerPool <- w.jobChannel:
			case <-pool.stop.Done():
				return
			}

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("worker processing job", "worker_id", w.id, "user_id", job.UserID)
				pool.handler(pool.ctx, job)
			case <-pool.stop.Done():
				w.logger.Debug("worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

// Pool is a bounded dispatcher: idle workers register their job channel and
// the dispatcher hands each queued job to the next idle worker.
type Pool struct {
	handler    func(ctx context.Context, job Job)
	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	logger     *slog.Logger

	ctx        context.Context
	stop       context.Context
	cancel     context.CancelFunc
	dispatched chan struct{}
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// NewPool starts the workers. Handlers run with ctx, which Shutdown does not cancel.
func NewPool(ctx context.Context, cfg PoolConfig, handler func(ctx context.Context, job Job), logger *slog.Logger) *Pool {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	stop, cancel := context.WithCancel(context.Background())
	p := &Pool{
		handler:    handler,
		jobQueue:   make(chan Job, queueSize),
		workerPool: make(chan chan Job, maxWorkers),
		maxWorkers: maxWorkers,
		logger:     logger,
		ctx:        ctx,
		stop:       stop,
		cancel:     cancel,
		dispatched: make(chan struct{}),
	}

	for i := 0; i < maxWorkers; i++ {
		w := &worker{id: i, workerPool: p.workerPool, jobChannel: make(chan Job), logger: logger}
		w.start(p)
	}
	go p.dispatch()

	logger.Debug("recurring worker pool started", "max_workers", maxWorkers, "queue_size", queueSize)
	return p
}

func (p *Pool) dispatch() {
	defer close(p.dispatched)

	for job := range p.jobQueue {
		select {
		case jobChannel := <-p.workerPool:
			jobChannel <- job
		case <-p.stop.Done():
			return
		}
	}
}

// Submit queues a job, blocking while the queue is full.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs, lets queued jobs finish and waits for the workers.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobQueue)
		p.mu.Unlock()

		<-p.dispatched
		p.cancel()
		p.wg.Wait()
		p.logger.Debug("recurring worker pool stopped")
	})
}
