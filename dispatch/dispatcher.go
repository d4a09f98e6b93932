// Package dispatch runs blocking tasks on background goroutines.
//
// Tasks are submitted under a key. Tasks with the same key run one at a time in
// submission order; tasks with different keys run concurrently, optionally bounded
// by a worker limit. Submit never blocks and every submitted task is completed
// exactly once, either by its own Execute or by Fail.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/emirpasic/gods/v2/queues/linkedlistqueue"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/semaphore"

	"github.com/fanny/fanny/envconfig"
	"github.com/fanny/fanny/logutil"
)

var (
	// ErrMaxQueue is delivered to tasks submitted while the queue is full.
	ErrMaxQueue = errors.New("dispatcher busy, maximum pending tasks exceeded")

	// ErrClosed is delivered to tasks submitted after Close.
	ErrClosed = errors.New("dispatcher closed")
)

// Task is one unit of blocking work.
type Task interface {
	// Name labels the task in logs and metrics.
	Name() string

	// Execute runs the task and completes it. The returned error is the one that
	// was delivered to the task's consumer, if any.
	Execute() error

	// Fail completes the task with err without executing it.
	Fail(err error)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxWorkers limits the number of tasks executing at once. 0 means no limit.
func WithMaxWorkers(n uint) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithMaxQueue limits the number of queued tasks. 0 means no limit.
func WithMaxQueue(n uint) Option {
	return func(d *Dispatcher) {
		d.maxQueue = int(n)
	}
}

// WithMetrics records task metrics.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// Dispatcher executes tasks per key in FIFO order.
type Dispatcher struct {
	// mu schuetzt lanes, pending und closed
	mu      sync.Mutex
	lanes   map[uuid.UUID]*lane
	pending int
	closed  bool

	wg       sync.WaitGroup
	sem      *semaphore.Weighted
	maxQueue int
	metrics  *Metrics
}

// lane ist die Warteschlange eines Schluessels. running ist true solange eine
// Goroutine die Warteschlange abarbeitet.
type lane struct {
	queue   *linkedlistqueue.Queue[*entry]
	running bool
}

type entry struct {
	id     uuid.UUID
	key    uuid.UUID
	task   Task
	queued time.Time
}

// New creates a dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{lanes: make(map[uuid.UUID]*lane)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDispatcher = sync.OnceValue(func() *Dispatcher {
	opts := []Option{
		WithMaxWorkers(envconfig.MaxWorkers()),
		WithMaxQueue(envconfig.MaxQueue()),
	}
	if envconfig.Metrics() {
		opts = append(opts, WithMetrics(NewMetrics(prometheus.DefaultRegisterer)))
	}
	return New(opts...)
})

// Default returns the process wide dispatcher configured from the environment.
func Default() *Dispatcher {
	return defaultDispatcher()
}

// Submit queues t under key and returns the id assigned to it.
func (d *Dispatcher) Submit(key uuid.UUID, t Task) uuid.UUID {
	e := &entry{id: uuid.New(), key: key, task: t, queued: time.Now()}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		slog.Debug("task submitted after close", "task", t.Name(), "key", key)
		t.Fail(ErrClosed)
		return e.id
	}
	if d.maxQueue > 0 && d.pending >= d.maxQueue {
		d.mu.Unlock()
		slog.Debug("task rejected, queue full", "task", t.Name(), "key", key, "pending", d.maxQueue)
		t.Fail(ErrMaxQueue)
		return e.id
	}

	l, ok := d.lanes[key]
	if !ok {
		l = &lane{queue: linkedlistqueue.New[*entry]()}
		d.lanes[key] = l
	}
	l.queue.Enqueue(e)
	d.pending++
	d.metrics.taskSubmitted(t.Name())
	d.metrics.setPending(d.pending)

	if !l.running {
		l.running = true
		d.wg.Add(1)
		go d.drain(key, l)
	}
	d.mu.Unlock()

	logutil.Trace("task queued", "task", t.Name(), "id", e.id, "key", key)
	return e.id
}

// drain arbeitet die Warteschlange eines Schluessels ab, bis sie leer ist.
func (d *Dispatcher) drain(key uuid.UUID, l *lane) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		e, ok := l.queue.Dequeue()
		if !ok {
			l.running = false
			delete(d.lanes, key)
			d.mu.Unlock()
			return
		}
		d.pending--
		d.metrics.setPending(d.pending)
		d.mu.Unlock()

		d.execute(e)
	}
}

func (d *Dispatcher) execute(e *entry) {
	if d.sem != nil {
		// Acquire mit Background-Context kann nicht fehlschlagen
		_ = d.sem.Acquire(context.Background(), 1)
		defer d.sem.Release(1)
	}

	start := time.Now()
	logutil.Trace("task started", "task", e.task.Name(), "id", e.id, "waited", start.Sub(e.queued))

	err := safeExecute(e)
	elapsed := time.Since(start)
	d.metrics.taskDone(e.task.Name(), err, elapsed)

	if err != nil {
		slog.Debug("task failed", "task", e.task.Name(), "id", e.id, "key", e.key, "duration", elapsed, "error", err)
		return
	}
	logutil.Trace("task completed", "task", e.task.Name(), "id", e.id, "duration", elapsed)
}

func safeExecute(e *entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", e.task.Name(), r)
			slog.Error("task panicked", "task", e.task.Name(), "id", e.id, "panic", r)
			e.task.Fail(err)
		}
	}()
	return e.task.Execute()
}

// Pending returns the number of queued tasks that have not started yet.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Close stops accepting tasks and waits until all queued tasks have completed or
// ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
