package scheduler

import (
	"context"
	"fmt"
	"sync"
)

// Work is one read submitted to the pool.
type Work[T any] func(ctx context.Context) (T, error)

// Result carries what a Work returned.
type Result[T any] struct {
	Data T
	Err  error
}

// Future hands back the result of a submitted Work. C is buffered, so a
// caller may drop the future without leaking the worker.
type Future[T any] struct {
	out    chan T
	cancel context.CancelFunc
}

func (f *Future[T]) C() chan T { return f.out }

// Stop cancels the context of this item only.
func (f *Future[T]) Stop() { f.cancel() }

type task struct {
	run Work[any]
	out chan Result[any]
	ctx context.Context
}

// Scheduler is a fixed-size pool for the read-ahead queries the pipeline
// issues while a stage prepares its inputs. Writes never go through it;
// the single-writer model stays with the stages.
type Scheduler struct {
	submit     chan task
	freed      chan struct{}
	quit       chan struct{}
	drained    chan struct{}
	rootCtx    context.Context
	rootCancel context.CancelFunc
	inflight   sync.WaitGroup
	closeOnce  sync.Once
	slots      int
}

func NewScheduler(workers int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		submit:     make(chan task),
		freed:      make(chan struct{}, workers),
		quit:       make(chan struct{}),
		drained:    make(chan struct{}),
		rootCtx:    ctx,
		rootCancel: cancel,
		slots:      workers,
	}
	go s.loop()
	return s
}

// AddWork queues w and returns its future. After Close the future
// resolves immediately with context.Canceled.
func (s *Scheduler) AddWork(w Work[any]) *Future[Result[any]] {
	out := make(chan Result[any], 1)
	ctx, cancel := context.WithCancel(s.rootCtx)

	select {
	case <-s.rootCtx.Done():
		out <- Result[any]{Err: context.Canceled}
	case s.submit <- task{run: w, out: out, ctx: ctx}:
	}

	return &Future[Result[any]]{out: out, cancel: cancel}
}

// Close cancels pending work and waits for in-flight items to finish.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		s.rootCancel()
		s.quit <- struct{}{}
		<-s.drained
	})
}

func (s *Scheduler) loop() {
	defer close(s.drained)

	var pending []task
	for {
		select {
		case t := <-s.submit:
			pending = append(pending, t)
		case <-s.freed:
			s.slots++
		case <-s.quit:
			s.inflight.Wait()
			return
		}
		for s.slots > 0 && len(pending) > 0 {
			t := pending[0]
			pending = pending[1:]
			s.slots--
			s.inflight.Add(1)
			go s.execute(t)
		}
	}
}

func (s *Scheduler) execute(t task) {
	defer func() {
		if r := recover(); r != nil {
			t.out <- Result[any]{Err: fmt.Errorf("prefetch panicked: %v", r)}
		}
		s.freed <- struct{}{}
		s.inflight.Done()
	}()

	data, err := t.run(t.ctx)
	t.out <- Result[any]{Data: data, Err: err}
}
