// Package worker grades requests on a bounded pool of goroutines.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/criyle/go-nbjudge/grader"
	"github.com/criyle/go-nbjudge/report"
	"golang.org/x/sync/errgroup"
)

const maxWaiting = 512

// ErrShutdown is the response error of requests not graded before Shutdown
var ErrShutdown = errors.New("worker is shut down")

// Config defines worker configuration
type Config struct {
	Parallelism   int
	GradeObserver func(Response)
}

// Worker defines interface for grader
type Worker interface {
	Start()
	Submit(context.Context, *Request) <-chan Response
	Execute(context.Context, *Request) <-chan Response
	Shutdown()
}

// worker defines grading worker
type worker struct {
	parallelism   int
	gradeObserver func(Response)

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
	submitMu  sync.RWMutex // Shutdown drains workCh only after in-flight submits
	workCh    chan workRequest
	done      chan struct{}
}

type workRequest struct {
	*Request
	context.Context
	resultCh chan<- Response
}

// New creates new worker
func New(conf Config) Worker {
	if conf.Parallelism <= 0 {
		conf.Parallelism = 1
	}
	return &worker{
		parallelism:   conf.Parallelism,
		gradeObserver: conf.GradeObserver,
	}
}

// Start starts worker loops with given parallelism
func (w *worker) Start() {
	w.startOnce.Do(func() {
		w.workCh = make(chan workRequest, maxWaiting)
		w.done = make(chan struct{})
		w.wg.Add(w.parallelism)
		for range w.parallelism {
			go w.loop()
		}
	})
}

// Submit queues a single request, the returned channel always receives
// exactly one response, also when the worker shuts down before grading it
func (w *worker) Submit(ctx context.Context, req *Request) <-chan Response {
	ch := make(chan Response, 1)

	w.submitMu.RLock()
	defer w.submitMu.RUnlock()

	select {
	case <-w.done:
		ch <- Response{RequestID: req.RequestID, Error: ErrShutdown}
		return ch
	default:
	}

	select {
	case w.workCh <- workRequest{
		Request:  req,
		Context:  ctx,
		resultCh: ch,
	}:
	case <-ctx.Done():
		ch <- Response{RequestID: req.RequestID, Error: ctx.Err()}
	case <-w.done:
		ch <- Response{RequestID: req.RequestID, Error: ErrShutdown}
	}
	return ch
}

// Execute will grade the request in new goroutine (bypass the parallelism limit)
func (w *worker) Execute(ctx context.Context, req *Request) <-chan Response {
	ch := make(chan Response, 1)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.workDoGrade(workRequest{
			Request:  req,
			Context:  ctx,
			resultCh: ch,
		})
	}()
	return ch
}

// Shutdown waits all worker to finish, queued requests are answered with
// ErrShutdown
func (w *worker) Shutdown() {
	w.stopOnce.Do(func() {
		if w.done == nil {
			return
		}
		close(w.done)
		w.wg.Wait()

		w.submitMu.Lock()
		defer w.submitMu.Unlock()
		for {
			select {
			case req := <-w.workCh:
				w.reject(req, ErrShutdown)
			default:
				return
			}
		}
	})
}

func (w *worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case req, ok := <-w.workCh:
			if !ok {
				return
			}
			w.workDoGrade(req)
		case <-w.done:
			return
		}
	}
}

func (w *worker) reject(req workRequest, err error) {
	rt := Response{RequestID: req.RequestID, Error: err}
	if w.gradeObserver != nil {
		w.gradeObserver(rt)
	}
	req.resultCh <- rt
}

func (w *worker) workDoGrade(req workRequest) {
	var rt Response
	if err := req.Context.Err(); err != nil {
		rt.Error = err
	} else {
		rt = Grade(req.Request)
	}
	rt.RequestID = req.RequestID
	if w.gradeObserver != nil {
		w.gradeObserver(rt)
	}
	req.resultCh <- rt
}

// Grade grades a single request in the calling goroutine
func Grade(req *Request) Response {
	start := time.Now()
	r := grader.Grade(req.Execution, req.Spec)
	rep := report.Render(r)
	return Response{
		RequestID: req.RequestID,
		Result:    r,
		Report:    rep,
		Time:      time.Since(start),
	}
}

// GradeAll grades a batch with at most parallelism requests in flight.
// Responses are in request order. It stops at the first cancellation.
func GradeAll(ctx context.Context, parallelism int, reqs []*Request) ([]Response, error) {
	rt := make([]Response, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rt[i] = Grade(req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rt, nil
}
