package mock

import (
	"context"
	"sync"
	"time"

	"github.com/jamesprial/discordmock/apierr"
)

// Outcome is a waiter's verdict on one event.
type Outcome int

const (
	// Ignore leaves the waiter untouched.
	Ignore Outcome = iota
	// Progress keeps waiting and pushes the deadline out by the timeout.
	Progress
	// Resolve settles the waiter with the returned value.
	Resolve
)

// WaitSpec describes what a Waiter waits for.
type WaitSpec[T any] struct {
	// Op names the operation in timeout errors.
	Op string
	// Timeout bounds the wait, measured from Await or the last Progress.
	Timeout time.Duration
	// Match inspects every event the client emits.
	Match func(Event) (T, Outcome)
	// Fallback, when set, produces the result on timeout instead of a
	// TimeoutError.
	Fallback func() (T, error)
}

// Waiter is a pending result correlated with a future client event. The
// event handler and the timer are torn down together when it settles.
type Waiter[T any] struct {
	spec WaitSpec[T]
	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	settled bool
	timer   *time.Timer
	remove  func()

	value T
	err   error
}

// Await registers a waiter on c. Register it before triggering the work
// whose event it waits for.
func Await[T any](c *Client, spec WaitSpec[T]) *Waiter[T] {
	w := &Waiter[T]{spec: spec, done: make(chan struct{})}

	remove := c.emitter.addWaiter(func(_ *Client, ev Event) {
		v, outcome := spec.Match(ev)
		switch outcome {
		case Progress:
			w.Extend()
		case Resolve:
			w.settle(v, nil)
		}
	})
	timer := time.AfterFunc(spec.Timeout, w.expire)

	w.mu.Lock()
	w.remove, w.timer = remove, timer
	settled := w.settled
	w.mu.Unlock()
	if settled {
		timer.Stop()
		remove()
	}
	return w
}

// Wait blocks until the waiter settles or ctx is done. Cancelling ctx
// cancels the waiter.
func (w *Waiter[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-w.done:
		return w.value, w.err
	case <-ctx.Done():
		w.settle(*new(T), ctx.Err())
		<-w.done
		return w.value, w.err
	}
}

// Done is closed once the waiter settles.
func (w *Waiter[T]) Done() <-chan struct{} { return w.done }

// Extend restarts the timeout from now. Repeated calls do not stack.
func (w *Waiter[T]) Extend() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.settled && w.timer != nil {
		w.timer.Reset(w.spec.Timeout)
	}
}

// Cancel settles the waiter with context.Canceled.
func (w *Waiter[T]) Cancel() {
	w.settle(*new(T), context.Canceled)
}

func (w *Waiter[T]) expire() {
	if w.spec.Fallback != nil {
		v, err := w.spec.Fallback()
		w.settle(v, err)
		return
	}
	w.settle(*new(T), &apierr.TimeoutError{Op: w.spec.Op, After: w.spec.Timeout})
}

func (w *Waiter[T]) settle(v T, err error) {
	w.once.Do(func() {
		w.mu.Lock()
		w.settled = true
		timer, remove := w.timer, w.remove
		w.mu.Unlock()

		if timer != nil {
			timer.Stop()
		}
		if remove != nil {
			remove()
		}
		w.value, w.err = v, err
		close(w.done)
	})
}
