// Package inflight keeps at most one request in flight per listing view.
//
// Starting a request on a View cancels the one before it. The outcome of a
// superseded request is never applied: its Ticket reports Cancelled whatever
// the fetch returned and however late it arrived.
package inflight

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by Run when a newer request on the same view
// took over before this one finished.
var ErrSuperseded = errors.New("request superseded")

type State int

const (
	Idle State = iota
	Loading
	Success
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// View is the request lifecycle of one listing view. The zero value is idle
// and ready to use.
type View struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State
}

// Ticket is the handle of one request started with View.Begin.
type Ticket struct {
	view   *View
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// Begin cancels the request currently in flight, if any, and starts a new
// one. The returned context is canceled when a later Begin supersedes it.
func (v *View) Begin(parent context.Context) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(parent)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancel != nil {
		v.cancel()
	}

	v.gen++
	v.cancel = cancel
	v.state = Loading

	return ctx, &Ticket{view: v, gen: v.gen, ctx: ctx, cancel: cancel}
}

// State returns the state of the most recent request.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.state
}

func (v *View) generation() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.gen
}

// Finish records the outcome of the ticket's request and reports the state
// it ended in. Only the latest, uncanceled ticket moves the view to Success
// or Failed; any other ticket ends Cancelled and leaves the view untouched.
func (t *Ticket) Finish(err error) State {
	defer t.cancel()

	v := t.view
	v.mu.Lock()
	defer v.mu.Unlock()

	if t.gen != v.gen || t.ctx.Err() != nil {
		if t.gen == v.gen {
			v.state = Cancelled
			v.cancel = nil
		}
		return Cancelled
	}

	v.cancel = nil
	if err != nil {
		v.state = Failed
		return Failed
	}

	v.state = Success
	return Success
}

// Current reports whether no newer request has been started on the view.
func (t *Ticket) Current() bool {
	return t.view.generation() == t.gen
}

// Run executes fetch as the view's newest request. It returns ErrSuperseded
// instead of the fetch outcome when the request was preempted or its
// context was canceled before the outcome could be applied.
func Run[T any](ctx context.Context, v *View, fetch func(ctx context.Context) (T, error)) (T, error) {
	ctx, ticket := v.Begin(ctx)

	res, err := fetch(ctx)

	if ticket.Finish(err) == Cancelled {
		var zero T
		return zero, ErrSuperseded
	}

	return res, err
}

// Discarded reports whether err means the request's outcome was thrown
// away: it was superseded or its caller went away.
func Discarded(err error) bool {
	return errors.Is(err, ErrSuperseded) || errors.Is(err, context.Canceled)
}

// Registry hands out one View per key. Views with nothing in flight are
// dropped so the registry only grows with concurrent requests.
type Registry struct {
	mu    sync.Mutex
	views map[string]*entry
}

type entry struct {
	view *View
	refs int
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*entry)}
}

// Do runs fetch on the view registered under key. See Run.
func Do[T any](ctx context.Context, r *Registry, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	v := r.acquire(key)
	defer r.release(key)

	return Run(ctx, v, fetch)
}

// Len returns the number of views with requests in flight.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.views)
}

func (r *Registry) acquire(key string) *View {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.views[key]
	if !ok {
		e = &entry{view: &View{}}
		r.views[key] = e
	}
	e.refs++

	return e.view
}

func (r *Registry) release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.views[key]
	if !ok {
		return
	}

	e.refs--
	if e.refs <= 0 {
		delete(r.views, key)
	}
}

// Key joins a session identifier and a view name into a registry key.
func Key(sessionID, view string) string {
	return sessionID + ":" + view
}
