package mock

import (
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
)

var (
	clientType = reflect.TypeOf((*Client)(nil))
	eventType  = reflect.TypeOf((*Event)(nil)).Elem()
)

type handlerEntry struct {
	typ  reflect.Type
	fn   func(*Client, Event)
	once bool
	used atomic.Bool
}

// emitter fans events out to handlers registered per concrete event type and
// to catch-all handlers.
type emitter struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	byType   map[reflect.Type][]*handlerEntry
	catchAll []*handlerEntry
	waiters  []*handlerEntry
}

func newEmitter(logger *slog.Logger) *emitter {
	return &emitter{logger: logger, byType: make(map[reflect.Type][]*handlerEntry)}
}

// add registers fn for events of typ, or for every event when typ is nil. The
// returned func removes the registration.
func (e *emitter) add(typ reflect.Type, fn func(*Client, Event), once bool) func() {
	entry := &handlerEntry{typ: typ, fn: fn, once: once}

	e.mu.Lock()
	if typ == nil {
		e.catchAll = append(e.catchAll, entry)
	} else {
		e.byType[typ] = append(e.byType[typ], entry)
	}
	e.mu.Unlock()

	return func() { e.remove(entry) }
}

// addWaiter registers fn to see every event ahead of handler delivery.
func (e *emitter) addWaiter(fn func(*Client, Event)) func() {
	entry := &handlerEntry{fn: fn}

	e.mu.Lock()
	e.waiters = append(e.waiters, entry)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.waiters = without(e.waiters, entry)
	}
}

func (e *emitter) remove(entry *handlerEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if entry.typ == nil {
		e.catchAll = without(e.catchAll, entry)
	} else {
		e.byType[entry.typ] = without(e.byType[entry.typ], entry)
	}
}

func without(list []*handlerEntry, entry *handlerEntry) []*handlerEntry {
	for i, h := range list {
		if h == entry {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

func (e *emitter) handlersFor(ev Event) []*handlerEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	typed := e.byType[reflect.TypeOf(ev)]
	out := make([]*handlerEntry, 0, len(typed)+len(e.catchAll))
	out = append(out, typed...)
	out = append(out, e.catchAll...)
	return out
}

// deliver runs the handlers for each event and then offers it to the
// waiters, on the calling goroutine.
func (e *emitter) deliver(c *Client, events []Event) {
	for _, ev := range events {
		e.handle(c, ev)
		e.notify(c, ev)
	}
}

func (e *emitter) handle(c *Client, ev Event) {
	for _, h := range e.handlersFor(ev) {
		if h.once && !h.used.CompareAndSwap(false, true) {
			continue
		}
		h.fn(c, ev)
		if h.once {
			e.remove(h)
		}
	}
}

func (e *emitter) notify(c *Client, ev Event) {
	e.mu.RLock()
	waiters := append([]*handlerEntry(nil), e.waiters...)
	e.mu.RUnlock()
	for _, w := range waiters {
		w.fn(c, ev)
	}
}

// wrap validates a handler of the form func(*Client, *X) where *X is an
// Event, or func(*Client, Event) for every event.
func (e *emitter) wrap(handler any) (reflect.Type, func(*Client, Event), bool) {
	if fn, ok := handler.(func(*Client, Event)); ok {
		return nil, fn, true
	}

	v := reflect.ValueOf(handler)
	t := v.Type()
	if t.Kind() != reflect.Func || t.NumIn() != 2 || t.NumOut() != 0 || t.In(0) != clientType {
		return nil, nil, false
	}
	arg := t.In(1)
	if arg.Kind() != reflect.Ptr || !arg.Implements(eventType) {
		return nil, nil, false
	}
	return arg, func(c *Client, ev Event) {
		v.Call([]reflect.Value{reflect.ValueOf(c), reflect.ValueOf(ev)})
	}, true
}

// AddHandler registers an event handler and returns a func that removes it.
//
// The handler must be func(*mock.Client, *mock.X) for a concrete event type
// X, or func(*mock.Client, mock.Event) to receive every event. An invalid
// handler is logged and never called.
func (c *Client) AddHandler(handler any) func() {
	return c.addHandler(handler, false)
}

// AddHandlerOnce is AddHandler for a handler that is removed after its first
// call.
func (c *Client) AddHandlerOnce(handler any) func() {
	return c.addHandler(handler, true)
}

func (c *Client) addHandler(handler any, once bool) func() {
	if handler == nil {
		c.logger.Error("invalid event handler", "handler", "nil")
		return func() {}
	}
	typ, fn, ok := c.emitter.wrap(handler)
	if !ok {
		c.logger.Error("invalid event handler", "type", reflect.TypeOf(handler).String())
		return func() {}
	}
	return c.emitter.add(typ, fn, once)
}

// On registers a typed handler without reflection. When E is the Event
// interface itself the handler receives every event.
func On[E Event](c *Client, fn func(*Client, E)) func() {
	typ := reflect.TypeOf((*E)(nil)).Elem()
	if typ.Kind() == reflect.Interface {
		typ = nil
	}
	return c.emitter.add(typ, func(c *Client, ev Event) {
		if e, ok := ev.(E); ok {
			fn(c, e)
		}
	}, false)
}
