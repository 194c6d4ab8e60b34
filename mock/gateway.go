package mock

import (
	"sync"

	"github.com/gammazero/workerpool"
)

// Gateway opcodes recorded for commands the client sends.
const (
	OpPresenceUpdate      = 3
	OpVoiceStateUpdate    = 4
	OpRequestGuildMembers = 8
)

// GatewayCommand is a command the client sent over the gateway.
type GatewayCommand struct {
	Op   int
	Data any
}

// Gateway stands in for the realtime connection. It records the commands the
// client sends and runs asynchronous server work, such as member chunk
// delivery, on a single ordered lane.
//
// Events produced on the lane settle waiters there and reach handlers through
// a second ordered lane, so a handler may start lane work and wait for it.
type Gateway struct {
	client *Client
	pool   *workerpool.WorkerPool
	events *workerpool.WorkerPool

	// life guards closed against concurrent submission.
	life   sync.RWMutex
	closed bool

	mu   sync.Mutex
	sent []GatewayCommand
}

func newGateway(c *Client) *Gateway {
	return &Gateway{client: c, pool: workerpool.New(1), events: workerpool.New(1)}
}

// Submit queues fn on the lane. It reports false once the gateway is closed.
func (g *Gateway) Submit(fn func()) bool {
	g.life.RLock()
	defer g.life.RUnlock()
	if g.closed {
		g.client.logger.Debug("gateway closed, work dropped")
		return false
	}
	g.pool.Submit(fn)
	return true
}

// Deliver queues p for dispatch on the lane.
func (g *Gateway) Deliver(p Packet) bool {
	return g.Submit(func() { g.dispatch(p) })
}

// dispatch applies p from the lane.
func (g *Gateway) dispatch(p Packet) {
	g.run(func() { g.client.dispatcher.apply(p) })
}

// run applies fn under the state lock from the lane and publishes the events
// it produced.
func (g *Gateway) run(fn func()) {
	events, _ := g.client.locked(func() error {
		fn()
		return nil
	})
	g.publish(events)
}

func (g *Gateway) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	c := g.client
	for _, ev := range events {
		c.emitter.notify(c, ev)
	}
	g.events.Submit(func() {
		for _, ev := range events {
			c.emitter.handle(c, ev)
		}
	})
}

// Settle blocks until everything queued so far has run and the handlers for
// the events it produced have returned. It must not be called from an event
// handler, which would wait on itself.
func (g *Gateway) Settle() {
	g.life.RLock()
	defer g.life.RUnlock()
	if g.closed {
		return
	}
	g.pool.SubmitWait(func() {})
	g.events.SubmitWait(func() {})
}

// Close drains the lane and then the pending handler calls, and stops both.
// Later submissions are dropped.
func (g *Gateway) Close() {
	g.life.Lock()
	if g.closed {
		g.life.Unlock()
		return
	}
	g.closed = true
	g.life.Unlock()
	g.pool.StopWait()
	g.events.StopWait()
}

// Send records a gateway command.
func (g *Gateway) Send(op int, data any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, GatewayCommand{Op: op, Data: data})
}

// Sent returns the recorded commands, oldest first.
func (g *Gateway) Sent() []GatewayCommand {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GatewayCommand(nil), g.sent...)
}
