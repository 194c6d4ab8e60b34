// Package queue holds the events emitted by a sandboxed mock client until an
// MCP caller polls them.
package queue

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Event is one client event captured from the sandbox guild.
type Event struct {
	Type        string    `json:"type"`
	GuildID     string    `json:"guild_id,omitempty"`
	ChannelID   string    `json:"channel_id,omitempty"`
	ChannelName string    `json:"channel_name,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	MessageID   string    `json:"message_id,omitempty"`
	Content     string    `json:"content,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Formatted renders the event as "TYPE [#channel] @user: content", leaving
// out the parts the event does not carry.
func (e Event) Formatted() string {
	out := e.Type
	if e.ChannelName != "" {
		out += fmt.Sprintf(" [#%s]", e.ChannelName)
	}
	if e.Username != "" {
		out += fmt.Sprintf(" @%s", e.Username)
	}
	if e.Content != "" {
		out += ": " + e.Content
	}
	return out
}

// Filter selects events during Poll. Zero values match everything.
type Filter struct {
	// Channel matches either the channel ID or its name.
	Channel string
	Types   []string
}

func (f Filter) match(e Event) bool {
	if f.Channel != "" && e.ChannelID != f.Channel && e.ChannelName != f.Channel {
		return false
	}
	return len(f.Types) == 0 || slices.Contains(f.Types, e.Type)
}

// Option configures a Queue.
type Option func(*Queue)

// WithMaxSize caps the number of buffered events. Values below one keep the
// default of 1000.
func WithMaxSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.maxSize = n
		}
	}
}

// WithPollTimeout sets the wait callers use when they do not choose one.
// Non-positive values keep the default of 30 seconds.
func WithPollTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.pollTimeout = d
		}
	}
}

// Queue is a bounded FIFO. A full queue drops its oldest event on Enqueue.
type Queue struct {
	mu          sync.Mutex
	events      []Event
	maxSize     int
	dropped     int
	pollTimeout time.Duration
	wake        chan struct{}
}

// New builds an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{maxSize: 1000, pollTimeout: 30 * time.Second, wake: make(chan struct{})}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make([]Event, 0, min(q.maxSize, 64))
	return q
}

// PollTimeout is the configured default wait for Poll.
func (q *Queue) PollTimeout() time.Duration { return q.pollTimeout }

// Enqueue appends e and wakes every pending Poll.
func (q *Queue) Enqueue(e Event) {
	q.mu.Lock()
	if len(q.events) == q.maxSize {
		q.events[0] = Event{}
		q.events = q.events[1:]
		q.dropped++
	}
	q.events = append(q.events, e)
	wake := q.wake
	q.wake = make(chan struct{})
	q.mu.Unlock()

	close(wake)
}

// take removes up to limit matching events. Non-matching events keep their
// relative order. The caller holds q.mu.
func (q *Queue) take(f Filter, limit int) []Event {
	var out []Event
	kept := q.events[:0]
	for _, e := range q.events {
		if (limit <= 0 || len(out) < limit) && f.match(e) {
			out = append(out, e)
			continue
		}
		kept = append(kept, e)
	}
	clear(q.events[len(kept):])
	q.events = kept
	return out
}

// Poll removes and returns up to limit events matching f, oldest first. When
// none are buffered it waits for one until timeout elapses or ctx is done, in
// which case it returns nil. A limit below one returns every match.
func (q *Queue) Poll(ctx context.Context, timeout time.Duration, limit int, f Filter) []Event {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.mu.Lock()
		out := q.take(f, limit)
		wake := q.wake
		q.mu.Unlock()
		if len(out) > 0 {
			return out
		}

		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			return nil
		case <-wake:
		}
	}
}

// Len reports the number of buffered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Dropped reports how many events were discarded because the queue was full.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
