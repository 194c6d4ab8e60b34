package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func msg(channel, content string) Event {
	return Event{Type: "MESSAGE_CREATE", ChannelName: channel, Content: content}
}

func contents(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Content
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// New / Enqueue
// ---------------------------------------------------------------------------

func Test_New_MaxSize_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opt     int
		enqueue int
		wantLen int
	}{
		{name: "explicit size", opt: 3, enqueue: 5, wantLen: 3},
		{name: "zero falls back to 1000", opt: 0, enqueue: 1001, wantLen: 1000},
		{name: "negative falls back to 1000", opt: -4, enqueue: 1000, wantLen: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := New(WithMaxSize(tt.opt))
			for i := 0; i < tt.enqueue; i++ {
				q.Enqueue(msg("general", fmt.Sprintf("m%d", i)))
			}
			if q.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", q.Len(), tt.wantLen)
			}
			if q.Dropped() != tt.enqueue-tt.wantLen {
				t.Errorf("Dropped() = %d, want %d", q.Dropped(), tt.enqueue-tt.wantLen)
			}
		})
	}
}

func Test_New_PollTimeout_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  time.Duration
		want time.Duration
	}{
		{name: "default", opt: 0, want: 30 * time.Second},
		{name: "negative keeps default", opt: -time.Second, want: 30 * time.Second},
		{name: "custom", opt: 5 * time.Second, want: 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := New(WithPollTimeout(tt.opt)).PollTimeout(); got != tt.want {
				t.Errorf("PollTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_Enqueue_Full_DropsOldest(t *testing.T) {
	t.Parallel()
	q := New(WithMaxSize(3))
	for _, c := range []string{"a", "b", "c", "d", "e"} {
		q.Enqueue(msg("general", c))
	}

	got := contents(q.Poll(context.Background(), time.Second, 0, Filter{}))
	if want := []string{"c", "d", "e"}; !equal(got, want) {
		t.Errorf("Poll() = %v, want %v", got, want)
	}
}

func Test_Enqueue_Concurrent(t *testing.T) {
	t.Parallel()
	q := New(WithMaxSize(40))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q.Enqueue(msg("general", fmt.Sprintf("m%d", n)))
		}(i)
	}
	wg.Wait()

	if q.Len() != 40 {
		t.Errorf("Len() = %d, want 40", q.Len())
	}
	if q.Dropped() != 60 {
		t.Errorf("Dropped() = %d, want 60", q.Dropped())
	}
}

// ---------------------------------------------------------------------------
// Poll
// ---------------------------------------------------------------------------

func Test_Poll_Filter_Cases(t *testing.T) {
	t.Parallel()

	seed := []Event{
		{Type: "MESSAGE_CREATE", ChannelID: "1", ChannelName: "general", Content: "g1"},
		{Type: "GUILD_MEMBER_ADD", Content: "join"},
		{Type: "MESSAGE_CREATE", ChannelID: "2", ChannelName: "random", Content: "r1"},
		{Type: "MESSAGE_REACTION_ADD", ChannelID: "1", ChannelName: "general", Content: "👍"},
		{Type: "MESSAGE_CREATE", ChannelID: "1", ChannelName: "general", Content: "g2"},
	}

	tests := []struct {
		name     string
		filter   Filter
		limit    int
		want     []string
		wantLeft int
	}{
		{name: "no filter", want: []string{"g1", "join", "r1", "👍", "g2"}, wantLeft: 0},
		{name: "limit", limit: 2, want: []string{"g1", "join"}, wantLeft: 3},
		{name: "channel by name", filter: Filter{Channel: "general"}, want: []string{"g1", "👍", "g2"}, wantLeft: 2},
		{name: "channel by id", filter: Filter{Channel: "2"}, want: []string{"r1"}, wantLeft: 4},
		{name: "types", filter: Filter{Types: []string{"GUILD_MEMBER_ADD", "MESSAGE_REACTION_ADD"}}, want: []string{"join", "👍"}, wantLeft: 3},
		{name: "channel and type", filter: Filter{Channel: "general", Types: []string{"MESSAGE_CREATE"}}, limit: 1, want: []string{"g1"}, wantLeft: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := New()
			for _, e := range seed {
				q.Enqueue(e)
			}
			got := contents(q.Poll(context.Background(), time.Second, tt.limit, tt.filter))
			if !equal(got, tt.want) {
				t.Errorf("Poll() = %v, want %v", got, tt.want)
			}
			if q.Len() != tt.wantLeft {
				t.Errorf("Len() after Poll = %d, want %d", q.Len(), tt.wantLeft)
			}
		})
	}
}

func Test_Poll_NonMatching_KeepOrder(t *testing.T) {
	t.Parallel()
	q := New()
	q.Enqueue(msg("a", "a1"))
	q.Enqueue(msg("b", "b1"))
	q.Enqueue(msg("a", "a2"))
	q.Enqueue(msg("b", "b2"))

	ctx := context.Background()
	q.Poll(ctx, time.Second, 0, Filter{Channel: "a"})

	got := contents(q.Poll(ctx, time.Second, 0, Filter{}))
	if want := []string{"b1", "b2"}; !equal(got, want) {
		t.Errorf("remaining = %v, want %v", got, want)
	}
}

func Test_Poll_Timeout(t *testing.T) {
	t.Parallel()
	q := New()
	q.Enqueue(msg("other", "x"))

	start := time.Now()
	got := q.Poll(context.Background(), 80*time.Millisecond, 0, Filter{Channel: "general"})
	if got != nil {
		t.Errorf("Poll() = %v, want nil", got)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Poll returned after %v, want it to wait for the timeout", elapsed)
	}
}

func Test_Poll_CancelledContext(t *testing.T) {
	t.Parallel()
	q := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if got := q.Poll(ctx, 5*time.Second, 0, Filter{}); got != nil {
		t.Errorf("Poll() = %v, want nil", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Poll with cancelled context took %v", elapsed)
	}
}

func Test_Poll_WakesOnMatchingEnqueue(t *testing.T) {
	t.Parallel()
	q := New()

	go func() {
		time.Sleep(30 * time.Millisecond)
		q.Enqueue(msg("random", "skip"))
		time.Sleep(30 * time.Millisecond)
		q.Enqueue(msg("general", "wake"))
	}()

	start := time.Now()
	got := contents(q.Poll(context.Background(), 5*time.Second, 0, Filter{Channel: "general"}))
	if want := []string{"wake"}; !equal(got, want) {
		t.Fatalf("Poll() = %v, want %v", got, want)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Poll took %v, want an early wake", elapsed)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want the non-matching event kept", q.Len())
	}
}

func Test_Poll_Concurrent_DeliversOnce(t *testing.T) {
	t.Parallel()
	q := New()
	for i := 0; i < 60; i++ {
		q.Enqueue(msg("general", fmt.Sprintf("m%d", i)))
	}

	var (
		mu   sync.Mutex
		seen = make(map[string]int)
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				got := q.Poll(context.Background(), 20*time.Millisecond, 5, Filter{})
				if got == nil {
					return
				}
				mu.Lock()
				for _, e := range got {
					seen[e.Content]++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != 60 {
		t.Errorf("received %d distinct events, want 60", len(seen))
	}
	for c, n := range seen {
		if n != 1 {
			t.Errorf("event %q delivered %d times", c, n)
		}
	}
}

// ---------------------------------------------------------------------------
// Event.Formatted
// ---------------------------------------------------------------------------

func Test_Event_Formatted_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "message",
			ev:   Event{Type: "MESSAGE_CREATE", ChannelName: "general", Username: "alice", Content: "hello"},
			want: "MESSAGE_CREATE [#general] @alice: hello",
		},
		{
			name: "member join",
			ev:   Event{Type: "GUILD_MEMBER_ADD", Username: "bob"},
			want: "GUILD_MEMBER_ADD @bob",
		},
		{
			name: "channel only",
			ev:   Event{Type: "CHANNEL_DELETE", ChannelName: "old"},
			want: "CHANNEL_DELETE [#old]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.ev.Formatted(); got != tt.want {
				t.Errorf("Formatted() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Benchmarks
// ---------------------------------------------------------------------------

func Benchmark_Enqueue_Full(b *testing.B) {
	q := New(WithMaxSize(128))
	e := msg("general", "bench")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Enqueue(e)
	}
}
