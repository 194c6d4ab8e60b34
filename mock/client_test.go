package mock

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/discordmock/apierr"
)

// ---------------------------------------------------------------------------
// CreateGuild
// ---------------------------------------------------------------------------

func Test_CreateGuild_Defaults(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	cached, ok := f.c.Guild(f.g.ID)
	require.True(t, ok)
	assert.Same(t, f.g, cached)
	assert.Equal(t, "test guild", f.g.Name)
	assert.Equal(t, f.c.User.ID, f.g.OwnerID)

	everyone := f.g.Everyone()
	require.NotNil(t, everyone)
	assert.Equal(t, f.g.ID, everyone.ID)
	assert.Equal(t, 0, everyone.Position)

	assert.Equal(t, "general", f.text.Name)
	assert.Equal(t, "General", f.voice.Name)

	me, ok := f.g.Me()
	require.True(t, ok)
	assert.Same(t, f.c.User, me.User)
}

func Test_CreateGuild_Template(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)

	g, err := c.CreateGuild(context.Background(), CreateGuildOptions{
		Name: "templated",
		Roles: []GuildTemplateRole{
			{ID: "0", Permissions: mo.Some[int64](0)},
			{ID: "1", Name: "mods"},
		},
		Channels: []GuildTemplateChannel{
			{ID: "10", Name: "Info", Type: discordgo.ChannelTypeGuildCategory},
			{ID: "11", ParentID: "10", Name: "Read Me", Type: discordgo.ChannelTypeGuildText},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), g.Everyone().Permissions)
	require.Equal(t, 2, g.Roles.Len())

	var category, text Channel
	for _, ch := range g.Channels.Values() {
		switch ch.Base().Type {
		case discordgo.ChannelTypeGuildCategory:
			category = ch
		case discordgo.ChannelTypeGuildText:
			text = ch
		}
	}
	require.NotNil(t, category)
	require.NotNil(t, text)
	assert.Equal(t, "read-me", text.Base().Name)
	assert.Equal(t, category.Base().ID, text.Base().ParentID)
}

func Test_CreateGuild_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts CreateGuildOptions
		code int
	}{
		{
			name: "name too short",
			opts: CreateGuildOptions{Name: "a"},
			code: apierr.CodeInvalidFormBody,
		},
		{
			name: "parent is not a category",
			opts: CreateGuildOptions{Name: "bad parent", Channels: []GuildTemplateChannel{
				{ID: "1", Name: "a", Type: discordgo.ChannelTypeGuildText},
				{ID: "2", ParentID: "1", Name: "b", Type: discordgo.ChannelTypeGuildText},
			}},
			code: apierr.CodeInvalidFormBody,
		},
		{
			name: "dm type",
			opts: CreateGuildOptions{Name: "dm", Channels: []GuildTemplateChannel{
				{Name: "a", Type: discordgo.ChannelTypeDM},
			}},
			code: apierr.CodeInvalidFormBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _ := newClient(t)
			_, err := c.CreateGuild(context.Background(), tt.opts)
			require.Error(t, err)
			assert.True(t, apierr.HasCode(err, tt.code), "got %v", err)
			assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
			assert.Equal(t, 0, c.Guilds.Len())
		})
	}
}

func Test_CreateGuild_MaxGuilds(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t, WithMaxGuilds(1))

	_, err := c.CreateGuild(context.Background(), CreateGuildOptions{Name: "first"})
	require.NoError(t, err)
	_, err = c.CreateGuild(context.Background(), CreateGuildOptions{Name: "second"})
	assert.True(t, apierr.HasCode(err, apierr.CodeMaxGuilds))
}

func Test_CreateGuild_AfterClose_FallsBack(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)
	c.Close()

	g, err := c.CreateGuild(context.Background(), CreateGuildOptions{Name: "offline"})
	require.NoError(t, err)
	cached, ok := c.Guild(g.ID)
	require.True(t, ok)
	assert.Same(t, g, cached)
}

func Test_CreateGuild_FallbackThenLateEcho(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t, WithGuildCreateTimeout(20*time.Millisecond))
	ctx := context.Background()

	release := make(chan struct{})
	require.True(t, c.Gateway().Submit(func() { <-release }))

	g, err := c.CreateGuild(ctx, CreateGuildOptions{Name: "second"})
	require.NoError(t, err)

	_, err = g.Edit(ctx, GuildEdit{Name: mo.Some("renamed")})
	require.NoError(t, err)
	for _, ch := range g.Channels.Values() {
		gc, ok := AsGuildChannel(ch)
		require.True(t, ok)
		require.NoError(t, gc.Delete(ctx, ""))
	}

	close(release)
	c.Settle()

	cached, ok := c.Guild(g.ID)
	require.True(t, ok)
	assert.Same(t, g, cached)
	assert.Equal(t, "renamed", g.Name)
	assert.Equal(t, 0, g.Channels.Len())
}

func Test_CreateGuild_FromHandler(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t, WithGuildCreateTimeout(time.Minute))

	done := make(chan *Guild, 1)
	c.AddHandlerOnce(func(c *Client, _ *GuildCreate) {
		g, err := c.CreateGuild(context.Background(), CreateGuildOptions{Name: "second"})
		assert.NoError(t, err)
		done <- g
	})
	_, err := c.CreateGuild(context.Background(), CreateGuildOptions{Name: "first"})
	require.NoError(t, err)

	select {
	case g := <-done:
		require.NotNil(t, g)
		assert.Equal(t, "second", g.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("create guild from a handler did not return")
	}
}

// ---------------------------------------------------------------------------
// Cache identity
// ---------------------------------------------------------------------------

func Test_Store_PatchesInPlace(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	role, err := f.g.CreateRole(ctx, RoleCreate{Name: "before"})
	require.NoError(t, err)
	edited, err := role.Edit(ctx, RoleEdit{Name: mo.Some("after")})
	require.NoError(t, err)

	assert.Same(t, role, edited)
	assert.Equal(t, "after", role.Name)
	cached, ok := f.g.Roles.Get(role.ID)
	require.True(t, ok)
	assert.Same(t, role, cached)

	ch, err := f.text.Edit(ctx, ChannelEdit{Topic: mo.Some("news")})
	require.NoError(t, err)
	assert.Same(t, Channel(f.text), ch)
	assert.Equal(t, "news", f.text.Topic)
}

func Test_Dispatch_RepeatedCreate_IsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var creates atomic.Int32
	On(f.c, func(_ *Client, _ *GuildCreate) { creates.Add(1) })

	res, ok := f.c.Dispatch(Packet{Type: EventGuildCreate, Data: f.g.Data()})
	require.True(t, ok)
	assert.Same(t, f.g, res.Guild)
	assert.Equal(t, int32(0), creates.Load())
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

func Test_Dispatcher_Drops(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name   string
		packet Packet
	}{
		{
			name:   "unknown type",
			packet: Packet{Type: "NOT_A_PACKET", Data: map[string]any{}},
		},
		{
			name: "unknown channel",
			packet: Packet{Type: EventMessageCreate, Data: &discordgo.Message{
				ID:        f.c.NewID(),
				ChannelID: "404",
				Author:    f.c.User.Data(),
			}},
		},
		{
			name:   "unknown guild",
			packet: Packet{Type: EventGuildRoleDelete, Data: &RoleDeletePayload{GuildID: "404", RoleID: "1"}},
		},
		{
			name:   "malformed payload",
			packet: Packet{Type: EventGuildMemberRemove, Data: 42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := f.c.Dispatch(tt.packet)
			assert.False(t, ok)
		})
	}
	assert.Equal(t, 0, f.text.Messages.Len())
}

func Test_Dispatcher_WireRecord(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, ok := f.c.Dispatcher().Dispatch(Packet{Type: EventChannelUpdate, Data: map[string]any{
		"id":    f.text.ID,
		"topic": "from the wire",
	}})
	require.True(t, ok)
	assert.Same(t, Channel(f.text), res.Channel)
	assert.Equal(t, "from the wire", f.text.Topic)
	assert.Equal(t, "general", f.text.Name)
}

func Test_Dispatcher_Types(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)

	d := c.Dispatcher()
	assert.True(t, d.Handles(EventMessageCreate))
	assert.False(t, d.Handles("READY"))
	types := d.Types()
	assert.Contains(t, types, EventGuildMembersChunk)
	assert.IsIncreasing(t, types)
}

// ---------------------------------------------------------------------------
// Emitter
// ---------------------------------------------------------------------------

func Test_AddHandler_TypedAndCatchAll(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var typed, all atomic.Int32
	removeTyped := f.c.AddHandler(func(_ *Client, e *MessageCreate) {
		typed.Add(1)
	})
	removeAll := f.c.AddHandler(func(_ *Client, _ Event) { all.Add(1) })

	_, err := f.text.SendText(context.Background(), "one")
	require.NoError(t, err)
	assert.Equal(t, int32(1), typed.Load())
	assert.Equal(t, int32(1), all.Load())

	removeTyped()
	removeAll()
	_, err = f.text.SendText(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, int32(1), typed.Load())
	assert.Equal(t, int32(1), all.Load())
}

func Test_AddHandlerOnce_FiresOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var calls atomic.Int32
	f.c.AddHandlerOnce(func(_ *Client, _ *MessageCreate) { calls.Add(1) })

	for _, content := range []string{"a", "b", "c"} {
		_, err := f.text.SendText(context.Background(), content)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func Test_AddHandler_Invalid_IsIgnored(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)

	for _, h := range []any{nil, 42, func(string) {}, func(*Client, string) {}} {
		remove := c.AddHandler(h)
		require.NotNil(t, remove)
		remove()
	}
}

func Test_Handler_SeesUnlockedClient(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	done := make(chan error, 1)
	f.c.AddHandlerOnce(func(c *Client, e *MessageCreate) {
		_, err := e.Message.Guild().FetchMember(context.Background(), c.User.ID)
		done <- err
	})
	_, err := f.text.SendText(context.Background(), "hello")
	require.NoError(t, err)
	require.NoError(t, <-done)
}

// ---------------------------------------------------------------------------
// Waiter
// ---------------------------------------------------------------------------

func Test_Waiter_Timeout(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)

	w := Await(c, WaitSpec[int]{
		Op:      "never",
		Timeout: 10 * time.Millisecond,
		Match:   func(Event) (int, Outcome) { return 0, Ignore },
	})
	_, err := w.Wait(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierr.ErrTimeout))
	_, isAPI := apierr.As(err)
	assert.False(t, isAPI)

	c.emitter.mu.RLock()
	defer c.emitter.mu.RUnlock()
	assert.Empty(t, c.emitter.waiters)
}

func Test_Waiter_Fallback(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)

	w := Await(c, WaitSpec[string]{
		Timeout:  5 * time.Millisecond,
		Match:    func(Event) (string, Outcome) { return "", Ignore },
		Fallback: func() (string, error) { return "fallback", nil },
	})
	v, err := w.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)
}

func Test_Waiter_ResolvesOnEvent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	w := Await(f.c, WaitSpec[string]{
		Timeout: time.Minute,
		Match: func(ev Event) (string, Outcome) {
			if e, ok := ev.(*MessageCreate); ok {
				return e.Message.Content, Resolve
			}
			return "", Ignore
		},
	})
	_, err := f.text.SendText(context.Background(), "ping")
	require.NoError(t, err)

	v, err := w.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ping", v)
}

func Test_Waiter_ContextCancel(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)

	w := Await(c, WaitSpec[int]{
		Timeout: time.Minute,
		Match:   func(Event) (int, Outcome) { return 0, Ignore },
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := w.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case <-w.Done():
	default:
		t.Fatal("waiter not settled after cancel")
	}
}

func Test_Waiter_ProgressExtendsDeadline(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t)

	ticks := make(chan struct{})
	w := Await(c, WaitSpec[int]{
		Timeout: 50 * time.Millisecond,
		Match:   func(Event) (int, Outcome) { return 0, Ignore },
	})
	go func() {
		defer close(ticks)
		for i := 0; i < 4; i++ {
			time.Sleep(25 * time.Millisecond)
			w.Extend()
		}
	}()
	<-ticks

	select {
	case <-w.Done():
		t.Fatal("waiter expired despite extensions")
	default:
	}
	_, err := w.Wait(context.Background())
	assert.ErrorIs(t, err, apierr.ErrTimeout)
}

// ---------------------------------------------------------------------------
// FetchMembers
// ---------------------------------------------------------------------------

func Test_FetchMembers_CollectsChunks(t *testing.T) {
	t.Parallel()
	f := newFixture(t, WithMemberChunkSize(1))
	f.join(t, "alice")
	f.join(t, "bob")
	f.join(t, "albert")

	var chunks atomic.Int32
	On(f.c, func(_ *Client, _ *GuildMembersChunk) { chunks.Add(1) })

	all, err := f.g.FetchMembers(context.Background(), MemberQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	f.c.Settle()
	assert.Equal(t, int32(4), chunks.Load())

	al, err := f.g.FetchMembers(context.Background(), MemberQuery{Query: "AL"})
	require.NoError(t, err)
	assert.Len(t, al, 2)

	var requested int
	for _, cmd := range f.c.Gateway().Sent() {
		if cmd.Op == OpRequestGuildMembers {
			requested++
		}
	}
	assert.Equal(t, 2, requested)
}

func Test_FetchMembers_NoMatch_StillResolves(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	got, err := f.g.FetchMembers(context.Background(), MemberQuery{Query: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func Test_FetchMembers_FromGuildCreateHandler(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t, WithMemberChunkTimeout(time.Minute))

	type fetched struct {
		members []*Member
		err     error
	}
	done := make(chan fetched, 1)
	c.AddHandlerOnce(func(_ *Client, e *GuildCreate) {
		members, err := e.Guild.FetchMembers(context.Background(), MemberQuery{})
		done <- fetched{members, err}
	})
	g, err := c.CreateGuild(context.Background(), CreateGuildOptions{Name: "fetching"})
	require.NoError(t, err)

	select {
	case got := <-done:
		require.NoError(t, got.err)
		require.Len(t, got.members, 1)
		assert.Equal(t, c.User.ID, got.members[0].User.ID)
		assert.Equal(t, g.ID, got.members[0].Guild().ID)
	case <-time.After(5 * time.Second):
		t.Fatal("fetch members from a handler did not return")
	}
}

func Test_Gateway_Deliver_ReachesHandlers(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var updates atomic.Int32
	On(f.c, func(_ *Client, _ *GuildUpdate) { updates.Add(1) })

	d := f.g.Data()
	d.Name = "delivered"
	require.True(t, f.c.Gateway().Deliver(Packet{Type: EventGuildUpdate, Data: d}))
	f.c.Settle()

	assert.Equal(t, "delivered", f.g.Name)
	assert.Equal(t, int32(1), updates.Load())
}

func Test_FetchMembers_AfterClose(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.c.Close()

	_, err := f.g.FetchMembers(context.Background(), MemberQuery{})
	assert.ErrorIs(t, err, ErrClosed)
}
