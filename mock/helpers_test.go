package mock

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/discordmock/clock"
	"github.com/jamesprial/discordmock/internal/defaults"
	"github.com/jamesprial/discordmock/record"
)

var epoch = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	c     *Client
	clock *clock.Fake
	g     *Guild
	text  *TextChannel
	voice *VoiceChannel
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T, opts ...Option) (*Client, *clock.Fake) {
	t.Helper()
	fc := clock.NewFake(epoch)
	c := New(append([]Option{WithClock(fc), WithLogger(quietLogger())}, opts...)...)
	t.Cleanup(c.Close)
	return c, fc
}

// newFixture returns a client that owns one guild with the default
// "general" text and "General" voice channels.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	c, fc := newClient(t, opts...)
	g, err := c.CreateGuild(context.Background(), CreateGuildOptions{Name: "test guild"})
	require.NoError(t, err)

	f := &fixture{c: c, clock: fc, g: g}
	for _, ch := range g.Channels.Values() {
		switch v := ch.(type) {
		case *TextChannel:
			f.text = v
		case *VoiceChannel:
			f.voice = v
		}
	}
	require.NotNil(t, f.text)
	require.NotNil(t, f.voice)
	return f
}

// join adds a new user named name to the fixture guild.
func (f *fixture) join(t *testing.T, name string) *Member {
	t.Helper()
	m, err := f.c.Simulate().Join(context.Background(), f.g, &discordgo.User{Username: name})
	require.NoError(t, err)
	return m
}

// foreignGuild caches a guild owned by another user in which the client user
// is a plain member.
func foreignGuild(t *testing.T, c *Client) (*Guild, *User) {
	t.Helper()
	owner, err := c.Simulate().User(context.Background(), "owner")
	require.NoError(t, err)

	id := c.NewID()
	d := &discordgo.Guild{}
	require.NoError(t, record.Decode(defaults.Guild(id, owner.ID, c.Clock().Now()), d))
	d.Name = "foreign"
	everyone := &discordgo.Role{}
	require.NoError(t, record.Decode(defaults.EveryoneRole(id), everyone))
	d.Roles = []*discordgo.Role{everyone}

	text := &discordgo.Channel{}
	require.NoError(t, record.Decode(defaults.Channel(c.NewID(), discordgo.ChannelTypeGuildText), text))
	text.Name = "lobby"
	d.Channels = []*discordgo.Channel{text}

	for _, u := range []*discordgo.User{owner.Data(), c.User.Data()} {
		m := &discordgo.Member{}
		require.NoError(t, record.Decode(defaults.Member(id, u, c.Clock().Now()), m))
		d.Members = append(d.Members, m)
	}

	res, ok := c.Dispatch(Packet{Type: EventGuildCreate, Data: d})
	require.True(t, ok)
	return res.Guild, owner
}
