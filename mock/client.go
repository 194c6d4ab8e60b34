package mock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jamesprial/discordmock/cache"
	"github.com/jamesprial/discordmock/clock"
	"github.com/jamesprial/discordmock/internal/defaults"
	"github.com/jamesprial/discordmock/internal/snowflakes"
	"github.com/jamesprial/discordmock/record"
)

// Client is the in-memory Discord client. Create one with New.
type Client struct {
	cfg    settings
	logger *slog.Logger
	clock  clock.Clock
	ids    *snowflakes.Generator

	// mu is the state lock. Every mutation of the caches below happens while
	// it is held.
	mu      sync.Mutex
	pending []Event

	emitter    *emitter
	dispatcher *Dispatcher
	gateway    *Gateway
	rest       *REST
	simulator  *Simulator

	// User is the client user. Operations invoked through the entity API act
	// as this user.
	User *User

	Guilds   *cache.Store[discordgo.Guild, *Guild]
	Users    *cache.Store[discordgo.User, *User]
	Channels *cache.Cache[string, Channel]
}

// New returns a Client with no guilds.
func New(opts ...Option) *Client {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	c := &Client{
		cfg:    s,
		logger: s.logger,
		clock:  s.clock,
		ids:    snowflakes.New(s.clock),
	}
	c.emitter = newEmitter(s.logger)
	c.Users = cache.NewStore(userID, c.buildUser, nil)
	c.Guilds = cache.NewStore(guildID, c.buildGuild, nil)
	c.Channels = cache.New[string, Channel]()
	c.dispatcher = newDispatcher(c)
	c.gateway = newGateway(c)
	c.rest = &REST{client: c}
	c.simulator = &Simulator{client: c}

	self := &discordgo.User{}
	base := defaults.User(c.ids.Next())
	base["username"] = "mock-bot"
	base["bot"] = true
	if s.user != nil {
		base = record.Merge(base, record.MustEncode(s.user))
		if s.user.ID == "" {
			base["id"] = c.ids.Next()
		}
	}
	if err := record.Decode(base, self); err != nil {
		panic(err)
	}
	c.User = c.Users.Add(self)
	return c
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Clock returns the client's time source.
func (c *Client) Clock() clock.Clock { return c.clock }

// NewID returns a fresh snowflake from the client's generator. Tests use it
// to build packets for Dispatch.
func (c *Client) NewID() string { return c.ids.Next() }

// Dispatcher returns the client's packet dispatcher.
func (c *Client) Dispatcher() *Dispatcher { return c.dispatcher }

// Dispatch applies one gateway packet. It reports false when the packet was
// dropped because its target is not cached or its payload is malformed.
func (c *Client) Dispatch(p Packet) (Result, bool) {
	return c.dispatcher.Dispatch(p)
}

// Gateway returns the gateway stand-in that runs asynchronous work.
func (c *Client) Gateway() *Gateway { return c.gateway }

// REST returns a discordgo-shaped adapter acting as the client user.
func (c *Client) REST() *REST { return c.rest }

// Simulate returns the simulator for activity by other users.
func (c *Client) Simulate() *Simulator { return c.simulator }

// Settle blocks until all queued gateway work has run.
func (c *Client) Settle() { c.gateway.Settle() }

// Close stops the gateway. Work and events already queued still run.
func (c *Client) Close() { c.gateway.Close() }

// Guild returns the cached guild with id.
func (c *Client) Guild(id string) (*Guild, bool) {
	g, ok := c.Guilds.Get(id)
	if !ok || g.deleted {
		return nil, false
	}
	return g, true
}

// Channel returns the cached channel with id.
func (c *Client) Channel(id string) (Channel, bool) {
	return c.Channels.Get(id)
}

func (c *Client) now() time.Time { return c.clock.Now() }

// emit queues ev for delivery once the state lock is released. It must only
// be called with the lock held.
func (c *Client) emit(ev Event) {
	c.pending = append(c.pending, ev)
}

// exec runs fn under the state lock and then delivers the events fn produced.
func (c *Client) exec(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	events, err := c.locked(fn)
	c.emitter.deliver(c, events)
	return err
}

// locked runs fn under the state lock and returns the events it queued.
func (c *Client) locked(fn func() error) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := fn()
	events := c.pending
	c.pending = nil
	return events, err
}

func execValue[T any](ctx context.Context, c *Client, fn func() (T, error)) (T, error) {
	var out T
	err := c.exec(ctx, func() error {
		v, err := fn()
		out = v
		return err
	})
	return out, err
}

func userID(d *discordgo.User) string   { return d.ID }
func guildID(d *discordgo.Guild) string { return d.ID }

// ensureUser returns the cached user for d, caching it when new. An existing
// user is not patched; only USER_UPDATE changes a cached user.
func (c *Client) ensureUser(d *discordgo.User) *User {
	if d == nil {
		return nil
	}
	if u, ok := c.Users.Get(d.ID); ok {
		return u
	}
	return c.Users.Add(d)
}
