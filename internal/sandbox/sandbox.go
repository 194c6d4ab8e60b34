// Package sandbox seeds an in-memory guild from configuration and turns its
// client events into queue entries for MCP callers.
package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"github.com/jamesprial/discordmock/internal/config"
	"github.com/jamesprial/discordmock/internal/queue"
	"github.com/jamesprial/discordmock/internal/resolve"
	"github.com/jamesprial/discordmock/mock"
)

// DefaultEvents are the event types queued when the config names none.
var DefaultEvents = []string{
	string(mock.EventMessageCreate),
	string(mock.EventMessageUpdate),
	string(mock.EventMessageDelete),
	string(mock.EventMessageReactionAdd),
	string(mock.EventMessageReactionRemove),
	string(mock.EventGuildMemberAdd),
	string(mock.EventGuildMemberRemove),
}

// Sandbox is a mock client holding one seeded guild.
type Sandbox struct {
	Client   *mock.Client
	Guild    *mock.Guild
	Resolver *resolve.Resolver
	Queue    *queue.Queue

	logger *slog.Logger
	events map[string]bool
	detach func()
}

// New builds the client, seeds the guild described by cfg.Sandbox and starts
// routing events into a queue sized by cfg.Queue. Extra options are applied
// after the ones derived from cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...mock.Option) (*Sandbox, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sc := cfg.Sandbox

	base := []mock.Option{
		mock.WithLogger(logger.With("component", "mock")),
		mock.WithUser(&discordgo.User{Username: sc.BotName, Bot: true}),
	}
	if sc.MessageCacheSize > 0 {
		base = append(base, mock.WithMessageCacheSize(sc.MessageCacheSize))
	}
	c := mock.New(append(base, opts...)...)

	s := &Sandbox{
		Client: c,
		Queue: queue.New(
			queue.WithMaxSize(cfg.Queue.MaxSize),
			queue.WithPollTimeout(time.Duration(cfg.Queue.PollTimeoutSec)*time.Second),
		),
		logger: logger,
		events: make(map[string]bool),
	}
	types := cfg.Queue.Events
	if len(types) == 0 {
		types = DefaultEvents
	}
	for _, t := range types {
		s.events[strings.ToUpper(t)] = true
	}

	if err := s.seed(ctx, sc); err != nil {
		c.Close()
		return nil, err
	}

	s.Resolver = resolve.New(c.REST(), s.Guild.ID)
	if err := s.Resolver.Refresh(); err != nil {
		c.Close()
		return nil, err
	}
	c.Settle()
	s.detach = c.AddHandler(s.route)

	logger.Info("sandbox ready",
		"guild", s.Guild.Name,
		"guild_id", s.Guild.ID,
		"bot", c.User.Username,
		"channels", s.Guild.Channels.Len(),
		"members", s.Guild.Members.Len(),
	)
	return s, nil
}

func (s *Sandbox) seed(ctx context.Context, sc config.SandboxConfig) error {
	c := s.Client

	opts := mock.CreateGuildOptions{
		Name:  sc.GuildName,
		Roles: []mock.GuildTemplateRole{{ID: "role:@everyone"}},
	}
	for _, r := range sc.Roles {
		tr := mock.GuildTemplateRole{ID: "role:" + r.Name, Name: r.Name, Color: r.Color, Hoist: r.Hoist}
		if r.Permissions != 0 {
			tr.Permissions = mo.Some(r.Permissions)
		}
		opts.Roles = append(opts.Roles, tr)
	}
	for _, ch := range sc.Channels {
		ctype, _ := config.ChannelType(ch.Type)
		tc := mock.GuildTemplateChannel{
			ID:    "channel:" + ch.Name,
			Name:  ch.Name,
			Type:  ctype,
			Topic: ch.Topic,
		}
		if ch.Parent != "" {
			tc.ParentID = "channel:" + ch.Parent
		}
		opts.Channels = append(opts.Channels, tc)
	}

	g, err := c.CreateGuild(ctx, opts)
	if err != nil {
		return fmt.Errorf("sandbox: create guild: %w", err)
	}
	s.Guild = g

	roles := make(map[string]string, len(sc.Roles))
	for _, r := range g.Roles.Values() {
		roles[r.Name] = r.ID
	}
	for _, u := range sc.Users {
		m, err := c.Simulate().Join(ctx, g, &discordgo.User{ID: c.NewID(), Username: u.Username, Bot: u.Bot})
		if err != nil {
			return fmt.Errorf("sandbox: join %s: %w", u.Username, err)
		}
		for _, name := range u.Roles {
			if _, err := m.AddRole(ctx, roles[name], "sandbox seed"); err != nil {
				return fmt.Errorf("sandbox: give %s role %s: %w", u.Username, name, err)
			}
		}
	}

	if sc.SystemChannel != "" {
		id, ok := s.channelByName(sc.SystemChannel)
		if !ok {
			return fmt.Errorf("sandbox: system channel %q was not created", sc.SystemChannel)
		}
		if _, err := g.Edit(ctx, mock.GuildEdit{SystemChannelID: mo.Some(id)}); err != nil {
			return fmt.Errorf("sandbox: set system channel: %w", err)
		}
	}
	return nil
}

func (s *Sandbox) channelByName(name string) (string, bool) {
	want := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
	for _, ch := range s.Guild.Channels.Values() {
		got := ch.Base().Name
		if got == name || got == want {
			return ch.Base().ID, true
		}
	}
	return "", false
}

// Close stops routing events and shuts the client down.
func (s *Sandbox) Close() {
	if s.detach != nil {
		s.detach()
	}
	s.Client.Close()
}
